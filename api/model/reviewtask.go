package model

// ApproveReviewTask is the request body for approving a single review task.
type ApproveReviewTask struct {
	Notes string `json:"notes"`
}

// RejectReviewTask is the request body for rejecting a single review task.
// Reason stays a pointer: absent means no reason given, which is distinct
// from an empty reason.
type RejectReviewTask struct {
	Reason *string `json:"reason"`
	Notes  string  `json:"notes"`
}

// BulkReviewTasks is the request body for the bulk approve/reject routes.
type BulkReviewTasks struct {
	IDs    []string `json:"ids"`
	Reason *string  `json:"reason,omitempty"`
	Notes  string   `json:"notes"`
}

// CreateReviewTask is the request body for opening a review task.
type CreateReviewTask struct {
	TaskType  string `json:"task_type"`
	RelatedID string `json:"related_id"`
	Notes     string `json:"notes"`
}
