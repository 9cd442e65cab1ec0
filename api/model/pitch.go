package model

// CreatePitch is the request body for drafting a new pitch.
type CreatePitch struct {
	CampaignID     string                 `json:"campaign_id"`
	MediaID        string                 `json:"media_id"`
	MatchID        *string                `json:"match_id,omitempty"`
	DraftText      string                 `json:"draft_text"`
	SubjectLine    string                 `json:"subject_line"`
	RecipientEmail string                 `json:"recipient_email"`
	FollowUpCount  int                    `json:"follow_up_count"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
}

// UpdatePitchContent is the request body for content-only pitch edits.
// Nil fields keep their stored value.
type UpdatePitchContent struct {
	SubjectLine    *string `json:"subject_line"`
	DraftText      *string `json:"draft_text"`
	RecipientEmail *string `json:"recipient_email"`
}

// SchedulePitch is the request body for arming a future send. Either an
// explicit RFC3339 send time or a quick preset, not both.
type SchedulePitch struct {
	SendAt string `json:"send_at,omitempty"`
	Preset string `json:"preset,omitempty"`
}

// BulkSendPitches is the request body for the bulk send route.
type BulkSendPitches struct {
	IDs []string `json:"ids"`
}

// CreateFollowUp is the request body for drafting the next follow-up.
type CreateFollowUp struct {
	DraftText   string `json:"draft_text"`
	SubjectLine string `json:"subject_line"`
}

// RecordDeliveryEvent is the request body for delivery-provider callbacks.
type RecordDeliveryEvent struct {
	Event string `json:"event"`
}

// CreateMatchSuggestion is the request body for registering a vetting
// candidate.
type CreateMatchSuggestion struct {
	CampaignID    string  `json:"campaign_id"`
	MediaID       string  `json:"media_id"`
	VettingScore  float64 `json:"vetting_score"`
	ReachEstimate int64   `json:"reach_estimate"`
}
