/*
Copyright 2025 Pitchline Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"encoding/json"
	"time"
)

const (
	TaskTypeMatchSuggestion = "match_suggestion"
	TaskTypePitchReview     = "pitch_review"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusApproved  = "approved"
	TaskStatusRejected  = "rejected"
	TaskStatusCompleted = "completed"
)

// ReviewTask is a unit of pending human work referencing either a match
// suggestion or a pitch draft, depending on TaskType.
type ReviewTask struct {
	ID           int64      `json:"-"`
	ReviewTaskID string     `json:"review_task_id"`
	TaskType     string     `json:"task_type"`
	RelatedID    string     `json:"related_id"`
	Status       string     `json:"status"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the task has left pending. Terminal tasks are
// never transitioned again; a repeat approve/reject is an idempotent no-op.
func (t *ReviewTask) IsTerminal() bool {
	switch t.Status {
	case TaskStatusApproved, TaskStatusRejected, TaskStatusCompleted:
		return true
	}
	return false
}

func (t *ReviewTask) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// TransitionResult reports the outcome of a single approve/reject call.
// AlreadyTerminal marks the silent no-op taken when the task had already
// been processed, so rapid double-clicks and second browser tabs are safe.
type TransitionResult struct {
	ReviewTaskID    string `json:"review_task_id"`
	Status          string `json:"status"`
	MatchID         string `json:"match_id,omitempty"`
	PitchGenID      string `json:"pitch_gen_id,omitempty"`
	AlreadyTerminal bool   `json:"already_terminal,omitempty"`
}
