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

package database

import (
	"context"
	"time"

	"github.com/pitchline/pitchline/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	reviewTask      // Interface for review-task operations
	matchSuggestion // Interface for match-suggestion operations
	pitchGeneration // Interface for pitch-generation operations
	draft           // Interface for draft-store operations
}

// reviewTask defines methods for handling review tasks.
type reviewTask interface {
	CreateReviewTask(ctx context.Context, task *model.ReviewTask) (*model.ReviewTask, error)                           // Records a new review task in pending
	GetReviewTask(ctx context.Context, id string) (*model.ReviewTask, error)                                           // Retrieves a review task by ID
	TransitionReviewTask(ctx context.Context, id, status string, rejectReason *string, notes string) (bool, error)     // Compare-and-set transition out of pending; false when the task was not pending
	GetReviewTasksByStatus(ctx context.Context, status string, limit, offset int) ([]model.ReviewTask, error)          // Retrieves tasks filtered by status
}

// matchSuggestion defines methods for handling match suggestions.
type matchSuggestion interface {
	CreateMatchSuggestion(ctx context.Context, match *model.MatchSuggestion) (*model.MatchSuggestion, error) // Records a new match suggestion
	GetMatchSuggestion(ctx context.Context, id string) (*model.MatchSuggestion, error)                       // Retrieves a match suggestion by ID
	UpdateMatchSuggestionStatus(ctx context.Context, id, status string) error                                // Mirrors the related review-task outcome onto the match
}

// pitchGeneration defines methods for handling pitch generations.
type pitchGeneration interface {
	CreatePitchGeneration(ctx context.Context, pitch *model.PitchGeneration) (*model.PitchGeneration, error)  // Records a new pitch generation in draft
	GetPitchGeneration(ctx context.Context, id string) (*model.PitchGeneration, error)                        // Retrieves a pitch generation by ID
	ApprovePitchGeneration(ctx context.Context, id string) (bool, error)                                      // Compare-and-set draft -> approved/ready_to_send; false when not in draft
	UpdatePitchContent(ctx context.Context, id string, subject, body, recipient *string) error                // Content-only mutation, statuses untouched
	UpdatePitchState(ctx context.Context, id, fromState, toState string, scheduledFor time.Time) (bool, error) // Compare-and-set delivery-state transition; false when the current state did not match
	MarkPitchSent(ctx context.Context, id string, sentAt time.Time) (bool, error)                             // ready_to_send/scheduled -> sent
	CountFollowUps(ctx context.Context, parentID string) (int, error)                                         // Counts follow-ups already attached to an initial pitch
	GetFollowUps(ctx context.Context, parentID string) ([]model.PitchGeneration, error)                       // Retrieves the follow-ups attached to an initial pitch
}

// draft defines methods for handling composition drafts.
type draft interface {
	CreateDraft(ctx context.Context, d *model.Draft) (*model.Draft, error) // First save; assigns the draft_id
	UpdateDraft(ctx context.Context, d *model.Draft) error                 // Subsequent saves keyed by draft_id
	GetDraft(ctx context.Context, id string) (*model.Draft, error)         // Retrieves a draft by ID
	GetDraftByThread(ctx context.Context, threadID string) (*model.Draft, error)
	SendDraft(ctx context.Context, id string, scheduledSendAt time.Time) error // Hands the draft to delivery; fails when the draft was never persisted
}
