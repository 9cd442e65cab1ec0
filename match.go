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

package pitchline

import (
	"context"

	"github.com/pitchline/pitchline/internal/notification"
	"github.com/pitchline/pitchline/model"
)

// CreateMatchSuggestion records a new match suggestion and opens the review
// task that will vet it.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - match *model.MatchSuggestion: The suggestion to record.
//
// Returns:
// - *model.MatchSuggestion: The created suggestion with its assigned id.
// - error: An error if the suggestion or its review task could not be recorded.
func (p *Pitchline) CreateMatchSuggestion(ctx context.Context, match *model.MatchSuggestion) (*model.MatchSuggestion, error) {
	ctx, span := tracer.Start(ctx, "Creating match suggestion")
	defer span.End()

	created, err := p.datasource.CreateMatchSuggestion(ctx, match)
	if err != nil {
		notification.NotifyError(err)
		return nil, err
	}

	_, err = p.datasource.CreateReviewTask(ctx, &model.ReviewTask{
		TaskType:  model.TaskTypeMatchSuggestion,
		RelatedID: created.MatchID,
	})
	if err != nil {
		notification.NotifyError(err)
		return nil, err
	}

	return created, nil
}

// GetMatchSuggestion retrieves a match suggestion by its ID.
func (p *Pitchline) GetMatchSuggestion(ctx context.Context, id string) (*model.MatchSuggestion, error) {
	return p.datasource.GetMatchSuggestion(ctx, id)
}

// GetDraft retrieves a draft by its ID.
func (p *Pitchline) GetDraft(ctx context.Context, id string) (*model.Draft, error) {
	return p.datasource.GetDraft(ctx, id)
}

// GetDraftByThread retrieves the newest unsent draft of a thread.
func (p *Pitchline) GetDraftByThread(ctx context.Context, threadID string) (*model.Draft, error) {
	return p.datasource.GetDraftByThread(ctx, threadID)
}
