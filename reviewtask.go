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
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/internal/notification"
	"github.com/pitchline/pitchline/model"
)

var (
	tracer = otel.Tracer("Pitch lifecycle")
)

// CreateReviewTask records a new review task in pending.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - task *model.ReviewTask: The task to record.
//
// Returns:
// - *model.ReviewTask: The created task with its assigned id.
// - error: An error if the task could not be recorded.
func (p *Pitchline) CreateReviewTask(ctx context.Context, task *model.ReviewTask) (*model.ReviewTask, error) {
	ctx, span := tracer.Start(ctx, "Creating review task")
	defer span.End()

	if task.TaskType != model.TaskTypeMatchSuggestion && task.TaskType != model.TaskTypePitchReview {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unknown task type '%s'", task.TaskType), nil)
	}

	created, err := p.datasource.CreateReviewTask(ctx, task)
	if err != nil {
		span.RecordError(err)
		notification.NotifyError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("review_task.id", created.ReviewTaskID))
	return created, nil
}

// GetReviewTask retrieves a review task by its ID.
func (p *Pitchline) GetReviewTask(ctx context.Context, id string) (*model.ReviewTask, error) {
	return p.datasource.GetReviewTask(ctx, id)
}

// GetReviewTasksByStatus retrieves review tasks filtered by status, paginated.
func (p *Pitchline) GetReviewTasksByStatus(ctx context.Context, status string, limit, offset int) ([]model.ReviewTask, error) {
	return p.datasource.GetReviewTasksByStatus(ctx, status, limit, offset)
}

// ApproveReviewTask moves a pending review task to approved and applies the
// approval to the entity under review: a match suggestion is marked approved,
// a pitch draft is promoted to approved/ready_to_send.
//
// Approving a task that has already been processed is a silent no-op: the
// result carries AlreadyTerminal and the task's settled status, and no
// side effects run again. Double-clicks and second browser tabs land here.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the review task to approve.
// - notes string: Optional reviewer notes appended to the task.
//
// Returns:
// - *model.TransitionResult: The outcome of the transition.
// - error: An error if the task could not be found or the transition failed.
func (p *Pitchline) ApproveReviewTask(ctx context.Context, id string, notes string) (*model.TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "Approving review task", trace.WithAttributes(
		attribute.String("review_task.id", id),
	))
	defer span.End()

	return p.transitionReviewTask(ctx, id, model.TaskStatusApproved, nil, notes)
}

// RejectReviewTask moves a pending review task to rejected. The reason is
// optional; when absent it is stored as NULL, which renders as "no reason
// given" rather than an empty reason.
//
// Like approval, rejecting an already-processed task is a silent no-op.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the review task to reject.
// - rejectReason *string: Optional reason for the rejection.
// - notes string: Optional reviewer notes appended to the task.
//
// Returns:
// - *model.TransitionResult: The outcome of the transition.
// - error: An error if the task could not be found or the transition failed.
func (p *Pitchline) RejectReviewTask(ctx context.Context, id string, rejectReason *string, notes string) (*model.TransitionResult, error) {
	ctx, span := tracer.Start(ctx, "Rejecting review task", trace.WithAttributes(
		attribute.String("review_task.id", id),
	))
	defer span.End()

	return p.transitionReviewTask(ctx, id, model.TaskStatusRejected, rejectReason, notes)
}

// transitionReviewTask drives one approve/reject transition end to end.
// The guarded UPDATE is the arbiter under concurrency: of two racing calls
// only one affects a row, and the loser is reported AlreadyTerminal exactly
// as if it had arrived late.
func (p *Pitchline) transitionReviewTask(ctx context.Context, id, status string, rejectReason *string, notes string) (*model.TransitionResult, error) {
	task, err := p.datasource.GetReviewTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.IsTerminal() {
		return p.terminalResult(ctx, task), nil
	}

	transitioned, err := p.datasource.TransitionReviewTask(ctx, id, status, rejectReason, notes)
	if err != nil {
		notification.NotifyError(err)
		return nil, err
	}
	if !transitioned {
		// Lost the race: someone else completed the task between the read
		// and the update. Re-read for the settled status.
		settled, err := p.datasource.GetReviewTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return p.terminalResult(ctx, settled), nil
	}

	result := &model.TransitionResult{ReviewTaskID: id, Status: status}
	if err := p.applyReviewOutcome(ctx, task, status, result); err != nil {
		return nil, err
	}

	go func() {
		err := SendWebhook(NewWebhook{
			Event:   getEventFromTaskStatus(status),
			Payload: result,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()

	return result, nil
}

// terminalResult shapes the silent no-op response for a task that was
// already processed.
func (p *Pitchline) terminalResult(_ context.Context, task *model.ReviewTask) *model.TransitionResult {
	result := &model.TransitionResult{
		ReviewTaskID:    task.ReviewTaskID,
		Status:          task.Status,
		AlreadyTerminal: true,
	}
	switch task.TaskType {
	case model.TaskTypeMatchSuggestion:
		result.MatchID = task.RelatedID
	case model.TaskTypePitchReview:
		result.PitchGenID = task.RelatedID
	}
	return result
}

// applyReviewOutcome propagates a fresh transition to the entity the task
// references.
func (p *Pitchline) applyReviewOutcome(ctx context.Context, task *model.ReviewTask, status string, result *model.TransitionResult) error {
	switch task.TaskType {
	case model.TaskTypeMatchSuggestion:
		result.MatchID = task.RelatedID
		if err := p.datasource.UpdateMatchSuggestionStatus(ctx, task.RelatedID, status); err != nil {
			notification.NotifyError(err)
			return err
		}
	case model.TaskTypePitchReview:
		result.PitchGenID = task.RelatedID
		if status == model.TaskStatusApproved {
			// Rejected pitches stay in draft for another editing round; only
			// approval changes the pitch itself.
			promoted, err := p.datasource.ApprovePitchGeneration(ctx, task.RelatedID)
			if err != nil {
				notification.NotifyError(err)
				return err
			}
			if !promoted {
				return apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Pitch generation '%s' is not in draft", task.RelatedID), nil)
			}
		}
	}
	return nil
}

// getEventFromTaskStatus maps a review-task status to a webhook event name.
func getEventFromTaskStatus(status string) string {
	switch status {
	case model.TaskStatusApproved:
		return "review_task.approved"
	case model.TaskStatusRejected:
		return "review_task.rejected"
	case model.TaskStatusCompleted:
		return "review_task.completed"
	default:
		return "review_task.unknown"
	}
}
