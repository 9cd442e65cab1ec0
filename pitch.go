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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/internal/notification"
	"github.com/pitchline/pitchline/model"
)

// deliveryEventStates maps provider delivery events to target pitch states.
var deliveryEventStates = map[string]string{
	"sent":             model.PitchStateSent,
	"delivered":        model.PitchStateSent,
	"open":             model.PitchStateOpened,
	"click":            model.PitchStateClicked,
	"reply":            model.PitchStateReplied,
	"reply_interested": model.PitchStateRepliedInterest,
	"bounce":           model.PitchStateFailed,
}

// CreatePitchGeneration records a new pitch draft.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - pitch *model.PitchGeneration: The pitch to record.
//
// Returns:
// - *model.PitchGeneration: The created pitch with its assigned id.
// - error: An error if the pitch could not be recorded.
func (p *Pitchline) CreatePitchGeneration(ctx context.Context, pitch *model.PitchGeneration) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Creating pitch generation")
	defer span.End()

	created, err := p.datasource.CreatePitchGeneration(ctx, pitch)
	if err != nil {
		span.RecordError(err)
		notification.NotifyError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("pitch.id", created.PitchGenID))
	return created, nil
}

// GetPitchGeneration retrieves a pitch generation by its ID.
func (p *Pitchline) GetPitchGeneration(ctx context.Context, id string) (*model.PitchGeneration, error) {
	return p.datasource.GetPitchGeneration(ctx, id)
}

// ApprovePitch promotes a pitch draft directly, outside the review-task
// flow. The same compare-and-set guard applies: an already-approved pitch
// fails with TRANSITION_FAILED.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the pitch to approve.
//
// Returns:
// - *model.PitchGeneration: The approved pitch.
// - error: An error if the pitch was not in draft.
func (p *Pitchline) ApprovePitch(ctx context.Context, id string) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Approving pitch", trace.WithAttributes(
		attribute.String("pitch.id", id),
	))
	defer span.End()

	promoted, err := p.datasource.ApprovePitchGeneration(ctx, id)
	if err != nil {
		return nil, err
	}
	if !promoted {
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Pitch generation '%s' is not in draft", id), nil)
	}

	pitch, err := p.datasource.GetPitchGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		err := SendWebhook(NewWebhook{
			Event:   "pitch.approved",
			Payload: pitch,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()

	return pitch, nil
}

// UpdatePitchContent edits a pitch's subject, body or recipient in place.
// Nil fields keep their stored value. Approval status and delivery state
// are untouched, so editing a ready_to_send pitch does not demote it.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the pitch to edit.
// - subject, body, recipient *string: New values; nil leaves a field alone.
//
// Returns:
// - *model.PitchGeneration: The pitch after the edit.
// - error: An error if the pitch could not be found or updated.
func (p *Pitchline) UpdatePitchContent(ctx context.Context, id string, subject, body, recipient *string) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Updating pitch content", trace.WithAttributes(
		attribute.String("pitch.id", id),
	))
	defer span.End()

	if err := p.datasource.UpdatePitchContent(ctx, id, subject, body, recipient); err != nil {
		return nil, err
	}
	return p.datasource.GetPitchGeneration(ctx, id)
}

// CreateFollowUp creates the next follow-up draft for an initial pitch.
// The gate runs before any store call: the parent must exist, carry a
// match, be approved, and have follow-up slots left. A request that fails
// the gate leaves no partial state behind.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - parentID string: The ID of the initial pitch.
// - draftText string: The follow-up body.
// - subjectLine string: The follow-up subject.
//
// Returns:
// - *model.PitchGeneration: The created follow-up draft.
// - error: An error if the gate failed or the follow-up could not be recorded.
func (p *Pitchline) CreateFollowUp(ctx context.Context, parentID, draftText, subjectLine string) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Creating follow-up", trace.WithAttributes(
		attribute.String("pitch.parent_id", parentID),
	))
	defer span.End()

	parent, err := p.datasource.GetPitchGeneration(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsInitial() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Follow-ups attach to the initial pitch, not to another follow-up", nil)
	}
	if err := parent.ValidateFollowUpParent(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil)
	}

	existing, err := p.datasource.CountFollowUps(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.FollowUpCount > 0 && existing >= parent.FollowUpCount {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Pitch '%s' already has its %d follow-ups", parentID, parent.FollowUpCount), nil)
	}

	followUp := &model.PitchGeneration{
		CampaignID:       parent.CampaignID,
		MediaID:          parent.MediaID,
		MatchID:          parent.MatchID,
		DraftText:        draftText,
		SubjectLine:      subjectLine,
		RecipientEmail:   parent.RecipientEmail,
		PitchType:        model.FollowUpType(existing + 1),
		ParentPitchGenID: &parent.PitchGenID,
	}
	return p.datasource.CreatePitchGeneration(ctx, followUp)
}

// RecordDeliveryEvent ingests one provider delivery event for a pitch.
// The pitch state only ever moves forward: a stale or out-of-order event
// (an open arriving after a reply, a duplicate webhook) is silently
// dropped and the pitch returned unchanged. A reply also removes any
// follow-up tasks still waiting in the queue for this thread.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the pitch the event refers to.
// - event string: The event (sent, delivered, open, click, reply, reply_interested, bounce).
//
// Returns:
// - *model.PitchGeneration: The pitch after the event was applied.
// - error: An error if the event is unknown or the update failed.
func (p *Pitchline) RecordDeliveryEvent(ctx context.Context, id, event string) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Recording delivery event", trace.WithAttributes(
		attribute.String("pitch.id", id),
		attribute.String("pitch.event", event),
	))
	defer span.End()

	targetState, ok := deliveryEventStates[event]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unknown delivery event '%s'", event), nil)
	}

	pitch, err := p.datasource.GetPitchGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanAdvancePitchState(pitch.PitchState, targetState) {
		span.SetAttributes(attribute.Bool("pitch.event_stale", true))
		return pitch, nil
	}

	var advanced bool
	if targetState == model.PitchStateSent {
		advanced, err = p.datasource.MarkPitchSent(ctx, id, time.Now())
	} else {
		advanced, err = p.datasource.UpdatePitchState(ctx, id, pitch.PitchState, targetState, time.Time{})
	}
	if err != nil {
		notification.NotifyError(err)
		return nil, err
	}
	if !advanced {
		// Raced with another event between the read and the update; the
		// other event won, this one is treated as stale.
		return p.datasource.GetPitchGeneration(ctx, id)
	}

	if targetState == model.PitchStateReplied || targetState == model.PitchStateRepliedInterest {
		p.cancelQueuedFollowUps(ctx, pitch)

		go func() {
			err := SendWebhook(NewWebhook{
				Event:   "pitch.replied",
				Payload: &model.PitchGeneration{PitchGenID: id, PitchState: targetState},
			})
			if err != nil {
				notification.NotifyError(err)
			}
		}()
	}

	return p.datasource.GetPitchGeneration(ctx, id)
}

// cancelQueuedFollowUps removes queued follow-up tasks for the thread the
// pitch belongs to. The dispatch worker re-checks the reply state before
// sending, so cancellation here is best effort and failures are only
// reported, never returned.
func (p *Pitchline) cancelQueuedFollowUps(ctx context.Context, pitch *model.PitchGeneration) {
	rootID := pitch.PitchGenID
	if pitch.ParentPitchGenID != nil && *pitch.ParentPitchGenID != "" {
		rootID = *pitch.ParentPitchGenID
	}

	followUps, err := p.datasource.GetFollowUps(ctx, rootID)
	if err != nil {
		notification.NotifyError(err)
		return
	}
	for _, followUp := range followUps {
		if followUp.PitchGenID == pitch.PitchGenID {
			continue
		}
		if err := p.queue.CancelFollowUp(followUp.PitchGenID); err != nil {
			notification.NotifyError(err)
		}
	}
}
