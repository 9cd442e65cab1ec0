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
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/internal/notification"
	"github.com/pitchline/pitchline/model"
)

// MinScheduleLead is the shortest distance into the future a send may be
// scheduled. Anything closer should be sent immediately instead.
const MinScheduleLead = time.Minute

// Quick-schedule presets offered by the composer.
const (
	PresetIn30Minutes   = "in_30_minutes"
	PresetIn1Hour       = "in_1_hour"
	PresetIn2Hours      = "in_2_hours"
	PresetTomorrow9AM   = "tomorrow_9am"
	PresetTomorrow2PM   = "tomorrow_2pm"
	PresetNextMonday9AM = "next_monday_9am"
)

// followUpOffsetDays is the fixed follow-up cadence, counted in days after
// the initial send.
var followUpOffsetDays = []int{7, 14, 21}

// ValidateSendTime rejects send times in the past or less than MinScheduleLead
// away. Callers run this before touching the store or the queue.
//
// Parameters:
// - t time.Time: The candidate send time.
// - now time.Time: The reference clock.
//
// Returns:
// - error: PAST_OR_TOO_SOON when the time is unusable, nil otherwise.
func ValidateSendTime(t, now time.Time) error {
	if t.Before(now.Add(MinScheduleLead)) {
		return apierror.NewAPIError(apierror.ErrPastOrTooSoon, fmt.Sprintf("Send time must be at least %s in the future", MinScheduleLead), nil)
	}
	return nil
}

// ResolvePreset turns a quick-schedule preset into a concrete send time in
// now's location. Day presets land on fixed clock times; next Monday is
// always strictly in the future, so on a Monday it means a week out.
//
// Parameters:
// - preset string: One of the Preset constants.
// - now time.Time: The reference clock.
//
// Returns:
// - time.Time: The resolved send time.
// - error: An error if the preset is unknown.
func ResolvePreset(preset string, now time.Time) (time.Time, error) {
	switch strings.ToLower(preset) {
	case PresetIn30Minutes:
		return now.Add(30 * time.Minute), nil
	case PresetIn1Hour:
		return now.Add(time.Hour), nil
	case PresetIn2Hours:
		return now.Add(2 * time.Hour), nil
	case PresetTomorrow9AM:
		return tomorrowAt(now, 9), nil
	case PresetTomorrow2PM:
		return tomorrowAt(now, 14), nil
	case PresetNextMonday9AM:
		return nextMondayAt(now, 9), nil
	default:
		return time.Time{}, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unknown schedule preset '%s'", preset), nil)
	}
}

func tomorrowAt(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
}

// nextMondayAt computes the coming Monday at the given hour. Monday maps
// to a full seven days so the result is never today.
func nextMondayAt(now time.Time, hour int) time.Time {
	days := (8 - int(now.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+days, hour, 0, 0, 0, now.Location())
}

// FollowUpSendTimes returns the candidate follow-up send times for a pitch
// sent at sentAt, one per cadence slot. These are candidates only: the
// dispatch worker re-checks the reply state immediately before each send.
//
// Parameters:
// - sentAt time.Time: When the initial pitch was sent.
//
// Returns:
// - []time.Time: One send time per follow-up slot.
func FollowUpSendTimes(sentAt time.Time) []time.Time {
	times := make([]time.Time, 0, len(followUpOffsetDays))
	for _, days := range followUpOffsetDays {
		times = append(times, sentAt.AddDate(0, 0, days))
	}
	return times
}

// FollowUpSendTime returns the send time for the nth follow-up, counted
// from 1. Slots past the cadence reuse the last offset.
func FollowUpSendTime(sentAt time.Time, n int) time.Time {
	if n < 1 {
		n = 1
	}
	if n > len(followUpOffsetDays) {
		n = len(followUpOffsetDays)
	}
	return sentAt.AddDate(0, 0, followUpOffsetDays[n-1])
}

// SendPitch dispatches an approved pitch immediately. The pitch must be in
// ready_to_send or scheduled; the state moves to sent when the worker
// completes the dispatch, not here.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the pitch to send.
//
// Returns:
// - *model.PitchGeneration: The pitch handed to the queue.
// - error: An error if the pitch is not sendable or could not be enqueued.
func (p *Pitchline) SendPitch(ctx context.Context, id string) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Sending pitch", trace.WithAttributes(
		attribute.String("pitch.id", id),
	))
	defer span.End()

	pitch, err := p.datasource.GetPitchGeneration(ctx, id)
	if err != nil {
		return nil, err
	}
	if pitch.PitchState != model.PitchStateReadyToSend && pitch.PitchState != model.PitchStateScheduled {
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Pitch '%s' is not ready to send (state '%s')", id, pitch.PitchState), nil)
	}

	// A manual send of a scheduled pitch jumps the queue: clear the
	// scheduled time so the task dispatches immediately.
	pitch.ScheduledSendAt = time.Time{}
	if err := p.queue.Enqueue(ctx, pitch); err != nil {
		notification.NotifyError(err)
		return nil, err
	}
	return pitch, nil
}

// SchedulePitch arms a future send for an approved pitch. The time is
// validated before any store or queue call; the pitch moves
// ready_to_send -> scheduled and the broker holds the task until the time
// arrives. Scheduled remains a sub-state of ready_to_send: the pitch can
// still be sent manually or rescheduled.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the pitch to schedule.
// - sendAt time.Time: When to send.
//
// Returns:
// - *model.PitchGeneration: The scheduled pitch.
// - error: An error if the time is unusable, the pitch is not schedulable,
// or the task could not be enqueued.
func (p *Pitchline) SchedulePitch(ctx context.Context, id string, sendAt time.Time) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Scheduling pitch", trace.WithAttributes(
		attribute.String("pitch.id", id),
	))
	defer span.End()

	if err := ValidateSendTime(sendAt, time.Now()); err != nil {
		return nil, err
	}

	pitch, err := p.datasource.GetPitchGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	fromState := pitch.PitchState
	if fromState != model.PitchStateReadyToSend && fromState != model.PitchStateScheduled {
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Pitch '%s' is not schedulable (state '%s')", id, fromState), nil)
	}

	// Queue first, store second: the store must never claim a send the
	// broker is not holding.
	pitch.PitchState = model.PitchStateScheduled
	pitch.ScheduledSendAt = sendAt
	if err := p.queue.Enqueue(ctx, pitch); err != nil {
		notification.NotifyError(err)
		return nil, err
	}

	scheduled, err := p.datasource.UpdatePitchState(ctx, id, fromState, model.PitchStateScheduled, sendAt)
	if err != nil || !scheduled {
		if cancelErr := p.queue.CancelQueuedSend(id, pitch.CampaignID); cancelErr != nil {
			notification.NotifyError(cancelErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Pitch '%s' changed state while scheduling", id), nil)
	}
	return pitch, nil
}

// ScheduleFollowUp arms a follow-up draft on the fixed cadence, counted
// from its parent's send time. The follow-up must already be approved and
// its parent must have been sent.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - id string: The ID of the follow-up pitch to schedule.
//
// Returns:
// - *model.PitchGeneration: The scheduled follow-up.
// - error: An error if the follow-up or its parent is not in a schedulable state.
func (p *Pitchline) ScheduleFollowUp(ctx context.Context, id string) (*model.PitchGeneration, error) {
	ctx, span := tracer.Start(ctx, "Scheduling follow-up", trace.WithAttributes(
		attribute.String("pitch.id", id),
	))
	defer span.End()

	followUp, err := p.datasource.GetPitchGeneration(ctx, id)
	if err != nil {
		return nil, err
	}
	if followUp.ParentPitchGenID == nil || *followUp.ParentPitchGenID == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Pitch '%s' is not a follow-up", id), nil)
	}
	if followUp.PitchState != model.PitchStateReadyToSend {
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Follow-up '%s' is not ready to send (state '%s')", id, followUp.PitchState), nil)
	}

	parent, err := p.datasource.GetPitchGeneration(ctx, *followUp.ParentPitchGenID)
	if err != nil {
		return nil, err
	}
	if parent.SentAt.IsZero() {
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Parent pitch '%s' has not been sent yet", parent.PitchGenID), nil)
	}

	slot := followUpSlot(followUp.PitchType)
	sendAt := FollowUpSendTime(parent.SentAt, slot)
	if err := ValidateSendTime(sendAt, time.Now()); err != nil {
		return nil, err
	}

	if err := p.queue.QueueFollowUp(FollowUpPayload{
		PitchGenID: id,
		ParentID:   parent.PitchGenID,
		SendAt:     sendAt,
	}); err != nil {
		notification.NotifyError(err)
		return nil, err
	}

	scheduled, err := p.datasource.UpdatePitchState(ctx, id, model.PitchStateReadyToSend, model.PitchStateScheduled, sendAt)
	if err != nil || !scheduled {
		if cancelErr := p.queue.CancelFollowUp(id); cancelErr != nil {
			notification.NotifyError(cancelErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, apierror.NewAPIError(apierror.ErrTransitionFailed, fmt.Sprintf("Follow-up '%s' changed state while scheduling", id), nil)
	}

	followUp.PitchState = model.PitchStateScheduled
	followUp.ScheduledSendAt = sendAt
	return followUp, nil
}

// followUpSlot extracts the cadence slot from a follow_up_N pitch type.
func followUpSlot(pitchType string) int {
	var n int
	_, err := fmt.Sscanf(pitchType, "follow_up_%d", &n)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
