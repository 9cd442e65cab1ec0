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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/model"
)

func TestValidateSendTime(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC) // a Wednesday

	assert.NoError(t, ValidateSendTime(now.Add(time.Minute), now))
	assert.NoError(t, ValidateSendTime(now.Add(time.Hour), now))

	err := ValidateSendTime(now.Add(30*time.Second), now)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrPastOrTooSoon, apierror.Code(err))

	err = ValidateSendTime(now.Add(-time.Hour), now)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrPastOrTooSoon, apierror.Code(err))
}

func TestResolvePresetRelative(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	got, err := ResolvePreset(PresetIn30Minutes, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), got)

	got, err = ResolvePreset(PresetIn1Hour, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), got)

	got, err = ResolvePreset(PresetIn2Hours, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), got)
}

func TestResolvePresetTomorrow(t *testing.T) {
	// Late evening: tomorrow 9am is under 12 hours away, still next day.
	now := time.Date(2025, 3, 12, 23, 30, 0, 0, time.UTC)

	got, err := ResolvePreset(PresetTomorrow9AM, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC), got)

	got, err = ResolvePreset(PresetTomorrow2PM, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 13, 14, 0, 0, 0, time.UTC), got)
}

func TestResolvePresetNextMonday(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "from wednesday",
			now:  time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "from sunday",
			now:  time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC),
		},
		{
			// Next Monday on a Monday means a week out, never today.
			name: "from monday",
			now:  time.Date(2025, 3, 17, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 24, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolvePreset(PresetNextMonday9AM, tc.now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.After(tc.now))
		})
	}
}

func TestResolvePresetUnknown(t *testing.T) {
	_, err := ResolvePreset("next_full_moon", time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, apierror.Code(err))
}

func TestFollowUpSendTimes(t *testing.T) {
	sentAt := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	times := FollowUpSendTimes(sentAt)
	require.Len(t, times, 3)
	assert.Equal(t, sentAt.AddDate(0, 0, 7), times[0])
	assert.Equal(t, sentAt.AddDate(0, 0, 14), times[1])
	assert.Equal(t, sentAt.AddDate(0, 0, 21), times[2])

	assert.Equal(t, times[0], FollowUpSendTime(sentAt, 1))
	assert.Equal(t, times[2], FollowUpSendTime(sentAt, 3))
	// Slots past the cadence clamp to the last offset.
	assert.Equal(t, times[2], FollowUpSendTime(sentAt, 9))
}

func TestSendPitchNotReady(t *testing.T) {
	p, mockDS := newTestPitchline(t)

	mockDS.On("GetPitchGeneration", mock.Anything, "pg_1").Return(&model.PitchGeneration{
		PitchGenID:       "pg_1",
		CampaignID:       "cmp_1",
		GenerationStatus: model.GenerationStatusDraft,
	}, nil)

	_, err := p.SendPitch(context.Background(), "pg_1")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrTransitionFailed, apierror.Code(err))
}

func TestSendPitchReady(t *testing.T) {
	p, mockDS := newTestPitchline(t)

	mockDS.On("GetPitchGeneration", mock.Anything, "pg_1").Return(&model.PitchGeneration{
		PitchGenID:       "pg_1",
		CampaignID:       "cmp_1",
		GenerationStatus: model.GenerationStatusApproved,
		PitchState:       model.PitchStateReadyToSend,
	}, nil)

	pitch, err := p.SendPitch(context.Background(), "pg_1")
	require.NoError(t, err)
	assert.True(t, pitch.ScheduledSendAt.IsZero())

	queued, err := p.queue.GetPitchFromQueue("pg_1")
	require.NoError(t, err)
	require.NotNil(t, queued)
	assert.Equal(t, "pg_1", queued.PitchGenID)
}

func TestSchedulePitchTooSoon(t *testing.T) {
	p, mockDS := newTestPitchline(t)

	_, err := p.SchedulePitch(context.Background(), "pg_1", time.Now().Add(10*time.Second))
	require.Error(t, err)
	assert.Equal(t, apierror.ErrPastOrTooSoon, apierror.Code(err))

	// Rejected before any store or queue call.
	mockDS.AssertNotCalled(t, "GetPitchGeneration", mock.Anything, mock.Anything)
	mockDS.AssertNotCalled(t, "UpdatePitchState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSchedulePitch(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	sendAt := time.Now().Add(2 * time.Hour)

	mockDS.On("GetPitchGeneration", mock.Anything, "pg_1").Return(&model.PitchGeneration{
		PitchGenID:       "pg_1",
		CampaignID:       "cmp_1",
		GenerationStatus: model.GenerationStatusApproved,
		PitchState:       model.PitchStateReadyToSend,
	}, nil)
	mockDS.On("UpdatePitchState", mock.Anything, "pg_1", model.PitchStateReadyToSend, model.PitchStateScheduled, sendAt).Return(true, nil)

	pitch, err := p.SchedulePitch(context.Background(), "pg_1", sendAt)
	require.NoError(t, err)
	assert.Equal(t, model.PitchStateScheduled, pitch.PitchState)
	assert.Equal(t, sendAt, pitch.ScheduledSendAt)

	mockDS.AssertExpectations(t)
}

func TestSendPitchAfterSchedule(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	sendAt := time.Now().Add(2 * time.Hour)

	mockDS.On("GetPitchGeneration", mock.Anything, "pg_1").Return(&model.PitchGeneration{
		PitchGenID:       "pg_1",
		CampaignID:       "cmp_1",
		GenerationStatus: model.GenerationStatusApproved,
		PitchState:       model.PitchStateReadyToSend,
	}, nil).Once()
	mockDS.On("UpdatePitchState", mock.Anything, "pg_1", model.PitchStateReadyToSend, model.PitchStateScheduled, sendAt).Return(true, nil)

	_, err := p.SchedulePitch(context.Background(), "pg_1", sendAt)
	require.NoError(t, err)

	// The broker holds a task under the pitch's id; a manual send replaces
	// it instead of colliding with it.
	mockDS.On("GetPitchGeneration", mock.Anything, "pg_1").Return(&model.PitchGeneration{
		PitchGenID:       "pg_1",
		CampaignID:       "cmp_1",
		GenerationStatus: model.GenerationStatusApproved,
		PitchState:       model.PitchStateScheduled,
		ScheduledSendAt:  sendAt,
	}, nil)

	pitch, err := p.SendPitch(context.Background(), "pg_1")
	require.NoError(t, err)
	assert.True(t, pitch.ScheduledSendAt.IsZero())

	queued, err := p.queue.GetPitchFromQueue("pg_1")
	require.NoError(t, err)
	require.NotNil(t, queued)
	assert.True(t, queued.ScheduledSendAt.IsZero())
}

func TestSchedulePitchStateRace(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	sendAt := time.Now().Add(2 * time.Hour)

	mockDS.On("GetPitchGeneration", mock.Anything, "pg_1").Return(&model.PitchGeneration{
		PitchGenID:       "pg_1",
		CampaignID:       "cmp_1",
		GenerationStatus: model.GenerationStatusApproved,
		PitchState:       model.PitchStateReadyToSend,
	}, nil)
	mockDS.On("UpdatePitchState", mock.Anything, "pg_1", model.PitchStateReadyToSend, model.PitchStateScheduled, sendAt).Return(false, nil)

	_, err := p.SchedulePitch(context.Background(), "pg_1", sendAt)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrTransitionFailed, apierror.Code(err))

	// The losing schedule left nothing behind in the queue.
	queued, err := p.queue.GetPitchFromQueue("pg_1")
	require.NoError(t, err)
	assert.Nil(t, queued)
}
