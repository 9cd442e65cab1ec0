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

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/model"
)

func TestApproveReviewTaskMatchSuggestion(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()
	matchID := "mt_" + gofakeit.UUID()

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(&model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    matchID,
		Status:       model.TaskStatusPending,
	}, nil)
	mockDS.On("TransitionReviewTask", mock.Anything, taskID, model.TaskStatusApproved, (*string)(nil), "").Return(true, nil)
	mockDS.On("UpdateMatchSuggestionStatus", mock.Anything, matchID, model.TaskStatusApproved).Return(nil)

	result, err := p.ApproveReviewTask(context.Background(), taskID, "")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusApproved, result.Status)
	assert.Equal(t, matchID, result.MatchID)
	assert.False(t, result.AlreadyTerminal)

	mockDS.AssertExpectations(t)
}

func TestApproveReviewTaskAlreadyTerminal(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(&model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    "mt_1",
		Status:       model.TaskStatusApproved,
	}, nil)

	result, err := p.ApproveReviewTask(context.Background(), taskID, "")
	require.NoError(t, err)
	assert.True(t, result.AlreadyTerminal)
	assert.Equal(t, model.TaskStatusApproved, result.Status)

	// Terminal tasks are never transitioned again and side effects never
	// run again.
	mockDS.AssertNotCalled(t, "TransitionReviewTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDS.AssertNotCalled(t, "UpdateMatchSuggestionStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveReviewTaskLostRace(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()
	reason := "not a fit"

	pending := &model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    "mt_1",
		Status:       model.TaskStatusPending,
	}
	settled := &model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    "mt_1",
		Status:       model.TaskStatusRejected,
		RejectReason: &reason,
	}

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(pending, nil).Once()
	// Another reviewer completed the task between the read and the update.
	mockDS.On("TransitionReviewTask", mock.Anything, taskID, model.TaskStatusApproved, (*string)(nil), "").Return(false, nil)
	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(settled, nil).Once()

	result, err := p.ApproveReviewTask(context.Background(), taskID, "")
	require.NoError(t, err)
	assert.True(t, result.AlreadyTerminal)
	assert.Equal(t, model.TaskStatusRejected, result.Status)

	mockDS.AssertExpectations(t)
}

func TestRejectReviewTaskWithoutReason(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(&model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    "mt_1",
		Status:       model.TaskStatusPending,
	}, nil)
	// No reason given travels as nil all the way down, never as "".
	mockDS.On("TransitionReviewTask", mock.Anything, taskID, model.TaskStatusRejected, (*string)(nil), "").Return(true, nil)
	mockDS.On("UpdateMatchSuggestionStatus", mock.Anything, "mt_1", model.TaskStatusRejected).Return(nil)

	result, err := p.RejectReviewTask(context.Background(), taskID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusRejected, result.Status)

	mockDS.AssertExpectations(t)
}

func TestApprovePitchReviewTaskPromotesPitch(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()
	pitchID := "pg_" + gofakeit.UUID()

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(&model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypePitchReview,
		RelatedID:    pitchID,
		Status:       model.TaskStatusPending,
	}, nil)
	mockDS.On("TransitionReviewTask", mock.Anything, taskID, model.TaskStatusApproved, (*string)(nil), "").Return(true, nil)
	mockDS.On("ApprovePitchGeneration", mock.Anything, pitchID).Return(true, nil)

	result, err := p.ApproveReviewTask(context.Background(), taskID, "")
	require.NoError(t, err)
	assert.Equal(t, pitchID, result.PitchGenID)

	mockDS.AssertExpectations(t)
}

func TestRejectPitchReviewTaskLeavesPitchAlone(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()
	pitchID := "pg_" + gofakeit.UUID()
	reason := "tone is off"

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(&model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypePitchReview,
		RelatedID:    pitchID,
		Status:       model.TaskStatusPending,
	}, nil)
	mockDS.On("TransitionReviewTask", mock.Anything, taskID, model.TaskStatusRejected, &reason, "").Return(true, nil)

	result, err := p.RejectReviewTask(context.Background(), taskID, &reason, "")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusRejected, result.Status)

	// A rejected pitch stays in draft for another editing round.
	mockDS.AssertNotCalled(t, "ApprovePitchGeneration", mock.Anything, mock.Anything)
}

func TestCreateReviewTaskUnknownType(t *testing.T) {
	p, _ := newTestPitchline(t)

	_, err := p.CreateReviewTask(context.Background(), &model.ReviewTask{
		TaskType:  "press_release",
		RelatedID: "x_1",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, apierror.Code(err))
}
