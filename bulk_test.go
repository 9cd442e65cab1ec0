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

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/model"
)

func pendingTask(id string) *model.ReviewTask {
	return &model.ReviewTask{
		ReviewTaskID: id,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    "mt_" + id,
		Status:       model.TaskStatusPending,
	}
}

func TestBulkApproveAllSucceed(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	ids := []string{"rt_1", "rt_2", "rt_3"}

	for _, id := range ids {
		mockDS.On("GetReviewTask", mock.Anything, id).Return(pendingTask(id), nil)
		mockDS.On("TransitionReviewTask", mock.Anything, id, model.TaskStatusApproved, (*string)(nil), "").Return(true, nil)
		mockDS.On("UpdateMatchSuggestionStatus", mock.Anything, "mt_"+id, model.TaskStatusApproved).Return(nil)
	}

	result := p.BulkApproveReviewTasks(context.Background(), ids, "")
	assert.Equal(t, 3, result.SuccessfulCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, model.BulkAllSucceeded, result.Outcome())
}

func TestBulkApprovePartialFailure(t *testing.T) {
	p, mockDS := newTestPitchline(t)

	mockDS.On("GetReviewTask", mock.Anything, "rt_ok").Return(pendingTask("rt_ok"), nil)
	mockDS.On("TransitionReviewTask", mock.Anything, "rt_ok", model.TaskStatusApproved, (*string)(nil), "").Return(true, nil)
	mockDS.On("UpdateMatchSuggestionStatus", mock.Anything, "mt_rt_ok", model.TaskStatusApproved).Return(nil)

	mockDS.On("GetReviewTask", mock.Anything, "rt_missing").Return(nil,
		apierror.NewAPIError(apierror.ErrNotFound, "Review task 'rt_missing' not found", nil))

	result := p.BulkApproveReviewTasks(context.Background(), []string{"rt_ok", "rt_missing"}, "")
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, model.BulkPartiallyFailed, result.Outcome())
	assert.Equal(t, "rt_missing", result.Failed[0].ID)
	assert.NotEmpty(t, result.Failed[0].Reason)
}

func TestBulkApproveAlreadyTerminalCountsAsSuccess(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()

	// Re-running a batch that half-completed converges: the already
	// processed task reports success, not a spurious failure.
	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(&model.ReviewTask{
		ReviewTaskID: taskID,
		TaskType:     model.TaskTypeMatchSuggestion,
		RelatedID:    "mt_1",
		Status:       model.TaskStatusApproved,
	}, nil)

	result := p.BulkApproveReviewTasks(context.Background(), []string{taskID}, "")
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, model.BulkAllSucceeded, result.Outcome())
}

func TestBulkApproveDedupesInput(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	taskID := "rt_" + gofakeit.UUID()

	mockDS.On("GetReviewTask", mock.Anything, taskID).Return(pendingTask(taskID), nil).Once()
	mockDS.On("TransitionReviewTask", mock.Anything, taskID, model.TaskStatusApproved, (*string)(nil), "").Return(true, nil).Once()
	mockDS.On("UpdateMatchSuggestionStatus", mock.Anything, "mt_"+taskID, model.TaskStatusApproved).Return(nil).Once()

	result := p.BulkApproveReviewTasks(context.Background(), []string{taskID, taskID, taskID}, "")
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, []string{taskID}, result.RequestedIDs)

	mockDS.AssertExpectations(t)
}

func TestBulkApproveEmptyInput(t *testing.T) {
	p, _ := newTestPitchline(t)

	result := p.BulkApproveReviewTasks(context.Background(), nil, "")
	assert.Equal(t, model.BulkEmpty, result.Outcome())
	assert.Empty(t, result.Successful)
	assert.Empty(t, result.Failed)
}

func TestBulkApproveCompleteness(t *testing.T) {
	p, mockDS := newTestPitchline(t)
	ids := []string{"rt_a", "rt_b", "rt_c", "rt_d"}

	for i, id := range ids {
		if i%2 == 0 {
			mockDS.On("GetReviewTask", mock.Anything, id).Return(pendingTask(id), nil)
			mockDS.On("TransitionReviewTask", mock.Anything, id, model.TaskStatusApproved, (*string)(nil), "").Return(true, nil)
			mockDS.On("UpdateMatchSuggestionStatus", mock.Anything, "mt_"+id, model.TaskStatusApproved).Return(nil)
		} else {
			mockDS.On("GetReviewTask", mock.Anything, id).Return(nil,
				apierror.NewAPIError(apierror.ErrNotFound, "not found", nil))
		}
	}

	result := p.BulkApproveReviewTasks(context.Background(), ids, "")

	// Every requested id lands in exactly one of successful or failed.
	seen := map[string]int{}
	for _, id := range result.Successful {
		seen[id]++
	}
	for _, f := range result.Failed {
		seen[f.ID]++
	}
	assert.Len(t, seen, len(ids))
	for _, id := range ids {
		assert.Equal(t, 1, seen[id])
	}
}

func TestBulkSendPitchesMixedStates(t *testing.T) {
	p, mockDS := newTestPitchline(t)

	ready := &model.PitchGeneration{
		PitchGenID: "pg_ready", CampaignID: "cmp_1",
		GenerationStatus: model.GenerationStatusApproved,
		PitchState:       model.PitchStateReadyToSend,
	}
	stillDraft := &model.PitchGeneration{
		PitchGenID: "pg_draft", CampaignID: "cmp_1",
		GenerationStatus: model.GenerationStatusDraft,
	}

	mockDS.On("GetPitchGeneration", mock.Anything, "pg_ready").Return(ready, nil)
	mockDS.On("GetPitchGeneration", mock.Anything, "pg_draft").Return(stillDraft, nil)

	result := p.BulkSendPitches(context.Background(), []string{"pg_ready", "pg_draft"})
	assert.Equal(t, 1, result.SuccessfulCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, model.BulkPartiallyFailed, result.Outcome())
	assert.Equal(t, []string{"pg_ready"}, result.Successful)
}
