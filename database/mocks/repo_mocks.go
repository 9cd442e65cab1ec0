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
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pitchline/pitchline/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Review-task methods

func (m *MockDataSource) CreateReviewTask(ctx context.Context, task *model.ReviewTask) (*model.ReviewTask, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(*model.ReviewTask), args.Error(1)
}

func (m *MockDataSource) GetReviewTask(ctx context.Context, id string) (*model.ReviewTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewTask), args.Error(1)
}

func (m *MockDataSource) TransitionReviewTask(ctx context.Context, id, status string, rejectReason *string, notes string) (bool, error) {
	args := m.Called(ctx, id, status, rejectReason, notes)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetReviewTasksByStatus(ctx context.Context, status string, limit, offset int) ([]model.ReviewTask, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]model.ReviewTask), args.Error(1)
}

// Match-suggestion methods

func (m *MockDataSource) CreateMatchSuggestion(ctx context.Context, match *model.MatchSuggestion) (*model.MatchSuggestion, error) {
	args := m.Called(ctx, match)
	return args.Get(0).(*model.MatchSuggestion), args.Error(1)
}

func (m *MockDataSource) GetMatchSuggestion(ctx context.Context, id string) (*model.MatchSuggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MatchSuggestion), args.Error(1)
}

func (m *MockDataSource) UpdateMatchSuggestionStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Pitch-generation methods

func (m *MockDataSource) CreatePitchGeneration(ctx context.Context, pitch *model.PitchGeneration) (*model.PitchGeneration, error) {
	args := m.Called(ctx, pitch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PitchGeneration), args.Error(1)
}

func (m *MockDataSource) GetPitchGeneration(ctx context.Context, id string) (*model.PitchGeneration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PitchGeneration), args.Error(1)
}

func (m *MockDataSource) ApprovePitchGeneration(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) UpdatePitchContent(ctx context.Context, id string, subject, body, recipient *string) error {
	args := m.Called(ctx, id, subject, body, recipient)
	return args.Error(0)
}

func (m *MockDataSource) UpdatePitchState(ctx context.Context, id, fromState, toState string, scheduledFor time.Time) (bool, error) {
	args := m.Called(ctx, id, fromState, toState, scheduledFor)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) MarkPitchSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	args := m.Called(ctx, id, sentAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) CountFollowUps(ctx context.Context, parentID string) (int, error) {
	args := m.Called(ctx, parentID)
	return args.Int(0), args.Error(1)
}

func (m *MockDataSource) GetFollowUps(ctx context.Context, parentID string) ([]model.PitchGeneration, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]model.PitchGeneration), args.Error(1)
}

// Draft methods

func (m *MockDataSource) CreateDraft(ctx context.Context, d *model.Draft) (*model.Draft, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDataSource) UpdateDraft(ctx context.Context, d *model.Draft) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDataSource) GetDraft(ctx context.Context, id string) (*model.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDataSource) GetDraftByThread(ctx context.Context, threadID string) (*model.Draft, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *MockDataSource) SendDraft(ctx context.Context, id string, scheduledSendAt time.Time) error {
	args := m.Called(ctx, id, scheduledSendAt)
	return args.Error(0)
}
