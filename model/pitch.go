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
	"errors"
	"fmt"
	"time"
)

const (
	GenerationStatusDraft    = "draft"
	GenerationStatusApproved = "approved"
)

const (
	PitchStateReadyToSend      = "ready_to_send"
	PitchStateScheduled        = "scheduled"
	PitchStateSent             = "sent"
	PitchStateOpened           = "opened"
	PitchStateClicked          = "clicked"
	PitchStateReplied          = "replied"
	PitchStateRepliedInterest  = "replied_interested"
	PitchStateFailed           = "failed"
	PitchStateLive             = "live"
	PitchStatePaid             = "paid"
	PitchStateLost             = "lost"
)

const PitchTypeInitial = "initial"

// pitchStateRank orders the delivery lifecycle so that webhook-driven
// updates can only move a pitch forward. Scheduled is a sub-state of
// ready_to_send and shares its rank.
var pitchStateRank = map[string]int{
	PitchStateReadyToSend:     0,
	PitchStateScheduled:       0,
	PitchStateSent:            1,
	PitchStateOpened:          2,
	PitchStateClicked:         3,
	PitchStateReplied:         4,
	PitchStateRepliedInterest: 5,
	PitchStateFailed:          5,
	PitchStateLost:            5,
	PitchStateLive:            6,
	PitchStatePaid:            7,
}

// PitchGeneration is a drafted outreach message, its approval status and its
// post-approval delivery state.
type PitchGeneration struct {
	ID                int64                  `json:"-"`
	PitchGenID        string                 `json:"pitch_gen_id"`
	CampaignID        string                 `json:"campaign_id"`
	MediaID           string                 `json:"media_id"`
	MatchID           *string                `json:"match_id,omitempty"`
	DraftText         string                 `json:"draft_text"`
	SubjectLine       string                 `json:"subject_line"`
	RecipientEmail    string                 `json:"recipient_email"`
	PitchType         string                 `json:"pitch_type"`
	ParentPitchGenID  *string                `json:"parent_pitch_gen_id,omitempty"`
	FollowUpCount     int                    `json:"follow_up_count"`
	GenerationStatus  string                 `json:"generation_status"`
	PitchState        string                 `json:"pitch_state,omitempty"`
	ScheduledSendAt   time.Time              `json:"scheduled_send_at,omitempty"`
	SentAt            time.Time              `json:"sent_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	MetaData          map[string]interface{} `json:"meta_data,omitempty"`
}

func (p *PitchGeneration) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// FollowUpType builds the pitch_type tag for the nth follow-up, counted
// from 1.
func FollowUpType(n int) string {
	return fmt.Sprintf("follow_up_%d", n)
}

// IsInitial reports whether the pitch is the opening message of its thread.
func (p *PitchGeneration) IsInitial() bool {
	return p.PitchType == PitchTypeInitial
}

// CanAdvancePitchState reports whether moving from the current state to the
// target state goes forward in the delivery lifecycle. Unknown states never
// advance.
func CanAdvancePitchState(current, target string) bool {
	cur, ok := pitchStateRank[current]
	if !ok {
		return false
	}
	next, ok := pitchStateRank[target]
	if !ok {
		return false
	}
	return next > cur
}

// ValidateFollowUpParent enforces the follow-up gate: a follow-up may only
// be created once its parent has a match and has been approved. Checked
// before any store call so a rejected request leaves no partial state.
func (p *PitchGeneration) ValidateFollowUpParent() error {
	if p.MatchID == nil || *p.MatchID == "" {
		return errors.New("parent pitch has no match; follow-ups require a match_id")
	}
	if p.GenerationStatus != GenerationStatusApproved {
		return errors.New("parent pitch has not been approved")
	}
	return nil
}
