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

import "time"

// MatchSuggestion pairs a campaign with a media outlet. It is read-mostly
// from the engine's perspective; Status mirrors the outcome of the related
// ReviewTask.
type MatchSuggestion struct {
	ID            int64     `json:"-"`
	MatchID       string    `json:"match_id"`
	CampaignID    string    `json:"campaign_id"`
	MediaID       string    `json:"media_id"`
	VettingScore  float64   `json:"vetting_score"`
	ReachEstimate int64     `json:"reach_estimate"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// EligibleForPitch reports whether a pitch draft may be created for this
// match. Approval of the match_suggestion review task is the precondition.
func (m *MatchSuggestion) EligibleForPitch() bool {
	return m.Status == TaskStatusApproved
}
