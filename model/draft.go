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

// Recipients carries the address lists of an in-progress composition.
type Recipients struct {
	To  []string `json:"to"`
	Cc  []string `json:"cc,omitempty"`
	Bcc []string `json:"bcc,omitempty"`
}

// Draft is an in-progress reply or pitch composition tied to a conversation
// thread. DraftID is assigned by the store on first save and is empty before
// that; sending an un-persisted draft is invalid and triggers
// save-then-send.
type Draft struct {
	ID              int64      `json:"-"`
	DraftID         string     `json:"draft_id,omitempty"`
	ThreadID        string     `json:"thread_id"`
	Subject         string     `json:"subject,omitempty"`
	Body            string     `json:"body"`
	Recipients      Recipients `json:"recipients"`
	ScheduledSendAt time.Time  `json:"scheduled_send_at,omitempty"`
	LastSavedAt     time.Time  `json:"last_saved_at,omitempty"`
}

// DraftContent is the editable portion of a draft, as captured from the
// composer on each keystroke burst.
type DraftContent struct {
	Subject         string
	Body            string
	Recipients      Recipients
	ScheduledSendAt time.Time
}
