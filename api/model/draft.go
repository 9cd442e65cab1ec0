package model

import "github.com/pitchline/pitchline/model"

// EditDraft is the request body the composer sends on each edit burst.
type EditDraft struct {
	Subject         string           `json:"subject"`
	Body            string           `json:"body"`
	Recipients      model.Recipients `json:"recipients"`
	ScheduledSendAt string           `json:"scheduled_send_at,omitempty"`
}

// SendDraft is the request body for handing a draft to delivery.
type SendDraft struct {
	ScheduledSendAt string `json:"scheduled_send_at,omitempty"`
}
