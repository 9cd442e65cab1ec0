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
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"

	"github.com/pitchline/pitchline/model"
)

func validateDateFormat(format, value string) error {
	_, err := time.Parse(format, value)
	if err != nil {
		return errors.New("please format the send date as 'YYYY-MM-DDTHH:MM:SS+00:00' (e.g., 2024-04-22T15:28:03+00:00)")
	}
	return nil
}

func sendAtOrPresetValidation(s *SchedulePitch) validation.RuleFunc {
	return func(value interface{}) error {
		if (s.SendAt == "" && s.Preset == "") || (s.SendAt != "" && s.Preset != "") {
			return errors.New("either send_at or preset is required, not both")
		}
		return nil
	}
}

func (r *CreateReviewTask) ValidateCreateReviewTask() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TaskType, validation.Required, validation.In(model.TaskTypeMatchSuggestion, model.TaskTypePitchReview)),
		validation.Field(&r.RelatedID, validation.Required),
	)
}

func (b *BulkReviewTasks) ValidateBulkReviewTasks() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.IDs, validation.Required),
	)
}

func (p *CreatePitch) ValidateCreatePitch() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.CampaignID, validation.Required),
		validation.Field(&p.MediaID, validation.Required),
		validation.Field(&p.DraftText, validation.Required),
		validation.Field(&p.SubjectLine, validation.Required),
	)
}

func (u *UpdatePitchContent) ValidateUpdatePitchContent() error {
	if u.SubjectLine == nil && u.DraftText == nil && u.RecipientEmail == nil {
		return errors.New("at least one of subject_line, draft_text or recipient_email is required")
	}
	return nil
}

func (s *SchedulePitch) ValidateSchedulePitch() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.SendAt, validation.By(sendAtOrPresetValidation(s))),
		validation.Field(&s.SendAt, validation.When(s.SendAt != "", validation.By(func(value interface{}) error {
			dateStr, ok := value.(string)
			if !ok {
				return errors.New("invalid type for send date")
			}
			return validateDateFormat("2006-01-02T15:04:05Z07:00", dateStr)
		})),
		),
	)
}

func (b *BulkSendPitches) ValidateBulkSendPitches() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.IDs, validation.Required),
	)
}

func (f *CreateFollowUp) ValidateCreateFollowUp() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.DraftText, validation.Required),
		validation.Field(&f.SubjectLine, validation.Required),
	)
}

func (e *RecordDeliveryEvent) ValidateRecordDeliveryEvent() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Event, validation.Required),
	)
}

func (m *CreateMatchSuggestion) ValidateCreateMatchSuggestion() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.CampaignID, validation.Required),
		validation.Field(&m.MediaID, validation.Required),
	)
}

func (d *EditDraft) ValidateEditDraft() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.ScheduledSendAt, validation.When(d.ScheduledSendAt != "", validation.By(func(value interface{}) error {
			dateStr, ok := value.(string)
			if !ok {
				return errors.New("invalid type for send date")
			}
			return validateDateFormat("2006-01-02T15:04:05Z07:00", dateStr)
		})),
		),
	)
}

func (r *CreateReviewTask) ToReviewTask() *model.ReviewTask {
	return &model.ReviewTask{TaskType: r.TaskType, RelatedID: r.RelatedID, Notes: r.Notes}
}

func (p *CreatePitch) ToPitchGeneration() *model.PitchGeneration {
	return &model.PitchGeneration{
		CampaignID:     p.CampaignID,
		MediaID:        p.MediaID,
		MatchID:        p.MatchID,
		DraftText:      p.DraftText,
		SubjectLine:    p.SubjectLine,
		RecipientEmail: p.RecipientEmail,
		FollowUpCount:  p.FollowUpCount,
		MetaData:       p.MetaData,
	}
}

func (m *CreateMatchSuggestion) ToMatchSuggestion() *model.MatchSuggestion {
	return &model.MatchSuggestion{
		CampaignID:    m.CampaignID,
		MediaID:       m.MediaID,
		VettingScore:  m.VettingScore,
		ReachEstimate: m.ReachEstimate,
	}
}

// ToDraftContent converts the composer payload, dropping an unparseable
// send time rather than failing the edit.
func (d *EditDraft) ToDraftContent() model.DraftContent {
	var scheduledSendAt time.Time
	if d.ScheduledSendAt != "" {
		parsed, err := time.Parse("2006-01-02T15:04:05Z07:00", d.ScheduledSendAt)
		if err != nil {
			logrus.Error(err)
		}
		scheduledSendAt = parsed
	}
	return model.DraftContent{
		Subject:         d.Subject,
		Body:            d.Body,
		Recipients:      d.Recipients,
		ScheduledSendAt: scheduledSendAt,
	}
}
