package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/internal/cache"
	"github.com/pitchline/pitchline/model"
)

func (d Datasource) CreatePitchGeneration(ctx context.Context, pitch *model.PitchGeneration) (*model.PitchGeneration, error) {
	ctx, span := otel.Tracer("pitch.database").Start(ctx, "Saving pitch generation to db")
	defer span.End()

	metaDataJSON, err := json.Marshal(pitch.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	pitch.PitchGenID = model.GenerateUUIDWithSuffix("pg")
	pitch.GenerationStatus = model.GenerationStatusDraft
	if pitch.PitchType == "" {
		pitch.PitchType = model.PitchTypeInitial
	}
	pitch.CreatedAt = time.Now()

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO pitch_generations(pitch_gen_id,campaign_id,media_id,match_id,draft_text,subject_line,recipient_email,pitch_type,parent_pitch_gen_id,follow_up_count,generation_status,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		pitch.PitchGenID, pitch.CampaignID, pitch.MediaID, pitch.MatchID, pitch.DraftText, pitch.SubjectLine, pitch.RecipientEmail, pitch.PitchType, pitch.ParentPitchGenID, pitch.FollowUpCount, pitch.GenerationStatus, pitch.CreatedAt, metaDataJSON,
	)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record pitch generation", err)
	}

	return pitch, nil
}

func (d Datasource) GetPitchGeneration(ctx context.Context, id string) (*model.PitchGeneration, error) {
	pitch := &model.PitchGeneration{}

	if d.Cache != nil {
		if err := d.Cache.Get(ctx, cache.Key("pitch", id), pitch); err == nil && pitch.PitchGenID != "" {
			return pitch, nil
		}
	}

	row := d.Conn.QueryRowContext(ctx, `
		SELECT pitch_gen_id, campaign_id, media_id, match_id, draft_text, subject_line, recipient_email, pitch_type, parent_pitch_gen_id, follow_up_count, generation_status, pitch_state, scheduled_send_at, sent_at, created_at, meta_data
		FROM pitch_generations
		WHERE pitch_gen_id = $1
	`, id)

	var metaDataJSON []byte
	var pitchState sql.NullString
	var scheduledSendAt, sentAt sql.NullTime
	err := row.Scan(&pitch.PitchGenID, &pitch.CampaignID, &pitch.MediaID, &pitch.MatchID, &pitch.DraftText, &pitch.SubjectLine, &pitch.RecipientEmail, &pitch.PitchType, &pitch.ParentPitchGenID, &pitch.FollowUpCount, &pitch.GenerationStatus, &pitchState, &scheduledSendAt, &sentAt, &pitch.CreatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Pitch generation with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pitch generation", err)
	}

	pitch.PitchState = pitchState.String
	pitch.ScheduledSendAt = scheduledSendAt.Time
	pitch.SentAt = sentAt.Time

	if len(metaDataJSON) > 0 {
		err = json.Unmarshal(metaDataJSON, &pitch.MetaData)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}

	if d.Cache != nil {
		_ = d.Cache.Set(ctx, cache.Key("pitch", id), pitch, 5*time.Minute)
	}

	return pitch, nil
}

// ApprovePitchGeneration promotes a draft pitch to approved and arms the
// delivery lifecycle at ready_to_send. Guarded on generation_status so the
// second of two racing approvals is a no-op.
func (d Datasource) ApprovePitchGeneration(ctx context.Context, id string) (bool, error) {
	ctx, span := otel.Tracer("pitch.database").Start(ctx, "Approving pitch generation")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE pitch_generations
		SET generation_status = 'approved', pitch_state = 'ready_to_send'
		WHERE pitch_gen_id = $1 AND generation_status = 'draft'
	`, id)

	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to approve pitch generation", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, cache.Key("pitch", id))
	}

	return rowsAffected > 0, nil
}

// UpdatePitchContent mutates subject, body and recipient only. Nil fields
// are left untouched; generation_status and pitch_state never change here,
// so re-editing a ready_to_send pitch does not revert its state.
func (d Datasource) UpdatePitchContent(ctx context.Context, id string, subject, body, recipient *string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE pitch_generations
		SET subject_line = COALESCE($2, subject_line),
		    draft_text = COALESCE($3, draft_text),
		    recipient_email = COALESCE($4, recipient_email)
		WHERE pitch_gen_id = $1
	`, id, subject, body, recipient)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update pitch content", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Pitch generation with ID '%s' not found", id), nil)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, cache.Key("pitch", id))
	}

	return nil
}

// UpdatePitchState applies one compare-and-set delivery-state transition.
// A zero scheduledFor clears any scheduled time.
func (d Datasource) UpdatePitchState(ctx context.Context, id, fromState, toState string, scheduledFor time.Time) (bool, error) {
	var scheduled interface{}
	if !scheduledFor.IsZero() {
		scheduled = scheduledFor
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE pitch_generations
		SET pitch_state = $3, scheduled_send_at = $4
		WHERE pitch_gen_id = $1 AND pitch_state = $2
	`, id, fromState, toState, scheduled)

	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update pitch state", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, cache.Key("pitch", id))
	}

	return rowsAffected > 0, nil
}

// MarkPitchSent moves a pitch to sent. Both ready_to_send and scheduled are
// valid starting points; scheduled is a sub-state of ready_to_send.
func (d Datasource) MarkPitchSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	ctx, span := otel.Tracer("pitch.database").Start(ctx, "Marking pitch sent")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE pitch_generations
		SET pitch_state = 'sent', sent_at = $2, scheduled_send_at = NULL
		WHERE pitch_gen_id = $1 AND pitch_state IN ('ready_to_send', 'scheduled')
	`, id, sentAt)

	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark pitch sent", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, cache.Key("pitch", id))
	}

	return rowsAffected > 0, nil
}

func (d Datasource) GetFollowUps(ctx context.Context, parentID string) ([]model.PitchGeneration, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT pitch_gen_id, campaign_id, media_id, match_id, draft_text, subject_line, recipient_email, pitch_type, parent_pitch_gen_id, follow_up_count, generation_status, pitch_state, scheduled_send_at, sent_at, created_at
		FROM pitch_generations
		WHERE parent_pitch_gen_id = $1
		ORDER BY created_at ASC
	`, parentID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve follow-ups", err)
	}
	defer rows.Close()

	followUps := []model.PitchGeneration{}
	for rows.Next() {
		pitch := model.PitchGeneration{}
		var pitchState sql.NullString
		var scheduledSendAt, sentAt sql.NullTime
		err = rows.Scan(&pitch.PitchGenID, &pitch.CampaignID, &pitch.MediaID, &pitch.MatchID, &pitch.DraftText, &pitch.SubjectLine, &pitch.RecipientEmail, &pitch.PitchType, &pitch.ParentPitchGenID, &pitch.FollowUpCount, &pitch.GenerationStatus, &pitchState, &scheduledSendAt, &sentAt, &pitch.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan follow-up", err)
		}
		pitch.PitchState = pitchState.String
		pitch.ScheduledSendAt = scheduledSendAt.Time
		pitch.SentAt = sentAt.Time
		followUps = append(followUps, pitch)
	}

	return followUps, rows.Err()
}

func (d Datasource) CountFollowUps(ctx context.Context, parentID string) (int, error) {
	var count int
	err := d.Conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pitch_generations WHERE parent_pitch_gen_id = $1
	`, parentID).Scan(&count)

	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to count follow-ups", err)
	}

	return count, nil
}
