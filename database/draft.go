package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/model"
)

// CreateDraft performs the first save of a composition. The store assigns
// the draft_id here; every later save and the eventual send must use it.
func (d Datasource) CreateDraft(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	recipientsJSON, err := json.Marshal(draft.Recipients)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal recipients", err)
	}

	draft.DraftID = model.GenerateUUIDWithSuffix("drf")
	draft.LastSavedAt = time.Now()

	var scheduled interface{}
	if !draft.ScheduledSendAt.IsZero() {
		scheduled = draft.ScheduledSendAt
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO drafts(draft_id,thread_id,subject,body,recipients,scheduled_send_at,last_saved_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		draft.DraftID, draft.ThreadID, draft.Subject, draft.Body, recipientsJSON, scheduled, draft.LastSavedAt,
	)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record draft", err)
	}

	return draft, nil
}

func (d Datasource) UpdateDraft(ctx context.Context, draft *model.Draft) error {
	if draft.DraftID == "" {
		return apierror.NewAPIError(apierror.ErrDraftNotPersisted, "Draft has never been saved", nil)
	}

	recipientsJSON, err := json.Marshal(draft.Recipients)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal recipients", err)
	}

	draft.LastSavedAt = time.Now()

	var scheduled interface{}
	if !draft.ScheduledSendAt.IsZero() {
		scheduled = draft.ScheduledSendAt
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE drafts
		SET subject = $2, body = $3, recipients = $4, scheduled_send_at = $5, last_saved_at = $6
		WHERE draft_id = $1
	`, draft.DraftID, draft.Subject, draft.Body, recipientsJSON, scheduled, draft.LastSavedAt)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update draft", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Draft with ID '%s' not found", draft.DraftID), nil)
	}

	return nil
}

func (d Datasource) GetDraft(ctx context.Context, id string) (*model.Draft, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT draft_id, thread_id, subject, body, recipients, scheduled_send_at, last_saved_at
		FROM drafts
		WHERE draft_id = $1
	`, id)

	return scanDraft(row, id)
}

func (d Datasource) GetDraftByThread(ctx context.Context, threadID string) (*model.Draft, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT draft_id, thread_id, subject, body, recipients, scheduled_send_at, last_saved_at
		FROM drafts
		WHERE thread_id = $1 AND sent_at IS NULL
		ORDER BY last_saved_at DESC
		LIMIT 1
	`, threadID)

	return scanDraft(row, threadID)
}

func scanDraft(row *sql.Row, id string) (*model.Draft, error) {
	draft := &model.Draft{}
	var recipientsJSON []byte
	var subject, body sql.NullString
	var scheduledSendAt sql.NullTime

	err := row.Scan(&draft.DraftID, &draft.ThreadID, &subject, &body, &recipientsJSON, &scheduledSendAt, &draft.LastSavedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Draft '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve draft", err)
	}

	draft.Subject = subject.String
	draft.Body = body.String
	draft.ScheduledSendAt = scheduledSendAt.Time

	if len(recipientsJSON) > 0 {
		err = json.Unmarshal(recipientsJSON, &draft.Recipients)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal recipients", err)
		}
	}

	return draft, nil
}

// SendDraft hands a persisted draft to delivery, optionally at a future
// time. An empty id means the draft was never saved; the synchronizer is
// expected to save first.
func (d Datasource) SendDraft(ctx context.Context, id string, scheduledSendAt time.Time) error {
	if id == "" {
		return apierror.NewAPIError(apierror.ErrDraftNotPersisted, "Draft has never been saved", nil)
	}

	var scheduled interface{}
	if !scheduledSendAt.IsZero() {
		scheduled = scheduledSendAt
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE drafts
		SET sent_at = NOW(), scheduled_send_at = $2
		WHERE draft_id = $1 AND sent_at IS NULL
	`, id, scheduled)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to send draft", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Draft with ID '%s' not found or already sent", id), nil)
	}

	return nil
}
