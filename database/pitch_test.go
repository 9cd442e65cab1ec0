package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchline/pitchline/model"
)

func TestCreatePitchGeneration(t *testing.T) {
	d, mock := newTestDatasource(t)

	pitch := &model.PitchGeneration{
		CampaignID:    "cmp_" + gofakeit.UUID(),
		MediaID:       "med_" + gofakeit.UUID(),
		DraftText:     gofakeit.Paragraph(1, 3, 10, " "),
		SubjectLine:   gofakeit.Sentence(5),
		FollowUpCount: 3,
	}

	mock.ExpectExec("INSERT INTO pitch_generations").
		WithArgs(sqlmock.AnyArg(), pitch.CampaignID, pitch.MediaID, nil, pitch.DraftText, pitch.SubjectLine, "", "initial", nil, 3, "draft", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := d.CreatePitchGeneration(context.Background(), pitch)
	require.NoError(t, err)
	assert.Contains(t, created.PitchGenID, "pg_")
	assert.Equal(t, "draft", created.GenerationStatus)
	assert.Equal(t, "initial", created.PitchType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovePitchGeneration(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "pg_" + gofakeit.UUID()

	mock.ExpectExec("UPDATE pitch_generations").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	approved, err := d.ApprovePitchGeneration(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestApprovePitchGenerationAlreadyApproved(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "pg_" + gofakeit.UUID()

	mock.ExpectExec("UPDATE pitch_generations").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	approved, err := d.ApprovePitchGeneration(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestUpdatePitchContent(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "pg_" + gofakeit.UUID()
	subject := "Updated subject"

	mock.ExpectExec("UPDATE pitch_generations").
		WithArgs(id, subject, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := d.UpdatePitchContent(context.Background(), id, &subject, nil, nil)
	assert.NoError(t, err)
}

func TestUpdatePitchContentNotFound(t *testing.T) {
	d, mock := newTestDatasource(t)

	mock.ExpectExec("UPDATE pitch_generations").
		WithArgs("pg_missing", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := d.UpdatePitchContent(context.Background(), "pg_missing", nil, nil, nil)
	assert.Error(t, err)
}

func TestMarkPitchSent(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "pg_" + gofakeit.UUID()
	now := time.Now()

	mock.ExpectExec("UPDATE pitch_generations").
		WithArgs(id, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sent, err := d.MarkPitchSent(context.Background(), id, now)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestMarkPitchSentWrongState(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "pg_" + gofakeit.UUID()
	now := time.Now()

	// already sent, or never approved: the state guard matches nothing
	mock.ExpectExec("UPDATE pitch_generations").
		WithArgs(id, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	sent, err := d.MarkPitchSent(context.Background(), id, now)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestCountFollowUps(t *testing.T) {
	d, mock := newTestDatasource(t)
	parentID := "pg_" + gofakeit.UUID()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(parentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := d.CountFollowUps(context.Background(), parentID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetPitchGeneration(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "pg_" + gofakeit.UUID()
	matchID := "mt_1"

	rows := sqlmock.NewRows([]string{"pitch_gen_id", "campaign_id", "media_id", "match_id", "draft_text", "subject_line", "recipient_email", "pitch_type", "parent_pitch_gen_id", "follow_up_count", "generation_status", "pitch_state", "scheduled_send_at", "sent_at", "created_at", "meta_data"}).
		AddRow(id, "cmp_1", "med_1", matchID, "body", "subject", "editor@outlet.com", "initial", nil, 3, "approved", "ready_to_send", nil, nil, time.Now(), []byte(`{"source":"ai"}`))

	mock.ExpectQuery("SELECT .* FROM pitch_generations WHERE pitch_gen_id = \\$1").
		WithArgs(id).
		WillReturnRows(rows)

	pitch, err := d.GetPitchGeneration(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, pitch.PitchGenID)
	require.NotNil(t, pitch.MatchID)
	assert.Equal(t, matchID, *pitch.MatchID)
	assert.Equal(t, "ready_to_send", pitch.PitchState)
	assert.Equal(t, "ai", pitch.MetaData["source"])
}
