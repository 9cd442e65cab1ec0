package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/model"
)

func TestCreateMatchSuggestion(t *testing.T) {
	d, mock := newTestDatasource(t)

	match := &model.MatchSuggestion{
		CampaignID:    "cmp_" + gofakeit.UUID(),
		MediaID:       "med_" + gofakeit.UUID(),
		VettingScore:  0.82,
		ReachEstimate: 120000,
	}
	mock.ExpectExec("INSERT INTO match_suggestions").
		WithArgs(sqlmock.AnyArg(), match.CampaignID, match.MediaID, match.VettingScore, match.ReachEstimate, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := d.CreateMatchSuggestion(context.Background(), match)
	require.NoError(t, err)
	assert.Contains(t, created.MatchID, "mt_")
	assert.Equal(t, model.TaskStatusPending, created.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMatchSuggestion(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "mt_" + gofakeit.UUID()

	rows := sqlmock.NewRows([]string{"match_id", "campaign_id", "media_id", "vetting_score", "reach_estimate", "status", "created_at"}).
		AddRow(id, "cmp_1", "med_1", 0.9, int64(50000), "pending", time.Now())
	mock.ExpectQuery("SELECT .* FROM match_suggestions").
		WithArgs(id).
		WillReturnRows(rows)

	match, err := d.GetMatchSuggestion(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, match.MatchID)
	assert.Equal(t, int64(50000), match.ReachEstimate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMatchSuggestionNotFound(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "mt_" + gofakeit.UUID()

	mock.ExpectQuery("SELECT .* FROM match_suggestions").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"match_id", "campaign_id", "media_id", "vetting_score", "reach_estimate", "status", "created_at"}))

	_, err := d.GetMatchSuggestion(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.Code(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMatchSuggestionStatus(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "mt_" + gofakeit.UUID()

	mock.ExpectExec("UPDATE match_suggestions").
		WithArgs(id, model.TaskStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := d.UpdateMatchSuggestionStatus(context.Background(), id, model.TaskStatusApproved)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMatchSuggestionStatusMissing(t *testing.T) {
	d, mock := newTestDatasource(t)
	id := "mt_" + gofakeit.UUID()

	mock.ExpectExec("UPDATE match_suggestions").
		WithArgs(id, model.TaskStatusRejected).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := d.UpdateMatchSuggestionStatus(context.Background(), id, model.TaskStatusRejected)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, apierror.Code(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
