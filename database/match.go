package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/internal/cache"
	"github.com/pitchline/pitchline/model"
)

func (d Datasource) CreateMatchSuggestion(ctx context.Context, match *model.MatchSuggestion) (*model.MatchSuggestion, error) {
	match.MatchID = model.GenerateUUIDWithSuffix("mt")
	match.Status = model.TaskStatusPending
	match.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO match_suggestions(match_id,campaign_id,media_id,vetting_score,reach_estimate,status,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		match.MatchID, match.CampaignID, match.MediaID, match.VettingScore, match.ReachEstimate, match.Status, match.CreatedAt,
	)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record match suggestion", err)
	}

	return match, nil
}

func (d Datasource) GetMatchSuggestion(ctx context.Context, id string) (*model.MatchSuggestion, error) {
	match := &model.MatchSuggestion{}

	if d.Cache != nil {
		if err := d.Cache.Get(ctx, cache.Key("match", id), match); err == nil && match.MatchID != "" {
			return match, nil
		}
	}

	row := d.Conn.QueryRowContext(ctx, `
		SELECT match_id, campaign_id, media_id, vetting_score, reach_estimate, status, created_at
		FROM match_suggestions
		WHERE match_id = $1
	`, id)

	err := row.Scan(&match.MatchID, &match.CampaignID, &match.MediaID, &match.VettingScore, &match.ReachEstimate, &match.Status, &match.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Match suggestion with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve match suggestion", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Set(ctx, cache.Key("match", id), match, 5*time.Minute)
	}

	return match, nil
}

func (d Datasource) UpdateMatchSuggestionStatus(ctx context.Context, id, status string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE match_suggestions
		SET status = $2
		WHERE match_id = $1
	`, id, status)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update match suggestion status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Match suggestion with ID '%s' not found", id), nil)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, cache.Key("match", id))
	}

	return nil
}
