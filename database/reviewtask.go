package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/pitchline/pitchline/internal/apierror"
	"github.com/pitchline/pitchline/internal/cache"
	"github.com/pitchline/pitchline/model"

	_ "github.com/lib/pq"
)

func (d Datasource) CreateReviewTask(ctx context.Context, task *model.ReviewTask) (*model.ReviewTask, error) {
	ctx, span := otel.Tracer("reviewtask.database").Start(ctx, "Saving review task to db")
	defer span.End()

	task.ReviewTaskID = model.GenerateUUIDWithSuffix("rt")
	task.Status = model.TaskStatusPending
	task.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO review_tasks(review_task_id,task_type,related_id,status,notes,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		task.ReviewTaskID, task.TaskType, task.RelatedID, task.Status, task.Notes, task.CreatedAt,
	)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record review task", err)
	}

	return task, nil
}

func (d Datasource) GetReviewTask(ctx context.Context, id string) (*model.ReviewTask, error) {
	task := &model.ReviewTask{}

	if d.Cache != nil {
		if err := d.Cache.Get(ctx, cache.Key("reviewtask", id), task); err == nil && task.ReviewTaskID != "" {
			return task, nil
		}
	}

	row := d.Conn.QueryRowContext(ctx, `
		SELECT review_task_id, task_type, related_id, status, reject_reason, notes, created_at, completed_at
		FROM review_tasks
		WHERE review_task_id = $1
	`, id)

	var notes sql.NullString
	err := row.Scan(&task.ReviewTaskID, &task.TaskType, &task.RelatedID, &task.Status, &task.RejectReason, &notes, &task.CreatedAt, &task.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Review task with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve review task", err)
	}
	task.Notes = notes.String

	if d.Cache != nil {
		_ = d.Cache.Set(ctx, cache.Key("reviewtask", id), task, 5*time.Minute)
	}

	return task, nil
}

// TransitionReviewTask moves a task out of pending with a single
// compare-and-set update. The WHERE status = 'pending' guard is what makes
// concurrent double-approval from two tabs safe: the second caller affects
// zero rows and gets transitioned=false, never an error.
func (d Datasource) TransitionReviewTask(ctx context.Context, id, status string, rejectReason *string, notes string) (bool, error) {
	ctx, span := otel.Tracer("reviewtask.database").Start(ctx, "Transitioning review task")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE review_tasks
		SET status = $2, reject_reason = $3, notes = COALESCE(NULLIF($4, ''), notes), completed_at = $5
		WHERE review_task_id = $1 AND status = 'pending'
	`, id, status, rejectReason, notes, time.Now())

	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to transition review task", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Delete(ctx, cache.Key("reviewtask", id))
	}

	return rowsAffected > 0, nil
}

func (d Datasource) GetReviewTasksByStatus(ctx context.Context, status string, limit, offset int) ([]model.ReviewTask, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT review_task_id, task_type, related_id, status, reject_reason, notes, created_at, completed_at
		FROM review_tasks
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve review tasks", err)
	}
	defer rows.Close()

	var tasks []model.ReviewTask
	for rows.Next() {
		task := model.ReviewTask{}
		var notes sql.NullString
		err = rows.Scan(&task.ReviewTaskID, &task.TaskType, &task.RelatedID, &task.Status, &task.RejectReason, &notes, &task.CreatedAt, &task.CompletedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan review task", err)
		}
		task.Notes = notes.String
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}
