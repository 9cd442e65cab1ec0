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

package pitchline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitchline/pitchline/model"
)

// runBulk fans one operation out over a deduplicated id set and gathers
// every outcome. Each item is attempted independently: one failure never
// stops the rest, and the aggregate is only assembled after every item has
// settled. Every requested id lands in exactly one of successful or failed.
func runBulk(ids []string, op func(id string) error) *model.BulkOperationResult {
	deduped := model.DedupeIDs(ids)
	result := model.NewBulkOperationResult(deduped)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, id := range deduped {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := op(id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.AddFailure(id, err.Error())
				return
			}
			result.AddSuccess(id)
		}(id)
	}
	wg.Wait()

	return result
}

// BulkApproveReviewTasks approves a batch of review tasks, one outcome per
// task. Tasks that were already processed count as successes: the desired
// end state holds, so re-running a batch that half-completed converges
// instead of reporting spurious failures.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - ids []string: The review-task ids to approve; duplicates are collapsed.
// - notes string: Optional reviewer notes applied to each task.
//
// Returns:
// - *model.BulkOperationResult: Per-item outcomes plus aggregate counts.
func (p *Pitchline) BulkApproveReviewTasks(ctx context.Context, ids []string, notes string) *model.BulkOperationResult {
	ctx, span := tracer.Start(ctx, "Bulk approving review tasks", trace.WithAttributes(
		attribute.Int("bulk.requested", len(ids)),
	))
	defer span.End()

	result := runBulk(ids, func(id string) error {
		_, err := p.ApproveReviewTask(ctx, id, notes)
		return err
	})

	span.SetAttributes(
		attribute.Int("bulk.successful", result.SuccessfulCount),
		attribute.Int("bulk.failed", result.FailedCount),
	)
	return result
}

// BulkRejectReviewTasks rejects a batch of review tasks with a shared
// reason. The same idempotency rule applies: already-processed tasks are
// successes.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - ids []string: The review-task ids to reject; duplicates are collapsed.
// - rejectReason *string: Optional reason recorded on each task.
// - notes string: Optional reviewer notes applied to each task.
//
// Returns:
// - *model.BulkOperationResult: Per-item outcomes plus aggregate counts.
func (p *Pitchline) BulkRejectReviewTasks(ctx context.Context, ids []string, rejectReason *string, notes string) *model.BulkOperationResult {
	ctx, span := tracer.Start(ctx, "Bulk rejecting review tasks", trace.WithAttributes(
		attribute.Int("bulk.requested", len(ids)),
	))
	defer span.End()

	result := runBulk(ids, func(id string) error {
		_, err := p.RejectReviewTask(ctx, id, rejectReason, notes)
		return err
	})

	span.SetAttributes(
		attribute.Int("bulk.successful", result.SuccessfulCount),
		attribute.Int("bulk.failed", result.FailedCount),
	)
	return result
}

// BulkSendPitches dispatches a batch of approved pitches. Pitches that are
// not sendable (still in draft, already sent) fail individually with the
// reason attached; the rest go out.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - ids []string: The pitch ids to send; duplicates are collapsed.
//
// Returns:
// - *model.BulkOperationResult: Per-item outcomes plus aggregate counts.
func (p *Pitchline) BulkSendPitches(ctx context.Context, ids []string) *model.BulkOperationResult {
	ctx, span := tracer.Start(ctx, "Bulk sending pitches", trace.WithAttributes(
		attribute.Int("bulk.requested", len(ids)),
	))
	defer span.End()

	result := runBulk(ids, func(id string) error {
		_, err := p.SendPitch(ctx, id)
		return err
	})

	span.SetAttributes(
		attribute.Int("bulk.successful", result.SuccessfulCount),
		attribute.Int("bulk.failed", result.FailedCount),
	)
	return result
}
