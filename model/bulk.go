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

// BulkOutcome distinguishes the three renderable results of a bulk
// operation. A plain boolean cannot express partial failure.
type BulkOutcome string

const (
	BulkAllSucceeded    BulkOutcome = "all_succeeded"
	BulkPartiallyFailed BulkOutcome = "partially_failed"
	BulkAllFailed       BulkOutcome = "all_failed"
	BulkEmpty           BulkOutcome = "empty"
)

// BulkFailure records why a single item of a batch failed.
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkOperationResult aggregates per-item outcomes of one bulk invocation.
// It is computed per call, never persisted. Every requested id lands in
// exactly one of Successful or Failed.
type BulkOperationResult struct {
	RequestedIDs    []string      `json:"requested_ids"`
	Successful      []string      `json:"successful"`
	Failed          []BulkFailure `json:"failed"`
	SuccessfulCount int           `json:"successful_count"`
	FailedCount     int           `json:"failed_count"`
}

// NewBulkOperationResult seeds a result for the deduplicated id set.
func NewBulkOperationResult(ids []string) *BulkOperationResult {
	return &BulkOperationResult{
		RequestedIDs: ids,
		Successful:   []string{},
		Failed:       []BulkFailure{},
	}
}

func (r *BulkOperationResult) AddSuccess(id string) {
	r.Successful = append(r.Successful, id)
	r.SuccessfulCount = len(r.Successful)
}

func (r *BulkOperationResult) AddFailure(id string, reason string) {
	r.Failed = append(r.Failed, BulkFailure{ID: id, Reason: reason})
	r.FailedCount = len(r.Failed)
}

// Outcome classifies the aggregate so callers can render success, partial
// success and total failure distinctly.
func (r *BulkOperationResult) Outcome() BulkOutcome {
	switch {
	case r.SuccessfulCount == 0 && r.FailedCount == 0:
		return BulkEmpty
	case r.FailedCount == 0:
		return BulkAllSucceeded
	case r.SuccessfulCount == 0:
		return BulkAllFailed
	}
	return BulkPartiallyFailed
}

// DedupeIDs removes duplicate ids preserving first-seen order, so a single
// item is never dispatched or counted twice.
func DedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
