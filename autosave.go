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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pitchline/pitchline/config"
	"github.com/pitchline/pitchline/database"
	"github.com/pitchline/pitchline/internal/notification"
	"github.com/pitchline/pitchline/model"
)

// AutosaveSynchronizer keeps in-progress compositions persisted without the
// composer ever pressing save. Each thread has its own state machine
// (clean -> dirty -> saving) and its own debounce timer; saves for
// different threads never block each other.
type AutosaveSynchronizer struct {
	datasource database.IDataSource
	debounce   time.Duration
	states     sync.Map // threadID -> *draftState
}

// draftState tracks one thread's composition between saves.
//
// At most one save is in flight per draft. A save triggered while one is
// already running waits for it to resolve, then carries any content that
// arrived in the meantime in exactly one follow-up save. Waiting instead of
// returning early means a flush never resolves before the newest content is
// persisted. A failed save leaves the state dirty so the content is retried
// on the next trigger rather than lost.
type draftState struct {
	mu     sync.Mutex
	cond   *sync.Cond
	draft  model.Draft
	dirty  bool
	saving bool
	timer  *time.Timer
}

// NewAutosaveSynchronizer initializes the synchronizer with the configured
// debounce interval.
//
// Parameters:
// - db database.IDataSource: The datasource drafts are saved to.
// - conf *config.Configuration: The configuration carrying the debounce.
//
// Returns:
// - *AutosaveSynchronizer: The ready synchronizer.
func NewAutosaveSynchronizer(db database.IDataSource, conf *config.Configuration) *AutosaveSynchronizer {
	return &AutosaveSynchronizer{
		datasource: db,
		debounce:   time.Duration(conf.Scheduler.AutosaveDebounceMs) * time.Millisecond,
	}
}

func (a *AutosaveSynchronizer) state(threadID string) *draftState {
	st := &draftState{draft: model.Draft{ThreadID: threadID}}
	st.cond = sync.NewCond(&st.mu)
	actual, _ := a.states.LoadOrStore(threadID, st)
	return actual.(*draftState)
}

// Edit records a content change from the composer. The thread goes dirty
// and the debounce timer restarts: a save fires only after the configured
// quiet period with no further edits, so a typing burst costs one save,
// not one per keystroke.
//
// Parameters:
// - threadID string: The conversation thread being composed in.
// - content model.DraftContent: The full editable content as of this edit.
func (a *AutosaveSynchronizer) Edit(threadID string, content model.DraftContent) {
	st := a.state(threadID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.Subject = content.Subject
	st.draft.Body = content.Body
	st.draft.Recipients = content.Recipients
	st.draft.ScheduledSendAt = content.ScheduledSendAt
	st.dirty = true

	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(a.debounce, func() {
		a.save(context.Background(), threadID)
	})
}

// Flush saves the thread's dirty content immediately, bypassing the
// debounce. An explicit save button and the send path both land here.
// Flushing a clean thread is a no-op. Flush returns only once the content
// as of the call is persisted, even when a save was already in flight.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - threadID string: The thread to flush.
//
// Returns:
// - error: An error if the save failed; the content stays dirty for retry.
func (a *AutosaveSynchronizer) Flush(ctx context.Context, threadID string) error {
	st := a.state(threadID)
	st.mu.Lock()
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.mu.Unlock()

	return a.save(ctx, threadID)
}

// save is the single save path for both the timer and Flush. It enforces
// single flight: a trigger that lands during an in-flight save blocks until
// that save resolves, then either takes over the follow-up save of any
// content that arrived in the meantime or returns once another trigger has.
// Callers are guaranteed that the content they saw persisted is at least as
// new as the content at the time of the call.
func (a *AutosaveSynchronizer) save(ctx context.Context, threadID string) error {
	st := a.state(threadID)

	st.mu.Lock()
	for st.saving {
		st.cond.Wait()
	}
	if !st.dirty {
		st.mu.Unlock()
		return nil
	}
	st.saving = true
	st.dirty = false
	snapshot := st.draft
	st.mu.Unlock()

	saved, err := a.persist(ctx, &snapshot)

	st.mu.Lock()
	st.saving = false
	if err != nil {
		// Content survives a failed save; the next debounce or flush
		// retries it.
		st.dirty = true
		st.cond.Broadcast()
		st.mu.Unlock()
		logrus.Errorf("autosave failed for thread %s: %v", threadID, err)
		notification.NotifyError(err)
		return err
	}
	// First save adopts the store-assigned id for every later save.
	st.draft.DraftID = saved.DraftID
	st.draft.LastSavedAt = saved.LastSavedAt
	// Edits that landed while the save was in flight are still dirty and
	// get exactly one follow-up save.
	rerun := st.dirty
	st.cond.Broadcast()
	st.mu.Unlock()

	if rerun {
		return a.save(ctx, threadID)
	}
	return nil
}

func (a *AutosaveSynchronizer) persist(ctx context.Context, draft *model.Draft) (*model.Draft, error) {
	if draft.DraftID == "" {
		return a.datasource.CreateDraft(ctx, draft)
	}
	draft.LastSavedAt = time.Now()
	if err := a.datasource.UpdateDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Send flushes any unsaved edits and hands the draft to delivery. A draft
// that was never persisted is saved first, so send works even when the
// composer hits send before the first debounce fires.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - threadID string: The thread whose draft to send.
// - scheduledSendAt time.Time: Optional future send time; zero sends now.
//
// Returns:
// - string: The id of the sent draft.
// - error: An error if the save or the send failed.
func (a *AutosaveSynchronizer) Send(ctx context.Context, threadID string, scheduledSendAt time.Time) (string, error) {
	if err := a.Flush(ctx, threadID); err != nil {
		return "", err
	}

	st := a.state(threadID)
	st.mu.Lock()
	draftID := st.draft.DraftID
	st.mu.Unlock()

	if err := a.datasource.SendDraft(ctx, draftID, scheduledSendAt); err != nil {
		return "", err
	}

	a.states.Delete(threadID)
	return draftID, nil
}

// ApplyRemote adopts content saved from another device or tab, but only
// when the local composition is untouched. Local unsaved edits always win;
// the losing remote content is simply dropped.
//
// Parameters:
// - threadID string: The thread the remote draft belongs to.
// - draft *model.Draft: The remote draft content.
//
// Returns:
// - bool: Whether the remote content was adopted.
func (a *AutosaveSynchronizer) ApplyRemote(threadID string, draft *model.Draft) bool {
	st := a.state(threadID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.dirty || st.saving {
		return false
	}
	st.draft = *draft
	st.draft.ThreadID = threadID
	return true
}

// Close releases a thread's state when the composer goes away. Dirty
// content is flushed first so abandoned edits are never dropped.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - threadID string: The thread to close.
//
// Returns:
// - error: An error if the final flush failed; the state is kept for retry.
func (a *AutosaveSynchronizer) Close(ctx context.Context, threadID string) error {
	if err := a.Flush(ctx, threadID); err != nil {
		return err
	}
	a.states.Delete(threadID)
	return nil
}
