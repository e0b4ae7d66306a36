// Package sync reconciles the local replica with the server: it replays
// queued local changes in the order they were made, then installs the
// server's authoritative listing.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/client/replica"
	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/logging"
)

// Report summarizes one reconciliation run.
type Report struct {
	Created   int // local creates pushed to the server
	Updated   int // local edits pushed to the server
	Deleted   int // deletions propagated (or collapsed locally)
	Conflicts int // local changes dropped after a definitive server rejection
	Retained  int // changes kept for the next run after a transient failure
}

func (r *Report) String() string {
	return fmt.Sprintf("created=%d updated=%d deleted=%d conflicts=%d retained=%d",
		r.Created, r.Updated, r.Deleted, r.Conflicts, r.Retained)
}

// Engine runs reconciliation. Runs never queue up: at most one is active and
// a trigger arriving while one runs is dropped, since the active run already
// covers the same queued changes.
type Engine struct {
	api     api.Client
	replica replica.Repository
	keys    *KeyedMutex
	logger  logging.Logger

	mu gosync.Mutex
}

func NewEngine(apiClient api.Client, repo replica.Repository, keys *KeyedMutex, logger logging.Logger) *Engine {
	return &Engine{api: apiClient, replica: repo, keys: keys, logger: logger}
}

// Run performs one full reconciliation and blocks until it finishes. The
// returned report is valid even when err is non-nil and covers the steps
// taken before the failure.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run(ctx)
}

// RunIfIdle starts a run unless one is already active, in which case it
// reports ran=false and does nothing.
func (e *Engine) RunIfIdle(ctx context.Context) (report *Report, ran bool, err error) {
	if !e.mu.TryLock() {
		return nil, false, nil
	}
	defer e.mu.Unlock()

	report, err = e.run(ctx)
	return report, true, err
}

func (e *Engine) run(ctx context.Context) (*Report, error) {
	report := &Report{}

	queued, err := e.replica.ListUnsynced(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read queued changes: %w", err)
	}

	// Replay in insertion order: a record created offline is pushed before
	// any later edit that refers to it.
	for i := range queued {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record := &queued[i]

		unlock := e.keys.Lock(record.Key)
		err := e.replay(ctx, record, report)
		unlock()
		if err != nil {
			return report, err
		}
	}

	records, err := e.api.ListInventory(ctx, "")
	if err != nil {
		return report, fmt.Errorf("failed to fetch authoritative listing: %w", err)
	}
	if err := e.replica.ReplaceSynced(ctx, records); err != nil {
		return report, fmt.Errorf("failed to install authoritative listing: %w", err)
	}

	e.logger.Info(ctx, "reconciliation finished", "report", report.String())
	return report, nil
}

// replay pushes a single queued change. Replaying an already-synced change is
// harmless: creates are promoted before the marker clears, and updates are
// full-field writes, so a second attempt lands on the same state.
func (e *Engine) replay(ctx context.Context, record *models.Record, report *Report) error {
	switch record.SyncStatus {
	case models.StatusDeleted:
		return e.replayDelete(ctx, record, report)
	case models.StatusPending:
		if record.OnServer() {
			return e.replayUpdate(ctx, record, report)
		}
		return e.replayCreate(ctx, record, report)
	default:
		return nil
	}
}

func (e *Engine) replayCreate(ctx context.Context, record *models.Record, report *Report) error {
	id, err := e.api.CreateInventory(ctx, record)
	if err != nil {
		return e.settle(ctx, record, report, err)
	}
	if err := e.replica.Promote(ctx, record.Key, id); err != nil {
		return err
	}
	report.Created++
	return nil
}

func (e *Engine) replayUpdate(ctx context.Context, record *models.Record, report *Report) error {
	if err := e.api.UpdateInventory(ctx, record.ID, models.UpdateFrom(record)); err != nil {
		return e.settle(ctx, record, report, err)
	}
	if err := e.replica.MarkSynced(ctx, record.Key); err != nil {
		return err
	}
	report.Updated++
	return nil
}

func (e *Engine) replayDelete(ctx context.Context, record *models.Record, report *Report) error {
	// A record created and deleted while offline never reached the server;
	// the tombstone collapses without a server call.
	if !record.OnServer() {
		if err := e.replica.Remove(ctx, record.Key); err != nil {
			return err
		}
		report.Deleted++
		return nil
	}

	err := e.api.DeleteInventory(ctx, record.ID)
	switch {
	case err == nil:
		report.Deleted++
	case errors.Is(err, common.ErrNotFound):
		// Already gone on the server; nothing left to do.
		report.Deleted++
	default:
		return e.settle(ctx, record, report, err)
	}
	return e.replica.Remove(ctx, record.Key)
}

// settle decides the fate of a change the server would not take. Transient
// failures keep the change queued for the next run; definitive rejections
// drop the local marker, and the later authoritative refresh restores the
// server's version of the record.
func (e *Engine) settle(ctx context.Context, record *models.Record, report *Report, cause error) error {
	if errors.Is(cause, common.ErrTransient) {
		e.logger.Warn(ctx, "change kept for next run", "key", record.Key, "error", cause)
		report.Retained++
		return nil
	}

	e.logger.Warn(ctx, "local change dropped", "key", record.Key, "error", cause)
	report.Conflicts++
	return e.replica.Remove(ctx, record.Key)
}
