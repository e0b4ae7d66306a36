package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzarins/invsync/internal/client/api"
	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/client/replica"
	"github.com/mzarins/invsync/internal/client/sync"
	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/logging"
)

// InventoryService serves reads and writes against the replica, routing to
// the server when connectivity allows and queuing local changes when it does
// not. A server outage discovered mid-call degrades to the offline path
// instead of failing.
type InventoryService struct {
	api     api.Client
	replica replica.Repository
	engine  *sync.Engine
	keys    *sync.KeyedMutex
	online  func() bool
	logger  logging.Logger
}

func NewInventoryService(apiClient api.Client, repo replica.Repository, engine *sync.Engine,
	keys *sync.KeyedMutex, online func() bool, logger logging.Logger) *InventoryService {
	return &InventoryService{api: apiClient, replica: repo, engine: engine, keys: keys, online: online, logger: logger}
}

// List serves the record listing. Online it refreshes the replica from the
// server first, so the answer is as fresh as connectivity allows; queued
// local edits still shadow the server copy. Offline it serves the replica.
func (s *InventoryService) List(ctx context.Context) ([]models.Record, error) {
	if s.online() {
		records, err := s.api.ListInventory(ctx, "")
		switch {
		case err == nil:
			if err := s.replica.ReplaceSynced(ctx, records); err != nil {
				return nil, err
			}
		case errors.Is(err, common.ErrTransient):
			s.logger.Warn(ctx, "listing refresh failed, serving replica", "error", err)
		default:
			return nil, err
		}
	}
	return s.replica.List(ctx)
}

// Get returns one record from the replica.
func (s *InventoryService) Get(ctx context.Context, key string) (*models.Record, error) {
	record, err := s.replica.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record.SyncStatus == models.StatusDeleted {
		return nil, common.ErrNotFound
	}
	return record, nil
}

// Add stores a new record: straight to the server when online, queued as a
// pending local create otherwise. The returned record carries its local key.
func (s *InventoryService) Add(ctx context.Context, record *models.Record) (*models.Record, error) {
	record.Key = uuid.NewString()
	record.Timestamp = time.Now().UTC()

	if s.online() {
		id, err := s.api.CreateInventory(ctx, record)
		switch {
		case err == nil:
			record.ID = id
			record.SyncStatus = models.StatusSynced
			return record, s.replica.Put(ctx, record)
		case errors.Is(err, common.ErrTransient):
			s.logger.Warn(ctx, "create queued for sync", "error", err)
		default:
			return nil, err
		}
	}

	record.SyncStatus = models.StatusPending
	return record, s.replica.Put(ctx, record)
}

// Edit applies a partial mutation to one record. Synced records are updated
// on the server directly when online; otherwise the merged record is queued.
func (s *InventoryService) Edit(ctx context.Context, key string, update *models.Update) error {
	unlock := s.keys.Lock(key)
	defer unlock()

	record, err := s.replica.Get(ctx, key)
	if err != nil {
		return err
	}
	if record.SyncStatus == models.StatusDeleted {
		return common.ErrNotFound
	}

	applyUpdate(record, update)
	record.Timestamp = time.Now().UTC()

	if s.online() && record.OnServer() && record.Synced() {
		err := s.api.UpdateInventory(ctx, record.ID, update)
		switch {
		case err == nil:
			return s.replica.Put(ctx, record)
		case errors.Is(err, common.ErrTransient):
			s.logger.Warn(ctx, "edit queued for sync", "error", err)
		default:
			return err
		}
	}

	record.SyncStatus = models.StatusPending
	return s.replica.Put(ctx, record)
}

// Delete removes one record. A record that never reached the server vanishes
// locally with no server call; otherwise the deletion goes to the server, or
// is kept as a tombstone until a later reconciliation run can deliver it.
func (s *InventoryService) Delete(ctx context.Context, key string) error {
	unlock := s.keys.Lock(key)
	defer unlock()

	record, err := s.replica.Get(ctx, key)
	if err != nil {
		return err
	}
	if record.SyncStatus == models.StatusDeleted {
		return common.ErrNotFound
	}

	if !record.OnServer() {
		return s.replica.Remove(ctx, key)
	}

	if s.online() {
		err := s.api.DeleteInventory(ctx, record.ID)
		switch {
		case err == nil, errors.Is(err, common.ErrNotFound):
			return s.replica.Remove(ctx, key)
		case errors.Is(err, common.ErrTransient):
			s.logger.Warn(ctx, "deletion queued for sync", "error", err)
		default:
			return err
		}
	}

	record.SyncStatus = models.StatusDeleted
	return s.replica.Put(ctx, record)
}

// Sync runs a full reconciliation and blocks until it finishes.
func (s *InventoryService) Sync(ctx context.Context) (*sync.Report, error) {
	return s.engine.Run(ctx)
}

// SyncIfIdle triggers a reconciliation unless one is already running.
func (s *InventoryService) SyncIfIdle(ctx context.Context) (*sync.Report, bool, error) {
	return s.engine.RunIfIdle(ctx)
}

// Report downloads the CSV export; online only.
func (s *InventoryService) Report(ctx context.Context) ([]byte, error) {
	data, err := s.api.InventoryReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	return data, nil
}

func applyUpdate(record *models.Record, update *models.Update) {
	if update.Name != nil {
		record.Name = *update.Name
	}
	if update.SerialNumber != nil {
		record.SerialNumber = *update.SerialNumber
	}
	if update.Location != nil {
		record.Location = *update.Location
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.Quantity != nil {
		record.Quantity = *update.Quantity
	}
	if update.AssignedTo != nil {
		record.AssignedTo = update.AssignedTo
	}
}
