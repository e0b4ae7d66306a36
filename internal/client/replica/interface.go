// Package replica persists the client's local copy of inventory records in
// SQLite, together with the sync markers the reconciliation engine replays.
package replica

import (
	"context"

	"github.com/mzarins/invsync/internal/client/models"
)

// Meta keys used by the session cache.
const (
	MetaToken = "token"
	MetaUser  = "user"
)

// Repository is the replica store. Rows keep their insertion order (SQLite
// rowid), which ListUnsynced relies on so a create is always replayed before
// edits to the same record.
type Repository interface {
	// Put upserts a record by its local key.
	Put(ctx context.Context, record *models.Record) error

	// Get returns the record with the given local key, or common.ErrNotFound.
	Get(ctx context.Context, key string) (*models.Record, error)

	// GetByServerID returns the record with the given server id, or
	// common.ErrNotFound.
	GetByServerID(ctx context.Context, id int64) (*models.Record, error)

	// List returns all records except tombstones, in insertion order.
	List(ctx context.Context) ([]models.Record, error)

	// ListUnsynced returns rows carrying local changes (pending edits and
	// tombstones), in insertion order.
	ListUnsynced(ctx context.Context) ([]models.Record, error)

	// Promote records the server id assigned to a locally created record
	// and marks the row synced.
	Promote(ctx context.Context, key string, id int64) error

	// MarkSynced clears the pending marker of one row.
	MarkSynced(ctx context.Context, key string) error

	// Remove hard-deletes one row.
	Remove(ctx context.Context, key string) error

	// ReplaceSynced swaps all synced rows for the authoritative server
	// listing. Rows with local changes are kept and shadow the server copy.
	ReplaceSynced(ctx context.Context, records []models.Record) error

	// Erase drops all replicated records and session metadata.
	Erase(ctx context.Context) error

	// SaveMeta stores one session value.
	SaveMeta(ctx context.Context, key, value string) error

	// GetMeta returns one session value, or common.ErrNotFound.
	GetMeta(ctx context.Context, key string) (string, error)

	// DeleteMeta removes one session value if present.
	DeleteMeta(ctx context.Context, key string) error
}
