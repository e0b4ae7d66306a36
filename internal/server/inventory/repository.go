package inventory

import "context"

// Repository describes persistence operations for inventory records.
// The implementation owns server-assigned identities.
type Repository interface {
	// Create inserts a record and returns the assigned id.
	Create(ctx context.Context, record *Record) (int64, error)

	// GetByID returns a single record, or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Record, error)

	// Update applies a partial mutation. Nil fields retain stored values.
	// Unknown ids return common.ErrNotFound.
	Update(ctx context.Context, id int64, update *Update) error

	// Delete removes a record. Unknown ids return common.ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// List returns records matching the filter, with AssignedToName injected
	// by joining on users.
	List(ctx context.Context, filter Filter) ([]Record, error)
}
