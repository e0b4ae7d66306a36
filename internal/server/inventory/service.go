package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/mzarins/invsync/internal/common"
)

// Service wraps the repository with input validation and timestamp stamping.
// Authorization is enforced at the HTTP layer before any call reaches here.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateRecord(record *Record) error {
	if record.Name == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	if record.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative", common.ErrValidation)
	}
	return nil
}

// Create validates and stores a new record, returning the assigned id.
func (s *Service) Create(ctx context.Context, record *Record) (int64, error) {
	if err := validateRecord(record); err != nil {
		return 0, err
	}
	record.Timestamp = time.Now().UTC()
	return s.repo.Create(ctx, record)
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial mutation. The repository stamps a fresh
// timestamp on success.
func (s *Service) Update(ctx context.Context, id int64, update *Update) error {
	if update.Quantity != nil && *update.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative", common.ErrValidation)
	}
	if update.Name != nil && *update.Name == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrValidation)
	}
	return s.repo.Update(ctx, id, update)
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns records matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	return s.repo.List(ctx, filter)
}
