package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, record *Record) (int64, error) {
	query :=
		`INSERT INTO inventory (name, serial_number, location, status, quantity, assigned_to, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		record.Name, record.SerialNumber, record.Location, record.Status,
		record.Quantity, record.AssignedTo, record.Timestamp).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("%w: inventory insert: %v", common.ErrTransient, err)
	}

	record.ID = id
	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Record, error) {
	query :=
		`SELECT id, name, serial_number, location, status, quantity, assigned_to, ts
		 FROM inventory
		 WHERE id = $1
		 `

	record := &Record{}
	var assignedTo sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Name, &record.SerialNumber, &record.Location,
		&record.Status, &record.Quantity, &assignedTo, &record.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: inventory select: %v", common.ErrTransient, err)
	}
	if assignedTo.Valid {
		record.AssignedTo = &assignedTo.Int64
	}
	return record, nil
}

// Update applies a partial mutation and stamps a fresh timestamp. COALESCE
// keeps stored values for fields the caller did not supply. The single-row
// UPDATE provides the per-entity write serialization the store requires.
func (r *PostgresRepository) Update(ctx context.Context, id int64, update *Update) error {
	query :=
		`UPDATE inventory SET
			name = COALESCE($1, name),
			serial_number = COALESCE($2, serial_number),
			location = COALESCE($3, location),
			status = COALESCE($4, status),
			quantity = COALESCE($5, quantity),
			assigned_to = COALESCE($6, assigned_to),
			ts = $7
		 WHERE id = $8
		 `

	res, err := r.db.ExecContext(ctx, query,
		update.Name, update.SerialNumber, update.Location, update.Status,
		update.Quantity, update.AssignedTo, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: inventory update: %v", common.ErrTransient, err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: inventory delete: %v", common.ErrTransient, err)
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]Record, error) {
	query :=
		`SELECT i.id, i.name, i.serial_number, i.location, i.status, i.quantity, i.assigned_to, u.name, i.ts
		 FROM inventory i
		 LEFT JOIN users u ON i.assigned_to = u.id`

	var conditions []string
	var args []any
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("i.assigned_to = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)))
	}
	for n, c := range conditions {
		if n == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY i.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: inventory select: %v", common.ErrTransient, err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var record Record
		var assignedTo sql.NullInt64
		var assignedToName sql.NullString
		if err := rows.Scan(&record.ID, &record.Name, &record.SerialNumber, &record.Location,
			&record.Status, &record.Quantity, &assignedTo, &assignedToName, &record.Timestamp); err != nil {
			return nil, err
		}
		if assignedTo.Valid {
			record.AssignedTo = &assignedTo.Int64
		}
		record.AssignedToName = assignedToName.String
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
