package replica

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mzarins/invsync/internal/client/models"
	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/dbx"
)

// SQLiteRepository implements Repository on the local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func serverKey(id int64) string {
	return fmt.Sprintf("srv-%d", id)
}

func (r *SQLiteRepository) Put(ctx context.Context, record *models.Record) error {
	query := `INSERT INTO records (key, id, name, serial_number, location, status, quantity, assigned_to, assigned_to_name, ts, sync_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET id = excluded.id,
				name = excluded.name,
				serial_number = excluded.serial_number,
				location = excluded.location,
				status = excluded.status,
				quantity = excluded.quantity,
				assigned_to = excluded.assigned_to,
				assigned_to_name = excluded.assigned_to_name,
				ts = excluded.ts,
				sync_status = excluded.sync_status
	`
	_, err := r.db.ExecContext(ctx, query,
		record.Key, record.ID, record.Name, record.SerialNumber, record.Location,
		record.Status, record.Quantity, record.AssignedTo, record.AssignedToName,
		formatTime(record.Timestamp), string(record.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

const recordColumns = `key, id, name, serial_number, location, status, quantity, assigned_to, assigned_to_name, ts, sync_status`

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	record := &models.Record{}
	var assignedTo sql.NullInt64
	var ts, syncStatus string
	if err := scan(&record.Key, &record.ID, &record.Name, &record.SerialNumber,
		&record.Location, &record.Status, &record.Quantity, &assignedTo,
		&record.AssignedToName, &ts, &syncStatus); err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		record.AssignedTo = &assignedTo.Int64
	}
	if ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		record.Timestamp = parsed
	}
	record.SyncStatus = models.SyncStatus(syncStatus)
	return record, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.Record, error) {
	query := `select ` + recordColumns + ` from records where key=?`
	row := r.db.QueryRowContext(ctx, query, key)

	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) GetByServerID(ctx context.Context, id int64) (*models.Record, error) {
	query := `select ` + recordColumns + ` from records where id=? and id!=0`
	row := r.db.QueryRowContext(ctx, query, id)

	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Record, error) {
	query := `select ` + recordColumns + ` from records where sync_status != 'deleted' order by rowid`
	return r.queryRecords(ctx, query)
}

// ListUnsynced returns local changes in insertion order, so a record created
// offline always comes back before any later edit to it.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Record, error) {
	query := `select ` + recordColumns + ` from records where sync_status != 'synced' order by rowid`
	return r.queryRecords(ctx, query)
}

func (r *SQLiteRepository) expectOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Promote(ctx context.Context, key string, id int64) error {
	query := `update records set id=?, sync_status='synced' where key=?`
	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("failed to promote record: %w", err)
	}
	return r.expectOneRow(res)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, key string) error {
	query := `update records set sync_status='synced' where key=?`
	res, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to mark record synced: %w", err)
	}
	return r.expectOneRow(res)
}

func (r *SQLiteRepository) Remove(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `delete from records where key=?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return r.expectOneRow(res)
}

// ReplaceSynced installs the authoritative listing. Synced rows are swapped
// wholesale; rows still carrying local changes stay untouched and shadow the
// server copy of the same record until the next reconciliation run.
func (r *SQLiteRepository) ReplaceSynced(ctx context.Context, records []models.Record) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `delete from records where sync_status='synced'`); err != nil {
			return fmt.Errorf("failed to clear synced records: %w", err)
		}

		// Rows must be drained before the tx runs further statements.
		shadowed := make(map[int64]bool)
		rows, err := tx.QueryContext(ctx, `select id from records where id != 0`)
		if err != nil {
			return fmt.Errorf("failed to select local records: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			shadowed[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		query := `INSERT INTO records (key, id, name, serial_number, location, status, quantity, assigned_to, assigned_to_name, ts, sync_status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'synced')`
		for i := range records {
			record := &records[i]
			if shadowed[record.ID] {
				continue
			}
			_, err := tx.ExecContext(ctx, query,
				serverKey(record.ID), record.ID, record.Name, record.SerialNumber,
				record.Location, record.Status, record.Quantity, record.AssignedTo,
				record.AssignedToName, formatTime(record.Timestamp))
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Erase(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `delete from records`); err != nil {
			return fmt.Errorf("failed to erase records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `delete from meta`); err != nil {
			return fmt.Errorf("failed to erase meta: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveMeta(ctx context.Context, key, value string) error {
	query := `INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to save meta: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `select value from meta where key=?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("failed to select meta: %w", err)
	}
	return value, nil
}

func (r *SQLiteRepository) DeleteMeta(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `delete from meta where key=?`, key); err != nil {
		return fmt.Errorf("failed to delete meta: %w", err)
	}
	return nil
}
