package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mzarins/invsync/internal/common"
	"github.com/mzarins/invsync/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func nullPermissions(p Permissions) sql.NullString {
	return sql.NullString{String: string(p), Valid: p != ""}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query :=
		`INSERT INTO users (username, name, password, role, permissions)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Name, user.PasswordHash, user.Role, nullPermissions(user.Permissions)).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("%w: user insert: %v", common.ErrTransient, err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var permissions sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash, &user.Role, &permissions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: user select: %v", common.ErrTransient, err)
	}
	user.Permissions = Permissions(permissions.String)
	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query :=
		`SELECT id, username, name, password, role, permissions FROM users
		 WHERE username = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query :=
		`SELECT id, username, name, password, role, permissions FROM users
		 WHERE id = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context, role Role) ([]User, error) {
	query := `SELECT id, username, name, password, role, permissions FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: user select: %v", common.ErrTransient, err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var user User
		var permissions sql.NullString
		if err := rows.Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash, &user.Role, &permissions); err != nil {
			return nil, err
		}
		user.Permissions = Permissions(permissions.String)
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.execExpectingRow(ctx, `UPDATE users SET password = $1 WHERE id = $2`, passwordHash, id)
}

func (r *PostgresRepository) UpdatePasswordByUsername(ctx context.Context, username string, passwordHash string) error {
	return r.execExpectingRow(ctx, `UPDATE users SET password = $1 WHERE username = $2`, passwordHash, username)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execExpectingRow(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: user exec: %v", common.ErrTransient, err)
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
