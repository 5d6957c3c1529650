package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alphabook/internal/auth"
	"alphabook/internal/rbac"
	"alphabook/pkg/utils"
)

var _ Store = (*PostgresStore)(nil)

const userColumns = `id, email, name, role, password_hash, token_version, created_at, updated_at`

// PostgresStore reads and mutates the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.UserRecord, error) {
	var (
		u    auth.UserRecord
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.UserRecord{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.UserRecord{}, err
	}
	u.Role = rbac.Role(role)
	return u, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (auth.UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (auth.UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) ChangeRole(ctx context.Context, id int64, role rbac.Role, authorize AuthorizeFunc) (auth.UserRecord, error) {
	return s.mutateLocked(ctx, id, authorize,
		`update users set role = $2, updated_at = now() where id = $1 returning `+userColumns,
		id, string(role))
}

func (s *PostgresStore) BumpTokenVersion(ctx context.Context, id int64, authorize AuthorizeFunc) (auth.UserRecord, error) {
	return s.mutateLocked(ctx, id, authorize,
		`update users set token_version = token_version + 1, updated_at = now() where id = $1 returning `+userColumns,
		id)
}

// mutateLocked locks the row, lets authorize see the committed role, then
// runs update. Concurrent admin changes to one user serialize on the lock.
func (s *PostgresStore) mutateLocked(ctx context.Context, id int64, authorize AuthorizeFunc, update string, args ...any) (auth.UserRecord, error) {
	var out auth.UserRecord
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		current, err := scanUser(tx.QueryRowContext(ctx,
			`select `+userColumns+` from users where id = $1 for update`, id))
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(current.Role); err != nil {
				return err
			}
		}
		out, err = scanUser(tx.QueryRowContext(ctx, update, args...))
		if err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return auth.UserRecord{}, err
	}
	return out, nil
}
