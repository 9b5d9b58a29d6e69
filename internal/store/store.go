package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/keygate/keygate/internal/model"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config controls how the store connects to its backing database. The pool
// settings bound the number of concurrent in-flight store operations; callers
// beyond the bound queue inside database/sql.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store persists administrators, users, and API keys. It is safe for
// concurrent use; each operation acquires one pooled connection (or one
// transaction-scoped connection for issuance) and releases it on every exit
// path.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the configured database and runs migrations. Pass an
// empty config for an in-memory SQLite store (used by tests and quick
// local runs). MySQL DSNs must include parseTime=true.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err = sqlx.Connect("sqlite", dsn)
	case DriverMySQL:
		db, err = sqlx.Connect("mysql", cfg.DSN)
	case DriverPostgres:
		db, err = sqlx.Connect("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// execInsert runs a named INSERT and returns the generated row id, using
// RETURNING on postgres and LastInsertId on the other drivers.
func execInsert(ctx context.Context, ext sqlx.ExtContext, driver, query string, arg interface{}) (int64, error) {
	if driver == DriverPostgres {
		rows, err := sqlx.NamedQueryContext(ctx, ext, query+" RETURNING id", arg)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, err
			}
			return 0, sql.ErrNoRows
		}
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := sqlx.NamedExecContext(ctx, ext, query, arg)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ---------------------------------------------------------------------------
// Admins
// ---------------------------------------------------------------------------

// CreateAdmin inserts a new admin account. The ID and CreatedAt fields on
// admin are populated after a successful insert. Returns ErrDuplicate when
// the email is already registered.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO admins (email, password_hash, created_at)
		VALUES (:email, :password_hash, :created_at)`

	id, err := execInsert(ctx, s.db, s.driver, q, admin)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	admin.ID = id
	return nil
}

// GetAdminByEmail returns an admin by email address.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT * FROM admins WHERE email = ?")
	if err := s.db.GetContext(ctx, &admin, q, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY email"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. Used for
// first-run detection on serve.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// ---------------------------------------------------------------------------
// Users and API keys
// ---------------------------------------------------------------------------

// CreateUserWithKey inserts an API key row and a user row referencing it as a
// single atomic unit: both succeed or both roll back, so a failed user insert
// (typically a duplicate email) never leaves an orphan key behind. The ID
// fields on both arguments and user.APIKeyID are populated on success.
func (s *Store) CreateUserWithKey(ctx context.Context, user *model.User, key *model.APIKey) error {
	now := time.Now().UTC()
	key.CreatedAt = now
	user.CreatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const keyQ = `INSERT INTO api_keys (token, start_date, expires_at, status, created_at)
		VALUES (:token, :start_date, :expires_at, :status, :created_at)`

	keyID, err := execInsert(ctx, tx, s.driver, keyQ, key)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	key.ID = keyID
	user.APIKeyID = keyID

	const userQ = `INSERT INTO users (first_name, last_name, email, api_key_id, created_at)
		VALUES (:first_name, :last_name, :email, :api_key_id, :created_at)`

	userID, err := execInsert(ctx, tx, s.driver, userQ, user)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = userID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user+key: %w", err)
	}
	return nil
}

// GetAPIKeyByToken looks up an API key by exact token match.
func (s *Store) GetAPIKeyByToken(ctx context.Context, token string) (*model.APIKey, error) {
	var key model.APIKey
	q := s.db.Rebind("SELECT * FROM api_keys WHERE token = ?")
	if err := s.db.GetContext(ctx, &key, q, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key by token: %w", err)
	}
	return &key, nil
}

// ListAPIKeys returns all API keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := s.db.SelectContext(ctx, &keys, "SELECT * FROM api_keys ORDER BY created_at DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// UpdateAPIKeyStatus sets the status of a key by ID. This is the manual
// transition path (revoke/expire); the HTTP surface never calls it.
func (s *Store) UpdateAPIKeyStatus(ctx context.Context, id int64, status string) error {
	q := s.db.Rebind("UPDATE api_keys SET status = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return fmt.Errorf("update api key status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update api key status rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsersWithKeys returns every user joined to its owned API key, in
// store-natural order.
func (s *Store) ListUsersWithKeys(ctx context.Context) ([]model.UserWithKey, error) {
	const q = `SELECT
			u.id AS user_id, u.first_name, u.last_name, u.email,
			k.token, k.start_date, k.expires_at, k.status
		FROM users u
		JOIN api_keys k ON u.api_key_id = k.id
		ORDER BY u.id`

	var rows []model.UserWithKey
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list users with keys: %w", err)
	}
	return rows, nil
}
