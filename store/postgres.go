package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pavelzhurov/authkit/store/migrations"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx, letting the same
// statements run standalone or inside a rotation transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres is the durable [Store] implementation. Status transitions rely on
// conditional UPDATE ... WHERE status = 'active', so the row's own predicate
// is the linearization point; no advisory locking is needed.
type Postgres struct {
	db *sql.DB
}

// NewPostgres binds a store to an open database handle.
func NewPostgres(db *sql.DB) (*Postgres, error) {
	if db == nil {
		return nil, errors.New("database handle required")
	}
	return &Postgres{db: db}, nil
}

// Open connects via the pgx stdlib driver and returns a migrated store.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s, err := NewPostgres(db)
	if err != nil {
		return nil, err
	}
	if err := s.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// RunMigrations applies the embedded goose migrations.
func (s *Postgres) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

// Conn exposes the underlying handle for pool configuration and shutdown.
func (s *Postgres) Conn() *sql.DB {
	return s.db
}

const entityColumns = "id, user_id, user_role, token, issued_at, expires_at, status"

// Insert creates an Active row with a fresh surrogate id.
func (s *Postgres) Insert(ctx context.Context, n New) (Entity, error) {
	return insertTx(ctx, s.db, n)
}

func insertTx(ctx context.Context, db DBTX, n New) (Entity, error) {
	query := `
		INSERT INTO refresh_tokens (id, user_id, user_role, token, issued_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING ` + entityColumns

	row := db.QueryRowContext(ctx, query,
		uuid.NewString(), n.UserID, n.UserRole, n.Token, n.IssuedAt, n.ExpiresAt)

	e, err := scanEntity(row)
	if err != nil {
		return Entity{}, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// SelectByID returns the row with the given id.
func (s *Postgres) SelectByID(ctx context.Context, id string) (Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM refresh_tokens
		WHERE id = $1`

	return s.selectOne(ctx, query, id)
}

// SelectByToken returns the row holding the given token string.
func (s *Postgres) SelectByToken(ctx context.Context, token string) (Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM refresh_tokens
		WHERE token = $1`

	return s.selectOne(ctx, query, token)
}

func (s *Postgres) selectOne(ctx context.Context, query string, arg any) (Entity, error) {
	e, err := scanEntity(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, ErrNotFound
	}
	if err != nil {
		return Entity{}, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Revoke conditionally flips an Active row to Revoked.
func (s *Postgres) Revoke(ctx context.Context, id string) (Entity, error) {
	return revokeTx(ctx, s.db, id)
}

func revokeTx(ctx context.Context, db DBTX, id string) (Entity, error) {
	query := `
		UPDATE refresh_tokens
		SET status = 'revoked'
		WHERE id = $1 AND status = 'active'
		RETURNING ` + entityColumns

	e, err := scanEntity(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, ErrNothingWasChanged
	}
	if err != nil {
		return Entity{}, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Prolong conditionally updates expiresAt; status is untouched.
func (s *Postgres) Prolong(ctx context.Context, p Prolong) (Entity, error) {
	query := `
		UPDATE refresh_tokens
		SET expires_at = $2
		WHERE id = $1
		RETURNING ` + entityColumns

	e, err := scanEntity(s.db.QueryRowContext(ctx, query, p.ID, p.ExpiresAt))
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, ErrNothingWasChanged
	}
	if err != nil {
		return Entity{}, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Rotate revokes the old row and inserts its replacement within one
// transaction. The conditional revoke runs first; when it matches no row the
// transaction rolls back and ErrNothingWasChanged surfaces, so a lost race
// never inserts a second live token.
func (s *Postgres) Rotate(ctx context.Context, oldID string, n New) (Entity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entity{}, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := revokeTx(ctx, tx, oldID); err != nil {
		return Entity{}, err
	}

	e, err := insertTx(ctx, tx, n)
	if err != nil {
		return Entity{}, err
	}

	if err := tx.Commit(); err != nil {
		return Entity{}, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// RevokeExpired flips every Active row past its expiry to Revoked and
// returns the affected rows. Idempotent: revoked rows are not targeted again.
func (s *Postgres) RevokeExpired(ctx context.Context, now time.Time) ([]Entity, error) {
	query := `
		UPDATE refresh_tokens
		SET status = 'revoked'
		WHERE status = 'active' AND expires_at <= $1
		RETURNING ` + entityColumns

	return s.collectRows(ctx, query, now)
}

// Delete hard-deletes one row.
func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNothingWasChanged
	}
	return nil
}

// DeleteExpiredFor hard-deletes rows expired for at least retention.
func (s *Postgres) DeleteExpiredFor(ctx context.Context, now time.Time, retention time.Duration) ([]Entity, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at <= $1
		RETURNING ` + entityColumns

	return s.collectRows(ctx, query, now.Add(-retention))
}

func (s *Postgres) collectRows(ctx context.Context, query string, args ...any) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserRole, &e.Token, &e.IssuedAt, &e.ExpiresAt, &e.Status); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (Entity, error) {
	var e Entity
	err := row.Scan(&e.ID, &e.UserID, &e.UserRole, &e.Token, &e.IssuedAt, &e.ExpiresAt, &e.Status)
	if err != nil {
		return Entity{}, err
	}
	return e, nil
}
