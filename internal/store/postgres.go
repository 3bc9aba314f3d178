// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/holokit/internal/errs"
)

// poolIface is the subset of pgxpool.Pool used by PostgresStore, so tests
// can substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// Default retry policy for transient PostgreSQL failures.
const (
	defaultRetryBase = 50 * time.Millisecond
	defaultRetries   = 3
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool      poolIface
	retryBase time.Duration
	retries   uint64
	now       func() time.Time
}

// NewPostgresStore connects a pool to dsn.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code(errs.CodeStorage).With("operation", "connect to database").Wrap(err)
	}
	return NewPostgresStoreWithPool(pool), nil
}

// NewPostgresStoreWithPool wraps an existing pool.
func NewPostgresStoreWithPool(pool poolIface) *PostgresStore {
	return &PostgresStore{
		pool:      pool,
		retryBase: defaultRetryBase,
		retries:   defaultRetries,
		now:       time.Now,
	}
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, profileID ulid.ULID) (*SaveGame, error) {
	save := NewSaveGame(profileID)

	err := s.withRetry(ctx, func(ctx context.Context) error {
		var xp int64
		var raw []byte
		err := s.pool.QueryRow(ctx,
			`SELECT xp, achievements, updated_at FROM save_games WHERE profile_id = $1`,
			profileID.String(),
		).Scan(&xp, &raw, &save.UpdatedAt)
		if err != nil {
			return err
		}
		save.XP = int(xp)
		return json.Unmarshal(raw, &save.Achievements)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(profileID)
	}
	if err != nil {
		return nil, oops.Code(errs.CodeStorage).
			With("operation", "load save").
			With("profile_id", profileID.String()).
			Wrap(err)
	}
	if save.Achievements == nil {
		save.Achievements = make(map[string]int)
	}
	return save, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, save *SaveGame) error {
	if err := save.Validate(); err != nil {
		return err
	}

	achievements := save.Achievements
	if achievements == nil {
		achievements = map[string]int{}
	}
	raw, err := json.Marshal(achievements)
	if err != nil {
		return errs.Storage("encode achievements", err)
	}

	updatedAt := s.now().UTC()
	err = s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO save_games (profile_id, xp, achievements, updated_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (profile_id) DO UPDATE SET xp = $2, achievements = $3, updated_at = $4`,
			save.ProfileID.String(), int64(save.XP), raw, updatedAt,
		)
		return err
	})
	if err != nil {
		return oops.Code(errs.CodeStorage).
			With("operation", "save").
			With("profile_id", save.ProfileID.String()).
			Wrap(err)
	}
	return nil
}

// withRetry runs fn, retrying transient PostgreSQL errors with exponential
// backoff.
func (s *PostgresStore) withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isTransient reports whether err is a PostgreSQL error worth retrying:
// serialization failures, deadlocks and connection exceptions.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsTransactionRollback(pgErr.Code) ||
		pgerrcode.IsConnectionException(pgErr.Code) ||
		pgErr.Code == pgerrcode.TooManyConnections
}
