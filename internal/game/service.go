package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service is the economic transaction engine. Every mutating operation runs
// in a single serializable transaction; partial application is never
// observable.
type Service struct {
	db  *pgxpool.Pool
	log *slog.Logger
	now func() time.Time
}

func NewService(db *pgxpool.Pool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:  db,
		log: logger,
		now: time.Now,
	}
}

// inTx runs fn inside a serializable transaction, retrying serialization
// failures with backoff. Any other error aborts the whole unit.
func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	const maxAttempts = 8
	retryDelay := 75 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return err
		}
		err = func() error {
			defer tx.Rollback(ctx)
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit(ctx)
		}()
		if err == nil {
			return nil
		}
		if !isSerializationError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			return ErrTxConflict
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 1200*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// lockUsers takes FOR UPDATE locks on the named account rows in ascending id
// order, so that operations touching the same pair of accounts in opposite
// directions cannot deadlock.
func lockUsers(ctx context.Context, tx pgx.Tx, ids ...int64) error {
	rows, err := tx.Query(ctx, `
		SELECT id FROM users WHERE id = ANY($1) ORDER BY id FOR UPDATE
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	seen := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		seen++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if seen != len(ids) {
		return ErrUserNotFound
	}
	return nil
}

func lockCompany(ctx context.Context, tx pgx.Tx, compID int64) (ceoID int64, err error) {
	err = tx.QueryRow(ctx, `
		SELECT ceo_id FROM companies WHERE id = $1 FOR UPDATE
	`, compID).Scan(&ceoID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrCompanyNotFound
	}
	return ceoID, err
}

// lockOwnedCompany locks the company row and verifies the actor is its CEO.
func lockOwnedCompany(ctx context.Context, tx pgx.Tx, compID, actorID int64) error {
	ceoID, err := lockCompany(ctx, tx, compID)
	if err != nil {
		return err
	}
	if ceoID != actorID {
		return ErrUnauthorized
	}
	return nil
}

// costMicros multiplies a micros price by an integer quantity with overflow
// detection.
func costMicros(priceMicros, quantity int64) (int64, error) {
	v := new(big.Int).Mul(big.NewInt(priceMicros), big.NewInt(quantity))
	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: cost overflow", ErrInvalidRequest)
	}
	return v.Int64(), nil
}
