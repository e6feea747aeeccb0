package game

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

// CreateJobOffer lists open positions. Job slots are synthesized, there is
// no backing pool to reserve from.
func (s *Service) CreateJobOffer(ctx context.Context, actorID, compID int64, in JobOfferInput) (int64, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.Quantity <= 0 || in.WageMicros <= 0 {
		return 0, ErrInvalidRequest
	}
	var offerID int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO job_offers (comp_id, title, quantity, wage_micros)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, compID, in.Title, in.Quantity, in.WageMicros).Scan(&offerID)
	})
	return offerID, err
}

func (s *Service) EditJobOffer(ctx context.Context, actorID, compID int64, in JobOfferEdit) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.Quantity <= 0 || in.WageMicros <= 0 {
		return ErrInvalidRequest
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `
			UPDATE job_offers SET title = $1, quantity = $2, wage_micros = $3
			WHERE id = $4 AND comp_id = $5
		`, in.Title, in.Quantity, in.WageMicros, in.OfferID, compID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrOfferNotFound
		}
		return nil
	})
}

// DeleteJobOffer drops the remaining slots; unlike goods, nothing is
// returned anywhere.
func (s *Service) DeleteJobOffer(ctx context.Context, actorID, compID, offerID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `
			DELETE FROM job_offers WHERE id = $1 AND comp_id = $2
		`, offerID, compID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrOfferNotFound
		}
		return nil
	})
}

// ApplyForJob consumes exactly one slot and snapshots the offer's title and
// wage into the applicant's employment record. The wage is copied, not
// live-linked: later offer edits do not affect existing employees.
func (s *Service) ApplyForJob(ctx context.Context, actorID, compID, offerID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		var title string
		var wageMicros int64
		err := tx.QueryRow(ctx, `
			SELECT title, wage_micros FROM job_offers
			WHERE id = $1 AND comp_id = $2
			FOR UPDATE
		`, offerID, compID).Scan(&title, &wageMicros)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOfferNotFound
		}
		if err != nil {
			return err
		}

		var remaining int64
		if err := tx.QueryRow(ctx, `
			UPDATE job_offers SET quantity = quantity - 1 WHERE id = $1
			RETURNING quantity
		`, offerID).Scan(&remaining); err != nil {
			return err
		}
		if remaining < 0 {
			return ErrInsufficientStock
		}
		if remaining == 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM job_offers WHERE id = $1`, offerID); err != nil {
				return err
			}
		}

		// One active employment per account; taking a new job replaces
		// the previous record.
		_, err = tx.Exec(ctx, `
			INSERT INTO job_records (user_id, comp_id, title, wage_micros)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id)
			DO UPDATE SET comp_id = EXCLUDED.comp_id, title = EXCLUDED.title, wage_micros = EXCLUDED.wage_micros
		`, actorID, compID, title, wageMicros)
		return err
	})
}
