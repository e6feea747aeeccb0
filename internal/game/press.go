package game

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

// CreateNewspaper founds a newspaper for a flat gold fee. Like company
// founding the fee is burned; one newspaper per account.
func (s *Service) CreateNewspaper(ctx context.Context, actorID int64, name string) (int64, error) {
	if err := validateEntityName(name); err != nil {
		return 0, err
	}
	var paperID int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		if err := debitUserGold(ctx, tx, actorID, NewspaperFoundCostMicros); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO newspapers (name, author_id)
			VALUES ($1, $2)
			RETURNING id
		`, strings.TrimSpace(name), actorID).Scan(&paperID)
		if isUniqueViolation(err) {
			return ErrAlreadyPublisher
		}
		if err != nil {
			return err
		}
		return appendLedger(ctx, tx, "found_newspaper",
			ledgerEntry{"user", actorID, "gold", -NewspaperFoundCostMicros},
			ledgerEntry{"sink", 0, "gold", NewspaperFoundCostMicros},
		)
	})
	return paperID, err
}

func (s *Service) Newspaper(ctx context.Context, paperID int64) (NewspaperView, error) {
	var n NewspaperView
	err := s.db.QueryRow(ctx, `
		SELECT n.id, n.name, n.author_id, u.username
		FROM newspapers n
		JOIN users u ON u.id = n.author_id
		WHERE n.id = $1
	`, paperID).Scan(&n.ID, &n.Name, &n.AuthorID, &n.AuthorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewspaperView{}, ErrNewspaperNotFound
	}
	return n, err
}

// MyNewspaper resolves the caller's own paper, if any.
func (s *Service) MyNewspaper(ctx context.Context, userID int64) (NewspaperView, error) {
	var n NewspaperView
	err := s.db.QueryRow(ctx, `
		SELECT n.id, n.name, n.author_id, u.username
		FROM newspapers n
		JOIN users u ON u.id = n.author_id
		WHERE n.author_id = $1
	`, userID).Scan(&n.ID, &n.Name, &n.AuthorID, &n.AuthorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewspaperView{}, ErrNewspaperNotFound
	}
	return n, err
}
