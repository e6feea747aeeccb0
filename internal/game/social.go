package game

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Donate transfers gold and/or a wallet balance from the actor to another
// account. Both movements happen in one atomic unit; the recipient is told
// afterwards.
func (s *Service) Donate(ctx context.Context, in DonateInput) error {
	if in.ActorID == in.ProfileID {
		return ErrInvalidRequest
	}
	if in.GoldMicros < 0 {
		return ErrInvalidRequest
	}
	if in.Funds != nil && in.Funds.AmountMicros <= 0 {
		return ErrInvalidRequest
	}
	if in.GoldMicros == 0 && in.Funds == nil {
		return ErrInvalidRequest
	}

	var senderName, currency string
	var sentFunds int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		currency, sentFunds = "", 0
		if err := lockUsers(ctx, tx, in.ActorID, in.ProfileID); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			SELECT username FROM users WHERE id = $1
		`, in.ActorID).Scan(&senderName); err != nil {
			return err
		}
		if in.GoldMicros > 0 {
			if err := debitUserGold(ctx, tx, in.ActorID, in.GoldMicros); err != nil {
				return err
			}
			if err := creditUserGold(ctx, tx, in.ProfileID, in.GoldMicros); err != nil {
				return err
			}
			if err := appendLedger(ctx, tx, "donate_gold",
				ledgerEntry{"user", in.ActorID, "gold", -in.GoldMicros},
				ledgerEntry{"user", in.ProfileID, "gold", in.GoldMicros},
			); err != nil {
				return err
			}
		}
		if f := in.Funds; f != nil {
			cur, err := debitWalletByID(ctx, tx, f.BalanceID, in.ActorID, f.AmountMicros)
			if err != nil {
				return err
			}
			if err := creditWallet(ctx, tx, in.ProfileID, cur, f.AmountMicros); err != nil {
				return err
			}
			if err := appendLedger(ctx, tx, "donate_funds",
				ledgerEntry{"user", in.ActorID, cur, -f.AmountMicros},
				ledgerEntry{"user", in.ProfileID, cur, f.AmountMicros},
			); err != nil {
				return err
			}
			currency, sentFunds = cur, f.AmountMicros
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(ctx, in.ProfileID,
		buildDonationAlert(in.ActorID, senderName, in.GoldMicros, currency, sentFunds))
	return nil
}

// GiftItems moves inventory rows from the actor to another account. The whole
// batch applies or none of it does.
func (s *Service) GiftItems(ctx context.Context, actorID, profileID int64, items []GiftItem) error {
	if actorID == profileID || len(items) == 0 {
		return ErrInvalidRequest
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return ErrInvalidRequest
		}
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID, profileID); err != nil {
			return err
		}
		for _, it := range items {
			ownerID, itemID, err := debitInvItemByID(ctx, tx, it.InvItemID, it.Quantity)
			if err != nil {
				return err
			}
			if ownerID != actorID {
				return ErrNotOwner
			}
			if err := creditInvItem(ctx, tx, profileID, itemID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// SendFriendRequest records a pending request and the handshake alert the
// recipient acts on. The alert is part of the transaction: without it the
// request could never be accepted.
func (s *Service) SendFriendRequest(ctx context.Context, actorID, profileID int64) error {
	if actorID == profileID {
		return ErrInvalidRequest
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var senderName string
		if err := tx.QueryRow(ctx, `
			SELECT username FROM users WHERE id = $1
		`, actorID).Scan(&senderName); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
		`, profileID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2
			)
		`, actorID, profileID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrAlreadyFriend
		}
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM pending_friends
				WHERE (user_id = $1 AND pending_id = $2)
				   OR (user_id = $2 AND pending_id = $1)
			)
		`, actorID, profileID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrAlreadyPending
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO pending_friends (user_id, pending_id) VALUES ($1, $2)
		`, profileID, actorID); err != nil {
			return err
		}
		return insertAlert(ctx, tx, profileID, buildFriendReqAlert(actorID, senderName))
	})
}

// AcceptFriendRequest consumes the handshake alert and the pending row, then
// writes the friendship in both directions.
func (s *Service) AcceptFriendRequest(ctx context.Context, actorID, alertID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		fromID, err := deleteAlertReturningFrom(ctx, tx, alertID, actorID)
		if err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `
			DELETE FROM pending_friends WHERE user_id = $1 AND pending_id = $2
		`, actorID, fromID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrPendingNotFound
		}
		// Crossed requests can both be accepted; a friendship row that
		// already exists is fine.
		if _, err := tx.Exec(ctx, `
			INSERT INTO friends (user_id, friend_id) VALUES ($1, $2), ($2, $1)
			ON CONFLICT (user_id, friend_id) DO NOTHING
		`, actorID, fromID); err != nil {
			return err
		}
		return nil
	})
}

// DeclineFriendRequest drops the alert and the pending row without creating
// anything.
func (s *Service) DeclineFriendRequest(ctx context.Context, actorID, alertID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		fromID, err := deleteAlertReturningFrom(ctx, tx, alertID, actorID)
		if err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `
			DELETE FROM pending_friends WHERE user_id = $1 AND pending_id = $2
		`, actorID, fromID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrPendingNotFound
		}
		return nil
	})
}

func (s *Service) RemoveFriend(ctx context.Context, actorID, friendID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			DELETE FROM friends
			WHERE (user_id = $1 AND friend_id = $2)
			   OR (user_id = $2 AND friend_id = $1)
		`, actorID, friendID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *Service) ListFriends(ctx context.Context, userID int64) ([]FriendView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.username
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]FriendView, 0)
	for rows.Next() {
		var f FriendView
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
