package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Ledger adjustments are post-hoc: the delta is applied blindly and the
// resulting value checked for negativity, relying on the enclosing
// serializable transaction to undo the write on failure. Concurrent
// overdraws are serialized by the row lock the UPDATE itself takes.

func creditUserGold(ctx context.Context, tx pgx.Tx, userID, amount int64) error {
	cmd, err := tx.Exec(ctx, `
		UPDATE users SET gold_micros = gold_micros + $1 WHERE id = $2
	`, amount, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func debitUserGold(ctx context.Context, tx pgx.Tx, userID, amount int64) error {
	var next int64
	err := tx.QueryRow(ctx, `
		UPDATE users SET gold_micros = gold_micros - $1 WHERE id = $2
		RETURNING gold_micros
	`, amount, userID).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if next < 0 {
		return ErrInsufficientGold
	}
	return nil
}

func creditCompanyGold(ctx context.Context, tx pgx.Tx, compID, amount int64) error {
	cmd, err := tx.Exec(ctx, `
		UPDATE companies SET gold_micros = gold_micros + $1 WHERE id = $2
	`, amount, compID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func debitCompanyGold(ctx context.Context, tx pgx.Tx, compID, amount int64) error {
	var next int64
	err := tx.QueryRow(ctx, `
		UPDATE companies SET gold_micros = gold_micros - $1 WHERE id = $2
		RETURNING gold_micros
	`, amount, compID).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCompanyNotFound
	}
	if err != nil {
		return err
	}
	if next < 0 {
		return ErrInsufficientGold
	}
	return nil
}

// creditWallet lazily creates the recipient balance row on first credit.
func creditWallet(ctx context.Context, tx pgx.Tx, ownerID int64, currency string, amount int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallet_balances (owner_id, currency_code, amount_micros)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, currency_code)
		DO UPDATE SET amount_micros = wallet_balances.amount_micros + EXCLUDED.amount_micros
	`, ownerID, currency, amount)
	return err
}

func debitWallet(ctx context.Context, tx pgx.Tx, ownerID int64, currency string, amount int64) error {
	var next int64
	err := tx.QueryRow(ctx, `
		UPDATE wallet_balances SET amount_micros = amount_micros - $1
		WHERE owner_id = $2 AND currency_code = $3
		RETURNING amount_micros
	`, amount, ownerID, currency).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWalletNotFound
	}
	if err != nil {
		return err
	}
	if next < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, currency)
	}
	return nil
}

// debitWalletByID is the donate-surface variant: the sender addresses their
// own balance row by id. Returns the row's currency so the credit side can
// be resolved.
func debitWalletByID(ctx context.Context, tx pgx.Tx, balanceID, ownerID, amount int64) (string, error) {
	var next int64
	var currency string
	err := tx.QueryRow(ctx, `
		UPDATE wallet_balances SET amount_micros = amount_micros - $1
		WHERE id = $2 AND owner_id = $3
		RETURNING amount_micros, currency_code
	`, amount, balanceID, ownerID).Scan(&next, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrWalletNotFound
	}
	if err != nil {
		return "", err
	}
	if next < 0 {
		return "", fmt.Errorf("%w: %s", ErrInsufficientFunds, currency)
	}
	return currency, nil
}

func creditFunds(ctx context.Context, tx pgx.Tx, compID int64, currency string, amount int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO funds_balances (comp_id, currency_code, amount_micros)
		VALUES ($1, $2, $3)
		ON CONFLICT (comp_id, currency_code)
		DO UPDATE SET amount_micros = funds_balances.amount_micros + EXCLUDED.amount_micros
	`, compID, currency, amount)
	return err
}

func debitFunds(ctx context.Context, tx pgx.Tx, compID int64, currency string, amount int64) error {
	var next int64
	err := tx.QueryRow(ctx, `
		UPDATE funds_balances SET amount_micros = amount_micros - $1
		WHERE comp_id = $2 AND currency_code = $3
		RETURNING amount_micros
	`, amount, compID, currency).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrFundsNotFound
	}
	if err != nil {
		return err
	}
	if next < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, currency)
	}
	return nil
}

func creditStorage(ctx context.Context, tx pgx.Tx, compID int64, itemID int32, quantity int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO storage_items (comp_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (comp_id, item_id)
		DO UPDATE SET quantity = storage_items.quantity + EXCLUDED.quantity
	`, compID, itemID, quantity)
	return err
}

// debitStorage reserves quantity out of the company pool; the row is removed
// when it reaches exactly zero.
func debitStorage(ctx context.Context, tx pgx.Tx, compID int64, itemID int32, quantity int64) error {
	var next int64
	err := tx.QueryRow(ctx, `
		UPDATE storage_items SET quantity = quantity - $1
		WHERE comp_id = $2 AND item_id = $3
		RETURNING quantity
	`, quantity, compID, itemID).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}
	if next < 0 {
		return ErrInsufficientStock
	}
	if next == 0 {
		_, err = tx.Exec(ctx, `
			DELETE FROM storage_items WHERE comp_id = $1 AND item_id = $2
		`, compID, itemID)
	}
	return err
}

func creditInvItem(ctx context.Context, tx pgx.Tx, userID int64, itemID int32, quantity int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO inv_items (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id)
		DO UPDATE SET quantity = inv_items.quantity + EXCLUDED.quantity
	`, userID, itemID, quantity)
	return err
}

// debitInvItemByID decrements a personal inventory row addressed by id and
// reports its owner and item so callers can validate ownership and credit
// the other side.
func debitInvItemByID(ctx context.Context, tx pgx.Tx, invItemID, quantity int64) (ownerID int64, itemID int32, err error) {
	var next int64
	err = tx.QueryRow(ctx, `
		UPDATE inv_items SET quantity = quantity - $1 WHERE id = $2
		RETURNING user_id, item_id, quantity
	`, quantity, invItemID).Scan(&ownerID, &itemID, &next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, ErrItemNotFound
	}
	if err != nil {
		return 0, 0, err
	}
	if next < 0 {
		return 0, 0, ErrInsufficientItems
	}
	if next == 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM inv_items WHERE id = $1`, invItemID); err != nil {
			return 0, 0, err
		}
	}
	return ownerID, itemID, nil
}

type ledgerEntry struct {
	actorKind string // user | company | mint | sink
	actorID   int64
	account   string // "gold" or a currency code
	delta     int64
}

// appendLedger records the double-entry trail for a money movement. Entries
// within one call share a transaction group id.
func appendLedger(ctx context.Context, tx pgx.Tx, action string, entries ...ledgerEntry) error {
	groupID := uuid.NewString()
	meta, _ := json.Marshal(map[string]any{"action": action})
	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO ledger_entries (tx_group_id, actor_kind, actor_id, account, delta_micros, metadata)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		`, groupID, e.actorKind, e.actorID, e.account, e.delta, string(meta))
		if err != nil {
			return err
		}
	}
	return nil
}
