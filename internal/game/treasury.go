package game

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DepositFunds moves gold and/or a currency balance from the actor's wallet
// into a company treasury as one atomic unit.
func (s *Service) DepositFunds(ctx context.Context, actorID, compID int64, amounts TransferAmounts) error {
	if err := amounts.validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		// Account row first, then company row; WithdrawFunds uses the
		// same order so opposite-direction transfers cannot deadlock.
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		if _, err := lockCompany(ctx, tx, compID); err != nil {
			return err
		}
		if amounts.GoldMicros > 0 {
			if err := debitUserGold(ctx, tx, actorID, amounts.GoldMicros); err != nil {
				return err
			}
			if err := creditCompanyGold(ctx, tx, compID, amounts.GoldMicros); err != nil {
				return err
			}
			if err := appendLedger(ctx, tx, "deposit_gold",
				ledgerEntry{"user", actorID, "gold", -amounts.GoldMicros},
				ledgerEntry{"company", compID, "gold", amounts.GoldMicros},
			); err != nil {
				return err
			}
		}
		if f := amounts.Funds; f != nil {
			if err := debitWallet(ctx, tx, actorID, f.Currency, f.AmountMicros); err != nil {
				return err
			}
			if err := creditFunds(ctx, tx, compID, f.Currency, f.AmountMicros); err != nil {
				return err
			}
			if err := appendLedger(ctx, tx, "deposit_funds",
				ledgerEntry{"user", actorID, f.Currency, -f.AmountMicros},
				ledgerEntry{"company", compID, f.Currency, f.AmountMicros},
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithdrawFunds is the reverse transfer; only the company's CEO may draw
// from the treasury.
func (s *Service) WithdrawFunds(ctx context.Context, actorID, compID int64, amounts TransferAmounts) error {
	if err := amounts.validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		if amounts.GoldMicros > 0 {
			if err := debitCompanyGold(ctx, tx, compID, amounts.GoldMicros); err != nil {
				return err
			}
			if err := creditUserGold(ctx, tx, actorID, amounts.GoldMicros); err != nil {
				return err
			}
			if err := appendLedger(ctx, tx, "withdraw_gold",
				ledgerEntry{"company", compID, "gold", -amounts.GoldMicros},
				ledgerEntry{"user", actorID, "gold", amounts.GoldMicros},
			); err != nil {
				return err
			}
		}
		if f := amounts.Funds; f != nil {
			if err := debitFunds(ctx, tx, compID, f.Currency, f.AmountMicros); err != nil {
				return err
			}
			if err := creditWallet(ctx, tx, actorID, f.Currency, f.AmountMicros); err != nil {
				return err
			}
			if err := appendLedger(ctx, tx, "withdraw_funds",
				ledgerEntry{"company", compID, f.Currency, -f.AmountMicros},
				ledgerEntry{"user", actorID, f.Currency, f.AmountMicros},
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// DepositStorage moves items from the actor's personal inventory into a
// company storage pool.
func (s *Service) DepositStorage(ctx context.Context, actorID, invItemID int64, itemID int32, compID, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidRequest
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		if _, err := lockCompany(ctx, tx, compID); err != nil {
			return err
		}
		ownerID, rowItemID, err := debitInvItemByID(ctx, tx, invItemID, quantity)
		if err != nil {
			return err
		}
		if ownerID != actorID {
			return ErrNotOwner
		}
		if rowItemID != itemID {
			return ErrItemNotFound
		}
		return creditStorage(ctx, tx, compID, itemID, quantity)
	})
}
