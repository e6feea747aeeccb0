package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateGoodsOffer lists company stock on the goods market. The listed
// quantity is reserved out of the storage pool in the same unit the offer
// row is created in.
func (s *Service) CreateGoodsOffer(ctx context.Context, actorID, compID int64, in GoodsOfferInput) (int64, error) {
	if in.Quantity <= 0 || in.PriceMicros <= 0 {
		return 0, ErrInvalidRequest
	}
	if err := ValidateCurrency(in.Currency); err != nil {
		return 0, err
	}
	var offerID int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		if err := debitStorage(ctx, tx, compID, in.ItemID, in.Quantity); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO product_offers (comp_id, item_id, quantity, price_micros, currency_code)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, compID, in.ItemID, in.Quantity, in.PriceMicros, in.Currency).Scan(&offerID)
	})
	return offerID, err
}

// EditGoodsOffer adjusts quantity and price. The stock delta is derived from
// the locked offer row, never trusted from the caller: shrinking the listing
// returns stock to the pool, growing it reserves more and re-checks pool
// sufficiency.
func (s *Service) EditGoodsOffer(ctx context.Context, actorID, compID int64, in GoodsOfferEdit) error {
	if in.Quantity <= 0 || in.PriceMicros <= 0 {
		return ErrInvalidRequest
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		var itemID int32
		var listed int64
		err := tx.QueryRow(ctx, `
			SELECT item_id, quantity FROM product_offers
			WHERE id = $1 AND comp_id = $2
			FOR UPDATE
		`, in.OfferID, compID).Scan(&itemID, &listed)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOfferNotFound
		}
		if err != nil {
			return err
		}
		switch diff := listed - in.Quantity; {
		case diff > 0:
			if err := creditStorage(ctx, tx, compID, itemID, diff); err != nil {
				return err
			}
		case diff < 0:
			if err := debitStorage(ctx, tx, compID, itemID, -diff); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `
			UPDATE product_offers SET quantity = $1, price_micros = $2
			WHERE id = $3 AND comp_id = $4
		`, in.Quantity, in.PriceMicros, in.OfferID, compID)
		return err
	})
}

// DeleteGoodsOffer removes a listing and returns its remaining reserved
// quantity to storage.
func (s *Service) DeleteGoodsOffer(ctx context.Context, actorID, compID, offerID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		var itemID int32
		var quantity int64
		err := tx.QueryRow(ctx, `
			DELETE FROM product_offers WHERE id = $1 AND comp_id = $2
			RETURNING item_id, quantity
		`, offerID, compID).Scan(&itemID, &quantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOfferNotFound
		}
		if err != nil {
			return err
		}
		if quantity > 0 {
			return creditStorage(ctx, tx, compID, itemID, quantity)
		}
		return nil
	})
}

// PurchaseGoods fulfills part or all of a listing: buyer pays in the offer
// currency, the seller company is credited, the items land in the buyer's
// inventory. Overselling is rejected, never clamped; a fully consumed offer
// is deleted in the same unit.
func (s *Service) PurchaseGoods(ctx context.Context, actorID, offerID, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidRequest
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		var compID int64
		var itemID int32
		var priceMicros int64
		var currency string
		err := tx.QueryRow(ctx, `
			SELECT comp_id, item_id, price_micros, currency_code
			FROM product_offers
			WHERE id = $1
			FOR UPDATE
		`, offerID).Scan(&compID, &itemID, &priceMicros, &currency)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOfferNotFound
		}
		if err != nil {
			return err
		}
		cost, err := costMicros(priceMicros, quantity)
		if err != nil {
			return err
		}

		// A buyer who never held the offer currency simply cannot pay.
		if err := debitWallet(ctx, tx, actorID, currency, cost); err != nil {
			if errors.Is(err, ErrWalletNotFound) || errors.Is(err, ErrInsufficientBalance) {
				return fmt.Errorf("%w: %s", ErrInsufficientFunds, currency)
			}
			return err
		}
		if err := creditFunds(ctx, tx, compID, currency, cost); err != nil {
			return err
		}
		if err := creditInvItem(ctx, tx, actorID, itemID, quantity); err != nil {
			return err
		}

		var remaining int64
		if err := tx.QueryRow(ctx, `
			UPDATE product_offers SET quantity = quantity - $1 WHERE id = $2
			RETURNING quantity
		`, quantity, offerID).Scan(&remaining); err != nil {
			return err
		}
		if remaining < 0 {
			return ErrInsufficientStock
		}
		if remaining == 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM product_offers WHERE id = $1`, offerID); err != nil {
				return err
			}
		}
		return appendLedger(ctx, tx, "purchase_goods",
			ledgerEntry{"user", actorID, currency, -cost},
			ledgerEntry{"company", compID, currency, cost},
		)
	})
}
