package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"turmoil/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// These tests need a real Postgres; point TURMOIL_TEST_DATABASE_URL at a
// scratch database to enable them.
func newTestService(t *testing.T) (*Service, context.Context) {
	t.Helper()
	dsn := os.Getenv("TURMOIL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TURMOIL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Config{URL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	svc := NewService(pool, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, svc.SeedWorld(ctx, nil))
	return svc, ctx
}

var testUserSeq atomic.Int64

func createTestUser(t *testing.T, ctx context.Context, svc *Service) int64 {
	t.Helper()
	var regionID int64
	require.NoError(t, svc.db.QueryRow(ctx, `SELECT id FROM regions ORDER BY id LIMIT 1`).Scan(&regionID))
	n := testUserSeq.Add(1)
	id, err := svc.CreateAccount(ctx, NewAccountInput{
		Username:     fmt.Sprintf("itest-%d-%d", time.Now().UnixNano(), n),
		Email:        fmt.Sprintf("itest-%d-%d@example.com", time.Now().UnixNano(), n),
		PasswordHash: "x",
		RegionID:     regionID,
	})
	require.NoError(t, err)
	return id
}

func userGold(t *testing.T, ctx context.Context, svc *Service, userID int64) int64 {
	t.Helper()
	var gold int64
	require.NoError(t, svc.db.QueryRow(ctx, `SELECT gold_micros FROM users WHERE id = $1`, userID).Scan(&gold))
	return gold
}

func TestDepositWithdrawConservesGold(t *testing.T) {
	svc, ctx := newTestService(t)
	userID := createTestUser(t, ctx, svc)
	require.NoError(t, svc.GrantGold(ctx, userID, 100*MicrosPerUnit))
	compID, err := svc.CreateCompany(ctx, userID, fmt.Sprintf("Conserve Co %d", userID), 0)
	require.NoError(t, err)

	before := userGold(t, ctx, svc, userID)
	amount := 2 * MicrosPerUnit
	require.NoError(t, svc.DepositFunds(ctx, userID, compID, TransferAmounts{GoldMicros: amount}))

	c, err := svc.Company(ctx, compID)
	require.NoError(t, err)
	require.Equal(t, amount, c.GoldMicros)
	require.Equal(t, before-amount, userGold(t, ctx, svc, userID))

	require.NoError(t, svc.WithdrawFunds(ctx, userID, compID, TransferAmounts{GoldMicros: amount}))
	require.Equal(t, before, userGold(t, ctx, svc, userID))

	// Overdrawing the emptied treasury aborts and changes nothing.
	err = svc.WithdrawFunds(ctx, userID, compID, TransferAmounts{GoldMicros: MicrosPerUnit})
	require.ErrorIs(t, err, ErrInsufficientGold)
	require.Equal(t, before, userGold(t, ctx, svc, userID))
}

func TestPurchaseRejectsOversell(t *testing.T) {
	svc, ctx := newTestService(t)
	seller := createTestUser(t, ctx, svc)
	buyer := createTestUser(t, ctx, svc)
	require.NoError(t, svc.GrantGold(ctx, seller, 100*MicrosPerUnit))
	compID, err := svc.CreateCompany(ctx, seller, fmt.Sprintf("Oversell Co %d", seller), 1)
	require.NoError(t, err)

	// Stock the company and list 3 units at 1.00 USD.
	require.NoError(t, svc.inTx(ctx, func(tx pgx.Tx) error {
		return creditStorage(ctx, tx, compID, 1, 3)
	}))
	offerID, err := svc.CreateGoodsOffer(ctx, seller, compID, GoodsOfferInput{
		ItemID: 1, Quantity: 3, PriceMicros: MicrosPerUnit, Currency: "USD",
	})
	require.NoError(t, err)

	// Fund the buyer's wallet.
	require.NoError(t, svc.inTx(ctx, func(tx pgx.Tx) error {
		return creditWallet(ctx, tx, buyer, "USD", 100*MicrosPerUnit)
	}))

	err = svc.PurchaseGoods(ctx, buyer, offerID, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing moved: wallet intact, no inventory, offer untouched.
	var balance int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT amount_micros FROM wallet_balances WHERE owner_id = $1 AND currency_code = 'USD'
	`, buyer).Scan(&balance))
	require.Equal(t, 100*MicrosPerUnit, balance)
	inv, err := svc.Inventory(ctx, buyer)
	require.NoError(t, err)
	require.Empty(t, inv)

	// Buying the exact remainder consumes the offer row entirely.
	require.NoError(t, svc.PurchaseGoods(ctx, buyer, offerID, 3))
	err = svc.PurchaseGoods(ctx, buyer, offerID, 1)
	require.ErrorIs(t, err, ErrOfferNotFound)
}

func TestTrainCooldownAndLevelUp(t *testing.T) {
	svc, ctx := newTestService(t)
	userID := createTestUser(t, ctx, svc)

	// Level 1 needs 10 XP; put the account one point short.
	_, err := svc.db.Exec(ctx, `UPDATE users SET xp = 9 WHERE id = $1`, userID)
	require.NoError(t, err)
	before := userGold(t, ctx, svc, userID)

	msg, err := svc.PerformDaily(ctx, userID, ActionTrain)
	require.NoError(t, err)
	require.NotEmpty(t, msg)

	acct, err := svc.Account(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int32(2), acct.Level)
	require.Equal(t, int32(10), acct.XP)
	require.Equal(t, int32(1), acct.Strength)
	require.Equal(t, int32(MaxHealth-TrainHealthCost), acct.Health)
	require.Equal(t, before+LevelUpRewardMicros, acct.GoldMicros)
	require.True(t, acct.CanTrain.After(time.Now()))

	// Second train the same day is refused and changes nothing.
	_, err = svc.PerformDaily(ctx, userID, ActionTrain)
	require.ErrorIs(t, err, ErrAlreadyPerformedToday)
	again, err := svc.Account(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, acct.Strength, again.Strength)
}

func TestJobSlotExhaustion(t *testing.T) {
	svc, ctx := newTestService(t)
	ceo := createTestUser(t, ctx, svc)
	require.NoError(t, svc.GrantGold(ctx, ceo, 100*MicrosPerUnit))
	compID, err := svc.CreateCompany(ctx, ceo, fmt.Sprintf("Hire Co %d", ceo), 2)
	require.NoError(t, err)
	offerID, err := svc.CreateJobOffer(ctx, ceo, compID, JobOfferInput{
		Title: "Miner", Quantity: 2, WageMicros: MicrosPerUnit,
	})
	require.NoError(t, err)

	const applicants = 5
	var wg sync.WaitGroup
	errs := make([]error, applicants)
	ids := make([]int64, applicants)
	for i := 0; i < applicants; i++ {
		ids[i] = createTestUser(t, ctx, svc)
	}
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ApplyForJob(ctx, ids[i], compID, offerID)
		}(i)
	}
	wg.Wait()

	hired := 0
	for _, err := range errs {
		if err == nil {
			hired++
		} else {
			require.True(t,
				errorIsAny(err, ErrInsufficientStock, ErrOfferNotFound, ErrTxConflict),
				"unexpected apply error: %v", err)
		}
	}
	require.Equal(t, 2, hired)

	var employees int
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT count(*) FROM job_records WHERE comp_id = $1
	`, compID).Scan(&employees))
	require.Equal(t, 2, employees)
}

func TestDonateMovesBothComponents(t *testing.T) {
	svc, ctx := newTestService(t)
	sender := createTestUser(t, ctx, svc)
	recipient := createTestUser(t, ctx, svc)

	require.NoError(t, svc.inTx(ctx, func(tx pgx.Tx) error {
		return creditWallet(ctx, tx, sender, "EUR", 10*MicrosPerUnit)
	}))
	var balanceID int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT id FROM wallet_balances WHERE owner_id = $1 AND currency_code = 'EUR'
	`, sender).Scan(&balanceID))

	senderBefore := userGold(t, ctx, svc, sender)
	recipientBefore := userGold(t, ctx, svc, recipient)
	require.NoError(t, svc.Donate(ctx, DonateInput{
		ActorID:    sender,
		ProfileID:  recipient,
		GoldMicros: MicrosPerUnit,
		Funds:      &DonationFunds{BalanceID: balanceID, AmountMicros: 4 * MicrosPerUnit},
	}))

	require.Equal(t, senderBefore-MicrosPerUnit, userGold(t, ctx, svc, sender))
	require.Equal(t, recipientBefore+MicrosPerUnit, userGold(t, ctx, svc, recipient))

	balances, err := svc.WalletInfo(ctx, recipient)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, "EUR", balances[0].Currency)
	require.Equal(t, 4*MicrosPerUnit, balances[0].AmountMicros)

	// The recipient got the donation alert.
	alerts, err := svc.ListAlerts(ctx, recipient)
	require.NoError(t, err)
	require.NotEmpty(t, alerts)
	require.Equal(t, AlertDonation, alerts[0].Type)
}

func TestDepositWithdrawFundsRoundTrip(t *testing.T) {
	svc, ctx := newTestService(t)
	userID := createTestUser(t, ctx, svc)
	require.NoError(t, svc.GrantGold(ctx, userID, 100*MicrosPerUnit))
	compID, err := svc.CreateCompany(ctx, userID, fmt.Sprintf("Funds Co %d", userID), 3)
	require.NoError(t, err)

	require.NoError(t, svc.inTx(ctx, func(tx pgx.Tx) error {
		return creditWallet(ctx, tx, userID, "USD", 10*MicrosPerUnit)
	}))

	amount := 4 * MicrosPerUnit
	require.NoError(t, svc.DepositFunds(ctx, userID, compID, TransferAmounts{
		Funds: &FundsAmount{Currency: "USD", AmountMicros: amount},
	}))
	require.Equal(t, amount, companyFunds(t, ctx, svc, compID, "USD"))
	require.Equal(t, 6*MicrosPerUnit, walletBalance(t, ctx, svc, userID, "USD"))

	require.NoError(t, svc.WithdrawFunds(ctx, userID, compID, TransferAmounts{
		Funds: &FundsAmount{Currency: "USD", AmountMicros: amount},
	}))
	require.Equal(t, int64(0), companyFunds(t, ctx, svc, compID, "USD"))
	require.Equal(t, 10*MicrosPerUnit, walletBalance(t, ctx, svc, userID, "USD"))

	// Drawing from the drained treasury aborts and moves nothing.
	err = svc.WithdrawFunds(ctx, userID, compID, TransferAmounts{
		Funds: &FundsAmount{Currency: "USD", AmountMicros: MicrosPerUnit},
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, 10*MicrosPerUnit, walletBalance(t, ctx, svc, userID, "USD"))
}

func TestEditGoodsOfferReconcilesStock(t *testing.T) {
	svc, ctx := newTestService(t)
	seller := createTestUser(t, ctx, svc)
	require.NoError(t, svc.GrantGold(ctx, seller, 100*MicrosPerUnit))
	compID, err := svc.CreateCompany(ctx, seller, fmt.Sprintf("Edit Co %d", seller), 1)
	require.NoError(t, err)

	require.NoError(t, svc.inTx(ctx, func(tx pgx.Tx) error {
		return creditStorage(ctx, tx, compID, 1, 10)
	}))
	offerID, err := svc.CreateGoodsOffer(ctx, seller, compID, GoodsOfferInput{
		ItemID: 1, Quantity: 6, PriceMicros: MicrosPerUnit, Currency: "USD",
	})
	require.NoError(t, err)
	require.Equal(t, int64(4), storageQty(t, ctx, svc, compID, 1))

	// Shrinking the listing returns the difference to the pool.
	require.NoError(t, svc.EditGoodsOffer(ctx, seller, compID, GoodsOfferEdit{
		OfferID: offerID, Quantity: 2, PriceMicros: 2 * MicrosPerUnit,
	}))
	require.Equal(t, int64(8), storageQty(t, ctx, svc, compID, 1))

	// Growing it reserves more.
	require.NoError(t, svc.EditGoodsOffer(ctx, seller, compID, GoodsOfferEdit{
		OfferID: offerID, Quantity: 9, PriceMicros: 2 * MicrosPerUnit,
	}))
	require.Equal(t, int64(1), storageQty(t, ctx, svc, compID, 1))

	// Growing past the pool aborts with the offer untouched.
	err = svc.EditGoodsOffer(ctx, seller, compID, GoodsOfferEdit{
		OfferID: offerID, Quantity: 11, PriceMicros: 2 * MicrosPerUnit,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	var listed int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT quantity FROM product_offers WHERE id = $1
	`, offerID).Scan(&listed))
	require.Equal(t, int64(9), listed)
	require.Equal(t, int64(1), storageQty(t, ctx, svc, compID, 1))
}

func TestCreateNewspaperBurnsFee(t *testing.T) {
	svc, ctx := newTestService(t)
	userID := createTestUser(t, ctx, svc)
	require.NoError(t, svc.GrantGold(ctx, userID, 100*MicrosPerUnit))
	before := userGold(t, ctx, svc, userID)

	paperID, err := svc.CreateNewspaper(ctx, userID, "The Daily Turmoil")
	require.NoError(t, err)
	require.Equal(t, before-NewspaperFoundCostMicros, userGold(t, ctx, svc, userID))

	paper, err := svc.Newspaper(ctx, paperID)
	require.NoError(t, err)
	require.Equal(t, "The Daily Turmoil", paper.Name)
	require.Equal(t, userID, paper.AuthorID)
	mine, err := svc.MyNewspaper(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, paperID, mine.ID)

	// One paper per account; the fee is not charged for the refusal.
	_, err = svc.CreateNewspaper(ctx, userID, "The Second Edition")
	require.ErrorIs(t, err, ErrAlreadyPublisher)
	require.Equal(t, before-NewspaperFoundCostMicros, userGold(t, ctx, svc, userID))

	// Starter gold does not cover the founding fee.
	broke := createTestUser(t, ctx, svc)
	_, err = svc.CreateNewspaper(ctx, broke, "Penniless Press")
	require.ErrorIs(t, err, ErrInsufficientGold)
	_, err = svc.MyNewspaper(ctx, broke)
	require.ErrorIs(t, err, ErrNewspaperNotFound)
}

func TestCrossedFriendRequestsBothAccept(t *testing.T) {
	svc, ctx := newTestService(t)
	a := createTestUser(t, ctx, svc)
	b := createTestUser(t, ctx, svc)

	// Two requests in flight at once, one in each direction.
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		from, to := pair[0], pair[1]
		_, err := svc.db.Exec(ctx, `
			INSERT INTO pending_friends (user_id, pending_id) VALUES ($1, $2)
		`, to, from)
		require.NoError(t, err)
		_, err = svc.db.Exec(ctx, `
			INSERT INTO alerts (to_id, type, message, read, from_id)
			VALUES ($1, $2, 'friend request', false, $3)
		`, to, AlertFriendReq, from)
		require.NoError(t, err)
	}

	require.NoError(t, svc.AcceptFriendRequest(ctx, a, friendReqAlertID(t, ctx, svc, a)))
	require.NoError(t, svc.AcceptFriendRequest(ctx, b, friendReqAlertID(t, ctx, svc, b)))

	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		friends, err := svc.ListFriends(ctx, pair[0])
		require.NoError(t, err)
		require.Len(t, friends, 1)
		require.Equal(t, pair[1], friends[0].UserID)
	}
}

func friendReqAlertID(t *testing.T, ctx context.Context, svc *Service, userID int64) int64 {
	t.Helper()
	var id int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT id FROM alerts WHERE to_id = $1 AND type = $2
	`, userID, AlertFriendReq).Scan(&id))
	return id
}

func walletBalance(t *testing.T, ctx context.Context, svc *Service, userID int64, currency string) int64 {
	t.Helper()
	var amount int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT amount_micros FROM wallet_balances WHERE owner_id = $1 AND currency_code = $2
	`, userID, currency).Scan(&amount))
	return amount
}

func companyFunds(t *testing.T, ctx context.Context, svc *Service, compID int64, currency string) int64 {
	t.Helper()
	var amount int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT amount_micros FROM funds_balances WHERE comp_id = $1 AND currency_code = $2
	`, compID, currency).Scan(&amount))
	return amount
}

func storageQty(t *testing.T, ctx context.Context, svc *Service, compID int64, itemID int32) int64 {
	t.Helper()
	var qty int64
	require.NoError(t, svc.db.QueryRow(ctx, `
		SELECT quantity FROM storage_items WHERE comp_id = $1 AND item_id = $2
	`, compID, itemID).Scan(&qty))
	return qty
}

func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
