package game

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Read-side queries. These run on the pool directly; each is a single
// statement snapshot, so the serializable engine is not involved.

func (s *Service) WalletInfo(ctx context.Context, userID int64) ([]WalletBalanceView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT w.id, w.currency_code, w.amount_micros, COALESCE(co.flag_code, '')
		FROM wallet_balances w
		LEFT JOIN currencies cur ON cur.code = w.currency_code
		LEFT JOIN countries co ON co.id = cur.country_id
		WHERE w.owner_id = $1
		ORDER BY w.currency_code
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]WalletBalanceView, 0)
	for rows.Next() {
		var b WalletBalanceView
		if err := rows.Scan(&b.ID, &b.Currency, &b.AmountMicros, &b.FlagCode); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Service) Inventory(ctx context.Context, userID int64) ([]InvItemView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, item_id, quantity
		FROM inv_items
		WHERE user_id = $1
		ORDER BY item_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]InvItemView, 0)
	for rows.Next() {
		var it InvItemView
		if err := rows.Scan(&it.ID, &it.ItemID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Profile is the public view of an account; cooldowns and email stay private.
func (s *Service) Profile(ctx context.Context, userID int64) (ProfileView, error) {
	var p ProfileView
	err := s.db.QueryRow(ctx, `
		SELECT id, username, level, xp, health, strength, super_soldier,
		       gold_micros, location_id, residence_id
		FROM users WHERE id = $1
	`, userID).Scan(&p.ID, &p.Username, &p.Level, &p.XP, &p.Health, &p.Strength,
		&p.SuperSoldier, &p.GoldMicros, &p.LocationID, &p.ResidenceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProfileView{}, ErrUserNotFound
	}
	return p, err
}

// Account is the owner's own view, cooldown timestamps included.
func (s *Service) Account(ctx context.Context, userID int64) (AccountView, error) {
	var a AccountView
	err := s.db.QueryRow(ctx, `
		SELECT id, username, level, xp, health, strength, super_soldier,
		       gold_micros, location_id, residence_id, email,
		       can_train, can_work, can_heal, can_collect_rewards
		FROM users WHERE id = $1
	`, userID).Scan(&a.ID, &a.Username, &a.Level, &a.XP, &a.Health, &a.Strength,
		&a.SuperSoldier, &a.GoldMicros, &a.LocationID, &a.ResidenceID, &a.Email,
		&a.CanTrain, &a.CanWork, &a.CanHeal, &a.CanCollectRewards)
	if errors.Is(err, pgx.ErrNoRows) {
		return AccountView{}, ErrUserNotFound
	}
	return a, err
}

func (s *Service) Company(ctx context.Context, compID int64) (CompanyView, error) {
	var c CompanyView
	err := s.db.QueryRow(ctx, `
		SELECT id, name, type, ceo_id, location_id, gold_micros
		FROM companies WHERE id = $1
	`, compID).Scan(&c.ID, &c.Name, &c.Type, &c.CEOID, &c.LocationID, &c.GoldMicros)
	if errors.Is(err, pgx.ErrNoRows) {
		return CompanyView{}, ErrCompanyNotFound
	}
	return c, err
}

// CompanyDetails aggregates the treasury, storage, open offers and payroll
// for the management screen.
func (s *Service) CompanyDetails(ctx context.Context, compID int64) (CompanyDetails, error) {
	c, err := s.Company(ctx, compID)
	if err != nil {
		return CompanyDetails{}, err
	}
	d := CompanyDetails{
		CompanyView: c,
		Funds:       make([]FundsBalanceView, 0),
		Storage:     make([]StorageItemView, 0),
		Offers:      make([]ProductOfferView, 0),
		JobOffers:   make([]JobOfferView, 0),
		Employees:   make([]EmployeeView, 0),
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, currency_code, amount_micros
		FROM funds_balances WHERE comp_id = $1 ORDER BY currency_code
	`, compID)
	if err != nil {
		return CompanyDetails{}, err
	}
	for rows.Next() {
		var f FundsBalanceView
		if err := rows.Scan(&f.ID, &f.Currency, &f.AmountMicros); err != nil {
			rows.Close()
			return CompanyDetails{}, err
		}
		d.Funds = append(d.Funds, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return CompanyDetails{}, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT id, item_id, quantity
		FROM storage_items WHERE comp_id = $1 ORDER BY item_id
	`, compID)
	if err != nil {
		return CompanyDetails{}, err
	}
	for rows.Next() {
		var it StorageItemView
		if err := rows.Scan(&it.ID, &it.ItemID, &it.Quantity); err != nil {
			rows.Close()
			return CompanyDetails{}, err
		}
		d.Storage = append(d.Storage, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return CompanyDetails{}, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT id, item_id, quantity, price_micros, currency_code
		FROM product_offers WHERE comp_id = $1 ORDER BY id
	`, compID)
	if err != nil {
		return CompanyDetails{}, err
	}
	for rows.Next() {
		o := ProductOfferView{CompanyID: c.ID, CompanyName: c.Name}
		if err := rows.Scan(&o.ID, &o.ItemID, &o.Quantity, &o.PriceMicros, &o.Currency); err != nil {
			rows.Close()
			return CompanyDetails{}, err
		}
		d.Offers = append(d.Offers, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return CompanyDetails{}, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT id, title, quantity, wage_micros
		FROM job_offers WHERE comp_id = $1 ORDER BY id
	`, compID)
	if err != nil {
		return CompanyDetails{}, err
	}
	for rows.Next() {
		o := JobOfferView{CompanyID: c.ID, CompanyName: c.Name}
		if err := rows.Scan(&o.ID, &o.Title, &o.Quantity, &o.WageMicros); err != nil {
			rows.Close()
			return CompanyDetails{}, err
		}
		d.JobOffers = append(d.JobOffers, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return CompanyDetails{}, err
	}

	rows, err = s.db.Query(ctx, `
		SELECT j.user_id, u.username, j.title, j.wage_micros
		FROM job_records j
		JOIN users u ON u.id = j.user_id
		WHERE j.comp_id = $1
		ORDER BY u.username
	`, compID)
	if err != nil {
		return CompanyDetails{}, err
	}
	for rows.Next() {
		var e EmployeeView
		if err := rows.Scan(&e.UserID, &e.Username, &e.Title, &e.WageMicros); err != nil {
			rows.Close()
			return CompanyDetails{}, err
		}
		d.Employees = append(d.Employees, e)
	}
	rows.Close()
	return d, rows.Err()
}

func (s *Service) MyCompanies(ctx context.Context, userID int64) ([]CompanyView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, type, ceo_id, location_id, gold_micros
		FROM companies WHERE ceo_id = $1 ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CompanyView, 0)
	for rows.Next() {
		var c CompanyView
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.CEOID, &c.LocationID, &c.GoldMicros); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Service) MyJob(ctx context.Context, userID int64) (JobView, error) {
	var j JobView
	err := s.db.QueryRow(ctx, `
		SELECT j.comp_id, c.name, j.title, j.wage_micros
		FROM job_records j
		JOIN companies c ON c.id = j.comp_id
		WHERE j.user_id = $1
	`, userID).Scan(&j.CompanyID, &j.CompanyName, &j.Title, &j.WageMicros)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobView{}, ErrJobNotFound
	}
	return j, err
}

// GoodsMarket lists open product offers from companies located in the given
// country, cheapest first.
func (s *Service) GoodsMarket(ctx context.Context, countryID int64) ([]ProductOfferView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT o.id, o.comp_id, c.name, o.item_id, o.quantity, o.price_micros, o.currency_code
		FROM product_offers o
		JOIN companies c ON c.id = o.comp_id
		JOIN regions r ON r.id = c.location_id
		WHERE r.owner_id = $1
		ORDER BY o.price_micros ASC, o.id ASC
	`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ProductOfferView, 0)
	for rows.Next() {
		var o ProductOfferView
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.CompanyName, &o.ItemID, &o.Quantity, &o.PriceMicros, &o.Currency); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// JobsMarket lists open positions in a country, lowest wage first.
func (s *Service) JobsMarket(ctx context.Context, countryID int64) ([]JobOfferView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT o.id, o.comp_id, c.name, o.title, o.quantity, o.wage_micros
		FROM job_offers o
		JOIN companies c ON c.id = o.comp_id
		JOIN regions r ON r.id = c.location_id
		WHERE r.owner_id = $1
		ORDER BY o.wage_micros ASC, o.id ASC
	`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]JobOfferView, 0)
	for rows.Next() {
		var o JobOfferView
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.CompanyName, &o.Title, &o.Quantity, &o.WageMicros); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Service) ListCountries(ctx context.Context) ([]CountryView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT co.id, co.name, co.flag_code, COALESCE(cur.code, '')
		FROM countries co
		LEFT JOIN currencies cur ON cur.country_id = co.id
		ORDER BY co.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CountryView, 0)
	for rows.Next() {
		var c CountryView
		if err := rows.Scan(&c.ID, &c.Name, &c.FlagCode, &c.Currency); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Service) ListRegions(ctx context.Context, countryID int64) ([]RegionView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, owner_id
		FROM regions
		WHERE owner_id = $1
		ORDER BY id
	`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RegionView, 0)
	for rows.Next() {
		var r RegionView
		if err := rows.Scan(&r.ID, &r.Name, &r.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
