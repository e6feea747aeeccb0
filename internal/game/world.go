package game

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// NewAccountInput carries everything CreateAccount needs; the password hash
// is produced by the caller so this package never sees plaintext secrets.
type NewAccountInput struct {
	Username     string
	Email        string
	PasswordHash string
	RegionID     int64
}

// CreateAccount registers a player with full health, level 1 and the starter
// gold grant. All cooldowns start armed so the first day's actions are
// available immediately.
func (s *Service) CreateAccount(ctx context.Context, in NewAccountInput) (int64, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateEntityName(in.Username); err != nil {
		return 0, err
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") || in.PasswordHash == "" || in.RegionID <= 0 {
		return 0, ErrInvalidRequest
	}
	var userID int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM regions WHERE id = $1)
		`, in.RegionID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrInvalidRequest
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO users (
				username, email, password_hash,
				gold_micros, health, level, xp, strength, super_soldier,
				location_id, residence_id,
				can_train, can_work, can_heal, can_collect_rewards
			)
			VALUES ($1, $2, $3, $4, $5, 1, 0, 0, 0, $6, $6, now(), now(), now(), now())
			RETURNING id
		`, in.Username, in.Email, in.PasswordHash,
			StarterGoldMicros, MaxHealth, in.RegionID).Scan(&userID)
		if isUniqueViolation(err) {
			return ErrAlreadyTaken
		}
		if err != nil {
			return err
		}
		return appendLedger(ctx, tx, "starter_grant",
			ledgerEntry{"mint", 0, "gold", -StarterGoldMicros},
			ledgerEntry{"user", userID, "gold", StarterGoldMicros},
		)
	})
	return userID, err
}

// Credentials is the login lookup result.
type Credentials struct {
	UserID       int64
	PasswordHash string
}

func (s *Service) GetCredentials(ctx context.Context, email string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var c Credentials
	err := s.db.QueryRow(ctx, `
		SELECT id, password_hash FROM users WHERE email = $1
	`, email).Scan(&c.UserID, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrUserNotFound
	}
	return c, err
}

// CreateCompany founds a company in the founder's current region for a flat
// gold fee. The fee is burned, not moved anywhere.
func (s *Service) CreateCompany(ctx context.Context, actorID int64, name string, compType int32) (int64, error) {
	if err := validateEntityName(name); err != nil {
		return 0, err
	}
	if compType < 0 || compType >= CompanyTypeCount {
		return 0, ErrInvalidRequest
	}
	var compID int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		var locationID int64
		if err := tx.QueryRow(ctx, `
			SELECT location_id FROM users WHERE id = $1
		`, actorID).Scan(&locationID); err != nil {
			return err
		}
		if err := debitUserGold(ctx, tx, actorID, CompanyFoundCostMicros); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO companies (name, type, ceo_id, location_id, gold_micros)
			VALUES ($1, $2, $3, $4, 0)
			RETURNING id
		`, strings.TrimSpace(name), compType, actorID, locationID).Scan(&compID); err != nil {
			return err
		}
		return appendLedger(ctx, tx, "found_company",
			ledgerEntry{"user", actorID, "gold", -CompanyFoundCostMicros},
			ledgerEntry{"sink", 0, "gold", CompanyFoundCostMicros},
		)
	})
	return compID, err
}

func (s *Service) RebrandCompany(ctx context.Context, actorID, compID int64, name string) error {
	if err := validateEntityName(name); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE companies SET name = $1 WHERE id = $2
		`, strings.TrimSpace(name), compID)
		return err
	})
}

func (s *Service) RelocateCompany(ctx context.Context, actorID, compID, regionID int64) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockOwnedCompany(ctx, tx, compID, actorID); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM regions WHERE id = $1)
		`, regionID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrInvalidRequest
		}
		_, err := tx.Exec(ctx, `
			UPDATE companies SET location_id = $1 WHERE id = $2
		`, regionID, compID)
		return err
	})
}

// Travel changes the account's current location; residence stays put.
func (s *Service) Travel(ctx context.Context, actorID, regionID int64) error {
	return s.moveUserRegion(ctx, actorID, regionID, "location_id")
}

// MoveResidence changes the account's home region.
func (s *Service) MoveResidence(ctx context.Context, actorID, regionID int64) error {
	return s.moveUserRegion(ctx, actorID, regionID, "residence_id")
}

func (s *Service) moveUserRegion(ctx context.Context, actorID, regionID int64, column string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM regions WHERE id = $1)
		`, regionID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrInvalidRequest
		}
		cmd, err := tx.Exec(ctx,
			`UPDATE users SET `+column+` = $1 WHERE id = $2`,
			regionID, actorID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// GrantGold mints gold into an account. Operator tooling only; the grant is
// recorded in the ledger like every other movement.
func (s *Service) GrantGold(ctx context.Context, userID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRequest
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, userID); err != nil {
			return err
		}
		if err := creditUserGold(ctx, tx, userID, amount); err != nil {
			return err
		}
		return appendLedger(ctx, tx, "admin_grant",
			ledgerEntry{"mint", 0, "gold", -amount},
			ledgerEntry{"user", userID, "gold", amount},
		)
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SeedCountry describes one country with its currency and regions for world
// bootstrap.
type SeedCountry struct {
	Name     string
	FlagCode string
	Currency string
	Regions  []string
}

// DefaultWorld is the starter map used by fresh deployments.
var DefaultWorld = []SeedCountry{
	{Name: "United States", FlagCode: "us", Currency: "USD", Regions: []string{"East Coast", "Midwest", "West Coast"}},
	{Name: "Germany", FlagCode: "de", Currency: "EUR", Regions: []string{"Bavaria", "Rhineland", "Saxony"}},
	{Name: "Japan", FlagCode: "jp", Currency: "JPY", Regions: []string{"Kanto", "Kansai", "Hokkaido"}},
	{Name: "Brazil", FlagCode: "br", Currency: "BRL", Regions: []string{"Sao Paulo", "Rio de Janeiro", "Minas Gerais"}},
}

// SeedWorld inserts the countries, currencies and regions the economy runs
// on. Idempotent: existing names are left alone.
func (s *Service) SeedWorld(ctx context.Context, world []SeedCountry) error {
	if len(world) == 0 {
		world = DefaultWorld
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, c := range world {
			if err := ValidateCurrency(c.Currency); err != nil {
				return err
			}
			var countryID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO countries (name, flag_code)
				VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET flag_code = EXCLUDED.flag_code
				RETURNING id
			`, c.Name, c.FlagCode).Scan(&countryID)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO currencies (code, country_id)
				VALUES ($1, $2)
				ON CONFLICT (code) DO UPDATE SET country_id = EXCLUDED.country_id
			`, c.Currency, countryID); err != nil {
				return err
			}
			for _, r := range c.Regions {
				if _, err := tx.Exec(ctx, `
					INSERT INTO regions (name, owner_id)
					VALUES ($1, $2)
					ON CONFLICT (name) DO NOTHING
				`, r, countryID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
