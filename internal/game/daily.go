package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PerformDaily dispatches a once-per-day account action. The switch is
// exhaustive over DailyAction; an out-of-range value is a programming error,
// not a silent fallthrough.
func (s *Service) PerformDaily(ctx context.Context, actorID int64, action DailyAction) (string, error) {
	switch action {
	case ActionTrain:
		return s.train(ctx, actorID)
	case ActionWork:
		return s.work(ctx, actorID)
	case ActionHeal:
		return s.heal(ctx, actorID)
	case ActionCollectRewards:
		return s.collectRewards(ctx, actorID)
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, action)
	}
}

// train costs 10 health for +1 strength and +1 XP. Crossing the XP threshold
// and hitting a 250-strength milestone both pay 5 gold and can stack in a
// single call.
func (s *Service) train(ctx context.Context, actorID int64) (string, error) {
	var drafts []AlertDraft
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		drafts = drafts[:0]
		var health, level, strength, xp int32
		err := tx.QueryRow(ctx, `
			SELECT health, level, strength, xp
			FROM users
			WHERE id = $1 AND can_train <= now()
			FOR UPDATE
		`, actorID).Scan(&health, &level, &strength, &xp)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: train", ErrAlreadyPerformedToday)
		}
		if err != nil {
			return err
		}
		if health < TrainHealthCost {
			return ErrInsufficientHealth
		}

		var reward int64
		levelUp := xp+1 >= NeededXP(level)
		if levelUp {
			reward += LevelUpRewardMicros
			drafts = append(drafts, buildLevelUpAlert(level+1))
		}
		superSoldier := (strength+1)%SuperSoldierEvery == 0
		if superSoldier {
			reward += MilestoneRewardMicros
			drafts = append(drafts, buildSuperSoldierAlert())
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET
				can_train = $2,
				health = health - $3,
				strength = strength + 1,
				xp = xp + 1,
				level = level + $4,
				super_soldier = super_soldier + $5,
				gold_micros = gold_micros + $6
			WHERE id = $1
		`, actorID, NextUTCMidnight(s.now()), TrainHealthCost,
			boolToInt(levelUp), boolToInt(superSoldier), reward)
		if err != nil {
			return err
		}
		if reward > 0 {
			return appendLedger(ctx, tx, "train_reward",
				ledgerEntry{"mint", 0, "gold", -reward},
				ledgerEntry{"user", actorID, "gold", reward},
			)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.notify(ctx, actorID, drafts...)
	return "You have received +1 XP and +1 Strength", nil
}

// work pays the snapshotted wage out of the employer's treasury in the
// employer's home currency: the currency of the country owning the region
// the company sits in.
func (s *Service) work(ctx context.Context, actorID int64) (string, error) {
	var drafts []AlertDraft
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		drafts = drafts[:0]
		var compID, wageMicros int64
		err := tx.QueryRow(ctx, `
			SELECT comp_id, wage_micros FROM job_records WHERE user_id = $1
		`, actorID).Scan(&compID, &wageMicros)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobNotFound
		}
		if err != nil {
			return err
		}

		if err := lockUsers(ctx, tx, actorID); err != nil {
			return err
		}
		if _, err := lockCompany(ctx, tx, compID); err != nil {
			return err
		}

		var currency string
		err = tx.QueryRow(ctx, `
			SELECT cur.code
			FROM companies c
			JOIN regions r ON r.id = c.location_id
			JOIN countries co ON co.id = r.owner_id
			JOIN currencies cur ON cur.country_id = co.id
			WHERE c.id = $1
		`, compID).Scan(&currency)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: employer", ErrCurrencyNotFound)
		}
		if err != nil {
			return err
		}

		var health, level, xp int32
		err = tx.QueryRow(ctx, `
			SELECT health, level, xp
			FROM users
			WHERE id = $1 AND can_work <= now()
		`, actorID).Scan(&health, &level, &xp)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: work", ErrAlreadyPerformedToday)
		}
		if err != nil {
			return err
		}
		if health < WorkHealthCost {
			return ErrInsufficientHealth
		}

		// No partial pay: the employer covers the full wage or the
		// shift never happened.
		if err := debitFunds(ctx, tx, compID, currency, wageMicros); err != nil {
			if errors.Is(err, ErrFundsNotFound) {
				return fmt.Errorf("%w: %s", ErrInsufficientFunds, currency)
			}
			return err
		}
		if err := creditWallet(ctx, tx, actorID, currency, wageMicros); err != nil {
			return err
		}

		var reward int64
		levelUp := xp+1 >= NeededXP(level)
		if levelUp {
			reward = LevelUpRewardMicros
			drafts = append(drafts, buildLevelUpAlert(level+1))
		}
		_, err = tx.Exec(ctx, `
			UPDATE users SET
				can_work = $2,
				health = health - $3,
				xp = xp + 1,
				level = level + $4,
				gold_micros = gold_micros + $5
			WHERE id = $1
		`, actorID, NextUTCMidnight(s.now()), WorkHealthCost, boolToInt(levelUp), reward)
		if err != nil {
			return err
		}
		if err := appendLedger(ctx, tx, "work_wage",
			ledgerEntry{"company", compID, currency, -wageMicros},
			ledgerEntry{"user", actorID, currency, wageMicros},
		); err != nil {
			return err
		}
		if reward > 0 {
			return appendLedger(ctx, tx, "work_reward",
				ledgerEntry{"mint", 0, "gold", -reward},
				ledgerEntry{"user", actorID, "gold", reward},
			)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.notify(ctx, actorID, drafts...)
	return "You have received your wage and +1 XP", nil
}

// heal restores up to 50 health, capped at full. Cooldown-gated like the
// other dailies.
func (s *Service) heal(ctx context.Context, actorID int64) (string, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var health int32
		err := tx.QueryRow(ctx, `
			SELECT health FROM users
			WHERE id = $1 AND can_heal <= now()
			FOR UPDATE
		`, actorID).Scan(&health)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: heal", ErrAlreadyPerformedToday)
		}
		if err != nil {
			return err
		}
		if health >= MaxHealth {
			return ErrHealthFull
		}
		restore := MaxHealth - health
		if restore > HealPerDay {
			restore = HealPerDay
		}
		_, err = tx.Exec(ctx, `
			UPDATE users SET can_heal = $2, health = health + $3 WHERE id = $1
		`, actorID, NextUTCMidnight(s.now()), restore)
		return err
	})
	if err != nil {
		return "", err
	}
	return "You have been healed", nil
}

// collectRewards grants the daily bonus XP tick once both train and work
// have been spent for the day.
func (s *Service) collectRewards(ctx context.Context, actorID int64) (string, error) {
	var drafts []AlertDraft
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		drafts = drafts[:0]
		var level, xp int32
		var trainSpent, workSpent bool
		err := tx.QueryRow(ctx, `
			SELECT level, xp, can_train > now(), can_work > now()
			FROM users
			WHERE id = $1 AND can_collect_rewards <= now()
			FOR UPDATE
		`, actorID).Scan(&level, &xp, &trainSpent, &workSpent)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: collect rewards", ErrAlreadyPerformedToday)
		}
		if err != nil {
			return err
		}
		if !trainSpent || !workSpent {
			return ErrDailiesIncomplete
		}

		var reward int64
		levelUp := xp+1 >= NeededXP(level)
		if levelUp {
			reward = LevelUpRewardMicros
			drafts = append(drafts, buildLevelUpAlert(level+1))
		}
		_, err = tx.Exec(ctx, `
			UPDATE users SET
				can_collect_rewards = $2,
				xp = xp + 1,
				level = level + $3,
				gold_micros = gold_micros + $4
			WHERE id = $1
		`, actorID, NextUTCMidnight(s.now()), boolToInt(levelUp), reward)
		if err != nil {
			return err
		}
		if reward > 0 {
			return appendLedger(ctx, tx, "collect_reward",
				ledgerEntry{"mint", 0, "gold", -reward},
				ledgerEntry{"user", actorID, "gold", reward},
			)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.notify(ctx, actorID, drafts...)
	return "You have received +1 XP", nil
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
