package game

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// All monetary amounts are fixed-point micros: 1.00 gold = 1_000_000.
	MicrosPerUnit = int64(1_000_000)

	StarterGoldMicros        = 5 * MicrosPerUnit
	CompanyFoundCostMicros   = 25 * MicrosPerUnit
	NewspaperFoundCostMicros = 10 * MicrosPerUnit
	LevelUpRewardMicros      = 5 * MicrosPerUnit
	MilestoneRewardMicros    = 5 * MicrosPerUnit

	TrainHealthCost = 10
	WorkHealthCost  = 10
	MaxHealth       = 100
	HealPerDay      = 50

	// Every 250th strength point grants the super soldier milestone.
	SuperSoldierEvery = 250

	CompanyTypeCount = 7
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotOwner       = errors.New("cannot move items owned by someone else")

	ErrUserNotFound      = errors.New("user not found")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrOfferNotFound     = errors.New("offer not found")
	ErrWalletNotFound    = errors.New("wallet balance not found")
	ErrFundsNotFound     = errors.New("funds balance not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrJobNotFound       = errors.New("job not found")
	ErrCurrencyNotFound  = errors.New("currency not found")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrPendingNotFound   = errors.New("pending friend request not found")
	ErrMailNotFound      = errors.New("mail not found")
	ErrNewspaperNotFound = errors.New("newspaper not found")

	ErrInsufficientGold    = errors.New("insufficient gold")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientItems   = errors.New("insufficient item quantities")
	ErrInsufficientHealth  = errors.New("not enough health")

	ErrAlreadyPerformedToday = errors.New("already performed today")
	ErrAlreadyTaken          = errors.New("username or email already taken")
	ErrAlreadyFriend         = errors.New("user is already a friend")
	ErrAlreadyPending        = errors.New("friend request already sent")
	ErrHealthFull            = errors.New("health is already full")
	ErrDailiesIncomplete     = errors.New("train and work must be completed first")
	ErrAlreadyPublisher      = errors.New("account already owns a newspaper")
	ErrTxConflict            = errors.New("transaction conflict, retry")
)

// DailyAction enumerates the once-per-day account actions. The dispatch in
// PerformDaily is exhaustive over these values.
type DailyAction int

const (
	ActionTrain DailyAction = iota
	ActionWork
	ActionHeal
	ActionCollectRewards
)

func ParseDailyAction(s string) (DailyAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "train":
		return ActionTrain, nil
	case "work":
		return ActionWork, nil
	case "heal":
		return ActionHeal, nil
	case "collect_rewards":
		return ActionCollectRewards, nil
	default:
		return 0, fmt.Errorf("%w: unknown daily action %q", ErrInvalidRequest, s)
	}
}

func (a DailyAction) String() string {
	switch a {
	case ActionTrain:
		return "train"
	case ActionWork:
		return "work"
	case ActionHeal:
		return "heal"
	case ActionCollectRewards:
		return "collect_rewards"
	}
	return fmt.Sprintf("daily_action(%d)", int(a))
}

var currencyRE = regexp.MustCompile(`^[A-Z]{3}$`)

func ValidateCurrency(code string) error {
	if !currencyRE.MatchString(strings.TrimSpace(code)) {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidRequest)
	}
	return nil
}

// NeededXP is the experience required to leave the given level.
func NeededXP(level int32) int32 {
	return 10 * level
}

// NextUTCMidnight is the instant every daily cooldown re-arms to.
func NextUTCMidnight(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}

// FormatMicros renders a micros amount for human-facing messages only;
// balances themselves never pass through floating point.
func FormatMicros(v int64) string {
	return fmt.Sprintf("%.2f", float64(v)/float64(MicrosPerUnit))
}

func validateEntityName(name string) error {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if len(clean) > 64 {
		return fmt.Errorf("%w: name too long (max 64 chars)", ErrInvalidRequest)
	}
	return nil
}
