package game

import (
	"errors"
	"testing"
	"time"
)

func TestValidateCurrency(t *testing.T) {
	valid := []string{"USD", "EUR", "JPY"}
	for _, c := range valid {
		if err := ValidateCurrency(c); err != nil {
			t.Fatalf("expected currency %q to be valid: %v", c, err)
		}
	}

	invalid := []string{"usd", "US", "USDX", "U1D", ""}
	for _, c := range invalid {
		if err := ValidateCurrency(c); err == nil {
			t.Fatalf("expected currency %q to fail", c)
		}
	}
}

func TestNeededXP(t *testing.T) {
	tests := []struct {
		level int32
		want  int32
	}{
		{level: 1, want: 10},
		{level: 5, want: 50},
		{level: 40, want: 400},
	}
	for _, tc := range tests {
		if got := NeededXP(tc.level); got != tc.want {
			t.Fatalf("level=%d got=%d want=%d", tc.level, got, tc.want)
		}
	}
}

func TestNextUTCMidnight(t *testing.T) {
	now := time.Date(2025, time.March, 14, 18, 30, 12, 0, time.UTC)
	got := NextUTCMidnight(now)
	want := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	// A caller in another zone still re-arms at UTC midnight.
	est := time.FixedZone("EST", -5*3600)
	got = NextUTCMidnight(time.Date(2025, time.March, 14, 22, 0, 0, 0, est))
	if !got.Equal(want) {
		t.Fatalf("zoned input: got %v want %v", got, want)
	}

	// Just before midnight rolls to the next day, not the same instant.
	got = NextUTCMidnight(time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC))
	want = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("year boundary: got %v want %v", got, want)
	}
}

func TestParseDailyAction(t *testing.T) {
	tests := []struct {
		in   string
		want DailyAction
	}{
		{"train", ActionTrain},
		{"WORK", ActionWork},
		{" heal ", ActionHeal},
		{"collect_rewards", ActionCollectRewards},
	}
	for _, tc := range tests {
		got, err := ParseDailyAction(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %v want %v", tc.in, got, tc.want)
		}
		if got.String() == "" {
			t.Fatalf("empty String for %v", got)
		}
	}

	if _, err := ParseDailyAction("rest"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCostMicros(t *testing.T) {
	got, err := costMicros(3*MicrosPerUnit/2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 6 * MicrosPerUnit; got != want {
		t.Fatalf("got %d want %d", got, want)
	}

	if _, err := costMicros(1<<62, 4); err == nil {
		t.Fatalf("expected overflow to fail")
	}
}

func TestFormatMicros(t *testing.T) {
	if got := FormatMicros(5 * MicrosPerUnit); got != "5.00" {
		t.Fatalf("got %q", got)
	}
	if got := FormatMicros(2_500_000); got != "2.50" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateEntityName(t *testing.T) {
	if err := validateEntityName("Acme Industries"); err != nil {
		t.Fatalf("expected valid entity name: %v", err)
	}
	if err := validateEntityName("  "); err == nil {
		t.Fatalf("expected blank name to fail")
	}
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	if err := validateEntityName(string(long)); err == nil {
		t.Fatalf("expected overlong name to fail")
	}
}

func TestTransferAmountsValidate(t *testing.T) {
	ok := TransferAmounts{GoldMicros: MicrosPerUnit}
	if err := ok.validate(); err != nil {
		t.Fatalf("gold-only transfer should validate: %v", err)
	}
	ok = TransferAmounts{Funds: &FundsAmount{Currency: "USD", AmountMicros: 100}}
	if err := ok.validate(); err != nil {
		t.Fatalf("funds-only transfer should validate: %v", err)
	}

	bad := []TransferAmounts{
		{},
		{GoldMicros: -1},
		{Funds: &FundsAmount{Currency: "USD", AmountMicros: 0}},
		{Funds: &FundsAmount{Currency: "usd", AmountMicros: 100}},
	}
	for i, tc := range bad {
		if err := tc.validate(); err == nil {
			t.Fatalf("case %d: expected validation failure", i)
		}
	}
}
