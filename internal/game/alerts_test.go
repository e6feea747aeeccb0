package game

import "testing"

func TestBuildLevelUpAlert(t *testing.T) {
	a := buildLevelUpAlert(7)
	if a.Type != AlertLevelUp {
		t.Fatalf("type=%q", a.Type)
	}
	want := "Congrats! You have leveled up to level 7 and received 5 gold"
	if a.Message != want {
		t.Fatalf("got %q want %q", a.Message, want)
	}
	if a.From != nil {
		t.Fatalf("level-up alert should have no sender")
	}
}

func TestBuildSuperSoldierAlert(t *testing.T) {
	a := buildSuperSoldierAlert()
	if a.Type != AlertSuperSoldier {
		t.Fatalf("type=%q", a.Type)
	}
	if a.Message != "You are a Super Soldier and have received 5 gold" {
		t.Fatalf("got %q", a.Message)
	}
}

func TestBuildDonationAlert(t *testing.T) {
	a := buildDonationAlert(42, "alice", 2*MicrosPerUnit, "USD", 5*MicrosPerUnit)
	if a.Type != AlertDonation {
		t.Fatalf("type=%q", a.Type)
	}
	if a.From == nil || *a.From != 42 {
		t.Fatalf("from=%v", a.From)
	}
	want := "alice has sent you 2.00 Gold and 5.00 USD"
	if a.Message != want {
		t.Fatalf("got %q want %q", a.Message, want)
	}

	goldOnly := buildDonationAlert(42, "alice", MicrosPerUnit, "", 0)
	if goldOnly.Message != "alice has sent you 1.00 Gold" {
		t.Fatalf("got %q", goldOnly.Message)
	}

	fundsOnly := buildDonationAlert(42, "alice", 0, "EUR", 3*MicrosPerUnit)
	if fundsOnly.Message != "alice has sent you 3.00 EUR" {
		t.Fatalf("got %q", fundsOnly.Message)
	}
}

func TestBuildFriendReqAlert(t *testing.T) {
	a := buildFriendReqAlert(9, "bob")
	if a.Type != AlertFriendReq {
		t.Fatalf("type=%q", a.Type)
	}
	if a.From == nil || *a.From != 9 {
		t.Fatalf("from=%v", a.From)
	}
	if a.Message != "You've received a friend request from bob" {
		t.Fatalf("got %q", a.Message)
	}
}
