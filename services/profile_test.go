package services

import (
	"testing"
	"time"

	"wealthplay-service/models"
)

func TestAwardXPCrossesLevelThreshold(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)

	if _, err := profiles.AwardXP("user-1", 740, "seed"); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	profile, err := profiles.AwardXP("user-1", 15, "bonus")
	if err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}

	if profile.XP != 755 {
		t.Fatalf("expected 755 XP, got %d", profile.XP)
	}
	if profile.Level != models.LevelIntermediate {
		t.Fatalf("expected level %q, got %q", models.LevelIntermediate, profile.Level)
	}
}

func TestAwardXPRejectsNegativeDelta(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)

	if _, err := profiles.AwardXP("user-1", -10, "bad"); err == nil {
		t.Fatal("expected error for negative delta")
	}
	if _, err := profiles.AwardXP("user-1", 0, "noop"); err != nil {
		t.Fatalf("zero delta should be allowed: %v", err)
	}
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want string
	}{
		{0, models.LevelBeginner},
		{749, models.LevelBeginner},
		{750, models.LevelIntermediate},
		{1199, models.LevelIntermediate},
		{1200, models.LevelAdvanced},
		{5000, models.LevelAdvanced},
	}
	for _, c := range cases {
		if got := models.LevelForXP(c.xp); got != c.want {
			t.Errorf("LevelForXP(%d) = %q, want %q", c.xp, got, c.want)
		}
	}
}

func TestRollDailyStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("first activity starts at one", func(t *testing.T) {
		p := &models.UserProfile{}
		rollDailyStreak(p, now)
		if p.Streak != 1 {
			t.Fatalf("expected streak 1, got %d", p.Streak)
		}
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		p := &models.UserProfile{}
		rollDailyStreak(p, now)
		rollDailyStreak(p, now.Add(2*time.Hour))
		if p.Streak != 1 {
			t.Fatalf("expected streak 1, got %d", p.Streak)
		}
	})

	t.Run("next day increments", func(t *testing.T) {
		p := &models.UserProfile{}
		rollDailyStreak(p, now)
		rollDailyStreak(p, now.AddDate(0, 0, 1))
		if p.Streak != 2 {
			t.Fatalf("expected streak 2, got %d", p.Streak)
		}
	})

	t.Run("gap resets to one", func(t *testing.T) {
		p := &models.UserProfile{}
		rollDailyStreak(p, now)
		rollDailyStreak(p, now.AddDate(0, 0, 1))
		rollDailyStreak(p, now.AddDate(0, 0, 5))
		if p.Streak != 1 {
			t.Fatalf("expected streak 1 after gap, got %d", p.Streak)
		}
	})
}

func TestUpdateOnboarding(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)

	answers := models.UserProfile{
		FinancialGoal:        "retirement",
		RiskTolerance:        "moderate",
		InvestmentExperience: "none",
		Timeline:             "10+ years",
		InitialInvestment:    "1000",
	}
	profile, err := profiles.UpdateOnboarding("user-1", answers)
	if err != nil {
		t.Fatalf("UpdateOnboarding failed: %v", err)
	}
	if profile.FinancialGoal != "retirement" || profile.RiskTolerance != "moderate" {
		t.Fatalf("onboarding answers not persisted: %+v", profile)
	}

	// Onboarding must not touch XP.
	if profile.XP != 0 {
		t.Fatalf("expected XP untouched, got %d", profile.XP)
	}
}
