package services

import (
	"testing"

	"wealthplay-service/models"
)

func newAchievementFixture(t *testing.T) (*ProfileService, *AchievementService) {
	t.Helper()
	db := newTestDB(t)
	profiles := NewProfileService(db)
	achievements := NewAchievementService(db, profiles)
	if err := achievements.SeedCatalog(); err != nil {
		t.Fatalf("SeedCatalog failed: %v", err)
	}
	return profiles, achievements
}

func TestEvaluateUnlocksXPMilestoneOnce(t *testing.T) {
	profiles, achievements := newAchievementFixture(t)

	if _, err := profiles.AwardXP("user-1", 150, "seed"); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}

	unlocked, err := achievements.Evaluate("user-1")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	found := false
	for _, a := range unlocked {
		if a.ID == "xp_100" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected xp_100 unlock, got %+v", unlocked)
	}

	// Second pass unlocks nothing new.
	unlocked, err = achievements.Evaluate("user-1")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("re-evaluation should unlock nothing, got %+v", unlocked)
	}
}

func TestEvaluatePaysBonusXPOnce(t *testing.T) {
	profiles, achievements := newAchievementFixture(t)

	// 5-day streak condition, worth 100 bonus XP.
	profile, err := profiles.EnsureProfile("user-1")
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	profile.Streak = 5
	if err := profiles.DB.Save(profile).Error; err != nil {
		t.Fatalf("save profile: %v", err)
	}

	if _, err := achievements.Evaluate("user-1"); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	profile, _ = profiles.EnsureProfile("user-1")
	if profile.XP != 100 {
		t.Fatalf("expected 100 bonus XP for streak_5, got %d", profile.XP)
	}

	// The streak bonus itself crosses the xp_100 milestone; a second pass
	// unlocks that milestone (worth 0 XP) and nothing else.
	if _, err := achievements.Evaluate("user-1"); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	profile, _ = profiles.EnsureProfile("user-1")
	if profile.XP != 100 {
		t.Fatalf("repeat evaluation must not re-pay the bonus, got %d", profile.XP)
	}
}

func TestEvaluatePortfolioAchievements(t *testing.T) {
	_, achievements := newAchievementFixture(t)
	db := achievements.DB

	portfolio := models.DemoPortfolio{
		ID:             "33333333-3333-4333-8333-333333333301",
		ExternalUserID: "user-1",
		Balance:        10000,
		Holdings: models.Holdings{
			"AAPL": {Quantity: 10, AvgPrice: 190},
			"MSFT": {Quantity: 5, AvgPrice: 420},
			"NVDA": {Quantity: 2, AvgPrice: 880},
			"META": {Quantity: 3, AvgPrice: 500},
			"JPM":  {Quantity: 8, AvgPrice: 200},
		},
		TotalValue: 56000, // 12% up from the 50k start
	}
	if err := db.Create(&portfolio).Error; err != nil {
		t.Fatalf("seed portfolio: %v", err)
	}

	unlocked, err := achievements.Evaluate("user-1")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	got := map[string]bool{}
	for _, a := range unlocked {
		got[a.ID] = true
	}
	for _, want := range []string{"first_trade", "diversified", "portfolio_pro"} {
		if !got[want] {
			t.Errorf("expected %s unlocked, got %v", want, got)
		}
	}
	if got["portfolio_master"] {
		t.Error("portfolio_master needs 25% returns, should not unlock at 12%")
	}
}

func TestListMergesUnlockState(t *testing.T) {
	profiles, achievements := newAchievementFixture(t)

	if _, err := profiles.AwardXP("user-1", 600, "seed"); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if _, err := achievements.Evaluate("user-1"); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	views, err := achievements.List("user-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(views) != len(models.AchievementCatalog) {
		t.Fatalf("expected full catalog (%d), got %d", len(models.AchievementCatalog), len(views))
	}

	byID := map[string]AchievementView{}
	for _, v := range views {
		byID[v.ID] = v
	}
	if !byID["xp_100"].Unlocked || !byID["xp_500"].Unlocked {
		t.Fatal("xp milestones should be unlocked at 600 XP")
	}
	if byID["xp_1000"].Unlocked {
		t.Fatal("xp_1000 should stay locked at 600 XP")
	}
}

func TestPendingNotificationsSurfaceOnce(t *testing.T) {
	profiles, achievements := newAchievementFixture(t)

	if _, err := profiles.AwardXP("user-1", 150, "seed"); err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if _, err := achievements.Evaluate("user-1"); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	pending, err := achievements.PendingNotifications("user-1")
	if err != nil {
		t.Fatalf("PendingNotifications failed: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("expected pending unlock notifications")
	}

	pending, err = achievements.PendingNotifications("user-1")
	if err != nil {
		t.Fatalf("PendingNotifications failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("notifications should drain after one read, got %d", len(pending))
	}
}
