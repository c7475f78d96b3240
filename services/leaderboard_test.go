package services

import (
	"testing"
	"time"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedPrediction(t *testing.T, db *gorm.DB, userID string, score int, correct bool, at time.Time) {
	t.Helper()
	p := models.StockPrediction{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		StockSymbol:    "AAPL",
		IsCorrect:      correct,
		Score:          score,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed prediction: %v", err)
	}
	// autoCreateTime stamped it with now; pin the intended ordering.
	if err := db.Model(&models.StockPrediction{}).Where("id = ?", p.ID).
		Update("created_at", at).Error; err != nil {
		t.Fatalf("pin created_at: %v", err)
	}
}

func TestRebuildStreakFromRecentPredictions(t *testing.T) {
	db := newTestDB(t)
	lb := NewLeaderboardService(db)

	// Newest first: correct, correct, incorrect, correct -> streak 2.
	base := time.Now().Add(-1 * time.Hour)
	seedPrediction(t, db, "user-1", 15, true, base.Add(1*time.Minute))
	seedPrediction(t, db, "user-1", 0, false, base.Add(2*time.Minute))
	seedPrediction(t, db, "user-1", 18, true, base.Add(3*time.Minute))
	seedPrediction(t, db, "user-1", 20, true, base.Add(4*time.Minute))

	entry, err := lb.Rebuild("user-1")
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if entry.CurrentStreak != 2 {
		t.Fatalf("expected streak 2, got %d", entry.CurrentStreak)
	}
	if entry.BestStreak != 2 {
		t.Fatalf("expected best streak 2, got %d", entry.BestStreak)
	}
	if entry.TotalPredictions != 4 || entry.CorrectPredictions != 3 {
		t.Fatalf("unexpected totals: %+v", entry)
	}
	if entry.StockScore != 53 || entry.TotalScore != 53 {
		t.Fatalf("unexpected scores: %+v", entry)
	}
}

func TestRebuildBestStreakOnlyRatchetsUp(t *testing.T) {
	db := newTestDB(t)
	lb := NewLeaderboardService(db)

	base := time.Now().Add(-1 * time.Hour)
	seedPrediction(t, db, "user-1", 15, true, base.Add(1*time.Minute))
	seedPrediction(t, db, "user-1", 15, true, base.Add(2*time.Minute))
	if _, err := lb.Rebuild("user-1"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	// A miss drops the current streak but not the best.
	seedPrediction(t, db, "user-1", 0, false, base.Add(3*time.Minute))
	entry, err := lb.Rebuild("user-1")
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if entry.CurrentStreak != 0 {
		t.Fatalf("expected current streak 0, got %d", entry.CurrentStreak)
	}
	if entry.BestStreak != 2 {
		t.Fatalf("best streak should hold at 2, got %d", entry.BestStreak)
	}
}

func TestRebuildIncludesScenarioScores(t *testing.T) {
	db := newTestDB(t)
	lb := NewLeaderboardService(db)

	attempt := models.ScenarioAttempt{
		ID:             uuid.NewString(),
		ExternalUserID: "user-1",
		ScenarioID:     uuid.NewString(),
		QuizRunID:      uuid.NewString(),
		ScoreEarned:    20,
		IsCorrect:      true,
	}
	if err := db.Create(&attempt).Error; err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
	seedPrediction(t, db, "user-1", 15, true, time.Now().Add(-time.Minute))

	entry, err := lb.Rebuild("user-1")
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if entry.ScenarioScore != 20 || entry.StockScore != 15 || entry.TotalScore != 35 {
		t.Fatalf("unexpected scores: %+v", entry)
	}
	if entry.ScenarioAttempts != 1 || entry.TotalPredictions != 2 || entry.CorrectPredictions != 2 {
		t.Fatalf("unexpected counts: %+v", entry)
	}
}

func TestTopSortsAndRanks(t *testing.T) {
	db := newTestDB(t)
	lb := NewLeaderboardService(db)

	base := time.Now().Add(-1 * time.Hour)
	seedPrediction(t, db, "alice", 20, true, base)
	seedPrediction(t, db, "bob", 10, true, base)
	seedPrediction(t, db, "bob", 5, false, base.Add(time.Minute))
	for _, uid := range []string{"alice", "bob"} {
		if _, err := lb.Rebuild(uid); err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}
	}
	mirror := models.UserMirror{ID: uuid.NewString(), ExternalID: "alice", Username: "Alice"}
	if err := db.Create(&mirror).Error; err != nil {
		t.Fatalf("seed mirror: %v", err)
	}

	rows, err := lb.Top(LeaderboardTotal, 10)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ExternalUserID != "alice" || rows[0].Rank != 1 {
		t.Fatalf("expected alice first: %+v", rows[0])
	}
	if rows[0].Username != "Alice" {
		t.Fatalf("expected mirrored username, got %q", rows[0].Username)
	}
	if rows[1].Accuracy != 50 {
		t.Fatalf("expected 50%% accuracy for bob, got %d", rows[1].Accuracy)
	}

	// Bob's newest prediction was a miss, so streaks puts alice on top too.
	rows, err = lb.Top(LeaderboardStreaks, 10)
	if err != nil {
		t.Fatalf("Top streaks failed: %v", err)
	}
	if rows[0].ExternalUserID != "alice" || rows[0].CurrentStreak != 1 {
		t.Fatalf("expected alice to lead streaks: %+v", rows[0])
	}
	if rows[1].CurrentStreak != 0 {
		t.Fatalf("expected bob streak 0, got %d", rows[1].CurrentStreak)
	}

	if _, err := lb.Top("bogus", 10); models.KindOf(err) != models.KindInvalidInput {
		t.Fatalf("expected invalid_input for unknown type, got %v", err)
	}
}
