package services

import (
	"testing"

	"wealthplay-service/models"
)

func newChallengeFixture(t *testing.T) (*ChallengeService, *ProfileService) {
	t.Helper()
	db := newTestDB(t)
	profiles := NewProfileService(db)
	achievements := NewAchievementService(db, profiles)
	if err := achievements.SeedCatalog(); err != nil {
		t.Fatalf("SeedCatalog failed: %v", err)
	}
	leaderboard := NewLeaderboardService(db)
	oracle := NewOracleService(db, HeuristicPredictor{})
	challenge := NewChallengeService(db, profiles, leaderboard, oracle, achievements)
	return challenge, profiles
}

func TestSubmitQuestionPrediction(t *testing.T) {
	challenge, profiles := newChallengeFixture(t)

	q := models.StockQuestion{
		ID:                "22222222-2222-4222-8222-222222222201",
		StockName:         "TechNova Systems",
		StockSymbol:       "TNVA",
		Question:          "Where next?",
		ExpectedDirection: models.DirectionUp,
		ExpectedKeywords:  []string{"earnings", "momentum"},
		Explanation:       "Strong quarter.",
		BaseScore:         10,
		MaxScore:          20,
		IsActive:          true,
	}
	if err := challenge.DB.Create(&q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}

	result, err := challenge.SubmitQuestionPrediction("user-1", q.ID, "It should rise on earnings momentum")
	if err != nil {
		t.Fatalf("SubmitQuestionPrediction failed: %v", err)
	}
	if !result.IsCorrect || result.Score != 20 {
		t.Fatalf("expected max score, got %+v", result)
	}
	if result.UserDirection != models.DirectionUp {
		t.Fatalf("expected up direction, got %s", result.UserDirection)
	}

	// The score lands as XP and on the leaderboard.
	profile, err := profiles.EnsureProfile("user-1")
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	if profile.XP != 20 {
		t.Fatalf("expected 20 XP, got %d", profile.XP)
	}
	var lb models.ChallengeLeaderboard
	if err := challenge.DB.Where("external_user_id = ?", "user-1").First(&lb).Error; err != nil {
		t.Fatalf("load leaderboard: %v", err)
	}
	if lb.StockScore != 20 || lb.CurrentStreak != 1 || lb.TotalPredictions != 1 {
		t.Fatalf("unexpected leaderboard entry: %+v", lb)
	}
}

func TestSubmitQuestionPredictionValidation(t *testing.T) {
	challenge, _ := newChallengeFixture(t)

	_, err := challenge.SubmitQuestionPrediction("user-1", "22222222-2222-4222-8222-222222222299", "up")
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	_, err = challenge.SubmitQuestionPrediction("user-1", "whatever", "   ")
	if models.KindOf(err) != models.KindInvalidInput {
		t.Fatalf("expected invalid_input for blank text, got %v", err)
	}
}

func TestSubmitFreePredictionRecordsOracleCall(t *testing.T) {
	challenge, _ := newChallengeFixture(t)

	result, err := challenge.SubmitFreePrediction("user-1", "AAPL", "I think it will rally hard")
	if err != nil {
		t.Fatalf("SubmitFreePrediction failed: %v", err)
	}
	if result.AIDirection == "" || result.Feedback == "" {
		t.Fatalf("expected oracle context on result: %+v", result)
	}
	if result.UserDirection != models.DirectionUp {
		t.Fatalf("expected up direction, got %s", result.UserDirection)
	}

	history, err := challenge.History("user-1", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 prediction in history, got %d", len(history))
	}
	if history[0].AIDirection != result.AIDirection {
		t.Fatalf("history should carry the oracle direction: %+v", history[0])
	}
}
