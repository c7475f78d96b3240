package services

import (
	"testing"

	"wealthplay-service/models"

	"github.com/google/uuid"
)

func TestMCQXPValue(t *testing.T) {
	cases := []struct {
		moduleXP int
		numMCQs  int
		want     int
	}{
		{100, 2, 20},  // 40% of 100 split over 2
		{100, 5, 15},  // floor kicks in: 8 < 15
		{300, 3, 40},  // 120 / 3
		{90, 0, 30},   // unknown count: a third
		{30, 0, 15},   // a third below floor
		{0, 4, 15},    // zero module XP still pays the floor
	}
	for _, c := range cases {
		if got := MCQXPValue(c.moduleXP, c.numMCQs); got != c.want {
			t.Errorf("MCQXPValue(%d, %d) = %d, want %d", c.moduleXP, c.numMCQs, got, c.want)
		}
	}
}

func TestSubmitMCQAwardsOnce(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileService(db)
	rewards := NewRewardService(db, profiles)

	mcq := models.ModuleMCQ{
		ID:            uuid.NewString(),
		ModuleID:      "course_budgeting",
		MCQID:         "mcq-1",
		Question:      "What portion of income should go to savings first?",
		Choices:       []string{"A) None", "B) Pay yourself first", "C) Whatever is left"},
		CorrectChoice: "B",
		XPValue:       20,
	}
	if err := db.Create(&mcq).Error; err != nil {
		t.Fatalf("seed mcq: %v", err)
	}

	// Wrong answer: no XP.
	result, err := rewards.SubmitMCQ("user-1", "course_budgeting", "mcq-1", "a")
	if err != nil {
		t.Fatalf("SubmitMCQ failed: %v", err)
	}
	if result.IsCorrect || result.XPAwarded != 0 {
		t.Fatalf("wrong answer should award nothing: %+v", result)
	}

	// Correct answer awards once, case-insensitively.
	result, err = rewards.SubmitMCQ("user-1", "course_budgeting", "mcq-1", "b")
	if err != nil {
		t.Fatalf("SubmitMCQ failed: %v", err)
	}
	if !result.IsCorrect || result.XPAwarded != 20 {
		t.Fatalf("correct answer should award 20 XP: %+v", result)
	}

	// Repeat correct answer: graded, but no second award.
	result, err = rewards.SubmitMCQ("user-1", "course_budgeting", "mcq-1", "B")
	if err != nil {
		t.Fatalf("SubmitMCQ failed: %v", err)
	}
	if !result.IsCorrect {
		t.Fatal("repeat submission should still grade correct")
	}
	if result.XPAwarded != 0 {
		t.Fatalf("repeat submission must not award again, got %d", result.XPAwarded)
	}

	profile, err := profiles.EnsureProfile("user-1")
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	if profile.XP != 20 {
		t.Fatalf("expected 20 XP total, got %d", profile.XP)
	}
}

func TestSubmitMCQUnknownQuestion(t *testing.T) {
	db := newTestDB(t)
	rewards := NewRewardService(db, NewProfileService(db))

	_, err := rewards.SubmitMCQ("user-1", "course_budgeting", "mcq-99", "A")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if models.KindOf(err) != models.KindNotFound {
		t.Fatalf("expected not_found kind, got %s", models.KindOf(err))
	}
}

func TestClassifyScenarioChoice(t *testing.T) {
	options := []models.DecisionOption{
		{Score: 20},
		{Score: 15},
		{Score: 10},
		{Score: 5},
		{Score: 0},
	}

	cases := []struct {
		chosen      int
		wantEarned  int
		wantCorrect bool
	}{
		{20, 20, true}, // ties the best option
		{15, 10, false},
		{10, 10, false}, // exactly half the max
		{5, 5, false},
		{0, 0, false},
	}
	for _, c := range cases {
		earned, correct := ClassifyScenarioChoice(options, c.chosen)
		if earned != c.wantEarned || correct != c.wantCorrect {
			t.Errorf("ClassifyScenarioChoice(%d) = (%d, %t), want (%d, %t)",
				c.chosen, earned, correct, c.wantEarned, c.wantCorrect)
		}
	}
}

func TestClassifyScenarioChoiceAllZeroOptions(t *testing.T) {
	options := []models.DecisionOption{{Score: 0}, {Score: 0}}
	earned, correct := ClassifyScenarioChoice(options, 0)
	if earned != 0 || correct {
		t.Fatalf("zero max should never mark correct, got (%d, %t)", earned, correct)
	}
}

func TestExtractDirection(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"I think it will rise sharply", models.DirectionUp},
		{"Expect a big drop ahead", models.DirectionDown},
		{"Sideways for a while", models.DirectionNeutral},
		// Down-keywords win when both appear.
		{"It will rise then crash", models.DirectionDown},
		{"BULLISH all the way", models.DirectionUp},
	}
	for _, c := range cases {
		if got := ExtractDirection(c.text); got != c.want {
			t.Errorf("ExtractDirection(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestScoreQuestionPrediction(t *testing.T) {
	q := &models.StockQuestion{
		ExpectedDirection: models.DirectionUp,
		ExpectedKeywords:  []string{"earnings", "momentum", "growth"},
		Explanation:       "Strong quarter.",
		BaseScore:         10,
		MaxScore:          20,
	}

	t.Run("direction match with strong overlap hits max", func(t *testing.T) {
		score, correct, dir, _ := ScoreQuestionPrediction(q, "It will rise on earnings momentum")
		if score != 20 || !correct || dir != models.DirectionUp {
			t.Fatalf("got score=%d correct=%t dir=%s", score, correct, dir)
		}
	})

	t.Run("direction match with weak overlap scales from base", func(t *testing.T) {
		score, correct, _, _ := ScoreQuestionPrediction(q, "It will rise on earnings")
		// overlap 1/3: base 10 + (20-10)*1/3 = 13
		if score != 13 || !correct {
			t.Fatalf("got score=%d correct=%t", score, correct)
		}
	})

	t.Run("wrong direction with no keywords scores zero", func(t *testing.T) {
		score, correct, _, feedback := ScoreQuestionPrediction(q, "It will fall hard")
		if score != 0 || correct {
			t.Fatalf("got score=%d correct=%t", score, correct)
		}
		if feedback == "" {
			t.Fatal("expected feedback text")
		}
	})
}

func TestScoreFreePrediction(t *testing.T) {
	score, correct := ScoreFreePrediction(models.DirectionUp, models.TrendBullish)
	if !correct || score < 15 || score > 20 {
		t.Fatalf("matching call should score 15-20, got %d (correct=%t)", score, correct)
	}

	score, correct = ScoreFreePrediction(models.DirectionNeutral, models.TrendBullish)
	if correct || score != 5 {
		t.Fatalf("neutral call should score 5, got %d (correct=%t)", score, correct)
	}

	score, correct = ScoreFreePrediction(models.DirectionUp, models.TrendBearish)
	if correct || score != 0 {
		t.Fatalf("opposite call should score 0, got %d (correct=%t)", score, correct)
	}
}
