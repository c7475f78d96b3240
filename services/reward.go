package services

import (
	"errors"
	"math/rand"
	"strings"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardService turns activity outcomes into scores, correctness flags and
// one-time XP credits.
type RewardService struct {
	DB       *gorm.DB
	Profiles *ProfileService
}

func NewRewardService(db *gorm.DB, profiles *ProfileService) *RewardService {
	return &RewardService{DB: db, Profiles: profiles}
}

// MCQResult is the outcome of one MCQ submission.
type MCQResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectChoice string `json:"correct_choice"`
	Explanation   string `json:"explanation"`
	XPAwarded     int    `json:"xp_awarded"`
	UserXP        int    `json:"user_xp"`
}

// MCQXPValue computes the fixed per-question award at content import time:
// 40% of the module XP split across its MCQs, floor 15; a third of the
// module XP when the count is unknown.
func MCQXPValue(moduleXP, numMCQs int) int {
	if numMCQs > 0 {
		if v := (moduleXP * 40) / (100 * numMCQs); v > 15 {
			return v
		}
		return 15
	}
	if v := moduleXP / 3; v > 15 {
		return v
	}
	return 15
}

// SubmitMCQ grades an MCQ answer and credits XP at most once per
// (user, mcq). Re-submission overwrites choice and correctness but only
// awards XP while the attempt's xp_awarded sentinel is still zero.
func (s *RewardService) SubmitMCQ(externalUserID, moduleID, mcqID, selectedChoice string) (*MCQResult, error) {
	selectedChoice = strings.ToUpper(strings.TrimSpace(selectedChoice))
	if selectedChoice == "" {
		return nil, models.InvalidInput("selected_choice required")
	}

	var mcq models.ModuleMCQ
	err := s.DB.Where("module_id = ? AND mcq_id = ?", moduleID, mcqID).First(&mcq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFound("mcq %s not found in module %s", mcqID, moduleID)
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load mcq")
	}

	isCorrect := strings.EqualFold(selectedChoice, mcq.CorrectChoice)

	result := &MCQResult{
		IsCorrect:     isCorrect,
		CorrectChoice: mcq.CorrectChoice,
		Explanation:   mcq.Explanation,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var attempt models.MCQAttempt
		err := forUpdate(tx).
			Where("external_user_id = ? AND mcq_row_id = ?", externalUserID, mcq.ID).
			First(&attempt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			attempt = models.MCQAttempt{
				ID:             uuid.NewString(),
				ExternalUserID: externalUserID,
				MCQRowID:       mcq.ID,
			}
		} else if err != nil {
			return models.Internal(err, "failed to load mcq attempt")
		}

		attempt.SelectedChoice = selectedChoice
		attempt.IsCorrect = isCorrect

		if isCorrect && attempt.XPAwarded == 0 {
			attempt.XPAwarded = mcq.XPValue
			profile, err := s.Profiles.ApplyXP(tx, externalUserID, mcq.XPValue, "mcq_"+mcq.MCQID)
			if err != nil {
				return err
			}
			result.XPAwarded = mcq.XPValue
			result.UserXP = profile.XP
		}

		if err := tx.Save(&attempt).Error; err != nil {
			return models.Internal(err, "failed to save mcq attempt")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.UserXP == 0 {
		if profile, err := s.Profiles.EnsureProfile(externalUserID); err == nil {
			result.UserXP = profile.XP
		}
	}
	return result, nil
}

// ClassifyScenarioChoice maps a chosen option score against the scenario's
// option set. Correct means the choice ties the best option (and is
// positive); otherwise a fixed partial credit applies: 10 at or above half
// the max, 5 for anything positive below that, 0 for a zero choice.
func ClassifyScenarioChoice(options []models.DecisionOption, chosenScore int) (earned int, isCorrect bool) {
	maxScore := 0
	for _, opt := range options {
		if opt.Score > maxScore {
			maxScore = opt.Score
		}
	}

	if chosenScore >= maxScore && chosenScore > 0 {
		return chosenScore, true
	}
	if chosenScore > 0 {
		if float64(chosenScore) >= float64(maxScore)/2 {
			return 10, false
		}
		return 5, false
	}
	return 0, false
}

// Down-keywords are checked before up-keywords; the first match wins.
var (
	downKeywords = []string{"down", "fall", "drop", "decrease", "decline", "bearish", "sell", "crash", "plunge"}
	upKeywords   = []string{"up", "rise", "increase", "grow", "bullish", "buy", "surge", "rally", "gain"}
)

// ExtractDirection classifies free-text prediction into up/down/neutral.
func ExtractDirection(prediction string) string {
	lower := strings.ToLower(prediction)
	for _, kw := range downKeywords {
		if strings.Contains(lower, kw) {
			return models.DirectionDown
		}
	}
	for _, kw := range upKeywords {
		if strings.Contains(lower, kw) {
			return models.DirectionUp
		}
	}
	return models.DirectionNeutral
}

// keywordOverlap is the fraction of expected keywords present in the
// prediction text, 0.5 when no keywords are configured.
func keywordOverlap(prediction string, expected []string) float64 {
	if len(expected) == 0 {
		return 0.5
	}
	lower := strings.ToLower(prediction)
	matches := 0
	for _, kw := range expected {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matches++
		}
	}
	ratio := float64(matches) / float64(len(expected))
	if ratio > 1.0 {
		ratio = 1.0
	}
	return ratio
}

// ScoreQuestionPrediction applies the question-bank scoring tiers.
func ScoreQuestionPrediction(q *models.StockQuestion, predictionText string) (score int, isCorrect bool, userDirection string, feedback string) {
	userDirection = ExtractDirection(predictionText)
	overlap := keywordOverlap(predictionText, q.ExpectedKeywords)
	directionMatch := userDirection == q.ExpectedDirection

	switch {
	case directionMatch && overlap > 0.5:
		return q.MaxScore, true, userDirection, "Excellent! " + q.Explanation
	case directionMatch || overlap > 0.6:
		score = q.BaseScore + int(float64(q.MaxScore-q.BaseScore)*overlap)
		return score, true, userDirection, "Good prediction! " + q.Explanation
	case overlap > 0.3:
		score = int(float64(q.BaseScore) * overlap)
		return score, false, userDirection, "Partially correct. " + q.Explanation
	default:
		return 0, false, userDirection, "Not quite right. " + q.Explanation
	}
}

// userToTrend maps a user direction to the oracle's vocabulary.
func userToTrend(direction string) string {
	switch direction {
	case models.DirectionUp:
		return models.TrendBullish
	case models.DirectionDown:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// ScoreFreePrediction grades a free-play prediction against the oracle's
// trend: a match earns 15 base plus up to 5 jitter, a neutral on either
// side earns 5, an opposite call earns 0.
func ScoreFreePrediction(userDirection, trendDirection string) (score int, isCorrect bool) {
	mapped := userToTrend(userDirection)
	if mapped == trendDirection {
		return 15 + rand.Intn(6), true
	}
	if trendDirection == models.TrendNeutral || mapped == models.TrendNeutral {
		return 5, false
	}
	return 0, false
}
