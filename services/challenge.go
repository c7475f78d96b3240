package services

import (
	"errors"
	"strings"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService runs the stock prediction challenge in two modes:
// question-bank predictions scored against curated charts, and free-play
// predictions scored against the trend oracle's live call.
type ChallengeService struct {
	DB           *gorm.DB
	Profiles     *ProfileService
	Leaderboard  *LeaderboardService
	Oracle       *OracleService
	Achievements *AchievementService
}

func NewChallengeService(db *gorm.DB, profiles *ProfileService, lb *LeaderboardService, oracle *OracleService, ach *AchievementService) *ChallengeService {
	return &ChallengeService{DB: db, Profiles: profiles, Leaderboard: lb, Oracle: oracle, Achievements: ach}
}

// PredictionResult is the scored outcome of one submission.
type PredictionResult struct {
	PredictionID  string `json:"prediction_id"`
	Symbol        string `json:"symbol"`
	UserDirection string `json:"user_direction"`
	IsCorrect     bool   `json:"is_correct"`
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	AIDirection   string `json:"ai_direction,omitempty"`
	AIAnalysis    string `json:"ai_analysis,omitempty"`
	XPAwarded     int    `json:"xp_awarded"`
}

// Questions lists the active question bank.
func (s *ChallengeService) Questions() ([]models.StockQuestion, error) {
	var questions []models.StockQuestion
	if err := s.DB.Where("is_active = ?", true).Order("difficulty, stock_symbol").Find(&questions).Error; err != nil {
		return nil, models.Internal(err, "failed to list stock questions")
	}
	return questions, nil
}

// SubmitQuestionPrediction scores a free-text prediction against one
// question-bank entry. Every submission is a fresh attempt: the prediction
// row, leaderboard bump and XP credit all happen in one transaction.
func (s *ChallengeService) SubmitQuestionPrediction(externalUserID, questionID, predictionText string) (*PredictionResult, error) {
	predictionText = strings.TrimSpace(predictionText)
	if predictionText == "" {
		return nil, models.InvalidInput("prediction text required")
	}

	var q models.StockQuestion
	err := s.DB.Where("id = ? AND is_active = ?", questionID, true).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFound("stock question %s not found", questionID)
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load stock question")
	}

	score, isCorrect, userDirection, feedback := ScoreQuestionPrediction(&q, predictionText)
	result, err := s.record(externalUserID, models.StockPrediction{
		StockSymbol:         q.StockSymbol,
		Prediction:          predictionText,
		PredictionDirection: userDirection,
		IsCorrect:           isCorrect,
		Score:               score,
		Feedback:            feedback,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitFreePrediction scores a free-play prediction against the oracle's
// current trend call for the symbol.
func (s *ChallengeService) SubmitFreePrediction(externalUserID, symbol, predictionText string) (*PredictionResult, error) {
	predictionText = strings.TrimSpace(predictionText)
	if predictionText == "" {
		return nil, models.InvalidInput("prediction text required")
	}

	quote, err := s.Oracle.Quote(symbol)
	if err != nil {
		return nil, err
	}

	userDirection := ExtractDirection(predictionText)
	score, isCorrect := ScoreFreePrediction(userDirection, quote.Direction)

	feedback := "The trend disagrees with your call."
	if isCorrect {
		feedback = "Your call matches the current trend."
	} else if quote.Direction == models.TrendNeutral || userToTrend(userDirection) == models.TrendNeutral {
		feedback = "The trend is sideways; partial credit."
	}

	result, err := s.record(externalUserID, models.StockPrediction{
		StockSymbol:         quote.Symbol,
		Prediction:          predictionText,
		PredictionDirection: userDirection,
		AIAnalysis:          quote.Direction + ": " + regimeFor(quote.Volatility),
		AIDirection:         quote.Direction,
		IsCorrect:           isCorrect,
		Score:               score,
		Feedback:            feedback,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// record persists the prediction, credits its score as XP, bumps the
// leaderboard, then runs the achievement pass outside the transaction.
func (s *ChallengeService) record(externalUserID string, prediction models.StockPrediction) (*PredictionResult, error) {
	prediction.ID = uuid.NewString()
	prediction.ExternalUserID = externalUserID

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&prediction).Error; err != nil {
			return models.Internal(err, "failed to save prediction")
		}
		if prediction.Score > 0 {
			if _, err := s.Profiles.ApplyXP(tx, externalUserID, prediction.Score, "prediction_"+prediction.StockSymbol); err != nil {
				return err
			}
		}
		return s.Leaderboard.BumpPrediction(tx, externalUserID, prediction.Score, prediction.IsCorrect)
	})
	if err != nil {
		return nil, err
	}

	if s.Achievements != nil {
		if _, err := s.Achievements.Evaluate(externalUserID); err != nil {
			return nil, err
		}
	}

	return &PredictionResult{
		PredictionID:  prediction.ID,
		Symbol:        prediction.StockSymbol,
		UserDirection: prediction.PredictionDirection,
		IsCorrect:     prediction.IsCorrect,
		Score:         prediction.Score,
		Feedback:      prediction.Feedback,
		AIDirection:   prediction.AIDirection,
		AIAnalysis:    prediction.AIAnalysis,
		XPAwarded:     prediction.Score,
	}, nil
}

// History returns the user's most recent predictions, newest first.
func (s *ChallengeService) History(externalUserID string, limit int) ([]models.StockPrediction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var predictions []models.StockPrediction
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").Limit(limit).Find(&predictions).Error; err != nil {
		return nil, models.Internal(err, "failed to load prediction history")
	}
	return predictions, nil
}
