package services

import (
	"errors"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leaderboard sort types.
const (
	LeaderboardTotal    = "total"
	LeaderboardStock    = "stock"
	LeaderboardScenario = "scenario"
	LeaderboardStreaks  = "streaks"
)

// LeaderboardService maintains per-user challenge aggregates. Writes bump
// the row incrementally; a rebuild recomputes everything except BestStreak
// from the source attempt tables, so drift never survives a read.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// LeaderboardRow is one ranked entry.
type LeaderboardRow struct {
	Rank               int    `json:"rank"`
	ExternalUserID     string `json:"user_id"`
	Username           string `json:"username,omitempty"`
	TotalScore         int    `json:"total_score"`
	StockScore         int    `json:"stock_score"`
	ScenarioScore      int    `json:"scenario_score"`
	TotalPredictions   int    `json:"total_predictions"`
	CorrectPredictions int    `json:"correct_predictions"`
	Accuracy           int    `json:"accuracy"`
	CurrentStreak      int    `json:"current_streak"`
	BestStreak         int    `json:"best_streak"`
}

func ensureLeaderboardTx(tx *gorm.DB, externalUserID string) (*models.ChallengeLeaderboard, error) {
	var lb models.ChallengeLeaderboard
	err := tx.Where("external_user_id = ?", externalUserID).First(&lb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		lb = models.ChallengeLeaderboard{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
		}
		if err := tx.Create(&lb).Error; err != nil {
			return nil, models.Internal(err, "failed to create leaderboard entry")
		}
		return &lb, nil
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load leaderboard entry")
	}
	return &lb, nil
}

// Rebuild recomputes one user's aggregates from stock predictions and
// scenario attempts. The current streak is the run of correct predictions
// at the head of the 10 newest; BestStreak only ratchets upward.
func (s *LeaderboardService) Rebuild(externalUserID string) (*models.ChallengeLeaderboard, error) {
	var rebuilt *models.ChallengeLeaderboard
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lb, err := ensureLeaderboardTx(forUpdate(tx), externalUserID)
		if err != nil {
			return err
		}

		type predAgg struct {
			Total   int
			Correct int
			Score   int
		}
		var pa predAgg
		if err := tx.Model(&models.StockPrediction{}).
			Where("external_user_id = ?", externalUserID).
			Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct, COALESCE(SUM(score), 0) AS score").
			Scan(&pa).Error; err != nil {
			return models.Internal(err, "failed to aggregate predictions")
		}

		type scenAgg struct {
			Total   int
			Correct int
			Score   int
		}
		var sa scenAgg
		if err := tx.Model(&models.ScenarioAttempt{}).
			Where("external_user_id = ?", externalUserID).
			Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct, COALESCE(SUM(score_earned), 0) AS score").
			Scan(&sa).Error; err != nil {
			return models.Internal(err, "failed to aggregate scenario attempts")
		}

		var recent []models.StockPrediction
		if err := tx.Where("external_user_id = ?", externalUserID).
			Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
			return models.Internal(err, "failed to load recent predictions")
		}
		streak := 0
		for _, p := range recent {
			if !p.IsCorrect {
				break
			}
			streak++
		}

		lb.StockScore = pa.Score
		lb.ScenarioScore = sa.Score
		lb.TotalScore = pa.Score + sa.Score
		lb.TotalPredictions = pa.Total + sa.Total
		lb.CorrectPredictions = pa.Correct + sa.Correct
		lb.ScenarioAttempts = sa.Total
		lb.CurrentStreak = streak
		if streak > lb.BestStreak {
			lb.BestStreak = streak
		}
		if err := tx.Save(lb).Error; err != nil {
			return models.Internal(err, "failed to save leaderboard entry")
		}
		rebuilt = lb
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rebuilt, nil
}

// BumpPrediction applies one stock prediction result inside the caller's
// transaction, keeping reads cheap between rebuilds.
func (s *LeaderboardService) BumpPrediction(tx *gorm.DB, externalUserID string, score int, isCorrect bool) error {
	lb, err := ensureLeaderboardTx(forUpdate(tx), externalUserID)
	if err != nil {
		return err
	}
	lb.StockScore += score
	lb.TotalScore += score
	lb.TotalPredictions++
	if isCorrect {
		lb.CorrectPredictions++
		lb.CurrentStreak++
		if lb.CurrentStreak > lb.BestStreak {
			lb.BestStreak = lb.CurrentStreak
		}
	} else {
		lb.CurrentStreak = 0
	}
	if err := tx.Save(lb).Error; err != nil {
		return models.Internal(err, "failed to save leaderboard entry")
	}
	return nil
}

// Entry returns one user's row, creating an empty one if needed.
func (s *LeaderboardService) Entry(externalUserID string) (*models.ChallengeLeaderboard, error) {
	var lb *models.ChallengeLeaderboard
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		row, err := ensureLeaderboardTx(tx, externalUserID)
		if err != nil {
			return err
		}
		lb = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lb, nil
}

// Top returns the ranked board. Every known user is rebuilt first so the
// ranking reflects the attempt tables, not stale aggregates.
func (s *LeaderboardService) Top(sortType string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}

	var userIDs []string
	if err := s.DB.Model(&models.ChallengeLeaderboard{}).Pluck("external_user_id", &userIDs).Error; err != nil {
		return nil, models.Internal(err, "failed to list leaderboard users")
	}
	for _, uid := range userIDs {
		if _, err := s.Rebuild(uid); err != nil {
			return nil, err
		}
	}

	orderBy := "total_score DESC"
	switch sortType {
	case LeaderboardStock:
		orderBy = "stock_score DESC"
	case LeaderboardScenario:
		orderBy = "scenario_score DESC"
	case LeaderboardStreaks:
		orderBy = "current_streak DESC"
	case LeaderboardTotal, "":
	default:
		return nil, models.InvalidInput("unknown leaderboard type %q", sortType)
	}

	var entries []models.ChallengeLeaderboard
	if err := s.DB.Order(orderBy).Order("updated_at ASC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, models.Internal(err, "failed to load leaderboard")
	}

	names := map[string]string{}
	if len(entries) > 0 {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ExternalUserID)
		}
		var mirrors []models.UserMirror
		if err := s.DB.Where("external_id IN ?", ids).Find(&mirrors).Error; err != nil {
			return nil, models.Internal(err, "failed to load user mirrors")
		}
		for _, m := range mirrors {
			names[m.ExternalID] = m.Username
		}
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		accuracy := 0
		if e.TotalPredictions > 0 {
			accuracy = e.CorrectPredictions * 100 / e.TotalPredictions
		}
		rows = append(rows, LeaderboardRow{
			Rank:               i + 1,
			ExternalUserID:     e.ExternalUserID,
			Username:           names[e.ExternalUserID],
			TotalScore:         e.TotalScore,
			StockScore:         e.StockScore,
			ScenarioScore:      e.ScenarioScore,
			TotalPredictions:   e.TotalPredictions,
			CorrectPredictions: e.CorrectPredictions,
			Accuracy:           accuracy,
			CurrentStreak:      e.CurrentStreak,
			BestStreak:         e.BestStreak,
		})
	}
	return rows, nil
}
