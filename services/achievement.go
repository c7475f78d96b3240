package services

import (
	"errors"
	"log"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AchievementService evaluates the achievement catalog against a user's
// current stats and unlocks anything newly earned. Unlock is permanent:
// the (user, achievement) row is the unlock, conditions are never
// re-checked once it exists.
type AchievementService struct {
	DB       *gorm.DB
	Profiles *ProfileService
}

func NewAchievementService(db *gorm.DB, profiles *ProfileService) *AchievementService {
	return &AchievementService{DB: db, Profiles: profiles}
}

// AchievementView is a catalog entry joined with the user's unlock state.
type AchievementView struct {
	models.Achievement
	Unlocked   bool   `json:"unlocked"`
	UnlockedAt string `json:"unlocked_at,omitempty"`
}

// SeedCatalog upserts the static catalog. Safe to run on every boot.
func (s *AchievementService) SeedCatalog() error {
	for _, a := range models.AchievementCatalog {
		var existing models.Achievement
		err := s.DB.Where("id = ?", a.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.DB.Create(&a).Error; err != nil {
				return models.Internal(err, "failed to seed achievement %s", a.ID)
			}
			continue
		}
		if err != nil {
			return models.Internal(err, "failed to check achievement %s", a.ID)
		}
	}
	return nil
}

// userStats is the snapshot the unlock conditions read from.
type userStats struct {
	XP                 int
	Streak             int
	HoldingsCount      int
	HasTraded          bool
	PortfolioReturn    float64
	ScenarioScore      int
	HasPerfectRun      bool
	CorrectPredictions int
}

func (s *AchievementService) collectStats(tx *gorm.DB, externalUserID string) (*userStats, error) {
	profile, err := s.Profiles.ensureProfileTx(tx, externalUserID)
	if err != nil {
		return nil, err
	}
	stats := &userStats{XP: profile.XP, Streak: profile.Streak}

	var portfolio models.DemoPortfolio
	err = tx.Where("external_user_id = ?", externalUserID).First(&portfolio).Error
	if err == nil {
		stats.HoldingsCount = len(portfolio.Holdings)
		stats.HasTraded = len(portfolio.Holdings) > 0 || portfolio.Balance != models.DemoPortfolioStartingBalance
		if portfolio.TotalValue > 0 {
			stats.PortfolioReturn = (portfolio.TotalValue - models.DemoPortfolioStartingBalance) / models.DemoPortfolioStartingBalance
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.Internal(err, "failed to load portfolio")
	}

	var scenarioScore int64
	if err := tx.Model(&models.ScenarioAttempt{}).
		Where("external_user_id = ?", externalUserID).
		Select("COALESCE(SUM(score_earned), 0)").Scan(&scenarioScore).Error; err != nil {
		return nil, models.Internal(err, "failed to sum scenario score")
	}
	stats.ScenarioScore = int(scenarioScore)

	var runs []models.QuizRun
	if err := tx.Where("external_user_id = ? AND is_completed = ?", externalUserID, true).
		Find(&runs).Error; err != nil {
		return nil, models.Internal(err, "failed to load completed runs")
	}
	for _, r := range runs {
		if max := r.MaxPossibleScore(); max > 0 && r.TotalScore >= max {
			stats.HasPerfectRun = true
			break
		}
	}

	var correct int64
	if err := tx.Model(&models.StockPrediction{}).
		Where("external_user_id = ? AND is_correct = ?", externalUserID, true).
		Count(&correct).Error; err != nil {
		return nil, models.Internal(err, "failed to count correct predictions")
	}
	stats.CorrectPredictions = int(correct)

	return stats, nil
}

// earned reports whether the stats satisfy one achievement's condition.
func earned(id string, st *userStats) bool {
	switch id {
	case "first_trade":
		return st.HasTraded
	case "diversified":
		return st.HoldingsCount >= 5
	case "portfolio_pro":
		return st.PortfolioReturn >= 0.10
	case "portfolio_master":
		return st.PortfolioReturn >= 0.25
	case "streak_5":
		return st.Streak >= 5
	case "streak_10":
		return st.Streak >= 10
	case "streak_30":
		return st.Streak >= 30
	case "scenario_master":
		return st.ScenarioScore >= 1000
	case "scenario_perfect":
		return st.HasPerfectRun
	case "stock_predictor":
		return st.CorrectPredictions >= 10
	case "stock_master":
		return st.CorrectPredictions >= 50
	case "xp_100":
		return st.XP >= 100
	case "xp_500":
		return st.XP >= 500
	case "xp_1000":
		return st.XP >= 1000
	case "xp_2500":
		return st.XP >= 2500
	}
	return false
}

// Evaluate runs every active catalog condition for the user and unlocks
// whatever is newly satisfied, crediting the catalog XP bonus once per
// unlock. Returns only the achievements unlocked by this call.
func (s *AchievementService) Evaluate(externalUserID string) ([]models.Achievement, error) {
	var unlocked []models.Achievement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := s.collectStats(tx, externalUserID)
		if err != nil {
			return err
		}

		var catalog []models.Achievement
		if err := tx.Where("is_active = ?", true).Find(&catalog).Error; err != nil {
			return models.Internal(err, "failed to load achievement catalog")
		}

		existing := map[string]bool{}
		var rows []models.UserAchievement
		if err := tx.Where("external_user_id = ?", externalUserID).Find(&rows).Error; err != nil {
			return models.Internal(err, "failed to load user achievements")
		}
		for _, r := range rows {
			existing[r.AchievementID] = true
		}

		for _, a := range catalog {
			if existing[a.ID] || !earned(a.ID, stats) {
				continue
			}
			ua := models.UserAchievement{
				ID:             uuid.NewString(),
				ExternalUserID: externalUserID,
				AchievementID:  a.ID,
			}
			if err := tx.Create(&ua).Error; err != nil {
				return models.Internal(err, "failed to unlock achievement %s", a.ID)
			}
			if a.XPReward > 0 {
				if _, err := s.Profiles.ApplyXP(tx, externalUserID, a.XPReward, "achievement_"+a.ID); err != nil {
					return err
				}
			}
			log.Printf("Achievement unlocked: %s earned %s (+%d XP)", externalUserID, a.ID, a.XPReward)
			unlocked = append(unlocked, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// List returns the full catalog with the user's unlock state merged in.
func (s *AchievementService) List(externalUserID string) ([]AchievementView, error) {
	var catalog []models.Achievement
	if err := s.DB.Where("is_active = ?", true).Order("category, id").Find(&catalog).Error; err != nil {
		return nil, models.Internal(err, "failed to load achievement catalog")
	}

	var rows []models.UserAchievement
	if err := s.DB.Where("external_user_id = ?", externalUserID).Find(&rows).Error; err != nil {
		return nil, models.Internal(err, "failed to load user achievements")
	}
	unlockedAt := map[string]string{}
	for _, r := range rows {
		unlockedAt[r.AchievementID] = r.UnlockedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	views := make([]AchievementView, 0, len(catalog))
	for _, a := range catalog {
		v := AchievementView{Achievement: a}
		if ts, ok := unlockedAt[a.ID]; ok {
			v.Unlocked = true
			v.UnlockedAt = ts
		}
		views = append(views, v)
	}
	return views, nil
}

// PendingNotifications returns unlocks not yet shown to the user and marks
// them notified in the same transaction, so each unlock surfaces once.
func (s *AchievementService) PendingNotifications(externalUserID string) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rows []models.UserAchievement
		if err := forUpdate(tx).
			Where("external_user_id = ? AND notified = ?", externalUserID, false).
			Find(&rows).Error; err != nil {
			return models.Internal(err, "failed to load pending unlocks")
		}
		for _, r := range rows {
			var a models.Achievement
			if err := tx.Where("id = ?", r.AchievementID).First(&a).Error; err != nil {
				return models.Internal(err, "failed to load achievement %s", r.AchievementID)
			}
			out = append(out, a)
			if err := tx.Model(&models.UserAchievement{}).
				Where("id = ?", r.ID).Update("notified", true).Error; err != nil {
				return models.Internal(err, "failed to mark unlock notified")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
