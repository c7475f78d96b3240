package services

import (
	"errors"
	"log"
	"time"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService owns the per-user XP counter. Every reward path (MCQ,
// scenario quiz, achievement bonus, module completion) applies its delta
// through ApplyXP so concurrent read-modify-write sequences cannot lose
// updates.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// forUpdate adds a row lock on dialects that support it. SQLite (tests)
// serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// EnsureProfile returns the user's profile, creating it lazily.
func (s *ProfileService) EnsureProfile(externalUserID string) (*models.UserProfile, error) {
	return s.ensureProfileTx(s.DB, externalUserID)
}

func (s *ProfileService) ensureProfileTx(tx *gorm.DB, externalUserID string) (*models.UserProfile, error) {
	if externalUserID == "" {
		return nil, models.InvalidInput("user id required")
	}
	var profile models.UserProfile
	err := tx.Where("external_user_id = ?", externalUserID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			XP:             0,
			Level:          models.LevelBeginner,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return nil, models.Internal(err, "failed to create profile")
		}
		return &profile, nil
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load profile")
	}
	return &profile, nil
}

// ApplyXP adds a non-negative delta to the profile inside the caller's
// transaction, recomputing the level from the XP thresholds. The level is
// never writable on its own — it always follows from cumulative XP.
func (s *ProfileService) ApplyXP(tx *gorm.DB, externalUserID string, delta int, reason string) (*models.UserProfile, error) {
	if delta < 0 {
		return nil, models.InvalidInput("xp delta must be non-negative, got %d", delta)
	}

	profile, err := s.ensureProfileTx(tx, externalUserID)
	if err != nil {
		return nil, err
	}

	var locked models.UserProfile
	if err := forUpdate(tx).Where("id = ?", profile.ID).First(&locked).Error; err != nil {
		return nil, models.Internal(err, "failed to lock profile")
	}

	locked.XP += delta
	locked.Level = models.LevelForXP(locked.XP)
	rollDailyStreak(&locked, time.Now())

	if err := tx.Save(&locked).Error; err != nil {
		return nil, models.Internal(err, "failed to save profile")
	}

	if delta > 0 {
		log.Printf("XP awarded: %s +%d -> %d XP, level=%s (reason: %s)",
			externalUserID, delta, locked.XP, locked.Level, reason)
	}
	return &locked, nil
}

// AwardXP is ApplyXP in its own transaction, for callers outside a reward
// flow (achievement bonus passes, admin grants).
func (s *ProfileService) AwardXP(externalUserID string, delta int, reason string) (*models.UserProfile, error) {
	var updated *models.UserProfile
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.ApplyXP(tx, externalUserID, delta, reason)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// rollDailyStreak advances the daily activity streak: same day is a no-op,
// the next day increments, a gap resets to 1.
func rollDailyStreak(profile *models.UserProfile, now time.Time) {
	today := now.Truncate(24 * time.Hour)
	if profile.LastActivityDate != nil {
		last := profile.LastActivityDate.Truncate(24 * time.Hour)
		switch {
		case last.Equal(today):
			return
		case today.Sub(last) == 24*time.Hour:
			profile.Streak++
		default:
			profile.Streak = 1
		}
	} else {
		profile.Streak = 1
	}
	profile.LastActivityDate = &today
}

// UpdateOnboarding stores the onboarding questionnaire answers.
func (s *ProfileService) UpdateOnboarding(externalUserID string, answers models.UserProfile) (*models.UserProfile, error) {
	var updated *models.UserProfile
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		profile, err := s.ensureProfileTx(tx, externalUserID)
		if err != nil {
			return err
		}
		profile.FinancialGoal = answers.FinancialGoal
		profile.RiskTolerance = answers.RiskTolerance
		profile.InvestmentExperience = answers.InvestmentExperience
		profile.Timeline = answers.Timeline
		profile.InitialInvestment = answers.InitialInvestment
		if err := tx.Save(profile).Error; err != nil {
			return models.Internal(err, "failed to save onboarding answers")
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
