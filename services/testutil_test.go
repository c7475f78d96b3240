package services

import (
	"fmt"
	"testing"

	"wealthplay-service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test and migrates the
// full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.UserMirror{},
		&models.ModuleContent{},
		&models.ModuleQNA{},
		&models.ModuleMCQ{},
		&models.ModuleProgress{},
		&models.MCQAttempt{},
		&models.Scenario{},
		&models.DecisionOption{},
		&models.QuizRun{},
		&models.ScenarioAttempt{},
		&models.StockQuestion{},
		&models.StockSnapshot{},
		&models.StockPrediction{},
		&models.DemoPortfolio{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.ChallengeLeaderboard{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}
