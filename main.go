package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wealthplay-service/handlers"
	"wealthplay-service/middleware"
	"wealthplay-service/models"
	"wealthplay-service/services"
	"wealthplay-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, content imports carry chart data
	})

	// GLOBAL: only Gateway requests allowed.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
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
		log.Fatal("failed to migrate database:", err)
	}

	profileService := services.NewProfileService(db)
	rewardService := services.NewRewardService(db, profileService)
	contentService := services.NewContentService(db, profileService)
	quizRunService := services.NewQuizRunService(db, profileService)
	achievementService := services.NewAchievementService(db, profileService)
	leaderboardService := services.NewLeaderboardService(db)
	oracleService := services.NewOracleService(db, services.HeuristicPredictor{})
	portfolioService := services.NewPortfolioService(db, oracleService)
	challengeService := services.NewChallengeService(db, profileService, leaderboardService, oracleService, achievementService)

	if err := achievementService.SeedCatalog(); err != nil {
		log.Fatal("failed to seed achievement catalog:", err)
	}
	if err := services.SeedDemoContent(db, contentService); err != nil {
		log.Fatal("failed to seed demo content:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profileSyncClient := workers.NewProfileSyncClient(db)
	go workers.PollProfiles(ctx, profileSyncClient, 30*time.Second)
	go workers.SweepAbandonedRuns(ctx, db, 15*time.Minute)

	oracleService.StartQuoteScheduler(leaderboardService)

	handlers.SetupProfileRoutes(app, profileService, achievementService)
	handlers.SetupCourseRoutes(app, contentService, rewardService, achievementService)
	handlers.SetupQuizRoutes(app, quizRunService, achievementService)
	handlers.SetupChallengeRoutes(app, challengeService, leaderboardService, oracleService)
	handlers.SetupPortfolioRoutes(app, portfolioService, achievementService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Println("Profile mirror polling running (every 30s)")
	log.Println("Quote scheduler running")
	log.Println("GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
