// services/scheduler.go
package services

import (
	"log"
	"time"

	"wealthplay-service/models"

	"github.com/go-co-op/gocron/v2"
)

// StartQuoteScheduler runs the periodic market jobs: a full quote refresh
// just inside the freshness window, and an hourly leaderboard rebuild so
// rankings stay honest even for users who stopped submitting.
func (s *OracleService) StartQuoteScheduler(leaderboard *LeaderboardService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(s.Freshness-time.Minute),
		gocron.NewTask(func() {
			if err := s.RefreshAll(); err != nil {
				log.Printf("[Scheduler] Quote refresh failed: %v", err)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			var userIDs []string
			if err := s.DB.Model(&models.ChallengeLeaderboard{}).
				Pluck("external_user_id", &userIDs).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, uid := range userIDs {
				if _, err := leaderboard.Rebuild(uid); err != nil {
					log.Printf("[Scheduler] Failed to rebuild leaderboard for %s: %v", uid, err)
				}
			}
			if len(userIDs) > 0 {
				log.Printf("Leaderboard sweep: %d user(s) rebuilt", len(userIDs))
			}
		}),
	)
}
