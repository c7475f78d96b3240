// workers/run_sweeper.go
package workers

import (
	"context"
	"log"
	"time"

	"wealthplay-service/models"

	"gorm.io/gorm"
)

// abandonedAfter is how long a quiz run can sit untouched before the
// sweeper closes it. Closed runs can still be read for their result; they
// just stop accepting submissions.
const abandonedAfter = 24 * time.Hour

// SweepAbandonedRuns marks stale incomplete quiz runs as completed on a
// fixed interval until the context is canceled.
func SweepAbandonedRuns(ctx context.Context, db *gorm.DB, sweepInterval time.Duration) {
	log.Println("Starting abandoned quiz run sweeper...")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Quiz run sweeper stopped.")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-abandonedAfter)
			result := db.Model(&models.QuizRun{}).
				Where("is_completed = ? AND updated_at < ?", false, cutoff).
				Update("is_completed", true)
			if result.Error != nil {
				log.Printf("Failed to sweep abandoned runs: %v", result.Error)
				continue
			}
			if result.RowsAffected > 0 {
				log.Printf("Closed %d abandoned quiz run(s)", result.RowsAffected)
			}
		}
	}
}
