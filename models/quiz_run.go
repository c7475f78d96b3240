package models

import (
	"strings"
	"time"
)

// MaxScorePerQuestion caps both the per-question contribution and the XP
// conversion at result time.
const MaxScorePerQuestion = 20

// QuizRun is one sequenced session of scenario questions. The scenario id
// sequence is fixed at creation; CurrentIndex only moves forward;
// XPAwarded is a one-way gate closing the run's reward path.
type QuizRun struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	// Scenario ids joined by commas, e.g. "id1,id2,id3,id4,id5".
	ScenarioIDs  string `gorm:"not null" json:"scenario_ids"`
	CurrentIndex int    `json:"current_index" gorm:"default:0"`
	TotalScore   int    `json:"total_score" gorm:"default:0"`
	IsCompleted  bool   `json:"is_completed" gorm:"default:false"`
	XPAwarded    bool   `json:"xp_awarded" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ScenarioList splits the stored id sequence, skipping blanks.
func (r *QuizRun) ScenarioList() []string {
	if strings.TrimSpace(r.ScenarioIDs) == "" {
		return nil
	}
	parts := strings.Split(r.ScenarioIDs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MaxPossibleScore is the ceiling used for percentage and the perfect-run
// achievement check.
func (r *QuizRun) MaxPossibleScore() int {
	return len(r.ScenarioList()) * MaxScorePerQuestion
}
