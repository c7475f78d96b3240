package models

import "time"

// ModuleContent stores enriched content for a course module.
// ModuleID format: "<course_id>_<module_slug>".
type ModuleContent struct {
	ModuleID    string `gorm:"primaryKey" json:"module_id"`
	CourseID    string `gorm:"index;not null" json:"course_id"`
	Title       string `gorm:"not null" json:"title"`
	Summary     string `gorm:"type:text" json:"summary"`
	TheoryText  string `gorm:"type:text" json:"theory_text"`
	DurationMin int    `json:"duration_min" gorm:"default:0"`
	XPReward    int    `json:"xp_reward" gorm:"default:0"`
	Order       int    `json:"order" gorm:"column:module_order;default:0"`
	LockRule    string `json:"lock_rule" gorm:"type:varchar(20)"` // "" or "sequential"

	QNAPairs []ModuleQNA `gorm:"foreignKey:ModuleID;references:ModuleID" json:"qna_pairs,omitempty"`
	MCQs     []ModuleMCQ `gorm:"foreignKey:ModuleID;references:ModuleID" json:"mcqs,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ModuleQNA is a fixed question/answer pair shown with a module.
type ModuleQNA struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	ModuleID string `gorm:"index;not null" json:"module_id"`
	Question string `gorm:"type:text;not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
	Order    int    `json:"order" gorm:"column:qna_order;default:0"`
}

// ModuleMCQ is a multiple-choice question. XPValue is fixed at content
// import time so grading never recomputes the per-question award.
type ModuleMCQ struct {
	ID            string   `gorm:"primaryKey;type:uuid" json:"id"`
	ModuleID      string   `gorm:"uniqueIndex:idx_module_mcq;not null" json:"module_id"`
	MCQID         string   `gorm:"uniqueIndex:idx_module_mcq;not null" json:"mcq_id"` // e.g. "mcq-1"
	Question      string   `gorm:"type:text;not null" json:"question"`
	Choices       []string `gorm:"serializer:json" json:"choices"` // ["A) ...", "B) ...", ...]
	CorrectChoice string   `gorm:"type:varchar(1);not null" json:"correct_choice"`
	Explanation   string   `gorm:"type:text" json:"explanation"`
	Order         int      `json:"order" gorm:"column:mcq_order;default:0"`
	XPValue       int      `json:"xp_value" gorm:"default:0"`
}

// Module progress states.
const (
	ProgressNotStarted = "not_started"
	ProgressUnlocked   = "unlocked"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// ModuleProgress tracks one user's progress through one module.
// XPAwarded gates the one-time completion award.
type ModuleProgress struct {
	ID              string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID  string     `gorm:"uniqueIndex:idx_user_module;not null" json:"external_user_id"`
	CourseID        string     `gorm:"uniqueIndex:idx_user_module;not null" json:"course_id"`
	ModuleID        string     `gorm:"uniqueIndex:idx_user_module;not null" json:"module_id"`
	Status          string     `gorm:"type:varchar(20);default:'not_started'" json:"status"`
	ProgressPercent float64    `json:"progress_percent" gorm:"default:0"`
	XPAwarded       int        `json:"xp_awarded" gorm:"default:0"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	LastAccessed    time.Time  `json:"last_accessed" gorm:"autoUpdateTime"`
}
