package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ContentService owns course/module content, per-user module progress and
// the scenario bank. Content comes in as JSON payloads (admin import) and
// is replaced wholesale per module id.
type ContentService struct {
	DB       *gorm.DB
	Profiles *ProfileService
}

func NewContentService(db *gorm.DB, profiles *ProfileService) *ContentService {
	return &ContentService{DB: db, Profiles: profiles}
}

// CourseImport is the admin import payload for one course.
type CourseImport struct {
	CourseID string         `json:"course_id"`
	Modules  []ModuleImport `json:"modules"`
}

// ModuleImport is one module within a course import.
type ModuleImport struct {
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	TheoryText  string      `json:"theory_text"`
	DurationMin int         `json:"duration_min"`
	XPReward    int         `json:"xp_reward"`
	LockRule    string      `json:"lock_rule"`
	QNAPairs    []QNAImport `json:"qna_pairs"`
	MCQs        []MCQImport `json:"mcqs"`
}

type QNAImport struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type MCQImport struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectChoice string   `json:"correct_choice"`
	Explanation   string   `json:"explanation"`
}

// ImportCourse replaces the stored content for every module in the payload.
// Module ids derive from the course id and a slug of the title, so
// re-importing the same payload is idempotent. Each MCQ's XP value is fixed
// here, at import time.
func (s *ContentService) ImportCourse(payload *CourseImport) (int, error) {
	if payload.CourseID == "" {
		return 0, models.InvalidInput("course_id required")
	}
	if len(payload.Modules) == 0 {
		return 0, models.InvalidInput("at least one module required")
	}

	imported := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i, m := range payload.Modules {
			if m.Title == "" {
				return models.InvalidInput("module %d missing title", i)
			}
			moduleID := payload.CourseID + "_" + slug.Make(m.Title)

			// Replace: content rows are not user data, wipe and rewrite.
			if err := tx.Where("module_id = ?", moduleID).Delete(&models.ModuleQNA{}).Error; err != nil {
				return models.Internal(err, "failed to clear qna for %s", moduleID)
			}
			if err := tx.Where("module_id = ?", moduleID).Delete(&models.ModuleMCQ{}).Error; err != nil {
				return models.Internal(err, "failed to clear mcqs for %s", moduleID)
			}

			content := models.ModuleContent{
				ModuleID:    moduleID,
				CourseID:    payload.CourseID,
				Title:       m.Title,
				Summary:     m.Summary,
				TheoryText:  m.TheoryText,
				DurationMin: m.DurationMin,
				XPReward:    m.XPReward,
				Order:       i,
				LockRule:    m.LockRule,
			}
			if err := tx.Save(&content).Error; err != nil {
				return models.Internal(err, "failed to save module %s", moduleID)
			}

			for j, q := range m.QNAPairs {
				qna := models.ModuleQNA{
					ID:       uuid.NewString(),
					ModuleID: moduleID,
					Question: q.Question,
					Answer:   q.Answer,
					Order:    j,
				}
				if err := tx.Create(&qna).Error; err != nil {
					return models.Internal(err, "failed to save qna for %s", moduleID)
				}
			}

			xpValue := MCQXPValue(m.XPReward, len(m.MCQs))
			for j, q := range m.MCQs {
				if len(q.Choices) < 2 || q.CorrectChoice == "" {
					return models.InvalidInput("module %s mcq %d malformed", moduleID, j)
				}
				mcq := models.ModuleMCQ{
					ID:            uuid.NewString(),
					ModuleID:      moduleID,
					MCQID:         fmt.Sprintf("mcq-%d", j+1),
					Question:      q.Question,
					Choices:       q.Choices,
					CorrectChoice: q.CorrectChoice,
					Explanation:   q.Explanation,
					Order:         j,
					XPValue:       xpValue,
				}
				if err := tx.Create(&mcq).Error; err != nil {
					return models.Internal(err, "failed to save mcq for %s", moduleID)
				}
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Printf("Course import: %s, %d modules", payload.CourseID, imported)
	return imported, nil
}

// ModuleView is a module joined with the caller's progress and lock state.
type ModuleView struct {
	models.ModuleContent
	Status          string  `json:"status"`
	ProgressPercent float64 `json:"progress_percent"`
	Locked          bool    `json:"locked"`
}

// CourseView groups a course's modules for listing.
type CourseView struct {
	CourseID string       `json:"course_id"`
	Modules  []ModuleView `json:"modules"`
}

// ListCourses returns every course's modules with the user's progress
// merged in. Under the sequential lock rule a module is locked until the
// previous one (by order) is completed; the first module is always open.
func (s *ContentService) ListCourses(externalUserID string) ([]CourseView, error) {
	var modules []models.ModuleContent
	if err := s.DB.Order("course_id, module_order").Find(&modules).Error; err != nil {
		return nil, models.Internal(err, "failed to list modules")
	}

	var progress []models.ModuleProgress
	if err := s.DB.Where("external_user_id = ?", externalUserID).Find(&progress).Error; err != nil {
		return nil, models.Internal(err, "failed to load progress")
	}
	byModule := map[string]models.ModuleProgress{}
	for _, p := range progress {
		byModule[p.ModuleID] = p
	}

	grouped := map[string][]ModuleView{}
	var courseOrder []string
	prevCompleted := map[string]bool{} // course -> previous module completed

	for _, m := range modules {
		if _, seen := grouped[m.CourseID]; !seen {
			courseOrder = append(courseOrder, m.CourseID)
			prevCompleted[m.CourseID] = true // first module is never locked
		}

		v := ModuleView{ModuleContent: m, Status: models.ProgressNotStarted}
		if p, ok := byModule[m.ModuleID]; ok {
			v.Status = p.Status
			v.ProgressPercent = p.ProgressPercent
		}
		if m.LockRule == "sequential" && !prevCompleted[m.CourseID] {
			v.Locked = true
		}
		prevCompleted[m.CourseID] = v.Status == models.ProgressCompleted

		grouped[m.CourseID] = append(grouped[m.CourseID], v)
	}

	sort.Strings(courseOrder)
	out := make([]CourseView, 0, len(courseOrder))
	for _, cid := range courseOrder {
		out = append(out, CourseView{CourseID: cid, Modules: grouped[cid]})
	}
	return out, nil
}

// GetModule returns one module with its Q&A pairs and MCQs preloaded.
func (s *ContentService) GetModule(moduleID string) (*models.ModuleContent, error) {
	var content models.ModuleContent
	err := s.DB.Preload("QNAPairs", func(db *gorm.DB) *gorm.DB { return db.Order("qna_order") }).
		Preload("MCQs", func(db *gorm.DB) *gorm.DB { return db.Order("mcq_order") }).
		Where("module_id = ?", moduleID).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFound("module %s not found", moduleID)
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load module")
	}
	return &content, nil
}

func (s *ContentService) progressRow(tx *gorm.DB, externalUserID string, content *models.ModuleContent) (*models.ModuleProgress, error) {
	var p models.ModuleProgress
	err := tx.Where("external_user_id = ? AND module_id = ?", externalUserID, content.ModuleID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.ModuleProgress{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
			CourseID:       content.CourseID,
			ModuleID:       content.ModuleID,
			Status:         models.ProgressNotStarted,
		}
		if err := tx.Create(&p).Error; err != nil {
			return nil, models.Internal(err, "failed to create progress")
		}
		return &p, nil
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load progress")
	}
	return &p, nil
}

// StartModule marks a module in progress. Completed modules stay completed.
func (s *ContentService) StartModule(externalUserID, moduleID string) (*models.ModuleProgress, error) {
	content, err := s.GetModule(moduleID)
	if err != nil {
		return nil, err
	}

	var out *models.ModuleProgress
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.progressRow(forUpdate(tx), externalUserID, content)
		if err != nil {
			return err
		}
		if p.Status != models.ProgressCompleted {
			if p.StartedAt == nil {
				now := time.Now()
				p.StartedAt = &now
			}
			p.Status = models.ProgressInProgress
			if err := tx.Save(p).Error; err != nil {
				return models.Internal(err, "failed to save progress")
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteModule marks a module completed and pays the module XP reward at
// most once, gated on the progress row's xp_awarded field. Completing an
// already-completed module is a no-op that reports the recorded award.
func (s *ContentService) CompleteModule(externalUserID, moduleID string) (awardedXP int, err error) {
	content, err := s.GetModule(moduleID)
	if err != nil {
		return 0, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.progressRow(forUpdate(tx), externalUserID, content)
		if err != nil {
			return err
		}

		if p.XPAwarded == 0 && content.XPReward > 0 {
			if _, err := s.Profiles.ApplyXP(tx, externalUserID, content.XPReward, "module_"+content.ModuleID); err != nil {
				return err
			}
			p.XPAwarded = content.XPReward
		}
		awardedXP = p.XPAwarded

		if p.Status != models.ProgressCompleted {
			now := time.Now()
			p.Status = models.ProgressCompleted
			p.ProgressPercent = 100
			p.CompletedAt = &now
			if p.StartedAt == nil {
				p.StartedAt = &now
			}
		}
		if err := tx.Save(p).Error; err != nil {
			return models.Internal(err, "failed to save progress")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return awardedXP, nil
}

// ScenarioImport is the admin import payload for the scenario bank.
type ScenarioImport struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	StartingBalance float64        `json:"starting_balance"`
	Options         []OptionImport `json:"options"`
}

// OptionImport is one decision option within a scenario import.
type OptionImport struct {
	Text             string  `json:"text"`
	DecisionType     string  `json:"decision_type"`
	BalanceImpact    float64 `json:"balance_impact"`
	ConfidenceDelta  int     `json:"confidence_delta"`
	RiskScoreDelta   int     `json:"risk_score_delta"`
	FutureGrowthRate float64 `json:"future_growth_rate"`
	Score            int     `json:"score"`
	WhyItMatters     string  `json:"why_it_matters"`
	MentorFeedback   string  `json:"mentor_feedback"`
}

// ImportScenarios creates scenarios with their decision options. Option
// scores are clamped into the 0-20 band the reward engine classifies over.
func (s *ContentService) ImportScenarios(payloads []ScenarioImport) (int, error) {
	if len(payloads) == 0 {
		return 0, models.InvalidInput("at least one scenario required")
	}

	created := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i, p := range payloads {
			if p.Title == "" || len(p.Options) < 2 {
				return models.InvalidInput("scenario %d needs a title and at least two options", i)
			}
			balance := p.StartingBalance
			if balance <= 0 {
				balance = 50000
			}
			scenario := models.Scenario{
				ID:              uuid.NewString(),
				Title:           p.Title,
				Description:     p.Description,
				StartingBalance: balance,
			}
			if err := tx.Create(&scenario).Error; err != nil {
				return models.Internal(err, "failed to create scenario")
			}
			for _, o := range p.Options {
				score := o.Score
				if score < 0 {
					score = 0
				}
				if score > models.MaxScorePerQuestion {
					score = models.MaxScorePerQuestion
				}
				opt := models.DecisionOption{
					ID:               uuid.NewString(),
					ScenarioID:       scenario.ID,
					Text:             o.Text,
					DecisionType:     o.DecisionType,
					BalanceImpact:    o.BalanceImpact,
					ConfidenceDelta:  o.ConfidenceDelta,
					RiskScoreDelta:   o.RiskScoreDelta,
					FutureGrowthRate: o.FutureGrowthRate,
					Score:            score,
					WhyItMatters:     o.WhyItMatters,
					MentorFeedback:   o.MentorFeedback,
				}
				if err := tx.Create(&opt).Error; err != nil {
					return models.Internal(err, "failed to create option")
				}
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Printf("Scenario import: %d scenarios", created)
	return created, nil
}

// ListScenarios returns the scenario bank with options preloaded.
func (s *ContentService) ListScenarios() ([]models.Scenario, error) {
	var scenarios []models.Scenario
	if err := s.DB.Preload("Options").Order("created_at").Find(&scenarios).Error; err != nil {
		return nil, models.Internal(err, "failed to list scenarios")
	}
	return scenarios, nil
}
