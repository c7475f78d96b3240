package services

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"wealthplay-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizRunsPerSession is how many scenarios a fresh run draws (all of them
// when fewer exist).
const QuizRunsPerSession = 5

// QuizRunService drives a scenario quiz session:
// Created -> InProgress -> Completed(unscored) -> Completed(scored).
// Submissions score the current question; advancing the cursor is a
// separate explicit action; the result read performs the one-time scoring.
type QuizRunService struct {
	DB       *gorm.DB
	Profiles *ProfileService
}

func NewQuizRunService(db *gorm.DB, profiles *ProfileService) *QuizRunService {
	return &QuizRunService{DB: db, Profiles: profiles}
}

// QuizQuestion is the current question payload for a run.
type QuizQuestion struct {
	Completed      bool                    `json:"completed"`
	NoScenarios    bool                    `json:"no_scenarios,omitempty"`
	RunID          string                  `json:"run_id,omitempty"`
	Scenario       *models.Scenario        `json:"scenario,omitempty"`
	Choices        []models.DecisionOption `json:"choices,omitempty"`
	QuestionNumber int                     `json:"question_number,omitempty"`
	TotalQuestions int                     `json:"total_questions,omitempty"`
	TotalScore     int                     `json:"total_score"`
}

// SubmitOutcome reports one scored submission.
type SubmitOutcome struct {
	TotalScore   int  `json:"total_score"`
	ScoreAdded   int  `json:"score_added"`
	IsCorrect    bool `json:"is_correct"`
	HasMore      bool `json:"has_more"`
	CurrentIndex int  `json:"current_question_index"`
}

// RunResult is the (idempotent) result payload.
type RunResult struct {
	RunID          string `json:"run_id"`
	TotalScore     int    `json:"total_score"`
	MaxScore       int    `json:"max_score"`
	Percentage     int    `json:"percentage"`
	Badge          string `json:"badge"`
	BadgeColor     string `json:"badge_color"`
	TotalQuestions int    `json:"total_questions"`
	XPAwarded      int    `json:"xp_awarded"`
	Streak         int    `json:"streak"`
}

// Start creates a run over a random scenario subset.
func (s *QuizRunService) Start(externalUserID string) (*models.QuizRun, error) {
	var ids []string
	if err := s.DB.Model(&models.Scenario{}).Pluck("id", &ids).Error; err != nil {
		return nil, models.Internal(err, "failed to list scenarios")
	}
	if len(ids) == 0 {
		return nil, models.NotFound("no scenarios available")
	}

	selected := ids
	if len(ids) > QuizRunsPerSession {
		selected = make([]string, 0, QuizRunsPerSession)
		for _, i := range rand.Perm(len(ids))[:QuizRunsPerSession] {
			selected = append(selected, ids[i])
		}
	}

	run := &models.QuizRun{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		ScenarioIDs:    strings.Join(selected, ","),
	}
	if err := s.DB.Create(run).Error; err != nil {
		return nil, models.Internal(err, "failed to create quiz run")
	}
	return run, nil
}

func (s *QuizRunService) getRun(tx *gorm.DB, externalUserID, runID string) (*models.QuizRun, error) {
	var run models.QuizRun
	err := tx.Where("id = ? AND external_user_id = ?", runID, externalUserID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFound("quiz run %s not found", runID)
	}
	if err != nil {
		return nil, models.Internal(err, "failed to load quiz run")
	}
	return &run, nil
}

// Question returns the current question, auto-completing runs whose cursor
// ran past the sequence or whose sequence is empty.
func (s *QuizRunService) Question(externalUserID, runID string) (*QuizQuestion, error) {
	var view *QuizQuestion
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		run, err := s.getRun(forUpdate(tx), externalUserID, runID)
		if err != nil {
			return err
		}

		if run.IsCompleted {
			view = &QuizQuestion{Completed: true, RunID: run.ID, TotalScore: run.TotalScore}
			return nil
		}

		sequence := run.ScenarioList()
		if len(sequence) == 0 {
			run.IsCompleted = true
			if err := tx.Save(run).Error; err != nil {
				return models.Internal(err, "failed to complete empty run")
			}
			view = &QuizQuestion{Completed: true, NoScenarios: true, RunID: run.ID}
			return nil
		}
		if run.CurrentIndex >= len(sequence) {
			run.IsCompleted = true
			if err := tx.Save(run).Error; err != nil {
				return models.Internal(err, "failed to complete run")
			}
			view = &QuizQuestion{Completed: true, RunID: run.ID, TotalScore: run.TotalScore}
			return nil
		}

		var scenario models.Scenario
		err = tx.Preload("Options").Where("id = ?", sequence[run.CurrentIndex]).First(&scenario).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFound("scenario %s not found", sequence[run.CurrentIndex])
		}
		if err != nil {
			return models.Internal(err, "failed to load scenario")
		}

		view = &QuizQuestion{
			RunID:          run.ID,
			Scenario:       &scenario,
			Choices:        scenario.Options,
			QuestionNumber: run.CurrentIndex + 1,
			TotalQuestions: len(sequence),
			TotalScore:     run.TotalScore,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Submit scores the current question and upserts the per-(user, scenario,
// run) attempt. Re-submission applies the net change against the attempt's
// prior contribution so the run total never double counts. Submitting to a
// completed run is a no-op returning current state. The cursor does not
// advance here.
func (s *QuizRunService) Submit(externalUserID, runID, optionID string, clientScore *int) (*SubmitOutcome, error) {
	if optionID == "" {
		return nil, models.InvalidInput("option_id required")
	}
	if clientScore != nil && *clientScore < 0 {
		return nil, models.InvalidInput("score must be non-negative")
	}

	var outcome *SubmitOutcome
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		run, err := s.getRun(forUpdate(tx), externalUserID, runID)
		if err != nil {
			return err
		}

		sequence := run.ScenarioList()
		if run.IsCompleted || run.CurrentIndex >= len(sequence) {
			outcome = &SubmitOutcome{
				TotalScore:   run.TotalScore,
				HasMore:      false,
				CurrentIndex: run.CurrentIndex,
			}
			return nil
		}

		scenarioID := sequence[run.CurrentIndex]
		var options []models.DecisionOption
		if err := tx.Where("scenario_id = ?", scenarioID).Find(&options).Error; err != nil {
			return models.Internal(err, "failed to load options")
		}

		var selected *models.DecisionOption
		for i := range options {
			if options[i].ID == optionID {
				selected = &options[i]
				break
			}
		}
		if selected == nil {
			var stray models.DecisionOption
			err := tx.Where("id = ?", optionID).First(&stray).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NotFound("option %s not found", optionID)
			}
			if err != nil {
				return models.Internal(err, "failed to load option")
			}
			return models.InvalidInput("option %s does not belong to scenario %s", optionID, scenarioID)
		}

		rawScore := selected.Score
		if clientScore != nil {
			rawScore = *clientScore
		}
		earned, isCorrect := ClassifyScenarioChoice(options, rawScore)

		var attempt models.ScenarioAttempt
		previous := 0
		err = tx.Where("external_user_id = ? AND scenario_id = ? AND quiz_run_id = ?",
			externalUserID, scenarioID, run.ID).First(&attempt).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			attempt = models.ScenarioAttempt{
				ID:             uuid.NewString(),
				ExternalUserID: externalUserID,
				ScenarioID:     scenarioID,
				QuizRunID:      run.ID,
			}
		} else if err != nil {
			return models.Internal(err, "failed to load attempt")
		} else {
			previous = attempt.ScoreEarned
		}

		attempt.ChosenOptionID = selected.ID
		attempt.ScoreEarned = earned
		attempt.IsCorrect = isCorrect
		if err := tx.Save(&attempt).Error; err != nil {
			return models.Internal(err, "failed to save attempt")
		}

		run.TotalScore += earned - previous
		if err := tx.Save(run).Error; err != nil {
			return models.Internal(err, "failed to save run")
		}

		outcome = &SubmitOutcome{
			TotalScore:   run.TotalScore,
			ScoreAdded:   earned,
			IsCorrect:    isCorrect,
			HasMore:      run.CurrentIndex+1 < len(sequence),
			CurrentIndex: run.CurrentIndex,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Advance moves the cursor forward, completing the run past the end.
func (s *QuizRunService) Advance(externalUserID, runID string) (completed bool, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		run, err := s.getRun(forUpdate(tx), externalUserID, runID)
		if err != nil {
			return err
		}
		sequence := run.ScenarioList()
		if run.CurrentIndex+1 >= len(sequence) {
			run.IsCompleted = true
			completed = true
		} else {
			run.CurrentIndex++
		}
		if err := tx.Save(run).Error; err != nil {
			return models.Internal(err, "failed to advance run")
		}
		return nil
	})
	return completed, err
}

// Badge tiers by percentage.
func badgeForPercentage(percentage int) (badge, color string, bonusXP int) {
	switch {
	case percentage >= 80:
		return "Wealth Master", "gold", 100
	case percentage >= 50:
		return "Smart Saver", "silver", 50
	case percentage >= 30:
		return "Budding Investor", "bronze", 25
	default:
		return "Financial Novice", "gray", 10
	}
}

// Result returns the run's result, performing the one-time scoring pass on
// the first read: attempt scores convert to XP (capped at 20 each), a
// percentage bonus lands on top, the profile and leaderboard update, and
// the run's xp_awarded gate closes. Repeat reads derive the identical
// payload from persisted attempts and mutate nothing.
func (s *QuizRunService) Result(externalUserID, runID string) (*RunResult, error) {
	var result *RunResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		run, err := s.getRun(forUpdate(tx), externalUserID, runID)
		if err != nil {
			return err
		}

		sequence := run.ScenarioList()
		maxScore := len(sequence) * models.MaxScorePerQuestion
		percentage := 0
		if maxScore > 0 {
			percentage = int(float64(run.TotalScore) / float64(maxScore) * 100)
		}
		badge, color, bonusXP := badgeForPercentage(percentage)

		if !run.XPAwarded {
			if err := s.scoreRun(tx, run, bonusXP); err != nil {
				return err
			}
		}

		// Derived the same way on every read: per-attempt awards are
		// persisted, the bonus is a pure function of the percentage.
		var attemptXP int64
		if err := tx.Model(&models.ScenarioAttempt{}).
			Where("quiz_run_id = ?", run.ID).
			Select("COALESCE(SUM(xp_awarded), 0)").Scan(&attemptXP).Error; err != nil {
			return models.Internal(err, "failed to sum attempt xp")
		}

		streak := 0
		var lb models.ChallengeLeaderboard
		if err := tx.Where("external_user_id = ?", externalUserID).First(&lb).Error; err == nil {
			streak = lb.CurrentStreak
		}

		result = &RunResult{
			RunID:          run.ID,
			TotalScore:     run.TotalScore,
			MaxScore:       maxScore,
			Percentage:     percentage,
			Badge:          badge,
			BadgeColor:     color,
			TotalQuestions: len(sequence),
			XPAwarded:      int(attemptXP) + bonusXP,
			Streak:         streak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scoreRun runs the Completed(unscored) -> Completed(scored) transition.
// Caller holds the run's row lock and has verified xp_awarded is false.
func (s *QuizRunService) scoreRun(tx *gorm.DB, run *models.QuizRun, bonusXP int) error {
	var attempts []models.ScenarioAttempt
	if err := tx.Where("quiz_run_id = ? AND external_user_id = ? AND xp_awarded = 0",
		run.ID, run.ExternalUserID).Find(&attempts).Error; err != nil {
		return models.Internal(err, "failed to load run attempts")
	}

	totalXP := 0
	correctCount := 0
	for i := range attempts {
		xp := attempts[i].ScoreEarned
		if xp > models.MaxScorePerQuestion {
			xp = models.MaxScorePerQuestion
		}
		attempts[i].XPAwarded = xp
		if err := tx.Save(&attempts[i]).Error; err != nil {
			return models.Internal(err, "failed to save attempt xp")
		}
		totalXP += xp
		if attempts[i].IsCorrect {
			correctCount++
		}
	}

	if _, err := s.Profiles.ApplyXP(tx, run.ExternalUserID, totalXP+bonusXP, "quiz_run_"+run.ID); err != nil {
		return err
	}

	lb, err := ensureLeaderboardTx(tx, run.ExternalUserID)
	if err != nil {
		return err
	}

	if correctCount > 0 {
		var last models.ScenarioAttempt
		err := tx.Where("external_user_id = ? AND quiz_run_id <> ?", run.ExternalUserID, run.ID).
			Order("attempt_date DESC").First(&last).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			lb.CurrentStreak = 1
		case err != nil:
			return models.Internal(err, "failed to load last attempt")
		case time.Since(last.AttemptDate) <= 24*time.Hour:
			lb.CurrentStreak++
		default:
			lb.CurrentStreak = 1
		}
		if lb.CurrentStreak > lb.BestStreak {
			lb.BestStreak = lb.CurrentStreak
		}
	} else {
		lb.CurrentStreak = 0
	}

	lb.TotalScore += run.TotalScore
	lb.TotalPredictions += len(run.ScenarioList())
	lb.CorrectPredictions += correctCount
	if err := tx.Save(lb).Error; err != nil {
		return models.Internal(err, "failed to save leaderboard entry")
	}

	run.XPAwarded = true
	run.IsCompleted = true
	if err := tx.Save(run).Error; err != nil {
		return models.Internal(err, "failed to close run reward gate")
	}
	return nil
}
