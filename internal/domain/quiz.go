package domain

import (
	"fmt"
	"math"
	"time"

	"go-hiring-workflow/pkg/apperror"
)

// QuizStage identifies which assessment stage a quiz belongs to.
type QuizStage string

const (
	StageTechnical QuizStage = "technical"
	StageHR        QuizStage = "hr"
)

func (s QuizStage) IsValid() bool {
	return s == StageTechnical || s == StageHR
}

// QuestionCategory is reporting metadata for HR quiz questions. It has no
// effect on scoring.
type QuestionCategory string

const (
	CategoryBehavioral    QuestionCategory = "behavioral"
	CategoryCulturalFit   QuestionCategory = "cultural_fit"
	CategoryCommunication QuestionCategory = "communication"
	CategoryTeamwork      QuestionCategory = "teamwork"
	CategoryLeadership    QuestionCategory = "leadership"
	CategoryAdaptability  QuestionCategory = "adaptability"
)

func ValidHRCategories() []QuestionCategory {
	return []QuestionCategory{
		CategoryBehavioral, CategoryCulturalFit, CategoryCommunication,
		CategoryTeamwork, CategoryLeadership, CategoryAdaptability,
	}
}

func (c QuestionCategory) IsValidHRCategory() bool {
	for _, valid := range ValidHRCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// OptionsPerQuestion is fixed: every question offers exactly four options.
const OptionsPerQuestion = 4

type Question struct {
	ID                 string           `json:"id"`
	Prompt             string           `json:"prompt"`
	Options            []string         `json:"options"`
	CorrectOptionIndex int              `json:"correct_option_index"`
	Points             int              `json:"points"`
	Category           QuestionCategory `json:"category,omitempty"`
}

// Quiz is an ordered set of single-answer questions with a time limit and a
// pass threshold. Total points are always derived from the questions, never
// stored, so they cannot drift after a mutation.
type Quiz struct {
	ID                  string     `json:"id"`
	OwningStage         QuizStage  `json:"owning_stage"`
	Questions           []Question `json:"questions"`
	TimeLimitMinutes    int        `json:"time_limit_minutes"`
	PassingScorePercent int        `json:"passing_score_percent"`
	CreatedBy           string     `json:"created_by,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ScoreResult is the outcome of scoring one quiz attempt.
type ScoreResult struct {
	TotalPoints int     `json:"total_points"`
	MaxPoints   int     `json:"max_points"`
	Percent     float64 `json:"percent"`
	Passed      bool    `json:"passed"`
}

// DisplayPercent rounds to the nearest whole number for presentation. The
// pass/fail comparison always uses the unrounded Percent.
func (r ScoreResult) DisplayPercent() int {
	return int(math.Round(r.Percent))
}

// NewQuiz validates and constructs a quiz.
func NewQuiz(stage QuizStage, questions []Question, timeLimitMinutes, passingScorePercent int) (*Quiz, error) {
	if !stage.IsValid() {
		return nil, apperror.Validation("owning stage must be technical or hr")
	}
	if len(questions) == 0 {
		return nil, apperror.Validation("quiz must contain at least one question")
	}
	if timeLimitMinutes <= 0 {
		return nil, apperror.Validation("time limit must be positive")
	}
	if passingScorePercent < 0 || passingScorePercent > 100 {
		return nil, apperror.Validation("passing score must be between 0 and 100")
	}

	q := &Quiz{
		OwningStage:         stage,
		Questions:           questions,
		TimeLimitMinutes:    timeLimitMinutes,
		PassingScorePercent: passingScorePercent,
		CreatedAt:           time.Now(),
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate re-checks question shape and the derived total. It runs on every
// mutation path so a quiz with zero total points can never reach scoring.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return apperror.Validation("quiz must contain at least one question")
	}
	seen := make(map[string]bool, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			// Answers are keyed by question ID; a question without one can
			// never be answered individually.
			return apperror.Validation(fmt.Sprintf("question %d: id is required", i+1))
		}
		if seen[question.ID] {
			return apperror.Validation(fmt.Sprintf("question %d: duplicate question id %q", i+1, question.ID))
		}
		seen[question.ID] = true
		if question.Prompt == "" {
			return apperror.Validation(fmt.Sprintf("question %d: prompt is required", i+1))
		}
		if len(question.Options) != OptionsPerQuestion {
			return apperror.Validation(fmt.Sprintf("question %d: exactly %d options are required", i+1, OptionsPerQuestion))
		}
		for _, opt := range question.Options {
			if opt == "" {
				return apperror.Validation(fmt.Sprintf("question %d: options must be non-empty", i+1))
			}
		}
		if question.CorrectOptionIndex < 0 || question.CorrectOptionIndex >= OptionsPerQuestion {
			return apperror.Validation(fmt.Sprintf("question %d: correct option index out of range", i+1))
		}
		if question.Points <= 0 {
			return apperror.Validation(fmt.Sprintf("question %d: points must be positive", i+1))
		}
		if q.OwningStage == StageHR && !question.Category.IsValidHRCategory() {
			return apperror.Validation(fmt.Sprintf("question %d: invalid HR question category %q", i+1, question.Category))
		}
	}
	if q.MaxPoints() <= 0 {
		return apperror.Validation("quiz total points must be positive")
	}
	return nil
}

// MaxPoints is the derived sum of question points.
func (q *Quiz) MaxPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Score awards each question's points when the selected option matches the
// correct one. Unanswered questions score zero.
func (q *Quiz) Score(answers map[string]int) ScoreResult {
	total := 0
	for _, question := range q.Questions {
		selected, answered := answers[question.ID]
		if answered && selected == question.CorrectOptionIndex {
			total += question.Points
		}
	}
	max := q.MaxPoints()
	percent := float64(total) / float64(max) * 100
	return ScoreResult{
		TotalPoints: total,
		MaxPoints:   max,
		Percent:     percent,
		Passed:      percent >= float64(q.PassingScorePercent),
	}
}

// Redacted returns a candidate-facing copy with the correct answers removed.
func (q *Quiz) Redacted() *Quiz {
	redacted := *q
	redacted.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectOptionIndex = -1
		redacted.Questions[i] = question
	}
	return &redacted
}
