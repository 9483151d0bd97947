package domain

import (
	"context"
	"fmt"
	"time"

	"go-hiring-workflow/pkg/apperror"

	"github.com/google/uuid"
)

// SessionStage tracks a candidate's progress through the ordered assessment
// stages. It only ever moves technical -> hr -> completed.
type SessionStage string

const (
	SessionStageTechnical SessionStage = "technical"
	SessionStageHR        SessionStage = "hr"
	SessionStageCompleted SessionStage = "completed"
)

// StageResult records one scored attempt. A stage with a result can never be
// re-entered.
type StageResult struct {
	ScoreResult
	SubmittedAt time.Time `json:"submitted_at"`
}

// AssessmentSession is the per-application record driving a candidate through
// the technical quiz and then the HR quiz, each single-shot and time-limited.
type AssessmentSession struct {
	ApplicationID uuid.UUID    `json:"application_id"`
	JobID         int64        `json:"job_id"`
	CandidateID   string       `json:"candidate_id"`
	Stage         SessionStage `json:"stage"`

	TechnicalResult *StageResult `json:"technical_result,omitempty"`
	HRResult        *StageResult `json:"hr_result,omitempty"`

	TechnicalStartedAt *time.Time `json:"technical_started_at,omitempty"`
	TechnicalExpiresAt *time.Time `json:"technical_expires_at,omitempty"`
	HRStartedAt        *time.Time `json:"hr_started_at,omitempty"`
	HRExpiresAt        *time.Time `json:"hr_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewAssessmentSession opens a session at the technical stage.
func NewAssessmentSession(jobID int64, candidateID string) *AssessmentSession {
	return &AssessmentSession{
		ApplicationID: uuid.New(),
		JobID:         jobID,
		CandidateID:   candidateID,
		Stage:         SessionStageTechnical,
		CreatedAt:     time.Now(),
	}
}

func (s *AssessmentSession) resultFor(stage QuizStage) *StageResult {
	if stage == StageTechnical {
		return s.TechnicalResult
	}
	return s.HRResult
}

func (s *AssessmentSession) startedAtFor(stage QuizStage) *time.Time {
	if stage == StageTechnical {
		return s.TechnicalStartedAt
	}
	return s.HRStartedAt
}

func (s *AssessmentSession) expiresAtFor(stage QuizStage) *time.Time {
	if stage == StageTechnical {
		return s.TechnicalExpiresAt
	}
	return s.HRExpiresAt
}

// StartStage opens the clock on a stage. The HR stage cannot start before a
// technical result exists, and a stage is strictly single-shot: once started
// or scored it cannot be started again.
func (s *AssessmentSession) StartStage(stage QuizStage, quiz *Quiz, now time.Time) error {
	if !stage.IsValid() {
		return apperror.Validation(fmt.Sprintf("unknown assessment stage %q", stage))
	}
	if stage == StageHR && s.TechnicalResult == nil {
		return apperror.OutOfOrder("HR stage cannot start before the technical stage is completed")
	}
	if s.resultFor(stage) != nil {
		return apperror.AlreadyAttempted(fmt.Sprintf("stage %q already has a result", stage))
	}
	if s.startedAtFor(stage) != nil {
		return apperror.AlreadyAttempted(fmt.Sprintf("stage %q has already been started", stage))
	}
	if quiz == nil {
		return apperror.Validation(fmt.Sprintf("no quiz available for stage %q", stage))
	}
	if quiz.OwningStage != stage {
		return apperror.Validation(fmt.Sprintf("quiz belongs to stage %q, not %q", quiz.OwningStage, stage))
	}

	expires := now.Add(time.Duration(quiz.TimeLimitMinutes) * time.Minute)
	if stage == StageTechnical {
		s.TechnicalStartedAt = &now
		s.TechnicalExpiresAt = &expires
	} else {
		s.HRStartedAt = &now
		s.HRExpiresAt = &expires
	}
	return nil
}

// SubmitStage scores the answers for a started stage and advances the
// session. A submission after the stage deadline is rejected with an expired
// error rather than scored as zero, so "ran out of time" stays
// distinguishable from "failed honestly" in reporting. Nothing is mutated on
// failure.
func (s *AssessmentSession) SubmitStage(stage QuizStage, quiz *Quiz, answers map[string]int, submittedAt time.Time) (*StageResult, error) {
	if !stage.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown assessment stage %q", stage))
	}
	if stage == StageHR && s.TechnicalResult == nil {
		return nil, apperror.OutOfOrder("HR stage cannot be submitted before the technical stage is completed")
	}
	if s.resultFor(stage) != nil {
		return nil, apperror.AlreadyAttempted(fmt.Sprintf("stage %q already has a result", stage))
	}
	started := s.startedAtFor(stage)
	if started == nil {
		return nil, apperror.OutOfOrder(fmt.Sprintf("stage %q has not been started", stage))
	}
	expires := s.expiresAtFor(stage)
	if submittedAt.After(*expires) {
		return nil, apperror.Expired(fmt.Sprintf("stage %q submission deadline has passed", stage))
	}
	if quiz == nil || quiz.OwningStage != stage {
		return nil, apperror.Validation(fmt.Sprintf("no quiz available for stage %q", stage))
	}

	result := &StageResult{
		ScoreResult: quiz.Score(answers),
		SubmittedAt: submittedAt,
	}
	if stage == StageTechnical {
		s.TechnicalResult = result
		s.Stage = SessionStageHR
	} else {
		s.HRResult = result
		s.Stage = SessionStageCompleted
	}
	return result, nil
}

// AssessmentReport is the combined outcome of both stages. Both stages must
// pass independently; a strong technical score never compensates for a
// failed behavioral stage or vice versa.
type AssessmentReport struct {
	ApplicationID    uuid.UUID `json:"application_id"`
	JobID            int64     `json:"job_id"`
	TechnicalPercent int       `json:"technical_percent"`
	HRPercent        int       `json:"hr_percent"`
	OverallPassed    bool      `json:"overall_passed"`
	Recommendation   string    `json:"recommendation"`
}

// AggregateResult builds the combined report. It is only available once both
// stages carry results, and calling it repeatedly yields identical output.
func (s *AssessmentSession) AggregateResult() (*AssessmentReport, error) {
	if s.TechnicalResult == nil || s.HRResult == nil {
		return nil, apperror.OutOfOrder("assessment is not completed; both stage results are required")
	}

	overall := s.TechnicalResult.Passed && s.HRResult.Passed
	var recommendation string
	switch {
	case overall:
		recommendation = "Proceed to hiring decision: candidate passed both assessment stages"
	case !s.TechnicalResult.Passed && !s.HRResult.Passed:
		recommendation = "Do not proceed: candidate failed both assessment stages"
	case !s.TechnicalResult.Passed:
		recommendation = "Do not proceed: candidate did not meet the technical threshold"
	default:
		recommendation = "Do not proceed: candidate did not meet the behavioral threshold"
	}

	return &AssessmentReport{
		ApplicationID:    s.ApplicationID,
		JobID:            s.JobID,
		TechnicalPercent: s.TechnicalResult.DisplayPercent(),
		HRPercent:        s.HRResult.DisplayPercent(),
		OverallPassed:    overall,
		Recommendation:   recommendation,
	}, nil
}

// SessionFilter narrows session projections for the dashboards.
type SessionFilter struct {
	JobID       *int64       `json:"job_id,omitempty"`
	CandidateID string       `json:"candidate_id,omitempty"`
	Stage       *SessionStage `json:"stage,omitempty"`
}

type SessionRepository interface {
	Create(ctx context.Context, session *AssessmentSession) error
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*AssessmentSession, error)
	Save(ctx context.Context, session *AssessmentSession) error
	Fetch(ctx context.Context, filter SessionFilter, limit, offset int) ([]AssessmentSession, int64, error)
}

type AssessmentUsecase interface {
	// ApplyToPosting registers a candidate against an active published
	// posting and opens their assessment session.
	ApplyToPosting(ctx context.Context, candidateID string, jobID int64) (*AssessmentSession, error)
	// StartStage opens the stage clock and returns the session together with
	// the candidate-facing quiz (correct answers redacted).
	StartStage(ctx context.Context, candidateID string, applicationID uuid.UUID, stage QuizStage) (*AssessmentSession, *Quiz, error)
	SubmitStage(ctx context.Context, candidateID string, applicationID uuid.UUID, stage QuizStage, answers map[string]int) (*StageResult, error)
	// AggregateResult is reviewer-facing (HR and executive).
	AggregateResult(ctx context.Context, role Role, applicationID uuid.UUID) (*AssessmentReport, error)
	GetMySession(ctx context.Context, candidateID string, applicationID uuid.UUID) (*AssessmentSession, error)
	GetMyApplication(ctx context.Context, candidateID string, applicationID uuid.UUID) (*Application, error)
	GetMyApplications(ctx context.Context, candidateID string) ([]Application, error)
}
