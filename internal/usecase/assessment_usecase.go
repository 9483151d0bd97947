package usecase

import (
	"context"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"

	"github.com/google/uuid"
)

type assessmentUsecase struct {
	sessionRepo     domain.SessionRepository
	applicationRepo domain.ApplicationRepository
	postingRepo     domain.PostingRepository
	notifier        domain.Notifier
}

func NewAssessmentUsecase(
	sessionRepo domain.SessionRepository,
	applicationRepo domain.ApplicationRepository,
	postingRepo domain.PostingRepository,
	notifier domain.Notifier,
) domain.AssessmentUsecase {
	return &assessmentUsecase{
		sessionRepo:     sessionRepo,
		applicationRepo: applicationRepo,
		postingRepo:     postingRepo,
		notifier:        notifier,
	}
}

// ApplyToPosting registers an application against an active published posting
// and opens the candidate's assessment session at the technical stage.
func (uc *assessmentUsecase) ApplyToPosting(ctx context.Context, candidateID string, jobID int64) (*domain.AssessmentSession, error) {
	if candidateID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	posting, err := uc.postingRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}
	if posting.ExpiryDue(time.Now()) || !posting.IsPubliclyVisible() {
		return nil, apperror.BadRequest("Cannot apply to a posting that is not open for applications")
	}

	exists, err := uc.applicationRepo.CheckExists(ctx, jobID, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.BadRequest("You have already applied to this posting")
	}

	session := domain.NewAssessmentSession(jobID, candidateID)
	app := &domain.Application{
		ID:          session.ApplicationID,
		JobID:       jobID,
		CandidateID: candidateID,
		CreatedAt:   session.CreatedAt,
	}

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}
	return session, nil
}

// StartStage opens the clock for one stage and hands the candidate the quiz
// with correct answers stripped.
func (uc *assessmentUsecase) StartStage(ctx context.Context, candidateID string, applicationID uuid.UUID, stage domain.QuizStage) (*domain.AssessmentSession, *domain.Quiz, error) {
	session, err := uc.ownedSession(ctx, candidateID, applicationID)
	if err != nil {
		return nil, nil, err
	}

	quiz, err := uc.stageQuiz(ctx, session.JobID, stage)
	if err != nil {
		return nil, nil, err
	}

	if err := session.StartStage(stage, quiz, time.Now()); err != nil {
		return nil, nil, err
	}
	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, nil, apperror.Internal(err)
	}

	return session, quiz.Redacted(), nil
}

// SubmitStage scores the stage. When the HR stage completes the session, the
// combined report is dispatched to the notifier fire-and-forget.
func (uc *assessmentUsecase) SubmitStage(ctx context.Context, candidateID string, applicationID uuid.UUID, stage domain.QuizStage, answers map[string]int) (*domain.StageResult, error) {
	session, err := uc.ownedSession(ctx, candidateID, applicationID)
	if err != nil {
		return nil, err
	}

	quiz, err := uc.stageQuiz(ctx, session.JobID, stage)
	if err != nil {
		return nil, err
	}

	result, err := session.SubmitStage(stage, quiz, answers, time.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.sessionRepo.Save(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	if session.Stage == domain.SessionStageCompleted && uc.notifier != nil {
		if report, reportErr := session.AggregateResult(); reportErr == nil {
			snapshot := *session
			go uc.notifier.NotifyAssessmentCompleted(context.Background(), &snapshot, report)
		}
	}

	return result, nil
}

// AggregateResult is reviewer-facing: HR and executives read the combined
// report that feeds the hiring decision.
func (uc *assessmentUsecase) AggregateResult(ctx context.Context, role domain.Role, applicationID uuid.UUID) (*domain.AssessmentReport, error) {
	if role != domain.RoleHR && role != domain.RoleExecutive {
		return nil, apperror.Forbidden("Only HR and executives can view assessment reports")
	}

	session, err := uc.sessionRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, apperror.NotFound("Assessment session not found")
	}
	return session.AggregateResult()
}

func (uc *assessmentUsecase) GetMySession(ctx context.Context, candidateID string, applicationID uuid.UUID) (*domain.AssessmentSession, error) {
	return uc.ownedSession(ctx, candidateID, applicationID)
}

func (uc *assessmentUsecase) GetMyApplication(ctx context.Context, candidateID string, applicationID uuid.UUID) (*domain.Application, error) {
	if candidateID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, apperror.NotFound("Application not found")
	}
	if app.CandidateID != candidateID {
		return nil, apperror.Forbidden("You can only access your own application")
	}
	return app, nil
}

func (uc *assessmentUsecase) GetMyApplications(ctx context.Context, candidateID string) ([]domain.Application, error) {
	if candidateID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	apps, err := uc.applicationRepo.GetByCandidate(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

func (uc *assessmentUsecase) ownedSession(ctx context.Context, candidateID string, applicationID uuid.UUID) (*domain.AssessmentSession, error) {
	if candidateID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	session, err := uc.sessionRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, apperror.NotFound("Assessment session not found")
	}
	if session.CandidateID != candidateID {
		return nil, apperror.Forbidden("You can only access your own assessment session")
	}
	return session, nil
}

func (uc *assessmentUsecase) stageQuiz(ctx context.Context, jobID int64, stage domain.QuizStage) (*domain.Quiz, error) {
	posting, err := uc.postingRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}

	var quiz *domain.Quiz
	switch stage {
	case domain.StageTechnical:
		quiz = posting.TechnicalAssessment
	case domain.StageHR:
		quiz = posting.HRAssessment
	default:
		return nil, apperror.Validation("stage must be technical or hr")
	}
	if quiz == nil {
		return nil, apperror.NotFound("No assessment is configured for this stage")
	}
	return quiz, nil
}
