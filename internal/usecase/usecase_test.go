package usecase_test

import (
	"context"
	"testing"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/internal/usecase"
	"go-hiring-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories

type MockPostingRepo struct {
	mock.Mock
}

func (m *MockPostingRepo) Create(ctx context.Context, posting *domain.JobPosting) error {
	return m.Called(ctx, posting).Error(0)
}
func (m *MockPostingRepo) GetByID(ctx context.Context, id int64) (*domain.JobPosting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPosting), args.Error(1)
}
func (m *MockPostingRepo) Save(ctx context.Context, posting *domain.JobPosting) error {
	return m.Called(ctx, posting).Error(0)
}
func (m *MockPostingRepo) Fetch(ctx context.Context, filter domain.PostingFilter, limit, offset int) ([]domain.JobPosting, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.JobPosting), args.Get(1).(int64), args.Error(2)
}
func (m *MockPostingRepo) FetchExpiryDue(ctx context.Context, now time.Time, limit int) ([]domain.JobPosting, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobPosting), args.Error(1)
}

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, session *domain.AssessmentSession) error {
	return m.Called(ctx, session).Error(0)
}
func (m *MockSessionRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.AssessmentSession, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssessmentSession), args.Error(1)
}
func (m *MockSessionRepo) Save(ctx context.Context, session *domain.AssessmentSession) error {
	return m.Called(ctx, session).Error(0)
}
func (m *MockSessionRepo) Fetch(ctx context.Context, filter domain.SessionFilter, limit, offset int) ([]domain.AssessmentSession, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AssessmentSession), args.Get(1).(int64), args.Error(2)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) CheckExists(ctx context.Context, jobID int64, candidateID string) (bool, error) {
	args := m.Called(ctx, jobID, candidateID)
	return args.Bool(0), args.Error(1)
}
func (m *MockApplicationRepo) GetByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

type MockBoardCache struct {
	mock.Mock
}

func (m *MockBoardCache) Get(ctx context.Context, page, pageSize int) (*domain.PostingPage, bool) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.PostingPage), args.Bool(1)
}
func (m *MockBoardCache) Set(ctx context.Context, result *domain.PostingPage) {
	m.Called(ctx, result)
}
func (m *MockBoardCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

// Test fixtures

func fourOptions() []string {
	return []string{"A", "B", "C", "D"}
}

func testTechQuiz(t *testing.T) *domain.Quiz {
	t.Helper()
	quiz, err := domain.NewQuiz(domain.StageTechnical, []domain.Question{
		{ID: "q1", Prompt: "What is a channel?", Options: fourOptions(), CorrectOptionIndex: 0, Points: 5},
		{ID: "q2", Prompt: "What is a slice?", Options: fourOptions(), CorrectOptionIndex: 1, Points: 5},
	}, 30, 60)
	require.NoError(t, err)
	return quiz
}

func testHRQuiz(t *testing.T) *domain.Quiz {
	t.Helper()
	quiz, err := domain.NewQuiz(domain.StageHR, []domain.Question{
		{ID: "h1", Prompt: "Team conflict question", Options: fourOptions(), CorrectOptionIndex: 2, Points: 10, Category: domain.CategoryTeamwork},
	}, 20, 50)
	require.NoError(t, err)
	return quiz
}

func reviewablePosting(t *testing.T) *domain.JobPosting {
	t.Helper()
	posting, err := domain.NewJobPosting("Backend Engineer", "Engineering", "pl-1", testTechQuiz(t))
	require.NoError(t, err)
	posting.ID = 42
	now := time.Now()
	require.NoError(t, posting.Apply(domain.EventSubmitForReview, domain.RoleProjectLeader, now))
	require.NoError(t, posting.AttachHRAssessment(testHRQuiz(t)))
	require.NoError(t, posting.Apply(domain.EventEnhancementComplete, domain.RoleHR, now))
	return posting
}

func activePosting(t *testing.T) *domain.JobPosting {
	t.Helper()
	posting := reviewablePosting(t)
	require.NoError(t, posting.Apply(domain.EventApprove, domain.RoleExecutive, time.Now()))
	return posting
}

// Posting usecase

func TestCreatePosting(t *testing.T) {
	t.Run("Should fail when the caller is not a project leader", func(t *testing.T) {
		uc := usecase.NewPostingUsecase(new(MockPostingRepo), nil, nil)
		_, err := uc.CreatePosting(context.Background(), "hr-1", domain.RoleHR, "Backend Engineer", "Engineering", testTechQuiz(t), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "project leaders")
	})

	t.Run("Should reject an expiry in the past", func(t *testing.T) {
		uc := usecase.NewPostingUsecase(new(MockPostingRepo), nil, nil)
		past := time.Now().Add(-time.Hour)
		_, err := uc.CreatePosting(context.Background(), "pl-1", domain.RoleProjectLeader, "Backend Engineer", "Engineering", testTechQuiz(t), &past)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("Should persist a draft posting for a project leader", func(t *testing.T) {
		mockRepo := new(MockPostingRepo)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.JobPosting")).Return(nil)

		uc := usecase.NewPostingUsecase(mockRepo, nil, nil)
		posting, err := uc.CreatePosting(context.Background(), "pl-1", domain.RoleProjectLeader, "Backend Engineer", "Engineering", testTechQuiz(t), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDraft, posting.Status)
		assert.Equal(t, "pl-1", posting.CreatedBy)
		mockRepo.AssertExpectations(t)
	})
}

func TestSubmitForReviewOwnership(t *testing.T) {
	mockRepo := new(MockPostingRepo)
	posting, err := domain.NewJobPosting("Backend Engineer", "Engineering", "pl-1", testTechQuiz(t))
	require.NoError(t, err)
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(posting, nil)

	uc := usecase.NewPostingUsecase(mockRepo, nil, nil)
	_, err = uc.SubmitForReview(context.Background(), "pl-2", domain.RoleProjectLeader, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "posting creator")
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetPostingLazyExpiry(t *testing.T) {
	mockRepo := new(MockPostingRepo)
	mockCache := new(MockBoardCache)

	posting := activePosting(t)
	past := time.Now().Add(-time.Hour)
	posting.ExpiresAt = &past

	mockRepo.On("GetByID", mock.Anything, int64(42)).Return(posting, nil)
	mockRepo.On("Save", mock.Anything, posting).Return(nil)
	mockCache.On("Invalidate", mock.Anything).Return()

	uc := usecase.NewPostingUsecase(mockRepo, mockCache, nil)
	got, err := uc.GetPosting(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, got.Status)
	assert.Equal(t, domain.PublicationExpired, got.PublicationState)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestExpireDuePostings(t *testing.T) {
	mockRepo := new(MockPostingRepo)
	first := activePosting(t)
	second := activePosting(t)
	mockRepo.On("FetchExpiryDue", mock.Anything, mock.Anything, 100).
		Return([]domain.JobPosting{*first, *second}, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewPostingUsecase(mockRepo, nil, nil)
	expired, err := uc.ExpireDuePostings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, expired)
}

// Approval usecase

func TestApplyDecision(t *testing.T) {
	t.Run("Approval without comments publishes the posting", func(t *testing.T) {
		mockRepo := new(MockPostingRepo)
		mockCache := new(MockBoardCache)
		posting := reviewablePosting(t)

		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(posting, nil)
		mockRepo.On("Save", mock.Anything, posting).Return(nil)
		mockCache.On("Invalidate", mock.Anything).Return()

		uc := usecase.NewApprovalUsecase(mockRepo, mockCache, nil)
		got, err := uc.ApplyDecision(context.Background(), "exec-1", domain.RoleExecutive, 42, domain.OutcomeApprove, "", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPublished, got.Status)
		assert.Equal(t, domain.PublicationActive, got.PublicationState)
		require.Len(t, got.ApprovalHistory, 1)
		assert.Equal(t, "exec-1", got.ApprovalHistory[0].ReviewerID)
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Rejection without comments fails and persists nothing", func(t *testing.T) {
		mockRepo := new(MockPostingRepo)
		posting := reviewablePosting(t)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(posting, nil)

		uc := usecase.NewApprovalUsecase(mockRepo, nil, nil)
		_, err := uc.ApplyDecision(context.Background(), "exec-1", domain.RoleExecutive, 42, domain.OutcomeReject, "", nil)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Equal(t, domain.StatusCEOApproval, posting.Status)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Non-executive reviewers are refused", func(t *testing.T) {
		mockRepo := new(MockPostingRepo)
		posting := reviewablePosting(t)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(posting, nil)

		uc := usecase.NewApprovalUsecase(mockRepo, nil, nil)
		_, err := uc.ApplyDecision(context.Background(), "hr-1", domain.RoleHR, 42, domain.OutcomeApprove, "", nil)
		assert.True(t, apperror.IsKind(err, apperror.KindForbiddenTransition))
	})
}

// Assessment usecase

func TestApplyToPosting(t *testing.T) {
	t.Run("Should refuse a posting that is not publicly visible", func(t *testing.T) {
		mockPostingRepo := new(MockPostingRepo)
		posting := reviewablePosting(t) // still awaiting approval
		mockPostingRepo.On("GetByID", mock.Anything, int64(42)).Return(posting, nil)

		uc := usecase.NewAssessmentUsecase(new(MockSessionRepo), new(MockApplicationRepo), mockPostingRepo, nil)
		_, err := uc.ApplyToPosting(context.Background(), "cand-1", 42)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not open for applications")
	})

	t.Run("Should refuse a duplicate application", func(t *testing.T) {
		mockPostingRepo := new(MockPostingRepo)
		mockAppRepo := new(MockApplicationRepo)
		mockPostingRepo.On("GetByID", mock.Anything, int64(42)).Return(activePosting(t), nil)
		mockAppRepo.On("CheckExists", mock.Anything, int64(42), "cand-1").Return(true, nil)

		uc := usecase.NewAssessmentUsecase(new(MockSessionRepo), mockAppRepo, mockPostingRepo, nil)
		_, err := uc.ApplyToPosting(context.Background(), "cand-1", 42)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already applied")
	})

	t.Run("Should open a session at the technical stage", func(t *testing.T) {
		mockPostingRepo := new(MockPostingRepo)
		mockAppRepo := new(MockApplicationRepo)
		mockSessionRepo := new(MockSessionRepo)
		mockPostingRepo.On("GetByID", mock.Anything, int64(42)).Return(activePosting(t), nil)
		mockAppRepo.On("CheckExists", mock.Anything, int64(42), "cand-1").Return(false, nil)
		mockAppRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Application")).Return(nil)
		mockSessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AssessmentSession")).Return(nil)

		uc := usecase.NewAssessmentUsecase(mockSessionRepo, mockAppRepo, mockPostingRepo, nil)
		session, err := uc.ApplyToPosting(context.Background(), "cand-1", 42)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionStageTechnical, session.Stage)
		assert.Equal(t, "cand-1", session.CandidateID)
		mockAppRepo.AssertExpectations(t)
		mockSessionRepo.AssertExpectations(t)
	})
}

func TestAssessmentOwnership(t *testing.T) {
	mockSessionRepo := new(MockSessionRepo)
	session := domain.NewAssessmentSession(42, "cand-1")
	mockSessionRepo.On("GetByApplicationID", mock.Anything, session.ApplicationID).Return(session, nil)

	uc := usecase.NewAssessmentUsecase(mockSessionRepo, new(MockApplicationRepo), new(MockPostingRepo), nil)

	t.Run("Another candidate cannot read the session", func(t *testing.T) {
		_, err := uc.GetMySession(context.Background(), "cand-2", session.ApplicationID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "your own assessment session")
	})

	t.Run("Unauthenticated access fails safely", func(t *testing.T) {
		_, err := uc.GetMySession(context.Background(), "", session.ApplicationID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})
}

func TestGetMyApplication(t *testing.T) {
	app := &domain.Application{ID: uuid.New(), JobID: 42, CandidateID: "cand-1"}
	mockAppRepo := new(MockApplicationRepo)
	mockAppRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

	uc := usecase.NewAssessmentUsecase(new(MockSessionRepo), mockAppRepo, new(MockPostingRepo), nil)

	t.Run("The owner sees the application", func(t *testing.T) {
		got, err := uc.GetMyApplication(context.Background(), "cand-1", app.ID)
		require.NoError(t, err)
		assert.Equal(t, app, got)
	})

	t.Run("Another candidate is refused", func(t *testing.T) {
		_, err := uc.GetMyApplication(context.Background(), "cand-2", app.ID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "your own application")
	})
}

func TestStartStageRedactsAnswers(t *testing.T) {
	mockSessionRepo := new(MockSessionRepo)
	mockPostingRepo := new(MockPostingRepo)
	session := domain.NewAssessmentSession(42, "cand-1")
	mockSessionRepo.On("GetByApplicationID", mock.Anything, session.ApplicationID).Return(session, nil)
	mockSessionRepo.On("Save", mock.Anything, session).Return(nil)
	mockPostingRepo.On("GetByID", mock.Anything, int64(42)).Return(activePosting(t), nil)

	uc := usecase.NewAssessmentUsecase(mockSessionRepo, new(MockApplicationRepo), mockPostingRepo, nil)
	got, quiz, err := uc.StartStage(context.Background(), "cand-1", session.ApplicationID, domain.StageTechnical)
	require.NoError(t, err)
	assert.NotNil(t, got.TechnicalStartedAt)
	for _, q := range quiz.Questions {
		assert.Equal(t, -1, q.CorrectOptionIndex)
	}
}

func TestAggregateResultRoleGate(t *testing.T) {
	uc := usecase.NewAssessmentUsecase(new(MockSessionRepo), new(MockApplicationRepo), new(MockPostingRepo), nil)
	_, err := uc.AggregateResult(context.Background(), domain.RoleCandidate, uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "HR and executives")
}

// Dashboard usecase

func TestPublicBoard(t *testing.T) {
	t.Run("Cache hit skips the repository", func(t *testing.T) {
		mockCache := new(MockBoardCache)
		cached := &domain.PostingPage{Total: 3, Page: 1, PageSize: 10}
		mockCache.On("Get", mock.Anything, 1, 10).Return(cached, true)

		mockRepo := new(MockPostingRepo)
		uc := usecase.NewDashboardUsecase(mockRepo, new(MockSessionRepo), mockCache)
		got, err := uc.PublicBoard(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.Equal(t, cached, got)
		mockRepo.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("The query excludes postings past their scheduled expiry", func(t *testing.T) {
		mockCache := new(MockBoardCache)
		mockRepo := new(MockPostingRepo)

		mockCache.On("Get", mock.Anything, 1, 10).Return(nil, false)
		mockRepo.On("Fetch", mock.Anything, mock.MatchedBy(func(f domain.PostingFilter) bool {
			return f.Status != nil && *f.Status == domain.StatusPublished &&
				f.PublicationState != nil && *f.PublicationState == domain.PublicationActive &&
				f.NotExpiredAt != nil
		}), 10, 0).Return([]domain.JobPosting{}, int64(0), nil)
		mockCache.On("Set", mock.Anything, mock.AnythingOfType("*domain.PostingPage")).Return()

		uc := usecase.NewDashboardUsecase(mockRepo, new(MockSessionRepo), mockCache)
		_, err := uc.PublicBoard(context.Background(), 1, 10)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Cache miss strips assessments before caching", func(t *testing.T) {
		mockCache := new(MockBoardCache)
		mockRepo := new(MockPostingRepo)
		posting := activePosting(t)

		mockCache.On("Get", mock.Anything, 1, 10).Return(nil, false)
		mockRepo.On("Fetch", mock.Anything, mock.Anything, 10, 0).
			Return([]domain.JobPosting{*posting}, int64(1), nil)
		mockCache.On("Set", mock.Anything, mock.AnythingOfType("*domain.PostingPage")).Return()

		uc := usecase.NewDashboardUsecase(mockRepo, new(MockSessionRepo), mockCache)
		got, err := uc.PublicBoard(context.Background(), 1, 10)
		require.NoError(t, err)
		require.Len(t, got.Postings, 1)
		assert.Nil(t, got.Postings[0].TechnicalAssessment)
		assert.Nil(t, got.Postings[0].HRAssessment)
		assert.Nil(t, got.Postings[0].ApprovalHistory)
		mockCache.AssertExpectations(t)
	})
}

func TestCreatorDashboardScopesToOwner(t *testing.T) {
	mockRepo := new(MockPostingRepo)
	mockRepo.On("Fetch", mock.Anything, mock.MatchedBy(func(f domain.PostingFilter) bool {
		return f.CreatedBy == "pl-1"
	}), 10, 0).Return([]domain.JobPosting{}, int64(0), nil)

	uc := usecase.NewDashboardUsecase(mockRepo, new(MockSessionRepo), nil)
	_, err := uc.CreatorDashboard(context.Background(), "pl-1", domain.PostingFilter{}, 1, 10)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestJobSessionsRoleGate(t *testing.T) {
	uc := usecase.NewDashboardUsecase(new(MockPostingRepo), new(MockSessionRepo), nil)
	_, err := uc.JobSessions(context.Background(), domain.RoleCandidate, 42, 1, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "HR and executives")
}
