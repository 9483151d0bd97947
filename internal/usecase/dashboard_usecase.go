package usecase

import (
	"context"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"
)

type dashboardUsecase struct {
	postingRepo domain.PostingRepository
	sessionRepo domain.SessionRepository
	boardCache  domain.PublishedBoardCache
}

func NewDashboardUsecase(postingRepo domain.PostingRepository, sessionRepo domain.SessionRepository, boardCache domain.PublishedBoardCache) domain.DashboardUsecase {
	return &dashboardUsecase{
		postingRepo: postingRepo,
		sessionRepo: sessionRepo,
		boardCache:  boardCache,
	}
}

func normalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	return page, pageSize, offset
}

// CreatorDashboard lists the project leader's own postings.
func (u *dashboardUsecase) CreatorDashboard(ctx context.Context, userID string, filter domain.PostingFilter, page, pageSize int) (*domain.PostingPage, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	filter.CreatedBy = userID
	return u.fetchPostings(ctx, filter, page, pageSize)
}

// HRQueue lists postings awaiting HR enhancement.
func (u *dashboardUsecase) HRQueue(ctx context.Context, filter domain.PostingFilter, page, pageSize int) (*domain.PostingPage, error) {
	status := domain.StatusHRReview
	filter.Status = &status
	return u.fetchPostings(ctx, filter, page, pageSize)
}

// ExecutiveQueue lists postings awaiting an executive decision.
func (u *dashboardUsecase) ExecutiveQueue(ctx context.Context, filter domain.PostingFilter, page, pageSize int) (*domain.PostingPage, error) {
	status := domain.StatusCEOApproval
	filter.Status = &status
	return u.fetchPostings(ctx, filter, page, pageSize)
}

// PublicBoard lists active published postings for candidates. Results are
// served through the read-through cache; assessments and history are
// stripped from the public projection.
func (u *dashboardUsecase) PublicBoard(ctx context.Context, page, pageSize int) (*domain.PostingPage, error) {
	page, pageSize, offset := normalizePage(page, pageSize)

	if u.boardCache != nil {
		if cached, ok := u.boardCache.Get(ctx, page, pageSize); ok {
			return cached, nil
		}
	}

	// Expiry-due postings are excluded here too: the lazy sweep may not have
	// archived them yet, and the board must never show a posting candidates
	// cannot apply to.
	status := domain.StatusPublished
	pub := domain.PublicationActive
	now := time.Now()
	filter := domain.PostingFilter{Status: &status, PublicationState: &pub, NotExpiredAt: &now}

	postings, total, err := u.postingRepo.Fetch(ctx, filter, pageSize, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range postings {
		postings[i].TechnicalAssessment = nil
		postings[i].HRAssessment = nil
		postings[i].ApprovalHistory = nil
	}

	result := &domain.PostingPage{
		Postings: postings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	if u.boardCache != nil {
		u.boardCache.Set(ctx, result)
	}
	return result, nil
}

// JobSessions lists assessment sessions for one posting (reviewer-facing).
func (u *dashboardUsecase) JobSessions(ctx context.Context, role domain.Role, jobID int64, page, pageSize int) (*domain.SessionPage, error) {
	if role != domain.RoleHR && role != domain.RoleExecutive {
		return nil, apperror.Forbidden("Only HR and executives can list job sessions")
	}

	page, pageSize, offset := normalizePage(page, pageSize)
	filter := domain.SessionFilter{JobID: &jobID}

	sessions, total, err := u.sessionRepo.Fetch(ctx, filter, pageSize, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.SessionPage{
		Sessions: sessions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (u *dashboardUsecase) fetchPostings(ctx context.Context, filter domain.PostingFilter, page, pageSize int) (*domain.PostingPage, error) {
	page, pageSize, offset := normalizePage(page, pageSize)

	postings, total, err := u.postingRepo.Fetch(ctx, filter, pageSize, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.PostingPage{
		Postings: postings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
