package usecase

import (
	"context"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"
	"go-hiring-workflow/pkg/logger"
)

type postingUsecase struct {
	postingRepo domain.PostingRepository
	boardCache  domain.PublishedBoardCache
	notifier    domain.Notifier
}

func NewPostingUsecase(postingRepo domain.PostingRepository, boardCache domain.PublishedBoardCache, notifier domain.Notifier) domain.PostingUsecase {
	return &postingUsecase{
		postingRepo: postingRepo,
		boardCache:  boardCache,
		notifier:    notifier,
	}
}

// CreatePosting drafts a new posting with its technical assessment. Only the
// project leader role may author postings.
func (u *postingUsecase) CreatePosting(ctx context.Context, userID string, role domain.Role, title, department string, technical *domain.Quiz, expiresAt *time.Time) (*domain.JobPosting, error) {
	if role != domain.RoleProjectLeader {
		return nil, apperror.Forbidden("Only project leaders can create postings")
	}
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	posting, err := domain.NewJobPosting(title, department, userID, technical)
	if err != nil {
		return nil, err
	}
	if expiresAt != nil {
		if !expiresAt.After(time.Now()) {
			return nil, apperror.Validation("expiry must be in the future")
		}
		posting.ExpiresAt = expiresAt
	}

	if err := u.postingRepo.Create(ctx, posting); err != nil {
		return nil, apperror.Internal(err)
	}
	return posting, nil
}

// GetPosting loads a posting, applying lazy expiry first: a published posting
// past its scheduled expiry is archived at read time rather than by a timer.
func (u *postingUsecase) GetPosting(ctx context.Context, id int64) (*domain.JobPosting, error) {
	posting, err := u.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}
	if posting.ExpiryDue(time.Now()) {
		if err := u.expire(ctx, posting); err != nil {
			return nil, err
		}
	}
	return posting, nil
}

func (u *postingUsecase) SubmitForReview(ctx context.Context, userID string, role domain.Role, id int64) (*domain.JobPosting, error) {
	posting, err := u.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}
	if posting.CreatedBy != userID {
		return nil, apperror.Forbidden("Only the posting creator can submit it for review")
	}

	if err := posting.Apply(domain.EventSubmitForReview, role, time.Now()); err != nil {
		return nil, err
	}
	if err := u.postingRepo.Save(ctx, posting); err != nil {
		return nil, apperror.Internal(err)
	}

	u.notifyTransition(posting, domain.EventSubmitForReview)
	return posting, nil
}

// CompleteEnhancement attaches the HR assessment and forwards the posting to
// executive approval in one step.
func (u *postingUsecase) CompleteEnhancement(ctx context.Context, role domain.Role, id int64, hrQuiz *domain.Quiz) (*domain.JobPosting, error) {
	posting, err := u.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}

	if err := posting.AttachHRAssessment(hrQuiz); err != nil {
		return nil, err
	}
	if err := posting.Apply(domain.EventEnhancementComplete, role, time.Now()); err != nil {
		return nil, err
	}
	if err := u.postingRepo.Save(ctx, posting); err != nil {
		return nil, apperror.Internal(err)
	}

	u.notifyTransition(posting, domain.EventEnhancementComplete)
	return posting, nil
}

// SetPublicationState applies one of the post-publication toggles.
func (u *postingUsecase) SetPublicationState(ctx context.Context, role domain.Role, id int64, event domain.PostingEvent) (*domain.JobPosting, error) {
	switch event {
	case domain.EventHide, domain.EventFlag, domain.EventReactivate:
	default:
		return nil, apperror.Validation("publication action must be hide, flag or reactivate")
	}

	posting, err := u.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}
	if posting.ExpiryDue(time.Now()) {
		if err := u.expire(ctx, posting); err != nil {
			return nil, err
		}
	}

	if err := posting.Apply(event, role, time.Now()); err != nil {
		return nil, err
	}
	if err := u.postingRepo.Save(ctx, posting); err != nil {
		return nil, apperror.Internal(err)
	}

	u.invalidateBoard(ctx)
	u.notifyTransition(posting, event)
	return posting, nil
}

// ExpireDuePostings sweeps published postings past their expiry.
func (u *postingUsecase) ExpireDuePostings(ctx context.Context) (int, error) {
	due, err := u.postingRepo.FetchExpiryDue(ctx, time.Now(), 100)
	if err != nil {
		return 0, apperror.Internal(err)
	}

	expired := 0
	for i := range due {
		posting := &due[i]
		if err := u.expire(ctx, posting); err != nil {
			logger.Log.Error("Failed to expire posting", "posting_id", posting.ID, "error", err)
			continue
		}
		expired++
	}
	return expired, nil
}

func (u *postingUsecase) expire(ctx context.Context, posting *domain.JobPosting) error {
	if err := posting.Apply(domain.EventExpire, domain.RoleSystem, time.Now()); err != nil {
		return err
	}
	if err := u.postingRepo.Save(ctx, posting); err != nil {
		return apperror.Internal(err)
	}
	u.invalidateBoard(ctx)
	u.notifyTransition(posting, domain.EventExpire)
	return nil
}

func (u *postingUsecase) invalidateBoard(ctx context.Context) {
	if u.boardCache != nil {
		u.boardCache.Invalidate(ctx)
	}
}

// notifyTransition dispatches fire-and-forget; delivery is never awaited and
// a failure never affects the transition.
func (u *postingUsecase) notifyTransition(posting *domain.JobPosting, event domain.PostingEvent) {
	if u.notifier == nil {
		return
	}
	snapshot := *posting
	go u.notifier.NotifyPostingTransition(context.Background(), &snapshot, event)
}
