package usecase

import (
	"context"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/apperror"
)

type approvalUsecase struct {
	postingRepo domain.PostingRepository
	boardCache  domain.PublishedBoardCache
	notifier    domain.Notifier
}

func NewApprovalUsecase(postingRepo domain.PostingRepository, boardCache domain.PublishedBoardCache, notifier domain.Notifier) domain.ApprovalUsecase {
	return &approvalUsecase{
		postingRepo: postingRepo,
		boardCache:  boardCache,
		notifier:    notifier,
	}
}

// ApplyDecision validates and applies an executive decision. The status
// change and the history append are persisted in one transaction, so no
// intermediate state is ever observable.
func (u *approvalUsecase) ApplyDecision(ctx context.Context, reviewerID string, reviewerRole domain.Role, jobID int64, outcome domain.DecisionOutcome, comments string, conditions []string) (*domain.JobPosting, error) {
	posting, err := u.postingRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.NotFound("Posting not found")
	}

	decision := domain.ApprovalDecision{
		ReviewerID:   reviewerID,
		ReviewerRole: reviewerRole,
		Outcome:      outcome,
		Comments:     comments,
		Conditions:   conditions,
		Timestamp:    time.Now(),
	}
	if err := posting.ApplyDecision(decision); err != nil {
		return nil, err
	}

	if err := u.postingRepo.Save(ctx, posting); err != nil {
		return nil, apperror.Internal(err)
	}

	// An approval changes what the public board shows.
	if u.boardCache != nil {
		u.boardCache.Invalidate(ctx)
	}
	if u.notifier != nil {
		snapshot := *posting
		event := domain.EventApprove
		switch outcome {
		case domain.OutcomeReject:
			event = domain.EventReject
		case domain.OutcomeRequestChanges:
			event = domain.EventRequestChanges
		}
		go u.notifier.NotifyPostingTransition(context.Background(), &snapshot, event)
	}

	return posting, nil
}
