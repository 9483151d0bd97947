package domain

import (
	"context"
	"fmt"
	"time"

	"go-hiring-workflow/pkg/apperror"
)

// PostingStatus is the authoring/approval lifecycle stage of a job posting.
type PostingStatus string

const (
	StatusDraft       PostingStatus = "draft"
	StatusHRReview    PostingStatus = "hr_review"
	StatusCEOApproval PostingStatus = "ceo_approval"
	StatusPublished   PostingStatus = "published"
	StatusArchived    PostingStatus = "archived"
)

// PublicationState is the sub-state of a published posting. It is empty
// until the posting reaches StatusPublished.
type PublicationState string

const (
	PublicationActive  PublicationState = "active"
	PublicationHidden  PublicationState = "hidden"
	PublicationFlagged PublicationState = "flagged"
	PublicationExpired PublicationState = "expired"
)

// PostingEvent is a requested lifecycle transition.
type PostingEvent string

const (
	EventSubmitForReview     PostingEvent = "submit_for_review"
	EventEnhancementComplete PostingEvent = "enhancement_complete"
	EventApprove             PostingEvent = "approve"
	EventReject              PostingEvent = "reject"
	EventRequestChanges      PostingEvent = "request_changes"
	EventHide                PostingEvent = "hide"
	EventFlag                PostingEvent = "flag"
	EventReactivate          PostingEvent = "reactivate"
	EventExpire              PostingEvent = "expire"
)

// transitionRule is one row of the lifecycle table: who may raise the event,
// from which status (and publication sub-states, when published), and where
// the posting lands.
type transitionRule struct {
	actor           Role
	from            PostingStatus
	fromPublication []PublicationState // only checked when from == StatusPublished
	to              PostingStatus
	toPublication   PublicationState
}

var transitions = map[PostingEvent]transitionRule{
	EventSubmitForReview: {
		actor: RoleProjectLeader,
		from:  StatusDraft,
		to:    StatusHRReview,
	},
	EventEnhancementComplete: {
		actor: RoleHR,
		from:  StatusHRReview,
		to:    StatusCEOApproval,
	},
	EventApprove: {
		actor:         RoleExecutive,
		from:          StatusCEOApproval,
		to:            StatusPublished,
		toPublication: PublicationActive,
	},
	EventReject: {
		actor: RoleExecutive,
		from:  StatusCEOApproval,
		to:    StatusDraft,
	},
	EventRequestChanges: {
		actor: RoleExecutive,
		from:  StatusCEOApproval,
		to:    StatusHRReview,
	},
	EventHide: {
		actor:           RoleExecutive,
		from:            StatusPublished,
		fromPublication: []PublicationState{PublicationActive},
		to:              StatusPublished,
		toPublication:   PublicationHidden,
	},
	EventFlag: {
		actor:           RoleExecutive,
		from:            StatusPublished,
		fromPublication: []PublicationState{PublicationActive},
		to:              StatusPublished,
		toPublication:   PublicationFlagged,
	},
	EventReactivate: {
		actor:           RoleExecutive,
		from:            StatusPublished,
		fromPublication: []PublicationState{PublicationHidden, PublicationFlagged},
		to:              StatusPublished,
		toPublication:   PublicationActive,
	},
	EventExpire: {
		actor:           RoleSystem,
		from:            StatusPublished,
		fromPublication: []PublicationState{PublicationActive, PublicationHidden, PublicationFlagged},
		to:              StatusArchived,
		toPublication:   PublicationExpired,
	},
}

// JobPosting is the single source of truth for a job opening's lifecycle.
// All four dashboard views are derived from it.
type JobPosting struct {
	ID                  int64             `json:"id"`
	Title               string            `json:"title"`
	Department          string            `json:"department"`
	CreatedBy           string            `json:"created_by"`
	Status              PostingStatus     `json:"status"`
	PublicationState    PublicationState  `json:"publication_state,omitempty"`
	TechnicalAssessment *Quiz             `json:"technical_assessment,omitempty"`
	HRAssessment        *Quiz             `json:"hr_assessment,omitempty"`
	ApprovalHistory     []ApprovalDecision `json:"approval_history,omitempty"`
	ExpiresAt           *time.Time        `json:"expires_at,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	LastTransitionAt    time.Time         `json:"last_transition_at"`
}

// NewJobPosting creates a draft posting authored by a project leader. The
// technical assessment is required at creation; the HR assessment is added
// later during HR review.
func NewJobPosting(title, department, createdBy string, technical *Quiz) (*JobPosting, error) {
	if title == "" {
		return nil, apperror.Validation("title is required")
	}
	if department == "" {
		return nil, apperror.Validation("department is required")
	}
	if technical == nil {
		return nil, apperror.Validation("technical assessment is required")
	}
	if technical.OwningStage != StageTechnical {
		return nil, apperror.Validation("posting assessment must be a technical quiz")
	}
	if err := technical.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &JobPosting{
		Title:               title,
		Department:          department,
		CreatedBy:           createdBy,
		Status:              StatusDraft,
		TechnicalAssessment: technical,
		CreatedAt:           now,
		LastTransitionAt:    now,
	}, nil
}

// Apply executes one lifecycle event for the given actor. Transitions are
// all-or-nothing: on any error the posting is left unchanged.
func (p *JobPosting) Apply(event PostingEvent, actor Role, now time.Time) error {
	rule, ok := transitions[event]
	if !ok {
		return apperror.Validation(fmt.Sprintf("unknown lifecycle event %q", event))
	}
	if actor != rule.actor {
		return apperror.ForbiddenTransition(
			fmt.Sprintf("role %q may not raise event %q", actor, event))
	}
	if p.Status != rule.from {
		return apperror.InvalidStateTransition(
			fmt.Sprintf("event %q is not valid from status %q", event, p.Status))
	}
	if rule.from == StatusPublished && !publicationStateAllowed(p.PublicationState, rule.fromPublication) {
		return apperror.InvalidStateTransition(
			fmt.Sprintf("event %q is not valid from publication state %q", event, p.PublicationState))
	}
	if event == EventEnhancementComplete && p.HRAssessment == nil {
		return apperror.Validation("HR assessment must be attached before completing enhancement")
	}

	p.Status = rule.to
	p.PublicationState = rule.toPublication
	p.LastTransitionAt = now
	return nil
}

func publicationStateAllowed(state PublicationState, allowed []PublicationState) bool {
	for _, s := range allowed {
		if state == s {
			return true
		}
	}
	return false
}

// AttachHRAssessment sets the HR quiz. It is only legal while the posting
// sits in HR review; earlier stages must not carry an HR assessment.
func (p *JobPosting) AttachHRAssessment(quiz *Quiz) error {
	if p.Status != StatusHRReview {
		return apperror.InvalidStateTransition(
			fmt.Sprintf("HR assessment can only be attached during HR review, not %q", p.Status))
	}
	if quiz == nil {
		return apperror.Validation("HR assessment quiz is required")
	}
	if quiz.OwningStage != StageHR {
		return apperror.Validation("attached assessment must be an HR quiz")
	}
	if err := quiz.Validate(); err != nil {
		return err
	}
	p.HRAssessment = quiz
	return nil
}

// IsPubliclyVisible reports whether candidates may see and apply to the
// posting.
func (p *JobPosting) IsPubliclyVisible() bool {
	return p.Status == StatusPublished && p.PublicationState == PublicationActive
}

// ExpiryDue reports whether the scheduled expiry has passed for a published
// posting. Expiry is evaluated lazily; there is no background timer.
func (p *JobPosting) ExpiryDue(now time.Time) bool {
	return p.Status == StatusPublished && p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// PostingFilter narrows and orders posting projections for the dashboards.
type PostingFilter struct {
	Status           *PostingStatus    `json:"status,omitempty"`
	PublicationState *PublicationState `json:"publication_state,omitempty"`
	// NotExpiredAt excludes postings whose scheduled expiry has passed at the
	// given instant, so a view never lists rows the lazy sweep would archive.
	NotExpiredAt *time.Time `json:"not_expired_at,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	Department       string            `json:"department,omitempty"`
	Search           string            `json:"search,omitempty"` // matched against title
	SortBy           string            `json:"sort_by,omitempty"`    // created_at, last_transition_at, title
	SortOrder        string            `json:"sort_order,omitempty"` // asc, desc
}

type PostingRepository interface {
	Create(ctx context.Context, posting *JobPosting) error
	GetByID(ctx context.Context, id int64) (*JobPosting, error)
	// Save persists the posting state and appends any new approval history
	// entries in a single transaction. History rows are never updated.
	Save(ctx context.Context, posting *JobPosting) error
	Fetch(ctx context.Context, filter PostingFilter, limit, offset int) ([]JobPosting, int64, error)
	// FetchExpiryDue returns published postings whose scheduled expiry has
	// passed, for the lazy expiry sweep.
	FetchExpiryDue(ctx context.Context, now time.Time, limit int) ([]JobPosting, error)
}

type PostingUsecase interface {
	CreatePosting(ctx context.Context, userID string, role Role, title, department string, technical *Quiz, expiresAt *time.Time) (*JobPosting, error)
	GetPosting(ctx context.Context, id int64) (*JobPosting, error)
	SubmitForReview(ctx context.Context, userID string, role Role, id int64) (*JobPosting, error)
	CompleteEnhancement(ctx context.Context, role Role, id int64, hrQuiz *Quiz) (*JobPosting, error)
	SetPublicationState(ctx context.Context, role Role, id int64, event PostingEvent) (*JobPosting, error)
	// ExpireDuePostings archives published postings past their expiry and
	// returns how many were archived.
	ExpireDuePostings(ctx context.Context) (int, error)
}
