package domain

import "context"

// PostingPage is one page of a posting projection.
type PostingPage struct {
	Postings []JobPosting `json:"postings"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// SessionPage is one page of a session projection.
type SessionPage struct {
	Sessions []AssessmentSession `json:"sessions"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// PublishedBoardCache caches the public board projection. It is a pure
// read-through cache: the state machine stays the system of record, and every
// posting transition invalidates it.
type PublishedBoardCache interface {
	Get(ctx context.Context, page, pageSize int) (*PostingPage, bool)
	Set(ctx context.Context, result *PostingPage)
	Invalidate(ctx context.Context)
}

// DashboardUsecase serves the four actor views. All views are derived,
// read-only projections over the posting and session entities.
type DashboardUsecase interface {
	// CreatorDashboard lists postings authored by the project leader.
	CreatorDashboard(ctx context.Context, userID string, filter PostingFilter, page, pageSize int) (*PostingPage, error)
	// HRQueue lists postings awaiting HR enhancement.
	HRQueue(ctx context.Context, filter PostingFilter, page, pageSize int) (*PostingPage, error)
	// ExecutiveQueue lists postings awaiting an executive decision.
	ExecutiveQueue(ctx context.Context, filter PostingFilter, page, pageSize int) (*PostingPage, error)
	// PublicBoard lists active published postings for candidates.
	PublicBoard(ctx context.Context, page, pageSize int) (*PostingPage, error)
	// JobSessions lists assessment sessions for a posting (reviewer-facing).
	JobSessions(ctx context.Context, role Role, jobID int64, page, pageSize int) (*SessionPage, error)
}
