package domain

import (
	"context"
	"fmt"
	"time"

	"go-hiring-workflow/pkg/apperror"
)

// DecisionOutcome is a reviewer's disposition on a posting under review.
type DecisionOutcome string

const (
	OutcomeApprove        DecisionOutcome = "approve"
	OutcomeReject         DecisionOutcome = "reject"
	OutcomeRequestChanges DecisionOutcome = "request_changes"
)

func (o DecisionOutcome) IsValid() bool {
	return o == OutcomeApprove || o == OutcomeReject || o == OutcomeRequestChanges
}

// decisionEvents maps each outcome onto the lifecycle event it raises.
var decisionEvents = map[DecisionOutcome]PostingEvent{
	OutcomeApprove:        EventApprove,
	OutcomeReject:         EventReject,
	OutcomeRequestChanges: EventRequestChanges,
}

// ApprovalDecision is one append-only entry in a posting's approval history.
// Conditions are advisory metadata on approvals; they are stored and surfaced
// but never enforced by the lifecycle.
type ApprovalDecision struct {
	Seq          int             `json:"seq"`
	JobID        int64           `json:"job_id"`
	ReviewerID   string          `json:"reviewer_id,omitempty"`
	ReviewerRole Role            `json:"reviewer_role"`
	Outcome      DecisionOutcome `json:"outcome"`
	Comments     string          `json:"comments,omitempty"`
	Conditions   []string        `json:"conditions,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ApplyDecision validates a reviewer decision against the posting and, on
// success, executes the transition and appends the decision to the history.
// The posting is left untouched on any failure.
func (p *JobPosting) ApplyDecision(decision ApprovalDecision) error {
	if p.Status != StatusCEOApproval {
		return apperror.NotReviewable(
			fmt.Sprintf("posting is in %q; decisions require executive approval stage", p.Status))
	}
	if !decision.Outcome.IsValid() {
		return apperror.Validation(fmt.Sprintf("unknown decision outcome %q", decision.Outcome))
	}
	if decision.Outcome != OutcomeApprove && decision.Comments == "" {
		return apperror.Validation("comments required for rejection/changes")
	}
	if decision.Outcome != OutcomeApprove && len(decision.Conditions) > 0 {
		return apperror.Validation("conditions are only meaningful on approval")
	}

	if decision.Timestamp.IsZero() {
		decision.Timestamp = time.Now()
	}
	if err := p.Apply(decisionEvents[decision.Outcome], decision.ReviewerRole, decision.Timestamp); err != nil {
		return err
	}

	decision.JobID = p.ID
	decision.Seq = len(p.ApprovalHistory) + 1
	p.ApprovalHistory = append(p.ApprovalHistory, decision)
	return nil
}

type ApprovalUsecase interface {
	// ApplyDecision applies an executive's decision and persists the new
	// status together with the history entry atomically.
	ApplyDecision(ctx context.Context, reviewerID string, reviewerRole Role, jobID int64, outcome DecisionOutcome, comments string, conditions []string) (*JobPosting, error)
}
