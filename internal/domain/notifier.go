package domain

import "context"

// Notifier is the outbound notification collaborator. Calls are
// fire-and-forget: the core never awaits or verifies delivery, and a failed
// notification never fails the originating operation.
type Notifier interface {
	NotifyPostingTransition(ctx context.Context, posting *JobPosting, event PostingEvent)
	NotifyAssessmentCompleted(ctx context.Context, session *AssessmentSession, report *AssessmentReport)
}
