package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/email"
	"go-hiring-workflow/pkg/logger"
)

// emailNotifier delivers workflow notifications over SMTP to a shared
// recruitment inbox. Delivery is best-effort: failures are logged and never
// surfaced to the caller.
type emailNotifier struct {
	sender  *email.Service
	inboxTo string
}

func NewEmailNotifier(sender *email.Service, inboxTo string) domain.Notifier {
	return &emailNotifier{sender: sender, inboxTo: inboxTo}
}

const transitionTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Posting update: {{.Title}}</h2>
	<p>Posting <strong>#{{.ID}}</strong> ({{.Department}}) moved via <strong>{{.Event}}</strong>.</p>
	<p>Current status: <strong>{{.Status}}</strong>{{if .PublicationState}} ({{.PublicationState}}){{end}}</p>
</body>
</html>`

const assessmentTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Assessment completed</h2>
	<p>Application <strong>{{.ApplicationID}}</strong> for posting <strong>#{{.JobID}}</strong> finished both stages.</p>
	<p>Technical: {{.TechnicalPercent}}% &middot; HR: {{.HRPercent}}%</p>
	<p>Overall passed: <strong>{{.OverallPassed}}</strong></p>
	<p>{{.Recommendation}}</p>
</body>
</html>`

var (
	transitionTmpl = template.Must(template.New("transition").Parse(transitionTemplate))
	assessmentTmpl = template.Must(template.New("assessment").Parse(assessmentTemplate))
)

func (n *emailNotifier) NotifyPostingTransition(_ context.Context, posting *domain.JobPosting, event domain.PostingEvent) {
	data := struct {
		ID               int64
		Title            string
		Department       string
		Event            domain.PostingEvent
		Status           domain.PostingStatus
		PublicationState domain.PublicationState
	}{posting.ID, posting.Title, posting.Department, event, posting.Status, posting.PublicationState}

	var body bytes.Buffer
	if err := transitionTmpl.Execute(&body, data); err != nil {
		logger.Log.Error("Failed to render transition notification", "error", err)
		return
	}

	subject := fmt.Sprintf("[Hiring] Posting #%d: %s", posting.ID, event)
	if err := n.sender.Send(n.inboxTo, subject, body.String()); err != nil {
		logger.Log.Warn("Transition notification not delivered", "posting_id", posting.ID, "event", event, "error", err)
	}
}

func (n *emailNotifier) NotifyAssessmentCompleted(_ context.Context, session *domain.AssessmentSession, report *domain.AssessmentReport) {
	var body bytes.Buffer
	if err := assessmentTmpl.Execute(&body, report); err != nil {
		logger.Log.Error("Failed to render assessment notification", "error", err)
		return
	}

	subject := fmt.Sprintf("[Hiring] Assessment completed for posting #%d", session.JobID)
	if err := n.sender.Send(n.inboxTo, subject, body.String()); err != nil {
		logger.Log.Warn("Assessment notification not delivered", "application_id", session.ApplicationID, "error", err)
	}
}
