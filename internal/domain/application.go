package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Application links a candidate to a posting. The assessment session shares
// its ID.
type Application struct {
	ID          uuid.UUID `json:"id"`
	JobID       int64     `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined data for list responses
	JobTitle *string `json:"job_title,omitempty"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	CheckExists(ctx context.Context, jobID int64, candidateID string) (bool, error)
	GetByCandidate(ctx context.Context, candidateID string) ([]Application, error)
}
