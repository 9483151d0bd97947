package postgres

import (
	"context"

	"go-hiring-workflow/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `INSERT INTO applications (id, job_id, candidate_id, created_at)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, app.ID, app.JobID, app.CandidateID, app.CreatedAt)
	return err
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := `SELECT a.id, a.job_id, a.candidate_id, a.created_at, p.title
	          FROM applications a
	          LEFT JOIN postings p ON a.job_id = p.id
	          WHERE a.id = $1`

	var app domain.Application
	err := r.db.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.JobID, &app.CandidateID, &app.CreatedAt, &app.JobTitle,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) CheckExists(ctx context.Context, jobID int64, candidateID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = $1 AND candidate_id = $2)`
	err := r.db.QueryRow(ctx, query, jobID, candidateID).Scan(&exists)
	return exists, err
}

func (r *applicationRepo) GetByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	query := `SELECT a.id, a.job_id, a.candidate_id, a.created_at, p.title
	          FROM applications a
	          LEFT JOIN postings p ON a.job_id = p.id
	          WHERE a.candidate_id = $1
	          ORDER BY a.created_at DESC`

	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.CandidateID, &app.CreatedAt, &app.JobTitle); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}
