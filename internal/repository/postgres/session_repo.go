package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"go-hiring-workflow/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) domain.SessionRepository {
	return &sessionRepo{db: db}
}

func marshalResult(r *domain.StageResult) (any, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func unmarshalResult(raw []byte) (*domain.StageResult, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var result domain.StageResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.AssessmentSession) error {
	query := `INSERT INTO assessment_sessions (application_id, job_id, candidate_id, stage, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query,
		session.ApplicationID, session.JobID, session.CandidateID,
		session.Stage, session.CreatedAt,
	)
	return err
}

const sessionColumns = `application_id, job_id, candidate_id, stage,
	technical_result, hr_result,
	technical_started_at, technical_expires_at, hr_started_at, hr_expires_at,
	created_at`

func (r *sessionRepo) GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*domain.AssessmentSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessment_sessions WHERE application_id = $1`, sessionColumns)

	var session domain.AssessmentSession
	var technicalRaw, hrRaw []byte
	err := r.db.QueryRow(ctx, query, applicationID).Scan(
		&session.ApplicationID, &session.JobID, &session.CandidateID, &session.Stage,
		&technicalRaw, &hrRaw,
		&session.TechnicalStartedAt, &session.TechnicalExpiresAt,
		&session.HRStartedAt, &session.HRExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if session.TechnicalResult, err = unmarshalResult(technicalRaw); err != nil {
		return nil, err
	}
	if session.HRResult, err = unmarshalResult(hrRaw); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Save(ctx context.Context, session *domain.AssessmentSession) error {
	technical, err := marshalResult(session.TechnicalResult)
	if err != nil {
		return err
	}
	hr, err := marshalResult(session.HRResult)
	if err != nil {
		return err
	}

	query := `UPDATE assessment_sessions SET
		stage = $2,
		technical_result = $3,
		hr_result = $4,
		technical_started_at = $5,
		technical_expires_at = $6,
		hr_started_at = $7,
		hr_expires_at = $8
	WHERE application_id = $1`
	result, err := r.db.Exec(ctx, query,
		session.ApplicationID, session.Stage, technical, hr,
		session.TechnicalStartedAt, session.TechnicalExpiresAt,
		session.HRStartedAt, session.HRExpiresAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) Fetch(ctx context.Context, filter domain.SessionFilter, limit, offset int) ([]domain.AssessmentSession, int64, error) {
	where, args := buildSessionWhere(filter)

	query := fmt.Sprintf(`SELECT %s FROM assessment_sessions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		sessionColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []domain.AssessmentSession
	for rows.Next() {
		var session domain.AssessmentSession
		var technicalRaw, hrRaw []byte
		if err := rows.Scan(
			&session.ApplicationID, &session.JobID, &session.CandidateID, &session.Stage,
			&technicalRaw, &hrRaw,
			&session.TechnicalStartedAt, &session.TechnicalExpiresAt,
			&session.HRStartedAt, &session.HRExpiresAt,
			&session.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		if session.TechnicalResult, err = unmarshalResult(technicalRaw); err != nil {
			return nil, 0, err
		}
		if session.HRResult, err = unmarshalResult(hrRaw); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, session)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM assessment_sessions " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func buildSessionWhere(filter domain.SessionFilter) (string, []any) {
	clauses := ""
	var args []any
	add := func(condition string, value any) {
		args = append(args, value)
		if clauses == "" {
			clauses = fmt.Sprintf("WHERE %s", fmt.Sprintf(condition, len(args)))
		} else {
			clauses += fmt.Sprintf(" AND %s", fmt.Sprintf(condition, len(args)))
		}
	}

	if filter.JobID != nil {
		add("job_id = $%d", *filter.JobID)
	}
	if filter.CandidateID != "" {
		add("candidate_id = $%d", filter.CandidateID)
	}
	if filter.Stage != nil {
		add("stage = $%d", *filter.Stage)
	}
	return clauses, args
}
