package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-hiring-workflow/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postingRepo struct {
	db *pgxpool.Pool
}

func NewPostingRepository(db *pgxpool.Pool) domain.PostingRepository {
	return &postingRepo{db: db}
}

// marshalQuiz serializes a quiz for the jsonb column; nil stays NULL.
func marshalQuiz(q *domain.Quiz) (any, error) {
	if q == nil {
		return nil, nil
	}
	return json.Marshal(q)
}

func unmarshalQuiz(raw []byte) (*domain.Quiz, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var q domain.Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *postingRepo) Create(ctx context.Context, posting *domain.JobPosting) error {
	technical, err := marshalQuiz(posting.TechnicalAssessment)
	if err != nil {
		return err
	}
	hr, err := marshalQuiz(posting.HRAssessment)
	if err != nil {
		return err
	}

	query := `INSERT INTO postings (title, department, created_by, status, publication_state, technical_assessment, hr_assessment, expires_at, created_at, last_transition_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return r.db.QueryRow(ctx, query,
		posting.Title, posting.Department, posting.CreatedBy,
		posting.Status, nullablePublication(posting.PublicationState),
		technical, hr, posting.ExpiresAt,
		posting.CreatedAt, posting.LastTransitionAt,
	).Scan(&posting.ID)
}

func (r *postingRepo) GetByID(ctx context.Context, id int64) (*domain.JobPosting, error) {
	query := `SELECT id, title, department, created_by, status, COALESCE(publication_state, ''), technical_assessment, hr_assessment, expires_at, created_at, last_transition_at
	          FROM postings WHERE id = $1`

	var posting domain.JobPosting
	var technicalRaw, hrRaw []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&posting.ID, &posting.Title, &posting.Department, &posting.CreatedBy,
		&posting.Status, &posting.PublicationState,
		&technicalRaw, &hrRaw, &posting.ExpiresAt,
		&posting.CreatedAt, &posting.LastTransitionAt,
	)
	if err != nil {
		return nil, err
	}

	if posting.TechnicalAssessment, err = unmarshalQuiz(technicalRaw); err != nil {
		return nil, err
	}
	if posting.HRAssessment, err = unmarshalQuiz(hrRaw); err != nil {
		return nil, err
	}
	if posting.ApprovalHistory, err = r.fetchHistory(ctx, posting.ID); err != nil {
		return nil, err
	}
	return &posting, nil
}

// Save persists the posting state and appends any new approval history rows
// in a single transaction. History rows are append-only: the conflict target
// on (job_id, seq) makes replayed entries a no-op.
func (r *postingRepo) Save(ctx context.Context, posting *domain.JobPosting) error {
	technical, err := marshalQuiz(posting.TechnicalAssessment)
	if err != nil {
		return err
	}
	hr, err := marshalQuiz(posting.HRAssessment)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE postings SET
		title = $2,
		department = $3,
		status = $4,
		publication_state = $5,
		technical_assessment = $6,
		hr_assessment = $7,
		expires_at = $8,
		last_transition_at = $9
	WHERE id = $1`
	result, err := tx.Exec(ctx, query,
		posting.ID, posting.Title, posting.Department,
		posting.Status, nullablePublication(posting.PublicationState),
		technical, hr, posting.ExpiresAt, posting.LastTransitionAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	for _, decision := range posting.ApprovalHistory {
		conditions, err := json.Marshal(decision.Conditions)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO approval_history (job_id, seq, reviewer_id, reviewer_role, outcome, comments, conditions, decided_at)
		                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		                       ON CONFLICT (job_id, seq) DO NOTHING`,
			posting.ID, decision.Seq, decision.ReviewerID, decision.ReviewerRole,
			decision.Outcome, decision.Comments, conditions, decision.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postingRepo) Fetch(ctx context.Context, filter domain.PostingFilter, limit, offset int) ([]domain.JobPosting, int64, error) {
	where, args := buildPostingWhere(filter)

	orderBy := "created_at"
	switch filter.SortBy {
	case "last_transition_at", "title", "created_at":
		orderBy = filter.SortBy
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, title, department, created_by, status, COALESCE(publication_state, ''), technical_assessment, hr_assessment, expires_at, created_at, last_transition_at
	          FROM postings %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		where, orderBy, direction, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var postings []domain.JobPosting
	for rows.Next() {
		var posting domain.JobPosting
		var technicalRaw, hrRaw []byte
		if err := rows.Scan(
			&posting.ID, &posting.Title, &posting.Department, &posting.CreatedBy,
			&posting.Status, &posting.PublicationState,
			&technicalRaw, &hrRaw, &posting.ExpiresAt,
			&posting.CreatedAt, &posting.LastTransitionAt,
		); err != nil {
			return nil, 0, err
		}
		if posting.TechnicalAssessment, err = unmarshalQuiz(technicalRaw); err != nil {
			return nil, 0, err
		}
		if posting.HRAssessment, err = unmarshalQuiz(hrRaw); err != nil {
			return nil, 0, err
		}
		postings = append(postings, posting)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM postings " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return postings, total, nil
}

// FetchExpiryDue returns published postings whose scheduled expiry has
// passed. History is not loaded; the expiry sweep does not need it.
func (r *postingRepo) FetchExpiryDue(ctx context.Context, now time.Time, limit int) ([]domain.JobPosting, error) {
	query := `SELECT id, title, department, created_by, status, COALESCE(publication_state, ''), technical_assessment, hr_assessment, expires_at, created_at, last_transition_at
	          FROM postings
	          WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
	          ORDER BY expires_at ASC LIMIT $3`

	rows, err := r.db.Query(ctx, query, domain.StatusPublished, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []domain.JobPosting
	for rows.Next() {
		var posting domain.JobPosting
		var technicalRaw, hrRaw []byte
		if err := rows.Scan(
			&posting.ID, &posting.Title, &posting.Department, &posting.CreatedBy,
			&posting.Status, &posting.PublicationState,
			&technicalRaw, &hrRaw, &posting.ExpiresAt,
			&posting.CreatedAt, &posting.LastTransitionAt,
		); err != nil {
			return nil, err
		}
		if posting.TechnicalAssessment, err = unmarshalQuiz(technicalRaw); err != nil {
			return nil, err
		}
		if posting.HRAssessment, err = unmarshalQuiz(hrRaw); err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

func (r *postingRepo) fetchHistory(ctx context.Context, jobID int64) ([]domain.ApprovalDecision, error) {
	query := `SELECT seq, reviewer_id, reviewer_role, outcome, COALESCE(comments, ''), conditions, decided_at
	          FROM approval_history WHERE job_id = $1 ORDER BY seq ASC`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.ApprovalDecision
	for rows.Next() {
		decision := domain.ApprovalDecision{JobID: jobID}
		var conditionsRaw []byte
		if err := rows.Scan(
			&decision.Seq, &decision.ReviewerID, &decision.ReviewerRole,
			&decision.Outcome, &decision.Comments, &conditionsRaw, &decision.Timestamp,
		); err != nil {
			return nil, err
		}
		if len(conditionsRaw) > 0 {
			if err := json.Unmarshal(conditionsRaw, &decision.Conditions); err != nil {
				return nil, err
			}
		}
		history = append(history, decision)
	}
	return history, nil
}

func nullablePublication(state domain.PublicationState) any {
	if state == "" {
		return nil
	}
	return state
}

func buildPostingWhere(filter domain.PostingFilter) (string, []any) {
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

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.PublicationState != nil {
		add("publication_state = $%d", *filter.PublicationState)
	}
	if filter.NotExpiredAt != nil {
		add("(expires_at IS NULL OR expires_at >= $%d)", *filter.NotExpiredAt)
	}
	if filter.CreatedBy != "" {
		add("created_by = $%d", filter.CreatedBy)
	}
	if filter.Department != "" {
		add("department = $%d", filter.Department)
	}
	if filter.Search != "" {
		add("title ILIKE $%d", "%"+filter.Search+"%")
	}
	return clauses, args
}
