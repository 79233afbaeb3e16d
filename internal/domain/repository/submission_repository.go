package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type SubmissionRepository interface {
	// Create inserts an immutable submission row. It returns
	// common.ErrDuplicate when a row for (participant, task) already exists
	// and common.ErrFirstSolverTaken when the first-solver claim lost; both
	// come out of unique constraints, so two near-simultaneous calls can
	// never both score.
	Create(ctx context.Context, sub *model.Submission) error
	FindByParticipantAndTask(ctx context.Context, participantID, taskID string) (*model.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]model.ActivityEntry, error)
	// RecordHintUsage charges exactly once per (participant, task);
	// a second call returns common.ErrDuplicate and must not re-charge.
	RecordHintUsage(ctx context.Context, usage *model.HintUsage) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions
	            (id, participant_id, task_id, answer, is_correct, points, is_first_solver, client_submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING submitted_at`
	err := r.db.QueryRowContext(ctx, query,
		sub.ID, sub.ParticipantID, sub.TaskID, sub.Answer,
		sub.IsCorrect, sub.Points, sub.IsFirstSolver, sub.ClientSubmittedAt,
	).Scan(&sub.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "submissions_participant_task_key":
				return fmt.Errorf("submission already exists for participant/task: %w", common.ErrDuplicate)
			case "submissions_first_solver_idx":
				return fmt.Errorf("task already has a first solver: %w", common.ErrFirstSolverTaken)
			}
		}
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByParticipantAndTask(ctx context.Context, participantID, taskID string) (*model.Submission, error) {
	query := `SELECT id, participant_id, task_id, answer, is_correct, points, is_first_solver, client_submitted_at, submitted_at
	          FROM submissions WHERE participant_id = $1 AND task_id = $2`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, participantID, taskID).Scan(
		&sub.ID, &sub.ParticipantID, &sub.TaskID, &sub.Answer,
		&sub.IsCorrect, &sub.Points, &sub.IsFirstSolver, &sub.ClientSubmittedAt, &sub.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByParticipantAndTask: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListRecent(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	query := `SELECT s.id, p.name, s.is_correct, s.points, s.is_first_solver, s.submitted_at
	          FROM submissions s
	          JOIN participants p ON p.id = s.participant_id
	          ORDER BY s.submitted_at DESC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListRecent: %w", err)
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(&e.ID, &e.ParticipantName, &e.IsCorrect, &e.Points, &e.IsFirstSolver, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListRecent scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgSubmissionRepository) RecordHintUsage(ctx context.Context, usage *model.HintUsage) error {
	query := `INSERT INTO hint_usages (participant_id, task_id, cost)
	          VALUES ($1, $2, $3)
	          RETURNING used_at`
	err := r.db.QueryRowContext(ctx, query, usage.ParticipantID, usage.TaskID, usage.Cost).Scan(&usage.UsedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("hint already used for this task: %w", common.ErrDuplicate)
		}
		return fmt.Errorf("pgSubmissionRepository.RecordHintUsage: %w", err)
	}
	return nil
}
