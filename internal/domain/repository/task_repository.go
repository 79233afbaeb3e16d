package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	// ListByRound returns the round's tasks in insertion order.
	ListByRound(ctx context.Context, round int) ([]model.Task, error)
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

const taskColumns = `id, round, seq, slug, text, kind, correct_answer, acceptable_answers, difficulty, created_at, updated_at`

func (r *pgTaskRepository) Create(ctx context.Context, t *model.Task) error {
	acceptable, err := json.Marshal(t.AcceptableAnswers)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create marshal: %w", err)
	}
	query := `INSERT INTO tasks (id, round, slug, text, kind, correct_answer, acceptable_answers, difficulty)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING seq, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		t.ID, t.Round, t.Slug, t.Text, t.Kind, t.CorrectAnswer, acceptable, t.Difficulty,
	).Scan(&t.Seq, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) Update(ctx context.Context, t *model.Task) error {
	acceptable, err := json.Marshal(t.AcceptableAnswers)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Update marshal: %w", err)
	}
	query := `UPDATE tasks SET
	            round = $1, slug = $2, text = $3, kind = $4, correct_answer = $5,
	            acceptable_answers = $6, difficulty = $7, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		t.Round, t.Slug, t.Text, t.Kind, t.CorrectAnswer, acceptable, t.Difficulty, t.ID,
	)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Update: %w", err)
	}
	return ensureRowAffected(res)
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Delete: %w", err)
	}
	return ensureRowAffected(res)
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTaskRepository) List(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY round ASC, seq ASC`
	return r.queryTasks(ctx, query)
}

func (r *pgTaskRepository) ListByRound(ctx context.Context, round int) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE round = $1 ORDER BY seq ASC`
	return r.queryTasks(ctx, query, round)
}

func (r *pgTaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.queryTasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("pgTaskRepository.queryTasks scan: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	t := &model.Task{}
	var acceptable []byte
	err := row.Scan(
		&t.ID, &t.Round, &t.Seq, &t.Slug, &t.Text, &t.Kind,
		&t.CorrectAnswer, &acceptable, &t.Difficulty, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(acceptable) > 0 {
		if err := json.Unmarshal(acceptable, &t.AcceptableAnswers); err != nil {
			return nil, fmt.Errorf("decode acceptable_answers: %w", err)
		}
	}
	return t, nil
}
