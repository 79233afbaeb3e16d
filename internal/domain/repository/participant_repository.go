package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	FindByID(ctx context.Context, id string) (*model.Participant, error)
	// List returns every participant in join order (insertion order), which
	// is the leaderboard tie-break.
	List(ctx context.Context) ([]model.Participant, error)
	// ApplyCorrect atomically adds points and bumps the streak.
	ApplyCorrect(ctx context.Context, id string, points int) error
	ResetStreak(ctx context.Context, id string) error
	// DeductPoints subtracts cost from the score, clamped at zero.
	DeductPoints(ctx context.Context, id string, cost int) error
}

type pgParticipantRepository struct {
	db *sql.DB
}

func NewPgParticipantRepository(db *sql.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

func (r *pgParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	query := `INSERT INTO participants (id, name, register_number)
	          VALUES ($1, $2, $3)
	          RETURNING score, streak, joined_at, seq`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.RegisterNumber).
		Scan(&p.Score, &p.Streak, &p.JoinedAt, &p.Seq)
	if err != nil {
		return fmt.Errorf("pgParticipantRepository.Create: %w", err)
	}
	return nil
}

func (r *pgParticipantRepository) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	query := `SELECT id, name, register_number, score, streak, joined_at, seq
	          FROM participants WHERE id = $1`
	p := &model.Participant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.RegisterNumber, &p.Score, &p.Streak, &p.JoinedAt, &p.Seq,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgParticipantRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgParticipantRepository) List(ctx context.Context) ([]model.Participant, error) {
	query := `SELECT id, name, register_number, score, streak, joined_at, seq
	          FROM participants ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.List: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.RegisterNumber, &p.Score, &p.Streak, &p.JoinedAt, &p.Seq); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.List scan: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *pgParticipantRepository) ApplyCorrect(ctx context.Context, id string, points int) error {
	query := `UPDATE participants SET score = score + $1, streak = streak + 1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, points, id)
	if err != nil {
		return fmt.Errorf("pgParticipantRepository.ApplyCorrect: %w", err)
	}
	return ensureRowAffected(res)
}

func (r *pgParticipantRepository) ResetStreak(ctx context.Context, id string) error {
	query := `UPDATE participants SET streak = 0 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgParticipantRepository.ResetStreak: %w", err)
	}
	return ensureRowAffected(res)
}

func (r *pgParticipantRepository) DeductPoints(ctx context.Context, id string, cost int) error {
	query := `UPDATE participants SET score = GREATEST(score - $1, 0) WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, cost, id)
	if err != nil {
		return fmt.Errorf("pgParticipantRepository.DeductPoints: %w", err)
	}
	return ensureRowAffected(res)
}

func ensureRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
