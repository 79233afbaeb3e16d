package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linux_challenge/internal/common"
	"linux_challenge/internal/domain/model"
)

// SessionRepository stores the singleton session-state record. Writes go
// through CompareAndSwap on the version column so that two concurrent
// operator actions cannot silently overwrite each other.
type SessionRepository interface {
	Init(ctx context.Context) error
	Get(ctx context.Context) (*model.SessionState, error)
	// CompareAndSwap persists state if the stored version still equals
	// expectedVersion, bumping the version on success. Returns
	// common.ErrConflict when the row moved underneath the caller.
	CompareAndSwap(ctx context.Context, expectedVersion int64, state *model.SessionState) error
}

type pgSessionRepository struct {
	db *sql.DB
}

func NewPgSessionRepository(db *sql.DB) SessionRepository {
	return &pgSessionRepository{db: db}
}

func (r *pgSessionRepository) Init(ctx context.Context) error {
	query := `INSERT INTO session_state (id) VALUES (1) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("pgSessionRepository.Init: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) Get(ctx context.Context) (*model.SessionState, error) {
	query := `SELECT version, status, current_round, current_task_index, round_end_time,
	                 round_duration_seconds, base_points, max_speed_bonus, hint_cost,
	                 broadcast_message, broadcast_at, updated_at
	          FROM session_state WHERE id = 1`
	s := &model.SessionState{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.Version, &s.Status, &s.CurrentRound, &s.CurrentTaskIndex, &s.RoundEndTime,
		&s.RoundDurationSeconds, &s.BasePoints, &s.MaxSpeedBonus, &s.HintCost,
		&s.BroadcastMessage, &s.BroadcastAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSessionRepository.Get: %w", err)
	}
	return s, nil
}

func (r *pgSessionRepository) CompareAndSwap(ctx context.Context, expectedVersion int64, s *model.SessionState) error {
	query := `UPDATE session_state SET
	            version = $1, status = $2, current_round = $3, current_task_index = $4,
	            round_end_time = $5, round_duration_seconds = $6, base_points = $7,
	            max_speed_bonus = $8, hint_cost = $9, broadcast_message = $10,
	            broadcast_at = $11, updated_at = CURRENT_TIMESTAMP
	          WHERE id = 1 AND version = $12`
	res, err := r.db.ExecContext(ctx, query,
		expectedVersion+1, s.Status, s.CurrentRound, s.CurrentTaskIndex,
		s.RoundEndTime, s.RoundDurationSeconds, s.BasePoints,
		s.MaxSpeedBonus, s.HintCost, s.BroadcastMessage,
		s.BroadcastAt, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("pgSessionRepository.CompareAndSwap: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session state modified concurrently: %w", common.ErrConflict)
	}
	s.Version = expectedVersion + 1
	return nil
}
