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

type OperatorRepository interface {
	Create(ctx context.Context, op *model.Operator) error
	FindByUsername(ctx context.Context, username string) (*model.Operator, error)
}

type pgOperatorRepository struct {
	db *sql.DB
}

func NewPgOperatorRepository(db *sql.DB) OperatorRepository {
	return &pgOperatorRepository{db: db}
}

func (r *pgOperatorRepository) Create(ctx context.Context, op *model.Operator) error {
	query := `INSERT INTO operators (id, username, hashed_password) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, op.ID, op.Username, op.HashedPassword)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("operator with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgOperatorRepository.Create: %w", err)
	}
	return nil
}

func (r *pgOperatorRepository) FindByUsername(ctx context.Context, username string) (*model.Operator, error) {
	query := `SELECT id, username, hashed_password, created_at FROM operators WHERE username = $1`
	op := &model.Operator{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&op.ID, &op.Username, &op.HashedPassword, &op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgOperatorRepository.FindByUsername: %w", err)
	}
	return op, nil
}
