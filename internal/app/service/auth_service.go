package service

import (
	"context"
	"errors"

	"linux_challenge/internal/common"
	"linux_challenge/internal/common/security"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthService struct {
	operatorRepo repository.OperatorRepository
	logger       zerolog.Logger
}

func NewAuthService(operatorRepo repository.OperatorRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		operatorRepo: operatorRepo,
		logger:       logger.With().Str("component", "auth").Logger(),
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Operator *model.Operator `json:"operator"`
	Token    string          `json:"token"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	op, err := s.operatorRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // generic message on purpose
		}
		return nil, common.Errorf("failed to find operator: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, op.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(op.ID, model.RoleOperator)
	if err != nil {
		return nil, common.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Operator: op, Token: token}, nil
}

// EnsureOperator seeds the operator account from configuration when the
// table has no row for that username yet.
func (s *AuthService) EnsureOperator(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.logger.Warn().Msg("No operator credentials configured, skipping bootstrap")
		return nil
	}
	_, err := s.operatorRepo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return common.Errorf("failed to hash operator password: %w", err)
	}
	op := &model.Operator{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashed,
	}
	if err := s.operatorRepo.Create(ctx, op); err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Msg("Operator account created")
	return nil
}
