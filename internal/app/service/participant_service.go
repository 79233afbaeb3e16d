package service

import (
	"context"
	"sort"
	"strings"

	"linux_challenge/internal/common"
	"linux_challenge/internal/common/security"
	"linux_challenge/internal/domain/model"
	"linux_challenge/internal/domain/repository"

	"github.com/google/uuid"
)

type ParticipantService struct {
	participantRepo repository.ParticipantRepository
}

func NewParticipantService(participantRepo repository.ParticipantRepository) *ParticipantService {
	return &ParticipantService{participantRepo: participantRepo}
}

type JoinRequest struct {
	Name           string `json:"name"`
	RegisterNumber string `json:"register_number"`
}

type JoinResponse struct {
	Participant *model.Participant `json:"participant"`
	Token       string             `json:"token"`
}

func (s *ParticipantService) Join(ctx context.Context, req JoinRequest) (*JoinResponse, error) {
	name := strings.TrimSpace(req.Name)
	registerNumber := strings.TrimSpace(req.RegisterNumber)
	if name == "" || registerNumber == "" {
		return nil, common.Errorf("name and register number are required: %w", common.ErrBadRequest)
	}

	p := &model.Participant{
		ID:             uuid.NewString(),
		Name:           name,
		RegisterNumber: registerNumber,
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		return nil, common.Errorf("failed to create participant: %w", err)
	}

	token, err := security.GenerateToken(p.ID, model.RoleParticipant)
	if err != nil {
		return nil, common.Errorf("failed to generate token: %w", err)
	}
	return &JoinResponse{Participant: p, Token: token}, nil
}

func (s *ParticipantService) Get(ctx context.Context, id string) (*model.Participant, error) {
	return s.participantRepo.FindByID(ctx, id)
}

func (s *ParticipantService) List(ctx context.Context) ([]model.Participant, error) {
	return s.participantRepo.List(ctx)
}

// Leaderboard recomputes the full ranking. Cheap at session sizes of tens to
// low hundreds, so there is no incremental re-ranking.
func (s *ParticipantService) Leaderboard(ctx context.Context) ([]model.LeaderboardRow, error) {
	participants, err := s.participantRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(participants), nil
}

// Rank orders participants by descending score. The input must be in join
// order; the sort is stable, so equal scores keep that order. The tie-break
// is deliberately arbitrary — callers must not rely on name or time.
func Rank(participants []model.Participant) []model.LeaderboardRow {
	ordered := make([]model.Participant, len(participants))
	copy(ordered, participants)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	rows := make([]model.LeaderboardRow, len(ordered))
	for i, p := range ordered {
		rows[i] = model.LeaderboardRow{
			Rank:           i + 1,
			ParticipantID:  p.ID,
			Name:           p.Name,
			RegisterNumber: p.RegisterNumber,
			Score:          p.Score,
			Streak:         p.Streak,
		}
	}
	return rows
}
