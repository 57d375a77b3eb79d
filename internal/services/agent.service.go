package services

import (
	"context"
	"strings"

	"github.com/nimasrn/marketplace/internal/model"
)

type AgentRepository interface {
	Create(ctx context.Context, userID int64, region string) (*model.Agent, error)
	GetByID(ctx context.Context, id int64) (*model.Agent, error)
	List(ctx context.Context, page model.Page) ([]*model.Agent, int64, error)
	Update(ctx context.Context, id int64, region string) error
	Delete(ctx context.Context, id int64) error
}

type AgentService struct {
	users  UserGetter
	agents AgentRepository
}

func NewAgentService(users UserGetter, agents AgentRepository) *AgentService {
	return &AgentService{users: users, agents: agents}
}

func (s *AgentService) Create(ctx context.Context, req model.AgentRequest) (*model.Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	return s.agents.Create(ctx, req.UserID, strings.TrimSpace(req.Region))
}

func (s *AgentService) Get(ctx context.Context, id int64) (*model.Agent, error) {
	return s.agents.GetByID(ctx, id)
}

func (s *AgentService) List(ctx context.Context, page model.Page) ([]*model.Agent, int64, error) {
	return s.agents.List(ctx, page)
}

func (s *AgentService) Update(ctx context.Context, id int64, req model.AgentRequest) (*model.Agent, error) {
	if err := s.agents.Update(ctx, id, strings.TrimSpace(req.Region)); err != nil {
		return nil, err
	}
	return s.agents.GetByID(ctx, id)
}

func (s *AgentService) Delete(ctx context.Context, id int64) error {
	return s.agents.Delete(ctx, id)
}
