package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalAccessDenied = errors.New("access denied to this goal")
	ErrInvalidGoal      = errors.New("invalid goal")
)

type GoalService interface {
	// CreateGoal makes goal the user's only active goal.
	CreateGoal(ctx context.Context, userID primitive.ObjectID, goal *domain.Goal) (*domain.Goal, error)
	UpdateGoal(ctx context.Context, userID primitive.ObjectID, goal *domain.Goal) (*domain.Goal, error)
	GetActiveGoal(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)
	ListGoals(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error)
}

type goalService struct {
	goalRepo repository.GoalRepository
}

func NewGoalService(goalRepo repository.GoalRepository) GoalService {
	return &goalService{goalRepo: goalRepo}
}

func (s *goalService) CreateGoal(ctx context.Context, userID primitive.ObjectID, goal *domain.Goal) (*domain.Goal, error) {
	normalizeGoal(goal)
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	goal.UserID = userID
	id, err := s.goalRepo.Create(ctx, goal)
	if err != nil {
		return nil, err
	}
	return s.goalRepo.GetByID(ctx, id)
}

// UpdateGoal is the explicit user edit; activity and ownership cannot change through it.
func (s *goalService) UpdateGoal(ctx context.Context, userID primitive.ObjectID, goal *domain.Goal) (*domain.Goal, error) {
	existing, err := s.goalRepo.GetByID(ctx, goal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrGoalAccessDenied
	}

	normalizeGoal(goal)
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	goal.UserID = userID
	goal.IsActive = existing.IsActive
	goal.CreatedAt = existing.CreatedAt
	if err := s.goalRepo.Update(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return s.goalRepo.GetByID(ctx, goal.ID)
}

func (s *goalService) GetActiveGoal(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (s *goalService) ListGoals(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error) {
	return s.goalRepo.ListByUser(ctx, userID)
}

func normalizeGoal(g *domain.Goal) {
	g.Category = domain.GoalCategory(strings.ToLower(strings.TrimSpace(string(g.Category))))
	g.Direction = domain.GoalDirection(strings.ToLower(strings.TrimSpace(string(g.Direction))))
	g.Unit = strings.ToLower(strings.TrimSpace(g.Unit))
	if g.Target != nil {
		g.Target.Exercise = strings.ToLower(strings.TrimSpace(g.Target.Exercise))
		g.Target.Metric = strings.ToLower(strings.TrimSpace(g.Target.Metric))
		if g.Target.Exercise == "" && g.Target.Metric == "" {
			g.Target = nil
		}
	}
}

func validateGoal(g *domain.Goal) error {
	if !domain.ValidCategory(g.Category) || !domain.ValidDirection(g.Direction) {
		return ErrInvalidGoal
	}
	if g.Value < 0 || g.Priority < 0 {
		return ErrInvalidGoal
	}
	return nil
}
