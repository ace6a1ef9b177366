package service

import (
	"context"
	"errors"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSetNotFound        = errors.New("exercise set not found")
	ErrDailyMealNotFound  = errors.New("daily meal not found")
	ErrInvalidPerformance = errors.New("invalid performance values")
)

// TrackingService records what the athlete actually did.
type TrackingService interface {
	CompleteSet(ctx context.Context, userID, setID primitive.ObjectID, actualWeight float64, actualReps int, rpe *float64) (*domain.ExerciseSet, error)
	CompleteMeal(ctx context.Context, userID, dailyMealID primitive.ObjectID) (*domain.DailyMeal, error)
}

type trackingService struct {
	planRepo repository.PlanRepository
}

func NewTrackingService(planRepo repository.PlanRepository) TrackingService {
	return &trackingService{planRepo: planRepo}
}

// CompleteSet records actual performance. A completed set is immutable.
func (s *trackingService) CompleteSet(ctx context.Context, userID, setID primitive.ObjectID, actualWeight float64, actualReps int, rpe *float64) (*domain.ExerciseSet, error) {
	if actualWeight < 0 || actualReps < 0 || (rpe != nil && (*rpe < 1 || *rpe > 10)) {
		return nil, ErrInvalidPerformance
	}

	set, err := s.planRepo.GetSet(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	if set.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	if set.Completed {
		return nil, planner.NewError(planner.KindImmutableItem, "set is already completed")
	}

	if err := s.planRepo.CompleteSet(ctx, setID, actualWeight, actualReps, rpe); err != nil {
		switch {
		case errors.Is(err, repository.ErrUpdateFailed):
			return nil, planner.NewError(planner.KindImmutableItem, "set is already completed")
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	return s.planRepo.GetSet(ctx, setID)
}

func (s *trackingService) CompleteMeal(ctx context.Context, userID, dailyMealID primitive.ObjectID) (*domain.DailyMeal, error) {
	meal, err := s.planRepo.GetDailyMeal(ctx, dailyMealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDailyMealNotFound
		}
		return nil, err
	}
	if meal.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	if meal.Completed {
		return nil, planner.NewError(planner.KindImmutableItem, "meal is already completed")
	}

	if err := s.planRepo.CompleteDailyMeal(ctx, dailyMealID); err != nil {
		switch {
		case errors.Is(err, repository.ErrUpdateFailed):
			return nil, planner.NewError(planner.KindImmutableItem, "meal is already completed")
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrDailyMealNotFound
		}
		return nil, err
	}
	return s.planRepo.GetDailyMeal(ctx, dailyMealID)
}
