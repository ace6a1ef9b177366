package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("an exercise with this name already exists")
	ErrMealNotFound     = errors.New("meal not found")
	ErrMealExists       = errors.New("a meal with this name already exists")
	ErrValidationFailed = errors.New("catalog validation failed")
	ErrInvalidMealType  = errors.New("invalid meal type")
)

// Catalog is the seed file format: reference exercises and meals.
type Catalog struct {
	Exercises []domain.Exercise `json:"exercises"`
	Meals     []domain.Meal     `json:"meals"`
}

// SeedReport counts what a seed run inserted and skipped.
type SeedReport struct {
	ExercisesCreated int `json:"exercisesCreated"`
	ExercisesSkipped int `json:"exercisesSkipped"`
	MealsCreated     int `json:"mealsCreated"`
	MealsSkipped     int `json:"mealsSkipped"`
}

type CatalogService interface {
	CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)

	CreateMeal(ctx context.Context, meal *domain.Meal) (*domain.Meal, error)
	GetMealByID(ctx context.Context, mealID primitive.ObjectID) (*domain.Meal, error)
	ListMeals(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error)

	// Seed inserts every catalog entry, skipping names that already exist.
	Seed(ctx context.Context, catalog Catalog) (SeedReport, error)
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	exerciseRepo repository.ExerciseRepository
	mealRepo     repository.MealRepository
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(exerciseRepo repository.ExerciseRepository, mealRepo repository.MealRepository) CatalogService {
	return &catalogService{
		exerciseRepo: exerciseRepo,
		mealRepo:     mealRepo,
	}
}

func (s *catalogService) CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	if strings.TrimSpace(exercise.Name) == "" || strings.TrimSpace(exercise.BodyPart) == "" {
		return nil, ErrValidationFailed
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	return s.GetExerciseByID(ctx, id)
}

func (s *catalogService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *catalogService) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx, filter)
}

// UpdateExercise replaces the mutable fields of an existing exercise.
func (s *catalogService) UpdateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	if exercise.ID == primitive.NilObjectID || strings.TrimSpace(exercise.Name) == "" {
		return nil, ErrValidationFailed
	}
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrExerciseNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	return s.GetExerciseByID(ctx, exercise.ID)
}

func (s *catalogService) CreateMeal(ctx context.Context, meal *domain.Meal) (*domain.Meal, error) {
	if strings.TrimSpace(meal.Name) == "" || meal.Calories <= 0 || meal.Protein < 0 {
		return nil, ErrValidationFailed
	}
	for _, t := range meal.Types {
		if !validMealType(t) {
			return nil, ErrInvalidMealType
		}
	}
	id, err := s.mealRepo.Create(ctx, meal)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrMealExists
		}
		return nil, err
	}
	return s.GetMealByID(ctx, id)
}

func (s *catalogService) GetMealByID(ctx context.Context, mealID primitive.ObjectID) (*domain.Meal, error) {
	meal, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

func (s *catalogService) ListMeals(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error) {
	return s.mealRepo.List(ctx, filter)
}

func (s *catalogService) Seed(ctx context.Context, catalog Catalog) (SeedReport, error) {
	var report SeedReport
	for i := range catalog.Exercises {
		e := catalog.Exercises[i]
		if _, err := s.CreateExercise(ctx, &e); err != nil {
			if errors.Is(err, ErrExerciseExists) {
				report.ExercisesSkipped++
				continue
			}
			return report, err
		}
		report.ExercisesCreated++
	}
	for i := range catalog.Meals {
		m := catalog.Meals[i]
		if _, err := s.CreateMeal(ctx, &m); err != nil {
			if errors.Is(err, ErrMealExists) {
				report.MealsSkipped++
				continue
			}
			return report, err
		}
		report.MealsCreated++
	}
	log.Printf("INFO: Catalog seeded: %d exercises (%d skipped), %d meals (%d skipped)",
		report.ExercisesCreated, report.ExercisesSkipped, report.MealsCreated, report.MealsSkipped)
	return report, nil
}

func validMealType(t domain.MealType) bool {
	switch t {
	case domain.MealBreakfast, domain.MealLunch, domain.MealDinner, domain.MealSnack:
		return true
	}
	return false
}
