package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPreferences  = errors.New("invalid training preferences")
	ErrInvalidMetrics      = errors.New("invalid body metrics")
	ErrBlockedItemNotFound = errors.New("item is not blocked")
	ErrInvalidBlockedItem  = errors.New("invalid blocked item type")
)

var activityLevels = map[string]bool{
	"sedentary": true, "light": true, "moderate": true, "active": true, "very_active": true,
}

var strategies = map[string]bool{"": true, "aggressive": true, "balanced": true, "conservative": true}

// ProfileService manages the athlete's metrics, preferences and blocklist.
type ProfileService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, metrics domain.BodyMetrics, prefs domain.TrainingPreferences) (*domain.User, error)

	BlockItem(ctx context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error
	UnblockItem(ctx context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error
	ListBlocked(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error)
}

type profileService struct {
	userRepo     repository.UserRepository
	blockedRepo  repository.BlockedItemRepository
	exerciseRepo repository.ExerciseRepository
	mealRepo     repository.MealRepository
}

func NewProfileService(
	userRepo repository.UserRepository,
	blockedRepo repository.BlockedItemRepository,
	exerciseRepo repository.ExerciseRepository,
	mealRepo repository.MealRepository,
) ProfileService {
	return &profileService{
		userRepo:     userRepo,
		blockedRepo:  blockedRepo,
		exerciseRepo: exerciseRepo,
		mealRepo:     mealRepo,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile validates and stores metrics and preferences. A changed
// split only affects sessions generated from now on.
func (s *profileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, metrics domain.BodyMetrics, prefs domain.TrainingPreferences) (*domain.User, error) {
	if err := validateMetrics(metrics); err != nil {
		return nil, err
	}
	prefs.SplitTemplate = strings.ToLower(strings.TrimSpace(prefs.SplitTemplate))
	prefs.Strategy = strings.ToLower(strings.TrimSpace(prefs.Strategy))
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, metrics, prefs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func validateMetrics(m domain.BodyMetrics) error {
	if m.WeightKg < 0 || m.HeightCm < 0 || m.Age < 0 || m.Age > 120 {
		return ErrInvalidMetrics
	}
	if m.Sex != "" && m.Sex != domain.SexMale && m.Sex != domain.SexFemale {
		return ErrInvalidMetrics
	}
	if m.ActivityLevel != "" && !activityLevels[m.ActivityLevel] {
		return ErrInvalidMetrics
	}
	return nil
}

func validatePreferences(p domain.TrainingPreferences) error {
	if p.SplitTemplate != "" {
		if _, ok := planner.BuiltinTemplate(p.SplitTemplate); !ok {
			return ErrInvalidPreferences
		}
	}
	if p.DaysPerWeek < 0 || p.DaysPerWeek > 7 || !strategies[p.Strategy] {
		return ErrInvalidPreferences
	}
	if d := p.Distribution; d != nil {
		if d.Heavy < 0 || d.Moderate < 0 || d.Light < 0 || math.Abs(d.Heavy+d.Moderate+d.Light-1) > 0.02 {
			return ErrInvalidPreferences
		}
	}
	for _, pf := range p.PriorityFrequency {
		if strings.TrimSpace(pf.BodyPart) == "" || pf.Frequency < 1 || pf.Frequency > 7 {
			return ErrInvalidPreferences
		}
	}
	for _, slot := range p.MealSlots {
		if !validMealType(slot) {
			return ErrInvalidMealType
		}
	}
	return nil
}

// BlockItem excludes an existing exercise or meal from every future selection.
func (s *profileService) BlockItem(ctx context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error {
	switch itemType {
	case domain.ItemExercise:
		if _, err := s.exerciseRepo.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrExerciseNotFound
			}
			return err
		}
	case domain.ItemMeal:
		if _, err := s.mealRepo.GetByID(ctx, itemID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMealNotFound
			}
			return err
		}
	default:
		return ErrInvalidBlockedItem
	}
	return s.blockedRepo.Block(ctx, &domain.BlockedItem{UserID: userID, ItemType: itemType, ItemID: itemID})
}

func (s *profileService) UnblockItem(ctx context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error {
	if err := s.blockedRepo.Unblock(ctx, userID, itemType, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBlockedItemNotFound
		}
		return err
	}
	return nil
}

func (s *profileService) ListBlocked(ctx context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error) {
	return s.blockedRepo.ListByUser(ctx, userID)
}
