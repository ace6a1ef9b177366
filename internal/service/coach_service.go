package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrPlanNotFound     = errors.New("no plan for this date")
	ErrPlanAccessDenied = errors.New("access denied to this plan")
	ErrSetNotInSession  = errors.New("set does not belong to this session")
	ErrArchiveNotFound  = errors.New("no archived plan for this date")
	ErrArchiveDisabled  = errors.New("plan archive is not configured")
	ErrDownloadURLError = errors.New("failed to generate download URL")
)

const archiveTimeout = 10 * time.Second

// DailyPlan is one persisted day: the session with its sets and meals.
type DailyPlan struct {
	Session *domain.WorkoutSession `json:"session"`
	Sets    []domain.ExerciseSet   `json:"sets"`
	Meals   []domain.DailyMeal     `json:"meals"`
}

// GeneratedPlan is a freshly committed plan together with how it was derived.
type GeneratedPlan struct {
	DailyPlan
	RunID           string                  `json:"runId"`
	WorkoutIntent   planner.WorkoutIntent   `json:"workoutIntent"`
	NutritionIntent planner.NutritionIntent `json:"nutritionIntent"`
	Fatigue         planner.FatigueReport   `json:"fatigue"`
	WorkoutAttempts int                     `json:"workoutAttempts"`
	MealAttempts    int                     `json:"mealAttempts"`
	Warnings        []string                `json:"warnings,omitempty"`
}

// CoachService generates and edits daily plans.
type CoachService interface {
	// GenerateDailyPlan succeeds at most once per user and date.
	GenerateDailyPlan(ctx context.Context, userID primitive.ObjectID, date string) (*GeneratedPlan, error)
	RegenerateSingleExercise(ctx context.Context, userID, sessionID, setID primitive.ObjectID) (*domain.Exercise, error)
	RegenerateSingleMeal(ctx context.Context, userID, dailyMealID primitive.ObjectID) (*domain.Meal, error)

	GetDailyPlan(ctx context.Context, userID primitive.ObjectID, date string) (*DailyPlan, error)
	GetWeeklySchedule(ctx context.Context, userID primitive.ObjectID) ([]planner.WeeklySession, error)
	GetPlanArchiveURL(ctx context.Context, userID primitive.ObjectID, date string) (string, error)
}

// CoachDeps wires the coach service. Archive may be nil to disable archiving;
// Rand may be nil to draw from an entropy-seeded source.
type CoachDeps struct {
	Users     repository.UserRepository
	Goals     repository.GoalRepository
	Exercises repository.ExerciseRepository
	Meals     repository.MealRepository
	Plans     repository.PlanRepository
	Blocked   repository.BlockedItemRepository
	Archives  repository.PlanArchiveRepository

	Generator     planner.TextGenerator
	Tuning        planner.Tuning
	Archive       storage.PlanArchive
	ArchivePrefix string
	Rand          func() *rand.Rand
}

type coachService struct {
	userRepo     repository.UserRepository
	goalRepo     repository.GoalRepository
	exerciseRepo repository.ExerciseRepository
	mealRepo     repository.MealRepository
	planRepo     repository.PlanRepository
	blockedRepo  repository.BlockedItemRepository
	archiveRepo  repository.PlanArchiveRepository

	orch          *planner.Orchestrator
	archive       storage.PlanArchive
	archivePrefix string
	newRand       func() *rand.Rand
}

func NewCoachService(deps CoachDeps) CoachService {
	newRand := deps.Rand
	if newRand == nil {
		newRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &coachService{
		userRepo:      deps.Users,
		goalRepo:      deps.Goals,
		exerciseRepo:  deps.Exercises,
		mealRepo:      deps.Meals,
		planRepo:      deps.Plans,
		blockedRepo:   deps.Blocked,
		archiveRepo:   deps.Archives,
		orch:          planner.NewOrchestrator(deps.Generator, deps.Tuning),
		archive:       deps.Archive,
		archivePrefix: deps.ArchivePrefix,
		newRand:       newRand,
	}
}

// snapshot is the point-in-time read a generation run works from.
type snapshot struct {
	user        *domain.User
	goal        *domain.Goal
	history     []planner.HistoricalSession
	recentMeals map[string]bool
	exercises   []domain.Exercise
	meals       []domain.Meal
	blocked     []domain.BlockedItem
}

func (s *coachService) loadSnapshot(ctx context.Context, userID primitive.ObjectID, day time.Time) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.userRepo.GetByID(gctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		snap.user = user
		return nil
	})
	g.Go(func() error {
		goal, err := s.goalRepo.GetActive(gctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		snap.goal = goal
		return err
	})
	g.Go(func() error {
		var err error
		snap.history, snap.recentMeals, err = s.loadHistory(gctx, userID, day)
		return err
	})
	g.Go(func() error {
		var err error
		snap.exercises, err = s.exerciseRepo.List(gctx, repository.ExerciseFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.meals, err = s.mealRepo.List(gctx, repository.MealFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.blocked, err = s.blockedRepo.ListByUser(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// loadHistory reads the sessions before day within the history window, with
// their sets, plus the names of meals eaten inside the recency window.
func (s *coachService) loadHistory(ctx context.Context, userID primitive.ObjectID, day time.Time) ([]planner.HistoricalSession, map[string]bool, error) {
	t := s.orch.Tuning()
	from := day.AddDate(0, 0, -t.HistoryDays).Format(domain.DateLayout)
	to := day.AddDate(0, 0, -1).Format(domain.DateLayout)

	sessions, err := s.planRepo.ListSessions(ctx, userID, from, to)
	if err != nil {
		return nil, nil, err
	}
	if len(sessions) == 0 {
		return nil, map[string]bool{}, nil
	}

	ids := make([]primitive.ObjectID, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	sets, err := s.planRepo.ListSets(ctx, ids...)
	if err != nil {
		return nil, nil, err
	}
	bySession := make(map[primitive.ObjectID][]domain.ExerciseSet)
	for _, set := range sets {
		bySession[set.SessionID] = append(bySession[set.SessionID], set)
	}

	recentCutoff := day.AddDate(0, 0, -t.RecencyWindowDays)
	var recentIDs []primitive.ObjectID
	history := make([]planner.HistoricalSession, 0, len(sessions))
	for _, sess := range sessions {
		date, err := time.Parse(domain.DateLayout, sess.Date)
		if err != nil {
			log.Printf("WARN: Skipping session %s with malformed date %q", sess.ID.Hex(), sess.Date)
			continue
		}
		history = append(history, planner.HistoricalSession{
			Date:      date,
			DayLabel:  sess.DayLabel,
			BodyParts: sess.BodyParts,
			Intensity: sess.Intensity,
			Sets:      bySession[sess.ID],
		})
		if !date.Before(recentCutoff) {
			recentIDs = append(recentIDs, sess.ID)
		}
	}

	recentMeals := make(map[string]bool)
	if len(recentIDs) > 0 {
		meals, err := s.planRepo.ListDailyMeals(ctx, recentIDs...)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range meals {
			recentMeals[normalizeName(m.MealName)] = true
		}
	}
	return history, recentMeals, nil
}

// GenerateDailyPlan runs the full pipeline for one user and date and commits
// the session, its sets and its meals together, or nothing.
func (s *coachService) GenerateDailyPlan(ctx context.Context, userID primitive.ObjectID, date string) (*GeneratedPlan, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := s.planRepo.GetSessionByDate(ctx, userID, date); err == nil {
		return nil, duplicateSession(date)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if snap.goal == nil {
		return nil, planner.ErrNoActiveGoal
	}

	tuning := s.orch.Tuning()
	fatigue := planner.DetectFatigue(snap.history, day, tuning.FatigueLookbackDays)
	wi, ni, err := planner.CompileIntent(planner.IntentInput{
		Goal:    snap.goal,
		History: snap.history,
		Split:   splitFor(snap.user.Preferences),
		Metrics: snap.user.Metrics,
		Fatigue: fatigue,
	})
	if err != nil {
		return nil, err
	}

	rng := s.newRand()
	exEx := exclusions(snap.blocked, domain.ItemExercise, recentExerciseNames(snap.history, day, tuning.RecencyWindowDays))
	selected, err := planner.SelectWorkout(rng, snap.exercises, wi, exEx, tuning)
	if err != nil {
		return nil, err
	}
	wc := planner.BuildWorkoutConstraints(wi, selected, snap.history)

	slots := mealSlots(snap.user.Preferences)
	candidates, err := planner.SelectMealSlots(rng, snap.meals, slots, exclusions(snap.blocked, domain.ItemMeal, snap.recentMeals), tuning)
	if err != nil {
		return nil, err
	}
	mc := planner.BuildMealConstraints(ni, candidates, tuning)

	wo, err := s.orch.GenerateWorkout(ctx, wc)
	if err != nil {
		log.Printf("WARN: Workout generation failed for user %s on %s: %v", userID.Hex(), date, err)
		return nil, err
	}
	mo, err := s.orch.GenerateMeals(ctx, mc)
	if err != nil {
		log.Printf("WARN: Meal generation failed for user %s on %s: %v", userID.Hex(), date, err)
		return nil, err
	}

	runID := uuid.NewString()
	session := &domain.WorkoutSession{
		UserID:        userID,
		Date:          date,
		DayLabel:      wi.DayLabel,
		BodyParts:     wi.BodyParts,
		Intensity:     string(wi.Intensity),
		Title:         sessionTitle(wi),
		Explanation:   wo.Blueprint.Explanation,
		NutritionNote: mo.Blueprint.Explanation,
		CalorieTarget: ni.CalorieTarget,
		ProteinMin:    ni.ProteinMin,
		RunID:         runID,
	}
	sets := buildSets(wo.Blueprint, wc, selected, userID, 0)
	meals := buildDailyMeals(planner.ResolveMeals(mo.Blueprint, mc), userID, slots)

	if err := s.planRepo.SaveDailyPlan(ctx, session, sets, meals); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateSession(date)
		}
		return nil, err
	}
	log.Printf("INFO: Plan %s committed for user %s on %s (workout attempts %d, meal attempts %d)",
		runID, userID.Hex(), date, wo.Attempts, mo.Attempts)

	plan := &GeneratedPlan{
		DailyPlan:       DailyPlan{Session: session, Sets: sets, Meals: meals},
		RunID:           runID,
		WorkoutIntent:   wi,
		NutritionIntent: ni,
		Fatigue:         fatigue,
		WorkoutAttempts: wo.Attempts,
		MealAttempts:    mo.Attempts,
		Warnings:        append(append([]string(nil), wo.Result.Warnings...), mo.Result.Warnings...),
	}
	s.archivePlan(ctx, plan)
	return plan, nil
}

// RegenerateSingleExercise swaps the exercise behind setID for another one of
// the same body part and kind. All of that exercise's sets are replaced.
func (s *coachService) RegenerateSingleExercise(ctx context.Context, userID, sessionID, setID primitive.ObjectID) (*domain.Exercise, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	target, err := s.planRepo.GetSet(ctx, setID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	if target.SessionID != sessionID {
		return nil, ErrSetNotInSession
	}

	sessionSets, err := s.planRepo.ListSets(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	used := make(map[primitive.ObjectID]bool)
	for _, set := range sessionSets {
		used[set.ExerciseID] = true
		if set.ExerciseID == target.ExerciseID && set.Completed {
			return nil, planner.NewError(planner.KindImmutableItem, "exercise has completed sets")
		}
	}

	bodyPart, compound := s.exerciseProfile(ctx, target, session)
	day, err := parseDate(session.Date)
	if err != nil {
		return nil, err
	}
	history, _, err := s.loadHistory(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.exerciseRepo.List(ctx, repository.ExerciseFilter{BodyParts: []string{bodyPart}})
	if err != nil {
		return nil, err
	}

	tuning := s.orch.Tuning()
	fatigue := planner.DetectFatigue(history, day, tuning.FatigueLookbackDays)
	ex := exclusions(blocked, domain.ItemExercise, recentExerciseNames(history, day, tuning.RecencyWindowDays))
	ex.Used = used

	var intent planner.WorkoutIntent
	if bodyPart == domain.BodyPartCardio {
		intent = planner.CardioReplacementIntent(target.PlannedReps, fatigue.ShouldDeload)
	} else {
		intent = planner.ReplacementIntent(planner.Intensity(session.Intensity), bodyPart, compound, fatigue.ShouldDeload)
	}
	rng := s.newRand()
	selected, err := planner.SelectWorkout(rng, pool, intent, ex, tuning)
	if planner.KindOf(err) == planner.KindNoCandidatesAvailable && !intent.Cardio {
		// Nothing of the same kind left; accept the other kind for this body part.
		intent = planner.ReplacementIntent(planner.Intensity(session.Intensity), bodyPart, !compound, fatigue.ShouldDeload)
		selected, err = planner.SelectWorkout(rng, pool, intent, ex, tuning)
	}
	if err != nil {
		return nil, err
	}
	selected = selected[:1]

	wc := planner.BuildWorkoutConstraints(intent, selected, history)
	wo, err := s.orch.GenerateWorkout(ctx, wc)
	if err != nil {
		return nil, err
	}

	sets := buildSets(wo.Blueprint, wc, selected, userID, target.Order)
	if err := s.planRepo.ReplaceExerciseSets(ctx, sessionID, target.ExerciseID, sets); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, planner.NewError(planner.KindImmutableItem, "exercise has completed sets")
		}
		return nil, err
	}
	log.Printf("INFO: Replaced %s with %s in session %s", target.ExerciseName, selected[0].Name, sessionID.Hex())
	return &selected[0], nil
}

// exerciseProfile returns the body part and kind of the exercise behind set,
// falling back to the session's first body part when it left the catalog.
func (s *coachService) exerciseProfile(ctx context.Context, set *domain.ExerciseSet, session *domain.WorkoutSession) (string, bool) {
	e, err := s.exerciseRepo.GetByID(ctx, set.ExerciseID)
	if err == nil {
		return e.BodyPart, e.Compound
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("WARN: Could not load exercise %s: %v", set.ExerciseID.Hex(), err)
	}
	if len(session.BodyParts) > 0 {
		return session.BodyParts[0], set.Compound
	}
	return "", set.Compound
}

// RegenerateSingleMeal swaps one daily meal for another candidate of the same
// slot, aiming at the replaced meal's calories.
func (s *coachService) RegenerateSingleMeal(ctx context.Context, userID, dailyMealID primitive.ObjectID) (*domain.Meal, error) {
	old, err := s.planRepo.GetDailyMeal(ctx, dailyMealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDailyMealNotFound
		}
		return nil, err
	}
	if old.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	if old.Completed {
		return nil, planner.NewError(planner.KindImmutableItem, "meal is already completed")
	}

	session, err := s.ownedSession(ctx, userID, old.SessionID)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(session.Date)
	if err != nil {
		return nil, err
	}
	dayMeals, err := s.planRepo.ListDailyMeals(ctx, old.SessionID)
	if err != nil {
		return nil, err
	}
	_, recentMeals, err := s.loadHistory(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.mealRepo.List(ctx, repository.MealFilter{})
	if err != nil {
		return nil, err
	}

	tuning := s.orch.Tuning()
	ex := exclusions(blocked, domain.ItemMeal, recentMeals)
	ex.Used = make(map[primitive.ObjectID]bool, len(dayMeals))
	for _, m := range dayMeals {
		ex.Used[m.MealID] = true
	}
	candidates := planner.SelectMeals(s.newRand(), pool, old.Slot, tuning.MealCandidatesPerSlot, ex, tuning)
	if len(candidates) == 0 {
		return nil, planner.NewError(planner.KindNoCandidatesAvailable, "no meals available for "+string(old.Slot))
	}

	mc := planner.BuildMealConstraints(
		planner.NutritionIntent{CalorieTarget: old.Calories, CarbBias: "moderate"},
		[]planner.SlotCandidates{{Slot: old.Slot, Meals: candidates}},
		tuning,
	)
	mc.Replacement = true
	mo, err := s.orch.GenerateMeals(ctx, mc)
	if err != nil {
		return nil, err
	}
	resolved := planner.ResolveMeals(mo.Blueprint, mc)
	if len(resolved) == 0 {
		return nil, planner.NewError(planner.KindConstraintViolation, "replacement meal could not be resolved")
	}
	r := resolved[0]

	updated := *old
	updated.MealID = r.Meal.ID
	updated.MealName = r.Meal.Name
	updated.Servings = r.Servings
	updated.Calories = r.Calories
	updated.Protein = r.Protein
	if err := s.planRepo.ReplaceDailyMeal(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, planner.NewError(planner.KindImmutableItem, "meal is already completed")
		}
		return nil, err
	}
	log.Printf("INFO: Replaced meal %s with %s in session %s", old.MealName, r.Meal.Name, old.SessionID.Hex())
	return &r.Meal, nil
}

func (s *coachService) GetDailyPlan(ctx context.Context, userID primitive.ObjectID, date string) (*DailyPlan, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	session, err := s.planRepo.GetSessionByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	sets, err := s.planRepo.ListSets(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	meals, err := s.planRepo.ListDailyMeals(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return &DailyPlan{Session: session, Sets: sets, Meals: meals}, nil
}

// GetWeeklySchedule previews the split the user's preferences produce.
// It is empty when no split is configured.
func (s *coachService) GetWeeklySchedule(ctx context.Context, userID primitive.ObjectID) ([]planner.WeeklySession, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	split := splitFor(user.Preferences)
	if split == nil {
		return []planner.WeeklySession{}, nil
	}
	return split.Sessions, nil
}

func (s *coachService) GetPlanArchiveURL(ctx context.Context, userID primitive.ObjectID, date string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	if _, err := parseDate(date); err != nil {
		return "", err
	}
	archived, err := s.archiveRepo.GetLatest(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrArchiveNotFound
		}
		return "", err
	}
	url, err := s.archive.GeneratePresignedDownloadURL(ctx, archived.S3ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrDownloadURLError
	}
	return url, nil
}

// archivePlan stores the plan snapshot. Failures are logged only; the plan
// is already committed.
func (s *coachService) archivePlan(ctx context.Context, plan *GeneratedPlan) {
	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	body, err := json.Marshal(plan)
	if err != nil {
		log.Printf("WARN: Could not encode plan %s for archive: %v", plan.RunID, err)
		return
	}
	session := plan.Session
	key := storage.ArchiveKey(s.archivePrefix, session.UserID.Hex(), session.Date, plan.RunID)
	size, err := s.archive.PutJSON(ctx, key, body)
	if err != nil {
		log.Printf("WARN: Could not archive plan %s: %v", plan.RunID, err)
		return
	}
	_, err = s.archiveRepo.Create(ctx, &domain.PlanArchive{
		UserID:      session.UserID,
		SessionID:   session.ID,
		Date:        session.Date,
		RunID:       plan.RunID,
		S3ObjectKey: key,
		Size:        size,
	})
	if err != nil {
		log.Printf("WARN: Could not record archive of plan %s: %v", plan.RunID, err)
		if delErr := s.archive.DeleteObject(ctx, key); delErr != nil {
			log.Printf("ERROR: Orphaned archive object %s: %v", key, delErr)
		}
	}
}

func (s *coachService) ownedSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.planRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrPlanAccessDenied
	}
	return session, nil
}

// buildSets expands an accepted blueprint into planned sets, in blueprint
// order. Numbers come from the constraints the blueprint was validated against.
func buildSets(bp planner.WorkoutBlueprint, c planner.WorkoutConstraints, selected []domain.Exercise, userID primitive.ObjectID, orderOffset int) []domain.ExerciseSet {
	byName := make(map[string]domain.Exercise, len(selected))
	for _, e := range selected {
		byName[normalizeName(e.Name)] = e
	}
	var sets []domain.ExerciseSet
	for order, be := range bp.Exercises {
		allowed, ok := c.Allowed(be.Name)
		e, found := byName[normalizeName(be.Name)]
		if !ok || !found {
			continue
		}
		for n := 1; n <= allowed.Sets; n++ {
			sets = append(sets, domain.ExerciseSet{
				UserID:        userID,
				ExerciseID:    e.ID,
				ExerciseName:  e.Name,
				Compound:      e.Compound,
				Order:         order + orderOffset,
				SetNumber:     n,
				PlannedWeight: allowed.Weight,
				PlannedReps:   allowed.Reps,
				Instructions:  be.Instructions,
			})
		}
	}
	return sets
}

// buildDailyMeals orders resolved meals by slot order.
func buildDailyMeals(resolved []planner.ResolvedMeal, userID primitive.ObjectID, slots []domain.MealType) []domain.DailyMeal {
	rank := make(map[domain.MealType]int, len(slots))
	for i, slot := range slots {
		rank[slot] = i
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		return rank[resolved[i].Slot] < rank[resolved[j].Slot]
	})

	meals := make([]domain.DailyMeal, 0, len(resolved))
	for i, r := range resolved {
		meals = append(meals, domain.DailyMeal{
			UserID:   userID,
			MealID:   r.Meal.ID,
			MealName: r.Meal.Name,
			Slot:     r.Slot,
			Order:    i,
			Servings: r.Servings,
			Calories: r.Calories,
			Protein:  r.Protein,
		})
	}
	return meals
}

// splitFor expands the user's split preferences, or returns nil when none are set.
func splitFor(prefs domain.TrainingPreferences) *planner.SplitPlan {
	dist := planner.DistributionForStrategy(prefs.Strategy)
	if prefs.Distribution != nil {
		dist = *prefs.Distribution
	}
	var sessions []planner.WeeklySession
	if tmpl, ok := planner.BuiltinTemplate(prefs.SplitTemplate); ok {
		if prefs.DaysPerWeek > 0 {
			tmpl.DaysPerWeek = prefs.DaysPerWeek
		}
		sessions = planner.BuildWeeklySplit(tmpl, dist)
	} else if len(prefs.PriorityFrequency) > 0 {
		sessions = planner.BuildFrequencySplit(prefs.PriorityFrequency, prefs.DaysPerWeek, dist)
	}
	if len(sessions) == 0 {
		return nil
	}
	return &planner.SplitPlan{Sessions: sessions}
}

func mealSlots(prefs domain.TrainingPreferences) []domain.MealType {
	if len(prefs.MealSlots) > 0 {
		return prefs.MealSlots
	}
	return domain.DefaultMealSlots
}

func exclusions(blocked []domain.BlockedItem, itemType domain.ItemType, recent map[string]bool) planner.Exclusions {
	ex := planner.Exclusions{Blocked: make(map[primitive.ObjectID]bool), Recent: recent}
	for _, b := range blocked {
		if b.ItemType == itemType {
			ex.Blocked[b.ItemID] = true
		}
	}
	return ex
}

func recentExerciseNames(history []planner.HistoricalSession, day time.Time, windowDays int) map[string]bool {
	cutoff := day.AddDate(0, 0, -windowDays)
	names := make(map[string]bool)
	for _, h := range history {
		if h.Date.Before(cutoff) {
			continue
		}
		for _, set := range h.Sets {
			names[normalizeName(set.ExerciseName)] = true
		}
	}
	return names
}

func sessionTitle(wi planner.WorkoutIntent) string {
	if wi.DayLabel != "" {
		return wi.DayLabel
	}
	if wi.Cardio {
		return "Cardio"
	}
	parts := make([]string, 0, len(wi.BodyParts))
	for _, p := range wi.BodyParts {
		if p == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(p[:1])+p[1:])
	}
	return strings.Join(parts, " / ")
}

func parseDate(date string) (time.Time, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

func duplicateSession(date string) error {
	return planner.NewError(planner.KindDuplicateSession, "a session already exists for "+date)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
