package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- users ---

type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[primitive.ObjectID]domain.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = *user
	return user.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, metrics domain.BodyMetrics, prefs domain.TrainingPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Metrics, u.Preferences = metrics, prefs
	f.users[id] = u
	return nil
}

// --- goals ---

type fakeGoals struct {
	mu    sync.Mutex
	goals []domain.Goal
}

func (f *fakeGoals) Create(_ context.Context, goal *domain.Goal) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.goals {
		if f.goals[i].UserID == goal.UserID {
			f.goals[i].IsActive = false
		}
	}
	goal.ID = primitive.NewObjectID()
	goal.IsActive = true
	goal.CreatedAt = time.Now().UTC()
	f.goals = append(f.goals, *goal)
	return goal.ID, nil
}

func (f *fakeGoals) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.goals {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGoals) GetActive(_ context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.goals {
		if g.UserID == userID && g.IsActive {
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGoals) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Goal{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoals) Update(_ context.Context, goal *domain.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.goals {
		if f.goals[i].ID == goal.ID && f.goals[i].UserID == goal.UserID {
			f.goals[i] = *goal
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeGoals) ListActiveUserIDs(_ context.Context) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []primitive.ObjectID{}
	for _, g := range f.goals {
		if g.IsActive {
			out = append(out, g.UserID)
		}
	}
	return out, nil
}

// --- catalog ---

type fakeExercises struct {
	mu        sync.Mutex
	exercises []domain.Exercise
}

func (f *fakeExercises) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := normalizeName(e.Name)
	for _, x := range f.exercises {
		if normalizeName(x.Name) == key {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	e.ID = primitive.NewObjectID()
	e.NameKey = key
	f.exercises = append(f.exercises, *e)
	return e.ID, nil
}

func (f *fakeExercises) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.exercises {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExercises) List(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Exercise{}
	for _, e := range f.exercises {
		if len(filter.BodyParts) > 0 && !contains(filter.BodyParts, e.BodyPart) {
			continue
		}
		if filter.Compound != nil && e.Compound != *filter.Compound {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExercises) Update(_ context.Context, e *domain.Exercise) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.exercises {
		if f.exercises[i].ID == e.ID {
			f.exercises[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMeals struct {
	mu    sync.Mutex
	meals []domain.Meal
}

func (f *fakeMeals) Create(_ context.Context, m *domain.Meal) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := normalizeName(m.Name)
	for _, x := range f.meals {
		if normalizeName(x.Name) == key {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	m.ID = primitive.NewObjectID()
	m.NameKey = key
	f.meals = append(f.meals, *m)
	return m.ID, nil
}

func (f *fakeMeals) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.meals {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMeals) List(_ context.Context, filter repository.MealFilter) ([]domain.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Meal{}
	for _, m := range f.meals {
		if len(filter.Types) > 0 && len(m.Types) > 0 {
			match := false
			for _, t := range filter.Types {
				match = match || m.HasType(t)
			}
			if !match {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// --- plans ---

type fakePlans struct {
	mu       sync.Mutex
	sessions []domain.WorkoutSession
	sets     []domain.ExerciseSet
	meals    []domain.DailyMeal
}

func (f *fakePlans) SaveDailyPlan(_ context.Context, session *domain.WorkoutSession, sets []domain.ExerciseSet, meals []domain.DailyMeal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == session.UserID && s.Date == session.Date {
			return repository.ErrDuplicate
		}
	}
	session.ID = primitive.NewObjectID()
	f.sessions = append(f.sessions, *session)
	for i := range sets {
		sets[i].ID = primitive.NewObjectID()
		sets[i].SessionID = session.ID
		sets[i].UserID = session.UserID
		f.sets = append(f.sets, sets[i])
	}
	for i := range meals {
		meals[i].ID = primitive.NewObjectID()
		meals[i].SessionID = session.ID
		meals[i].UserID = session.UserID
		f.meals = append(f.meals, meals[i])
	}
	return nil
}

func (f *fakePlans) GetSession(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlans) GetSessionByDate(_ context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == userID && s.Date == date {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlans) ListSessions(_ context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.WorkoutSession{}
	for _, s := range f.sessions {
		if s.UserID == userID && s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakePlans) GetSet(_ context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sets {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlans) ListSets(_ context.Context, sessionIDs ...primitive.ObjectID) ([]domain.ExerciseSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.ExerciseSet{}
	for _, s := range f.sets {
		if containsID(sessionIDs, s.SessionID) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].SetNumber < out[j].SetNumber
	})
	return out, nil
}

func (f *fakePlans) ReplaceExerciseSets(_ context.Context, sessionID, oldExerciseID primitive.ObjectID, replacement []domain.ExerciseSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.sets[:0:0]
	removed := 0
	for _, s := range f.sets {
		if s.SessionID == sessionID && s.ExerciseID == oldExerciseID {
			if s.Completed {
				return repository.ErrUpdateFailed
			}
			removed++
			continue
		}
		kept = append(kept, s)
	}
	if removed == 0 {
		return repository.ErrNotFound
	}
	for i := range replacement {
		replacement[i].ID = primitive.NewObjectID()
		replacement[i].SessionID = sessionID
		kept = append(kept, replacement[i])
	}
	f.sets = kept
	return nil
}

func (f *fakePlans) CompleteSet(_ context.Context, id primitive.ObjectID, actualWeight float64, actualReps int, rpe *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sets {
		if f.sets[i].ID != id {
			continue
		}
		if f.sets[i].Completed {
			return repository.ErrUpdateFailed
		}
		f.sets[i].ActualWeight = &actualWeight
		f.sets[i].ActualReps = &actualReps
		f.sets[i].RPE = rpe
		f.sets[i].Completed = true
		return nil
	}
	return repository.ErrNotFound
}

func (f *fakePlans) GetDailyMeal(_ context.Context, id primitive.ObjectID) (*domain.DailyMeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.meals {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlans) ListDailyMeals(_ context.Context, sessionIDs ...primitive.ObjectID) ([]domain.DailyMeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.DailyMeal{}
	for _, m := range f.meals {
		if containsID(sessionIDs, m.SessionID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakePlans) ReplaceDailyMeal(_ context.Context, meal *domain.DailyMeal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.meals {
		if f.meals[i].ID != meal.ID {
			continue
		}
		if f.meals[i].Completed {
			return repository.ErrUpdateFailed
		}
		f.meals[i] = *meal
		return nil
	}
	return repository.ErrNotFound
}

func (f *fakePlans) CompleteDailyMeal(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.meals {
		if f.meals[i].ID != id {
			continue
		}
		if f.meals[i].Completed {
			return repository.ErrUpdateFailed
		}
		f.meals[i].Completed = true
		return nil
	}
	return repository.ErrNotFound
}

// --- blocked items and archives ---

type fakeBlocked struct {
	mu    sync.Mutex
	items []domain.BlockedItem
}

func (f *fakeBlocked) Block(_ context.Context, item *domain.BlockedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.UserID == item.UserID && b.ItemType == item.ItemType && b.ItemID == item.ItemID {
			return nil
		}
	}
	item.ID = primitive.NewObjectID()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeBlocked) Unblock(_ context.Context, userID primitive.ObjectID, itemType domain.ItemType, itemID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.items {
		if b.UserID == userID && b.ItemType == itemType && b.ItemID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeBlocked) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.BlockedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.BlockedItem{}
	for _, b := range f.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeArchives struct {
	mu       sync.Mutex
	archives []domain.PlanArchive
}

func (f *fakeArchives) Create(_ context.Context, a *domain.PlanArchive) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.ArchivedAt = time.Now().UTC()
	f.archives = append(f.archives, *a)
	return a.ID, nil
}

func (f *fakeArchives) GetLatest(_ context.Context, userID primitive.ObjectID, date string) (*domain.PlanArchive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.archives) - 1; i >= 0; i-- {
		if a := f.archives[i]; a.UserID == userID && a.Date == date {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeObjectStore keeps archived objects in memory.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeObjectStore) PutJSON(_ context.Context, key string, body []byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = body
	return int64(len(body)), nil
}

func (f *fakeObjectStore) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://archive.test/" + key + "?signed=1", nil
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

// --- text model stand-ins ---

// obedientModel answers every prompt with a blueprint that follows it exactly:
// listed exercises in order with their numbers, and the first meal option.
type obedientModel struct {
	mu      sync.Mutex
	prompts []string
}

var (
	workoutLine = regexp.MustCompile(`^- (.+) \([^)]*\): (\d+) sets x (\d+) reps @ ([\d.]+)$`)
	cardioLine  = regexp.MustCompile(`^- (.+) \(cardio\): (\d+) set of (\d+) distance units`)
	pickLine    = regexp.MustCompile(`^- ([a-z]+): (.+) x ([\d.]+)$`)
)

func (m *obedientModel) GenerateText(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if strings.Contains(prompt, "ALLOWED EXERCISES:") {
		return answerWorkout(prompt), nil
	}
	return answerMeals(prompt), nil
}

func section(prompt, header string) []string {
	_, rest, ok := strings.Cut(prompt, header+"\n")
	if !ok {
		return nil
	}
	body, _, _ := strings.Cut(rest, "\n\n")
	return strings.Split(body, "\n")
}

func answerWorkout(prompt string) string {
	bp := planner.WorkoutBlueprint{Explanation: "Heavy pressing first.", Exercises: []planner.BlueprintExercise{}}
	for _, line := range section(prompt, "ALLOWED EXERCISES:") {
		var (
			name       string
			sets, reps int
			weight     float64
		)
		if g := cardioLine.FindStringSubmatch(line); g != nil {
			name = g[1]
			sets, _ = strconv.Atoi(g[2])
			reps, _ = strconv.Atoi(g[3])
		} else if g := workoutLine.FindStringSubmatch(line); g != nil {
			name = g[1]
			sets, _ = strconv.Atoi(g[2])
			reps, _ = strconv.Atoi(g[3])
			weight, _ = strconv.ParseFloat(g[4], 64)
		} else {
			continue
		}
		be := planner.BlueprintExercise{Name: name, Instructions: "Controlled tempo."}
		for i := 0; i < sets; i++ {
			be.Sets = append(be.Sets, planner.BlueprintSet{Weight: weight, Reps: reps})
		}
		bp.Exercises = append(bp.Exercises, be)
	}
	return fence(bp)
}

func answerMeals(prompt string) string {
	bp := planner.MealBlueprint{Explanation: "Balanced day.", Meals: []planner.BlueprintMeal{}}
	lines := section(prompt, "OPTIONS:")
	for i, line := range lines {
		if i == 0 {
			continue // "Option 1 (...):"
		}
		g := pickLine.FindStringSubmatch(line)
		if g == nil {
			break
		}
		servings, _ := strconv.ParseFloat(g[3], 64)
		bp.Meals = append(bp.Meals, planner.BlueprintMeal{Name: g[2], Slot: domain.MealType(g[1]), Servings: servings})
	}
	return fence(bp)
}

func fence(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return "Here is the plan:\n```json\n" + string(b) + "\n```"
}

// scriptedModel returns canned responses first, then defers to next.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	next      planner.TextGenerator
	calls     int
}

func (s *scriptedModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	if len(s.responses) > 0 {
		r := s.responses[0]
		s.responses = s.responses[1:]
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()
	if s.next == nil {
		return "", fmt.Errorf("no scripted response left")
	}
	return s.next.GenerateText(ctx, prompt)
}

// --- fixture ---

type coachFixture struct {
	users     *fakeUsers
	goals     *fakeGoals
	exercises *fakeExercises
	meals     *fakeMeals
	plans     *fakePlans
	blocked   *fakeBlocked
	archives  *fakeArchives
	store     *fakeObjectStore
	model     planner.TextGenerator
	userID    primitive.ObjectID
}

func newCoachFixture(t *testing.T) *coachFixture {
	t.Helper()
	f := &coachFixture{
		users:     newFakeUsers(),
		goals:     &fakeGoals{},
		exercises: &fakeExercises{},
		meals:     &fakeMeals{},
		plans:     &fakePlans{},
		blocked:   &fakeBlocked{},
		archives:  &fakeArchives{},
		store:     &fakeObjectStore{},
		model:     &obedientModel{},
	}
	ctx := context.Background()

	user := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleAthlete}
	id, err := f.users.Create(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	f.userID = id

	for _, part := range []string{"chest", "triceps", "shoulders"} {
		for i := 1; i <= 3; i++ {
			mustCreateExercise(t, f, fmt.Sprintf("%s press %d", part, i), part, true)
			mustCreateExercise(t, f, fmt.Sprintf("%s isolation %d", part, i), part, false)
		}
	}
	mustCreateExercise(t, f, "Bench Press", "chest", true)
	mustCreateExercise(t, f, "Running", domain.BodyPartCardio, false)
	mustCreateExercise(t, f, "Cycling", domain.BodyPartCardio, false)

	for _, slot := range domain.DefaultMealSlots {
		for i := 1; i <= 2; i++ {
			_, err := f.meals.Create(ctx, &domain.Meal{
				Name:     fmt.Sprintf("%s option %d", slot, i),
				Calories: 500,
				Protein:  30,
				Types:    []domain.MealType{slot},
			})
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	return f
}

func mustCreateExercise(t *testing.T, f *coachFixture, name, part string, compound bool) {
	t.Helper()
	if _, err := f.exercises.Create(context.Background(), &domain.Exercise{Name: name, BodyPart: part, Compound: compound}); err != nil {
		t.Fatal(err)
	}
}

func (f *coachFixture) service() CoachService {
	return NewCoachService(CoachDeps{
		Users:         f.users,
		Goals:         f.goals,
		Exercises:     f.exercises,
		Meals:         f.meals,
		Plans:         f.plans,
		Blocked:       f.blocked,
		Archives:      f.archives,
		Generator:     f.model,
		Tuning:        planner.DefaultTuning(),
		Archive:       f.store,
		ArchivePrefix: "plans",
		Rand:          func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) },
	})
}

func (f *coachFixture) benchGoal(t *testing.T) {
	t.Helper()
	_, err := f.goals.Create(context.Background(), &domain.Goal{
		UserID:    f.userID,
		Category:  domain.GoalStrength,
		Target:    &domain.GoalTarget{Exercise: "bench press", Metric: "1rm"},
		Direction: domain.DirectionIncrease,
		Value:     225,
		Unit:      "lbs",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *coachFixture) exerciseByName(name string) domain.Exercise {
	for _, e := range f.exercises.exercises {
		if normalizeName(e.Name) == normalizeName(name) {
			return e
		}
	}
	panic("unknown exercise " + name)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func containsID(list []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}
