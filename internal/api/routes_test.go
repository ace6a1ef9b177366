package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "route-test-secret"

// stubCoach answers GenerateDailyPlan with a canned result; other methods are unused.
type stubCoach struct {
	service.CoachService
	plan   *service.GeneratedPlan
	err    error
	gotUID primitive.ObjectID
	gotDay string
}

func (s *stubCoach) GenerateDailyPlan(_ context.Context, userID primitive.ObjectID, date string) (*service.GeneratedPlan, error) {
	s.gotUID, s.gotDay = userID, date
	return s.plan, s.err
}

func newTestRouter(coach service.CoachService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testSecret, Services{Coach: coach})
	return router
}

func bearer(t *testing.T, userID primitive.ObjectID, role domain.Role, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestGeneratePlanRoute_MapsEngineErrors(t *testing.T) {
	userID := primitive.NewObjectID()
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind planner.ErrorKind
	}{
		{"no active goal", planner.ErrNoActiveGoal, http.StatusConflict, planner.KindNoActiveGoal},
		{"duplicate session", planner.NewError(planner.KindDuplicateSession, "a session already exists for 2026-03-10"), http.StatusConflict, planner.KindDuplicateSession},
		{"no candidates", planner.ErrNoCandidatesAvailable, http.StatusUnprocessableEntity, planner.KindNoCandidatesAvailable},
		{"exhausted", planner.ErrGenerationExhausted, http.StatusBadGateway, planner.KindGenerationExhausted},
		{"bad date", service.ErrInvalidDate, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubCoach{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/2026-03-10/generate", nil)
			req.Header.Set("Authorization", bearer(t, userID, domain.RoleAthlete, time.Hour))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, string(tt.wantKind), body["kind"])
		})
	}
}

func TestGeneratePlanRoute_Success(t *testing.T) {
	userID := primitive.NewObjectID()
	coach := &stubCoach{plan: &service.GeneratedPlan{
		DailyPlan: service.DailyPlan{Session: &domain.WorkoutSession{UserID: userID, Date: "2026-03-10"}},
		RunID:     "run-1",
	}}
	router := newTestRouter(coach)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/2026-03-10/generate", nil)
	req.Header.Set("Authorization", bearer(t, userID, domain.RoleAthlete, time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, coach.gotUID)
	assert.Equal(t, "2026-03-10", coach.gotDay)

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.NotNil(t, resp.Sets)
	assert.NotNil(t, resp.Meals)
}

func TestProtectedRoutes_RejectBadCredentials(t *testing.T) {
	userID := primitive.NewObjectID()
	tests := []struct {
		name     string
		method   string
		path     string
		auth     string
		wantCode int
	}{
		{"missing header", http.MethodPost, "/api/v1/plans/2026-03-10/generate", "", http.StatusUnauthorized},
		{"not bearer", http.MethodPost, "/api/v1/plans/2026-03-10/generate", "Basic abc", http.StatusUnauthorized},
		{"expired token", http.MethodPost, "/api/v1/plans/2026-03-10/generate", bearer(t, userID, domain.RoleAthlete, -time.Minute), http.StatusUnauthorized},
		{"athlete writes catalog", http.MethodPost, "/api/v1/exercises", bearer(t, userID, domain.RoleAthlete, time.Hour), http.StatusForbidden},
		{"malformed set id", http.MethodPost, "/api/v1/sessions/" + userID.Hex() + "/sets/nope/regenerate", bearer(t, userID, domain.RoleAthlete, time.Hour), http.StatusBadRequest},
	}
	router := newTestRouter(&stubCoach{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
