package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler exposes daily plan generation, regeneration and read-back.
type PlanHandler struct {
	coachService service.CoachService
}

func NewPlanHandler(coachService service.CoachService) *PlanHandler {
	return &PlanHandler{coachService: coachService}
}

// --- DTOs ---

// PlanResponse is a committed day. Attempt counts are present only right after generation.
type PlanResponse struct {
	Session         *domain.WorkoutSession   `json:"session"`
	Sets            []domain.ExerciseSet     `json:"sets"`
	Meals           []domain.DailyMeal       `json:"meals"`
	RunID           string                   `json:"runId,omitempty"`
	WorkoutIntent   *planner.WorkoutIntent   `json:"workoutIntent,omitempty"`
	NutritionIntent *planner.NutritionIntent `json:"nutritionIntent,omitempty"`
	WorkoutAttempts int                      `json:"workoutAttempts,omitempty"`
	MealAttempts    int                      `json:"mealAttempts,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
}

func mapDailyPlan(p *service.DailyPlan) PlanResponse {
	resp := PlanResponse{Session: p.Session, Sets: p.Sets, Meals: p.Meals}
	if resp.Sets == nil {
		resp.Sets = []domain.ExerciseSet{}
	}
	if resp.Meals == nil {
		resp.Meals = []domain.DailyMeal{}
	}
	return resp
}

func mapGeneratedPlan(p *service.GeneratedPlan) PlanResponse {
	resp := mapDailyPlan(&p.DailyPlan)
	resp.RunID = p.RunID
	resp.WorkoutIntent = &p.WorkoutIntent
	resp.NutritionIntent = &p.NutritionIntent
	resp.WorkoutAttempts = p.WorkoutAttempts
	resp.MealAttempts = p.MealAttempts
	resp.Warnings = p.Warnings
	return resp
}

// --- Handler Methods ---

// GeneratePlan godoc
// @Summary Generate my plan for a date
// @Description Runs the full pipeline. Succeeds at most once per date.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 201 {object} PlanResponse
// @Failure 409 {object} gin.H "No active goal or plan already exists"
// @Failure 422 {object} gin.H "No candidates available"
// @Failure 502 {object} gin.H "Generation exhausted"
// @Router /plans/{date}/generate [post]
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	plan, err := h.coachService.GenerateDailyPlan(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to generate plan.")
		return
	}
	c.JSON(http.StatusCreated, mapGeneratedPlan(plan))
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	plan, err := h.coachService.GetDailyPlan(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve plan.")
		return
	}
	c.JSON(http.StatusOK, mapDailyPlan(plan))
}

// GetPlanArchive godoc
// @Summary Get a download URL for the archived plan of a date
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} gin.H "downloadUrl"
// @Failure 404 {object} gin.H "No archive for this date"
// @Router /plans/{date}/archive [get]
func (h *PlanHandler) GetPlanArchive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	url, err := h.coachService.GetPlanArchiveURL(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		abortWithServiceError(c, err, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// RegenerateExercise godoc
// @Summary Swap one exercise of a session
// @Description All sets of the exercise behind setId are replaced.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ObjectID Hex"
// @Param setId path string true "Set ObjectID Hex"
// @Success 200 {object} domain.Exercise "The replacement exercise"
// @Failure 409 {object} gin.H "Exercise has completed sets"
// @Router /sessions/{sessionId}/sets/{setId}/regenerate [post]
func (h *PlanHandler) RegenerateExercise(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "sessionId")
	if !ok {
		return
	}
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}
	exercise, err := h.coachService.RegenerateSingleExercise(c.Request.Context(), userID, sessionID, setID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to regenerate exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *PlanHandler) RegenerateMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, ok := pathObjectID(c, "dailyMealId")
	if !ok {
		return
	}
	meal, err := h.coachService.RegenerateSingleMeal(c.Request.Context(), userID, mealID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to regenerate meal.")
		return
	}
	c.JSON(http.StatusOK, MapMealToResponse(meal))
}

func (h *PlanHandler) GetWeeklySchedule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessions, err := h.coachService.GetWeeklySchedule(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to build schedule.")
		return
	}
	c.JSON(http.StatusOK, sessions)
}
