package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise and meal catalog.
type ExerciseHandler struct {
	catalogService service.CatalogService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(catalogService service.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{catalogService: catalogService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	BodyPart    string `json:"bodyPart" binding:"required"` // e.g. "chest", "cardio"
	Compound    bool   `json:"compound"`
	Equipment   string `json:"equipment"`
	Description string `json:"description"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BodyPart    string    `json:"bodyPart"`
	Compound    bool      `json:"compound"`
	Equipment   string    `json:"equipment,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:          ex.ID.Hex(),
		Name:        ex.Name,
		BodyPart:    ex.BodyPart,
		Compound:    ex.Compound,
		Equipment:   ex.Equipment,
		Description: ex.Description,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

type CreateMealRequest struct {
	Name     string            `json:"name" binding:"required"`
	Calories float64           `json:"calories" binding:"required,gt=0"`
	Protein  float64           `json:"protein" binding:"gte=0"`
	Carbs    float64           `json:"carbs" binding:"gte=0"`
	Fat      float64           `json:"fat" binding:"gte=0"`
	Types    []domain.MealType `json:"types"`
}

type MealResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Calories float64           `json:"calories"`
	Protein  float64           `json:"protein"`
	Carbs    float64           `json:"carbs,omitempty"`
	Fat      float64           `json:"fat,omitempty"`
	Types    []domain.MealType `json:"types,omitempty"`
}

func MapMealToResponse(m *domain.Meal) MealResponse {
	if m == nil {
		return MealResponse{}
	}
	return MealResponse{
		ID:       m.ID.Hex(),
		Name:     m.Name,
		Calories: m.Calories,
		Protein:  m.Protein,
		Carbs:    m.Carbs,
		Fat:      m.Fat,
		Types:    m.Types,
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to the catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 409 {object} gin.H "Name already exists"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), &domain.Exercise{
		Name:        strings.TrimSpace(req.Name),
		BodyPart:    req.BodyPart,
		Compound:    req.Compound,
		Equipment:   req.Equipment,
		Description: req.Description,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to create exercise.")
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List the exercise catalog
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param bodyPart query string false "Comma-separated body parts"
// @Param compound query bool false "Only compound (true) or accessory (false) movements"
// @Success 200 {array} ExerciseResponse "List of exercises"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	var filter repository.ExerciseFilter
	if parts := c.Query("bodyPart"); parts != "" {
		filter.BodyParts = strings.Split(parts, ",")
	}
	if raw := c.Query("compound"); raw != "" {
		compound, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "compound must be true or false")
			return
		}
		filter.Compound = &compound
	}

	exercises, err := h.catalogService.ListExercises(c.Request.Context(), filter)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func (h *ExerciseHandler) CreateMeal(c *gin.Context) {
	var req CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	meal, err := h.catalogService.CreateMeal(c.Request.Context(), &domain.Meal{
		Name:     strings.TrimSpace(req.Name),
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Types:    req.Types,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to create meal.")
		return
	}
	c.JSON(http.StatusCreated, MapMealToResponse(meal))
}

func (h *ExerciseHandler) ListMeals(c *gin.Context) {
	var filter repository.MealFilter
	if t := c.Query("type"); t != "" {
		filter.Types = []domain.MealType{domain.MealType(t)}
	}
	meals, err := h.catalogService.ListMeals(c.Request.Context(), filter)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve meals.")
		return
	}
	responses := make([]MealResponse, len(meals))
	for i := range meals {
		responses[i] = MapMealToResponse(&meals[i])
	}
	c.JSON(http.StatusOK, responses)
}
