package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AthleteHandler serves the caller's own profile, goals, blocklist and
// completion tracking.
type AthleteHandler struct {
	profileService  service.ProfileService
	goalService     service.GoalService
	trackingService service.TrackingService
}

func NewAthleteHandler(
	profileService service.ProfileService,
	goalService service.GoalService,
	trackingService service.TrackingService,
) *AthleteHandler {
	return &AthleteHandler{
		profileService:  profileService,
		goalService:     goalService,
		trackingService: trackingService,
	}
}

// --- DTOs ---

type UpdateProfileRequest struct {
	Metrics     domain.BodyMetrics         `json:"metrics"`
	Preferences domain.TrainingPreferences `json:"preferences"`
}

type GoalRequest struct {
	Category  domain.GoalCategory  `json:"category" binding:"required"`
	Target    *domain.GoalTarget   `json:"target"`
	Direction domain.GoalDirection `json:"direction" binding:"required"`
	Value     float64              `json:"value" binding:"gte=0"`
	Unit      string               `json:"unit"`
	Priority  int                  `json:"priority" binding:"gte=0"`
}

func (r GoalRequest) toDomain() *domain.Goal {
	return &domain.Goal{
		Category:  r.Category,
		Target:    r.Target,
		Direction: r.Direction,
		Value:     r.Value,
		Unit:      r.Unit,
		Priority:  r.Priority,
	}
}

type BlockItemRequest struct {
	ItemType domain.ItemType `json:"itemType" binding:"required,oneof=exercise meal"`
	ItemID   string          `json:"itemId" binding:"required"`
}

type CompleteSetRequest struct {
	ActualWeight float64  `json:"actualWeight" binding:"gte=0"`
	ActualReps   int      `json:"actualReps" binding:"gte=0"`
	RPE          *float64 `json:"rpe" binding:"omitempty,gte=1,lte=10"`
}

// --- Profile ---

// GetMe godoc
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *AthleteHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to load profile.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdatePreferences godoc
// @Summary Update my body metrics and training preferences
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Metrics and preferences"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid metrics or preferences"
// @Router /me/preferences [put]
func (h *AthleteHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	user, err := h.profileService.UpdateProfile(c.Request.Context(), userID, req.Metrics, req.Preferences)
	if err != nil {
		abortWithServiceError(c, err, "Failed to update profile.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// --- Goals ---

// CreateGoal godoc
// @Summary Set a new active goal
// @Description The previous active goal is deactivated.
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body GoalRequest true "Goal"
// @Success 201 {object} domain.Goal
// @Router /goals [post]
func (h *AthleteHandler) CreateGoal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, req.toDomain())
	if err != nil {
		abortWithServiceError(c, err, "Failed to create goal.")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *AthleteHandler) ListGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goals, err := h.goalService.ListGoals(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve goals.")
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	c.JSON(http.StatusOK, goals)
}

func (h *AthleteHandler) GetActiveGoal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goal, err := h.goalService.GetActiveGoal(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve goal.")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// UpdateGoal godoc
// @Summary Edit one of my goals
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ObjectID Hex"
// @Param goal body GoalRequest true "Goal"
// @Success 200 {object} domain.Goal
// @Failure 403 {object} gin.H "Goal belongs to another user"
// @Failure 404 {object} gin.H "Goal not found"
// @Router /goals/{goalId} [put]
func (h *AthleteHandler) UpdateGoal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID, ok := pathObjectID(c, "goalId")
	if !ok {
		return
	}
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	goal := req.toDomain()
	goal.ID = goalID
	updated, err := h.goalService.UpdateGoal(c.Request.Context(), userID, goal)
	if err != nil {
		abortWithServiceError(c, err, "Failed to update goal.")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- Blocked items ---

func (h *AthleteHandler) ListBlocked(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.profileService.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve blocked items.")
		return
	}
	if items == nil {
		items = []domain.BlockedItem{}
	}
	c.JSON(http.StatusOK, items)
}

// BlockItem godoc
// @Summary Never suggest this exercise or meal again
// @Tags Blocked
// @Accept json
// @Security BearerAuth
// @Param item body BlockItemRequest true "Item to block"
// @Success 204
// @Failure 404 {object} gin.H "Item not found"
// @Router /blocked [post]
func (h *AthleteHandler) BlockItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req BlockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid itemId format.")
		return
	}
	if err := h.profileService.BlockItem(c.Request.Context(), userID, req.ItemType, itemID); err != nil {
		abortWithServiceError(c, err, "Failed to block item.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AthleteHandler) UnblockItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathObjectID(c, "itemId")
	if !ok {
		return
	}
	itemType := domain.ItemType(c.Param("itemType"))
	if err := h.profileService.UnblockItem(c.Request.Context(), userID, itemType, itemID); err != nil {
		abortWithServiceError(c, err, "Failed to unblock item.")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tracking ---

// CompleteSet godoc
// @Summary Record actual performance for a planned set
// @Tags Tracking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param setId path string true "Set ObjectID Hex"
// @Param performance body CompleteSetRequest true "Actual performance"
// @Success 200 {object} domain.ExerciseSet
// @Failure 409 {object} gin.H "Set already completed"
// @Router /sets/{setId}/complete [post]
func (h *AthleteHandler) CompleteSet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}
	var req CompleteSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	set, err := h.trackingService.CompleteSet(c.Request.Context(), userID, setID, req.ActualWeight, req.ActualReps, req.RPE)
	if err != nil {
		abortWithServiceError(c, err, "Failed to complete set.")
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *AthleteHandler) CompleteMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, ok := pathObjectID(c, "dailyMealId")
	if !ok {
		return
	}
	meal, err := h.trackingService.CompleteMeal(c.Request.Context(), userID, mealID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to complete meal.")
		return
	}
	c.JSON(http.StatusOK, meal)
}
