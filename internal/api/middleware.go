package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/planner"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims := &service.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.UserID == "" || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}
		if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
			abortWithError(c, http.StatusUnauthorized, "Token has expired (claim check)")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID) // hex string
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// planErrorStatus maps engine error kinds to HTTP status codes.
var planErrorStatus = map[planner.ErrorKind]int{
	planner.KindNoActiveGoal:           http.StatusConflict,
	planner.KindDuplicateSession:       http.StatusConflict,
	planner.KindImmutableItem:          http.StatusConflict,
	planner.KindNoCandidatesAvailable:  http.StatusUnprocessableEntity,
	planner.KindConstraintViolation:    http.StatusUnprocessableEntity,
	planner.KindGenerationParseFailure: http.StatusBadGateway,
	planner.KindGenerationExhausted:    http.StatusBadGateway,
}

// serviceErrorStatus maps service sentinels to HTTP status codes.
var serviceErrorStatus = []struct {
	err  error
	code int
}{
	{service.ErrInvalidDate, http.StatusBadRequest},
	{service.ErrInvalidGoal, http.StatusBadRequest},
	{service.ErrInvalidMetrics, http.StatusBadRequest},
	{service.ErrInvalidPreferences, http.StatusBadRequest},
	{service.ErrInvalidMealType, http.StatusBadRequest},
	{service.ErrInvalidBlockedItem, http.StatusBadRequest},
	{service.ErrInvalidPerformance, http.StatusBadRequest},
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrSetNotInSession, http.StatusBadRequest},
	{service.ErrPlanAccessDenied, http.StatusForbidden},
	{service.ErrGoalAccessDenied, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrGoalNotFound, http.StatusNotFound},
	{service.ErrPlanNotFound, http.StatusNotFound},
	{service.ErrSetNotFound, http.StatusNotFound},
	{service.ErrDailyMealNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrMealNotFound, http.StatusNotFound},
	{service.ErrBlockedItemNotFound, http.StatusNotFound},
	{service.ErrArchiveNotFound, http.StatusNotFound},
	{service.ErrArchiveDisabled, http.StatusNotFound},
	{service.ErrExerciseExists, http.StatusConflict},
	{service.ErrMealExists, http.StatusConflict},
}

// abortWithServiceError translates a service or engine error. Engine errors
// carry their kind in the body; anything unknown is logged and hidden.
func abortWithServiceError(c *gin.Context, err error, fallback string) {
	var pe *planner.PlanError
	if errors.As(err, &pe) {
		code, ok := planErrorStatus[pe.Kind]
		if !ok {
			code = http.StatusInternalServerError
		}
		message := pe.Message
		if message == "" {
			message = string(pe.Kind)
		}
		c.AbortWithStatusJSON(code, gin.H{"error": message, "kind": pe.Kind})
		return
	}
	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			abortWithError(c, m.code, err.Error())
			return
		}
	}
	log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, fallback)
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// currentUserID resolves the caller's ObjectID, aborting the request on failure.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses an ObjectID path parameter, aborting with 400 when malformed.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format.", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}
