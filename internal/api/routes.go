package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP surface calls into.
type Services struct {
	Auth     service.AuthService
	Catalog  service.CatalogService
	Profile  service.ProfileService
	Goals    service.GoalService
	Tracking service.TrackingService
	Coach    service.CoachService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Catalog)
	athleteHandler := NewAthleteHandler(svc.Profile, svc.Goals, svc.Tracking)
	planHandler := NewPlanHandler(svc.Coach)

	authMiddleware := AuthMiddleware(jwtSecret)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", athleteHandler.GetMe)
		protected.PUT("/me/preferences", athleteHandler.UpdatePreferences)

		goals := protected.Group("/goals")
		{
			goals.POST("", athleteHandler.CreateGoal)
			goals.GET("", athleteHandler.ListGoals)
			goals.GET("/active", athleteHandler.GetActiveGoal)
			goals.PUT("/:goalId", athleteHandler.UpdateGoal)
		}

		blocked := protected.Group("/blocked")
		{
			blocked.GET("", athleteHandler.ListBlocked)
			blocked.POST("", athleteHandler.BlockItem)
			blocked.DELETE("/:itemType/:itemId", athleteHandler.UnblockItem)
		}

		plans := protected.Group("/plans")
		{
			plans.POST("/:date/generate", planHandler.GeneratePlan)
			plans.GET("/:date", planHandler.GetPlan)
			plans.GET("/:date/archive", planHandler.GetPlanArchive)
		}
		protected.POST("/sessions/:sessionId/sets/:setId/regenerate", planHandler.RegenerateExercise)
		protected.POST("/meals/:dailyMealId/regenerate", planHandler.RegenerateMeal)
		protected.POST("/sets/:setId/complete", athleteHandler.CompleteSet)
		protected.POST("/meals/:dailyMealId/complete", athleteHandler.CompleteMeal)
		protected.GET("/schedule/week", planHandler.GetWeeklySchedule)

		// Catalog: everyone reads, admins write.
		protected.GET("/exercises", exerciseHandler.ListExercises)
		protected.POST("/exercises", adminOnly, exerciseHandler.CreateExercise)
		protected.GET("/meals-catalog", exerciseHandler.ListMeals)
		protected.POST("/meals-catalog", adminOnly, exerciseHandler.CreateMeal)
	}
}
