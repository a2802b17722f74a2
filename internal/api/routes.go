package api

import (
	"glog/workout-server/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the routes need.
type Services struct {
	Auth    service.AuthService
	Plans   service.PlanService
	History service.HistoryService
	Export  service.ExportService
	Workout service.WorkoutService
}

func SetupRoutes(router *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	planHandler := NewPlanHandler(svc.Plans)
	exerciseHandler := NewExerciseHandler(svc.Plans)
	workoutHandler := NewWorkoutHandler(svc.Workout)
	historyHandler := NewHistoryHandler(svc.History, svc.Export)

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
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := requireUserID(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		planGroup := protected.Group("/plans")
		{
			planGroup.GET("", planHandler.ListPlans)
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.PUT("/:planId", planHandler.RenamePlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
			planGroup.POST("/:planId/exercises", exerciseHandler.AddExercise)
			planGroup.PUT("/:planId/exercises/order", exerciseHandler.ReorderExercises)
		}

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
		}

		workoutGroup := protected.Group("/workout/active")
		{
			workoutGroup.GET("", workoutHandler.GetActiveWorkout)
			workoutGroup.POST("", workoutHandler.StartWorkout)
			workoutGroup.DELETE("", workoutHandler.CancelWorkout)
			workoutGroup.POST("/sets", workoutHandler.ToggleSet)
			workoutGroup.POST("/visibility", workoutHandler.SetVisibility)
			workoutGroup.POST("/finish", workoutHandler.FinishWorkout)
			workoutGroup.GET("/timer", workoutHandler.StreamTimer)
		}

		historyGroup := protected.Group("/history")
		{
			historyGroup.GET("", historyHandler.ListHistory)
			historyGroup.POST("/export", historyHandler.ExportHistory)
		}
	}
}
