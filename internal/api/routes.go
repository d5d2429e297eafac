package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/middleware"
	"wheelsup-backend-go/internal/suggest"
)

// Services groups the collaborators the HTTP surface is built on.
type Services struct {
	Rides          core.RideService
	Conversations  core.ConversationService
	Users          core.UserService
	Analytics      core.AnalyticsService
	Suggestions    *suggest.Gateway
	Revoker        SessionRevoker
	Directory      identity.Directory
	AllowedOrigins []string
	Location       *time.Location // members' local zone
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS, metrics) is expected on router already.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, authMW *middleware.AuthMiddleware, svc Services) {
	rideHandler := NewRideHandler(svc.Rides, svc.Users, svc.Location, logger)
	conversationHandler := NewConversationHandler(svc.Conversations, svc.Users, logger)
	userHandler := NewUserHandler(svc.Users, svc.Suggestions, svc.Revoker, logger)
	suggestionHandler := NewSuggestionHandler(svc.Suggestions, svc.Location)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics)
	liveHandler := NewLiveHandler(svc.Rides, authMW, svc.Directory, svc.AllowedOrigins, logger)

	apiV1 := router.Group("/api/v1")
	{
		rides := apiV1.Group("/rides")
		{
			rides.GET("", rideHandler.ListRides)
			rides.GET("/:rideId", rideHandler.GetRide)
			rides.GET("/:rideId/route", rideHandler.GetRoute)
			rides.POST("", authMW.VerifyToken(), rideHandler.CreateRide)
			rides.PATCH("/:rideId", authMW.VerifyToken(), rideHandler.UpdateRide)
			rides.POST("/:rideId/book", authMW.VerifyToken(), rideHandler.BookSeat)
		}

		conversations := apiV1.Group("/conversations", authMW.VerifyToken())
		{
			conversations.GET("", conversationHandler.ListConversations)
			conversations.POST("", conversationHandler.OpenConversation)
			conversations.GET("/:conversationId", conversationHandler.GetConversation)
			conversations.POST("/:conversationId/messages", conversationHandler.SendMessage)
		}

		users := apiV1.Group("/users")
		{
			users.POST("/initialize", authMW.VerifyToken(), userHandler.InitializeUserProfile)
			users.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
			users.PATCH("/me", authMW.VerifyToken(), userHandler.UpdateCurrentUserProfile)
			users.POST("/me/phone/verify", authMW.VerifyToken(), userHandler.VerifyPhone)
			users.GET("/:userId", userHandler.GetUser)
			users.GET("/:userId/summary", userHandler.GetUserSummary)
		}

		apiV1.POST("/suggestions/price", suggestionHandler.SuggestPrice)
		apiV1.POST("/auth/signout", authMW.VerifyToken(), userHandler.SignOut)
		apiV1.GET("/navigation", authMW.Optional(), userHandler.CheckNavigation)
		apiV1.POST("/analytics/visit", analyticsHandler.RecordVisit)
		apiV1.GET("/pickup-spots", ListPickupSpots)
	}

	router.GET("/ws/rides", liveHandler.Serve)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "WheelsUp backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1, /ws/rides, /metrics and /health.")
}
