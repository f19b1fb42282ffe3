package router

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/connectly/backend/internal/handlers"
	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/realtime"
	"github.com/connectly/backend/internal/repositories"
	"github.com/connectly/backend/internal/services"
	"github.com/connectly/backend/pkg/config"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware attaches the global middleware stack.
func SetupMiddleware(e *echo.Echo) {
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
}

// SetupRoutes wires repositories, services and handlers onto the echo
// instance. firebaseAuth may be nil, which disables the Firebase login route.
func SetupRoutes(e *echo.Echo, db *mongo.Database, hub *realtime.Hub, firebaseAuth *auth.Client, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	messageRepo := repositories.NewMongoMessageRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	notifier := services.NewNotifier(notificationRepo, hub)
	graph := services.NewSocialGraphService(userRepo, postRepo, notifier, hub)
	engagement := services.NewEngagementService(postRepo, commentRepo, userRepo, notifier, hub)
	chat := services.NewChatService(messageRepo, userRepo, notifier, hub)
	moderation := services.NewModerationService(userRepo, postRepo, commentRepo)

	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuth, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo, postRepo, graph)
	feedHandler := handlers.NewFeedHandler(graph, userRepo)
	postHandler := handlers.NewPostHandler(engagement, userRepo)
	commentHandler := handlers.NewCommentHandler(engagement, userRepo)
	chatHandler := handlers.NewChatHandler(chat)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	adminHandler := handlers.NewAdminHandler(moderation)
	wsHandler := handlers.NewWSHandler(hub)

	handlers.RegisterHealthRoutes(e)

	api := e.Group("/api/v1")

	authGroup := api.Group("/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	protected := api.Group("", middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authHandler.RegisterProfileRoutes(protected)
	userHandler.RegisterUserRoutes(protected)
	feedHandler.RegisterFeedRoutes(protected)
	postHandler.RegisterPostRoutes(protected)
	commentHandler.RegisterCommentRoutes(protected)
	chatHandler.RegisterChatRoutes(protected)
	notificationHandler.RegisterNotificationRoutes(protected)
	wsHandler.RegisterWSRoutes(protected)

	admin := api.Group("/admin", middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnly(userRepo))
	adminHandler.RegisterAdminRoutes(admin)

	return nil
}
