package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "chatbot-backend/internal/app"
	"chatbot-backend/internal/bootstrap"
	"chatbot-backend/internal/cache"
	"chatbot-backend/internal/platform/rabbitmq"
	"chatbot-backend/internal/repository"
	"chatbot-backend/internal/transport/http/handler"
	"chatbot-backend/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLog(), gin.Recovery(), middleware.CORS(app.Config.App.Env))

	userRepo := repository.NewUserRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
	)
	turnEventPublisher := rabbitmq.NewTurnEventPublisher(app.MQConn, app.Config.RabbitMQ.TurnEventQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(chatRepo, messageRepo, app.Generator, turnEventPublisher, historyCache)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/health", healthHandler.Check)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authed := router.Group("/")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	authed.GET("/users/me", authHandler.Me)
	authed.POST("/chat", chatHandler.Chat)
	authed.GET("/chats", chatHandler.ListChats)
	authed.GET("/chats/:id", chatHandler.GetChat)
	authed.DELETE("/chats/:id", chatHandler.DeleteChat)
	authed.PUT("/chats/:id/title", chatHandler.UpdateTitle)

	return router
}
