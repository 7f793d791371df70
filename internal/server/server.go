package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nholden/beacon/internal/auth"
	"github.com/nholden/beacon/internal/chat"
	"github.com/nholden/beacon/internal/config"
	"github.com/nholden/beacon/internal/database"
	"github.com/nholden/beacon/internal/delivery"
	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/handlers"
	"github.com/nholden/beacon/internal/logging"
	"github.com/nholden/beacon/internal/middleware"
	"github.com/nholden/beacon/internal/presence"
	"github.com/nholden/beacon/internal/pubsub"
	"github.com/nholden/beacon/internal/storage"
	"github.com/nholden/beacon/internal/websocket"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg *config.Config

	pubsub   *pubsub.WatermillBridge
	registry *presence.Registry
	bridge   *websocket.Bridge

	userStore    domain.UserRepository
	messageStore domain.MessageRepository
	media        *storage.MediaService
	tokens       *auth.TokenManager
	chatService  *chat.Service

	authHandler    *handlers.AuthHandler
	messageHandler *handlers.MessageHandler
	adminHandler   *handlers.AdminHandler
	mediaHandler   *handlers.MediaHandler
}

// New creates a new Server instance and wires all dependencies.
func New() *Server {
	logging.New() // Initialize the structured logger
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	userStore := database.NewUserStore(db)
	messageStore := database.NewMessageStore(db)
	media := storage.NewMediaService(storage.NewOsStore(cfg.MediaDir))
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	// Presence updates flow through the pub/sub bridge so that the registry
	// never talks to the transport directly.
	ps := pubsub.NewWatermillBridge()
	registry := presence.NewRegistry(ps)

	bridge := websocket.NewBridge(registry)
	go bridge.Run()
	if err := bridge.SubscribeOnlineUsers(context.Background(), ps); err != nil {
		slog.Error("Failed to subscribe to presence updates", "error", err)
		os.Exit(1)
	}

	router := delivery.NewRouter(registry, bridge)
	chatService := chat.NewService(userStore, messageStore, media, router)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	return &Server{
		E:              e,
		DB:             db,
		Cfg:            cfg,
		pubsub:         ps,
		registry:       registry,
		bridge:         bridge,
		userStore:      userStore,
		messageStore:   messageStore,
		media:          media,
		tokens:         tokens,
		chatService:    chatService,
		authHandler:    handlers.NewAuthHandler(userStore, media, tokens),
		messageHandler: handlers.NewMessageHandler(chatService),
		adminHandler:   handlers.NewAdminHandler(userStore, media),
		mediaHandler:   handlers.NewMediaHandler(media),
	}
}

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	requireAuth := middleware.Auth(s.tokens, s.userStore)
	requireAdmin := middleware.RequireAdmin()

	api := s.E.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.authHandler.Signup)
	authGroup.POST("/login", s.authHandler.Login)
	authGroup.POST("/logout", s.authHandler.Logout)
	authGroup.GET("/check", s.authHandler.Check, requireAuth)
	authGroup.PUT("/update-profile", s.authHandler.UpdateProfile, requireAuth)

	messages := api.Group("/messages", requireAuth)
	messages.GET("/users", s.messageHandler.SidebarUsers)
	messages.GET("/:id", s.messageHandler.GetConversation)
	messages.POST("/send/:id", s.messageHandler.SendMessage)
	messages.DELETE("/:id", s.messageHandler.DeleteMessage)
	messages.DELETE("/any/:id", s.messageHandler.DeleteMessage, requireAdmin)

	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.GET("/user/:id", s.adminHandler.GetUser)
	admin.DELETE("/user/:id", s.adminHandler.DeleteUser)
	admin.PUT("/user/:id/pic", s.adminHandler.UpdateUserPic)

	s.E.GET("/ws", s.bridge.Handler(), requireAuth)
	s.E.GET("/media/:name", s.mediaHandler.Get)

	s.E.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":      "ok",
			"connections": s.bridge.ConnectionCount(),
		})
	})
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserRepository {
	return s.userStore
}

// Registry is a getter for the presence registry, useful for testing.
func (s *Server) Registry() *presence.Registry {
	return s.registry
}
