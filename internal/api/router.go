package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/threadly/threadly-api/internal/api/handler"
	"github.com/threadly/threadly-api/internal/api/middleware"
	"github.com/threadly/threadly-api/internal/core/ports"
	"github.com/threadly/threadly-api/internal/realtime"
)

// Deps carries everything the router wires together. Handlers receive their
// collaborators explicitly; nothing reads ambient global state.
type Deps struct {
	DB          *mongo.Database
	Redis       *redis.Client
	Hub         *realtime.Hub
	Updates     handler.UpdateDispatcher
	ChatService ports.ChatService
	UserService ports.UserService
	GameService ports.GameService
	JWTSecret   string
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("threadly"))

	// --- Handlers ---
	chatHandler := handler.NewChatHandler(deps.ChatService, deps.Updates)
	userHandler := handler.NewUserHandler(deps.UserService)
	gameHandler := handler.NewGameHandler(deps.GameService)
	wsHandler := handler.NewWSHandler(deps.Hub, deps.JWTSecret, deps.Logger)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Account routes (signup/login are the only open writes) ---
	user := e.Group("/user")
	user.POST("/signup", userHandler.Signup)
	user.POST("/login", userHandler.Login)
	user.PATCH("/resetPassword", userHandler.ResetPassword, authMiddleware)
	user.PATCH("/updateBiography", userHandler.UpdateBiography, authMiddleware)
	user.GET("/getUser/:username", userHandler.GetUser, authMiddleware)
	user.GET("/getUsers", userHandler.GetUsers, authMiddleware)
	user.GET("/online", userHandler.Online, authMiddleware)
	user.DELETE("/deleteUser/:username", userHandler.DeleteUser, authMiddleware)

	// --- Chat routes ---
	chat := e.Group("/chat", authMiddleware)
	chat.POST("/createChat", chatHandler.CreateChat)
	chat.GET("/getChatsByUser/:username", chatHandler.GetChatsByUser)
	chat.GET("/:chatId", chatHandler.GetChat)
	chat.POST("/:chatId/addMessage", chatHandler.AddMessage)
	chat.POST("/:chatId/addParticipant", chatHandler.AddParticipant)

	// --- Game routes (moves travel over the websocket) ---
	games := e.Group("/games", authMiddleware)
	games.POST("/create", gameHandler.Create)
	games.POST("/:gameID/join", gameHandler.Join)
	games.GET("/:gameID", gameHandler.Get)

	// --- Realtime ---
	e.GET("/ws", wsHandler.Serve)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
