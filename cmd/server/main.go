package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/harborchat/harbor/internal/config"
	"github.com/harborchat/harbor/internal/database"
	postgresrepo "github.com/harborchat/harbor/internal/repository/postgres"
	"github.com/harborchat/harbor/internal/service"
	"github.com/harborchat/harbor/internal/session"
	"github.com/harborchat/harbor/internal/transport/http/handlers"
	"github.com/harborchat/harbor/internal/transport/http/middleware"
	"github.com/harborchat/harbor/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	if err := database.Migrate(context.Background(), pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Session store (refresh tokens)
	sessions, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer sessions.Close()
	log.Println("Connected to redis")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	workspaceRepo := postgresrepo.NewWorkspaceRepo(pool)
	memberRepo := postgresrepo.NewMemberRepo(pool)
	channelRepo := postgresrepo.NewChannelRepo(pool)
	conversationRepo := postgresrepo.NewConversationRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	reactionRepo := postgresrepo.NewReactionRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, sessions, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	workspaceService := service.NewWorkspaceService(workspaceRepo, memberRepo)
	channelService := service.NewChannelService(channelRepo, memberRepo)
	conversationService := service.NewConversationService(conversationRepo, memberRepo)
	messageService := service.NewMessageService(messageRepo, reactionRepo, channelRepo, conversationRepo, memberRepo)
	reactionService := service.NewReactionService(reactionRepo, messageRepo, memberRepo)

	// WebSocket hub + live-update notifier
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)
	messageService.SetNotifier(notifier)
	reactionService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	channelHandler := handlers.NewChannelHandler(channelService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	messageHandler := handlers.NewMessageHandler(messageService)
	reactionHandler := handlers.NewReactionHandler(reactionService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)

	// Protected - Workspaces
	mux.Handle("POST /api/v1/workspaces", auth(http.HandlerFunc(workspaceHandler.Create)))
	mux.Handle("GET /api/v1/workspaces", auth(http.HandlerFunc(workspaceHandler.List)))
	mux.Handle("GET /api/v1/workspaces/{id}", auth(http.HandlerFunc(workspaceHandler.Get)))
	mux.Handle("PATCH /api/v1/workspaces/{id}", auth(http.HandlerFunc(workspaceHandler.Update)))
	mux.Handle("DELETE /api/v1/workspaces/{id}", auth(http.HandlerFunc(workspaceHandler.Delete)))
	mux.Handle("GET /api/v1/workspaces/{id}/info", auth(http.HandlerFunc(workspaceHandler.GetInfo)))
	mux.Handle("POST /api/v1/workspaces/{id}/join", auth(http.HandlerFunc(workspaceHandler.Join)))
	mux.Handle("POST /api/v1/workspaces/{id}/join-code/rotate", auth(http.HandlerFunc(workspaceHandler.RotateJoinCode)))
	mux.Handle("POST /api/v1/workspaces/{id}/leave", auth(http.HandlerFunc(workspaceHandler.Leave)))
	mux.Handle("GET /api/v1/workspaces/{id}/member", auth(http.HandlerFunc(workspaceHandler.CurrentMember)))

	// Protected - Channels
	mux.Handle("POST /api/v1/workspaces/{id}/channels", auth(http.HandlerFunc(channelHandler.Create)))
	mux.Handle("GET /api/v1/workspaces/{id}/channels", auth(http.HandlerFunc(channelHandler.List)))
	mux.Handle("GET /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Get)))
	mux.Handle("PATCH /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Update)))
	mux.Handle("DELETE /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Delete)))

	// Protected - Conversations
	mux.Handle("POST /api/v1/workspaces/{id}/conversations", auth(http.HandlerFunc(conversationHandler.Resolve)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Create)))
	mux.Handle("GET /api/v1/messages", auth(http.HandlerFunc(messageHandler.Page)))
	mux.Handle("GET /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Get)))
	mux.Handle("PATCH /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Protected - Reactions
	mux.Handle("POST /api/v1/messages/{id}/reactions/toggle", auth(http.HandlerFunc(reactionHandler.Toggle)))

	// WebSocket (token auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, messageService, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
