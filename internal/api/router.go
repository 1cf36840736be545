package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/algosignal/signalhub/internal/config"
	"github.com/algosignal/signalhub/internal/handlers"
	"github.com/algosignal/signalhub/internal/services"
	"github.com/algosignal/signalhub/internal/websocket"
)

// SetupRouter configures all routes and returns the router
func SetupRouter(
	db *gorm.DB,
	wsHub *websocket.Hub,
	cfg *config.Config,
	logger *slog.Logger,
) *mux.Router {
	// Create a new router
	router := mux.NewRouter()

	// Health check endpoints: the EA probes /health, the dashboard /api/health
	router.HandleFunc("/health", HealthHandler).Methods("GET")
	router.HandleFunc("/api/health", HealthHandler).Methods("GET")

	// WebSocket route
	router.HandleFunc("/ws", wsHub.HandleWebSocket)

	// Create services
	accountService := services.NewAccountService(db)
	signalService := services.NewSignalService(db)
	copyService := services.NewCopyService(db)

	// Create handlers using services
	accountHandler := handlers.NewAccountHandler(accountService, wsHub, logger)
	signalHandler := handlers.NewSignalHandler(signalService, wsHub, logger)
	copyHandler := handlers.NewCopyHandler(copyService, wsHub, logger)
	webhookHandler := handlers.NewWebhookHandler(signalService, wsHub, logger)

	// Register routes
	apiRouter := router.PathPrefix("/api").Subrouter()
	accountHandler.RegisterRoutes(apiRouter)
	signalHandler.RegisterRoutes(apiRouter)
	copyHandler.RegisterRoutes(apiRouter)
	webhookHandler.RegisterRoutes(apiRouter)

	// Serve the static dashboard
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.Server.WebDir)))

	return router
}
