package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/algosignal/signalhub/internal/models"
	"github.com/algosignal/signalhub/internal/mt5"
	"github.com/algosignal/signalhub/internal/services"
	"github.com/algosignal/signalhub/internal/websocket"
)

// AccountHandler handles account registry requests
type AccountHandler struct {
	accountService services.AccountService
	wsHub          *websocket.Hub
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountService, wsHub *websocket.Hub, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		wsHub:          wsHub,
		logger:         logger,
	}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts/register", h.Register).Methods("POST")
	router.HandleFunc("/accounts/{accountId}/stats", h.UpdateStats).Methods("PUT")
	router.HandleFunc("/accounts/{accountId}/deactivate", h.Deactivate).Methods("PUT")
	router.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
}

// Register upserts a demo account. EA payloads may use vendor field names,
// so the body is normalized before it reaches the registry.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload := mt5.NormalizeAccount(raw)

	account, err := h.accountService.Register(payload.AccountID, payload.AccountName, payload.Broker)
	if err != nil {
		h.logger.Error("Failed to register account",
			slog.String("account_id", payload.AccountID),
			slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	h.wsHub.Broadcast(models.Message{Type: "account_registered", Content: account})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"account": account,
	})
}

// UpdateStats replaces an account's stats snapshot and recomputes its score
func (h *AccountHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	var stats services.AccountStats
	if err := json.NewDecoder(r.Body).Decode(&stats); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.accountService.UpdateStats(accountID, stats); err != nil {
		h.logger.Error("Failed to update account stats",
			slog.String("account_id", accountID),
			slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Account stats updated",
	})
}

// ListAccounts returns all active accounts with their 24h activity
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		h.logger.Error("Failed to list accounts", slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	if accounts == nil {
		accounts = []services.AccountWithActivity{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"accounts": accounts,
	})
}

// Deactivate hides an account from the dashboard without deleting anything
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	if err := h.accountService.Deactivate(accountID); err != nil {
		h.logger.Error("Failed to deactivate account",
			slog.String("account_id", accountID),
			slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Account deactivated",
	})
}
