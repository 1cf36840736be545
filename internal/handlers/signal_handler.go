package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/algosignal/signalhub/internal/models"
	"github.com/algosignal/signalhub/internal/services"
	"github.com/algosignal/signalhub/internal/websocket"
)

// SignalHandler handles signal ledger requests
type SignalHandler struct {
	signalService services.SignalService
	wsHub         *websocket.Hub
	logger        *slog.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(signalService services.SignalService, wsHub *websocket.Hub, logger *slog.Logger) *SignalHandler {
	return &SignalHandler{
		signalService: signalService,
		wsHub:         wsHub,
		logger:        logger,
	}
}

// RegisterRoutes registers signal routes
func (h *SignalHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/signals", h.CreateSignal).Methods("POST")
	router.HandleFunc("/signals/top", h.TopSignals).Methods("GET")
	router.HandleFunc("/signals/pending", h.PendingSignals).Methods("GET")
	router.HandleFunc("/signals/{id}", h.UpdateSignal).Methods("PUT")
}

// CreateSignal records a new signal submitted by a demo account
func (h *SignalHandler) CreateSignal(w http.ResponseWriter, r *http.Request) {
	var req services.NewSignal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	signal, err := h.signalService.CreateSignal(req)
	if err != nil {
		h.logger.Error("Failed to create signal",
			slog.String("account_id", req.AccountID),
			slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	h.wsHub.Broadcast(models.Message{Type: "new_signal", Content: signal})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"signal":  signal,
	})
}

// UpdateSignal applies a price/P&L/status update to an existing signal
func (h *SignalHandler) UpdateSignal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid signal id")
		return
	}

	var update services.SignalUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	signal, err := h.signalService.UpdateSignal(uint(id), update)
	if err != nil {
		h.logger.Error("Failed to update signal",
			slog.Uint64("signal_id", id),
			slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	h.wsHub.Broadcast(models.Message{Type: "signal_updated", Content: signal})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signal updated",
	})
}

// TopSignals returns the ranked signal feed for the dashboard
func (h *SignalHandler) TopSignals(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	signals, err := h.signalService.TopPerforming(limit)
	if err != nil {
		h.logger.Error("Failed to fetch top signals", slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	if signals == nil {
		signals = []services.TopSignal{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"signals": signals,
	})
}

// PendingSignals returns signals waiting to be picked up by the terminal
func (h *SignalHandler) PendingSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := h.signalService.PendingSignals()
	if err != nil {
		h.logger.Error("Failed to fetch pending signals", slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	if signals == nil {
		signals = []models.Signal{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"signals": signals,
	})
}
