package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/algosignal/signalhub/internal/models"
	"github.com/algosignal/signalhub/internal/services"
	"github.com/algosignal/signalhub/internal/websocket"
)

// CopyHandler handles copy relay requests
type CopyHandler struct {
	copyService services.CopyService
	wsHub       *websocket.Hub
	logger      *slog.Logger
}

// NewCopyHandler creates a new copy handler
func NewCopyHandler(copyService services.CopyService, wsHub *websocket.Hub, logger *slog.Logger) *CopyHandler {
	return &CopyHandler{
		copyService: copyService,
		wsHub:       wsHub,
		logger:      logger,
	}
}

// RegisterRoutes registers copy relay routes
func (h *CopyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/copy/{signalId}", h.CopyToMaster).Methods("POST")
	router.HandleFunc("/master/trades", h.ListMasterTrades).Methods("GET")
}

type copyRequest struct {
	VolumeMultiplier *float64 `json:"volume_multiplier"`
}

// CopyToMaster promotes a signal into the master ledger. The body is
// optional; the multiplier defaults to 1.
func (h *CopyHandler) CopyToMaster(w http.ResponseWriter, r *http.Request) {
	signalID, err := strconv.ParseUint(mux.Vars(r)["signalId"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid signal id")
		return
	}

	multiplier := 1.0
	var req copyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VolumeMultiplier != nil {
		multiplier = *req.VolumeMultiplier
	}

	result, err := h.copyService.CopyToMaster(uint(signalID), multiplier)
	if err != nil {
		h.logger.Error("Failed to copy signal",
			slog.Uint64("signal_id", signalID),
			slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	h.logger.Info("Signal copied to master",
		slog.Uint64("signal_id", signalID),
		slog.Float64("volume", result.Volume))

	h.wsHub.Broadcast(models.Message{Type: "trade_copied", Content: result})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

// ListMasterTrades returns the master ledger for the dashboard
func (h *CopyHandler) ListMasterTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.copyService.GetMasterTrades()
	if err != nil {
		h.logger.Error("Failed to fetch master trades", slog.Any("error", err))
		respondServiceError(w, err)
		return
	}

	if trades == nil {
		trades = []services.MasterTradeRow{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"trades":  trades,
	})
}
