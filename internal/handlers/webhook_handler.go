package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/algosignal/signalhub/internal/models"
	"github.com/algosignal/signalhub/internal/mt5"
	"github.com/algosignal/signalhub/internal/services"
	"github.com/algosignal/signalhub/internal/websocket"
)

// WebhookHandler ingests raw trade reports from MT4/MT5 terminals
type WebhookHandler struct {
	signalService services.SignalService
	wsHub         *websocket.Hub
	logger        *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(signalService services.SignalService, wsHub *websocket.Hub, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		signalService: signalService,
		wsHub:         wsHub,
		logger:        logger,
	}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/webhook/trade", h.HandleTrade).Methods("POST")
}

// HandleTrade accepts a trade report in whatever field names the terminal
// uses. A payload carrying a trade id updates that signal; anything else
// opens a new one.
func (h *WebhookHandler) HandleTrade(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trade := mt5.NormalizeTrade(raw)

	if trade.TradeID != 0 {
		update := services.SignalUpdate{
			CurrentPrice: trade.CurrentPrice,
			ProfitLoss:   trade.ProfitLoss,
			Status:       &trade.Status,
		}
		if trade.Status == models.SignalStatusClosed {
			now := time.Now()
			update.CloseTime = &now
		}

		signal, err := h.signalService.UpdateSignal(trade.TradeID, update)
		if err != nil {
			h.logger.Error("Webhook signal update failed",
				slog.Uint64("trade_id", uint64(trade.TradeID)),
				slog.Any("error", err))
			respondServiceError(w, err)
			return
		}

		h.wsHub.Broadcast(models.Message{Type: "signal_updated", Content: signal})
	} else {
		signal, err := h.signalService.CreateSignal(services.NewSignal{
			AccountID:  trade.AccountID,
			Symbol:     trade.Symbol,
			Action:     trade.Action,
			Volume:     trade.Volume,
			EntryPrice: trade.EntryPrice,
			StopLoss:   trade.StopLoss,
			TakeProfit: trade.TakeProfit,
		})
		if err != nil {
			h.logger.Error("Webhook signal create failed",
				slog.String("account_id", trade.AccountID),
				slog.Any("error", err))
			respondServiceError(w, err)
			return
		}

		h.wsHub.Broadcast(models.Message{Type: "new_signal", Content: signal})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Trade data received",
	})
}
