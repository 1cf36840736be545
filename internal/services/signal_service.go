package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/algosignal/signalhub/internal/models"
)

// NewSignal carries the fields accepted on signal submission
type NewSignal struct {
	AccountID  string   `json:"account_id"`
	Symbol     string   `json:"symbol"`
	Action     string   `json:"action"`
	Volume     float64  `json:"volume"`
	EntryPrice *float64 `json:"entry_price"`
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
}

// SignalUpdate is a partial update to an existing signal. CurrentPrice and
// ProfitLoss are rewritten unconditionally, matching the updater protocol
// where the terminal resends both on every tick; Status and CloseTime only
// apply when supplied.
type SignalUpdate struct {
	CurrentPrice *float64   `json:"current_price"`
	ProfitLoss   *float64   `json:"profit_loss"`
	Status       *string    `json:"status"`
	CloseTime    *time.Time `json:"close_time"`
}

// TopSignal is a signal joined with its owning account for ranking.
// CurrentDuration is minutes since open for open signals, the stored
// duration for closed ones.
type TopSignal struct {
	models.Signal
	AccountName      string  `json:"account_name"`
	PerformanceScore float64 `json:"performance_score"`
	CurrentDuration  float64 `json:"current_duration"`
}

// SignalService defines the interface for signal ledger operations
type SignalService interface {
	CreateSignal(req NewSignal) (models.Signal, error)
	UpdateSignal(id uint, update SignalUpdate) (models.Signal, error)
	TopPerforming(limit int) ([]TopSignal, error)
	PendingSignals() ([]models.Signal, error)
}

// signalService implements the SignalService interface
type signalService struct {
	db *gorm.DB
}

// NewSignalService creates a new signal service
func NewSignalService(db *gorm.DB) SignalService {
	return &signalService{db: db}
}

// CreateSignal records a new trade intent, open as of now
func (s *signalService) CreateSignal(req NewSignal) (models.Signal, error) {
	if req.AccountID == "" {
		return models.Signal{}, newValidationError("account_id", "must not be empty")
	}
	if req.Symbol == "" {
		return models.Signal{}, newValidationError("symbol", "must not be empty")
	}
	if req.Action != models.ActionBuy && req.Action != models.ActionSell {
		return models.Signal{}, newValidationError("action", "must be BUY or SELL")
	}
	if req.Volume <= 0 {
		return models.Signal{}, newValidationError("volume", "must be positive")
	}

	signal := models.Signal{
		AccountID:  req.AccountID,
		Symbol:     req.Symbol,
		Action:     req.Action,
		Volume:     req.Volume,
		EntryPrice: req.EntryPrice,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Status:     models.SignalStatusOpen,
		OpenTime:   time.Now(),
	}

	if err := s.db.Create(&signal).Error; err != nil {
		return models.Signal{}, err
	}

	return signal, nil
}

// UpdateSignal applies a partial update. Omitting current_price or
// profit_loss clears the stored values; that is the updater contract, not an
// accident. A supplied close_time recomputes duration_minutes and closes the
// signal; a closed timestamp never coexists with an open status, so close_time
// overrides whatever status came with it.
func (s *signalService) UpdateSignal(id uint, update SignalUpdate) (models.Signal, error) {
	if update.Status != nil && !validStatus(*update.Status) {
		return models.Signal{}, newValidationError("status", "must be pending, open or closed")
	}

	var signal models.Signal
	if err := s.db.First(&signal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Signal{}, ErrNotFound
		}
		return models.Signal{}, err
	}

	updates := map[string]interface{}{
		"current_price": update.CurrentPrice,
		"profit_loss":   update.ProfitLoss,
	}

	if update.Status != nil {
		updates["status"] = *update.Status
	}

	if update.CloseTime != nil {
		updates["close_time"] = *update.CloseTime
		updates["duration_minutes"] = int(update.CloseTime.Sub(signal.OpenTime).Minutes())
		updates["status"] = models.SignalStatusClosed
	}

	if err := s.db.Model(&models.Signal{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return models.Signal{}, err
	}

	var saved models.Signal
	if err := s.db.First(&saved, id).Error; err != nil {
		return models.Signal{}, err
	}

	return saved, nil
}

// TopPerforming returns open and closed signals of active accounts, best
// accounts first, most profitable signals first within an account
func (s *signalService) TopPerforming(limit int) ([]TopSignal, error) {
	if limit <= 0 {
		limit = 50
	}

	var signals []TopSignal
	err := s.db.Raw(`
		SELECT s.*, a.account_name, a.performance_score
		FROM signals s
		JOIN accounts a ON s.account_id = a.account_id
		WHERE a.is_active = ? AND s.status IN (?, ?)
		ORDER BY a.performance_score DESC, COALESCE(s.profit_loss, -1e18) DESC, s.created_at DESC
		LIMIT ?
	`, true, models.SignalStatusOpen, models.SignalStatusClosed, limit).Scan(&signals).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range signals {
		if signals[i].Status == models.SignalStatusOpen {
			signals[i].CurrentDuration = now.Sub(signals[i].OpenTime).Minutes()
		} else if signals[i].DurationMinutes != nil {
			signals[i].CurrentDuration = float64(*signals[i].DurationMinutes)
		}
	}

	return signals, nil
}

// PendingSignals returns signals awaiting pickup by the terminal, oldest first
func (s *signalService) PendingSignals() ([]models.Signal, error) {
	var signals []models.Signal
	err := s.db.Where("status = ?", models.SignalStatusPending).Order("created_at ASC").Find(&signals).Error
	return signals, err
}

func validStatus(status string) bool {
	switch status {
	case models.SignalStatusPending, models.SignalStatusOpen, models.SignalStatusClosed:
		return true
	}
	return false
}
