package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/algosignal/signalhub/internal/models"
)

// CopyResult summarizes a completed copy relay
type CopyResult struct {
	MasterTradeID    uint    `json:"master_trade_id"`
	OriginalSignalID uint    `json:"original_signal_id"`
	Volume           float64 `json:"volume"`
}

// MasterTradeRow is a master trade joined with its source account, when the
// source signal still exists
type MasterTradeRow struct {
	models.MasterTrade
	SourceAccount *string `json:"source_account"`
}

// CopyService defines the interface for the copy relay
type CopyService interface {
	CopyToMaster(signalID uint, volumeMultiplier float64) (CopyResult, error)
	GetMasterTrades() ([]MasterTradeRow, error)
}

// copyService implements the CopyService interface
type copyService struct {
	db *gorm.DB
}

// NewCopyService creates a new copy service
func NewCopyService(db *gorm.DB) CopyService {
	return &copyService{db: db}
}

// CopyToMaster duplicates a signal into the master ledger with its volume
// scaled by the multiplier, and flags the source as copied. Both writes
// share one transaction, so a failure in either leaves no partial state.
// Copying the same signal again is allowed and produces another master
// trade; deduplication is the caller's concern.
func (s *copyService) CopyToMaster(signalID uint, volumeMultiplier float64) (CopyResult, error) {
	if volumeMultiplier <= 0 {
		return CopyResult{}, newValidationError("volume_multiplier", "must be positive")
	}

	var result CopyResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var signal models.Signal
		if err := tx.First(&signal, signalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		sourceID := signal.ID
		trade := models.MasterTrade{
			OriginalSignalID:  &sourceID,
			Symbol:            signal.Symbol,
			Action:            signal.Action,
			Volume:            signal.Volume * volumeMultiplier,
			EntryPrice:        signal.EntryPrice,
			StopLoss:          signal.StopLoss,
			TakeProfit:        signal.TakeProfit,
			Status:            models.SignalStatusOpen,
			CopiedFromAccount: signal.AccountID,
			OpenTime:          now,
		}

		if err := tx.Create(&trade).Error; err != nil {
			return err
		}

		copied := map[string]interface{}{
			"is_copied": true,
			"copy_time": now,
		}
		if err := tx.Model(&models.Signal{}).Where("id = ?", signal.ID).Updates(copied).Error; err != nil {
			return err
		}

		result = CopyResult{
			MasterTradeID:    trade.ID,
			OriginalSignalID: signal.ID,
			Volume:           trade.Volume,
		}

		return nil
	})
	if err != nil {
		return CopyResult{}, err
	}

	return result, nil
}

// GetMasterTrades returns the master ledger newest first
func (s *copyService) GetMasterTrades() ([]MasterTradeRow, error) {
	var trades []MasterTradeRow
	err := s.db.Raw(`
		SELECT mt.*, s.account_id AS source_account
		FROM master_trades mt
		LEFT JOIN signals s ON mt.original_signal_id = s.id
		ORDER BY mt.open_time DESC
	`).Scan(&trades).Error

	return trades, err
}
