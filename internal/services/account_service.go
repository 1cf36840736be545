package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algosignal/signalhub/internal/models"
	"github.com/algosignal/signalhub/internal/scoring"
)

// AccountStats carries the cumulative statistics reported by an account
type AccountStats struct {
	Balance       float64 `json:"balance"`
	Equity        float64 `json:"equity"`
	ProfitLoss    float64 `json:"profit_loss"`
	WinRate       float64 `json:"win_rate"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
}

// AccountWithActivity is an account row augmented with its trailing 24h
// signal activity for the dashboard listing
type AccountWithActivity struct {
	models.Account
	RecentSignals     int      `json:"recent_signals"`
	AvgProfitPerTrade *float64 `json:"avg_profit_per_trade"`
}

// AccountService defines the interface for account registry operations
type AccountService interface {
	Register(accountID, accountName, broker string) (models.Account, error)
	UpdateStats(accountID string, stats AccountStats) (models.Account, error)
	ListAccounts() ([]AccountWithActivity, error)
	Deactivate(accountID string) error
}

// accountService implements the AccountService interface
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new account service
func NewAccountService(db *gorm.DB) AccountService {
	return &accountService{db: db}
}

// Register upserts an account by its external id. Name, broker and the
// updated timestamp are overwritten; previously reported stats survive.
func (s *accountService) Register(accountID, accountName, broker string) (models.Account, error) {
	if accountID == "" {
		return models.Account{}, newValidationError("account_id", "must not be empty")
	}
	if accountName == "" {
		return models.Account{}, newValidationError("account_name", "must not be empty")
	}

	account := models.Account{
		AccountID:   accountID,
		AccountName: accountName,
		Broker:      broker,
		Balance:     10000,
		Equity:      10000,
		IsActive:    true,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_name", "broker", "updated_at"}),
	}).Create(&account).Error
	if err != nil {
		return models.Account{}, err
	}

	// Re-read so callers see the surviving stats, not the insert defaults
	var saved models.Account
	if err := s.db.Where("account_id = ?", accountID).First(&saved).Error; err != nil {
		return models.Account{}, err
	}

	return saved, nil
}

// UpdateStats persists a fresh stats snapshot together with the performance
// score derived from it. Unknown accounts are an error, not a silent no-op.
func (s *accountService) UpdateStats(accountID string, stats AccountStats) (models.Account, error) {
	if stats.WinningTrades > stats.TotalTrades {
		return models.Account{}, newValidationError("winning_trades", "cannot exceed total_trades")
	}

	var account models.Account
	if err := s.db.Where("account_id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, err
	}

	score := scoring.Score(stats.ProfitLoss, stats.WinRate, stats.TotalTrades)

	updates := map[string]interface{}{
		"balance":           stats.Balance,
		"equity":            stats.Equity,
		"profit_loss":       stats.ProfitLoss,
		"win_rate":          stats.WinRate,
		"total_trades":      stats.TotalTrades,
		"winning_trades":    stats.WinningTrades,
		"performance_score": score,
		"updated_at":        time.Now(),
	}

	if err := s.db.Model(&models.Account{}).Where("account_id = ?", accountID).Updates(updates).Error; err != nil {
		return models.Account{}, err
	}

	account.Balance = stats.Balance
	account.Equity = stats.Equity
	account.ProfitLoss = stats.ProfitLoss
	account.WinRate = stats.WinRate
	account.TotalTrades = stats.TotalTrades
	account.WinningTrades = stats.WinningTrades
	account.PerformanceScore = score

	return account, nil
}

// ListAccounts returns all active accounts ranked by performance score, each
// with its trailing 24h signal count and average P&L per signal. The
// aggregation runs fresh on every call; the dashboard's refresh cadence
// makes caching pointless.
func (s *accountService) ListAccounts() ([]AccountWithActivity, error) {
	cutoff := time.Now().Add(-24 * time.Hour)

	var accounts []AccountWithActivity
	err := s.db.Raw(`
		SELECT a.*, COUNT(s.id) AS recent_signals, AVG(s.profit_loss) AS avg_profit_per_trade
		FROM accounts a
		LEFT JOIN signals s ON a.account_id = s.account_id AND s.created_at > ?
		WHERE a.is_active = ?
		GROUP BY a.id
		ORDER BY a.performance_score DESC
	`, cutoff, true).Scan(&accounts).Error

	return accounts, err
}

// Deactivate hides an account from all listings. Rows are never deleted.
func (s *accountService) Deactivate(accountID string) error {
	result := s.db.Model(&models.Account{}).Where("account_id = ?", accountID).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
