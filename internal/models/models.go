package models

import (
	"time"
)

// Signal lifecycle states
const (
	SignalStatusPending = "pending"
	SignalStatusOpen    = "open"
	SignalStatusClosed  = "closed"
)

// Trade directions accepted by the ledger
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Account represents a registered demo trading account with its cumulative
// statistics. The external account_id is the stable key; accounts are never
// deleted, only deactivated.
type Account struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AccountID        string    `gorm:"uniqueIndex;not null" json:"account_id"`
	AccountName      string    `gorm:"not null" json:"account_name"`
	Broker           string    `json:"broker"`
	Balance          float64   `gorm:"default:10000" json:"balance"`
	Equity           float64   `gorm:"default:10000" json:"equity"`
	ProfitLoss       float64   `gorm:"default:0" json:"profit_loss"`
	WinRate          float64   `gorm:"default:0" json:"win_rate"`
	TotalTrades      int       `gorm:"default:0" json:"total_trades"`
	WinningTrades    int       `gorm:"default:0" json:"winning_trades"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	PerformanceScore float64   `gorm:"default:0" json:"performance_score"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Signal represents a trade intent reported by a demo account. Optional
// numeric fields are pointers so an update that omits them stores NULL.
type Signal struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AccountID       string     `gorm:"index;not null" json:"account_id"`
	Symbol          string     `gorm:"not null" json:"symbol"`
	Action          string     `gorm:"not null" json:"action"`
	Volume          float64    `gorm:"not null" json:"volume"`
	EntryPrice      *float64   `json:"entry_price"`
	CurrentPrice    *float64   `json:"current_price"`
	StopLoss        *float64   `json:"stop_loss"`
	TakeProfit      *float64   `json:"take_profit"`
	ProfitLoss      *float64   `json:"profit_loss"`
	Status          string     `gorm:"default:open" json:"status"`
	OpenTime        time.Time  `json:"open_time"`
	CloseTime       *time.Time `json:"close_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	IsCopied        bool       `gorm:"default:false" json:"is_copied"`
	CopyTime        *time.Time `json:"copy_time"`
	CreatedAt       time.Time  `json:"created_at"`
}

// MasterTrade represents a signal replicated into the master account ledger.
// OriginalSignalID is a back-reference only; the row lives on even if the
// source signal is pruned.
type MasterTrade struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	OriginalSignalID  *uint      `json:"original_signal_id"`
	Symbol            string     `gorm:"not null" json:"symbol"`
	Action            string     `gorm:"not null" json:"action"`
	Volume            float64    `gorm:"not null" json:"volume"`
	EntryPrice        *float64   `json:"entry_price"`
	CurrentPrice      *float64   `json:"current_price"`
	StopLoss          *float64   `json:"stop_loss"`
	TakeProfit        *float64   `json:"take_profit"`
	ProfitLoss        float64    `gorm:"default:0" json:"profit_loss"`
	Status            string     `gorm:"default:open" json:"status"`
	CopiedFromAccount string     `json:"copied_from_account"`
	OpenTime          time.Time  `json:"open_time"`
	CloseTime         *time.Time `json:"close_time"`
}

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}
