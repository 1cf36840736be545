// Package mt5 translates the loosely named JSON payloads sent by MetaTrader
// Expert Advisors into the hub's canonical signal and account fields.
package mt5

import (
	"strconv"
	"strings"
)

// Defaults applied when a payload omits a field entirely
const (
	DefaultVolume = 0.01
	DefaultAction = "BUY"
	DefaultStatus = "open"
)

// Alias precedence per canonical field: the first key present in the
// payload wins.
var (
	accountIDAliases    = []string{"account_id", "account", "login"}
	symbolAliases       = []string{"symbol", "pair"}
	actionAliases       = []string{"action", "type", "side"}
	volumeAliases       = []string{"volume", "lots", "lot"}
	entryPriceAliases   = []string{"entry_price", "price", "open_price"}
	currentPriceAliases = []string{"current_price", "price_current"}
	stopLossAliases     = []string{"stop_loss", "sl"}
	takeProfitAliases   = []string{"take_profit", "tp"}
	profitLossAliases   = []string{"profit_loss", "profit", "pnl"}
	tradeIDAliases      = []string{"trade_id", "ticket", "order_id"}
	statusAliases       = []string{"status"}
	nameAliases         = []string{"account_name", "name"}
	brokerAliases       = []string{"broker", "server", "company"}
)

// TradeData is a trade payload reduced to canonical fields. A zero TradeID
// means the payload describes a new signal rather than an update.
type TradeData struct {
	TradeID      uint
	AccountID    string
	Symbol       string
	Action       string
	Volume       float64
	EntryPrice   *float64
	CurrentPrice *float64
	StopLoss     *float64
	TakeProfit   *float64
	ProfitLoss   *float64
	Status       string
}

// AccountData is an account registration payload reduced to canonical fields
type AccountData struct {
	AccountID   string
	AccountName string
	Broker      string
}

// NormalizeTrade maps a raw EA payload onto the canonical trade fields,
// applying defaults for volume, action and status. No range validation
// happens here; the ledger rejects what it cannot store.
func NormalizeTrade(raw map[string]interface{}) TradeData {
	data := TradeData{
		AccountID:    pickString(raw, accountIDAliases, ""),
		Symbol:       pickString(raw, symbolAliases, ""),
		Action:       strings.ToUpper(pickString(raw, actionAliases, DefaultAction)),
		Volume:       pickFloat(raw, volumeAliases, DefaultVolume),
		EntryPrice:   pickOptionalFloat(raw, entryPriceAliases),
		CurrentPrice: pickOptionalFloat(raw, currentPriceAliases),
		StopLoss:     pickOptionalFloat(raw, stopLossAliases),
		TakeProfit:   pickOptionalFloat(raw, takeProfitAliases),
		ProfitLoss:   pickOptionalFloat(raw, profitLossAliases),
		Status:       pickString(raw, statusAliases, DefaultStatus),
	}

	if id := pickOptionalFloat(raw, tradeIDAliases); id != nil && *id > 0 {
		data.TradeID = uint(*id)
	}

	return data
}

// NormalizeAccount maps a raw EA payload onto the canonical account fields
func NormalizeAccount(raw map[string]interface{}) AccountData {
	return AccountData{
		AccountID:   pickString(raw, accountIDAliases, ""),
		AccountName: pickString(raw, nameAliases, ""),
		Broker:      pickString(raw, brokerAliases, ""),
	}
}

// pickString returns the first alias present in the payload coerced to a
// string. MT5 sends account logins as numbers, so numeric values count.
func pickString(raw map[string]interface{}, aliases []string, fallback string) string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
	}

	return fallback
}

// pickFloat returns the first alias present, or the fallback
func pickFloat(raw map[string]interface{}, aliases []string, fallback float64) float64 {
	if v := pickOptionalFloat(raw, aliases); v != nil {
		return *v
	}
	return fallback
}

// pickOptionalFloat tolerates MT5's habit of sending numbers as strings
func pickOptionalFloat(raw map[string]interface{}, aliases []string) *float64 {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			f := val
			return &f
		case string:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return &f
			}
		}
	}

	return nil
}
