package services

import (
	"errors"
	"testing"
	"time"

	"github.com/algosignal/signalhub/internal/models"
)

func TestCreateSignalDefaults(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	entry := 1.0850
	signal, err := service.CreateSignal(NewSignal{
		AccountID:  "10023",
		Symbol:     "EURUSD",
		Action:     models.ActionBuy,
		Volume:     0.5,
		EntryPrice: &entry,
	})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	if signal.ID == 0 {
		t.Error("signal id not assigned")
	}
	if signal.Status != models.SignalStatusOpen {
		t.Errorf("Status = %q, want open", signal.Status)
	}
	if signal.OpenTime.IsZero() {
		t.Error("OpenTime not set")
	}
	if signal.IsCopied {
		t.Error("new signal must not be flagged as copied")
	}
}

func TestCreateSignalValidation(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	cases := []struct {
		name string
		req  NewSignal
	}{
		{"bad action", NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "HOLD", Volume: 0.5}},
		{"zero volume", NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "BUY", Volume: 0}},
		{"missing account", NewSignal{Symbol: "EURUSD", Action: "BUY", Volume: 0.5}},
		{"missing symbol", NewSignal{AccountID: "10023", Action: "SELL", Volume: 0.5}},
	}

	for _, tc := range cases {
		_, err := service.CreateSignal(tc.req)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("%s: err = %v, want ValidationError", tc.name, err)
		}
	}
}

func TestUpdateSignalAlwaysRewritesPriceAndPnl(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	signal, err := service.CreateSignal(NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "BUY", Volume: 0.5})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	price := 1.0900
	pnl := 25.0
	updated, err := service.UpdateSignal(signal.ID, SignalUpdate{CurrentPrice: &price, ProfitLoss: &pnl})
	if err != nil {
		t.Fatalf("Failed to update signal: %v", err)
	}
	if updated.CurrentPrice == nil || *updated.CurrentPrice != price {
		t.Errorf("CurrentPrice = %v, want %v", updated.CurrentPrice, price)
	}

	// An update that omits price and P&L clears the stored values
	status := models.SignalStatusOpen
	updated, err = service.UpdateSignal(signal.ID, SignalUpdate{Status: &status})
	if err != nil {
		t.Fatalf("Failed to update signal: %v", err)
	}
	if updated.CurrentPrice != nil {
		t.Errorf("CurrentPrice = %v, want cleared", *updated.CurrentPrice)
	}
	if updated.ProfitLoss != nil {
		t.Errorf("ProfitLoss = %v, want cleared", *updated.ProfitLoss)
	}
}

func TestUpdateSignalCloseComputesDuration(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	signal, err := service.CreateSignal(NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "SELL", Volume: 0.2})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	closeTime := signal.OpenTime.Add(90 * time.Minute)
	updated, err := service.UpdateSignal(signal.ID, SignalUpdate{CloseTime: &closeTime})
	if err != nil {
		t.Fatalf("Failed to close signal: %v", err)
	}

	if updated.Status != models.SignalStatusClosed {
		t.Errorf("Status = %q, want closed after close_time", updated.Status)
	}
	if updated.CloseTime == nil {
		t.Fatal("CloseTime not stored")
	}
	if updated.DurationMinutes == nil || *updated.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %v, want 90", updated.DurationMinutes)
	}
}

func TestUpdateSignalCloseTimeOverridesStatus(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	signal, err := service.CreateSignal(NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "BUY", Volume: 0.5})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	// A close time never coexists with an open status
	status := models.SignalStatusOpen
	closeTime := signal.OpenTime.Add(15 * time.Minute)
	updated, err := service.UpdateSignal(signal.ID, SignalUpdate{Status: &status, CloseTime: &closeTime})
	if err != nil {
		t.Fatalf("Failed to close signal: %v", err)
	}

	if updated.Status != models.SignalStatusClosed {
		t.Errorf("Status = %q, want closed when close_time is supplied", updated.Status)
	}
	if updated.CloseTime == nil {
		t.Fatal("CloseTime not stored")
	}
	if updated.DurationMinutes == nil || *updated.DurationMinutes != 15 {
		t.Errorf("DurationMinutes = %v, want 15", updated.DurationMinutes)
	}
}

func TestUpdateSignalUnknownID(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	_, err := service.UpdateSignal(999, SignalUpdate{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSignal on unknown id = %v, want ErrNotFound", err)
	}
}

func TestUpdateSignalRejectsBadStatus(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	signal, err := service.CreateSignal(NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "BUY", Volume: 0.5})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	status := "cancelled"
	_, err = service.UpdateSignal(signal.ID, SignalUpdate{Status: &status})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("UpdateSignal with bad status = %v, want ValidationError", err)
	}
}

func TestTopPerformingOrdering(t *testing.T) {
	db := newTestDB(t)
	accountService := NewAccountService(db)
	signalService := NewSignalService(db)

	for _, reg := range []struct {
		id    string
		stats AccountStats
	}{
		{"leader", AccountStats{ProfitLoss: 900, WinRate: 80, TotalTrades: 60, WinningTrades: 48}},
		{"laggard", AccountStats{ProfitLoss: -400, WinRate: 30, TotalTrades: 20, WinningTrades: 6}},
	} {
		if _, err := accountService.Register(reg.id, reg.id, "Broker-Demo"); err != nil {
			t.Fatalf("Failed to register %s: %v", reg.id, err)
		}
		if _, err := accountService.UpdateStats(reg.id, reg.stats); err != nil {
			t.Fatalf("Failed to update stats for %s: %v", reg.id, err)
		}
	}

	// Leader: one closed winner, one open trade. Laggard: one open trade.
	winner, err := signalService.CreateSignal(NewSignal{AccountID: "leader", Symbol: "EURUSD", Action: "BUY", Volume: 0.5})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}
	pnl := 40.0
	closeTime := winner.OpenTime.Add(30 * time.Minute)
	if _, err := signalService.UpdateSignal(winner.ID, SignalUpdate{ProfitLoss: &pnl, CloseTime: &closeTime}); err != nil {
		t.Fatalf("Failed to close signal: %v", err)
	}

	open, err := signalService.CreateSignal(NewSignal{AccountID: "leader", Symbol: "GBPUSD", Action: "SELL", Volume: 0.3})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}
	openPnl := 5.0
	if _, err := signalService.UpdateSignal(open.ID, SignalUpdate{ProfitLoss: &openPnl}); err != nil {
		t.Fatalf("Failed to update signal: %v", err)
	}

	if _, err := signalService.CreateSignal(NewSignal{AccountID: "laggard", Symbol: "USDJPY", Action: "BUY", Volume: 0.1}); err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	signals, err := signalService.TopPerforming(10)
	if err != nil {
		t.Fatalf("Failed to fetch top signals: %v", err)
	}

	if len(signals) != 3 {
		t.Fatalf("len(signals) = %d, want 3", len(signals))
	}
	if signals[0].AccountID != "leader" || signals[1].AccountID != "leader" {
		t.Error("leader's signals must rank first")
	}
	if signals[2].AccountID != "laggard" {
		t.Errorf("signals[2].AccountID = %q, want laggard", signals[2].AccountID)
	}
	if signals[0].ID != winner.ID {
		t.Errorf("signals[0].ID = %d, want the higher-P&L signal %d first within the account", signals[0].ID, winner.ID)
	}

	// Closed signals report their stored duration, open ones minutes since open
	if signals[0].CurrentDuration != 30 {
		t.Errorf("closed CurrentDuration = %v, want 30", signals[0].CurrentDuration)
	}
	if signals[1].CurrentDuration < 0 {
		t.Errorf("open CurrentDuration = %v, want non-negative", signals[1].CurrentDuration)
	}

	// The limit caps the feed
	capped, err := signalService.TopPerforming(2)
	if err != nil {
		t.Fatalf("Failed to fetch top signals: %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("len(capped) = %d, want 2", len(capped))
	}
}

func TestTopPerformingRanksUnknownPnlLast(t *testing.T) {
	db := newTestDB(t)
	accountService := NewAccountService(db)
	signalService := NewSignalService(db)

	if _, err := accountService.Register("10023", "Trader", "Broker-Demo"); err != nil {
		t.Fatalf("Failed to register account: %v", err)
	}

	loser, err := signalService.CreateSignal(NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "BUY", Volume: 0.5})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}
	pnl := -50.0
	if _, err := signalService.UpdateSignal(loser.ID, SignalUpdate{ProfitLoss: &pnl}); err != nil {
		t.Fatalf("Failed to update signal: %v", err)
	}

	// No P&L reported yet for this one
	fresh, err := signalService.CreateSignal(NewSignal{AccountID: "10023", Symbol: "GBPUSD", Action: "SELL", Volume: 0.3})
	if err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	signals, err := signalService.TopPerforming(10)
	if err != nil {
		t.Fatalf("Failed to fetch top signals: %v", err)
	}

	if len(signals) != 2 {
		t.Fatalf("len(signals) = %d, want 2", len(signals))
	}
	if signals[0].ID != loser.ID {
		t.Errorf("signals[0].ID = %d, want %d: losing P&L still outranks unreported P&L", signals[0].ID, loser.ID)
	}
	if signals[1].ID != fresh.ID {
		t.Errorf("signals[1].ID = %d, want %d last", signals[1].ID, fresh.ID)
	}
}

func TestPendingSignals(t *testing.T) {
	db := newTestDB(t)
	service := NewSignalService(db)

	if _, err := service.CreateSignal(NewSignal{AccountID: "10023", Symbol: "EURUSD", Action: "BUY", Volume: 0.5}); err != nil {
		t.Fatalf("Failed to create signal: %v", err)
	}

	pending := models.Signal{
		AccountID: "10023",
		Symbol:    "GBPUSD",
		Action:    models.ActionSell,
		Volume:    0.2,
		Status:    models.SignalStatusPending,
		OpenTime:  time.Now(),
	}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("Failed to insert pending signal: %v", err)
	}

	signals, err := service.PendingSignals()
	if err != nil {
		t.Fatalf("Failed to fetch pending signals: %v", err)
	}

	if len(signals) != 1 {
		t.Fatalf("len(signals) = %d, want only the pending one", len(signals))
	}
	if signals[0].ID != pending.ID {
		t.Errorf("signals[0].ID = %d, want %d", signals[0].ID, pending.ID)
	}
}
