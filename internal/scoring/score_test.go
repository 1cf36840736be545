package scoring

import (
	"math"
	"testing"
)

func TestScoreInsufficientSample(t *testing.T) {
	for _, trades := range []int{0, 1, 4} {
		if got := Score(5000, 100, trades); got != 0 {
			t.Errorf("Score with %d trades = %v, want 0", trades, got)
		}
	}
}

func TestScoreWeightedExample(t *testing.T) {
	// profit sub-score 75, win rate 60, trade volume saturated at 100
	got := Score(500, 60, 50)
	if math.Abs(got-78) > 1e-9 {
		t.Errorf("Score(500, 60, 50) = %v, want 78", got)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	cases := []struct {
		name        string
		profitLoss  float64
		winRate     float64
		totalTrades int
	}{
		{"deep loss", -100000, 0, 5},
		{"big win", 100000, 100, 500},
		{"break even", 0, 50, 25},
	}

	for _, tc := range cases {
		got := Score(tc.profitLoss, tc.winRate, tc.totalTrades)
		if got < 0 || got > 100 {
			t.Errorf("%s: Score = %v, want within [0,100]", tc.name, got)
		}
	}
}

func TestScoreMonotonicInProfit(t *testing.T) {
	prev := Score(-2000, 50, 20)
	for _, pl := range []float64{-1000, -500, 0, 500, 1000, 2000} {
		got := Score(pl, 50, 20)
		if got < prev {
			t.Errorf("Score decreased from %v to %v at profit_loss=%v", prev, got, pl)
		}
		prev = got
	}
}

func TestScoreMonotonicInTrades(t *testing.T) {
	prev := Score(200, 55, 5)
	for _, trades := range []int{10, 25, 50, 100} {
		got := Score(200, 55, trades)
		if got < prev {
			t.Errorf("Score decreased from %v to %v at total_trades=%d", prev, got, trades)
		}
		prev = got
	}
}
