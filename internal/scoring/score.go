// Package scoring ranks demo accounts by blending profitability, win rate
// and trade count into a single 0-100 performance score.
package scoring

import (
	"math"
)

// Sub-score weights: 40% profit, 30% win rate, 30% trade volume
const (
	profitWeight  = 0.4
	winRateWeight = 0.3
	volumeWeight  = 0.3
)

// minTrades is the sample size below which an account is not scored
const minTrades = 5

// Score maps an account's aggregate stats to a performance score in [0,100].
// Zero P&L maps to a profit sub-score of 50 and saturates at +-$1000; the
// trade-count sub-score saturates at 50 trades. Win rate is expected to
// already be on a 0-100 scale.
func Score(profitLoss, winRate float64, totalTrades int) float64 {
	if totalTrades < minTrades {
		return 0
	}

	profitScore := clamp(profitLoss/1000*50+50, 0, 100)
	winRateScore := winRate
	volumeScore := math.Min(100, float64(totalTrades)/50*100)

	return profitScore*profitWeight + winRateScore*winRateWeight + volumeScore*volumeWeight
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
