package school

import (
	"math"
	"strconv"
)

// Rate bands
const (
	BandLow  = "low"
	BandMid  = "mid"
	BandHigh = "high"
)

// ClampPercent constrains p to [0,100] and rounds it half up. Non-finite values give 0.
func ClampPercent(p float64) int {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(math.Floor(p + 0.5))
}

// Round2 rounds f to 2 decimal places. Non-finite values give 0.
func Round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Round(f*100) / 100
}

// Band classifies a rate as low (< 70), mid (< 85) or high.
func Band(p float64) string {
	x := ClampPercent(p)
	switch {
	case x < 70:
		return BandLow
	case x < 85:
		return BandMid
	default:
		return BandHigh
	}
}

// FormatScore prints whole scores without decimals and others with 2.
func FormatScore(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
