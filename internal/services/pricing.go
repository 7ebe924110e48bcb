package services

import (
	"math"
	"time"
)

// sessionAmount prices a session: duration in hours times the student's
// billing rate, rounded half-up to two decimal places.
func sessionAmount(startAt, endAt time.Time, rate float64) float64 {
	hours := endAt.Sub(startAt).Seconds() / 3600
	return roundToCents(hours * rate)
}

func roundToCents(value float64) float64 {
	return math.Floor(value*100+0.5) / 100
}

// amountMinorUnits converts an already-rounded amount to integer minor units
// (cents). Rounding must happen before this conversion, never after, or the
// processor would see a truncated amount.
func amountMinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}
