package services

import (
	"testing"
	"time"
)

func TestSessionAmountMultipliesDurationByRate(t *testing.T) {
	startAt := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		duration time.Duration
		rate     float64
		want     float64
	}{
		{"ninety minutes", 90 * time.Minute, 20.00, 30.00},
		{"one hour", time.Hour, 45.50, 45.50},
		{"forty five minutes", 45 * time.Minute, 80.00, 60.00},
		{"zero rate", 2 * time.Hour, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sessionAmount(startAt, startAt.Add(tc.duration), tc.rate)
			if got != tc.want {
				t.Fatalf("expected %.2f, got %.2f", tc.want, got)
			}
		})
	}
}

func TestSessionAmountRoundsHalfUpToCents(t *testing.T) {
	startAt := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	// 0.5h * 1.01 = 0.505, which must round up to 0.51, not truncate to 0.50.
	got := sessionAmount(startAt, startAt.Add(30*time.Minute), 1.01)
	if got != 0.51 {
		t.Fatalf("expected 0.51, got %.4f", got)
	}

	// 20 minutes * 10.00 = 3.333... rounds down to 3.33.
	got = sessionAmount(startAt, startAt.Add(20*time.Minute), 10.00)
	if got != 3.33 {
		t.Fatalf("expected 3.33, got %.4f", got)
	}
}

func TestAmountMinorUnitsConvertsRoundedAmounts(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{30.00, 3000},
		{0.51, 51},
		{0, 0},
		// 19.99 has no exact float representation; the half-up step must
		// still land on 1999 rather than 1998.
		{19.99, 1999},
	}

	for _, tc := range cases {
		if got := amountMinorUnits(tc.amount); got != tc.want {
			t.Fatalf("amountMinorUnits(%.2f): expected %d, got %d", tc.amount, tc.want, got)
		}
	}
}
