package core

import (
	"math"
	"testing"
	"time"
)

func TestOHLCV_IsValid(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		bar  OHLCV
		want bool
	}{
		{"valid", OHLCV{Symbol: "AAPL", Close: 185.2, Time: now}, true},
		{"missing symbol", OHLCV{Close: 185.2, Time: now}, false},
		{"zero time", OHLCV{Symbol: "AAPL", Close: 185.2}, false},
		{"zero close", OHLCV{Symbol: "AAPL", Time: now}, false},
		{"infinite close", OHLCV{Symbol: "AAPL", Close: math.Inf(1), Time: now}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bar.IsValid(); got != tc.want {
				t.Errorf("IsValid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMarket_Constants(t *testing.T) {
	markets := []Market{MarketUS, MarketHK, MarketCNA, MarketEU, MarketIN}
	expected := []string{"US", "HK", "CN_A", "EU", "IN"}

	for i, m := range markets {
		if string(m) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], m)
		}
	}
}
