package core

import (
	"math"
	"time"
)

// Market represents a trading market
type Market string

const (
	MarketUS  Market = "US"
	MarketHK  Market = "HK"
	MarketCNA Market = "CN_A"
	MarketEU  Market = "EU"
	MarketIN  Market = "IN"
)

// AssetType represents the type of financial asset
type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetIndex AssetType = "index"
	AssetETF   AssetType = "etf"
)

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"` // "1d", "1wk", "1mo"
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Time     time.Time `json:"time"`
}

// IsValid checks that the bar carries a usable closing price
func (b OHLCV) IsValid() bool {
	return b.Symbol != "" && !b.Time.IsZero() && b.Close > 0 && !math.IsInf(b.Close, 0)
}

// Point is a single timestamped value
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
