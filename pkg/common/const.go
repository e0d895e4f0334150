package common

// Cache key formats. All are keyed by telegram user ID unless noted.
const (
	KeyUserState    = "user_state:%d"
	KeyPendingTrade = "pending_trade:%d"
	KeyPriceSeries  = "price_series:%s" // keyed by symbol
)
