package dto

const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// Markets offered on the trading menu, display label → data-provider symbol.
var ForexPairs = map[string]string{
	"📊 EUR/USD": "EUR/USD",
	"📊 GBP/USD": "GBP/USD",
	"📊 USD/JPY": "USD/JPY",
	"📊 GOLD":    "XAU/USD",
}

// ForexPairLabels fixes the keyboard ordering; maps iterate randomly.
var ForexPairLabels = []string{
	"📊 EUR/USD",
	"📊 GBP/USD",
	"📊 USD/JPY",
	"📊 GOLD",
}

const (
	Interval5Min = "5min"
)
