package domain

import "strings"

// Coin is a supported asset. Balances are denominated in USD regardless
// of coin; the coin only labels which deposit address / record a value
// belongs to.
type Coin string

const (
	CoinBTC  Coin = "BTC"
	CoinETH  Coin = "ETH"
	CoinSOL  Coin = "SOL"
	CoinSUI  Coin = "SUI"
	CoinLINK Coin = "LINK"
)

// Coins lists every supported coin in display order.
var Coins = []Coin{CoinBTC, CoinETH, CoinSOL, CoinSUI, CoinLINK}

// ParseCoin normalizes user input ("btc", "Btc", "BTC") to a Coin.
func ParseCoin(s string) (Coin, bool) {
	c := Coin(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Coins {
		if c == known {
			return c, true
		}
	}
	return "", false
}

func (c Coin) String() string { return string(c) }
