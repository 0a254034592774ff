package wallet

import (
	"regexp"

	"staking_bot/internal/domain"
)

// Per-coin address format checks. These are format validators only;
// they prove nothing about the address existing on chain.
var addressPatterns = map[domain.Coin]*regexp.Regexp{
	domain.CoinBTC:  regexp.MustCompile(`^(bc1|[13])[a-zA-HJ-NP-Z0-9]{25,39}$`),
	domain.CoinETH:  regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`),
	domain.CoinSOL:  regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`),
	domain.CoinSUI:  regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`),
	domain.CoinLINK: regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`),
}

// ValidAddress reports whether address matches the coin's format.
// Unknown coins never validate.
func ValidAddress(coin domain.Coin, address string) bool {
	re, ok := addressPatterns[coin]
	if !ok {
		return false
	}
	return re.MatchString(address)
}
