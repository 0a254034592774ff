package bot

import (
	"strings"

	"staking_bot/internal/domain"

	"github.com/shopspring/decimal"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return htmlEscaper.Replace(s)
}

// formatMoney renders a USD amount with thousands separators and two
// decimal places: 1234567.8 -> "1,234,567.80".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	frac := s[len(s)-3:]

	var sb strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}

	out := "$" + sb.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// parseAmount accepts user-typed amounts with optional "$", commas and
// whitespace. Returns false for anything that is not a plain positive
// number.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func parseCoin(s string) (domain.Coin, bool) {
	return domain.ParseCoin(strings.TrimSpace(s))
}
