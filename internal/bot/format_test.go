package bot

import (
	"testing"

	"staking_bot/internal/domain"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.9", "$999.90"},
		{"1000", "$1,000.00"},
		{"1234567.8", "$1,234,567.80"},
		{"-2000", "-$2,000.00"},
		{"1100.55", "$1,100.55"},
	}
	for _, c := range cases {
		got := formatMoney(decimal.RequireFromString(c.in))
		if got != c.want {
			t.Errorf("formatMoney(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"500", "500", true},
		{" $1,250.50 ", "1250.5", true},
		{"1 000", "1000", true},
		{"0", "", false},
		{"-5", "", false},
		{"abc", "", false},
		{"", "", false},
		{"$", "", false},
	}
	for _, c := range cases {
		got, ok := parseAmount(c.in)
		if ok != c.ok {
			t.Errorf("parseAmount(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("parseAmount(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParseCoin(t *testing.T) {
	if c, ok := parseCoin(" btc "); !ok || c != domain.CoinBTC {
		t.Errorf("parseCoin(btc) = %v, %v", c, ok)
	}
	if _, ok := parseCoin("DOGE"); ok {
		t.Error("parseCoin accepted DOGE")
	}
}

func TestEscape(t *testing.T) {
	if got := escape(`<b> & "x"`); got != `&lt;b&gt; &amp; "x"` {
		t.Errorf("escape = %q", got)
	}
}
