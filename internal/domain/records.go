package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositRecord is an admin-credited deposit. Immutable except for
// admin reversal, which deletes the record and debits the balance it
// credited.
type DepositRecord struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	Coin      Coin            `db:"coin"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

// RewardRecord is an append-only reward credit. Rewards are
// informational: they do not move the liquid balance.
type RewardRecord struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	Coin      Coin            `db:"coin"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

// CoinTotal is one row of a per-coin aggregation. Coins with no
// records are omitted, never zero-filled.
type CoinTotal struct {
	Coin  Coin            `db:"coin"`
	Total decimal.Decimal `db:"total"`
}

// Sum returns the grand total across all coins.
func Sum(totals []CoinTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t.Total)
	}
	return sum
}
