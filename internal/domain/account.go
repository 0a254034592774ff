package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the ledger entity for one Telegram chat. Balance is the
// liquid (stakeable/withdrawable) portion; StakedAmount caches the sum
// of active staking principal and is maintained alongside it.
type Account struct {
	ID           int64           `db:"id"`
	ChatID       int64           `db:"chat_id"`
	Username     string          `db:"username"`
	FirstName    string          `db:"first_name"`
	LastName     string          `db:"last_name"`
	Balance      decimal.Decimal `db:"balance"`
	StakedAmount decimal.Decimal `db:"staked_amount"`
	IsAdmin      bool            `db:"is_admin"`
	ReferralCode string          `db:"referral_code"`
	ReferredBy   *int64          `db:"referred_by"`
	CreatedAt    time.Time       `db:"created_at"`
}

// DisplayName returns the best human-readable name for the account.
func (a *Account) DisplayName() string {
	if a.FirstName != "" {
		if a.LastName != "" {
			return a.FirstName + " " + a.LastName
		}
		return a.FirstName
	}
	if a.Username != "" {
		return "@" + a.Username
	}
	return "Unknown"
}

// AccountWallet is a per-coin deposit address with its encrypted
// private key. Key material never leaves this record unencrypted.
type AccountWallet struct {
	ID            int64     `db:"id"`
	AccountID     int64     `db:"account_id"`
	Coin          Coin      `db:"coin"`
	Address       string    `db:"address"`
	PrivateKeyEnc string    `db:"private_key_enc"`
	CreatedAt     time.Time `db:"created_at"`
}
