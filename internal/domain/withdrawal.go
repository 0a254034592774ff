package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus tracks manual settlement of a withdrawal request.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// WithdrawalRequest is created after the liquid balance has been
// debited. An operator later completes or rejects it; there is no
// automated settlement.
type WithdrawalRequest struct {
	ID          int64            `db:"id"`
	AccountID   int64            `db:"account_id"`
	Coin        Coin             `db:"coin"`
	Amount      decimal.Decimal  `db:"amount"`
	Address     string           `db:"address"`
	Status      WithdrawalStatus `db:"status"`
	AdminNotes  string           `db:"admin_notes"`
	CreatedAt   time.Time        `db:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at"`
}
