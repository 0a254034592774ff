package service

import (
	"staking_bot/internal/domain"

	"github.com/shopspring/decimal"
)

// Notifier delivers best-effort outbound notifications after a ledger
// operation commits. Implementations must never return errors into the
// ledger path; delivery failures are logged and dropped. Message
// formatting belongs to the implementation, not the ledger.
type Notifier interface {
	FundsCredited(chatID int64, amount decimal.Decimal, coin domain.Coin, newBalance decimal.Decimal)
	RewardCredited(chatID int64, amount decimal.Decimal, coin domain.Coin)
	WithdrawalRequested(account *domain.Account, req *domain.WithdrawalRequest)
	WithdrawalSettled(chatID int64, req *domain.WithdrawalRequest)
}

// NopNotifier is used in tests and tooling.
type NopNotifier struct{}

func (NopNotifier) FundsCredited(int64, decimal.Decimal, domain.Coin, decimal.Decimal) {}
func (NopNotifier) RewardCredited(int64, decimal.Decimal, domain.Coin)                 {}
func (NopNotifier) WithdrawalRequested(*domain.Account, *domain.WithdrawalRequest)     {}
func (NopNotifier) WithdrawalSettled(int64, *domain.WithdrawalRequest)                 {}
