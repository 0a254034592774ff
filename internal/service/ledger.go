package service

import (
	"context"

	"staking_bot/internal/db"
	"staking_bot/internal/domain"
	"staking_bot/internal/repository"
	"staking_bot/internal/wallet"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerService exposes the user-facing ledger operations: withdrawal
// requests and the read-only deposit/reward views.
type LedgerService struct {
	db          *pgxpool.Pool
	accounts    *repository.AccountRepository
	deposits    *repository.DepositRepository
	rewards     *repository.RewardRepository
	withdrawals *repository.WithdrawalRepository
	notifier    Notifier
}

func NewLedgerService(pool *pgxpool.Pool, notifier Notifier) *LedgerService {
	return &LedgerService{
		db:          pool,
		accounts:    repository.NewAccountRepository(pool),
		deposits:    repository.NewDepositRepository(pool),
		rewards:     repository.NewRewardRepository(pool),
		withdrawals: repository.NewWithdrawalRepository(pool),
		notifier:    notifier,
	}
}

// Withdraw debits the liquid balance and records a pending withdrawal
// request in one transaction. When the balance is short but principal
// is staked, the failure is ErrFundsStaked so callers can tell "no
// money" from "money is locked". Operators are notified after commit;
// a notification failure never rolls back the debit.
func (s *LedgerService) Withdraw(ctx context.Context, accountID int64, coin domain.Coin, amount decimal.Decimal, address string) (*domain.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !wallet.ValidAddress(coin, address) {
		return nil, ErrInvalidAddress
	}

	var (
		req     *domain.WithdrawalRequest
		account *domain.Account
	)
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		account, err = s.accounts.GetForUpdateTx(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		if account.Balance.LessThan(amount) {
			if account.StakedAmount.IsPositive() {
				return ErrFundsStaked
			}
			return ErrInsufficientBalance
		}

		if err := s.accounts.UpdateBalancesTx(ctx, tx, accountID,
			account.Balance.Sub(amount), account.StakedAmount); err != nil {
			return err
		}

		req = &domain.WithdrawalRequest{
			AccountID: accountID,
			Coin:      coin,
			Amount:    amount,
			Address:   address,
		}
		return s.withdrawals.CreateTx(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.WithdrawalRequested(account, req)
	return req, nil
}

// DepositHistory returns the account's deposits, most recent first.
func (s *LedgerService) DepositHistory(ctx context.Context, accountID int64) ([]domain.DepositRecord, error) {
	return s.deposits.ListByAccount(ctx, accountID)
}

// RewardHistory returns the account's rewards, most recent first.
func (s *LedgerService) RewardHistory(ctx context.Context, accountID int64) ([]domain.RewardRecord, error) {
	return s.rewards.ListByAccount(ctx, accountID)
}

// DepositSummary aggregates deposits per coin.
func (s *LedgerService) DepositSummary(ctx context.Context, accountID int64) ([]domain.CoinTotal, error) {
	return s.deposits.SumByCoin(ctx, accountID)
}

// RewardSummary aggregates rewards per coin.
func (s *LedgerService) RewardSummary(ctx context.Context, accountID int64) ([]domain.CoinTotal, error) {
	return s.rewards.SumByCoin(ctx, accountID)
}
