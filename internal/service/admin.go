package service

import (
	"context"
	"errors"

	"staking_bot/internal/config"
	"staking_bot/internal/db"
	"staking_bot/internal/domain"
	"staking_bot/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AdminService holds the operator-only ledger operations. Callers are
// responsible for the authorization check via IsAdmin before invoking
// any mutation here.
type AdminService struct {
	db          *pgxpool.Pool
	accounts    *repository.AccountRepository
	deposits    *repository.DepositRepository
	rewards     *repository.RewardRepository
	withdrawals *repository.WithdrawalRepository
	settings    *repository.SettingsRepository
	cfg         *config.Config
	notifier    Notifier
}

func NewAdminService(pool *pgxpool.Pool, cfg *config.Config, notifier Notifier) *AdminService {
	return &AdminService{
		db:          pool,
		accounts:    repository.NewAccountRepository(pool),
		deposits:    repository.NewDepositRepository(pool),
		rewards:     repository.NewRewardRepository(pool),
		withdrawals: repository.NewWithdrawalRepository(pool),
		settings:    repository.NewSettingsRepository(pool),
		cfg:         cfg,
		notifier:    notifier,
	}
}

// IsAdmin is the capability check for every operation in this service.
// Operators configured via ADMIN_CHAT_IDS pass regardless of the
// database flag.
func (s *AdminService) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	if s.cfg.IsAdminChat(chatID) {
		return true, nil
	}
	return s.accounts.IsAdmin(ctx, chatID)
}

// CreditFunds adds amount to the target's liquid balance and records
// the deposit, atomically. The user is notified after commit only.
func (s *AdminService) CreditFunds(ctx context.Context, targetChatID int64, amount decimal.Decimal, coin domain.Coin) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	account, err := s.accounts.GetByChatID(ctx, targetChatID)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, ErrAccountNotFound
	}

	var newBalance decimal.Decimal
	err = db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		newBalance, err = s.accounts.AddBalanceTx(ctx, tx, account.ID, amount)
		if err != nil {
			return err
		}
		return s.deposits.CreateTx(ctx, tx, &domain.DepositRecord{
			AccountID: account.ID,
			Coin:      coin,
			Amount:    amount,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.notifier.FundsCredited(targetChatID, amount, coin, newBalance)
	return newBalance, nil
}

// CreditReward appends a reward record. Rewards are informational and
// deliberately do not touch the liquid balance.
func (s *AdminService) CreditReward(ctx context.Context, targetChatID int64, amount decimal.Decimal, coin domain.Coin) error {
	if !amount.IsPositive() || amount.GreaterThan(s.cfg.RewardMax) {
		return ErrRewardOutOfRange
	}

	account, err := s.accounts.GetByChatID(ctx, targetChatID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := s.rewards.Create(ctx, &domain.RewardRecord{
		AccountID: account.ID,
		Coin:      coin,
		Amount:    amount,
	}); err != nil {
		return err
	}

	s.notifier.RewardCredited(targetChatID, amount, coin)
	return nil
}

// DeleteDeposit reverses an admin credit: the record is removed and
// the balance debited by its amount in one transaction. The balance
// may go negative when the credited funds were already staked or
// withdrawn; the inconsistency is surfaced, not clamped.
func (s *AdminService) DeleteDeposit(ctx context.Context, depositID int64) (*domain.DepositRecord, decimal.Decimal, error) {
	var (
		deposit    *domain.DepositRecord
		newBalance decimal.Decimal
	)
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		deposit, err = s.deposits.GetForUpdateTx(ctx, tx, depositID)
		if err != nil {
			return err
		}
		if deposit == nil {
			return ErrDepositNotFound
		}

		newBalance, err = s.accounts.AddBalanceTx(ctx, tx, deposit.AccountID, deposit.Amount.Neg())
		if err != nil {
			return err
		}
		return s.deposits.DeleteTx(ctx, tx, depositID)
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return deposit, newBalance, nil
}

// ListDeposits returns a target account's deposits for the reversal
// picker.
func (s *AdminService) ListDeposits(ctx context.Context, accountID int64) ([]domain.DepositRecord, error) {
	return s.deposits.ListByAccount(ctx, accountID)
}

// AccountSummary is one row of the operator account listing.
type AccountSummary struct {
	Account  domain.Account
	Deposits []domain.CoinTotal
	Rewards  []domain.CoinTotal
}

// ListAccountSummaries returns every account with its per-coin deposit
// and reward totals.
func (s *AdminService) ListAccountSummaries(ctx context.Context) ([]AccountSummary, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		deposits, err := s.deposits.SumByCoin(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		rewards, err := s.rewards.SumByCoin(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, AccountSummary{Account: a, Deposits: deposits, Rewards: rewards})
	}
	return summaries, nil
}

// ListAccounts returns every account for selection keyboards.
func (s *AdminService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.ListAll(ctx)
}

// GetAccountByChatID resolves a target account or ErrAccountNotFound.
func (s *AdminService) GetAccountByChatID(ctx context.Context, chatID int64) (*domain.Account, error) {
	a, err := s.accounts.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// PendingWithdrawals lists unsettled withdrawal requests, oldest first.
func (s *AdminService) PendingWithdrawals(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	return s.withdrawals.ListPending(ctx)
}

// ErrWithdrawalSettled marks an attempt to settle a request twice.
var ErrWithdrawalSettled = errors.New("withdrawal already settled")

// SettleWithdrawal completes or rejects a pending request and notifies
// the owner. Rejection refunds the debited amount in the same
// transaction. Settling twice is an error, not a second refund.
func (s *AdminService) SettleWithdrawal(ctx context.Context, id int64, status domain.WithdrawalStatus, notes string) (*domain.WithdrawalRequest, error) {
	if status != domain.WithdrawalStatusCompleted && status != domain.WithdrawalStatusRejected {
		return nil, ErrWithdrawalSettled
	}

	var req *domain.WithdrawalRequest
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		req, err = s.withdrawals.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if req == nil || req.Status != domain.WithdrawalStatusPending {
			return ErrWithdrawalSettled
		}

		settled, err := s.withdrawals.SetStatusTx(ctx, tx, id, status, notes)
		if err != nil {
			return err
		}
		if !settled {
			return ErrWithdrawalSettled
		}
		req.Status = status
		req.AdminNotes = notes

		if status == domain.WithdrawalStatusRejected {
			if _, err := s.accounts.AddBalanceTx(ctx, tx, req.AccountID, req.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fresh, err := s.withdrawals.GetByID(ctx, id); err == nil && fresh != nil {
		req = fresh
	}
	if account, err := s.accounts.GetByID(ctx, req.AccountID); err == nil && account != nil {
		s.notifier.WithdrawalSettled(account.ChatID, req)
	}
	return req, nil
}

// SetAdmin grants or revokes the database admin flag.
func (s *AdminService) SetAdmin(ctx context.Context, chatID int64, isAdmin bool) error {
	return s.accounts.SetAdmin(ctx, chatID, isAdmin)
}

// MaintenanceMode reports whether the bot is closed for non-admins.
func (s *AdminService) MaintenanceMode(ctx context.Context) (bool, error) {
	return s.settings.MaintenanceMode(ctx)
}

// SetMaintenanceMode flips maintenance mode.
func (s *AdminService) SetMaintenanceMode(ctx context.Context, mode bool, updatedBy int64) error {
	return s.settings.SetMaintenanceMode(ctx, mode, updatedBy)
}

// Stats summarizes the platform ledger for the operator dashboard.
type Stats struct {
	TotalAccounts      int64           `json:"total_accounts"`
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalStaked        decimal.Decimal `json:"total_staked"`
	ActivePositions    int64           `json:"active_positions"`
	TotalDeposited     decimal.Decimal `json:"total_deposited"`
	TotalRewards       decimal.Decimal `json:"total_rewards"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
}

// GetStats reads each aggregate independently; a failed aggregate
// leaves its zero value rather than failing the whole report.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&stats.TotalAccounts)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&stats.TotalBalance)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(staked_amount), 0) FROM accounts`).Scan(&stats.TotalStaked)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM staking_positions WHERE active`).Scan(&stats.ActivePositions)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM deposit_records`).Scan(&stats.TotalDeposited)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM reward_records`).Scan(&stats.TotalRewards)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'pending'`).Scan(&stats.PendingWithdrawals)

	return stats, nil
}
