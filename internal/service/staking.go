package service

import (
	"context"
	"time"

	"staking_bot/internal/config"
	"staking_bot/internal/db"
	"staking_bot/internal/domain"
	"staking_bot/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StakingService governs the liquid/staked transitions for an account.
// Every mutation re-reads the account under a row lock inside its
// transaction, so two racing operations serialize on the store rather
// than act on stale balances.
type StakingService struct {
	db        *pgxpool.Pool
	accounts  *repository.AccountRepository
	positions *repository.StakingRepository
	cfg       *config.Config
}

func NewStakingService(pool *pgxpool.Pool, cfg *config.Config) *StakingService {
	return &StakingService{
		db:        pool,
		accounts:  repository.NewAccountRepository(pool),
		positions: repository.NewStakingRepository(pool),
		cfg:       cfg,
	}
}

// Minimum returns the stake minimum for a coin; ok is false for coins
// that cannot be staked.
func (s *StakingService) Minimum(coin domain.Coin) (decimal.Decimal, bool) {
	min, ok := s.cfg.StakingMinimums[coin]
	return min, ok
}

// Stake sweeps the account's entire liquid balance into a new position.
// There is deliberately no amount parameter: staking always freezes
// whatever is currently liquid.
func (s *StakingService) Stake(ctx context.Context, accountID int64, coin domain.Coin, termDays int) (*domain.StakingPosition, error) {
	min, ok := s.cfg.StakingMinimums[coin]
	if !ok {
		return nil, ErrInvalidCoin
	}
	if !s.cfg.ValidTerm(termDays) {
		return nil, ErrInvalidTerm
	}

	var pos *domain.StakingPosition
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		account, err := s.accounts.GetForUpdateTx(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		principal := account.Balance
		if !principal.IsPositive() || principal.LessThan(min) {
			return ErrInvalidAmount
		}

		if !s.cfg.StakingAllowMultiple {
			exists, err := s.positions.HasActiveTx(ctx, tx, accountID, coin)
			if err != nil {
				return err
			}
			if exists {
				return ErrPositionExists
			}
		}

		now := time.Now()
		pos = &domain.StakingPosition{
			AccountID: accountID,
			Coin:      coin,
			Principal: principal,
			TermDays:  termDays,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, termDays),
			Active:    true,
		}
		if err := s.positions.CreateTx(ctx, tx, pos); err != nil {
			return err
		}

		return s.accounts.UpdateBalancesTx(ctx, tx, accountID,
			decimal.Zero, account.StakedAmount.Add(principal))
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// Unstake returns amount of principal to the liquid balance. Partial
// unstakes keep the position active; unstaking the full principal
// closes it. Returns the updated position and the new liquid balance.
func (s *StakingService) Unstake(ctx context.Context, accountID, positionID int64, amount decimal.Decimal) (*domain.StakingPosition, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}

	var (
		pos        *domain.StakingPosition
		newBalance decimal.Decimal
	)
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		// account first, position second: same lock order as Stake
		account, err := s.accounts.GetForUpdateTx(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		pos, err = s.positions.GetForUpdateTx(ctx, tx, positionID)
		if err != nil {
			return err
		}
		if pos == nil || pos.AccountID != accountID || !pos.Active {
			return ErrNoActivePosition
		}
		if amount.GreaterThan(pos.Principal) {
			return ErrAmountExceedsStaked
		}

		pos.Principal = pos.Principal.Sub(amount)
		pos.Active = pos.Principal.IsPositive()
		if err := s.positions.UpdatePrincipalTx(ctx, tx, pos.ID, pos.Principal, pos.Active); err != nil {
			return err
		}

		newBalance = account.Balance.Add(amount)
		return s.accounts.UpdateBalancesTx(ctx, tx, accountID,
			newBalance, account.StakedAmount.Sub(amount))
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return pos, newBalance, nil
}

// ModifyStake changes the term of an active position. Principal and
// start date are untouched; the end date follows the new term.
func (s *StakingService) ModifyStake(ctx context.Context, positionID int64, newTermDays int) (*domain.StakingPosition, error) {
	if !s.cfg.ValidTerm(newTermDays) {
		return nil, ErrInvalidTerm
	}

	var pos *domain.StakingPosition
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		pos, err = s.positions.GetForUpdateTx(ctx, tx, positionID)
		if err != nil {
			return err
		}
		if pos == nil || !pos.Active {
			return ErrNoActivePosition
		}

		if err := s.positions.UpdateTermTx(ctx, tx, pos.ID, newTermDays); err != nil {
			return err
		}
		pos.TermDays = newTermDays
		pos.EndDate = pos.StartDate.AddDate(0, 0, newTermDays)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pos, nil
}

// ListActive returns the account's active positions, most recent first.
func (s *StakingService) ListActive(ctx context.Context, accountID int64) ([]domain.StakingPosition, error) {
	return s.positions.ListActiveByAccount(ctx, accountID)
}

// ListActiveByCoin narrows ListActive to one coin.
func (s *StakingService) ListActiveByCoin(ctx context.Context, accountID int64, coin domain.Coin) ([]domain.StakingPosition, error) {
	return s.positions.ListActiveByAccountCoin(ctx, accountID, coin)
}
