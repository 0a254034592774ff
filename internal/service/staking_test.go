package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"staking_bot/internal/domain"
	"staking_bot/internal/service"

	"github.com/shopspring/decimal"
)

func TestStakeSweepsFullBalance(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "3000", domain.CoinBTC)

	pos, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 90)
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if !pos.Principal.Equal(decimal.RequireFromString("3000")) {
		t.Fatalf("principal = %s, want 3000", pos.Principal)
	}
	if pos.TermDays != 90 || !pos.Active {
		t.Fatalf("position = %+v, want active 90-day term", pos)
	}

	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.Balance.IsZero() {
		t.Fatalf("balance = %s after stake, want 0", got.Balance)
	}
	if !got.StakedAmount.Equal(decimal.RequireFromString("3000")) {
		t.Fatalf("staked = %s, want 3000", got.StakedAmount)
	}
}

func TestStakeMinimumBoundary(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())

	// one cent below the BTC minimum must be rejected
	below := mustAccount(t, pool)
	mustCredit(t, admin, below.ChatID, "1099.99", domain.CoinBTC)
	if _, err := staking.Stake(ctx, below.ID, domain.CoinBTC, 90); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("stake below minimum: err = %v, want ErrInvalidAmount", err)
	}

	// the exact minimum must pass
	exact := mustAccount(t, pool)
	mustCredit(t, admin, exact.ChatID, "1100", domain.CoinBTC)
	if _, err := staking.Stake(ctx, exact.ID, domain.CoinBTC, 90); err != nil {
		t.Fatalf("stake exact minimum: %v", err)
	}
}

func TestStakeValidation(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "5000", domain.CoinBTC)

	if _, err := staking.Stake(ctx, a.ID, domain.CoinETH, 90); !errors.Is(err, service.ErrInvalidCoin) {
		t.Fatalf("stake unstakeable coin: err = %v, want ErrInvalidCoin", err)
	}
	if _, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 91); !errors.Is(err, service.ErrInvalidTerm) {
		t.Fatalf("stake bad term: err = %v, want ErrInvalidTerm", err)
	}

	if _, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 180); err != nil {
		t.Fatalf("stake: %v", err)
	}
	if _, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 180); !errors.Is(err, service.ErrInvalidAmount) && !errors.Is(err, service.ErrPositionExists) {
		t.Fatalf("second stake on empty balance: err = %v", err)
	}
}

func TestUnstakePartialThenFull(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "2000", domain.CoinBTC)
	pos, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 90)
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	// partial unstake leaves the position active
	pos, balance, err := staking.Unstake(ctx, a.ID, pos.ID, decimal.RequireFromString("500"))
	if err != nil {
		t.Fatalf("partial unstake: %v", err)
	}
	if !pos.Active {
		t.Fatal("position closed after partial unstake")
	}
	if !pos.Principal.Equal(decimal.RequireFromString("1500")) {
		t.Fatalf("principal = %s, want 1500", pos.Principal)
	}
	if !balance.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("balance = %s, want 500", balance)
	}

	// asking for more than remains must fail without side effects
	if _, _, err := staking.Unstake(ctx, a.ID, pos.ID, decimal.RequireFromString("1500.01")); !errors.Is(err, service.ErrAmountExceedsStaked) {
		t.Fatalf("overdraw unstake: err = %v, want ErrAmountExceedsStaked", err)
	}

	// unstaking the remainder closes it
	pos, balance, err = staking.Unstake(ctx, a.ID, pos.ID, decimal.RequireFromString("1500"))
	if err != nil {
		t.Fatalf("full unstake: %v", err)
	}
	if pos.Active {
		t.Fatal("position still active after full unstake")
	}
	if !balance.Equal(decimal.RequireFromString("2000")) {
		t.Fatalf("balance = %s, want 2000", balance)
	}

	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.StakedAmount.IsZero() {
		t.Fatalf("staked = %s after full unstake, want 0", got.StakedAmount)
	}

	// the closed position can no longer be touched
	if _, _, err := staking.Unstake(ctx, a.ID, pos.ID, decimal.RequireFromString("1")); !errors.Is(err, service.ErrNoActivePosition) {
		t.Fatalf("unstake closed position: err = %v, want ErrNoActivePosition", err)
	}
}

func TestModifyStakeChangesTermOnly(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "1800", domain.CoinSUI)
	pos, err := staking.Stake(ctx, a.ID, domain.CoinSUI, 90)
	if err != nil {
		t.Fatalf("stake: %v", err)
	}

	if _, err := staking.ModifyStake(ctx, pos.ID, 77); !errors.Is(err, service.ErrInvalidTerm) {
		t.Fatalf("modify to bad term: err = %v, want ErrInvalidTerm", err)
	}

	updated, err := staking.ModifyStake(ctx, pos.ID, 280)
	if err != nil {
		t.Fatalf("modify stake: %v", err)
	}
	if updated.TermDays != 280 {
		t.Fatalf("term = %d, want 280", updated.TermDays)
	}
	if !updated.Principal.Equal(pos.Principal) {
		t.Fatalf("principal changed: %s -> %s", pos.Principal, updated.Principal)
	}
	if !updated.StartDate.Equal(pos.StartDate) {
		t.Fatalf("start date changed: %s -> %s", pos.StartDate, updated.StartDate)
	}
	want := pos.StartDate.AddDate(0, 0, 280)
	if !updated.EndDate.Equal(want) {
		t.Fatalf("end date = %s, want %s", updated.EndDate, want)
	}
}

func TestConcurrentStakeNoDoubleSpend(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "3000", domain.CoinBTC)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = staking.Stake(ctx, a.ID, domain.CoinBTC, 90)
		}(i)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrInvalidAmount) || errors.Is(err, service.ErrPositionExists):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || failed != 1 {
		t.Fatalf("got %d successes and %d rejections, want exactly 1 of each", ok, failed)
	}

	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.StakedAmount.Equal(decimal.RequireFromString("3000")) {
		t.Fatalf("staked = %s, want 3000 (no double count)", got.StakedAmount)
	}
	if !got.Balance.IsZero() {
		t.Fatalf("balance = %s, want 0", got.Balance)
	}

	positions, err := staking.ListActive(ctx, a.ID)
	if err != nil {
		t.Fatalf("list positions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("active positions = %d, want 1", len(positions))
	}
}
