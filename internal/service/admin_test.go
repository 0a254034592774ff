package service_test

import (
	"context"
	"errors"
	"testing"

	"staking_bot/internal/domain"
	"staking_bot/internal/service"

	"github.com/shopspring/decimal"
)

func TestCreditFunds(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})

	a := mustAccount(t, pool)
	balance := mustCredit(t, admin, a.ChatID, "500", domain.CoinBTC)
	if !balance.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("balance = %s, want 500", balance)
	}

	deposits, err := ledger.DepositHistory(ctx, a.ID)
	if err != nil {
		t.Fatalf("deposit history: %v", err)
	}
	if len(deposits) != 1 {
		t.Fatalf("deposits = %d, want 1", len(deposits))
	}
	if deposits[0].Coin != domain.CoinBTC || !deposits[0].Amount.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("deposit = %+v", deposits[0])
	}

	if _, err := admin.CreditFunds(ctx, a.ChatID, decimal.Zero, domain.CoinBTC); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("credit zero: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := admin.CreditFunds(ctx, 1, decimal.RequireFromString("10"), domain.CoinBTC); !errors.Is(err, service.ErrAccountNotFound) {
		t.Fatalf("credit unknown chat: err = %v, want ErrAccountNotFound", err)
	}
}

func TestDeleteDepositReversal(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "500", domain.CoinETH)

	deposits, err := admin.ListDeposits(ctx, a.ID)
	if err != nil {
		t.Fatalf("list deposits: %v", err)
	}
	if len(deposits) != 1 {
		t.Fatalf("deposits = %d, want 1", len(deposits))
	}

	deleted, balance, err := admin.DeleteDeposit(ctx, deposits[0].ID)
	if err != nil {
		t.Fatalf("delete deposit: %v", err)
	}
	if !deleted.Amount.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("deleted amount = %s, want 500", deleted.Amount)
	}
	if !balance.IsZero() {
		t.Fatalf("balance = %s after reversal, want 0", balance)
	}

	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.Balance.IsZero() {
		t.Fatalf("stored balance = %s, want 0", got.Balance)
	}

	if _, _, err := admin.DeleteDeposit(ctx, deposits[0].ID); !errors.Is(err, service.ErrDepositNotFound) {
		t.Fatalf("delete twice: err = %v, want ErrDepositNotFound", err)
	}
}

func TestDeleteDepositMayDriveBalanceNegative(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "2000", domain.CoinBTC)

	// stake the credited funds, then reverse the credit
	if _, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 90); err != nil {
		t.Fatalf("stake: %v", err)
	}

	deposits, err := admin.ListDeposits(ctx, a.ID)
	if err != nil {
		t.Fatalf("list deposits: %v", err)
	}
	_, balance, err := admin.DeleteDeposit(ctx, deposits[0].ID)
	if err != nil {
		t.Fatalf("delete deposit: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("-2000")) {
		t.Fatalf("balance = %s, want -2000", balance)
	}
}

func TestCreditRewardBoundsAndIsolation(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)

	if err := admin.CreditReward(ctx, a.ChatID, decimal.Zero, domain.CoinSOL); !errors.Is(err, service.ErrRewardOutOfRange) {
		t.Fatalf("zero reward: err = %v, want ErrRewardOutOfRange", err)
	}
	if err := admin.CreditReward(ctx, a.ChatID, decimal.RequireFromString("1000000.01"), domain.CoinSOL); !errors.Is(err, service.ErrRewardOutOfRange) {
		t.Fatalf("oversized reward: err = %v, want ErrRewardOutOfRange", err)
	}
	if err := admin.CreditReward(ctx, a.ChatID, decimal.RequireFromString("1000000"), domain.CoinSOL); err != nil {
		t.Fatalf("max reward: %v", err)
	}

	// rewards are informational and never touch the balance
	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.Balance.IsZero() {
		t.Fatalf("balance = %s after reward, want 0", got.Balance)
	}

	rewards, err := ledger.RewardHistory(ctx, a.ID)
	if err != nil {
		t.Fatalf("reward history: %v", err)
	}
	if len(rewards) != 1 {
		t.Fatalf("rewards = %d, want 1", len(rewards))
	}
}

func TestSettleWithdrawal(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "300", domain.CoinETH)

	req, err := ledger.Withdraw(ctx, a.ID, domain.CoinETH,
		decimal.RequireFromString("100"), "0x52908400098527886E0F7030069857D2E4169EE7")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	pending, err := admin.PendingWithdrawals(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	found := false
	for _, p := range pending {
		if p.ID == req.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("request %d not in pending list", req.ID)
	}

	settled, err := admin.SettleWithdrawal(ctx, req.ID, domain.WithdrawalStatusCompleted, "tx sent")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != domain.WithdrawalStatusCompleted {
		t.Fatalf("status = %s, want completed", settled.Status)
	}
	if settled.ProcessedAt == nil {
		t.Fatal("processed_at not set")
	}

	// settling twice is rejected
	if _, err := admin.SettleWithdrawal(ctx, req.ID, domain.WithdrawalStatusRejected, ""); !errors.Is(err, service.ErrWithdrawalSettled) {
		t.Fatalf("settle twice: err = %v, want ErrWithdrawalSettled", err)
	}
}

func TestRejectWithdrawalRefunds(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "300", domain.CoinETH)

	req, err := ledger.Withdraw(ctx, a.ID, domain.CoinETH,
		decimal.RequireFromString("100"), "0x52908400098527886E0F7030069857D2E4169EE7")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	settled, err := admin.SettleWithdrawal(ctx, req.ID, domain.WithdrawalStatusRejected, "suspicious address")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if settled.AdminNotes != "suspicious address" {
		t.Fatalf("notes = %q", settled.AdminNotes)
	}

	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("balance = %s after reject, want 300 (refunded)", got.Balance)
	}
}

func TestMaintenanceModeToggle(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})

	if err := admin.SetMaintenanceMode(ctx, true, 42); err != nil {
		t.Fatalf("enable maintenance: %v", err)
	}
	on, err := admin.MaintenanceMode(ctx)
	if err != nil {
		t.Fatalf("read maintenance: %v", err)
	}
	if !on {
		t.Fatal("maintenance mode not enabled")
	}

	if err := admin.SetMaintenanceMode(ctx, false, 42); err != nil {
		t.Fatalf("disable maintenance: %v", err)
	}
	on, err = admin.MaintenanceMode(ctx)
	if err != nil {
		t.Fatalf("read maintenance: %v", err)
	}
	if on {
		t.Fatal("maintenance mode still enabled")
	}
}
