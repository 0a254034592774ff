package service_test

import (
	"context"
	"errors"
	"testing"

	"staking_bot/internal/domain"
	"staking_bot/internal/service"

	"github.com/shopspring/decimal"
)

const ethAddr = "0x52908400098527886E0F7030069857D2E4169EE7"

func TestWithdrawDebitsAndRecords(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})
	accounts := newAccountService(t, pool)

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "250", domain.CoinETH)

	req, err := ledger.Withdraw(ctx, a.ID, domain.CoinETH, decimal.RequireFromString("100"), ethAddr)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if req.Status != domain.WithdrawalStatusPending {
		t.Fatalf("status = %s, want pending", req.Status)
	}

	got, err := accounts.Get(ctx, a.ChatID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if !got.Balance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("balance = %s, want 150", got.Balance)
	}
}

func TestWithdrawValidation(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "100", domain.CoinETH)

	if _, err := ledger.Withdraw(ctx, a.ID, domain.CoinETH, decimal.Zero, ethAddr); !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("zero amount: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := ledger.Withdraw(ctx, a.ID, domain.CoinETH, decimal.RequireFromString("10"), "not-an-address"); !errors.Is(err, service.ErrInvalidAddress) {
		t.Fatalf("bad address: err = %v, want ErrInvalidAddress", err)
	}
	if _, err := ledger.Withdraw(ctx, a.ID, domain.CoinBTC, decimal.RequireFromString("10"), ethAddr); !errors.Is(err, service.ErrInvalidAddress) {
		t.Fatalf("address for wrong coin: err = %v, want ErrInvalidAddress", err)
	}
	if _, err := ledger.Withdraw(ctx, a.ID, domain.CoinETH, decimal.RequireFromString("100.01"), ethAddr); !errors.Is(err, service.ErrInsufficientBalance) {
		t.Fatalf("overdraw: err = %v, want ErrInsufficientBalance", err)
	}
}

func TestWithdrawDistinguishesStakedFunds(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	admin := service.NewAdminService(pool, testConfig(), service.NopNotifier{})
	ledger := service.NewLedgerService(pool, service.NopNotifier{})
	staking := service.NewStakingService(pool, testConfig())

	a := mustAccount(t, pool)
	mustCredit(t, admin, a.ChatID, "1100", domain.CoinBTC)
	if _, err := staking.Stake(ctx, a.ID, domain.CoinBTC, 90); err != nil {
		t.Fatalf("stake: %v", err)
	}
	mustCredit(t, admin, a.ChatID, "50", domain.CoinBTC)

	// liquid 50, staked 1100: asking for 200 is "funds locked",
	// not "no funds"
	_, err := ledger.Withdraw(ctx, a.ID, domain.CoinBTC,
		decimal.RequireFromString("200"), "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	if !errors.Is(err, service.ErrFundsStaked) {
		t.Fatalf("err = %v, want ErrFundsStaked", err)
	}
}
