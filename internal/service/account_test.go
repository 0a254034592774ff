package service_test

import (
	"context"
	"errors"
	"testing"

	"staking_bot/internal/domain"
	"staking_bot/internal/service"
	"staking_bot/internal/wallet"
)

func TestFindOrCreateIdempotent(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	accounts := newAccountService(t, pool)
	chatID := nextChatID()

	first, err := accounts.FindOrCreate(ctx, chatID, "alice", "Alice", "A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := accounts.FindOrCreate(ctx, chatID, "alice", "Alice", "A")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if first.ReferralCode == "" {
		t.Fatal("no referral code generated")
	}

	wallets, err := accounts.Wallets(ctx, first.ID)
	if err != nil {
		t.Fatalf("wallets: %v", err)
	}
	if len(wallets) != len(domain.Coins) {
		t.Fatalf("wallets = %d, want one per coin (%d)", len(wallets), len(domain.Coins))
	}
	seen := map[domain.Coin]bool{}
	for _, w := range wallets {
		if !wallet.ValidAddress(w.Coin, w.Address) {
			t.Fatalf("generated %s address %q fails validation", w.Coin, w.Address)
		}
		seen[w.Coin] = true
	}
	if len(seen) != len(domain.Coins) {
		t.Fatalf("duplicate coins among wallets: %v", seen)
	}
}

func TestAcceptReferral(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	accounts := newAccountService(t, pool)

	referrer := mustAccount(t, pool)
	invitee := mustAccount(t, pool)

	if err := accounts.AcceptReferral(ctx, invitee, "NOPE1234"); !errors.Is(err, service.ErrReferralInvalid) {
		t.Fatalf("unknown code: err = %v, want ErrReferralInvalid", err)
	}
	if err := accounts.AcceptReferral(ctx, referrer, referrer.ReferralCode); !errors.Is(err, service.ErrReferralInvalid) {
		t.Fatalf("self referral: err = %v, want ErrReferralInvalid", err)
	}

	if err := accounts.AcceptReferral(ctx, invitee, referrer.ReferralCode); err != nil {
		t.Fatalf("accept referral: %v", err)
	}

	// an account accepts at most one referral
	reloaded, err := accounts.Get(ctx, invitee.ChatID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ReferredBy == nil || *reloaded.ReferredBy != referrer.ID {
		t.Fatalf("referred_by = %v, want %d", reloaded.ReferredBy, referrer.ID)
	}
	if err := accounts.AcceptReferral(ctx, reloaded, referrer.ReferralCode); !errors.Is(err, service.ErrReferralUsed) {
		t.Fatalf("second referral: err = %v, want ErrReferralUsed", err)
	}
}
