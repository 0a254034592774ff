package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"staking_bot/internal/config"
	"staking_bot/internal/domain"
	"staking_bot/internal/service"
	"staking_bot/internal/wallet"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var chatIDSeq atomic.Int64

func init() {
	chatIDSeq.Store(time.Now().UnixNano() % 1_000_000_000)
}

func nextChatID() int64 {
	return 5_000_000_000 + chatIDSeq.Add(1)
}

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	applyMigrations(t, pool)
	return pool
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		StakingTerms: []int{90, 180, 280},
		StakingMinimums: map[domain.Coin]decimal.Decimal{
			domain.CoinBTC: decimal.RequireFromString("1100"),
			domain.CoinSOL: decimal.RequireFromString("2500"),
			domain.CoinSUI: decimal.RequireFromString("1750"),
		},
		APRPercent: decimal.RequireFromString("5.25"),
		RewardMax:  decimal.RequireFromString("1000000"),
	}
}

func newAccountService(t *testing.T, pool *pgxpool.Pool) *service.AccountService {
	t.Helper()
	cipher, err := wallet.NewAESCipher("test-encryption-key")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	return service.NewAccountService(pool, wallet.NewRandProvider(), cipher)
}

func mustAccount(t *testing.T, pool *pgxpool.Pool) *domain.Account {
	t.Helper()
	accounts := newAccountService(t, pool)
	a, err := accounts.FindOrCreate(context.Background(), nextChatID(), "tester", "Test", "")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func mustCredit(t *testing.T, admin *service.AdminService, chatID int64, amount string, coin domain.Coin) decimal.Decimal {
	t.Helper()
	balance, err := admin.CreditFunds(context.Background(), chatID, decimal.RequireFromString(amount), coin)
	if err != nil {
		t.Fatalf("credit funds: %v", err)
	}
	return balance
}
