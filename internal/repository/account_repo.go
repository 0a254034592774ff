package repository

import (
	"context"

	"staking_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, chat_id, username, first_name, last_name, balance, staked_amount,
	is_admin, COALESCE(referral_code, ''), referred_by, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(
		&a.ID, &a.ChatID, &a.Username, &a.FirstName, &a.LastName,
		&a.Balance, &a.StakedAmount, &a.IsAdmin, &a.ReferralCode,
		&a.ReferredBy, &a.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetByChatID returns the account for a Telegram chat, or nil if none.
func (r *AccountRepository) GetByChatID(ctx context.Context, chatID int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE chat_id = $1`, chatID)
	return scanAccount(row)
}

// GetByID returns the account by primary key, or nil if none.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByReferralCode returns the account owning a referral code, or nil.
func (r *AccountRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE referral_code = $1`, code)
	return scanAccount(row)
}

// CreateTx inserts a new account. The insert is idempotent on chat_id:
// when another transaction won the race, the existing row is returned.
func (r *AccountRepository) CreateTx(ctx context.Context, tx pgx.Tx, a *domain.Account) (created bool, err error) {
	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (chat_id, username, first_name, last_name, referral_code)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (chat_id) DO NOTHING
		 RETURNING id, created_at`,
		a.ChatID, a.Username, a.FirstName, a.LastName, a.ReferralCode,
	).Scan(&a.ID, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		existing, err := scanAccount(tx.QueryRow(ctx,
			`SELECT `+accountColumns+` FROM accounts WHERE chat_id = $1`, a.ChatID))
		if err != nil {
			return false, err
		}
		*a = *existing
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetForUpdateTx locks the account row for the rest of the transaction
// and returns its current state. Every balance mutation must re-read
// through this lock rather than trust a pre-transaction snapshot.
func (r *AccountRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

// UpdateBalancesTx writes new liquid and staked balances for a locked
// account row.
func (r *AccountRepository) UpdateBalancesTx(ctx context.Context, tx pgx.Tx, id int64, balance, staked decimal.Decimal) error {
	_, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $2, staked_amount = $3 WHERE id = $1`,
		id, balance, staked)
	return err
}

// AddBalanceTx adjusts the liquid balance by delta (may be negative)
// and returns the new balance.
func (r *AccountRepository) AddBalanceTx(ctx context.Context, tx pgx.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx,
		`UPDATE accounts SET balance = balance + $2 WHERE id = $1 RETURNING balance`,
		id, delta).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return decimal.Zero, pgx.ErrNoRows
	}
	return newBalance, err
}

// IsAdmin is the capability check for admin ledger operations.
func (r *AccountRepository) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRow(ctx,
		`SELECT is_admin FROM accounts WHERE chat_id = $1`, chatID).Scan(&isAdmin)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return isAdmin, err
}

// SetAdmin flags or unflags an account as admin.
func (r *AccountRepository) SetAdmin(ctx context.Context, chatID int64, isAdmin bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE accounts SET is_admin = $2 WHERE chat_id = $1`, chatID, isAdmin)
	return err
}

// SetReferredBy records which account referred this one. A second
// referral acceptance is a no-op reported to the caller.
func (r *AccountRepository) SetReferredBy(ctx context.Context, id, referrerID int64) (bool, error) {
	res, err := r.db.Exec(ctx,
		`UPDATE accounts SET referred_by = $2 WHERE id = $1 AND referred_by IS NULL`,
		id, referrerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// ListAll returns every account, oldest first.
func (r *AccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID, &a.ChatID, &a.Username, &a.FirstName, &a.LastName,
			&a.Balance, &a.StakedAmount, &a.IsAdmin, &a.ReferralCode,
			&a.ReferredBy, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateWalletTx stores a per-coin deposit address with its encrypted key.
func (r *AccountRepository) CreateWalletTx(ctx context.Context, tx pgx.Tx, w *domain.AccountWallet) error {
	return tx.QueryRow(ctx,
		`INSERT INTO account_wallets (account_id, coin, address, private_key_enc)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_id, coin) DO UPDATE SET address = account_wallets.address
		 RETURNING id, created_at`,
		w.AccountID, w.Coin, w.Address, w.PrivateKeyEnc,
	).Scan(&w.ID, &w.CreatedAt)
}

// WalletsByAccount lists an account's deposit addresses in coin order.
func (r *AccountRepository) WalletsByAccount(ctx context.Context, accountID int64) ([]domain.AccountWallet, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, coin, address, private_key_enc, created_at
		 FROM account_wallets WHERE account_id = $1 ORDER BY coin`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []domain.AccountWallet
	for rows.Next() {
		var w domain.AccountWallet
		if err := rows.Scan(&w.ID, &w.AccountID, &w.Coin, &w.Address, &w.PrivateKeyEnc, &w.CreatedAt); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}
