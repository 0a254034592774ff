package repository

import (
	"context"

	"staking_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DepositRepository struct {
	db *pgxpool.Pool
}

func NewDepositRepository(db *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: db}
}

// CreateTx inserts a deposit record inside the crediting transaction.
func (r *DepositRepository) CreateTx(ctx context.Context, tx pgx.Tx, d *domain.DepositRecord) error {
	return tx.QueryRow(ctx,
		`INSERT INTO deposit_records (account_id, coin, amount)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		d.AccountID, d.Coin, d.Amount,
	).Scan(&d.ID, &d.CreatedAt)
}

// GetByID returns a deposit record, or nil if none.
func (r *DepositRepository) GetByID(ctx context.Context, id int64) (*domain.DepositRecord, error) {
	var d domain.DepositRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, account_id, coin, amount, created_at
		 FROM deposit_records WHERE id = $1`, id,
	).Scan(&d.ID, &d.AccountID, &d.Coin, &d.Amount, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetForUpdateTx locks a deposit record for deletion.
func (r *DepositRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.DepositRecord, error) {
	var d domain.DepositRecord
	err := tx.QueryRow(ctx,
		`SELECT id, account_id, coin, amount, created_at
		 FROM deposit_records WHERE id = $1 FOR UPDATE`, id,
	).Scan(&d.ID, &d.AccountID, &d.Coin, &d.Amount, &d.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteTx removes a deposit record inside the reversing transaction.
func (r *DepositRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM deposit_records WHERE id = $1`, id)
	return err
}

// ListByAccount returns deposits, most recent first.
func (r *DepositRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.DepositRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, coin, amount, created_at
		 FROM deposit_records
		 WHERE account_id = $1
		 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.DepositRecord
	for rows.Next() {
		var d domain.DepositRecord
		if err := rows.Scan(&d.ID, &d.AccountID, &d.Coin, &d.Amount, &d.CreatedAt); err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// SumByCoin aggregates deposit amounts per coin. Coins without
// deposits do not appear in the result.
func (r *DepositRepository) SumByCoin(ctx context.Context, accountID int64) ([]domain.CoinTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT coin, SUM(amount)
		 FROM deposit_records
		 WHERE account_id = $1
		 GROUP BY coin`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.CoinTotal
	for rows.Next() {
		var t domain.CoinTotal
		if err := rows.Scan(&t.Coin, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
