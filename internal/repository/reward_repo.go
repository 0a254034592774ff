package repository

import (
	"context"

	"staking_bot/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RewardRepository struct {
	db *pgxpool.Pool
}

func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create appends a reward record. Rewards never touch the liquid
// balance, so no surrounding transaction is needed.
func (r *RewardRepository) Create(ctx context.Context, rec *domain.RewardRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO reward_records (account_id, coin, amount)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		rec.AccountID, rec.Coin, rec.Amount,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// ListByAccount returns rewards, most recent first.
func (r *RewardRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.RewardRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, coin, amount, created_at
		 FROM reward_records
		 WHERE account_id = $1
		 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []domain.RewardRecord
	for rows.Next() {
		var rec domain.RewardRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Coin, &rec.Amount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rewards = append(rewards, rec)
	}
	return rewards, rows.Err()
}

// SumByCoin aggregates reward amounts per coin.
func (r *RewardRepository) SumByCoin(ctx context.Context, accountID int64) ([]domain.CoinTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT coin, SUM(amount)
		 FROM reward_records
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
