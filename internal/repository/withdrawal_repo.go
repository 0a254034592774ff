package repository

import (
	"context"
	"time"

	"staking_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

const withdrawalColumns = `id, account_id, coin, amount, address, status, admin_notes, created_at, processed_at`

// CreateTx inserts a pending request inside the debiting transaction.
func (r *WithdrawalRepository) CreateTx(ctx context.Context, tx pgx.Tx, w *domain.WithdrawalRequest) error {
	w.Status = domain.WithdrawalStatusPending
	return tx.QueryRow(ctx,
		`INSERT INTO withdrawal_requests (account_id, coin, amount, address, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		w.AccountID, w.Coin, w.Amount, w.Address, w.Status,
	).Scan(&w.ID, &w.CreatedAt)
}

// GetByID returns a withdrawal request, or nil if none.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := r.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id,
	).Scan(&w.ID, &w.AccountID, &w.Coin, &w.Amount, &w.Address, &w.Status, &w.AdminNotes, &w.CreatedAt, &w.ProcessedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListPending returns requests awaiting settlement, oldest first.
func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+`
		 FROM withdrawal_requests
		 WHERE status = 'pending'
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		var w domain.WithdrawalRequest
		if err := rows.Scan(&w.ID, &w.AccountID, &w.Coin, &w.Amount, &w.Address, &w.Status, &w.AdminNotes, &w.CreatedAt, &w.ProcessedAt); err != nil {
			return nil, err
		}
		requests = append(requests, w)
	}
	return requests, rows.Err()
}

// GetForUpdateTx locks a request row for settlement.
func (r *WithdrawalRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := tx.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id,
	).Scan(&w.ID, &w.AccountID, &w.Coin, &w.Amount, &w.Address, &w.Status, &w.AdminNotes, &w.CreatedAt, &w.ProcessedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// SetStatusTx settles a pending request. Returns false when the
// request was already settled or does not exist.
func (r *WithdrawalRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus, notes string) (bool, error) {
	res, err := tx.Exec(ctx,
		`UPDATE withdrawal_requests
		 SET status = $2, admin_notes = $3, processed_at = $4
		 WHERE id = $1 AND status = 'pending'`,
		id, status, notes, time.Now())
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}
