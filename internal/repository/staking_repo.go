package repository

import (
	"context"

	"staking_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type StakingRepository struct {
	db *pgxpool.Pool
}

func NewStakingRepository(db *pgxpool.Pool) *StakingRepository {
	return &StakingRepository{db: db}
}

const stakingColumns = `id, account_id, coin, principal, term_days, start_date, end_date, active, created_at`

func scanPosition(row pgx.Row) (*domain.StakingPosition, error) {
	var p domain.StakingPosition
	if err := row.Scan(
		&p.ID, &p.AccountID, &p.Coin, &p.Principal, &p.TermDays,
		&p.StartDate, &p.EndDate, &p.Active, &p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateTx inserts a new position inside the staking transaction.
func (r *StakingRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *domain.StakingPosition) error {
	return tx.QueryRow(ctx,
		`INSERT INTO staking_positions (account_id, coin, principal, term_days, start_date, end_date, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		p.AccountID, p.Coin, p.Principal, p.TermDays, p.StartDate, p.EndDate, p.Active,
	).Scan(&p.ID, &p.CreatedAt)
}

// GetForUpdateTx locks a position row for mutation.
func (r *StakingRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.StakingPosition, error) {
	return scanPosition(tx.QueryRow(ctx,
		`SELECT `+stakingColumns+` FROM staking_positions WHERE id = $1 FOR UPDATE`, id))
}

// GetByID returns a position, or nil if none.
func (r *StakingRepository) GetByID(ctx context.Context, id int64) (*domain.StakingPosition, error) {
	return scanPosition(r.db.QueryRow(ctx,
		`SELECT `+stakingColumns+` FROM staking_positions WHERE id = $1`, id))
}

// HasActiveTx reports whether the account already holds an active
// position for the coin. Used by the single-position rule.
func (r *StakingRepository) HasActiveTx(ctx context.Context, tx pgx.Tx, accountID int64, coin domain.Coin) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM staking_positions
		    WHERE account_id = $1 AND coin = $2 AND active)`,
		accountID, coin).Scan(&exists)
	return exists, err
}

// UpdatePrincipalTx writes the remaining principal; the position is
// closed when it reaches zero.
func (r *StakingRepository) UpdatePrincipalTx(ctx context.Context, tx pgx.Tx, id int64, principal decimal.Decimal, active bool) error {
	_, err := tx.Exec(ctx,
		`UPDATE staking_positions SET principal = $2, active = $3 WHERE id = $1`,
		id, principal, active)
	return err
}

// UpdateTermTx rewrites the term; the end date moves with it while the
// start date and principal stay fixed.
func (r *StakingRepository) UpdateTermTx(ctx context.Context, tx pgx.Tx, id int64, termDays int) error {
	_, err := tx.Exec(ctx,
		`UPDATE staking_positions
		 SET term_days = $2, end_date = start_date + make_interval(days => $2)
		 WHERE id = $1`,
		id, termDays)
	return err
}

// ListActiveByAccount returns active positions, most recent first.
func (r *StakingRepository) ListActiveByAccount(ctx context.Context, accountID int64) ([]domain.StakingPosition, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stakingColumns+`
		 FROM staking_positions
		 WHERE account_id = $1 AND active
		 ORDER BY start_date DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPositions(rows)
}

// ListActiveByAccountCoin returns active positions for one coin,
// most recent first.
func (r *StakingRepository) ListActiveByAccountCoin(ctx context.Context, accountID int64, coin domain.Coin) ([]domain.StakingPosition, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stakingColumns+`
		 FROM staking_positions
		 WHERE account_id = $1 AND coin = $2 AND active
		 ORDER BY start_date DESC`, accountID, coin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPositions(rows)
}

func collectPositions(rows pgx.Rows) ([]domain.StakingPosition, error) {
	var positions []domain.StakingPosition
	for rows.Next() {
		var p domain.StakingPosition
		if err := rows.Scan(
			&p.ID, &p.AccountID, &p.Coin, &p.Principal, &p.TermDays,
			&p.StartDate, &p.EndDate, &p.Active, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
