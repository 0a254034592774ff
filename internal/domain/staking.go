package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StakingPosition freezes principal for a fixed term. Principal is
// swept from the liquid balance at stake time and only returns to it
// through unstaking. A position stays active through partial unstakes
// and closes when principal reaches zero.
type StakingPosition struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	Coin      Coin            `db:"coin"`
	Principal decimal.Decimal `db:"principal"`
	TermDays  int             `db:"term_days"`
	StartDate time.Time       `db:"start_date"`
	EndDate   time.Time       `db:"end_date"`
	Active    bool            `db:"active"`
	CreatedAt time.Time       `db:"created_at"`
}

// DaysRemaining returns whole days until the position matures, rounded
// up. Negative when past due; callers decide how to display that.
func (p *StakingPosition) DaysRemaining(now time.Time) int {
	d := p.EndDate.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
