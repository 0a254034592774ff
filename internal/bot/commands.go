package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staking_bot/internal/domain"
	"staking_bot/internal/service"

	"github.com/shopspring/decimal"
)

func (b *Bot) helpMessage(isAdmin bool) string {
	var sb strings.Builder
	sb.WriteString(`<b>💰 Wallet</b>
/balance - Balance and staked funds
/wallets - Your deposit addresses
/withdraw - Request a withdrawal
/deposits - Deposit history
/rewards - Reward history

<b>📈 Staking</b>
/stake - Stake your balance
/staked - Active staking positions
/unstake - Return staked funds
/apr - Current staking rate

<b>👥 Referral</b>
/referral - Your referral code`)

	if isAdmin {
		sb.WriteString(`

<b>🔧 Operator</b>
/stats - Platform statistics
/users - All accounts
/addfunds &lt;chat_id&gt; &lt;amount&gt; &lt;coin&gt; - Credit funds
/addrewards &lt;chat_id&gt; &lt;amount&gt; &lt;coin&gt; - Credit a reward
/deletefunds &lt;chat_id&gt; - Reverse a deposit
/modifystake &lt;position_id&gt; &lt;days&gt; - Change a term
/pending - Pending withdrawals
/approve &lt;id&gt; [notes] - Complete a withdrawal
/reject &lt;id&gt; &lt;reason&gt; - Reject a withdrawal
/maintenance on|off - Toggle maintenance mode
/broadcast - Message every user
/addadmin &lt;chat_id&gt; - Grant admin`)
	}
	return sb.String()
}

func (b *Bot) handleStart(ctx context.Context, account *domain.Account, args string) string {
	if code := strings.TrimSpace(args); code != "" {
		if err := b.accounts.AcceptReferral(ctx, account, code); err == nil {
			b.send(account.ChatID, "🎉 Referral accepted!")
		}
	}

	return fmt.Sprintf(`👋 Welcome, <b>%s</b>!

This bot keeps a custodial wallet for you. Deposit crypto to your
personal addresses (/wallets), stake your balance to earn %s%% APR
(/stake), and withdraw any time (/withdraw).

Use /help to see every command.`,
		escape(account.DisplayName()), b.cfg.APRPercent.String())
}

func (b *Bot) handleBalance(ctx context.Context, account *domain.Account) string {
	// re-read: the cached struct may predate a credit
	fresh, err := b.accounts.Get(ctx, account.ChatID)
	if err != nil {
		return errText(err)
	}

	return fmt.Sprintf(`<b>💰 Your balance</b>

Available: <b>%s</b>
Staked: <b>%s</b>
Total: <b>%s</b>`,
		formatMoney(fresh.Balance),
		formatMoney(fresh.StakedAmount),
		formatMoney(fresh.Balance.Add(fresh.StakedAmount)))
}

func (b *Bot) handleWallets(ctx context.Context, account *domain.Account) string {
	wallets, err := b.accounts.Wallets(ctx, account.ID)
	if err != nil {
		return errText(err)
	}
	if len(wallets) == 0 {
		return "❌ No deposit addresses yet. Try /start again."
	}

	var sb strings.Builder
	sb.WriteString("<b>📥 Your deposit addresses</b>\n\n")
	for _, w := range wallets {
		sb.WriteString(fmt.Sprintf("<b>%s</b>\n<code>%s</code>\n\n", w.Coin, escape(w.Address)))
	}
	sb.WriteString("Deposits are credited after confirmation by an operator.")
	return sb.String()
}

func (b *Bot) handleStaked(ctx context.Context, account *domain.Account) string {
	positions, err := b.staking.ListActive(ctx, account.ID)
	if err != nil {
		return errText(err)
	}
	if len(positions) == 0 {
		return "You have no active staking positions. Use /stake to start earning."
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("<b>📈 Active staking positions</b>\n\n")
	for _, p := range positions {
		sb.WriteString(fmt.Sprintf(`#%d <b>%s</b>
Principal: %s
Term: %d days (ends %s)
Days remaining: %d
Projected reward: %s

`,
			p.ID, p.Coin,
			formatMoney(p.Principal),
			p.TermDays, p.EndDate.Format("02.01.2006"),
			p.DaysRemaining(now),
			formatMoney(b.projectedReward(p))))
	}
	sb.WriteString("Use /unstake to return funds to your balance.")
	return sb.String()
}

// projectedReward is the simple-interest estimate for the full term.
func (b *Bot) projectedReward(p domain.StakingPosition) decimal.Decimal {
	days := decimal.NewFromInt(int64(p.TermDays))
	return p.Principal.
		Mul(b.cfg.APRPercent).
		Mul(days).
		Div(decimal.NewFromInt(100 * 365)).
		Round(2)
}

func (b *Bot) handleDepositHistory(ctx context.Context, account *domain.Account) string {
	deposits, err := b.ledger.DepositHistory(ctx, account.ID)
	if err != nil {
		return errText(err)
	}
	if len(deposits) == 0 {
		return "No deposits yet. Use /wallets to get your addresses."
	}

	totals, err := b.ledger.DepositSummary(ctx, account.ID)
	if err != nil {
		return errText(err)
	}

	var sb strings.Builder
	sb.WriteString("<b>📥 Deposit history</b>\n\n")
	for _, d := range deposits {
		sb.WriteString(fmt.Sprintf("%s | %s %s\n",
			d.CreatedAt.Format("02.01.2006 15:04"), d.Coin, formatMoney(d.Amount)))
	}
	sb.WriteString("\n<b>Totals:</b>\n")
	for _, t := range totals {
		sb.WriteString(fmt.Sprintf("%s: %s\n", t.Coin, formatMoney(t.Total)))
	}
	sb.WriteString(fmt.Sprintf("All coins: <b>%s</b>", formatMoney(domain.Sum(totals))))
	return sb.String()
}

func (b *Bot) handleRewardHistory(ctx context.Context, account *domain.Account) string {
	rewards, err := b.ledger.RewardHistory(ctx, account.ID)
	if err != nil {
		return errText(err)
	}
	if len(rewards) == 0 {
		return "No rewards yet. Stake your balance with /stake."
	}

	totals, err := b.ledger.RewardSummary(ctx, account.ID)
	if err != nil {
		return errText(err)
	}

	var sb strings.Builder
	sb.WriteString("<b>🎁 Reward history</b>\n\n")
	for _, r := range rewards {
		sb.WriteString(fmt.Sprintf("%s | %s %s\n",
			r.CreatedAt.Format("02.01.2006 15:04"), r.Coin, formatMoney(r.Amount)))
	}
	sb.WriteString(fmt.Sprintf("\nTotal earned: <b>%s</b>", formatMoney(domain.Sum(totals))))
	return sb.String()
}

func (b *Bot) handleReferral(account *domain.Account) string {
	return fmt.Sprintf(`<b>👥 Referral program</b>

Your code: <code>%s</code>

Share it with friends. They can join with:
<code>/start %s</code>`,
		escape(account.ReferralCode), escape(account.ReferralCode))
}

func (b *Bot) handleReferralAccept(ctx context.Context, account *domain.Account, args string) string {
	code := strings.TrimSpace(args)
	if code == "" {
		return "❌ Usage: /referralaccept <code>"
	}
	if err := b.accounts.AcceptReferral(ctx, account, code); err != nil {
		switch {
		case errors.Is(err, service.ErrReferralUsed):
			return "❌ You have already accepted a referral."
		case errors.Is(err, service.ErrReferralInvalid):
			return "❌ That referral code is not valid."
		default:
			return errText(err)
		}
	}
	return "🎉 Referral accepted!"
}

func (b *Bot) handleAPR() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>📊 Staking rate: %s%% APR</b>\n\nMinimum stake amounts:\n", b.cfg.APRPercent.String()))
	for _, coin := range domain.Coins {
		if min, ok := b.staking.Minimum(coin); ok {
			sb.WriteString(fmt.Sprintf("%s: %s\n", coin, formatMoney(min)))
		}
	}
	sb.WriteString("\nAvailable terms: ")
	for i, t := range b.cfg.StakingTerms {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d days", t))
	}
	return sb.String()
}
