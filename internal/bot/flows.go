package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"staking_bot/internal/db"
	"staking_bot/internal/domain"
	"staking_bot/internal/service"
	"staking_bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

const (
	flowUnstake  = "unstake"
	flowWithdraw = "withdraw"
)

// retryTransient retries fn once on a serialization/deadlock failure.
// Validation errors and everything else pass through on the first try.
func retryTransient(fn func() error) error {
	err := fn()
	if db.IsTransient(err) {
		return fn()
	}
	return err
}

// errText maps ledger errors to user-facing messages. Unknown errors
// are deliberately not echoed back.
func errText(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return "❌ Invalid amount. Check the staking minimum with /apr."
	case errors.Is(err, service.ErrInvalidCoin):
		return "❌ This coin cannot be staked. See /apr."
	case errors.Is(err, service.ErrInvalidTerm):
		return "❌ Invalid staking term. See /apr."
	case errors.Is(err, service.ErrNoActivePosition):
		return "❌ No active staking position found."
	case errors.Is(err, service.ErrAmountExceedsStaked):
		return "❌ That is more than the staked principal."
	case errors.Is(err, service.ErrPositionExists):
		return "❌ You already have an active position for this coin."
	case errors.Is(err, service.ErrFundsStaked):
		return "🔒 Your funds are staked. Unstake them first with /unstake."
	case errors.Is(err, service.ErrInsufficientBalance):
		return "❌ Insufficient balance."
	case errors.Is(err, service.ErrInvalidAddress):
		return "❌ That address does not look valid for this coin."
	case errors.Is(err, service.ErrAccountNotFound):
		return "❌ Account not found."
	default:
		return "❌ Something went wrong. Please try again."
	}
}

func (b *Bot) startStakeFlow(ctx context.Context, account *domain.Account, msg *tgbotapi.Message) {
	fresh, err := b.accounts.Get(ctx, account.ChatID)
	if err != nil {
		b.reply(msg, errText(err))
		return
	}
	if !fresh.Balance.IsPositive() {
		b.reply(msg, "❌ Nothing to stake: your balance is empty. Deposit first (/wallets).")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, coin := range domain.Coins {
		if _, ok := b.staking.Minimum(coin); ok {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(string(coin), "stake_coin:"+string(coin)),
			))
		}
	}
	rows = append(rows, cancelRow())

	b.sendKeyboard(msg.Chat.ID, fmt.Sprintf(
		"📈 Staking locks your <b>entire available balance</b> (%s).\n\nPick a coin:",
		formatMoney(fresh.Balance)), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) startUnstakeFlow(ctx context.Context, account *domain.Account, msg *tgbotapi.Message) {
	positions, err := b.staking.ListActive(ctx, account.ID)
	if err != nil {
		b.reply(msg, errText(err))
		return
	}
	if len(positions) == 0 {
		b.reply(msg, "You have no active staking positions.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range positions {
		label := fmt.Sprintf("#%d %s %s", p.ID, p.Coin, formatMoney(p.Principal))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "unstake_pos:"+strconv.FormatInt(p.ID, 10)),
		))
	}
	rows = append(rows, cancelRow())

	b.sendKeyboard(msg.Chat.ID, "Which position do you want to unstake from?",
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) startWithdrawFlow(ctx context.Context, account *domain.Account, msg *tgbotapi.Message) {
	fresh, err := b.accounts.Get(ctx, account.ChatID)
	if err != nil {
		b.reply(msg, errText(err))
		return
	}
	if !fresh.Balance.IsPositive() {
		if fresh.StakedAmount.IsPositive() {
			b.reply(msg, errText(service.ErrFundsStaked))
		} else {
			b.reply(msg, errText(service.ErrInsufficientBalance))
		}
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, coin := range domain.Coins {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(string(coin), "wd_coin:"+string(coin)),
		))
	}
	rows = append(rows, cancelRow())

	b.sendKeyboard(msg.Chat.ID, fmt.Sprintf(
		"💸 Available: <b>%s</b>\n\nWhich coin do you want to withdraw?",
		formatMoney(fresh.Balance)), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// continueFlow feeds plain text into the active multi-step flow.
// Returns false when there is no flow in progress.
func (b *Bot) continueFlow(ctx context.Context, account *domain.Account, msg *tgbotapi.Message) bool {
	st, err := b.sessions.GetState(ctx, msg.Chat.ID)
	if err != nil {
		b.log.Error("session read failed", "chat_id", msg.Chat.ID, "error", err)
		return false
	}
	if st == nil {
		return false
	}

	switch st.Flow {
	case flowUnstake:
		b.continueUnstake(ctx, account, msg, st)
	case flowWithdraw:
		b.continueWithdraw(ctx, account, msg, st)
	case flowBroadcast:
		if isAdmin, _ := b.admin.IsAdmin(ctx, account.ChatID); isAdmin {
			b.executeBroadcast(ctx, msg)
		} else {
			_ = b.sessions.ClearState(ctx, msg.Chat.ID)
		}
	default:
		_ = b.sessions.ClearState(ctx, msg.Chat.ID)
		return false
	}
	return true
}

func (b *Bot) continueUnstake(ctx context.Context, account *domain.Account, msg *tgbotapi.Message, st *session.State) {
	amount, ok := parseAmount(msg.Text)
	if !ok {
		b.reply(msg, "❌ Enter a positive amount, e.g. <code>500</code> or <code>1,250.50</code>.")
		return
	}
	positionID, err := strconv.ParseInt(st.Get("position_id"), 10, 64)
	if err != nil {
		_ = b.sessions.ClearState(ctx, msg.Chat.ID)
		b.reply(msg, "❌ This flow expired. Start over with /unstake.")
		return
	}

	var (
		pos        *domain.StakingPosition
		newBalance decimal.Decimal
	)
	err = retryTransient(func() error {
		pos, newBalance, err = b.staking.Unstake(ctx, account.ID, positionID, amount)
		return err
	})
	if err != nil {
		b.reply(msg, errText(err))
		return
	}
	_ = b.sessions.ClearState(ctx, msg.Chat.ID)

	if pos.Active {
		b.reply(msg, fmt.Sprintf(
			"✅ Unstaked %s. Position #%d stays active with %s.\nAvailable balance: <b>%s</b>",
			formatMoney(amount), pos.ID, formatMoney(pos.Principal), formatMoney(newBalance)))
	} else {
		b.reply(msg, fmt.Sprintf(
			"✅ Unstaked %s. Position #%d is now closed.\nAvailable balance: <b>%s</b>",
			formatMoney(amount), pos.ID, formatMoney(newBalance)))
	}
}

func (b *Bot) continueWithdraw(ctx context.Context, account *domain.Account, msg *tgbotapi.Message, st *session.State) {
	switch st.Step {
	case 1: // awaiting amount
		amount, ok := parseAmount(msg.Text)
		if !ok {
			b.reply(msg, "❌ Enter a positive amount, e.g. <code>100</code>.")
			return
		}
		st.Set("amount", amount.String())
		st.Step = 2
		if err := b.sessions.SetState(ctx, msg.Chat.ID, st); err != nil {
			b.log.Error("session write failed", "chat_id", msg.Chat.ID, "error", err)
		}
		b.reply(msg, fmt.Sprintf("Now send the destination <b>%s</b> address:", st.Get("coin")))

	case 2: // awaiting address
		coin, ok := parseCoin(st.Get("coin"))
		if !ok {
			_ = b.sessions.ClearState(ctx, msg.Chat.ID)
			b.reply(msg, "❌ This flow expired. Start over with /withdraw.")
			return
		}
		amount, ok := parseAmount(st.Get("amount"))
		if !ok {
			_ = b.sessions.ClearState(ctx, msg.Chat.ID)
			b.reply(msg, "❌ This flow expired. Start over with /withdraw.")
			return
		}

		var req *domain.WithdrawalRequest
		err := retryTransient(func() error {
			var err error
			req, err = b.ledger.Withdraw(ctx, account.ID, coin, amount, msg.Text)
			return err
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidAddress) {
				b.reply(msg, errText(err)+" Send a correct address or /cancel.")
				return
			}
			_ = b.sessions.ClearState(ctx, msg.Chat.ID)
			b.reply(msg, errText(err))
			return
		}
		_ = b.sessions.ClearState(ctx, msg.Chat.ID)
		b.reply(msg, fmt.Sprintf(
			"✅ Withdrawal request #%d created for %s %s.\nAn operator will process it shortly.",
			req.ID, req.Coin, formatMoney(req.Amount)))
	}
}

func cancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel"),
	)
}
