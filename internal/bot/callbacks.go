package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"staking_bot/internal/domain"
	"staking_bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// always answer, even on errors, or the client spinner hangs
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Error("callback ack failed", "error", err)
		}
	}()

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	account, err := b.accounts.FindOrCreate(ctx, cb.From.ID, cb.From.UserName, cb.From.FirstName, cb.From.LastName)
	if err != nil {
		b.log.Error("account lookup failed", "chat_id", chatID, "error", err)
		return
	}

	action, arg, _ := strings.Cut(cb.Data, ":")
	switch action {
	case "cancel":
		_ = b.sessions.ClearState(ctx, chatID)
		b.editText(cb, "Cancelled.")

	case "stake_coin":
		b.callbackStakeCoin(cb, arg)

	case "stake_term":
		b.callbackStakeTerm(ctx, account, cb, arg)

	case "unstake_pos":
		b.callbackUnstakePos(ctx, account, cb, arg)

	case "wd_coin":
		coin, ok := parseCoin(arg)
		if !ok {
			return
		}
		st := &session.State{Flow: flowWithdraw, Step: 1}
		st.Set("coin", string(coin))
		if err := b.sessions.SetState(ctx, chatID, st); err != nil {
			b.log.Error("session write failed", "chat_id", chatID, "error", err)
		}
		b.editText(cb, fmt.Sprintf("Withdrawing <b>%s</b>. How much (USD)?", coin))

	case "del_dep":
		b.callbackDeleteDeposit(ctx, account, cb, arg)
	}
}

func (b *Bot) callbackStakeCoin(cb *tgbotapi.CallbackQuery, arg string) {
	coin, ok := parseCoin(arg)
	if !ok {
		return
	}
	min, ok := b.staking.Minimum(coin)
	if !ok {
		b.editText(cb, "❌ This coin cannot be staked. See /apr.")
		return
	}

	var row []tgbotapi.InlineKeyboardButton
	for _, t := range b.cfg.StakingTerms {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d days", t),
			fmt.Sprintf("stake_term:%s:%d", coin, t),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(row, cancelRow())

	b.editTextWithKeyboard(cb, fmt.Sprintf(
		"Staking <b>%s</b> (minimum %s) at %s%% APR.\n\nPick a term:",
		coin, formatMoney(min), b.cfg.APRPercent.String()), kb)
}

func (b *Bot) callbackStakeTerm(ctx context.Context, account *domain.Account, cb *tgbotapi.CallbackQuery, arg string) {
	coinStr, daysStr, ok := strings.Cut(arg, ":")
	if !ok {
		return
	}
	coin, cok := parseCoin(coinStr)
	days, err := strconv.Atoi(daysStr)
	if !cok || err != nil {
		return
	}

	var pos *domain.StakingPosition
	err = retryTransient(func() error {
		var err error
		pos, err = b.staking.Stake(ctx, account.ID, coin, days)
		return err
	})
	if err != nil {
		b.editText(cb, errText(err))
		return
	}

	b.editText(cb, fmt.Sprintf(
		`✅ <b>Staked %s in %s</b>

Term: %d days
Ends: %s
Projected reward: %s

Your balance is now locked in this position. Track it with /staked.`,
		formatMoney(pos.Principal), pos.Coin,
		pos.TermDays, pos.EndDate.Format("02.01.2006"),
		formatMoney(b.projectedReward(*pos))))
}

func (b *Bot) callbackUnstakePos(ctx context.Context, account *domain.Account, cb *tgbotapi.CallbackQuery, arg string) {
	positionID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	st := &session.State{Flow: flowUnstake, Step: 1}
	st.Set("position_id", arg)
	if err := b.sessions.SetState(ctx, cb.Message.Chat.ID, st); err != nil {
		b.log.Error("session write failed", "chat_id", cb.Message.Chat.ID, "error", err)
	}

	b.editText(cb, fmt.Sprintf(
		"How much do you want to unstake from position #%d (USD)?\nSend the full principal to close it.", positionID))
}

func (b *Bot) callbackDeleteDeposit(ctx context.Context, account *domain.Account, cb *tgbotapi.CallbackQuery, arg string) {
	isAdmin, err := b.admin.IsAdmin(ctx, account.ChatID)
	if err != nil || !isAdmin {
		return
	}

	depositID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return
	}

	deleted, newBalance, err := b.admin.DeleteDeposit(ctx, depositID)
	if err != nil {
		b.editText(cb, errText(err))
		return
	}
	b.editText(cb, fmt.Sprintf(
		"✅ Deposit #%d (%s %s) reversed. New balance: %s",
		deleted.ID, deleted.Coin, formatMoney(deleted.Amount), formatMoney(newBalance)))
}

func (b *Bot) editText(cb *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ParseMode = "HTML"
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("error editing message", "error", err)
	}
}

func (b *Bot) editTextWithKeyboard(cb *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, kb)
	edit.ParseMode = "HTML"
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("error editing message", "error", err)
	}
}
