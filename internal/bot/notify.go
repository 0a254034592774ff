package bot

import (
	"fmt"

	"staking_bot/internal/domain"

	"github.com/shopspring/decimal"
)

// The bot is the Notifier the ledger services are built with. All of
// these fire after the corresponding transaction committed; failures
// are logged and dropped.

func (b *Bot) FundsCredited(chatID int64, amount decimal.Decimal, coin domain.Coin, newBalance decimal.Decimal) {
	b.send(chatID, fmt.Sprintf(
		"💰 <b>Deposit confirmed!</b>\n\n%s %s has been credited.\nAvailable balance: <b>%s</b>",
		coin, formatMoney(amount), formatMoney(newBalance)))
}

func (b *Bot) RewardCredited(chatID int64, amount decimal.Decimal, coin domain.Coin) {
	b.send(chatID, fmt.Sprintf(
		"🎁 <b>Staking reward!</b>\n\nYou earned %s %s. See /rewards for your history.",
		coin, formatMoney(amount)))
}

func (b *Bot) WithdrawalRequested(account *domain.Account, req *domain.WithdrawalRequest) {
	text := fmt.Sprintf(`🔔 <b>New withdrawal request</b>

👤 %s (chat %d)
💰 %s %s
💳 <code>%s</code>

/approve %d or /reject %d reason`,
		escape(account.DisplayName()), account.ChatID,
		req.Coin, formatMoney(req.Amount),
		escape(req.Address), req.ID, req.ID)

	for _, adminID := range b.cfg.AdminChatIDs {
		b.send(adminID, text)
	}
}

func (b *Bot) WithdrawalSettled(chatID int64, req *domain.WithdrawalRequest) {
	switch req.Status {
	case domain.WithdrawalStatusCompleted:
		b.send(chatID, fmt.Sprintf(
			"✅ <b>Withdrawal #%d completed</b>\n\n%s %s has been sent to your address.",
			req.ID, req.Coin, formatMoney(req.Amount)))
	case domain.WithdrawalStatusRejected:
		reason := req.AdminNotes
		if reason == "" {
			reason = "contact support"
		}
		b.send(chatID, fmt.Sprintf(
			"❌ <b>Withdrawal #%d rejected</b>\n\nReason: %s",
			req.ID, escape(reason)))
	}
}
