package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"staking_bot/internal/domain"
	"staking_bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const flowBroadcast = "broadcast"

func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) string {
	args := msg.CommandArguments()

	switch msg.Command() {
	case "stats":
		return b.handleStats(ctx)
	case "users", "listusers":
		return b.handleUsers(ctx)
	case "pending":
		return b.handlePending(ctx)
	case "addfunds":
		return b.handleAddFunds(ctx, args)
	case "addrewards":
		return b.handleAddRewards(ctx, args)
	case "deletefunds":
		b.handleDeleteFunds(ctx, msg, args)
		return ""
	case "modifystake":
		return b.handleModifyStake(ctx, args)
	case "approve":
		return b.handleApprove(ctx, args)
	case "reject":
		return b.handleReject(ctx, args)
	case "maintenance":
		return b.handleMaintenance(ctx, msg.Chat.ID, args)
	case "broadcast":
		return b.handleBroadcastStart(ctx, msg.Chat.ID)
	case "addadmin":
		return b.handleAddAdmin(ctx, args)
	}
	return ""
}

func (b *Bot) handleStats(ctx context.Context) string {
	stats, err := b.admin.GetStats(ctx)
	if err != nil {
		return errText(err)
	}

	return fmt.Sprintf(`<b>📊 Platform statistics</b>

👥 Accounts: %d
💰 Total balance: %s
📈 Total staked: %s
🔓 Active positions: %d
📥 Total deposited: %s
🎁 Total rewards: %s
💸 Pending withdrawals: %d`,
		stats.TotalAccounts,
		formatMoney(stats.TotalBalance),
		formatMoney(stats.TotalStaked),
		stats.ActivePositions,
		formatMoney(stats.TotalDeposited),
		formatMoney(stats.TotalRewards),
		stats.PendingWithdrawals)
}

func (b *Bot) handleUsers(ctx context.Context) string {
	summaries, err := b.admin.ListAccountSummaries(ctx)
	if err != nil {
		return errText(err)
	}
	if len(summaries) == 0 {
		return "No accounts yet."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>👥 Accounts (%d)</b>\n\n", len(summaries)))
	for _, s := range summaries {
		a := s.Account
		sb.WriteString(fmt.Sprintf("<b>%s</b> (chat %d)\n", escape(a.DisplayName()), a.ChatID))
		sb.WriteString(fmt.Sprintf("Balance: %s | Staked: %s\n",
			formatMoney(a.Balance), formatMoney(a.StakedAmount)))
		sb.WriteString(fmt.Sprintf("Deposited: %s | Rewards: %s\n\n",
			formatMoney(domain.Sum(s.Deposits)), formatMoney(domain.Sum(s.Rewards))))
	}
	return sb.String()
}

func (b *Bot) handlePending(ctx context.Context) string {
	pending, err := b.admin.PendingWithdrawals(ctx)
	if err != nil {
		return errText(err)
	}
	if len(pending) == 0 {
		return "✅ No pending withdrawals."
	}

	var sb strings.Builder
	sb.WriteString("<b>💸 Pending withdrawals</b>\n\n")
	for _, w := range pending {
		sb.WriteString(fmt.Sprintf("🆔 #%d | account %d\n", w.ID, w.AccountID))
		sb.WriteString(fmt.Sprintf("%s %s\n", w.Coin, formatMoney(w.Amount)))
		sb.WriteString(fmt.Sprintf("<code>%s</code>\n", escape(w.Address)))
		sb.WriteString(fmt.Sprintf("📅 %s\n\n", w.CreatedAt.Format("02.01.2006 15:04")))
	}
	sb.WriteString("/approve <id> [notes] or /reject <id> <reason>")
	return sb.String()
}

func (b *Bot) handleAddFunds(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return "❌ Usage: /addfunds <chat_id> <amount> <coin>"
	}

	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Invalid chat ID"
	}
	amount, ok := parseAmount(parts[1])
	if !ok {
		return "❌ Invalid amount"
	}
	coin, ok := parseCoin(parts[2])
	if !ok {
		return "❌ Invalid coin. One of: BTC, ETH, SOL, SUI, LINK"
	}

	newBalance, err := b.admin.CreditFunds(ctx, chatID, amount, coin)
	if err != nil {
		return errText(err)
	}
	return fmt.Sprintf("✅ Credited %s %s to chat %d. New balance: %s",
		coin, formatMoney(amount), chatID, formatMoney(newBalance))
}

func (b *Bot) handleAddRewards(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return "❌ Usage: /addrewards <chat_id> <amount> <coin>"
	}

	chatID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Invalid chat ID"
	}
	amount, ok := parseAmount(parts[1])
	if !ok {
		return "❌ Invalid amount"
	}
	coin, ok := parseCoin(parts[2])
	if !ok {
		return "❌ Invalid coin. One of: BTC, ETH, SOL, SUI, LINK"
	}

	if err := b.admin.CreditReward(ctx, chatID, amount, coin); err != nil {
		return errText(err)
	}
	return fmt.Sprintf("✅ Reward of %s %s recorded for chat %d", coin, formatMoney(amount), chatID)
}

func (b *Bot) handleDeleteFunds(ctx context.Context, msg *tgbotapi.Message, args string) {
	chatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		b.reply(msg, "❌ Usage: /deletefunds <chat_id>")
		return
	}

	target, err := b.admin.GetAccountByChatID(ctx, chatID)
	if err != nil {
		b.reply(msg, errText(err))
		return
	}

	deposits, err := b.admin.ListDeposits(ctx, target.ID)
	if err != nil {
		b.reply(msg, errText(err))
		return
	}
	if len(deposits) == 0 {
		b.reply(msg, "No deposits to reverse for this account.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, d := range deposits {
		label := fmt.Sprintf("#%d %s %s (%s)", d.ID, d.Coin, formatMoney(d.Amount),
			d.CreatedAt.Format("02.01.2006"))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "del_dep:"+strconv.FormatInt(d.ID, 10)),
		))
	}
	rows = append(rows, cancelRow())

	b.sendKeyboard(msg.Chat.ID, fmt.Sprintf(
		"Deposits of <b>%s</b>. Pick one to reverse:", escape(target.DisplayName())),
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleModifyStake(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "❌ Usage: /modifystake <position_id> <days>"
	}

	positionID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Invalid position ID"
	}
	days, err := strconv.Atoi(parts[1])
	if err != nil {
		return "❌ Invalid term"
	}

	pos, err := b.staking.ModifyStake(ctx, positionID, days)
	if err != nil {
		return errText(err)
	}
	return fmt.Sprintf("✅ Position #%d term changed to %d days, ends %s",
		pos.ID, pos.TermDays, pos.EndDate.Format("02.01.2006"))
}

func (b *Bot) handleApprove(ctx context.Context, args string) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if parts[0] == "" {
		return "❌ Usage: /approve <id> [notes]"
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Invalid withdrawal ID"
	}
	notes := ""
	if len(parts) == 2 {
		notes = parts[1]
	}

	req, err := b.admin.SettleWithdrawal(ctx, id, domain.WithdrawalStatusCompleted, notes)
	if err != nil {
		return "❌ Could not approve: request not found or already settled."
	}
	return fmt.Sprintf("✅ Withdrawal #%d approved (%s %s)", req.ID, req.Coin, formatMoney(req.Amount))
}

func (b *Bot) handleReject(ctx context.Context, args string) string {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) < 2 {
		return "❌ Usage: /reject <id> <reason>"
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "❌ Invalid withdrawal ID"
	}

	req, err := b.admin.SettleWithdrawal(ctx, id, domain.WithdrawalStatusRejected, parts[1])
	if err != nil {
		return "❌ Could not reject: request not found or already settled."
	}
	return fmt.Sprintf("❌ Withdrawal #%d rejected", req.ID)
}

func (b *Bot) handleMaintenance(ctx context.Context, chatID int64, args string) string {
	switch strings.TrimSpace(args) {
	case "on":
		if err := b.admin.SetMaintenanceMode(ctx, true, chatID); err != nil {
			return errText(err)
		}
		return "🛠 Maintenance mode enabled. Only operators can use the bot."
	case "off":
		if err := b.admin.SetMaintenanceMode(ctx, false, chatID); err != nil {
			return errText(err)
		}
		return "✅ Maintenance mode disabled."
	default:
		on, err := b.admin.MaintenanceMode(ctx)
		if err != nil {
			return errText(err)
		}
		if on {
			return "Maintenance is <b>on</b>. Usage: /maintenance on|off"
		}
		return "Maintenance is <b>off</b>. Usage: /maintenance on|off"
	}
}

func (b *Bot) handleBroadcastStart(ctx context.Context, chatID int64) string {
	st := &session.State{Flow: flowBroadcast, Step: 1}
	if err := b.sessions.SetState(ctx, chatID, st); err != nil {
		b.log.Error("session write failed", "chat_id", chatID, "error", err)
	}
	return `📢 <b>Broadcast mode</b>

Send the message to deliver to every user. HTML markup is supported.
Any command cancels.`
}

func (b *Bot) executeBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	_ = b.sessions.ClearState(ctx, msg.Chat.ID)

	accounts, err := b.admin.ListAccounts(ctx)
	if err != nil {
		b.reply(msg, errText(err))
		return
	}
	if len(accounts) == 0 {
		b.reply(msg, "No users to broadcast to.")
		return
	}

	b.send(msg.Chat.ID, fmt.Sprintf("📤 Broadcasting to %d users...", len(accounts)))

	sent := 0
	failed := 0
	for _, a := range accounts {
		out := tgbotapi.NewMessage(a.ChatID, msg.Text)
		out.ParseMode = "HTML"
		out.DisableWebPagePreview = true
		if _, err := b.api.Send(out); err != nil {
			failed++
		} else {
			sent++
		}

		// stay under the Telegram send rate
		time.Sleep(50 * time.Millisecond)
	}

	b.log.Info("broadcast complete", "sent", sent, "failed", failed)
	b.send(msg.Chat.ID, fmt.Sprintf("✅ Broadcast done. Delivered: %d, failed: %d", sent, failed))
}

func (b *Bot) handleAddAdmin(ctx context.Context, args string) string {
	chatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return "❌ Usage: /addadmin <chat_id>"
	}

	if _, err := b.admin.GetAccountByChatID(ctx, chatID); err != nil {
		return errText(err)
	}
	if err := b.admin.SetAdmin(ctx, chatID, true); err != nil {
		return errText(err)
	}
	return fmt.Sprintf("✅ Chat %d is now an operator", chatID)
}
