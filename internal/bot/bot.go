package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"staking_bot/internal/config"
	"staking_bot/internal/logger"
	"staking_bot/internal/service"
	"staking_bot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the Telegram front end. It owns the long-poll loop, routes
// commands and callback queries, and drives multi-step flows whose
// state lives in the session store.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	sessions *session.Store
	log      *slog.Logger

	accounts *service.AccountService
	staking  *service.StakingService
	ledger   *service.LedgerService
	admin    *service.AdminService

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(cfg *config.Config, sessions *session.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:      api,
		cfg:      cfg,
		sessions: sessions,
		log:      log,
		stopCh:   make(chan struct{}),
	}, nil
}

// Bind attaches the services. Separate from New because the bot itself
// is the Notifier the services are built with.
func (b *Bot) Bind(accounts *service.AccountService, staking *service.StakingService, ledger *service.LedgerService, admin *service.AdminService) {
	b.accounts = accounts
	b.staking = staking
	b.ledger = ledger
	b.admin = admin
}

// Start runs the update loop until Stop is called.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(update)
			}(update)
		}
	}
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.sessions.Allow(ctx, chatID, b.cfg.CommandRateLimit, b.cfg.CommandRateWindow) {
		b.reply(msg, "⏳ Too many requests. Please slow down.")
		return
	}

	isAdmin, err := b.admin.IsAdmin(ctx, chatID)
	if err != nil {
		b.log.Error("admin check failed", "chat_id", chatID, "error", err)
	}

	if maintenance, _ := b.admin.MaintenanceMode(ctx); maintenance && !isAdmin {
		b.reply(msg, "🛠 The bot is under maintenance. Please try again later.")
		return
	}

	account, err := b.accounts.FindOrCreate(ctx, chatID, msg.From.UserName, msg.From.FirstName, msg.From.LastName)
	if err != nil {
		b.log.Error("account lookup failed", "chat_id", chatID, "error", err)
		b.reply(msg, "❌ Something went wrong. Please try again.")
		return
	}

	if !msg.IsCommand() {
		// plain text only matters inside an active flow
		if handled := b.continueFlow(ctx, account, msg); !handled {
			b.reply(msg, "Use /help to see what I can do.")
		}
		return
	}

	// a command always aborts whatever flow was in progress
	_ = b.sessions.ClearState(ctx, chatID)

	var response string
	switch msg.Command() {
	case "start":
		response = b.handleStart(ctx, account, msg.CommandArguments())
	case "help":
		response = b.helpMessage(isAdmin)
	case "balance", "refresh":
		response = b.handleBalance(ctx, account)
	case "wallets", "deposit":
		response = b.handleWallets(ctx, account)
	case "stake":
		b.startStakeFlow(ctx, account, msg)
		return
	case "staked", "stakeinfo":
		response = b.handleStaked(ctx, account)
	case "unstake":
		b.startUnstakeFlow(ctx, account, msg)
		return
	case "withdraw", "withdrawal":
		b.startWithdrawFlow(ctx, account, msg)
		return
	case "deposits", "deposithistory":
		response = b.handleDepositHistory(ctx, account)
	case "rewards", "rewardhistory":
		response = b.handleRewardHistory(ctx, account)
	case "referral":
		response = b.handleReferral(account)
	case "referralaccept":
		response = b.handleReferralAccept(ctx, account, msg.CommandArguments())
	case "apr":
		response = b.handleAPR()

	// operator commands
	case "stats", "users", "listusers", "pending", "addfunds", "addrewards",
		"deletefunds", "modifystake", "approve", "reject", "maintenance",
		"broadcast", "addadmin":
		if !isAdmin {
			response = "❌ Unknown command. Use /help."
			break
		}
		response = b.handleAdminCommand(ctx, msg)

	default:
		response = "❌ Unknown command. Use /help."
	}

	if response != "" {
		b.reply(msg, response)
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("error sending message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("error sending keyboard", "chat_id", chatID, "error", err)
	}
}
