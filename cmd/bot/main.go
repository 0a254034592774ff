package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staking_bot/internal/bot"
	"staking_bot/internal/config"
	"staking_bot/internal/db"
	httpServer "staking_bot/internal/http"
	"staking_bot/internal/logger"
	"staking_bot/internal/service"
	"staking_bot/internal/session"
	"staking_bot/internal/wallet"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	sessions := session.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	if !sessions.Available() {
		logger.Warn("redis unavailable, sessions and rate limits are disabled")
	}

	cipher, err := wallet.NewAESCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("init cipher", "error", err)
	}

	tgBot, err := bot.New(cfg, sessions)
	if err != nil {
		logger.Fatal("init bot", "error", err)
	}

	// the bot delivers the services' post-commit notifications
	accounts := service.NewAccountService(dbPool, wallet.NewRandProvider(), cipher)
	staking := service.NewStakingService(dbPool, cfg)
	ledger := service.NewLedgerService(dbPool, tgBot)
	admin := service.NewAdminService(dbPool, cfg, tgBot)
	tgBot.Bind(accounts, staking, ledger, admin)

	go tgBot.Start()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	httpServer.RegisterRoutes(r, dbPool, admin, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("ops server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	tgBot.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("exited")
}
