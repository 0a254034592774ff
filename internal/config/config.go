package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"staking_bot/internal/domain"
	"staking_bot/internal/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	BotToken      string
	JWTSecret     string
	EncryptionKey string
	AdminChatIDs  []int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Staking rules. Minimums are USD thresholds per coin; coins
	// without an entry cannot be staked.
	StakingTerms         []int
	StakingMinimums      map[domain.Coin]decimal.Decimal
	StakingAllowMultiple bool
	APRPercent           decimal.Decimal

	// Upper bound on a single admin reward credit.
	RewardMax decimal.Decimal

	CommandRateLimit  int
	CommandRateWindow time.Duration
	SessionTTL        time.Duration
}

// Load reads configuration from the environment (.env supported).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	encKey := os.Getenv("ENCRYPTION_KEY")
	if encKey == "" {
		logger.Fatal("ENCRYPTION_KEY is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var adminIDs []int64
	if v := os.Getenv("ADMIN_CHAT_IDS"); v != "" {
		for _, idStr := range strings.Split(v, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		BotToken:      botToken,
		JWTSecret:     jwtSecret,
		EncryptionKey: encKey,
		AdminChatIDs:  adminIDs,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envStr("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		StakingTerms: []int{90, 180, 280},
		StakingMinimums: map[domain.Coin]decimal.Decimal{
			domain.CoinBTC: envDecimal("MIN_STAKE_BTC", "1100"),
			domain.CoinSOL: envDecimal("MIN_STAKE_SOL", "2500"),
			domain.CoinSUI: envDecimal("MIN_STAKE_SUI", "1750"),
		},
		StakingAllowMultiple: os.Getenv("STAKING_ALLOW_MULTIPLE") == "true",
		APRPercent:           envDecimal("STAKING_APR_PERCENT", "5.25"),

		RewardMax: envDecimal("REWARD_MAX", "1000000"),

		CommandRateLimit:  envInt("COMMAND_RATE_LIMIT", 10),
		CommandRateWindow: time.Duration(envInt("COMMAND_RATE_WINDOW_SECONDS", 60)) * time.Second,
		SessionTTL:        time.Duration(envInt("SESSION_TTL_SECONDS", 900)) * time.Second,
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDecimal(key, def string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
		logger.Warn("invalid decimal in env, using default", "key", key, "default", def)
	}
	return decimal.RequireFromString(def)
}

// ValidTerm reports whether days is one of the allowed staking terms.
func (c *Config) ValidTerm(days int) bool {
	for _, t := range c.StakingTerms {
		if t == days {
			return true
		}
	}
	return false
}

// IsAdminChat reports whether chatID belongs to a configured operator.
// Database-flagged admins are checked separately by the ledger store.
func (c *Config) IsAdminChat(chatID int64) bool {
	for _, id := range c.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
