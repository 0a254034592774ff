package session

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rlRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total commands seen by the rate limiter",
		},
	)
	rlBlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_commands_rate_limited_total",
			Help: "Total commands blocked by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(rlRequests)
	prometheus.MustRegister(rlBlocked)
}

// Allow implements a fixed-window per-chat rate limit with Redis
// INCR/EXPIRE. Fail-open: a missing or erroring Redis never blocks a
// command.
func (s *Store) Allow(ctx context.Context, chatID int64, max int, window time.Duration) bool {
	if s.client == nil {
		return true
	}

	key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + strconv.FormatInt(chatID, 10)
	val, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if val == 1 {
		s.client.Expire(ctx, key, window)
	}

	if val > int64(max) {
		rlBlocked.Inc()
		return false
	}
	rlRequests.Inc()
	return true
}
