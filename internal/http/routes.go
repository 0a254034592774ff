package http

import (
	"staking_bot/internal/http/handlers"
	"staking_bot/internal/http/middleware"
	"staking_bot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the operator HTTP surface: health probes,
// Prometheus metrics and the JWT-protected dashboard API. The user
// surface is the Telegram bot; nothing user-facing lives here.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, admin *service.AdminService, version string) {
	healthHandler := handlers.NewHealthHandler(db, version)
	opsHandler := handlers.NewOpsHandler(admin)

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWT())
	{
		v1.GET("/stats", opsHandler.Stats)
		v1.GET("/accounts", opsHandler.Accounts)
		v1.GET("/withdrawals", opsHandler.PendingWithdrawals)
		v1.POST("/withdrawals/:id/settle", opsHandler.SettleWithdrawal)
	}
}
