package handlers

import (
	"net/http"
	"strconv"

	"staking_bot/internal/domain"
	"staking_bot/internal/service"

	"github.com/gin-gonic/gin"
)

// OpsHandler exposes the operator dashboard API. Every route behind it
// is JWT-protected; requireAdmin additionally checks the token's chat
// against the admin list.
type OpsHandler struct {
	admin *service.AdminService
}

func NewOpsHandler(admin *service.AdminService) *OpsHandler {
	return &OpsHandler{admin: admin}
}

func (h *OpsHandler) requireAdmin(c *gin.Context) (int64, bool) {
	chatID := c.GetInt64("chat_id")
	ok, err := h.admin.IsAdmin(c.Request.Context(), chatID)
	if err != nil || !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return 0, false
	}
	return chatID, true
}

func (h *OpsHandler) Stats(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	stats, err := h.admin.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *OpsHandler) Accounts(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	summaries, err := h.admin.ListAccountSummaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accounts unavailable"})
		return
	}

	type row struct {
		ChatID    int64  `json:"chat_id"`
		Name      string `json:"name"`
		Balance   string `json:"balance"`
		Staked    string `json:"staked"`
		Deposited string `json:"deposited"`
		Rewards   string `json:"rewards"`
	}
	out := make([]row, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, row{
			ChatID:    s.Account.ChatID,
			Name:      s.Account.DisplayName(),
			Balance:   s.Account.Balance.StringFixed(2),
			Staked:    s.Account.StakedAmount.StringFixed(2),
			Deposited: domain.Sum(s.Deposits).StringFixed(2),
			Rewards:   domain.Sum(s.Rewards).StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

func (h *OpsHandler) PendingWithdrawals(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	pending, err := h.admin.PendingWithdrawals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawals unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": pending})
}

type settleRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *OpsHandler) SettleWithdrawal(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	var status domain.WithdrawalStatus
	switch req.Status {
	case "completed":
		status = domain.WithdrawalStatusCompleted
	case "rejected":
		status = domain.WithdrawalStatusRejected
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be completed or rejected"})
		return
	}

	settled, err := h.admin.SettleWithdrawal(c.Request.Context(), id, status, req.Notes)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "not found or already settled"})
		return
	}
	c.JSON(http.StatusOK, settled)
}
