package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campfirehq/campfire-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Top(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_community_id", err)
		return
	}
	period := c.DefaultQuery("period", services.PeriodAllTime)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	board, err := h.leaderboardService.Top(c.Request.Context(), communityID, period, limit, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPeriod):
			RespondError(c, http.StatusBadRequest, "unknown_period", err)
		case errors.Is(err, services.ErrLeaderboardUnavailable):
			RespondError(c, http.StatusServiceUnavailable, "leaderboard_unavailable", err)
		default:
			RespondError(c, http.StatusInternalServerError, "leaderboard_failed", err)
		}
		return
	}
	RespondOK(c, board)
}

func (h *LeaderboardHandler) MyRank(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_community_id", err)
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	period := c.DefaultQuery("period", services.PeriodAllTime)

	rank, err := h.leaderboardService.RankFor(c.Request.Context(), communityID, userID, period, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPeriod):
			RespondError(c, http.StatusBadRequest, "unknown_period", err)
		case errors.Is(err, services.ErrLeaderboardUnavailable):
			RespondError(c, http.StatusServiceUnavailable, "leaderboard_unavailable", err)
		default:
			RespondError(c, http.StatusNotFound, "rank_unavailable", err)
		}
		return
	}
	RespondOK(c, gin.H{"community_id": communityID, "period": period, "rank": rank})
}
