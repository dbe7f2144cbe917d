package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/campfirehq/campfire-backend/internal/services"
)

type CommunityHandler struct {
	communityService services.CommunityService
}

func NewCommunityHandler(communityService services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

type createCommunityRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	community, err := h.communityService.CreateCommunity(c.Request.Context(), req.Slug, req.Name, req.Description)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_community_failed", err)
		return
	}
	RespondOK(c, gin.H{"community": community})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_community_id", err)
		return
	}
	if err := h.communityService.JoinCommunity(c.Request.Context(), communityID); err != nil {
		RespondError(c, http.StatusBadRequest, "join_community_failed", err)
		return
	}
	RespondOK(c, gin.H{"status": "joined"})
}

type scheduleSessionRequest struct {
	Title           string         `json:"title"`
	ScheduledAt     time.Time      `json:"scheduled_at"`
	DurationMinutes int            `json:"duration_minutes"`
	Metadata        datatypes.JSON `json:"metadata,omitempty"`
}

func (h *CommunityHandler) ScheduleSession(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_community_id", err)
		return
	}
	var req scheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	session, err := h.communityService.ScheduleSession(c.Request.Context(), communityID, req.Title, req.ScheduledAt, req.DurationMinutes, req.Metadata)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "schedule_session_failed", err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *CommunityHandler) ListSessions(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_community_id", err)
		return
	}
	sessions, err := h.communityService.ListSessions(c.Request.Context(), communityID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_sessions_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}
