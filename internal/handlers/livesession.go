package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/requestdata"
	"github.com/campfirehq/campfire-backend/internal/services"
)

type LiveSessionHandler struct {
	liveSessionService services.LiveSessionService
}

func NewLiveSessionHandler(liveSessionService services.LiveSessionService) *LiveSessionHandler {
	return &LiveSessionHandler{liveSessionService: liveSessionService}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("not authenticated"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_session_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *LiveSessionHandler) Join(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.liveSessionService.OnJoin(c.Request.Context(), sessionID, userID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			RespondError(c, http.StatusNotFound, "session_not_found", err)
		case errors.Is(err, services.ErrUserNotFound):
			RespondError(c, http.StatusNotFound, "user_not_found", err)
		default:
			RespondError(c, http.StatusInternalServerError, "join_failed", err)
		}
		return
	}
	RespondOK(c, result)
}

type eventRequest struct {
	Kind string `json:"kind"`
}

func (h *LiveSessionHandler) Event(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.liveSessionService.OnEvent(c.Request.Context(), sessionID, userID, gamification.EventKind(req.Kind), time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			RespondError(c, http.StatusNotFound, "session_not_found", err)
		case errors.Is(err, services.ErrNotJoined):
			RespondError(c, http.StatusConflict, "not_joined", err)
		case errors.Is(err, services.ErrUnknownEventKind):
			RespondError(c, http.StatusBadRequest, "unknown_event_kind", err)
		case errors.Is(err, services.ErrUserNotFound):
			RespondError(c, http.StatusNotFound, "user_not_found", err)
		default:
			RespondError(c, http.StatusInternalServerError, "event_failed", err)
		}
		return
	}
	RespondOK(c, result)
}

func (h *LiveSessionHandler) Leave(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.liveSessionService.OnLeave(c.Request.Context(), sessionID, userID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			RespondError(c, http.StatusNotFound, "session_not_found", err)
		case errors.Is(err, services.ErrUserNotFound):
			RespondError(c, http.StatusNotFound, "user_not_found", err)
		default:
			RespondError(c, http.StatusInternalServerError, "leave_failed", err)
		}
		return
	}
	RespondOK(c, result)
}
