package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campfirehq/campfire-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "get_me_failed", err)
		return
	}
	RespondOK(c, gin.H{"me": me})
}

func (uh *UserHandler) GetAchievements(c *gin.Context) {
	achievements, err := uh.userService.GetAchievements(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "get_achievements_failed", err)
		return
	}
	RespondOK(c, gin.H{"achievements": achievements})
}
