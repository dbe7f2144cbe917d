package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campfirehq/campfire-backend/internal/services"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	user := &types.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := ah.authService.RegisterUser(c.Request.Context(), user); err != nil {
		RespondError(c, http.StatusBadRequest, "registration_failed", err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	access, refresh, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "login_failed", err)
		return
	}
	RespondOK(c, gin.H{"access_token": access, "refresh_token": refresh})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	access, refresh, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "refresh_failed", err)
		return
	}
	RespondOK(c, gin.H{"access_token": access, "refresh_token": refresh})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		RespondError(c, http.StatusBadRequest, "logout_failed", err)
		return
	}
	RespondOK(c, gin.H{"status": "logged_out"})
}
