package handlers

import (
	"net/http"
	"time"

	"pgmanager/models"
	"pgmanager/services/admin"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, logout and account endpoints.
type AuthHandler struct {
	Admins       admin.AdminService
	CookieSecure bool
	TokenTTL     time.Duration
}

func NewAuthHandler(svc admin.AdminService, cookieSecure bool, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{Admins: svc, CookieSecure: cookieSecure, TokenTTL: tokenTTL}
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.AuthCookieName, token, maxAge, "/", "", h.CookieSecure, true)
}

// CurrentAdmin returns the admin attached by the auth middleware.
func CurrentAdmin(c *gin.Context) (*models.Admin, bool) {
	v, ok := c.Get("admin")
	if !ok {
		return nil, false
	}
	a, ok := v.(*models.Admin)
	return a, ok
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req admin.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Admins.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.setTokenCookie(c, res.Token, int(h.TokenTTL.Seconds()))
	c.JSON(http.StatusOK, res)
}

// Logout clears the session cookie. The token itself stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	a, ok := CurrentAdmin(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("not authenticated"))
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req admin.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.Admins.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	a, ok := CurrentAdmin(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("not authenticated"))
		return
	}
	var req admin.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Admins.ChangePassword(c.Request.Context(), a.ID, req); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

type deviceRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	a, ok := CurrentAdmin(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("not authenticated"))
		return
	}
	var req deviceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Admins.RegisterDevice(c.Request.Context(), a.ID, req.FCMToken); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}
