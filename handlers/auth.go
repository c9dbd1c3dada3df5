package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jobportal/jobportal-api/internal/config"
	"github.com/jobportal/jobportal-api/internal/models"
	"github.com/jobportal/jobportal-api/internal/oidc"
	"github.com/jobportal/jobportal-api/internal/sessions"
	"github.com/jobportal/jobportal-api/internal/tokens"
	"github.com/jobportal/jobportal-api/internal/users"
	"github.com/jobportal/jobportal-api/pkg/logger"
	"github.com/jobportal/jobportal-api/pkg/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookie = "oauth_state"

// AuthHandler holds dependencies for the account endpoints.
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
	oauth    *oauth2.Config     // nil when Google sign-in is not configured
	verifier oidc.TokenVerifier // validates Google id_tokens
}

func NewAuthHandler(cfg *config.Config, u *users.Service, v oidc.TokenVerifier) *AuthHandler {
	h := &AuthHandler{cfg: cfg, usersSvc: u, verifier: v}
	if cfg.Google.ClientID != "" {
		h.oauth = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		}
	}
	return h
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup, protect gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterUser)
	a.POST("/login", h.Login)
	a.GET("/logout", h.Logout)
	a.GET("/google", h.GoogleRedirect)
	a.GET("/google/callback", h.GoogleCallback)
	a.GET("/me", protect, h.Me)
	a.PUT("/updatedetails", protect, h.UpdateDetails)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterUser creates an account and signs the user in.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidInput):
			fail(c, http.StatusBadRequest, reason(err))
		case errors.Is(err, users.ErrEmailTaken):
			fail(c, http.StatusBadRequest, "Email already registered")
		default:
			logger.Errorf("register: %v", err)
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	h.sendToken(c, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and signs the user in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Please provide an email and password")
		return
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logger.Errorf("login: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

// Logout clears the session cookie and blacklists the presented token for the
// remainder of its lifetime (no-op without Redis).
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw := middleware.ExtractToken(c); raw != "" {
		if err := sessions.BlacklistAccessToken(c.Request.Context(), raw, h.cfg.JWT.AccessTokenTTL); err != nil {
			logger.Warnf("logout: blacklist failed: %v", err)
		}
	}
	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

type updateDetailsRequest struct {
	Name   *string           `json:"name"`
	Title  *string           `json:"title"`
	Bio    *string           `json:"bio"`
	Skills *models.SkillList `json:"skills"`
}

// UpdateDetails updates the principal's profile fields.
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	u := middleware.CurrentUser(c)
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	upd := users.ProfileUpdate{Name: req.Name, Title: req.Title, Bio: req.Bio}
	if req.Skills != nil {
		s := []string(*req.Skills)
		upd.Skills = &s
	}
	updated, err := h.usersSvc.UpdateDetails(c.Request.Context(), u.ID, upd)
	if err != nil {
		logger.Errorf("updatedetails: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": updated})
}

// GoogleRedirect starts the OAuth flow.
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	if h.oauth == nil {
		fail(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, int((10 * time.Minute).Seconds()), "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// GoogleCallback exchanges the code, verifies the id_token and signs the
// user in, creating or linking the local account as needed.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.oauth == nil || h.verifier == nil {
		fail(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		fail(c, http.StatusUnauthorized, "Invalid OAuth state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	tok, err := h.oauth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Errorf("google callback: code exchange: %v", err)
		fail(c, http.StatusUnauthorized, "Google sign-in failed")
		return
	}
	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		fail(c, http.StatusUnauthorized, "Google sign-in failed")
		return
	}
	claims, err := h.verifier.Verify(c.Request.Context(), rawID)
	if err != nil {
		logger.Errorf("google callback: id token: %v", err)
		fail(c, http.StatusUnauthorized, "Google sign-in failed")
		return
	}
	u, err := h.usersSvc.UpsertFromGoogle(c.Request.Context(), claims.Subject, claims.Email, claims.Name)
	if err != nil {
		logger.Errorf("google callback: upsert: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create access token")
		return
	}
	h.setSessionCookie(c, access)
	c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/auth/success?token="+access)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.CookieName, token, int(h.cfg.JWT.AccessTokenTTL.Seconds()), "/", "", false, true)
}

func (h *AuthHandler) sendToken(c *gin.Context, status int, u *models.User) {
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create access token")
		return
	}
	h.setSessionCookie(c, access)
	c.JSON(status, gin.H{"success": true, "token": access, "user": u})
}
