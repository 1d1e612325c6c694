package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/auth"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and logout for users, donors and
// moderators. Each role's session lives in its own JWT cookie.
type AuthHandler struct {
	identity *services.IdentityService
	tokens   *auth.Manager
	cfg      config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity *services.IdentityService, tokens *auth.Manager, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// UserSignupRequest represents a user signup request
type UserSignupRequest struct {
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	Address   string  `json:"address" binding:"required"`
	Longitude float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" binding:"gte=-90,lte=90"`
}

// DonorSignupRequest represents a donor signup request
type DonorSignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Address  string `json:"address" binding:"required"`
}

// LoginRequest represents a username/password login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleUserSignup registers a new user
func (h *AuthHandler) HandleUserSignup(c *gin.Context) {
	var req UserSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.identity.SignupUser(c, req.Username, req.Email, req.Password, req.Address,
		models.NewGeoPoint(req.Longitude, req.Latitude))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "user registered", "user": user})
}

// HandleDonorSignup registers a new donor
func (h *AuthHandler) HandleDonorSignup(c *gin.Context) {
	var req DonorSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	donor, err := h.identity.SignupDonor(c, req.Username, req.Email, req.Password, req.Address)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "donor registered", "donor": donor})
}

// HandleUserLogin authenticates a user and sets the user session cookie
func (h *AuthHandler) HandleUserLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.identity.LoginUser(c, req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.setSessionCookie(c, user.Username, auth.RoleUser); err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged in", "user": user})
}

// HandleDonorLogin authenticates a donor and sets the donor session cookie
func (h *AuthHandler) HandleDonorLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	donor, err := h.identity.LoginDonor(c, req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.setSessionCookie(c, donor.Username, auth.RoleDonor); err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged in", "donor": donor})
}

// HandleModeratorLogin authenticates a moderator
func (h *AuthHandler) HandleModeratorLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	mod, err := h.identity.LoginModerator(c, req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.setSessionCookie(c, mod.Username, auth.RoleModerator); err != nil {
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged in"})
}

// HandleLogout clears the role's session cookie
func (h *AuthHandler) HandleLogout(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.clearSessionCookie(c, role)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, username, role string) error {
	token, err := h.tokens.GenerateToken(username, role)
	if err != nil {
		log.Error().Err(err).Str("role", role).Msg("Failed to sign session token")
		return err
	}
	c.SetCookie(auth.CookieForRole(role), token, int(h.tokens.Expiry().Seconds()),
		"/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
	return nil
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context, role string) {
	c.SetCookie(auth.CookieForRole(role), "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}

// RegisterRoutes registers the handler's routes
func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	user := router.Group("/user")
	{
		user.POST("/signup", h.HandleUserSignup)
		user.POST("/login", h.HandleUserLogin)
		user.GET("/logout", h.HandleLogout(auth.RoleUser))
	}

	donor := router.Group("/donor")
	{
		donor.POST("/signup", h.HandleDonorSignup)
		donor.POST("/login", h.HandleDonorLogin)
		donor.GET("/logout", h.HandleLogout(auth.RoleDonor))
	}

	moderator := router.Group("/moderator")
	{
		moderator.POST("/login", h.HandleModeratorLogin)
		moderator.GET("/logout", h.HandleLogout(auth.RoleModerator))
	}
}
