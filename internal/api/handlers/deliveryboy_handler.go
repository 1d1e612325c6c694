package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/auth"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/middleware"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DeliveryBoyHandler handles delivery boy registration, login and the
// boy-facing status and location endpoints.
type DeliveryBoyHandler struct {
	identity *services.IdentityService
	tokens   *auth.Manager
	cfg      config.AuthConfig
}

// NewDeliveryBoyHandler creates a new delivery boy handler
func NewDeliveryBoyHandler(identity *services.IdentityService, tokens *auth.Manager, cfg config.AuthConfig) *DeliveryBoyHandler {
	return &DeliveryBoyHandler{
		identity: identity,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// RegisterDeliveryBoyRequest represents a delivery boy registration request
type RegisterDeliveryBoyRequest struct {
	Name           string  `json:"name" binding:"required"`
	Mobile         string  `json:"mobile" binding:"required"`
	Password       string  `json:"password" binding:"required,min=6"`
	VehicleNo      string  `json:"vehicleNo" binding:"required"`
	DrivingLicense string  `json:"drivingLicense" binding:"required"`
	Longitude      float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Latitude       float64 `json:"latitude" binding:"gte=-90,lte=90"`
}

// DeliveryBoyLoginRequest represents a delivery boy login request
type DeliveryBoyLoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateLocationRequest represents a location update
type UpdateLocationRequest struct {
	Longitude float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" binding:"gte=-90,lte=90"`
}

// HandleRegister registers a delivery boy under the authenticated user
func (h *DeliveryBoyHandler) HandleRegister(c *gin.Context) {
	var req RegisterDeliveryBoyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	userUsername := c.GetString(middleware.ContextUsername)
	boy, err := h.identity.RegisterDeliveryBoy(c, userUsername, req.Name, req.Mobile, req.Password,
		req.VehicleNo, req.DrivingLicense, models.NewGeoPoint(req.Longitude, req.Latitude))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "delivery boy registered", "deliveryBoy": boy})
}

// HandleLogin authenticates a delivery boy and sets its session cookie
func (h *DeliveryBoyHandler) HandleLogin(c *gin.Context) {
	var req DeliveryBoyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	boy, err := h.identity.LoginDeliveryBoy(c, req.Name, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(boy.Name, auth.RoleDeliveryBoy)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign session token")
		fail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.SetCookie(auth.DeliveryBoyCookie, token, int(h.tokens.Expiry().Seconds()),
		"/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged in", "deliveryBoy": boy})
}

// HandleLogout clears the delivery boy session cookie
func (h *DeliveryBoyHandler) HandleLogout(c *gin.Context) {
	c.SetCookie(auth.DeliveryBoyCookie, "", -1, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// HandleToggleStatus flips the authenticated boy between available and inactive
func (h *DeliveryBoyHandler) HandleToggleStatus(c *gin.Context) {
	boy, err := h.identity.GetDeliveryBoyByName(c, c.GetString(middleware.ContextUsername))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	toggled, err := h.identity.ToggleDeliveryBoyStatus(c, boy.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": toggled.Status})
}

// HandleUpdateLocation stores the authenticated boy's current position
func (h *DeliveryBoyHandler) HandleUpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	boy, err := h.identity.GetDeliveryBoyByName(c, c.GetString(middleware.ContextUsername))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.identity.UpdateDeliveryBoyLocation(c, boy.ID, models.NewGeoPoint(req.Longitude, req.Latitude)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "location updated"})
}

// RegisterRoutes registers the handler's routes
func (h *DeliveryBoyHandler) RegisterRoutes(router *gin.Engine, userAuth, boyAuth gin.HandlerFunc) {
	group := router.Group("/deliveryboy")
	{
		group.POST("/register", userAuth, h.HandleRegister)
		group.POST("/login", h.HandleLogin)
		group.GET("/logout", h.HandleLogout)
		group.PATCH("/toggleStatus", boyAuth, h.HandleToggleStatus)
		group.PATCH("/updateLocation", boyAuth, h.HandleUpdateLocation)
	}
}
