package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// ModeratorHandler handles the moderator's ban and unban actions.
type ModeratorHandler struct {
	identity *services.IdentityService
}

// NewModeratorHandler creates a new moderator handler
func NewModeratorHandler(identity *services.IdentityService) *ModeratorHandler {
	return &ModeratorHandler{identity: identity}
}

// HandleBanDonor flags a donor as banned. Existing posts stay visible.
func (h *ModeratorHandler) HandleBanDonor(c *gin.Context) {
	donorUsername := c.Param("username")
	if err := h.identity.SetDonorBanned(c, donorUsername, true); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "donor banned"})
}

// HandleUnbanDonor clears a donor's banned flag
func (h *ModeratorHandler) HandleUnbanDonor(c *gin.Context) {
	donorUsername := c.Param("username")
	if err := h.identity.SetDonorBanned(c, donorUsername, false); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "donor unbanned"})
}

// RegisterRoutes registers the handler's routes
func (h *ModeratorHandler) RegisterRoutes(router *gin.Engine, moderatorAuth gin.HandlerFunc) {
	group := router.Group("/moderator")
	group.Use(moderatorAuth)
	{
		group.PATCH("/banDonor/:username", h.HandleBanDonor)
		group.PATCH("/unbanDonor/:username", h.HandleUnbanDonor)
	}
}
