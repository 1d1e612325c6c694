package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/middleware"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestHandler handles the request lifecycle endpoints.
type RequestHandler struct {
	requests *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requests *services.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// AddRequestRequest represents a request submission. UserUsername defaults
// to the authenticated user when omitted.
type AddRequestRequest struct {
	DonorUsername string   `json:"donorUsername" binding:"required"`
	UserUsername  string   `json:"userUsername"`
	PostID        string   `json:"post_id" binding:"required,objectid"`
	AvailableFood []string `json:"availableFood"`
	Location      string   `json:"location"`
}

// HandleAddRequest submits a request against a post. Resubmitting the same
// (post, donor, user) triple returns the existing request with 200.
func (h *RequestHandler) HandleAddRequest(c *gin.Context) {
	var req AddRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid post id")
		return
	}

	userUsername := req.UserUsername
	if userUsername == "" {
		userUsername = c.GetString(middleware.ContextUsername)
	}
	request, created, err := h.requests.Submit(c, req.DonorUsername, userUsername, postID, req.AvailableFood, req.Location)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusOK
	message := "request already exists"
	if created {
		status = http.StatusCreated
		message = "request submitted"
	}
	c.JSON(status, gin.H{"success": true, "message": message, "request": request})
}

// HandleAcceptRequest accepts a request: the target is marked accepted,
// sibling requests are rejected and the post is closed.
func (h *RequestHandler) HandleAcceptRequest(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid request id")
		return
	}

	result, err := h.requests.Accept(c, requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "request accepted",
		"request": result.Request,
		"donor":   result.Donor,
		"user":    result.User,
	})
}

// HandleCancelRequest clears a request's accepted flag
func (h *RequestHandler) HandleCancelRequest(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid request id")
		return
	}

	request, err := h.requests.Cancel(c, requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "request cancelled", "request": request})
}

// HandleGetAcceptedRequests returns the user's accepted requests that still
// need a delivery assignment
func (h *RequestHandler) HandleGetAcceptedRequests(c *gin.Context) {
	userUsername := c.GetString(middleware.ContextUsername)
	requests, err := h.requests.ListAcceptedForUser(c, userUsername)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "acceptedRequests": requests})
}

// HandleGetRequestsForPost returns every request submitted against a post
func (h *RequestHandler) HandleGetRequestsForPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Query("postId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid post id")
		return
	}

	requests, err := h.requests.ListForPost(c, postID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

// RegisterRoutes registers the handler's routes
func (h *RequestHandler) RegisterRoutes(router *gin.Engine, userAuth, donorAuth gin.HandlerFunc) {
	group := router.Group("/request")
	{
		group.POST("/addRequest", userAuth, h.HandleAddRequest)
		group.PATCH("/acceptRequest/:id", donorAuth, h.HandleAcceptRequest)
		group.PATCH("/cancelRequest/:id", donorAuth, h.HandleCancelRequest)
		group.GET("/getAcceptedRequests", userAuth, h.HandleGetAcceptedRequests)
		group.GET("/getRequestsForPost", donorAuth, h.HandleGetRequestsForPost)
	}
}
