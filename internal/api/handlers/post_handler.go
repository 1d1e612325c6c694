package handlers

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/middleware"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// PostHandler handles post creation, listing and search.
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	AvailableFood []string `json:"availableFood" binding:"required,min=1"`
	Location      string   `json:"location" binding:"required"`
	Longitude     float64  `json:"longitude" binding:"gte=-180,lte=180"`
	Latitude      float64  `json:"latitude" binding:"gte=-90,lte=90"`
}

// HandleCreatePost creates a post for the authenticated donor
func (h *PostHandler) HandleCreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	donorUsername := c.GetString(middleware.ContextUsername)
	post, err := h.posts.Create(c, donorUsername, req.AvailableFood, req.Location,
		models.NewGeoPoint(req.Longitude, req.Latitude))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "post created", "post": post})
}

// HandleGetAllPosts returns every post, served through the cache when warm.
// The source field reports which tier answered.
func (h *PostHandler) HandleGetAllPosts(c *gin.Context) {
	posts, source, err := h.posts.ListAll(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "source": source, "posts": posts})
}

// HandleGetPosts returns the authenticated donor's own posts
func (h *PostHandler) HandleGetPosts(c *gin.Context) {
	donorUsername := c.GetString(middleware.ContextUsername)
	posts, err := h.posts.ListForDonor(c, donorUsername)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

// HandleSearchPosts finds posts by food label or location
func (h *PostHandler) HandleSearchPosts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	posts, err := h.posts.Search(c, query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts})
}

// RegisterRoutes registers the handler's routes. The listing and search
// endpoints are public; only creation and the donor's own listing sit
// behind a cookie.
func (h *PostHandler) RegisterRoutes(router *gin.Engine, donorAuth gin.HandlerFunc) {
	group := router.Group("/post")
	{
		group.POST("/createPost", donorAuth, h.HandleCreatePost)
		group.GET("/getAllPosts", h.HandleGetAllPosts)
		group.GET("/getPosts", donorAuth, h.HandleGetPosts)
		group.GET("/searchPosts", h.HandleSearchPosts)
	}
}
