package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/auth"
	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLifecycleRoutesUsePatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	noop := func(c *gin.Context) {}

	NewRequestHandler(nil).RegisterRoutes(router, noop, noop)
	NewDeliveryBoyHandler(nil, &auth.Manager{}, config.AuthConfig{}).RegisterRoutes(router, noop, noop)
	NewModeratorHandler(nil).RegisterRoutes(router, noop)

	methods := make(map[string]string)
	for _, route := range router.Routes() {
		methods[route.Path] = route.Method
	}

	patched := []string{
		"/request/acceptRequest/:id",
		"/request/cancelRequest/:id",
		"/deliveryboy/toggleStatus",
		"/deliveryboy/updateLocation",
		"/moderator/banDonor/:username",
		"/moderator/unbanDonor/:username",
	}
	for _, path := range patched {
		require.Equal(t, http.MethodPatch, methods[path], path)
	}
	require.Equal(t, http.MethodPost, methods["/request/addRequest"])
}

func TestPostListingAndSearchAreUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockPosts := new(MockPostRepository)
	mockDonors := new(MockDonorRepository)
	mockPosts.On("ListAll", mock.Anything).Return([]models.Post{}, nil)
	mockPosts.On("Search", mock.Anything, "rice").Return([]models.Post{}, nil)

	service := services.NewPostService(mockPosts, mockDonors, nil, nil, metrics.NewMetrics(), 0)
	handler := NewPostHandler(service)

	router := gin.New()
	rejectAll := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false})
	}
	handler.RegisterRoutes(router, rejectAll)

	for _, path := range []string{"/post/getAllPosts", "/post/searchPosts?q=rice"} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusOK, recorder.Code, path)
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/post/getPosts", nil)
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
