package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/api/middleware"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/services"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type requestRouterMocks struct {
	requests *MockRequestRepository
	users    *MockUserRepository
	donors   *MockDonorRepository
}

func newRequestRouterForTest(username string) (*gin.Engine, requestRouterMocks) {
	gin.SetMode(gin.TestMode)
	RegisterValidations()

	mocks := requestRouterMocks{
		requests: new(MockRequestRepository),
		users:    new(MockUserRepository),
		donors:   new(MockDonorRepository),
	}
	service := services.NewRequestService(mocks.requests, nil, mocks.users, mocks.donors, nil, nil, metrics.NewMetrics(), tracing.Disabled())
	handler := NewRequestHandler(service)

	router := gin.New()
	withUsername := func(c *gin.Context) {
		c.Set(middleware.ContextUsername, username)
	}
	handler.RegisterRoutes(router, withUsername, withUsername)
	return router, mocks
}

func TestAddRequestDefaultsToAuthenticatedUser(t *testing.T) {
	router, mocks := newRequestRouterForTest("user1")

	postID := primitive.NewObjectID()
	mocks.donors.On("GetByUsername", mock.Anything, "donor1").Return(&models.Donor{Username: "donor1"}, nil)
	mocks.users.On("GetByUsername", mock.Anything, "user1").Return(&models.User{Username: "user1"}, nil)
	mocks.requests.On("FindByTriple", mock.Anything, postID, "donor1", "user1").Return(nil, repositories.ErrNotFound)
	mocks.requests.On("Create", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil)

	body := `{"donorUsername":"donor1","post_id":"` + postID.Hex() + `","availableFood":["bread"]}`
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/request/addRequest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)
	mocks.requests.AssertExpectations(t)
}

func TestAddRequestHonoursExplicitUserUsername(t *testing.T) {
	router, mocks := newRequestRouterForTest("user1")

	postID := primitive.NewObjectID()
	existing := &models.Request{DonorUsername: "donor1", UserUsername: "user2", PostID: postID}
	mocks.donors.On("GetByUsername", mock.Anything, "donor1").Return(&models.Donor{Username: "donor1"}, nil)
	mocks.users.On("GetByUsername", mock.Anything, "user2").Return(&models.User{Username: "user2"}, nil)
	mocks.requests.On("FindByTriple", mock.Anything, postID, "donor1", "user2").Return(existing, nil)

	body := `{"donorUsername":"donor1","userUsername":"user2","post_id":"` + postID.Hex() + `"}`
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/request/addRequest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	mocks.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddRequestRejectsMalformedPostID(t *testing.T) {
	router, mocks := newRequestRouterForTest("user1")

	body := `{"donorUsername":"donor1","post_id":"not-a-hex-id"}`
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/request/addRequest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	mocks.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetAcceptedRequestsListsUnderAcceptedRequestsKey(t *testing.T) {
	router, mocks := newRequestRouterForTest("user1")

	accepted := []models.Request{{UserUsername: "user1", IsAccepted: true}}
	mocks.requests.On("ListAcceptedUnassigned", mock.Anything, "user1").Return(accepted, nil)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/request/getAcceptedRequests", nil)
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"acceptedRequests"`)
}
