package services

import (
	"context"
	"testing"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/tracing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRequestServiceForTest(requests *MockRequestRepository, posts *MockPostRepository, users *MockUserRepository, donors *MockDonorRepository, publisher *MockPublisher) *RequestService {
	m := metrics.NewMetrics()
	svc := &RequestService{
		requests: requests,
		posts:    posts,
		users:    users,
		donors:   donors,
		rating:   &RatingService{users: users, donors: donors, metrics: m, batchSize: 100},
		metrics:  m,
		tracer:   tracing.Disabled(),
	}
	if publisher != nil {
		svc.publisher = publisher
	}
	return svc
}

func TestSubmitRequestCreatesNewRequest(t *testing.T) {
	mockRequests := new(MockRequestRepository)
	mockPosts := new(MockPostRepository)
	mockUsers := new(MockUserRepository)
	mockDonors := new(MockDonorRepository)

	postID := primitive.NewObjectID()
	mockDonors.On("GetByUsername", mock.Anything, "donor1").Return(&models.Donor{Username: "donor1"}, nil)
	mockUsers.On("GetByUsername", mock.Anything, "user1").Return(&models.User{Username: "user1"}, nil)
	mockRequests.On("FindByTriple", mock.Anything, postID, "donor1", "user1").Return(nil, repositories.ErrNotFound)
	mockRequests.On("Create", mock.Anything, mock.AnythingOfType("*models.Request")).Return(nil)

	service := newRequestServiceForTest(mockRequests, mockPosts, mockUsers, mockDonors, nil)

	request, created, err := service.Submit(context.Background(), "donor1", "user1", postID, []string{"rice"}, "downtown")

	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, request)
	require.Equal(t, "donor1", request.DonorUsername)
	require.Equal(t, "user1", request.UserUsername)
	require.Equal(t, postID, request.PostID)
	require.False(t, request.IsAccepted)
	mockRequests.AssertExpectations(t)
}

func TestSubmitRequestIsIdempotent(t *testing.T) {
	mockRequests := new(MockRequestRepository)
	mockPosts := new(MockPostRepository)
	mockUsers := new(MockUserRepository)
	mockDonors := new(MockDonorRepository)

	postID := primitive.NewObjectID()
	existing := &models.Request{
		ID:            primitive.NewObjectID(),
		DonorUsername: "donor1",
		UserUsername:  "user1",
		PostID:        postID,
	}
	mockDonors.On("GetByUsername", mock.Anything, "donor1").Return(&models.Donor{Username: "donor1"}, nil)
	mockUsers.On("GetByUsername", mock.Anything, "user1").Return(&models.User{Username: "user1"}, nil)
	mockRequests.On("FindByTriple", mock.Anything, postID, "donor1", "user1").Return(existing, nil)

	service := newRequestServiceForTest(mockRequests, mockPosts, mockUsers, mockDonors, nil)

	request, created, err := service.Submit(context.Background(), "donor1", "user1", postID, []string{"rice"}, "downtown")

	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, existing.ID, request.ID)
	mockRequests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRequestSurvivesConcurrentDuplicate(t *testing.T) {
	mockRequests := new(MockRequestRepository)
	mockPosts := new(MockPostRepository)
	mockUsers := new(MockUserRepository)
	mockDonors := new(MockDonorRepository)

	postID := primitive.NewObjectID()
	existing := &models.Request{ID: primitive.NewObjectID(), PostID: postID}

	mockDonors.On("GetByUsername", mock.Anything, "donor1").Return(&models.Donor{Username: "donor1"}, nil)
	mockUsers.On("GetByUsername", mock.Anything, "user1").Return(&models.User{Username: "user1"}, nil)
	// First lookup misses, then the insert loses the race and the re-find hits.
	mockRequests.On("FindByTriple", mock.Anything, postID, "donor1", "user1").Return(nil, repositories.ErrNotFound).Once()
	mockRequests.On("Create", mock.Anything, mock.AnythingOfType("*models.Request")).Return(repositories.ErrDuplicateKey)
	mockRequests.On("FindByTriple", mock.Anything, postID, "donor1", "user1").Return(existing, nil).Once()

	service := newRequestServiceForTest(mockRequests, mockPosts, mockUsers, mockDonors, nil)

	request, created, err := service.Submit(context.Background(), "donor1", "user1", postID, nil, "downtown")

	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, existing.ID, request.ID)
}

func TestAcceptRequestClosesPostAndRejectsSiblings(t *testing.T) {
	mockRequests := new(MockRequestRepository)
	mockPosts := new(MockPostRepository)
	mockUsers := new(MockUserRepository)
	mockDonors := new(MockDonorRepository)
	mockPublisher := new(MockPublisher)

	postID := primitive.NewObjectID()
	requestID := primitive.NewObjectID()
	request := &models.Request{
		ID:            requestID,
		DonorUsername: "donor1",
		UserUsername:  "user1",
		PostID:        postID,
	}

	mockRequests.On("GetByID", mock.Anything, requestID).Return(request, nil)
	mockUsers.On("GetByUsername", mock.Anything, "user1").Return(&models.User{Username: "user1", DonorOrdersCount: 1}, nil)
	mockDonors.On("GetByUsername", mock.Anything, "donor1").Return(&models.Donor{Username: "donor1", DonationsCount: 1}, nil)
	mockUsers.On("IncrementDonorOrders", mock.Anything, "user1").Return(nil)
	mockDonors.On("IncrementDonations", mock.Anything, "donor1").Return(nil)
	mockUsers.On("SetRating", mock.Anything, "user1", models.MaxRating).Return(nil)
	mockDonors.On("SetRating", mock.Anything, "donor1", models.MaxRating).Return(nil)
	mockRequests.On("SetAccepted", mock.Anything, requestID, true).Return(nil)
	mockRequests.On("RejectSiblings", mock.Anything, postID, requestID).Return(int64(2), nil)
	mockPosts.On("Close", mock.Anything, postID).Return(nil)
	mockPublisher.On("PublishOrderEvent", mock.Anything, mock.AnythingOfType("*models.OrderEvent")).Return(nil)

	service := newRequestServiceForTest(mockRequests, mockPosts, mockUsers, mockDonors, mockPublisher)

	result, err := service.Accept(context.Background(), requestID)

	require.NoError(t, err)
	require.True(t, result.Request.IsAccepted)
	require.Equal(t, "donor1", result.Donor.Username)
	require.Equal(t, "user1", result.User.Username)
	mockRequests.AssertExpectations(t)
	mockPosts.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestCancelRequestClearsAcceptedFlagOnly(t *testing.T) {
	mockRequests := new(MockRequestRepository)
	mockPosts := new(MockPostRepository)
	mockUsers := new(MockUserRepository)
	mockDonors := new(MockDonorRepository)

	requestID := primitive.NewObjectID()
	request := &models.Request{ID: requestID, IsAccepted: true}

	mockRequests.On("GetByID", mock.Anything, requestID).Return(request, nil)
	mockRequests.On("SetAccepted", mock.Anything, requestID, false).Return(nil)

	service := newRequestServiceForTest(mockRequests, mockPosts, mockUsers, mockDonors, nil)

	cancelled, err := service.Cancel(context.Background(), requestID)

	require.NoError(t, err)
	require.False(t, cancelled.IsAccepted)
	mockPosts.AssertNotCalled(t, "Close", mock.Anything, mock.Anything)
	mockUsers.AssertNotCalled(t, "IncrementDonorOrders", mock.Anything, mock.Anything)
}
