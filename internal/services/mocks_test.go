package services

import (
	"context"
	"time"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock repositories for testing

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) IncrementDonorOrders(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementDeliveredOrders(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) RegisterDeliveryBoy(ctx context.Context, username string, boyID primitive.ObjectID) error {
	args := m.Called(ctx, username, boyID)
	return args.Error(0)
}

func (m *MockUserRepository) SetRating(ctx context.Context, username string, rating float64) error {
	args := m.Called(ctx, username, rating)
	return args.Error(0)
}

func (m *MockUserRepository) ListPage(ctx context.Context, offset, limit int64) ([]models.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type MockDonorRepository struct {
	mock.Mock
}

func (m *MockDonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	args := m.Called(ctx, donor)
	return args.Error(0)
}

func (m *MockDonorRepository) GetByUsername(ctx context.Context, username string) (*models.Donor, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donor), args.Error(1)
}

func (m *MockDonorRepository) IncrementDonations(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockDonorRepository) SetRating(ctx context.Context, username string, rating float64) error {
	args := m.Called(ctx, username, rating)
	return args.Error(0)
}

func (m *MockDonorRepository) SetBanned(ctx context.Context, username string, banned bool) error {
	args := m.Called(ctx, username, banned)
	return args.Error(0)
}

func (m *MockDonorRepository) ListPage(ctx context.Context, offset, limit int64) ([]models.Donor, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Donor), args.Error(1)
}

type MockModeratorRepository struct {
	mock.Mock
}

func (m *MockModeratorRepository) GetByUsername(ctx context.Context, username string) (*models.Moderator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Moderator), args.Error(1)
}

type MockDeliveryBoyRepository struct {
	mock.Mock
}

func (m *MockDeliveryBoyRepository) Create(ctx context.Context, boy *models.DeliveryBoy) error {
	args := m.Called(ctx, boy)
	return args.Error(0)
}

func (m *MockDeliveryBoyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryBoy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryBoy), args.Error(1)
}

func (m *MockDeliveryBoyRepository) GetByName(ctx context.Context, name string) (*models.DeliveryBoy, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryBoy), args.Error(1)
}

func (m *MockDeliveryBoyRepository) Claim(ctx context.Context, id primitive.ObjectID) (*models.DeliveryBoy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryBoy), args.Error(1)
}

func (m *MockDeliveryBoyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryBoyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDeliveryBoyRepository) ToggleStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryBoyStatus) (*models.DeliveryBoy, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryBoy), args.Error(1)
}

func (m *MockDeliveryBoyRepository) CompleteDelivery(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeliveryBoyRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error {
	args := m.Called(ctx, id, loc)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByDonor(ctx context.Context, donorUsername string) ([]models.Post, error) {
	args := m.Called(ctx, donorUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Close(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, request *models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestRepository) FindByTriple(ctx context.Context, postID primitive.ObjectID, donorUsername, userUsername string) (*models.Request, error) {
	args := m.Called(ctx, postID, donorUsername, userUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestRepository) SetAccepted(ctx context.Context, id primitive.ObjectID, accepted bool) error {
	args := m.Called(ctx, id, accepted)
	return args.Error(0)
}

func (m *MockRequestRepository) RejectSiblings(ctx context.Context, postID, acceptedID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, postID, acceptedID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) SetDeliveryAssigned(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestRepository) ListAcceptedUnassigned(ctx context.Context, userUsername string) ([]models.Request, error) {
	args := m.Called(ctx, userUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockRequestRepository) ListForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Request, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userUsername string) ([]models.Order, error) {
	args := m.Called(ctx, userUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockListingCache) Get(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockListingCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
