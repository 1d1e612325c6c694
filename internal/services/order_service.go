package services

import (
	"context"
	"time"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/messaging"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/tracing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService drives the delivery state machine:
// on-going -> picked-up -> delivered, forward-only.
type OrderService struct {
	orders          repositories.OrderRepository
	requests        repositories.RequestRepository
	posts           repositories.PostRepository
	users           repositories.UserRepository
	boys            repositories.DeliveryBoyRepository
	rating          *RatingService
	publisher       messaging.Publisher
	metrics         *metrics.Metrics
	tracer          tracing.Tracer
	allowPickupSkip bool
}

// NewOrderService creates a new order service. allowPickupSkip permits the
// on-going -> delivered shortcut without an intervening pickup.
func NewOrderService(
	orders repositories.OrderRepository,
	requests repositories.RequestRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	boys repositories.DeliveryBoyRepository,
	rating *RatingService,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	tracer tracing.Tracer,
	allowPickupSkip bool,
) *OrderService {
	return &OrderService{
		orders:          orders,
		requests:        requests,
		posts:           posts,
		users:           users,
		boys:            boys,
		rating:          rating,
		publisher:       publisher,
		metrics:         m,
		tracer:          tracer,
		allowPickupSkip: allowPickupSkip,
	}
}

// Assign creates an order from an accepted, delivery-unassigned request.
// The delivery boy's status flip is a conditional update on "available", so
// two concurrent assigns cannot both claim the same boy.
func (s *OrderService) Assign(ctx context.Context, requestID, boyID primitive.ObjectID, deliveryLocation string) (*models.Order, error) {
	txn := s.tracer.StartTransaction("assign-order")
	defer s.tracer.EndTransaction(txn)

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "request lookup failed")
	}
	if !request.IsAccepted || request.DeliveryAssigned {
		return nil, ErrRequestNotReady
	}

	post, err := s.posts.GetByID(ctx, request.PostID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "post lookup failed")
	}

	boy, err := s.boys.GetByID(ctx, boyID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "delivery boy lookup failed")
	}
	switch boy.Status {
	case models.DeliveryBoyInactive:
		return nil, ErrDeliveryBoyInactive
	case models.DeliveryBoyOnGoing:
		return nil, &DeliveryBoyBusyError{Name: boy.Name}
	}

	claimed, err := s.boys.Claim(ctx, boyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the race for this boy between the read and the claim.
			return nil, &DeliveryBoyBusyError{Name: boy.Name}
		}
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		DonorUsername:    request.DonorUsername,
		UserUsername:     request.UserUsername,
		PostID:           post.ID,
		PickupLocation:   post.Location,
		PickupGeo:        post.CurrentLocation,
		DeliveryLocation: deliveryLocation,
		DeliveryBoyID:    claimed.ID,
		DeliveryBoyName:  claimed.Name,
		Status:           models.OrderStatusOnGoing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	if err := s.requests.SetDeliveryAssigned(ctx, requestID); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.metrics.IncrementCounter(metrics.CounterOrdersAssigned)
	log.Info().
		Str("order_id", order.ID.Hex()).
		Str("request_id", requestID.Hex()).
		Str("delivery_boy", claimed.Name).
		Msg("Order assigned")

	return order, nil
}

// MarkPickedUp advances an on-going order to picked-up.
func (s *OrderService) MarkPickedUp(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "order lookup failed")
	}
	if order.Status != models.OrderStatusOnGoing {
		return nil, &StateConflictError{Op: "pick up", Current: order.Status}
	}

	if err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusPickedUp); err != nil {
		return nil, err
	}
	// Already on-going from the assignment; re-set defensively.
	if err := s.boys.SetStatus(ctx, order.DeliveryBoyID, models.DeliveryBoyOnGoing); err != nil {
		log.Warn().Err(err).Str("order_id", orderID.Hex()).Msg("Failed to re-set delivery boy status")
	}

	order.Status = models.OrderStatusPickedUp
	order.UpdatedAt = time.Now()
	return order, nil
}

// MarkDelivered completes an order: bumps the user's and the boy's delivered
// counters, frees the boy and refreshes the user's rating.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	txn := s.tracer.StartTransaction("deliver-order")
	defer s.tracer.EndTransaction(txn)

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "order lookup failed")
	}

	switch order.Status {
	case models.OrderStatusPickedUp:
	case models.OrderStatusOnGoing:
		if !s.allowPickupSkip {
			return nil, &StateConflictError{Op: "deliver", Current: order.Status}
		}
	default:
		return nil, &StateConflictError{Op: "deliver", Current: order.Status}
	}

	if err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusDelivered); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	if err := s.users.IncrementDeliveredOrders(ctx, order.UserUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	if err := s.boys.CompleteDelivery(ctx, order.DeliveryBoyID); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	if err := s.rating.RefreshUser(ctx, order.UserUsername); err != nil {
		log.Warn().Err(err).Str("user", order.UserUsername).Msg("Failed to refresh user rating")
	}

	s.publishEvent(ctx, &models.OrderEvent{
		Type:           models.EventOrderDelivered,
		IdempotencyKey: uuid.NewString(),
		UserUsername:   order.UserUsername,
		DonorUsername:  order.DonorUsername,
		OrderID:        orderID.Hex(),
		Time:           time.Now().UTC(),
	})

	s.metrics.IncrementCounter(metrics.CounterOrdersDelivered)
	log.Info().
		Str("order_id", orderID.Hex()).
		Str("delivery_boy", order.DeliveryBoyName).
		Msg("Order delivered")

	order.Status = models.OrderStatusDelivered
	order.UpdatedAt = time.Now()
	return order, nil
}

// ListForUser returns every order coordinated by the user.
func (s *OrderService) ListForUser(ctx context.Context, userUsername string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userUsername)
}

func (s *OrderService) publishEvent(ctx context.Context, event *models.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.metrics.IncrementCounter(metrics.CounterEventPublishErrors)
		log.Warn().Err(err).Str("type", event.Type).Msg("Failed to publish order event")
		return
	}
	s.metrics.IncrementCounter(metrics.CounterEventsPublished)
}
