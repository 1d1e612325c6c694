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

// RequestService handles the request lifecycle: submit, accept, cancel and
// the donor/user listings.
type RequestService struct {
	requests  repositories.RequestRepository
	posts     repositories.PostRepository
	users     repositories.UserRepository
	donors    repositories.DonorRepository
	rating    *RatingService
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	tracer    tracing.Tracer
}

// NewRequestService creates a new request service
func NewRequestService(
	requests repositories.RequestRepository,
	posts repositories.PostRepository,
	users repositories.UserRepository,
	donors repositories.DonorRepository,
	rating *RatingService,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	tracer tracing.Tracer,
) *RequestService {
	return &RequestService{
		requests:  requests,
		posts:     posts,
		users:     users,
		donors:    donors,
		rating:    rating,
		publisher: publisher,
		metrics:   m,
		tracer:    tracer,
	}
}

// Submit creates a request unless an identical (post, donor, user) request
// already exists; resubmission is an idempotent no-op returning the existing
// document with created=false.
func (s *RequestService) Submit(ctx context.Context, donorUsername, userUsername string, postID primitive.ObjectID, foodItems []string, location string) (*models.Request, bool, error) {
	txn := s.tracer.StartTransaction("submit-request")
	defer s.tracer.EndTransaction(txn)

	if _, err := s.donors.GetByUsername(ctx, donorUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, false, errors.Wrap(err, "donor lookup failed")
	}
	if _, err := s.users.GetByUsername(ctx, userUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, false, errors.Wrap(err, "user lookup failed")
	}

	existing, err := s.requests.FindByTriple(ctx, postID, donorUsername, userUsername)
	if err == nil {
		s.metrics.IncrementCounter(metrics.CounterRequestsDuplicate)
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		s.tracer.RecordError(txn, err)
		return nil, false, err
	}

	request := &models.Request{
		DonorUsername: donorUsername,
		UserUsername:  userUsername,
		PostID:        postID,
		Location:      location,
		AvailableFood: foodItems,
		CreatedAt:     time.Now(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		// The unique index backstops a concurrent identical submit.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if existing, findErr := s.requests.FindByTriple(ctx, postID, donorUsername, userUsername); findErr == nil {
				s.metrics.IncrementCounter(metrics.CounterRequestsDuplicate)
				return existing, false, nil
			}
		}
		s.tracer.RecordError(txn, err)
		return nil, false, err
	}

	s.metrics.IncrementCounter(metrics.CounterRequestsSubmitted)
	log.Info().
		Str("request_id", request.ID.Hex()).
		Str("donor", donorUsername).
		Str("user", userUsername).
		Msg("Request submitted")

	return request, true, nil
}

// AcceptResult summarizes the documents touched by an accept.
type AcceptResult struct {
	Request *models.Request `json:"request"`
	Donor   *models.Donor   `json:"donor"`
	User    *models.User    `json:"user"`
}

// Accept marks the request accepted, rejects every sibling request against
// the same post, closes the post and bumps the donor/user counters. The
// writes are sequential; a failure after the counters are persisted is
// logged and surfaced but not rolled back.
func (s *RequestService) Accept(ctx context.Context, requestID primitive.ObjectID) (*AcceptResult, error) {
	txn := s.tracer.StartTransaction("accept-request")
	defer s.tracer.EndTransaction(txn)

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "request lookup failed")
	}
	if _, err := s.users.GetByUsername(ctx, request.UserUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "user lookup failed")
	}
	if _, err := s.donors.GetByUsername(ctx, request.DonorUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, errors.Wrap(err, "donor lookup failed")
	}

	if err := s.users.IncrementDonorOrders(ctx, request.UserUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	if err := s.donors.IncrementDonations(ctx, request.DonorUsername); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	if err := s.rating.RefreshUser(ctx, request.UserUsername); err != nil {
		log.Warn().Err(err).Str("user", request.UserUsername).Msg("Failed to refresh user rating")
	}
	if err := s.rating.RefreshDonor(ctx, request.DonorUsername); err != nil {
		log.Warn().Err(err).Str("donor", request.DonorUsername).Msg("Failed to refresh donor rating")
	}

	if err := s.requests.SetAccepted(ctx, requestID, true); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}
	request.IsAccepted = true

	rejected, err := s.requests.RejectSiblings(ctx, request.PostID, requestID)
	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	if err := s.posts.Close(ctx, request.PostID); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.publishEvent(ctx, &models.OrderEvent{
		Type:           models.EventRequestAccepted,
		IdempotencyKey: uuid.NewString(),
		UserUsername:   request.UserUsername,
		DonorUsername:  request.DonorUsername,
		RequestID:      requestID.Hex(),
		Time:           time.Now().UTC(),
	})

	s.metrics.IncrementCounter(metrics.CounterRequestsAccepted)
	log.Info().
		Str("request_id", requestID.Hex()).
		Int64("siblings_rejected", rejected).
		Msg("Request accepted, post closed")

	donor, err := s.donors.GetByUsername(ctx, request.DonorUsername)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, request.UserUsername)
	if err != nil {
		return nil, err
	}

	return &AcceptResult{Request: request, Donor: donor, User: user}, nil
}

// Cancel clears the accepted flag. Counters and post closure are left
// untouched, mirroring the deliberate asymmetry with Accept.
func (s *RequestService) Cancel(ctx context.Context, requestID primitive.ObjectID) (*models.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "request lookup failed")
	}
	if err := s.requests.SetAccepted(ctx, requestID, false); err != nil {
		return nil, err
	}
	request.IsAccepted = false
	return request, nil
}

// ListAcceptedForUser returns the user's ready-to-dispatch queue: accepted
// requests without a delivery assigned.
func (s *RequestService) ListAcceptedForUser(ctx context.Context, userUsername string) ([]models.Request, error) {
	return s.requests.ListAcceptedUnassigned(ctx, userUsername)
}

// ListForPost returns every request submitted against a post.
func (s *RequestService) ListForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Request, error) {
	return s.requests.ListForPost(ctx, postID)
}

func (s *RequestService) publishEvent(ctx context.Context, event *models.OrderEvent) {
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
