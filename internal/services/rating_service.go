package services

import (
	"context"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RatingService maintains the derived rating fields on users and donors.
// Mutation points refresh only the affected party; the worker runs the full
// recomputation in bounded batches as a fallback.
type RatingService struct {
	users     repositories.UserRepository
	donors    repositories.DonorRepository
	metrics   *metrics.Metrics
	batchSize int64
}

// NewRatingService creates a new rating service
func NewRatingService(
	users repositories.UserRepository,
	donors repositories.DonorRepository,
	m *metrics.Metrics,
	batchSize int64,
) *RatingService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &RatingService{
		users:     users,
		donors:    donors,
		metrics:   m,
		batchSize: batchSize,
	}
}

// ComputeRating derives a rating from an activity count. The count is
// normalized against itself, so the result is 0 with no activity and
// MaxRating with any; kept bit-for-bit with the production behavior.
func ComputeRating(count int64) float64 {
	if count == 0 {
		return 0
	}
	rating := float64(count) / float64(count) * models.MaxRating
	if rating > models.MaxRating {
		rating = models.MaxRating
	}
	return rating
}

// RefreshUser recomputes and persists one user's rating
func (s *RatingService) RefreshUser(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return errors.Wrap(err, "failed to load user for rating refresh")
	}
	if err := s.users.SetRating(ctx, username, ComputeRating(user.DonorOrdersCount)); err != nil {
		return errors.Wrap(err, "failed to persist user rating")
	}
	s.metrics.IncrementCounter(metrics.CounterRatingRefreshes)
	return nil
}

// RefreshDonor recomputes and persists one donor's rating
func (s *RatingService) RefreshDonor(ctx context.Context, username string) error {
	donor, err := s.donors.GetByUsername(ctx, username)
	if err != nil {
		return errors.Wrap(err, "failed to load donor for rating refresh")
	}
	if err := s.donors.SetRating(ctx, username, ComputeRating(donor.DonationsCount)); err != nil {
		return errors.Wrap(err, "failed to persist donor rating")
	}
	s.metrics.IncrementCounter(metrics.CounterRatingRefreshes)
	return nil
}

// HandleOrderEvent refreshes the ratings of the parties named by a consumed
// order lifecycle event.
func (s *RatingService) HandleOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	switch event.Type {
	case models.EventRequestAccepted:
		if err := s.RefreshUser(ctx, event.UserUsername); err != nil {
			return err
		}
		return s.RefreshDonor(ctx, event.DonorUsername)
	case models.EventOrderDelivered:
		return s.RefreshUser(ctx, event.UserUsername)
	default:
		log.Warn().Str("type", event.Type).Msg("Ignoring unknown order event")
		return nil
	}
}

// RecomputeAll walks every user and donor in bounded batches and persists
// their ratings. Used by the worker's periodic fallback job.
func (s *RatingService) RecomputeAll(ctx context.Context) error {
	var refreshed int64

	for offset := int64(0); ; offset += s.batchSize {
		users, err := s.users.ListPage(ctx, offset, s.batchSize)
		if err != nil {
			return errors.Wrap(err, "failed to page users for rating recompute")
		}
		if len(users) == 0 {
			break
		}
		for i := range users {
			if err := s.users.SetRating(ctx, users[i].Username, ComputeRating(users[i].DonorOrdersCount)); err != nil {
				log.Error().Err(err).Str("username", users[i].Username).Msg("Failed to refresh user rating")
				continue
			}
			refreshed++
		}
		if int64(len(users)) < s.batchSize {
			break
		}
	}

	for offset := int64(0); ; offset += s.batchSize {
		donors, err := s.donors.ListPage(ctx, offset, s.batchSize)
		if err != nil {
			return errors.Wrap(err, "failed to page donors for rating recompute")
		}
		if len(donors) == 0 {
			break
		}
		for i := range donors {
			if err := s.donors.SetRating(ctx, donors[i].Username, ComputeRating(donors[i].DonationsCount)); err != nil {
				log.Error().Err(err).Str("username", donors[i].Username).Msg("Failed to refresh donor rating")
				continue
			}
			refreshed++
		}
		if int64(len(donors)) < s.batchSize {
			break
		}
	}

	s.metrics.IncrementCounterBy(metrics.CounterRatingRefreshes, refreshed)
	log.Info().Int64("refreshed", refreshed).Msg("Rating recompute finished")
	return nil
}
