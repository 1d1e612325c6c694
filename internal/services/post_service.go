package services

import (
	"context"
	"time"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/cache"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/metrics"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/repositories"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/search"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// List sources reported by ListAll.
const (
	SourceCache    = "cache"
	SourceDatabase = "database"
)

// ListingCache is the slice of the cache the post service reads the
// listing through. *cache.RedisCache satisfies it.
type ListingCache interface {
	Enabled() bool
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// PostService handles post creation and the cached listing. The cache and
// the search index are side-channels: any failure against them degrades to
// database reads and is never surfaced to the caller.
type PostService struct {
	posts    repositories.PostRepository
	donors   repositories.DonorRepository
	cache    ListingCache
	elastic  *search.ElasticClient
	metrics  *metrics.Metrics
	cacheTTL time.Duration
}

// NewPostService creates a new post service. cache and elastic may be nil.
func NewPostService(
	posts repositories.PostRepository,
	donors repositories.DonorRepository,
	redisCache ListingCache,
	elastic *search.ElasticClient,
	m *metrics.Metrics,
	cacheTTL time.Duration,
) *PostService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &PostService{
		posts:    posts,
		donors:   donors,
		cache:    redisCache,
		elastic:  elastic,
		metrics:  m,
		cacheTTL: cacheTTL,
	}
}

// Create persists a post for the donor, then eagerly refreshes the listing
// cache and indexes the post for search, both best-effort.
func (s *PostService) Create(ctx context.Context, donorUsername string, foodItems []string, location string, geo models.GeoPoint) (*models.Post, error) {
	donor, err := s.donors.GetByUsername(ctx, donorUsername)
	if err != nil {
		return nil, errors.Wrap(err, "donor lookup failed")
	}
	if donor.IsBanned {
		return nil, ErrDonorBanned
	}

	post := &models.Post{
		DonorUsername:   donorUsername,
		AvailableFood:   foodItems,
		Location:        location,
		CurrentLocation: geo,
		CreatedAt:       time.Now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.refreshListingCache(ctx)

	if s.elastic != nil {
		if err := s.elastic.IndexPost(ctx, post); err != nil {
			log.Warn().Err(err).Str("post_id", post.ID.Hex()).Msg("Failed to index post")
		}
	}

	s.metrics.IncrementCounter(metrics.CounterPostsCreated)
	log.Info().Str("post_id", post.ID.Hex()).Str("donor", donorUsername).Msg("Post created")

	return post, nil
}

// ListAll returns every post, newest first, read through the cache. The
// returned source tells the caller whether the cache or the database served
// the listing.
func (s *PostService) ListAll(ctx context.Context) ([]models.Post, string, error) {
	if s.cache != nil && s.cache.Enabled() {
		var cached []models.Post
		if err := s.cache.Get(ctx, cache.PostsCacheKey, &cached); err == nil {
			s.metrics.IncrementCounter(metrics.CounterPostsCacheHits)
			return cached, SourceCache, nil
		}
	}
	s.metrics.IncrementCounter(metrics.CounterPostsCacheMisses)

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, "", err
	}

	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, cache.PostsCacheKey, posts, s.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to repopulate posts cache")
		}
	}

	return posts, SourceDatabase, nil
}

// ListForDonor returns the donor's own posts, bypassing the cache.
func (s *PostService) ListForDonor(ctx context.Context, donorUsername string) ([]models.Post, error) {
	return s.posts.ListByDonor(ctx, donorUsername)
}

// Search finds posts matching the query by food label or location, serving
// from Elasticsearch when available and falling back to a database scan.
func (s *PostService) Search(ctx context.Context, query string) ([]models.Post, error) {
	if s.elastic != nil {
		if ids, err := s.elastic.SearchPosts(ctx, query); err == nil {
			posts := make([]models.Post, 0, len(ids))
			for _, id := range ids {
				oid, err := primitive.ObjectIDFromHex(id)
				if err != nil {
					continue
				}
				post, err := s.posts.GetByID(ctx, oid)
				if err != nil {
					continue
				}
				posts = append(posts, *post)
			}
			return posts, nil
		}
		log.Warn().Str("query", query).Msg("Search index unavailable, falling back to database")
	}
	return s.posts.Search(ctx, query)
}

func (s *PostService) refreshListingCache(ctx context.Context) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read posts for cache refresh")
		return
	}
	if err := s.cache.Set(ctx, cache.PostsCacheKey, posts, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh posts cache")
	}
}
