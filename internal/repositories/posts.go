package repositories

import (
	"context"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/database"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository provides access to post documents
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListByDonor(ctx context.Context, donorUsername string) ([]models.Post, error)
	Close(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, query string) ([]models.Post, error)
}

type postRepository struct {
	coll *mongo.Collection
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{coll: db.Collection(database.PostsCollection)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	res, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		return errors.Wrap(err, "failed to insert post")
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get post by id")
	}
	return &post, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "failed to decode posts")
	}
	return posts, nil
}

func (r *postRepository) ListByDonor(ctx context.Context, donorUsername string) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"donorUsername": donorUsername}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list donor posts")
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "failed to decode donor posts")
	}
	return posts, nil
}

func (r *postRepository) Close(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDealClosed": true}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to close post")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search is the database fallback for post search when Elasticsearch is
// unavailable: a case-insensitive regex over food labels and locations.
func (r *postRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	pattern := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{"$or": []bson.M{
		{"availableFood": bson.M{"$elemMatch": bson.M{"$regex": pattern}}},
		{"location": bson.M{"$regex": pattern}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search posts")
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "failed to decode search results")
	}
	return posts, nil
}
