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

// RequestRepository provides access to request documents
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	FindByTriple(ctx context.Context, postID primitive.ObjectID, donorUsername, userUsername string) (*models.Request, error)
	SetAccepted(ctx context.Context, id primitive.ObjectID, accepted bool) error
	RejectSiblings(ctx context.Context, postID, acceptedID primitive.ObjectID) (int64, error)
	SetDeliveryAssigned(ctx context.Context, id primitive.ObjectID) error
	ListAcceptedUnassigned(ctx context.Context, userUsername string) ([]models.Request, error)
	ListForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Request, error)
}

type requestRepository struct {
	coll *mongo.Collection
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *mongo.Database) RequestRepository {
	return &requestRepository{coll: db.Collection(database.RequestsCollection)}
}

func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	res, err := r.coll.InsertOne(ctx, request)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to insert request")
	}
	request.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var request models.Request
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get request by id")
	}
	return &request, nil
}

func (r *requestRepository) FindByTriple(ctx context.Context, postID primitive.ObjectID, donorUsername, userUsername string) (*models.Request, error) {
	var request models.Request
	err := r.coll.FindOne(ctx, bson.M{
		"post_id":       postID,
		"donorUsername": donorUsername,
		"userUsername":  userUsername,
	}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find request by triple")
	}
	return &request, nil
}

func (r *requestRepository) SetAccepted(ctx context.Context, id primitive.ObjectID, accepted bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isAccepted": accepted}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to set request accepted flag")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RejectSiblings marks every other request against the same post rejected.
// Best-effort multi-document update, not atomic with the accept itself.
func (r *requestRepository) RejectSiblings(ctx context.Context, postID, acceptedID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"post_id": postID, "_id": bson.M{"$ne": acceptedID}},
		bson.M{"$set": bson.M{"isRejected": true}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to reject sibling requests")
	}
	return res.ModifiedCount, nil
}

func (r *requestRepository) SetDeliveryAssigned(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"deliveryAssigned": true}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to set delivery assigned flag")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAcceptedUnassigned returns the user's ready-to-dispatch queue.
func (r *requestRepository) ListAcceptedUnassigned(ctx context.Context, userUsername string) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{
		"userUsername":     userUsername,
		"isAccepted":       true,
		"deliveryAssigned": false,
	}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accepted requests")
	}
	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, errors.Wrap(err, "failed to decode accepted requests")
	}
	return requests, nil
}

func (r *requestRepository) ListForPost(ctx context.Context, postID primitive.ObjectID) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list requests for post")
	}
	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, errors.Wrap(err, "failed to decode requests for post")
	}
	return requests, nil
}
