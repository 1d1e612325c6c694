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

// DeliveryBoyRepository provides access to delivery boy documents
type DeliveryBoyRepository interface {
	Create(ctx context.Context, boy *models.DeliveryBoy) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryBoy, error)
	GetByName(ctx context.Context, name string) (*models.DeliveryBoy, error)
	// Claim flips status available -> on-going as a single conditional
	// update. Returns ErrNotFound when the boy is no longer available.
	Claim(ctx context.Context, id primitive.ObjectID) (*models.DeliveryBoy, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryBoyStatus) error
	// ToggleStatus flips available <-> inactive; refused while on-going.
	ToggleStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryBoyStatus) (*models.DeliveryBoy, error)
	// CompleteDelivery increments the delivered counter and frees the boy
	// in one update.
	CompleteDelivery(ctx context.Context, id primitive.ObjectID) error
	UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error
}

type deliveryBoyRepository struct {
	coll *mongo.Collection
}

// NewDeliveryBoyRepository creates a new delivery boy repository
func NewDeliveryBoyRepository(db *mongo.Database) DeliveryBoyRepository {
	return &deliveryBoyRepository{coll: db.Collection(database.DeliveryBoysCollection)}
}

func (r *deliveryBoyRepository) Create(ctx context.Context, boy *models.DeliveryBoy) error {
	res, err := r.coll.InsertOne(ctx, boy)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to insert delivery boy")
	}
	boy.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *deliveryBoyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&boy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get delivery boy by id")
	}
	return &boy, nil
}

func (r *deliveryBoyRepository) GetByName(ctx context.Context, name string) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&boy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get delivery boy by name")
	}
	return &boy, nil
}

func (r *deliveryBoyRepository) Claim(ctx context.Context, id primitive.ObjectID) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.DeliveryBoyAvailable},
		bson.M{"$set": bson.M{"status": models.DeliveryBoyOnGoing}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&boy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to claim delivery boy")
	}
	return &boy, nil
}

func (r *deliveryBoyRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryBoyStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to set delivery boy status")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *deliveryBoyRepository) ToggleStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryBoyStatus) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": models.DeliveryBoyOnGoing}},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&boy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to toggle delivery boy status")
	}
	return &boy, nil
}

func (r *deliveryBoyRepository) CompleteDelivery(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"deliveredOrders": 1},
			"$set": bson.M{"status": models.DeliveryBoyAvailable},
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to complete delivery")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *deliveryBoyRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"currentLocation": loc}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to update delivery boy location")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
