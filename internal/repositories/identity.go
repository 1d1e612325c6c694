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

// UserRepository provides access to user documents
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	IncrementDonorOrders(ctx context.Context, username string) error
	IncrementDeliveredOrders(ctx context.Context, username string) error
	RegisterDeliveryBoy(ctx context.Context, username string, boyID primitive.ObjectID) error
	SetRating(ctx context.Context, username string, rating float64) error
	ListPage(ctx context.Context, offset, limit int64) ([]models.User, error)
}

// DonorRepository provides access to donor documents
type DonorRepository interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByUsername(ctx context.Context, username string) (*models.Donor, error)
	IncrementDonations(ctx context.Context, username string) error
	SetRating(ctx context.Context, username string, rating float64) error
	SetBanned(ctx context.Context, username string, banned bool) error
	ListPage(ctx context.Context, offset, limit int64) ([]models.Donor, error)
}

// ModeratorRepository provides access to moderator documents
type ModeratorRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Moderator, error)
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to insert user")
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get user by username")
	}
	return &user, nil
}

func (r *userRepository) IncrementDonorOrders(ctx context.Context, username string) error {
	return r.incrementCounter(ctx, username, "donorOrdersCount")
}

func (r *userRepository) IncrementDeliveredOrders(ctx context.Context, username string) error {
	return r.incrementCounter(ctx, username, "deliveredOrdersCount")
}

func (r *userRepository) incrementCounter(ctx context.Context, username, field string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to increment %s", field)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RegisterDeliveryBoy appends the boy to the user's list and bumps the
// derived count in the same single-document update, so the cached count
// cannot diverge from the list length.
func (r *userRepository) RegisterDeliveryBoy(ctx context.Context, username string, boyID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{
			"$push": bson.M{"deliveryBoys": boyID},
			"$inc":  bson.M{"registeredDeliveryBoysCount": 1},
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to register delivery boy")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) SetRating(ctx context.Context, username string, rating float64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"rating": rating}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to set user rating")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ListPage(ctx context.Context, offset, limit int64) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(offset).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "failed to decode users")
	}
	return users, nil
}

type donorRepository struct {
	coll *mongo.Collection
}

// NewDonorRepository creates a new donor repository
func NewDonorRepository(db *mongo.Database) DonorRepository {
	return &donorRepository{coll: db.Collection(database.DonorsCollection)}
}

func (r *donorRepository) Create(ctx context.Context, donor *models.Donor) error {
	res, err := r.coll.InsertOne(ctx, donor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return errors.Wrap(err, "failed to insert donor")
	}
	donor.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *donorRepository) GetByUsername(ctx context.Context, username string) (*models.Donor, error) {
	var donor models.Donor
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&donor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get donor by username")
	}
	return &donor, nil
}

func (r *donorRepository) IncrementDonations(ctx context.Context, username string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$inc": bson.M{"donationsCount": 1}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to increment donations count")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *donorRepository) SetRating(ctx context.Context, username string, rating float64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"rating": rating}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to set donor rating")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *donorRepository) SetBanned(ctx context.Context, username string, banned bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"isBanned": banned}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to set donor ban flag")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *donorRepository) ListPage(ctx context.Context, offset, limit int64) ([]models.Donor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(offset).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list donors")
	}
	var donors []models.Donor
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, errors.Wrap(err, "failed to decode donors")
	}
	return donors, nil
}

type moderatorRepository struct {
	coll *mongo.Collection
}

// NewModeratorRepository creates a new moderator repository
func NewModeratorRepository(db *mongo.Database) ModeratorRepository {
	return &moderatorRepository{coll: db.Collection(database.ModeratorsCollection)}
}

func (r *moderatorRepository) GetByUsername(ctx context.Context, username string) (*models.Moderator, error) {
	var mod models.Moderator
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&mod)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get moderator by username")
	}
	return &mod, nil
}
