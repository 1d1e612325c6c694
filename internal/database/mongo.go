package database

import (
	"context"

	"github.com/seriouslegend2/hungerhearts-sub000/config"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	UsersCollection        = "users"
	DonorsCollection       = "donors"
	DeliveryBoysCollection = "deliveryboys"
	ModeratorsCollection   = "moderators"
	PostsCollection        = "posts"
	RequestsCollection     = "requests"
	OrdersCollection       = "orders"
)

// Mongo wraps the client and the application database handle
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes a connection to MongoDB and verifies it with a ping
func Connect(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	return &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Database returns the application database handle
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Close disconnects the client
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and geospatial indexes the collections
// rely on. Safe to call on every startup.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		DonorsCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		DeliveryBoysCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "currentLocation", Value: "2dsphere"}}},
		},
		ModeratorsCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "donorUsername", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		RequestsCollection: {
			// Backstop for the idempotent-submit guarantee.
			{
				Keys: bson.D{
					{Key: "post_id", Value: 1},
					{Key: "donorUsername", Value: 1},
					{Key: "userUsername", Value: 1},
				},
				Options: unique,
			},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "userUsername", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "failed to create indexes for %s", coll)
		}
	}

	return nil
}
