// Package mongo implements the metadata repositories on top of MongoDB.
package mongo

import (
	"context"
	"fmt"

	"github.com/templui/filesmanager/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	filesCollection = "files"
	usersCollection = "users"
)

// NewClient connects to MongoDB and verifies the connection with a ping.
func NewClient(ctx context.Context, url string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// NewStore builds the repositories backed by the given database and ensures its indexes.
func NewStore(ctx context.Context, client *mongo.Client, database string) (*repository.Store, error) {
	db := client.Database(database)

	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = db.Collection(filesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create files index: %w", err)
	}

	return &repository.Store{
		Files: NewFileStore(db),
		Users: NewUserStore(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: func() error {
			return client.Disconnect(context.Background())
		},
	}, nil
}
