package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client             *mongo.Client
	MenuCollection     *mongo.Collection
	OrdersCollection   *mongo.Collection
	AdminCollection    *mongo.Collection
	SessionsCollection *mongo.Collection
	CountersCollection *mongo.Collection
)

// Connect dials MongoDB and binds the package collections. Call once from
// main before serving.
func Connect(ctx context.Context) error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "vanitadb"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}

	Client = client
	database := client.Database(dbName)
	MenuCollection = database.Collection("menu_items")
	OrdersCollection = database.Collection("orders")
	AdminCollection = database.Collection("admins")
	SessionsCollection = database.Collection("sessions")
	CountersCollection = database.Collection("counters")

	return EnsureIndexes(ctx)
}

// EnsureIndexes creates the indexes the stores rely on: unique order numbers,
// unique admin mobiles, and TTL-expired sessions.
func EnsureIndexes(ctx context.Context) error {
	_, err := OrdersCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("order indexes: %w", err)
	}

	_, err = AdminCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mobile", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("admin indexes: %w", err)
	}

	_, err = SessionsCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expire", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}

	_, err = MenuCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "menuid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("menu indexes: %w", err)
	}
	return nil
}

// Disconnect closes the client; used during graceful shutdown.
func Disconnect() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = Client.Disconnect(ctx)
}
