package orders

import (
	"context"
	"fmt"
	"time"

	"vanita/db"
	"vanita/models"
	"vanita/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// orderNumberBase seeds the counter; the first order gets number 101.
const orderNumberBase = 100

type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

// nextOrderNumber atomically increments the shared counter. The upsert makes
// the first allocation seed the document; return-after gives the allocated
// value. Concurrent callers can never observe the same number.
func (s *MongoStore) nextOrderNumber(ctx context.Context) (int, error) {
	filter := bson.M{"_id": "orderNumber"}
	update := bson.M{
		"$inc":         bson.M{"seq": 1},
		"$setOnInsert": bson.M{"base": orderNumberBase},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq  int `bson:"seq"`
		Base int `bson:"base"`
	}
	err := db.CountersCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-ever allocations can race the upsert; the loser retries
		// against the now-existing counter document.
		err = db.CountersCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter)
	}
	if err != nil {
		return 0, fmt.Errorf("allocate order number: %w", err)
	}
	return counter.Base + counter.Seq, nil
}

func (s *MongoStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.OrderID = "o" + utils.GenerateRandomString(14)
	order.OrderNumber = number
	order.Status = models.StatusPreparing
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (s *MongoStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{})
}

func (s *MongoStore) GetOrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.findOrders(ctx, bson.M{"status": status})
}

func (s *MongoStore) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := db.OrdersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderid": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	// Compare-and-set on the status just read. A writer that moved the order
	// in the meantime empties the match, so a stale check can never land a
	// backward write.
	filter := bson.M{"orderid": id, "status": current.Status}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	var order models.Order
	err = db.OrdersCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err == mongo.ErrNoDocuments {
		latest, gerr := s.GetOrder(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, latest.Status, status)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &order, nil
}

func (s *MongoStore) Stats(ctx context.Context) (*models.OrderStats, error) {
	// "Today" is the server's local calendar date.
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	active, err := db.OrdersCollection.CountDocuments(ctx, bson.M{"status": models.StatusPreparing})
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}

	todayCompleted := bson.M{
		"status":     models.StatusCompleted,
		"created_at": bson.M{"$gte": startOfDay},
	}

	completed, err := db.OrdersCollection.CountDocuments(ctx, todayCompleted)
	if err != nil {
		return nil, fmt.Errorf("count completed orders: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: todayCompleted}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_amount"}}}},
	}
	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	revenue := 0.0
	var agg []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &agg); err != nil {
		return nil, fmt.Errorf("decode revenue: %w", err)
	}
	if len(agg) > 0 {
		revenue = agg[0].Total
	}

	available, err := db.MenuCollection.CountDocuments(ctx, bson.M{"is_available": true})
	if err != nil {
		return nil, fmt.Errorf("count menu items: %w", err)
	}

	return &models.OrderStats{
		ActiveOrders:    int(active),
		TodayRevenue:    revenue,
		CompletedOrders: int(completed),
		TotalMenuItems:  int(available),
	}, nil
}

func (s *MongoStore) GetMenuItem(ctx context.Context, menuID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := db.MenuCollection.FindOne(ctx, bson.M{"menuid": menuID}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find menu item: %w", err)
	}
	return &item, nil
}
