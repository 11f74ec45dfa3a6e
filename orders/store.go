package orders

import (
	"context"

	"vanita/models"
)

// Store is the single source of truth for order persistence. The Mongo
// implementation backs the server; tests use an in-memory one.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByStatus(ctx context.Context, status string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
	Stats(ctx context.Context) (*models.OrderStats, error)

	// GetMenuItem supplies the price/name snapshot when an order is placed.
	GetMenuItem(ctx context.Context, menuID string) (*models.MenuItem, error)
}
