package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"vanita/models"

	"vanita/utils"
)

// memStore is an in-memory Store used by the handler tests.
type memStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	menu   map[string]*models.MenuItem
	seq    int
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[string]*models.Order),
		menu:   make(map[string]*models.MenuItem),
	}
}

func (s *memStore) addMenuItem(item models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := item
	s.menu[item.MenuID] = &copied
}

func (s *memStore) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	now := time.Now()
	order.OrderID = "o" + utils.GenerateRandomString(14)
	order.OrderNumber = orderNumberBase + s.seq
	order.Status = models.StatusPreparing
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.OrderID] = order
	return order, nil
}

func (s *memStore) GetOrders(_ context.Context) ([]models.Order, error) {
	return s.collect(func(*models.Order) bool { return true }), nil
}

func (s *memStore) GetOrdersByStatus(_ context.Context, status string) ([]models.Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.collect(func(o *models.Order) bool { return o.Status == status }), nil
}

func (s *memStore) collect(keep func(*models.Order) bool) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Order{}
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *memStore) UpdateOrderStatus(_ context.Context, id, status string) (*models.Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !CanTransition(o.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, status)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	copied := *o
	return &copied, nil
}

func (s *memStore) Stats(_ context.Context) (*models.OrderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &models.OrderStats{}
	for _, o := range s.orders {
		if o.Status == models.StatusPreparing {
			stats.ActiveOrders++
		}
		if o.Status == models.StatusCompleted && !o.CreatedAt.Before(startOfDay) {
			stats.CompletedOrders++
			stats.TodayRevenue += o.TotalAmount
		}
	}
	for _, item := range s.menu {
		if item.IsAvailable {
			stats.TotalMenuItems++
		}
	}
	return stats, nil
}

func (s *memStore) GetMenuItem(_ context.Context, menuID string) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menu[menuID]
	if !ok {
		return nil, ErrMenuItemNotFound
	}
	copied := *item
	return &copied, nil
}

func TestCompletedOrderNeverRegressesUnderConcurrentUpdates(t *testing.T) {
	store := newMemStore()
	order, err := store.CreateOrder(context.Background(), &models.Order{TotalAmount: 120})
	if err != nil {
		t.Fatal(err)
	}

	// One writer walks the order to completed while others keep retrying the
	// earlier transitions with stale assumptions.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.UpdateOrderStatus(context.Background(), order.OrderID, models.StatusReady)
		store.UpdateOrderStatus(context.Background(), order.OrderID, models.StatusCompleted)
	}()
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.UpdateOrderStatus(context.Background(), order.OrderID, models.StatusReady)
		}()
	}
	wg.Wait()

	got, err := store.GetOrder(context.Background(), order.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusCompleted {
		t.Fatalf("order regressed to %s", got.Status)
	}

	if _, err := store.UpdateOrderStatus(context.Background(), order.OrderID, models.StatusReady); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
