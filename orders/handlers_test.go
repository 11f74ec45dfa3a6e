package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vanita/models"
	"vanita/notify"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(store Store) *httprouter.Router {
	h := NewHandler(store)
	router := httprouter.New()
	router.POST("/api/orders", h.PlaceOrder)
	router.GET("/api/orders/:id", h.GetOrder)
	router.GET("/api/orders/:id/receipt", h.Receipt)
	router.GET("/api/admin/orders", h.ListOrders)
	router.PUT("/api/admin/orders/:id/status", h.UpdateStatus)
	router.GET("/api/admin/stats", h.GetStats)
	return router
}

func seedMenu(store *memStore) {
	store.addMenuItem(models.MenuItem{
		MenuID: "m1", Name: "Dal Tadka", Price: 120, Category: "mains",
		Type: models.TypeVeg, IsAvailable: true,
	})
	store.addMenuItem(models.MenuItem{
		MenuID: "m2", Name: "Chicken Curry", Price: 250, Category: "mains",
		Type: models.TypeNonVeg, IsAvailable: true,
	})
	store.addMenuItem(models.MenuItem{
		MenuID: "m3", Name: "Off Menu Special", Price: 999, Category: "mains",
		Type: models.TypeVeg, IsAvailable: false,
	})
}

func placeOrderBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"customerName":    "Asha",
		"customerMobile":  "9876543210",
		"customerAddress": "12 MG Road",
		"items": []map[string]any{
			{"menuItemId": "m1", "quantity": 2},
			{"menuItemId": "m2", "quantity": 1},
		},
	})
	return body
}

func TestPlaceOrderSnapshotsMenuPrices(t *testing.T) {
	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(placeOrderBody()))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 101, order.OrderNumber)
	assert.Equal(t, models.StatusPreparing, order.Status)
	assert.Equal(t, 2*120.0+250.0, order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Dal Tadka", order.Items[0].Name)
	assert.Equal(t, 120.0, order.Items[0].Price)
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing customer fields", map[string]any{
			"customerName": "Asha",
			"items":        []map[string]any{{"menuItemId": "m1", "quantity": 1}},
		}},
		{"no items", map[string]any{
			"customerName": "Asha", "customerMobile": "9876543210", "customerAddress": "12 MG Road",
			"items": []map[string]any{},
		}},
		{"zero quantity", map[string]any{
			"customerName": "Asha", "customerMobile": "9876543210", "customerAddress": "12 MG Road",
			"items": []map[string]any{{"menuItemId": "m1", "quantity": 0}},
		}},
		{"unknown menu item", map[string]any{
			"customerName": "Asha", "customerMobile": "9876543210", "customerAddress": "12 MG Road",
			"items": []map[string]any{{"menuItemId": "nope", "quantity": 1}},
		}},
		{"unavailable menu item", map[string]any{
			"customerName": "Asha", "customerMobile": "9876543210", "customerAddress": "12 MG Road",
			"items": []map[string]any{{"menuItemId": "m3", "quantity": 1}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestOrderNumbersUniqueUnderConcurrentCreation(t *testing.T) {
	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	const n = 50
	var wg sync.WaitGroup
	numbers := make(chan int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(placeOrderBody()))
			router.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				return
			}
			var order models.Order
			if json.Unmarshal(w.Body.Bytes(), &order) == nil {
				numbers <- order.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	count := 0
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %d", num)
		seen[num] = true
		count++
	}
	assert.Equal(t, n, count)
}

func TestUpdateStatusTransitions(t *testing.T) {
	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	order, err := store.CreateOrder(context.Background(), &models.Order{
		CustomerName: "Asha", CustomerMobile: "9876543210", CustomerAddress: "12 MG Road",
		Items:       []models.OrderItem{{MenuItemID: "m1", Name: "Dal Tadka", Quantity: 1, Price: 120}},
		TotalAmount: 120,
	})
	require.NoError(t, err)

	put := func(id, status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"status": status})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/"+id+"/status", bytes.NewReader(body))
		router.ServeHTTP(w, req)
		return w
	}

	// Forward steps succeed.
	assert.Equal(t, http.StatusOK, put(order.OrderID, models.StatusReady).Code)
	assert.Equal(t, http.StatusOK, put(order.OrderID, models.StatusCompleted).Code)

	// completed is terminal.
	assert.Equal(t, http.StatusConflict, put(order.OrderID, models.StatusPreparing).Code)
	assert.Equal(t, http.StatusConflict, put(order.OrderID, models.StatusReady).Code)

	// Unknown literal and unknown id.
	assert.Equal(t, http.StatusBadRequest, put(order.OrderID, "delivered").Code)
	assert.Equal(t, http.StatusNotFound, put("missing", models.StatusReady).Code)
}

func TestStatsFixture(t *testing.T) {
	store := newMemStore()
	store.addMenuItem(models.MenuItem{MenuID: "m1", Name: "Dal Tadka", IsAvailable: true})
	store.addMenuItem(models.MenuItem{MenuID: "m2", Name: "Retired Dish", IsAvailable: false})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.CreateOrder(ctx, &models.Order{TotalAmount: 50})
		require.NoError(t, err)
	}
	for _, amount := range []float64{100, 250} {
		order, err := store.CreateOrder(ctx, &models.Order{TotalAmount: amount})
		require.NoError(t, err)
		_, err = store.UpdateOrderStatus(ctx, order.OrderID, models.StatusReady)
		require.NoError(t, err)
		_, err = store.UpdateOrderStatus(ctx, order.OrderID, models.StatusCompleted)
		require.NoError(t, err)
	}

	router := newTestRouter(store)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats models.OrderStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.ActiveOrders)
	assert.Equal(t, 350.0, stats.TodayRevenue)
	assert.Equal(t, 2, stats.CompletedOrders)
	assert.Equal(t, 1, stats.TotalMenuItems)
}

func TestNewOrderBroadcastReachesConnectedAdmins(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()
	defer hub.Stop()
	notify.Init(hub)

	a := &notify.Client{Send: make(chan []byte, 10)}
	b := &notify.Client{Send: make(chan []byte, 10)}
	gone := &notify.Client{Send: make(chan []byte, 10)}
	hub.Register(a)
	hub.Register(b)
	hub.Register(gone)
	hub.Unregister(gone)

	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(placeOrderBody()))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	for _, c := range []*notify.Client{a, b} {
		select {
		case raw := <-c.Send:
			var ev struct {
				Type string       `json:"type"`
				Data models.Order `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.Equal(t, notify.EventNewOrder, ev.Type)
			assert.Equal(t, created.OrderID, ev.Data.OrderID)
			assert.Equal(t, created.OrderNumber, ev.Data.OrderNumber)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for NEW_ORDER event")
		}

		// Exactly one event.
		select {
		case extra := <-c.Send:
			t.Fatalf("unexpected extra event: %s", extra)
		default:
		}
	}
}

func TestGetOrderAndReceipt(t *testing.T) {
	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	order, err := store.CreateOrder(context.Background(), &models.Order{
		CustomerName: "Asha", CustomerMobile: "9876543210", CustomerAddress: "12 MG Road",
		Items:       []models.OrderItem{{MenuItemID: "m1", Name: "Dal Tadka", Quantity: 2, Price: 120}},
		TotalAmount: 240,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+order.OrderID, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/orders/"+order.OrderID+"/receipt", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	store := newMemStore()
	seedMenu(store)
	router := newTestRouter(store)

	ctx := context.Background()
	first, err := store.CreateOrder(ctx, &models.Order{TotalAmount: 100})
	require.NoError(t, err)
	_, err = store.CreateOrder(ctx, &models.Order{TotalAmount: 200})
	require.NoError(t, err)
	_, err = store.UpdateOrderStatus(ctx, first.OrderID, models.StatusReady)
	require.NoError(t, err)

	get := func(url string) ([]models.Order, int) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		router.ServeHTTP(w, req)
		var list []models.Order
		_ = json.Unmarshal(w.Body.Bytes(), &list)
		return list, w.Code
	}

	list, code := get("/api/admin/orders")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list, 2)

	list, code = get("/api/admin/orders?status=ready")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list, 1)
	assert.Equal(t, first.OrderID, list[0].OrderID)

	_, code = get("/api/admin/orders?status=bogus")
	assert.Equal(t, http.StatusBadRequest, code)
}
