package orders

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"vanita/models"
	"vanita/notify"
	"vanita/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler binds the order routes to a Store.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type placeOrderRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerMobile  string `json:"customerMobile"`
	CustomerAddress string `json:"customerAddress"`
	Items           []struct {
		MenuItemID string `json:"menuItemId"`
		Quantity   int    `json:"quantity"`
	} `json:"items"`
}

// PlaceOrder handles POST /api/orders (public). Item names and prices are
// snapshotted from the current menu; the client never dictates amounts.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order data")
		return
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerMobile = strings.TrimSpace(req.CustomerMobile)
	req.CustomerAddress = strings.TrimSpace(req.CustomerAddress)

	if req.CustomerName == "" || req.CustomerMobile == "" || req.CustomerAddress == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Customer name, mobile and address are required")
		return
	}
	if len(req.Items) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}

	ctx := r.Context()
	order := &models.Order{
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		CustomerAddress: req.CustomerAddress,
	}

	for _, line := range req.Items {
		if line.Quantity <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Item quantity must be positive")
			return
		}
		item, err := h.store.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, ErrMenuItemNotFound) {
				utils.RespondWithError(w, http.StatusBadRequest, "Unknown menu item: "+line.MenuItemID)
				return
			}
			log.Printf("place order: menu lookup: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
			return
		}
		if !item.IsAvailable {
			utils.RespondWithError(w, http.StatusBadRequest, "Item not available: "+item.Name)
			return
		}

		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: item.MenuID,
			Name:       item.Name,
			Quantity:   line.Quantity,
			Price:      item.Price,
		})
		order.TotalAmount += item.Price * float64(line.Quantity)
	}

	created, err := h.store.CreateOrder(ctx, order)
	if err != nil {
		log.Printf("place order: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	notify.Emit(ctx, notify.Event{Type: notify.EventNewOrder, Data: created})

	utils.RespondWithJSON(w, http.StatusOK, created)
}

// ListOrders handles GET /api/admin/orders with an optional ?status filter.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status := r.URL.Query().Get("status")

	var (
		list []models.Order
		err  error
	)
	if status != "" {
		list, err = h.store.GetOrdersByStatus(r.Context(), status)
	} else {
		list, err = h.store.GetOrders(r.Context())
	}
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid order status")
			return
		}
		log.Printf("list orders: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GetOrder handles GET /api/admin/orders/:id and the public tracking
// endpoint GET /api/orders/:id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.store.GetOrder(r.Context(), ps.ByName("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Printf("get order: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/admin/orders/:id/status. Unknown literals
// get 400, unknown ids 404, and backward/skip transitions 409.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !ValidStatus(body.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), ps.ByName("id"), body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrInvalidTransition):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("update order status: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	notify.Emit(r.Context(), notify.Event{Type: notify.EventOrderStatusUpdated, Data: order})

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// GetStats handles GET /api/admin/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		log.Printf("order stats: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}
