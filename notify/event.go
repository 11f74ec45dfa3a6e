package notify

// Event types pushed to admin clients.
const (
	EventNewOrder           = "NEW_ORDER"
	EventOrderStatusUpdated = "ORDER_STATUS_UPDATED"
	EventMenuItemAdded      = "MENU_ITEM_ADDED"
	EventConnectionStatus   = "CONNECTION_STATUS"
)

// Event is the wire envelope written to every admin socket.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
