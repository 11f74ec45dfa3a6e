package orders

import (
	"errors"

	"vanita/models"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrMenuItemNotFound  = errors.New("menu item not found")
)

// transitions is the allowed forward path; completed is terminal.
var transitions = map[string]string{
	models.StatusPreparing: models.StatusReady,
	models.StatusReady:     models.StatusCompleted,
}

func ValidStatus(status string) bool {
	switch status {
	case models.StatusPreparing, models.StatusReady, models.StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to the
// next. Repeating the current status is treated as a no-op and allowed.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	return transitions[from] == to
}
