package event

import (
	"time"

	"github.com/google/uuid"
)

const ProductEventsQueue = "product_events"

// Event types published to the product_events queue
const (
	EventProductCreated       = "product.created"
	EventProductFinalized     = "product.finalized"
	EventProductStatusChanged = "product.status_changed"
	EventProductDeleted       = "product.deleted"
)

// ProductEventModel is the message body for product lifecycle events
type ProductEventModel struct {
	EventType   string    `json:"event_type"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Status      string    `json:"status"`
	Source      string    `json:"source"`
	OccurredAt  time.Time `json:"occurred_at"`
}
