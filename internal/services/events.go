// internal/services/events.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Product lifecycle event types.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductApproved = "product.approved"
	EventProductDeleted  = "product.deleted"
)

// EventPublisher delivers lifecycle events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uuid.UUID `json:"productId"`
	SKU        string    `json:"sku,omitempty"`
	IsApproved bool      `json:"isApproved"`
	OccurredAt time.Time `json:"occurredAt"`
}

// DecodeProductEvent reads a published event body. eventType is the message
// type header and wins over the type carried in the body.
func DecodeProductEvent(eventType string, body []byte) (*ProductEvent, error) {
	var event ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid product event: %w", err)
	}
	if eventType != "" {
		event.Type = eventType
	}

	switch event.Type {
	case EventProductCreated, EventProductUpdated, EventProductApproved, EventProductDeleted:
	default:
		return nil, fmt.Errorf("unknown product event type %q", event.Type)
	}
	if event.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%s event without product id", event.Type)
	}
	return &event, nil
}
