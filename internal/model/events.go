package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventName identifies a realtime event on the wire.
type EventName string

const (
	// EventOrderUpdated carries an OrderUpdate payload.
	EventOrderUpdated EventName = "order.updated"
	// EventLocationUpdated carries a LocationUpdate payload.
	EventLocationUpdated EventName = "location.updated"
	// EventDeliveryVerified carries a DeliveryVerified payload.
	EventDeliveryVerified EventName = "delivery.verified"
	// EventAgentLocation is emitted by the agent to report its own position.
	EventAgentLocation EventName = "agent.location"
)

// OrderUpdate notifies subscribers that an order changed state.
type OrderUpdate struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
	AgentID string      `json:"agentId,omitempty"`
}

// LocationUpdate is a live position report for an order in transit.
type LocationUpdate struct {
	OrderID    string    `json:"orderId"`
	AgentID    string    `json:"agentId"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

// DeliveryVerified notifies subscribers that a delivery was confirmed.
type DeliveryVerified struct {
	OrderID    string             `json:"orderId"`
	Method     VerificationMethod `json:"method"`
	VerifiedAt time.Time          `json:"verifiedAt"`
}

// DecodeEventPayload maps a wire event name to its typed payload. The event
// set is closed: payloads are validated here, at the subscribe boundary, and
// unknown events are rejected with ErrUnknownEvent.
func DecodeEventPayload(name EventName, data json.RawMessage) (any, error) {
	switch name {
	case EventOrderUpdated:
		var p OrderUpdate
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", name, err)
		}
		return p, nil
	case EventLocationUpdated:
		var p LocationUpdate
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", name, err)
		}
		return p, nil
	case EventDeliveryVerified:
		var p DeliveryVerified
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", name, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
}
