package model

// OrderStatus enumerates delivery order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAssigned  OrderStatus = "ASSIGNED"
	OrderStatusPickedUp  OrderStatus = "PICKED_UP"
	OrderStatusInTransit OrderStatus = "IN_TRANSIT"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// OrderSummary is the slice of an order returned by scan resolution and
// carried on realtime updates.
type OrderSummary struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"trackingNumber"`
	Status         OrderStatus `json:"status"`
	CustomerName   string      `json:"customerName"`
	Address        string      `json:"address"`
}
