package model

import "time"

// EventType names a catalog change broadcast to connected clients.
type EventType string

const (
	EventProductAdded       EventType = "product_added"
	EventProductUpdated     EventType = "product_updated"
	EventProductDeleted     EventType = "product_deleted"
	EventProductsMerged     EventType = "products_merged"
	EventStockUpdated       EventType = "stock_updated"
	EventStoreAdded         EventType = "store_added"
	EventStoreProductsAdded EventType = "store_products_added"
	EventStoreUpdated       EventType = "store_updated"
	EventChangeRequested    EventType = "change_requested"
	EventChangeApproved     EventType = "change_approved"
	EventChangeRejected     EventType = "change_rejected"
	EventOrderSaved         EventType = "po_saved"
	EventOrderDeleted       EventType = "po_deleted"
	EventUserRegistered     EventType = "user_registered"
	EventUserApproved       EventType = "user_approved"
)

type Event struct {
	Type    EventType `json:"type"`
	Actor   string    `json:"actor"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
