package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeType enum constants
type ChangeType string

const (
	ChangeAddProduct ChangeType = "add_product"
)

// ChangeStatus of a queued request. Approving or rejecting removes the
// request from the queue, so only the pending state is ever stored.
type ChangeStatus string

const ChangePending ChangeStatus = "pending"

// ChangeRequest is a catalog mutation proposed by a non-admin and held
// until an administrator approves or rejects it. Exactly one payload
// field is set, selected by Type.
type ChangeRequest struct {
	ID          string        `json:"id"`
	Type        ChangeType    `json:"type"`
	AddProduct  *ProductInput `json:"add_product,omitempty"`
	RequestedBy string        `json:"requested_by"`
	CreatedAt   time.Time     `json:"created_at"`
	Status      ChangeStatus  `json:"status"`
}

func NewAddProductRequest(in ProductInput, requestedBy string, now time.Time) ChangeRequest {
	payload := in
	payload.Stores = append([]string(nil), in.Stores...)
	return ChangeRequest{
		ID:          uuid.New().String(),
		Type:        ChangeAddProduct,
		AddProduct:  &payload,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		Status:      ChangePending,
	}
}

// Summary is a one-line description for notifications.
func (r ChangeRequest) Summary() string {
	switch r.Type {
	case ChangeAddProduct:
		if r.AddProduct != nil {
			return fmt.Sprintf("add product '%s' to %d store(s)", r.AddProduct.Name, len(r.AddProduct.Stores))
		}
	}
	return string(r.Type)
}
