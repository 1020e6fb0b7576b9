package enums

import (
	"fmt"
	"strings"
)

// PurchaseOrderStatus tracks the lifecycle of a purchase order.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "APPROVED"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusPending,
	PurchaseOrderStatusApproved,
	PurchaseOrderStatusReceived,
	PurchaseOrderStatusCancelled,
}

var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderStatusPending: {
		PurchaseOrderStatusApproved,
		PurchaseOrderStatusReceived,
		PurchaseOrderStatusCancelled,
	},
	PurchaseOrderStatusApproved: {
		PurchaseOrderStatusReceived,
		PurchaseOrderStatusCancelled,
	},
}

func (s PurchaseOrderStatus) String() string {
	return string(s)
}

func (s PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s PurchaseOrderStatus) IsTerminal() bool {
	_, ok := purchaseOrderTransitions[s]
	return !ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, candidate := range purchaseOrderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPurchaseOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase order status %q", value)
}
