package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// POStatus enumerates the purchase order lifecycle. Orders are created in
// draft, advanced to pending_approval, and approved (or cancelled) from there.
// Received and cancelled are terminal.
type POStatus string

const (
	POStatusDraft           POStatus = "draft"
	POStatusPendingApproval POStatus = "pending_approval"
	POStatusApproved        POStatus = "approved"
	POStatusOrdered         POStatus = "ordered"
	POStatusReceived        POStatus = "received"
	POStatusCancelled       POStatus = "cancelled"
)

// Valid reports whether s is a known purchase order status.
func (s POStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusPendingApproval, POStatusApproved,
		POStatusOrdered, POStatusReceived, POStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s POStatus) Terminal() bool {
	return s == POStatusReceived || s == POStatusCancelled
}

// CanTransitionTo reports whether the s -> next transition is part of the
// order lifecycle. Any non-terminal status may be cancelled.
func (s POStatus) CanTransitionTo(next POStatus) bool {
	if next == POStatusCancelled {
		return !s.Terminal()
	}
	switch s {
	case POStatusDraft:
		return next == POStatusPendingApproval
	case POStatusPendingApproval:
		return next == POStatusApproved
	case POStatusApproved:
		return next == POStatusOrdered
	case POStatusOrdered:
		return next == POStatusReceived
	}
	return false
}

// PurchaseOrder represents a commitment to buy materials from a supplier for
// a project. ApprovedBy and ApprovedAt are set if and only if the status is
// approved (or a later state reached through approval).
type PurchaseOrder struct {
	bun.BaseModel `bun:"table:purchase_orders"`

	ID               string          `bun:",pk"`
	PONumber         string          `bun:"po_number"`
	ProjectID        string          `bun:"project_id"`
	SupplierID       string          `bun:"supplier_id"`
	OrderDate        time.Time       `bun:"order_date"`
	ExpectedDelivery *time.Time      `bun:"expected_delivery,nullzero"`
	TotalAmount      decimal.Decimal `bun:"total_amount"`
	Status           POStatus        `bun:"status"`
	ApprovedBy       *string         `bun:"approved_by,nullzero"`
	ApprovedAt       *time.Time      `bun:"approved_at,nullzero"`
	Notes            *string         `bun:"notes,nullzero"`
	CreatedBy        *string         `bun:"created_by,nullzero"`
	CreatedAt        time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time       `bun:"updated_at,nullzero"`

	Project  *Project  `bun:"rel:belongs-to,join:project_id=id"`
	Supplier *Supplier `bun:"rel:belongs-to,join:supplier_id=id"`
	Items    []*POItem `bun:"rel:has-many,join:id=po_id"`
}

// POItem is a single line of a purchase order. Subtotal is quantity times
// unit price; the parent order's TotalAmount is the sum of its items'
// subtotals, computed and written in the same transaction as the items.
type POItem struct {
	bun.BaseModel `bun:"table:po_items"`

	ID         string          `bun:",pk"`
	POID       string          `bun:"po_id"`
	MaterialID *string         `bun:"material_id,nullzero"`
	Quantity   decimal.Decimal `bun:"quantity"`
	UnitPrice  decimal.Decimal `bun:"unit_price"`
	Subtotal   decimal.Decimal `bun:"subtotal"`
	CreatedAt  time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
