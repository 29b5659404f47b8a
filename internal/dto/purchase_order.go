package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderResponse represents a purchase order as exposed via transport
// layers.
type PurchaseOrderResponse struct {
	ID               string            `json:"id"`
	PONumber         string            `json:"po_number"`
	ProjectID        string            `json:"project_id"`
	SupplierID       string            `json:"supplier_id"`
	SupplierName     string            `json:"supplier_name,omitempty"`
	OrderDate        time.Time         `json:"order_date"`
	ExpectedDelivery *time.Time        `json:"expected_delivery,omitempty"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	Status           string            `json:"status"`
	ApprovedBy       *string           `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Items            []POItemResponse  `json:"items,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// POItemResponse is a purchase order line as exposed via transport layers.
type POItemResponse struct {
	ID         string          `json:"id"`
	MaterialID *string         `json:"material_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// ApprovalResponse carries the budget picture returned by a successful
// approval. Budget fields are omitted when the project has no ceiling
// configured and the unlimited policy is active.
type ApprovalResponse struct {
	POID           string           `json:"po_id"`
	PONumber       string           `json:"po_number"`
	Status         string           `json:"status"`
	ApprovedBy     string           `json:"approved_by"`
	ApprovedAt     time.Time        `json:"approved_at"`
	ProjectBudget  *decimal.Decimal `json:"project_budget,omitempty"`
	ProjectedTotal decimal.Decimal  `json:"projected_total"`
	Remaining      *decimal.Decimal `json:"remaining,omitempty"`
}
