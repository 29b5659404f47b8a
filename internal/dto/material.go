package dto

import "github.com/shopspring/decimal"

// LowStockMaterialResponse is a material at or below its reorder level,
// flattened with the project and supplier names needed to act on it.
type LowStockMaterialResponse struct {
	MaterialID     string           `json:"material_id"`
	Name           string           `json:"name"`
	Unit           string           `json:"unit"`
	QuantityOnHand decimal.Decimal  `json:"quantity_on_hand"`
	ReorderLevel   decimal.Decimal  `json:"reorder_level"`
	ProjectID      *string          `json:"project_id,omitempty"`
	ProjectName    string           `json:"project_name,omitempty"`
	SupplierName   string           `json:"supplier_name,omitempty"`
	SupplierPhone  *string          `json:"supplier_phone,omitempty"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
}
