package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Material represents a stocked construction material. A material is low on
// stock when QuantityOnHand <= ReorderLevel.
type Material struct {
	bun.BaseModel `bun:"table:materials"`

	ID             string              `bun:",pk"`
	ProjectID      *string             `bun:"project_id,nullzero"`
	Name           string              `bun:"name"`
	Unit           string              `bun:"unit"`
	QuantityOnHand decimal.Decimal     `bun:"quantity_on_hand"`
	ReorderLevel   decimal.Decimal     `bun:"reorder_level"`
	UnitCost       decimal.NullDecimal `bun:"unit_cost"`
	SupplierID     *string             `bun:"supplier_id,nullzero"`
	CreatedAt      time.Time           `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time           `bun:"updated_at,nullzero"`

	Project  *Project  `bun:"rel:belongs-to,join:project_id=id"`
	Supplier *Supplier `bun:"rel:belongs-to,join:supplier_id=id"`
}
