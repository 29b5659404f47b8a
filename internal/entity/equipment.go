package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// EquipmentStatus enumerates where a piece of equipment currently is.
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentDeployed    EquipmentStatus = "deployed"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentRetired     EquipmentStatus = "retired"
)

// Equipment represents a tracked machine or tool. Maintenance is due when
// NextMaintenanceDate is on or before the reference date.
type Equipment struct {
	bun.BaseModel `bun:"table:equipment"`

	ID                      string          `bun:",pk"`
	Name                    string          `bun:"name"`
	Type                    string          `bun:"type"`
	SerialNumber            *string         `bun:"serial_number,nullzero"`
	PurchaseDate            *time.Time      `bun:"purchase_date,nullzero"`
	Status                  EquipmentStatus `bun:"status"`
	CurrentProjectID        *string         `bun:"current_project_id,nullzero"`
	LastMaintenanceDate     *time.Time      `bun:"last_maintenance_date,nullzero"`
	NextMaintenanceDate     *time.Time      `bun:"next_maintenance_date,nullzero"`
	MaintenanceIntervalDays int             `bun:"maintenance_interval_days"`
	Location                *string         `bun:"location,nullzero"`
	CreatedAt               time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt               time.Time       `bun:"updated_at,nullzero"`

	CurrentProject *Project `bun:"rel:belongs-to,join:current_project_id=id"`
}
