package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ProjectStatus enumerates the lifecycle of a construction project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// Project represents a construction project owning purchase orders and materials.
// Budget is the approved-spend ceiling; a NULL budget means no ceiling was
// configured for the project.
type Project struct {
	bun.BaseModel `bun:"table:projects"`

	ID               string              `bun:",pk"`
	Name             string              `bun:"name"`
	Location         string              `bun:"location"`
	ClientName       *string             `bun:"client_name,nullzero"`
	StartDate        time.Time           `bun:"start_date"`
	EndDate          *time.Time          `bun:"end_date,nullzero"`
	Budget           decimal.NullDecimal `bun:"budget"`
	Status           ProjectStatus       `bun:"status"`
	ProjectManagerID *string             `bun:"project_manager_id,nullzero"`
	CreatedAt        time.Time           `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time           `bun:"updated_at,nullzero"`
}
