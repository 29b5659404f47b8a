package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Supplier represents a vendor materials are purchased from.
type Supplier struct {
	bun.BaseModel `bun:"table:suppliers"`

	ID            string    `bun:",pk"`
	Name          string    `bun:"name"`
	ContactPerson *string   `bun:"contact_person,nullzero"`
	Phone         *string   `bun:"phone,nullzero"`
	Email         *string   `bun:"email,nullzero"`
	Address       *string   `bun:"address,nullzero"`
	Rating        *int      `bun:"rating,nullzero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"`
}
