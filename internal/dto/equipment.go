package dto

import "time"

// EquipmentResponse represents a fleet item as exposed via transport layers.
type EquipmentResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	CurrentProjectName  string     `json:"current_project_name,omitempty"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date,omitempty"`
	Location            *string    `json:"location,omitempty"`
}

// EquipmentStatusSummaryResponse reports fleet counts by status.
type EquipmentStatusSummaryResponse struct {
	ByStatus       map[string]int `json:"by_status"`
	MaintenanceDue int            `json:"maintenance_due"`
}
