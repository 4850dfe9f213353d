package domain

import "time"

// ServiceStatus enumerates lifecycle states for a maintenance record.
type ServiceStatus string

const (
	ServiceStatusCompleted  ServiceStatus = "completed"
	ServiceStatusPending    ServiceStatus = "pending"
	ServiceStatusInProgress ServiceStatus = "in_progress"
	ServiceStatusCancelled  ServiceStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceStatusCompleted, ServiceStatusPending, ServiceStatusInProgress, ServiceStatusCancelled:
		return true
	}
	return false
}

// ServiceRecord is one maintenance intervention on a machine at a store.
type ServiceRecord struct {
	ID                string
	MachineCode       string
	MachineType       string
	StoreID           string
	Location          string
	ServiceTypeID     string
	TechnicianID      int64
	ServiceDate       time.Time
	Description       string
	Cost              float64
	Status            ServiceStatus
	Notes             string
	EstimatedDuration *int
	ActualDuration    *int
	PartsUsed         string
	WarrantyUntil     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined display fields, populated by list/report queries.
	ServiceTypeName string
	TechnicianName  string
}

// ServiceType is a catalog entry (preventive, corrective, inspection, ...).
type ServiceType struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
}

// Technician is a registered maintenance provider.
type Technician struct {
	ID       int64
	Name     string
	Company  string
	Phone    string
	IsActive bool
}
