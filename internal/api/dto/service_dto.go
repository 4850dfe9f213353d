package dto

import (
	"time"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// ServiceRequest payload for creating/updating a maintenance record.
type ServiceRequest struct {
	MachineCode       string     `json:"machineCode"`
	MachineType       string     `json:"machineType"`
	StoreID           string     `json:"storeId"`
	Location          string     `json:"location"`
	ServiceTypeID     string     `json:"serviceTypeId"`
	TechnicianID      int64      `json:"technicianId"`
	ServiceDate       time.Time  `json:"serviceDate"`
	Description       string     `json:"description"`
	Cost              float64    `json:"cost"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
	EstimatedDuration *int       `json:"estimatedDurationHours"`
	ActualDuration    *int       `json:"actualDurationHours"`
	PartsUsed         string     `json:"partsUsed"`
	WarrantyUntil     *time.Time `json:"warrantyUntil"`
}

// ToDomain maps the request onto a domain record.
func (r ServiceRequest) ToDomain() *domain.ServiceRecord {
	return &domain.ServiceRecord{
		MachineCode:       r.MachineCode,
		MachineType:       r.MachineType,
		StoreID:           r.StoreID,
		Location:          r.Location,
		ServiceTypeID:     r.ServiceTypeID,
		TechnicianID:      r.TechnicianID,
		ServiceDate:       r.ServiceDate,
		Description:       r.Description,
		Cost:              r.Cost,
		Status:            domain.ServiceStatus(r.Status),
		Notes:             r.Notes,
		EstimatedDuration: r.EstimatedDuration,
		ActualDuration:    r.ActualDuration,
		PartsUsed:         r.PartsUsed,
		WarrantyUntil:     r.WarrantyUntil,
	}
}

// ServiceView is the response shape for a maintenance record.
type ServiceView struct {
	ID                string     `json:"id"`
	MachineCode       string     `json:"machineCode"`
	MachineType       string     `json:"machineType"`
	StoreID           string     `json:"storeId"`
	Location          string     `json:"location"`
	ServiceTypeID     string     `json:"serviceTypeId"`
	ServiceTypeName   string     `json:"serviceTypeName,omitempty"`
	TechnicianID      int64      `json:"technicianId"`
	TechnicianName    string     `json:"technicianName,omitempty"`
	ServiceDate       time.Time  `json:"serviceDate"`
	Description       string     `json:"description"`
	Cost              float64    `json:"cost"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	EstimatedDuration *int       `json:"estimatedDurationHours,omitempty"`
	ActualDuration    *int       `json:"actualDurationHours,omitempty"`
	PartsUsed         string     `json:"partsUsed,omitempty"`
	WarrantyUntil     *time.Time `json:"warrantyUntil,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewServiceView maps a domain record to its response shape.
func NewServiceView(record *domain.ServiceRecord) ServiceView {
	return ServiceView{
		ID:                record.ID,
		MachineCode:       record.MachineCode,
		MachineType:       record.MachineType,
		StoreID:           record.StoreID,
		Location:          record.Location,
		ServiceTypeID:     record.ServiceTypeID,
		ServiceTypeName:   record.ServiceTypeName,
		TechnicianID:      record.TechnicianID,
		TechnicianName:    record.TechnicianName,
		ServiceDate:       record.ServiceDate,
		Description:       record.Description,
		Cost:              record.Cost,
		Status:            string(record.Status),
		Notes:             record.Notes,
		EstimatedDuration: record.EstimatedDuration,
		ActualDuration:    record.ActualDuration,
		PartsUsed:         record.PartsUsed,
		WarrantyUntil:     record.WarrantyUntil,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

// NewServiceViews maps a slice of records.
func NewServiceViews(records []domain.ServiceRecord) []ServiceView {
	views := make([]ServiceView, 0, len(records))
	for i := range records {
		views = append(views, NewServiceView(&records[i]))
	}
	return views
}
