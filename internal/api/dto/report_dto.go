package dto

import (
	"encoding/json"
	"time"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// StoreReportRequest payload for per-store summaries.
type StoreReportRequest struct {
	StoreID   string `json:"storeId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FinancialReportRequest payload for chain rollups. StoreID is optional for
// admins (empty means all stores) and ignored-if-own for store accounts.
type FinancialReportRequest struct {
	StoreID   string `json:"storeId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// TechnicianReportRequest payload for the technician performance rollup.
type TechnicianReportRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ReportView is a saved report as returned by the listing and get
// endpoints. Data is only present on get.
type ReportView struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	StoreName   string          `json:"storeName,omitempty"`
	ReportDate  time.Time       `json:"reportDate"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Format      string          `json:"format"`
	CreatedAt   time.Time       `json:"createdAt"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// NewReportView maps a persisted report to its response shape.
func NewReportView(report *domain.Report) ReportView {
	return ReportView{
		ID:          report.ID,
		Type:        string(report.Type),
		StoreName:   report.StoreName,
		ReportDate:  report.ReportDate,
		PeriodStart: report.PeriodStart,
		PeriodEnd:   report.PeriodEnd,
		Format:      report.Format,
		CreatedAt:   report.CreatedAt,
		Data:        json.RawMessage(report.Data),
	}
}

// NewReportViews maps a slice of reports, dropping payloads.
func NewReportViews(reports []domain.Report) []ReportView {
	views := make([]ReportView, 0, len(reports))
	for i := range reports {
		view := NewReportView(&reports[i])
		view.Data = nil
		views = append(views, view)
	}
	return views
}
