package domain

import "time"

// ReportType identifies persisted report flavors.
type ReportType string

const (
	ReportTypeStoreSummary ReportType = "store_summary"
	ReportTypeFinancial    ReportType = "financial"
	ReportTypeTechnicians  ReportType = "technicians"
)

// Report is a generated report persisted for later retrieval. Data is the
// serialized payload; listings leave it empty and only GetByID loads it.
type Report struct {
	ID          string
	Type        ReportType
	StoreID     *string
	ReportDate  time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
	Data        []byte
	Format      string
	CreatedAt   time.Time

	// Joined display field, populated by list/get queries.
	StoreName string
}

// StoreReport is the per-store summary payload.
type StoreReport struct {
	StoreInfo            StoreReportInfo      `json:"storeInfo"`
	Period               ReportPeriod         `json:"period"`
	Summary              StoreReportSummary   `json:"summary"`
	StatusBreakdown      map[string]int       `json:"statusBreakdown"`
	ServiceTypeBreakdown map[string]int       `json:"serviceTypeBreakdown"`
	Services             []StoreReportService `json:"services"`
}

// StoreReportInfo identifies the reported store.
type StoreReportInfo struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	Region    string `json:"region"`
}

// ReportPeriod is the inclusive date range a report covers.
type ReportPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// StoreReportSummary aggregates the store's services over the period.
type StoreReportSummary struct {
	TotalServices     int     `json:"totalServices"`
	TotalCost         float64 `json:"totalCost"`
	UniqueMachines    int     `json:"uniqueMachines"`
	UniqueTechnicians int     `json:"uniqueTechnicians"`
	AverageCost       float64 `json:"averageCost"`
}

// StoreReportService is a single line item in a store report.
type StoreReportService struct {
	ID          string    `json:"id"`
	MachineCode string    `json:"machineCode"`
	MachineType string    `json:"machineType"`
	ServiceType string    `json:"serviceType"`
	Technician  string    `json:"technician"`
	ServiceDate time.Time `json:"serviceDate"`
	Cost        float64   `json:"cost"`
	Status      string    `json:"status"`
}

// FinancialReport aggregates costs per store plus a chain-wide summary.
type FinancialReport struct {
	Period  ReportPeriod           `json:"period"`
	Stores  []StoreFinancialRow    `json:"stores"`
	Summary FinancialReportSummary `json:"summary"`
}

// StoreFinancialRow is the per-store aggregate line.
type StoreFinancialRow struct {
	StoreID          string  `json:"storeId"`
	StoreName        string  `json:"storeName"`
	Region           string  `json:"region"`
	TotalServices    int     `json:"totalServices"`
	TotalCost        float64 `json:"totalCost"`
	AverageCost      float64 `json:"averageCost"`
	MinCost          float64 `json:"minCost"`
	MaxCost          float64 `json:"maxCost"`
	TechniciansUsed  int     `json:"techniciansUsed"`
	MachinesServiced int     `json:"machinesServiced"`
}

// FinancialReportSummary totals the chain over the period.
type FinancialReportSummary struct {
	TotalStores           int     `json:"totalStores"`
	TotalServices         int     `json:"totalServices"`
	TotalCost             float64 `json:"totalCost"`
	AverageCostPerService float64 `json:"averageCostPerService"`
}

// TechnicianReport ranks technicians by activity over the period. Store
// callers only see work done in their own store.
type TechnicianReport struct {
	Period      ReportPeriod               `json:"period"`
	Technicians []TechnicianPerformanceRow `json:"technicians"`
	Summary     TechnicianReportSummary    `json:"summary"`
}

// TechnicianPerformanceRow is the per-technician aggregate line.
type TechnicianPerformanceRow struct {
	TechnicianID      int64      `json:"id"`
	Name              string     `json:"name"`
	Company           string     `json:"company,omitempty"`
	TotalServices     int        `json:"totalServices"`
	TotalCost         float64    `json:"totalCost"`
	MachinesServiced  int        `json:"machinesServiced"`
	StoresServed      int        `json:"storesServed"`
	LastServiceDate   *time.Time `json:"lastServiceDate,omitempty"`
	AverageDuration   float64    `json:"averageDuration"`
	CompletedServices int        `json:"completedServices"`
}

// TechnicianReportSummary totals the roster over the period.
type TechnicianReportSummary struct {
	TotalTechnicians int     `json:"totalTechnicians"`
	TotalServices    int     `json:"totalServices"`
	TotalCost        float64 `json:"totalCost"`
}
