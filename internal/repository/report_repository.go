package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// FinancialAggregate is one row of the per-store cost rollup query.
type FinancialAggregate struct {
	StoreID          string
	StoreName        string
	Region           string
	TotalServices    int
	TotalCost        float64
	AverageCost      float64
	MinCost          float64
	MaxCost          float64
	TechniciansUsed  int
	MachinesServiced int
}

// TechnicianAggregate is one row of the per-technician performance query.
type TechnicianAggregate struct {
	TechnicianID      int64
	Name              string
	Company           string
	TotalServices     int
	TotalCost         float64
	MachinesServiced  int
	StoresServed      int
	LastServiceDate   *time.Time
	AverageDuration   float64
	CompletedServices int
}

// ReportRepository persists generated reports and runs the aggregate queries
// feeding them. List and GetByID take an optional owning store; an empty
// storeID means no store restriction.
type ReportRepository interface {
	Save(ctx context.Context, report *domain.Report) error
	List(ctx context.Context, storeID string, limit int) ([]domain.Report, error)
	GetByID(ctx context.Context, id, storeID string) (*domain.Report, error)
	FinancialAggregates(ctx context.Context, storeID string, from, to time.Time) ([]FinancialAggregate, error)
	TechnicianAggregates(ctx context.Context, storeID string, from, to time.Time) ([]TechnicianAggregate, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a Postgres-backed implementation.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Save(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (
            report_id, report_type, store_id, report_date,
            report_period_start, report_period_end, report_data, report_format
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		report.ID,
		report.Type,
		report.StoreID,
		report.ReportDate,
		report.PeriodStart,
		report.PeriodEnd,
		report.Data,
		report.Format,
	).Scan(&report.CreatedAt)
}

const reportSelect = `
    SELECT r.report_id, r.report_type, r.store_id, r.report_date,
           r.report_period_start, r.report_period_end, r.report_format,
           r.created_at, COALESCE(st.store_name, '')
    FROM reports r
    LEFT JOIN stores st ON r.store_id = st.store_id`

func (r *reportRepository) List(ctx context.Context, storeID string, limit int) ([]domain.Report, error) {
	query := reportSelect
	args := []any{}
	if storeID != "" {
		query += ` WHERE r.store_id = $1`
		args = append(args, storeID)
	}
	query += fmt.Sprintf(` ORDER BY r.created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.Type,
			&report.StoreID,
			&report.ReportDate,
			&report.PeriodStart,
			&report.PeriodEnd,
			&report.Format,
			&report.CreatedAt,
			&report.StoreName,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *reportRepository) GetByID(ctx context.Context, id, storeID string) (*domain.Report, error) {
	query := `
    SELECT r.report_id, r.report_type, r.store_id, r.report_date,
           r.report_period_start, r.report_period_end, r.report_data,
           r.report_format, r.created_at, COALESCE(st.store_name, '')
    FROM reports r
    LEFT JOIN stores st ON r.store_id = st.store_id
    WHERE r.report_id = $1`
	args := []any{id}
	if storeID != "" {
		query += ` AND r.store_id = $2`
		args = append(args, storeID)
	}

	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&report.ID,
		&report.Type,
		&report.StoreID,
		&report.ReportDate,
		&report.PeriodStart,
		&report.PeriodEnd,
		&report.Data,
		&report.Format,
		&report.CreatedAt,
		&report.StoreName,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

const financialSelect = `
    SELECT s.store_id, s.store_name, s.region,
           COUNT(sv.service_id) AS total_services,
           COALESCE(SUM(sv.cost), 0) AS total_cost,
           COALESCE(AVG(sv.cost), 0) AS average_cost,
           COALESCE(MIN(sv.cost), 0) AS min_cost,
           COALESCE(MAX(sv.cost), 0) AS max_cost,
           COUNT(DISTINCT sv.technician_id) AS technicians_used,
           COUNT(DISTINCT sv.machine_code) AS machines_serviced
    FROM stores s
    LEFT JOIN services sv
        ON s.store_id = sv.store_id AND sv.service_date BETWEEN $1 AND $2`

func (r *reportRepository) FinancialAggregates(ctx context.Context, storeID string, from, to time.Time) ([]FinancialAggregate, error) {
	query := financialSelect
	args := []any{from, to}
	if storeID != "" {
		query += ` WHERE s.store_id = $3`
		args = append(args, storeID)
	}
	query += `
    GROUP BY s.store_id, s.store_name, s.region
    ORDER BY total_cost DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []FinancialAggregate
	for rows.Next() {
		var agg FinancialAggregate
		if err := rows.Scan(
			&agg.StoreID,
			&agg.StoreName,
			&agg.Region,
			&agg.TotalServices,
			&agg.TotalCost,
			&agg.AverageCost,
			&agg.MinCost,
			&agg.MaxCost,
			&agg.TechniciansUsed,
			&agg.MachinesServiced,
		); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

const technicianSelect = `
    SELECT t.technician_id, t.technician_name, t.company,
           COUNT(sv.service_id) AS total_services,
           COALESCE(SUM(sv.cost), 0) AS total_cost,
           COUNT(DISTINCT sv.machine_code) AS machines_serviced,
           COUNT(DISTINCT sv.store_id) AS stores_served,
           MAX(sv.service_date) AS last_service_date,
           COALESCE(AVG(sv.actual_duration_hours), 0) AS average_duration,
           COUNT(*) FILTER (WHERE sv.status = 'completed') AS completed_services
    FROM technicians t
    LEFT JOIN services sv
        ON t.technician_id = sv.technician_id AND sv.service_date BETWEEN $1 AND $2`

func (r *reportRepository) TechnicianAggregates(ctx context.Context, storeID string, from, to time.Time) ([]TechnicianAggregate, error) {
	query := technicianSelect
	args := []any{from, to}
	if storeID != "" {
		query += ` AND sv.store_id = $3`
		args = append(args, storeID)
	}
	query += `
    GROUP BY t.technician_id, t.technician_name, t.company
    ORDER BY total_services DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []TechnicianAggregate
	for rows.Next() {
		var agg TechnicianAggregate
		if err := rows.Scan(
			&agg.TechnicianID,
			&agg.Name,
			&agg.Company,
			&agg.TotalServices,
			&agg.TotalCost,
			&agg.MachinesServiced,
			&agg.StoresServed,
			&agg.LastServiceDate,
			&agg.AverageDuration,
			&agg.CompletedServices,
		); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}
