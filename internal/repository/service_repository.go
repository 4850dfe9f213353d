package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// ServiceFilter narrows service record listings. A zero value lists
// everything; the service layer forces StoreID for store-scoped callers.
// MachineCodeLike is a case-insensitive substring match, OnDate matches the
// service date's calendar day; both exist for the search endpoint.
type ServiceFilter struct {
	StoreID         string
	Status          domain.ServiceStatus
	MachineCode     string
	MachineCodeLike string
	OnDate          *time.Time
	From            *time.Time
	To              *time.Time
	Limit           int
}

// ServiceRepository defines persistence access for maintenance records.
type ServiceRepository interface {
	Create(ctx context.Context, record *domain.ServiceRecord) error
	Update(ctx context.Context, record *domain.ServiceRecord) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRecord, error)
	List(ctx context.Context, filter ServiceFilter) ([]domain.ServiceRecord, error)
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository returns a Postgres-backed implementation.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

func (r *serviceRepository) Create(ctx context.Context, record *domain.ServiceRecord) error {
	const query = `
        INSERT INTO services (
            machine_code, machine_type, store_id, location, service_type_id,
            technician_id, service_date, description, cost, status, notes,
            estimated_duration_hours, actual_duration_hours, parts_used, warranty_until
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING service_id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		record.MachineCode,
		record.MachineType,
		record.StoreID,
		record.Location,
		record.ServiceTypeID,
		record.TechnicianID,
		record.ServiceDate,
		record.Description,
		record.Cost,
		record.Status,
		record.Notes,
		record.EstimatedDuration,
		record.ActualDuration,
		record.PartsUsed,
		record.WarrantyUntil,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, record *domain.ServiceRecord) error {
	const query = `
        UPDATE services SET
            machine_code=$1, machine_type=$2, store_id=$3, location=$4,
            service_type_id=$5, technician_id=$6, service_date=$7, description=$8,
            cost=$9, status=$10, notes=$11, estimated_duration_hours=$12,
            actual_duration_hours=$13, parts_used=$14, warranty_until=$15,
            updated_at=NOW()
        WHERE service_id=$16`

	cmd, err := r.pool.Exec(ctx, query,
		record.MachineCode,
		record.MachineType,
		record.StoreID,
		record.Location,
		record.ServiceTypeID,
		record.TechnicianID,
		record.ServiceDate,
		record.Description,
		record.Cost,
		record.Status,
		record.Notes,
		record.EstimatedDuration,
		record.ActualDuration,
		record.PartsUsed,
		record.WarrantyUntil,
		record.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM services WHERE service_id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const serviceSelect = `
    SELECT s.service_id, s.machine_code, s.machine_type, s.store_id, s.location,
           s.service_type_id, s.technician_id, s.service_date, s.description,
           s.cost, s.status, s.notes, s.estimated_duration_hours,
           s.actual_duration_hours, s.parts_used, s.warranty_until,
           s.created_at, s.updated_at, st.service_name, t.technician_name
    FROM services s
    JOIN service_types st ON s.service_type_id = st.service_type_id
    JOIN technicians t ON s.technician_id = t.technician_id`

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRecord, error) {
	rows, err := r.pool.Query(ctx, serviceSelect+` WHERE s.service_id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	record, err := scanService(rows)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *serviceRepository) List(ctx context.Context, filter ServiceFilter) ([]domain.ServiceRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.StoreID != "" {
		add("s.store_id=$%d", filter.StoreID)
	}
	if filter.Status != "" {
		add("s.status=$%d", filter.Status)
	}
	if filter.MachineCode != "" {
		add("s.machine_code=$%d", filter.MachineCode)
	}
	if filter.MachineCodeLike != "" {
		add("s.machine_code ILIKE $%d", "%"+filter.MachineCodeLike+"%")
	}
	if filter.OnDate != nil {
		add("DATE(s.service_date)=$%d", filter.OnDate.Format("2006-01-02"))
	}
	if filter.From != nil {
		add("s.service_date>=$%d", *filter.From)
	}
	if filter.To != nil {
		add("s.service_date<=$%d", *filter.To)
	}

	query := serviceSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.service_date DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ServiceRecord
	for rows.Next() {
		record, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanService(rows pgx.Rows) (*domain.ServiceRecord, error) {
	var record domain.ServiceRecord
	if err := rows.Scan(
		&record.ID,
		&record.MachineCode,
		&record.MachineType,
		&record.StoreID,
		&record.Location,
		&record.ServiceTypeID,
		&record.TechnicianID,
		&record.ServiceDate,
		&record.Description,
		&record.Cost,
		&record.Status,
		&record.Notes,
		&record.EstimatedDuration,
		&record.ActualDuration,
		&record.PartsUsed,
		&record.WarrantyUntil,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.ServiceTypeName,
		&record.TechnicianName,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
