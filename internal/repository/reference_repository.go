package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// ReferenceRepository serves the small read-only catalogs backing form
// dropdowns: service types and technicians.
type ReferenceRepository interface {
	ListServiceTypes(ctx context.Context) ([]domain.ServiceType, error)
	ListTechnicians(ctx context.Context) ([]domain.Technician, error)
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository returns a Postgres-backed implementation.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) ListServiceTypes(ctx context.Context) ([]domain.ServiceType, error) {
	const query = `
        SELECT service_type_id, service_name, description, is_active
        FROM service_types WHERE is_active=true ORDER BY service_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.ServiceType
	for rows.Next() {
		var st domain.ServiceType
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.IsActive); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

func (r *referenceRepository) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	const query = `
        SELECT technician_id, technician_name, company, phone, is_active
        FROM technicians WHERE is_active=true ORDER BY technician_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var technicians []domain.Technician
	for rows.Next() {
		var t domain.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.Company, &t.Phone, &t.IsActive); err != nil {
			return nil, err
		}
		technicians = append(technicians, t)
	}
	return technicians, rows.Err()
}
