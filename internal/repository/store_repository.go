package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// StoreRepository defines read access to the store catalog.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	ListActive(ctx context.Context) ([]domain.Store, error)
}

type storeRepository struct {
	pool *pgxpool.Pool
}

// NewStoreRepository returns a Postgres-backed implementation.
func NewStoreRepository(pool *pgxpool.Pool) StoreRepository {
	return &storeRepository{pool: pool}
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	const query = `
        SELECT store_id, store_name, region, is_active, created_at
        FROM stores WHERE store_id=$1 AND is_active=true`

	var store domain.Store
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&store.ID,
		&store.Name,
		&store.Region,
		&store.IsActive,
		&store.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) ListActive(ctx context.Context) ([]domain.Store, error) {
	const query = `
        SELECT store_id, store_name, region, is_active, created_at
        FROM stores WHERE is_active=true ORDER BY store_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(&store.ID, &store.Name, &store.Region, &store.IsActive, &store.CreatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}
