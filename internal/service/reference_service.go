package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/persistence"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

const (
	storeListCacheKey = "reference:stores"
	storeListCacheTTL = 10 * time.Minute
)

// ReferenceService serves the catalogs backing form dropdowns, with a
// read-through cache for the store list. The catalogs change rarely, so a
// stale window of minutes is fine.
type ReferenceService struct {
	stores    repository.StoreRepository
	reference repository.ReferenceRepository
	cache     *persistence.Redis
}

// NewReferenceService builds the service.
func NewReferenceService(stores repository.StoreRepository, reference repository.ReferenceRepository, cache *persistence.Redis) *ReferenceService {
	return &ReferenceService{stores: stores, reference: reference, cache: cache}
}

// ListStores returns all active stores.
func (s *ReferenceService) ListStores(ctx context.Context) ([]domain.Store, error) {
	if payload, err := s.cache.GetJSON(ctx, storeListCacheKey); err == nil {
		var cached []domain.Store
		if json.Unmarshal(payload, &cached) == nil {
			return cached, nil
		}
	}

	stores, err := s.stores.ListActive(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if payload, err := json.Marshal(stores); err == nil {
		s.cache.SetJSON(ctx, storeListCacheKey, payload, storeListCacheTTL)
	}
	return stores, nil
}

// ListServiceTypes returns the active service type catalog.
func (s *ReferenceService) ListServiceTypes(ctx context.Context) ([]domain.ServiceType, error) {
	types, err := s.reference.ListServiceTypes(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return types, nil
}

// ListTechnicians returns the active technician catalog.
func (s *ReferenceService) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	technicians, err := s.reference.ListTechnicians(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return technicians, nil
}
