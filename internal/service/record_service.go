package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/events"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

// RecordService owns maintenance record CRUD. Every operation authorizes the
// caller against the record's owning store before touching business logic.
type RecordService struct {
	records    repository.ServiceRepository
	stores     repository.StoreRepository
	dispatcher events.Dispatcher
	cache      CacheInvalidator
}

// CacheInvalidator drops cached report payloads for a store after a write.
type CacheInvalidator interface {
	InvalidateStore(ctx context.Context, storeID string)
}

// NewRecordService builds the service.
func NewRecordService(records repository.ServiceRepository, stores repository.StoreRepository, dispatcher events.Dispatcher, cache CacheInvalidator) *RecordService {
	return &RecordService{records: records, stores: stores, dispatcher: dispatcher, cache: cache}
}

// List returns records visible to the identity. Store-scoped callers are
// always pinned to their own store regardless of the requested filter.
func (s *RecordService) List(ctx context.Context, identity domain.Identity, filter repository.ServiceFilter) ([]domain.ServiceRecord, error) {
	if storeID, ok := identity.StoreAffiliation(); ok {
		if filter.StoreID != "" && filter.StoreID != storeID {
			return nil, apperrors.NewForbidden("access to this store denied")
		}
		filter.StoreID = storeID
	}
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return records, nil
}

// MachineHistory lists all interventions for one machine, store-scoped for
// store callers.
func (s *RecordService) MachineHistory(ctx context.Context, identity domain.Identity, machineCode string) ([]domain.ServiceRecord, error) {
	if machineCode == "" {
		return nil, apperrors.NewValidationError("machine code is required", nil)
	}
	return s.List(ctx, identity, repository.ServiceFilter{MachineCode: machineCode})
}

// Search finds records by machine code fragment and/or service day. At
// least one criterion is required; store callers only search their own store.
func (s *RecordService) Search(ctx context.Context, identity domain.Identity, machineCode string, serviceDate *time.Time) ([]domain.ServiceRecord, error) {
	if machineCode == "" && serviceDate == nil {
		return nil, apperrors.NewValidationError("at least one search criterion is required", map[string]any{
			"machineCode": "machine code fragment",
			"serviceDate": "service day",
		})
	}
	return s.List(ctx, identity, repository.ServiceFilter{MachineCodeLike: machineCode, OnDate: serviceDate})
}

// Get fetches a single record. A record outside the caller's store reads as
// not found rather than forbidden, so record ids cannot be probed.
func (s *RecordService) Get(ctx context.Context, identity domain.Identity, id string) (*domain.ServiceRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if auth.Authorize(identity, record.StoreID) != auth.Allow {
		return nil, apperrors.NewNotFound("service", nil)
	}
	return record, nil
}

// Create registers a new maintenance record. The owning store must be named
// explicitly; there is no default store.
func (s *RecordService) Create(ctx context.Context, identity domain.Identity, record *domain.ServiceRecord) error {
	if err := s.validate(record); err != nil {
		return err
	}
	if auth.Authorize(identity, record.StoreID) != auth.Allow {
		return apperrors.NewForbidden("access to this store denied")
	}
	if _, err := s.stores.GetByID(ctx, record.StoreID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown store", map[string]any{"storeId": record.StoreID})
		}
		return apperrors.NewInternalError(err)
	}
	if record.Status == "" {
		record.Status = domain.ServiceStatusCompleted
	}
	if err := s.records.Create(ctx, record); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.afterWrite(ctx, identity, events.EventServiceCreated, record)
	return nil
}

// Update replaces an existing record. Both the record's current store and
// the requested one must be authorized, so a store account can neither steal
// nor give away records.
func (s *RecordService) Update(ctx context.Context, identity domain.Identity, record *domain.ServiceRecord) error {
	if err := s.validate(record); err != nil {
		return err
	}
	existing, err := s.Get(ctx, identity, record.ID)
	if err != nil {
		return err
	}
	if record.Status == "" {
		record.Status = existing.Status
	}
	if auth.Authorize(identity, record.StoreID) != auth.Allow {
		return apperrors.NewForbidden("access to this store denied")
	}
	if err := s.records.Update(ctx, record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", nil)
		}
		return apperrors.NewInternalError(err)
	}
	if existing.StoreID != record.StoreID {
		s.invalidate(ctx, existing.StoreID)
	}
	s.afterWrite(ctx, identity, events.EventServiceUpdated, record)
	return nil
}

// Delete removes a record after the same ownership check as Get.
func (s *RecordService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	record, err := s.Get(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", nil)
		}
		return apperrors.NewInternalError(err)
	}
	s.afterWrite(ctx, identity, events.EventServiceDeleted, record)
	return nil
}

func (s *RecordService) validate(record *domain.ServiceRecord) error {
	details := map[string]any{}
	if record.MachineCode == "" {
		details["machineCode"] = "required"
	}
	if record.MachineType == "" {
		details["machineType"] = "required"
	}
	if record.StoreID == "" {
		details["storeId"] = "required"
	}
	if record.Location == "" {
		details["location"] = "required"
	}
	if record.ServiceTypeID == "" {
		details["serviceTypeId"] = "required"
	}
	if record.TechnicianID <= 0 {
		details["technicianId"] = "required"
	}
	if record.ServiceDate.IsZero() {
		details["serviceDate"] = "required"
	}
	if record.Description == "" {
		details["description"] = "required"
	}
	if record.Cost < 0 {
		details["cost"] = "must be non-negative"
	}
	if record.Status != "" && !record.Status.Valid() {
		details["status"] = "invalid status"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid service record", details)
	}
	return nil
}

func (s *RecordService) afterWrite(ctx context.Context, identity domain.Identity, eventType events.EventType, record *domain.ServiceRecord) {
	s.invalidate(ctx, record.StoreID)
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		StoreID:   record.StoreID,
		Actor:     events.Actor{SubjectID: identity.SubjectID, Role: identity.Role},
		Timestamp: time.Now(),
		Payload: events.ServicePayload{
			ServiceID:   record.ID,
			MachineCode: record.MachineCode,
			Cost:        record.Cost,
			Status:      string(record.Status),
		},
	})
}

func (s *RecordService) invalidate(ctx context.Context, storeID string) {
	if s.cache != nil {
		s.cache.InvalidateStore(ctx, storeID)
	}
}
