package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/persistence"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

const reportCacheTTL = 5 * time.Minute

// ReportService generates store summaries and chain financial rollups.
// Financial payloads are cached in Redis briefly; service writes invalidate
// the affected store's entries.
type ReportService struct {
	records repository.ServiceRepository
	stores  repository.StoreRepository
	reports repository.ReportRepository
	cache   *persistence.Redis
}

// NewReportService builds the service.
func NewReportService(records repository.ServiceRepository, stores repository.StoreRepository, reports repository.ReportRepository, cache *persistence.Redis) *ReportService {
	return &ReportService{records: records, stores: stores, reports: reports, cache: cache}
}

// StoreReport builds the per-store summary over a period and persists it.
// Store-scoped callers may only report on their own store.
func (s *ReportService) StoreReport(ctx context.Context, identity domain.Identity, storeID string, from, to time.Time) (*domain.StoreReport, string, error) {
	if storeID == "" {
		return nil, "", apperrors.NewValidationError("storeId is required", nil)
	}
	if auth.Authorize(identity, storeID) != auth.Allow {
		return nil, "", apperrors.NewForbidden("access to this store denied")
	}

	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewValidationError("unknown store", map[string]any{"storeId": storeID})
		}
		return nil, "", apperrors.NewInternalError(err)
	}

	services, err := s.records.List(ctx, repository.ServiceFilter{StoreID: storeID, From: &from, To: &to})
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}

	report := buildStoreReport(store, services, from, to)

	data, err := json.Marshal(report)
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	persisted := &domain.Report{
		ID:          uuid.NewString(),
		Type:        domain.ReportTypeStoreSummary,
		StoreID:     &storeID,
		ReportDate:  time.Now(),
		PeriodStart: from,
		PeriodEnd:   to,
		Data:        data,
		Format:      "json",
	}
	if err := s.reports.Save(ctx, persisted); err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return report, persisted.ID, nil
}

// FinancialReport aggregates costs per store. Admin identities see the whole
// chain when storeID is empty; store identities always see their own store.
func (s *ReportService) FinancialReport(ctx context.Context, identity domain.Identity, storeID string, from, to time.Time) (*domain.FinancialReport, error) {
	if affiliation, ok := identity.StoreAffiliation(); ok {
		if storeID == "" {
			storeID = affiliation
		} else if auth.Authorize(identity, storeID) != auth.Allow {
			return nil, apperrors.NewForbidden("access to this store denied")
		}
	}

	cacheKey := financialCacheKey(storeID, from, to)
	if payload, err := s.cache.GetJSON(ctx, cacheKey); err == nil {
		var cached domain.FinancialReport
		if json.Unmarshal(payload, &cached) == nil {
			return &cached, nil
		}
	}

	aggregates, err := s.reports.FinancialAggregates(ctx, storeID, from, to)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	report := buildFinancialReport(aggregates, from, to)
	if payload, err := json.Marshal(report); err == nil {
		s.cache.SetJSON(ctx, cacheKey, payload, reportCacheTTL)
	}
	return report, nil
}

// listReportsLimit caps the saved-report listing, newest first.
const listReportsLimit = 50

// ListReports returns saved reports visible to the identity. Store callers
// only see reports generated for their own store.
func (s *ReportService) ListReports(ctx context.Context, identity domain.Identity) ([]domain.Report, error) {
	storeID, _ := identity.StoreAffiliation()
	reports, err := s.reports.List(ctx, storeID, listReportsLimit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return reports, nil
}

// GetReport loads a saved report with its payload. A report outside the
// caller's store reads as not found, like record lookups.
func (s *ReportService) GetReport(ctx context.Context, identity domain.Identity, id string) (*domain.Report, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("report id is required", nil)
	}
	storeID, _ := identity.StoreAffiliation()
	report, err := s.reports.GetByID(ctx, id, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return report, nil
}

// TechnicianReport ranks technicians by work done over the period. Store
// identities only see work performed in their own store; admins see the
// whole roster across the chain.
func (s *ReportService) TechnicianReport(ctx context.Context, identity domain.Identity, from, to time.Time) (*domain.TechnicianReport, error) {
	storeID, _ := identity.StoreAffiliation()
	aggregates, err := s.reports.TechnicianAggregates(ctx, storeID, from, to)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return buildTechnicianReport(aggregates, from, to), nil
}

// InvalidateStore drops cached financial payloads touching the store.
// Chain-wide entries are keyed under the empty store id and dropped too.
func (s *ReportService) InvalidateStore(ctx context.Context, storeID string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	ctxDel := context.WithoutCancel(ctx)
	iter := s.cache.Client.Scan(ctxDel, 0, "report:financial:"+storeID+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctxDel) {
		keys = append(keys, iter.Val())
	}
	iter = s.cache.Client.Scan(ctxDel, 0, "report:financial::*", 0).Iterator()
	for iter.Next(ctxDel) {
		keys = append(keys, iter.Val())
	}
	s.cache.Invalidate(ctxDel, keys...)
}

func financialCacheKey(storeID string, from, to time.Time) string {
	return fmt.Sprintf("report:financial:%s:%s:%s", storeID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func buildStoreReport(store *domain.Store, services []domain.ServiceRecord, from, to time.Time) *domain.StoreReport {
	var totalCost float64
	machines := map[string]struct{}{}
	technicians := map[int64]struct{}{}
	statusCount := map[string]int{}
	typeCount := map[string]int{}
	items := make([]domain.StoreReportService, 0, len(services))

	for _, svc := range services {
		totalCost += svc.Cost
		machines[svc.MachineCode] = struct{}{}
		technicians[svc.TechnicianID] = struct{}{}
		statusCount[string(svc.Status)]++
		typeCount[svc.ServiceTypeName]++
		items = append(items, domain.StoreReportService{
			ID:          svc.ID,
			MachineCode: svc.MachineCode,
			MachineType: svc.MachineType,
			ServiceType: svc.ServiceTypeName,
			Technician:  svc.TechnicianName,
			ServiceDate: svc.ServiceDate,
			Cost:        svc.Cost,
			Status:      string(svc.Status),
		})
	}

	averageCost := 0.0
	if len(services) > 0 {
		averageCost = totalCost / float64(len(services))
	}

	return &domain.StoreReport{
		StoreInfo: domain.StoreReportInfo{StoreID: store.ID, StoreName: store.Name, Region: store.Region},
		Period:    domain.ReportPeriod{StartDate: from.Format("2006-01-02"), EndDate: to.Format("2006-01-02")},
		Summary: domain.StoreReportSummary{
			TotalServices:     len(services),
			TotalCost:         totalCost,
			UniqueMachines:    len(machines),
			UniqueTechnicians: len(technicians),
			AverageCost:       averageCost,
		},
		StatusBreakdown:      statusCount,
		ServiceTypeBreakdown: typeCount,
		Services:             items,
	}
}

func buildTechnicianReport(aggregates []repository.TechnicianAggregate, from, to time.Time) *domain.TechnicianReport {
	rows := make([]domain.TechnicianPerformanceRow, 0, len(aggregates))
	var totalServices int
	var totalCost float64

	for _, agg := range aggregates {
		totalServices += agg.TotalServices
		totalCost += agg.TotalCost
		rows = append(rows, domain.TechnicianPerformanceRow{
			TechnicianID:      agg.TechnicianID,
			Name:              agg.Name,
			Company:           agg.Company,
			TotalServices:     agg.TotalServices,
			TotalCost:         agg.TotalCost,
			MachinesServiced:  agg.MachinesServiced,
			StoresServed:      agg.StoresServed,
			LastServiceDate:   agg.LastServiceDate,
			AverageDuration:   agg.AverageDuration,
			CompletedServices: agg.CompletedServices,
		})
	}

	return &domain.TechnicianReport{
		Period:      domain.ReportPeriod{StartDate: from.Format("2006-01-02"), EndDate: to.Format("2006-01-02")},
		Technicians: rows,
		Summary: domain.TechnicianReportSummary{
			TotalTechnicians: len(rows),
			TotalServices:    totalServices,
			TotalCost:        totalCost,
		},
	}
}

func buildFinancialReport(aggregates []repository.FinancialAggregate, from, to time.Time) *domain.FinancialReport {
	rows := make([]domain.StoreFinancialRow, 0, len(aggregates))
	var totalServices int
	var totalCost float64

	for _, agg := range aggregates {
		totalServices += agg.TotalServices
		totalCost += agg.TotalCost
		rows = append(rows, domain.StoreFinancialRow{
			StoreID:          agg.StoreID,
			StoreName:        agg.StoreName,
			Region:           agg.Region,
			TotalServices:    agg.TotalServices,
			TotalCost:        agg.TotalCost,
			AverageCost:      agg.AverageCost,
			MinCost:          agg.MinCost,
			MaxCost:          agg.MaxCost,
			TechniciansUsed:  agg.TechniciansUsed,
			MachinesServiced: agg.MachinesServiced,
		})
	}

	averagePerService := 0.0
	if totalServices > 0 {
		averagePerService = totalCost / float64(totalServices)
	}

	return &domain.FinancialReport{
		Period: domain.ReportPeriod{StartDate: from.Format("2006-01-02"), EndDate: to.Format("2006-01-02")},
		Stores: rows,
		Summary: domain.FinancialReportSummary{
			TotalStores:           len(rows),
			TotalServices:         totalServices,
			TotalCost:             totalCost,
			AverageCostPerService: averagePerService,
		},
	}
}
