package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/api/dto"
	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/service"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

// ReportsHandler exposes store summaries and financial rollups.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// StoreReport handles POST /reports/store.
func (h *ReportsHandler) StoreReport(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.StoreReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	from, to, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	report, reportID, err := h.reports.StoreReport(c.Context(), identity, req.StoreID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "reportId": reportID, "report": report})
}

// FinancialReport handles POST /reports/financial.
func (h *ReportsHandler) FinancialReport(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.FinancialReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	from, to, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	report, err := h.reports.FinancialReport(c.Context(), identity, req.StoreID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "report": report})
}

// TechnicianReport handles POST /reports/technicians.
func (h *ReportsHandler) TechnicianReport(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.TechnicianReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	from, to, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	report, err := h.reports.TechnicianReport(c.Context(), identity, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "report": report})
}

// List handles GET /reports.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	reports, err := h.reports.ListReports(c.Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "reports": dto.NewReportViews(reports)})
}

// Get handles GET /reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	report, err := h.reports.GetReport(c.Context(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "report": dto.NewReportView(report)})
}

func parsePeriod(start, end string) (time.Time, time.Time, error) {
	details := map[string]any{}
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		details["startDate"] = "must be a valid date"
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		details["endDate"] = "must be a valid date"
	}
	if len(details) > 0 {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid report period", details)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("endDate must not precede startDate", nil)
	}
	return from, to, nil
}
