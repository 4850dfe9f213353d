package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/api/dto"
	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/repository"
	"github.com/gp-maquinas/maintenance-service/internal/service"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

// ServicesHandler exposes maintenance record CRUD.
type ServicesHandler struct {
	records *service.RecordService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(records *service.RecordService) *ServicesHandler {
	return &ServicesHandler{records: records}
}

// List handles GET /services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	filter := repository.ServiceFilter{
		StoreID:     c.Query("storeId"),
		Status:      domain.ServiceStatus(c.Query("status")),
		MachineCode: c.Query("machineCode"),
		Limit:       c.QueryInt("limit"),
	}
	if from, err := parseDateQuery(c, "startDate"); err != nil {
		return err
	} else if from != nil {
		filter.From = from
	}
	if to, err := parseDateQuery(c, "endDate"); err != nil {
		return err
	} else if to != nil {
		filter.To = to
	}

	records, err := h.records.List(c.Context(), identity, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "services": dto.NewServiceViews(records)})
}

// Search handles GET /services/search. Matches a machine code fragment
// and/or one service day; at least one must be given.
func (h *ServicesHandler) Search(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	serviceDate, err := parseDateQuery(c, "serviceDate")
	if err != nil {
		return err
	}
	records, err := h.records.Search(c.Context(), identity, c.Query("machineCode"), serviceDate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "services": dto.NewServiceViews(records)})
}

// MachineHistory handles GET /services/machine/:machineCode.
func (h *ServicesHandler) MachineHistory(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	records, err := h.records.MachineHistory(c.Context(), identity, c.Params("machineCode"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "services": dto.NewServiceViews(records)})
}

// Get handles GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	record, err := h.records.Get(c.Context(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "service": dto.NewServiceView(record)})
}

// Create handles POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record := req.ToDomain()
	if err := h.records.Create(c.Context(), identity, record); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "service": dto.NewServiceView(record)})
}

// Update handles PUT /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record := req.ToDomain()
	record.ID = c.Params("id")
	if err := h.records.Update(c.Context(), identity, record); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "service": dto.NewServiceView(record)})
}

// Delete handles DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.records.Delete(c.Context(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{name: raw})
	}
	return &parsed, nil
}
