package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/service"
)

// ReferenceHandler serves the read-only catalogs.
type ReferenceHandler struct {
	reference *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(reference *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference}
}

// Stores handles GET /stores.
func (h *ReferenceHandler) Stores(c *fiber.Ctx) error {
	stores, err := h.reference.ListStores(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "stores": stores})
}

// ServiceTypes handles GET /service-types.
func (h *ReferenceHandler) ServiceTypes(c *fiber.Ctx) error {
	types, err := h.reference.ListServiceTypes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "serviceTypes": types})
}

// Technicians handles GET /technicians.
func (h *ReferenceHandler) Technicians(c *fiber.Ctx) error {
	technicians, err := h.reference.ListTechnicians(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "technicians": technicians})
}
