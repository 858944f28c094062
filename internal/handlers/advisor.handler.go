package handlers

import (
	"errors"
	"fmt"

	"advisorapi/internal/app"
	advisorController "advisorapi/internal/controllers/advisor"
	"advisorapi/internal/logger"
	. "advisorapi/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AdvisorHandler struct {
	Handler
	controller *advisorController.AdvisorController
}

func NewAdvisorHandler(app app.App, router fiber.Router) *AdvisorHandler {
	log := logger.New("handlers").File("advisor_handler")
	return &AdvisorHandler{
		controller: app.AdvisorController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdvisorHandler) Register() {
	advisors := h.router.Group("/advisors")
	advisors.Get("/", h.getAdvisors)
	advisors.Get("/:id", h.getAdvisor)

	advisors.Post("/", h.middleware.RequireAdminKey(), h.createAdvisor)
	advisors.Put("/:id", h.middleware.RequireAdminKey(), h.updateAdvisor)
	advisors.Delete("/:id", h.middleware.RequireAdminKey(), h.deleteAdvisor)
}

func (h *AdvisorHandler) getAdvisors(c *fiber.Ctx) error {
	views, err := h.controller.GetAll(c.UserContext())
	if err != nil {
		return h.respondError(c, "getAdvisors", err)
	}

	return c.JSON(views)
}

func (h *AdvisorHandler) getAdvisor(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badID(c)
	}

	view, err := h.controller.GetOne(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, "getAdvisor", err)
	}

	return c.JSON(view)
}

func (h *AdvisorHandler) createAdvisor(c *fiber.Ctx) error {
	log := h.log.Function("createAdvisor")

	var candidate Advisor
	if err := c.BodyParser(&candidate); err != nil {
		log.Debug("Failed to parse advisor", "error", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse advisor"})
	}

	view, err := h.controller.Create(c.UserContext(), candidate)
	if err != nil {
		return h.respondError(c, "createAdvisor", err)
	}

	c.Location(fmt.Sprintf("/api/advisors/%d", view.ID))
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *AdvisorHandler) updateAdvisor(c *fiber.Ctx) error {
	log := h.log.Function("updateAdvisor")

	id, err := c.ParamsInt("id")
	if err != nil {
		return badID(c)
	}

	var record Advisor
	if err := c.BodyParser(&record); err != nil {
		log.Debug("Failed to parse advisor", "error", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse advisor"})
	}

	if err := h.controller.Update(c.UserContext(), id, record); err != nil {
		return h.respondError(c, "updateAdvisor", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdvisorHandler) deleteAdvisor(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badID(c)
	}

	if err := h.controller.Delete(c.UserContext(), id); err != nil {
		return h.respondError(c, "deleteAdvisor", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).
		JSON(fiber.Map{"message": "advisor id must be an integer"})
}

// respondError maps controller errors onto status codes. A validation failure
// answers with its reason as the plain body.
func (h *AdvisorHandler) respondError(c *fiber.Ctx, function string, err error) error {
	log := h.log.Function(function)

	var validationErr *advisorController.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).SendString(validationErr.Reason)
	case errors.Is(err, advisorController.ErrNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"message": "advisor not found"})
	case errors.Is(err, advisorController.ErrMalformedRequest):
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, advisorController.ErrConflict):
		log.Er("advisor conflicts with an existing record", err)
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"message": "advisor conflicts with an existing record"})
	default:
		log.Er("unexpected error", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "internal server error"})
	}
}
