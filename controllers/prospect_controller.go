package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/utils"
)

type ProspectController struct {
	Store  store.RecordStore
	Logger *logrus.Entry
}

func NewProspectController(s store.RecordStore, logger *logrus.Entry) *ProspectController {
	return &ProspectController{
		Store:  s,
		Logger: logger,
	}
}

// ListProspects returns one page of prospects.
// Query: page, status (todos|activos|inactivos), sortField, sortDirection, filters.
func (pc *ProspectController) ListProspects(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return storeError(c, err, "Invalid query")
	}

	page, err := pc.Store.ListProspects(c.UserContext(), q)
	if err != nil {
		return storeError(c, err, "Failed to list prospects")
	}
	return c.JSON(listResponse(page))
}

func (pc *ProspectController) GetProspect(c *fiber.Ctx) error {
	prospect, err := pc.Store.GetProspectByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to load prospect")
	}
	if prospect == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}
	return c.JSON(utils.SuccessResponse(prospect))
}

func (pc *ProspectController) CreateProspect(c *fiber.Ctx) error {
	var input models.ProspectInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	prospect, err := pc.Store.CreateProspect(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to create prospect")
	}
	pc.Logger.WithField("prospect_id", prospect.ID).Info("Prospect created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(prospect))
}

func (pc *ProspectController) UpdateProspect(c *fiber.Ctx) error {
	var input models.ProspectInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	prospect, err := pc.Store.UpdateProspect(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return storeError(c, err, "Failed to update prospect")
	}
	if prospect == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}
	return c.JSON(utils.SuccessResponse(prospect))
}

// DeleteProspect succeeds whether or not the prospect existed.
func (pc *ProspectController) DeleteProspect(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := pc.Store.DeleteProspect(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, "Failed to delete prospect")
	}
	pc.Logger.WithField("prospect_id", id).Info("Prospect deleted")
	return c.JSON(fiber.Map{
		"success": deleted,
	})
}

// CreateAction appends an entry to the action log of a prospect, or of a
// client when no prospect has the id.
func (pc *ProspectController) CreateAction(c *fiber.Ctx) error {
	var input models.ActionInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	action, err := pc.Store.CreateAction(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return storeError(c, err, "Failed to create action")
	}
	if action == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect or client not found", nil)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(action))
}

func (pc *ProspectController) UpdateAction(c *fiber.Ctx) error {
	var input models.ActionInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	action, err := pc.Store.UpdateAction(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return storeError(c, err, "Failed to update action")
	}
	if action == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Action not found", nil)
	}
	return c.JSON(utils.SuccessResponse(action))
}
