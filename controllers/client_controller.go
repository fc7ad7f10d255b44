package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/utils"
)

type ClientController struct {
	Store  store.RecordStore
	Logger *logrus.Entry
}

func NewClientController(s store.RecordStore, logger *logrus.Entry) *ClientController {
	return &ClientController{
		Store:  s,
		Logger: logger,
	}
}

func (cc *ClientController) ListClients(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return storeError(c, err, "Invalid query")
	}

	page, err := cc.Store.ListClients(c.UserContext(), q)
	if err != nil {
		return storeError(c, err, "Failed to list clients")
	}
	return c.JSON(listResponse(page))
}

func (cc *ClientController) GetClientByComitente(c *fiber.Ctx) error {
	client, err := cc.Store.GetClientByComitente(c.UserContext(), c.Params("code"))
	if err != nil {
		return storeError(c, err, "Failed to load client")
	}
	if client == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Client not found", nil)
	}
	return c.JSON(utils.SuccessResponse(client))
}

// GetActionsByComitente answers an empty list for unknown comitente numbers.
func (cc *ClientController) GetActionsByComitente(c *fiber.Ctx) error {
	actions, err := cc.Store.GetActionsByComitente(c.UserContext(), c.Params("code"))
	if err != nil {
		return storeError(c, err, "Failed to load client actions")
	}
	return c.JSON(utils.SuccessResponse(actions))
}

func (cc *ClientController) CreateClient(c *fiber.Ctx) error {
	var input models.ClientInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	client, err := cc.Store.CreateClient(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to create client")
	}
	cc.Logger.WithFields(logrus.Fields{
		"client_id":    client.ID,
		"numcomitente": client.ComitenteNumber,
	}).Info("Client created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(client))
}

func (cc *ClientController) CreateAction(c *fiber.Ctx) error {
	var input models.ActionInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	action, err := cc.Store.CreateClientAction(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return storeError(c, err, "Failed to create action")
	}
	if action == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Client not found", nil)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(action))
}

func (cc *ClientController) ListUsers(c *fiber.Ctx) error {
	users, err := cc.Store.ListUsers(c.UserContext())
	if err != nil {
		return storeError(c, err, "Failed to list users")
	}
	return c.JSON(utils.SuccessResponse(users))
}
