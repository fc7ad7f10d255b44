package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/utils"
)

// PipelineController serves stages, their action templates and the
// progress of each prospect through them.
type PipelineController struct {
	Store  store.PipelineStore
	Logger *logrus.Entry
}

func NewPipelineController(s store.PipelineStore, logger *logrus.Entry) *PipelineController {
	return &PipelineController{
		Store:  s,
		Logger: logger,
	}
}

func (pc *PipelineController) ListStages(c *fiber.Ctx) error {
	stages, err := pc.Store.ListStages(c.UserContext())
	if err != nil {
		return storeError(c, err, "Failed to list stages")
	}
	return c.JSON(utils.SuccessResponse(stages))
}

func (pc *PipelineController) CreateStage(c *fiber.Ctx) error {
	var input models.StageInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	stage, err := pc.Store.CreateStage(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to create stage")
	}
	pc.Logger.WithFields(logrus.Fields{"stage_id": stage.ID, "order": stage.Order}).Info("Stage created")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(stage))
}

func (pc *PipelineController) UpdateStage(c *fiber.Ctx) error {
	var input models.StageInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	stage, err := pc.Store.UpdateStage(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return storeError(c, err, "Failed to update stage")
	}
	return c.JSON(utils.SuccessResponse(stage))
}

func (pc *PipelineController) ListStageActions(c *fiber.Ctx) error {
	actions, err := pc.Store.ListStageActions(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to list stage actions")
	}
	return c.JSON(utils.SuccessResponse(actions))
}

func (pc *PipelineController) CreateStageAction(c *fiber.Ctx) error {
	var input models.StageActionInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	action, err := pc.Store.CreateStageAction(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to create stage action")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(action))
}

func (pc *PipelineController) ListProspectStages(c *fiber.Ctx) error {
	rows, err := pc.Store.ListProspectStages(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to list prospect stages")
	}
	return c.JSON(utils.SuccessResponse(rows))
}

func (pc *PipelineController) CreateProspectStage(c *fiber.Ctx) error {
	var input models.ProspectStageInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	ps, err := pc.Store.CreateProspectStage(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to assign stage")
	}
	pc.Logger.WithFields(logrus.Fields{"prospect_id": ps.ProspectID, "stage_id": ps.StageID}).Info("Prospect entered stage")
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(ps))
}

func (pc *PipelineController) CompleteProspectStage(c *fiber.Ctx) error {
	ps, err := pc.Store.CompleteProspectStage(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to complete stage")
	}
	return c.JSON(utils.SuccessResponse(ps))
}

func (pc *PipelineController) ListProspectActions(c *fiber.Ctx) error {
	rows, err := pc.Store.ListProspectActions(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to list prospect actions")
	}
	return c.JSON(utils.SuccessResponse(rows))
}

func (pc *PipelineController) CreateProspectAction(c *fiber.Ctx) error {
	var input models.ProspectActionInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	pa, err := pc.Store.CreateProspectAction(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to schedule action")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(pa))
}

func (pc *PipelineController) CompleteProspectAction(c *fiber.Ctx) error {
	pa, err := pc.Store.CompleteProspectAction(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to complete action")
	}
	return c.JSON(utils.SuccessResponse(pa))
}

func (pc *PipelineController) ApproveProspectAction(c *fiber.Ctx) error {
	pa, err := pc.Store.ApproveProspectAction(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to approve action")
	}
	return c.JSON(utils.SuccessResponse(pa))
}
