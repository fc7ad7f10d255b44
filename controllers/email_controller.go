package controller

import (
	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"prospectcrm/models"
	"prospectcrm/store"
	"prospectcrm/utils"
)

// EmailController records CRM emails and, when a mailer is configured,
// delivers them to the prospect contact first.
type EmailController struct {
	Pipeline store.PipelineStore
	Records  store.RecordStore
	Mailer   utils.Mailer
	Logger   *logrus.Entry
}

func NewEmailController(pipeline store.PipelineStore, records store.RecordStore, mailer utils.Mailer, logger *logrus.Entry) *EmailController {
	return &EmailController{
		Pipeline: pipeline,
		Records:  records,
		Mailer:   mailer,
		Logger:   logger,
	}
}

func (ec *EmailController) SendEmail(c *fiber.Ctx) error {
	var input models.EmailInput
	if msg, err := parseBody(c, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, err)
	}

	if ec.Mailer != nil {
		prospect, err := ec.Records.GetProspectByID(c.UserContext(), *input.ProspectID)
		if err != nil {
			return storeError(c, err, "Failed to load prospect")
		}
		if prospect == nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
		}
		if err := checkmail.ValidateFormat(prospect.Contact); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Prospect contact is not a valid email address", err)
		}

		var content string
		if input.Content != nil {
			content = *input.Content
		}
		msg := utils.NewProspectEmail(prospect.Contact, *input.Subject, content, *input.SentBy)
		if err := ec.Mailer.Send(msg); err != nil {
			utils.LogError("email_delivery_failed", err, map[string]interface{}{
				"prospect_id": prospect.ID,
			})
			return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to deliver email", nil)
		}
	}

	email, err := ec.Pipeline.SendEmail(c.UserContext(), input)
	if err != nil {
		return storeError(c, err, "Failed to record email")
	}
	utils.LogEvent("email_sent", map[string]interface{}{
		"email_id":    email.ID,
		"prospect_id": email.ProspectID,
		"sent_by":     email.SentBy,
		"delivered":   ec.Mailer != nil,
	})
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(email))
}

func (ec *EmailController) ListProspectEmails(c *fiber.Ctx) error {
	emails, err := ec.Pipeline.ListProspectEmails(c.UserContext(), c.Params("id"))
	if err != nil {
		return storeError(c, err, "Failed to list emails")
	}
	return c.JSON(utils.SuccessResponse(emails))
}
