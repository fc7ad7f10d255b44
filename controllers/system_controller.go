package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"prospectcrm/utils"
)

const Version = "1.0.0"

// SystemController answers health checks and exposes the public runtime config.
type SystemController struct {
	APIBaseURL   string
	DatascopeURL string
	Backend      string
	started      time.Time
}

func NewSystemController(apiBaseURL, datascopeURL, backend string) *SystemController {
	return &SystemController{
		APIBaseURL:   apiBaseURL,
		DatascopeURL: datascopeURL,
		Backend:      backend,
		started:      time.Now(),
	}
}

func (sc *SystemController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"version": Version,
		"backend": sc.Backend,
		"uptime":  utils.FormatDuration(time.Since(sc.started)),
	})
}

func (sc *SystemController) RuntimeConfig(c *fiber.Ctx) error {
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"API_BASE_URL":  sc.APIBaseURL,
		"DATASCOPE_URL": sc.DatascopeURL,
	}))
}
