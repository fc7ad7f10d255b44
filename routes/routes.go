package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	controller "prospectcrm/controllers"
	"prospectcrm/middleware"
	"prospectcrm/store"
	"prospectcrm/utils"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Store     store.Backing
	Mailer    utils.Mailer
	JWTSecret string

	// RateLimit is the number of API requests allowed per client and minute;
	// zero disables limiting. RateLimitStorage defaults to process memory.
	RateLimit        int
	RateLimitStorage fiber.Storage

	APIBaseURL   string
	DatascopeURL string
	Backend      string
}

func SetupAPIRoutes(app *fiber.App, deps Dependencies) {
	pipelineController := controller.NewPipelineController(deps.Store, logrus.WithField("component", "pipeline"))
	emailController := controller.NewEmailController(deps.Store, deps.Store, deps.Mailer, logrus.WithField("component", "email"))
	prospectController := controller.NewProspectController(deps.Store, logrus.WithField("component", "prospect"))
	clientController := controller.NewClientController(deps.Store, logrus.WithField("component", "client"))

	// API group with versioning and protection
	api := app.Group("/api/v1",
		logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}),
		middleware.Protected(deps.JWTSecret),
		middleware.APIRateLimiter(deps.RateLimit, deps.RateLimitStorage),
	)

	// Pipeline routes
	api.Get("/stages", pipelineController.ListStages)
	api.Post("/stages", pipelineController.CreateStage)
	api.Put("/stages/:id", pipelineController.UpdateStage)
	api.Get("/stages/:id/actions", pipelineController.ListStageActions)
	api.Post("/stage-actions", pipelineController.CreateStageAction)

	api.Get("/prospects/:id/stages", pipelineController.ListProspectStages)
	api.Post("/prospect-stages", pipelineController.CreateProspectStage)
	api.Post("/prospect-stages/:id/complete", pipelineController.CompleteProspectStage)

	api.Get("/prospects/:id/pipeline-actions", pipelineController.ListProspectActions)
	api.Post("/prospect-actions", pipelineController.CreateProspectAction)
	api.Post("/prospect-actions/:id/complete", pipelineController.CompleteProspectAction)
	api.Post("/prospect-actions/:id/approve", pipelineController.ApproveProspectAction)

	// Email routes
	api.Post("/emails", emailController.SendEmail)
	api.Get("/prospects/:id/emails", emailController.ListProspectEmails)

	// Prospect routes
	api.Get("/prospects", prospectController.ListProspects)
	api.Post("/prospects", prospectController.CreateProspect)
	api.Get("/prospects/:id", prospectController.GetProspect)
	api.Put("/prospects/:id", prospectController.UpdateProspect)
	api.Delete("/prospects/:id", prospectController.DeleteProspect)
	api.Post("/prospects/:id/actions", prospectController.CreateAction)

	// Client routes
	api.Get("/clients", clientController.ListClients)
	api.Post("/clients", clientController.CreateClient)
	api.Get("/clients/comitente/:code", clientController.GetClientByComitente)
	api.Get("/clients/comitente/:code/actions", clientController.GetActionsByComitente)
	api.Post("/clients/:id/actions", clientController.CreateAction)

	api.Put("/actions/:id", prospectController.UpdateAction)
	api.Get("/users", clientController.ListUsers)

	logrus.Info("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	systemController := controller.NewSystemController(deps.APIBaseURL, deps.DatascopeURL, deps.Backend)

	// Public endpoints
	app.Get("/health", systemController.Health)
	app.Get("/config", systemController.RuntimeConfig)

	SetupAPIRoutes(app, deps)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
