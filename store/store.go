// Package store declares the persistence contract shared by the kv and sql
// backings. A backing is picked once at startup and handed to the callers.
package store

import (
	"context"
	"time"

	"prospectcrm/models"
)

// PipelineStore persists stages, their action templates and the per-prospect
// progress through them. Missing targets of update / complete / approve calls
// fail with ErrNotFound.
type PipelineStore interface {
	ListStages(ctx context.Context) ([]models.Stage, error)
	CreateStage(ctx context.Context, in models.StageInput) (models.Stage, error)
	UpdateStage(ctx context.Context, id string, in models.StageInput) (models.Stage, error)

	ListStageActions(ctx context.Context, stageID string) ([]models.StageAction, error)
	CreateStageAction(ctx context.Context, in models.StageActionInput) (models.StageAction, error)

	ListProspectStages(ctx context.Context, prospectID string) ([]models.ProspectStage, error)
	CreateProspectStage(ctx context.Context, in models.ProspectStageInput) (models.ProspectStage, error)
	CompleteProspectStage(ctx context.Context, id string) (models.ProspectStage, error)

	ListProspectActions(ctx context.Context, prospectID string) ([]models.ProspectAction, error)
	ListPendingProspectActions(ctx context.Context, before time.Time) ([]models.ProspectAction, error)
	CreateProspectAction(ctx context.Context, in models.ProspectActionInput) (models.ProspectAction, error)
	CompleteProspectAction(ctx context.Context, id string) (models.ProspectAction, error)
	ApproveProspectAction(ctx context.Context, id string) (models.ProspectAction, error)

	SendEmail(ctx context.Context, in models.EmailInput) (models.CRMEmail, error)
	ListProspectEmails(ctx context.Context, prospectID string) ([]models.CRMEmail, error)
}

// RecordStore persists prospects and clients with their embedded action logs.
// Lookups that find nothing return a nil record and a nil error; only backing
// failures and malformed queries are reported as errors.
type RecordStore interface {
	ListProspects(ctx context.Context, q ListQuery) (Page[models.Prospect], error)
	GetProspectByID(ctx context.Context, id string) (*models.Prospect, error)
	CreateProspect(ctx context.Context, in models.ProspectInput) (models.Prospect, error)
	UpdateProspect(ctx context.Context, id string, in models.ProspectInput) (*models.Prospect, error)
	DeleteProspect(ctx context.Context, id string) (bool, error)

	ListClients(ctx context.Context, q ListQuery) (Page[models.Client], error)
	GetClientByComitente(ctx context.Context, code string) (*models.Client, error)
	GetActionsByComitente(ctx context.Context, code string) ([]models.Action, error)
	CreateClient(ctx context.Context, in models.ClientInput) (models.Client, error)

	CreateAction(ctx context.Context, entityID string, in models.ActionInput) (*models.Action, error)
	CreateClientAction(ctx context.Context, clientID string, in models.ActionInput) (*models.Action, error)
	UpdateAction(ctx context.Context, actionID string, in models.ActionInput) (*models.Action, error)

	ListUsers(ctx context.Context) ([]models.User, error)
}

// Backing is a store implementation able to serve both families.
type Backing interface {
	PipelineStore
	RecordStore
	Initialize(ctx context.Context) error
	Close() error
}
