package models

import "time"

// The *Input types carry partial field sets for create and update calls.
// A nil pointer means the caller did not supply the field.

type StageInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Active      *bool   `json:"active"`
}

type StageActionInput struct {
	StageID       *string `json:"stage_id" validate:"required"`
	Type          *string `json:"type" validate:"required"`
	Description   *string `json:"description"`
	Mandatory     *bool   `json:"mandatory"`
	RequiredCount *int    `json:"required_count" validate:"omitempty,min=1"`
}

type ProspectStageInput struct {
	ProspectID *string `json:"prospect_id" validate:"required"`
	StageID    *string `json:"stage_id" validate:"required"`
}

type ProspectActionInput struct {
	ProspectID    *string    `json:"prospect_id" validate:"required"`
	ActionID      *string    `json:"action_id" validate:"required"`
	AssignedTo    *string    `json:"assigned_to"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

type EmailInput struct {
	ProspectID *string `json:"prospect_id" validate:"required"`
	Subject    *string `json:"subject" validate:"required,max=500"`
	Content    *string `json:"content"`
	SentBy     *string `json:"sent_by" validate:"required"`
}

type ProspectInput struct {
	Name             *string `json:"nombreCliente" validate:"omitempty,max=200"`
	Contact          *string `json:"contacto"`
	ContactRole      *string `json:"cargo_contacto"`
	Officer          *string `json:"oficial"`
	Referrer         *string `json:"referente"`
	LastContact      *string `json:"ultimoContacto"`
	DueDate          *string `json:"fechaVencimiento"`
	ActionType       *string `json:"tipoAccion"`
	ComitenteNumber  *string `json:"numComitente"`
	IsClient         *bool   `json:"yaEsCliente"`
	ClientActionType *string `json:"tipoClienteAccion"`
	Status           *string `json:"activo"`
	Notes            *string `json:"notas"`
	Sector           *string `json:"sector_industria"`
}

type ClientInput struct {
	ComitenteNumber *string `json:"numcomitente" validate:"required"`
	Name            *string `json:"nombre" validate:"required,max=200"`
	Sector          *string `json:"sector"`
	Email           *string `json:"mail" validate:"omitempty,email"`
	TaxID           *string `json:"cuit"`
	Officer         *string `json:"oficial"`
	Referrer        *string `json:"referente"`
	Active          *bool   `json:"activo"`
}

type ActionInput struct {
	ActionDate  *string `json:"action_date"`
	Description *string `json:"description"`
	NextContact *string `json:"next_contact"`
	UserID      *string `json:"user_id"`
	Status      *string `json:"status"`
}

// Apply merges the supplied fields into s.
func (in StageInput) Apply(s *Stage) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Order != nil {
		s.Order = *in.Order
	}
	if in.Description != nil {
		s.Description = in.Description
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
}

// Apply merges the supplied fields into p.
func (in ProspectInput) Apply(p *Prospect) {
	setString(&p.Name, in.Name)
	setString(&p.Contact, in.Contact)
	setString(&p.ContactRole, in.ContactRole)
	setString(&p.Officer, in.Officer)
	setString(&p.Referrer, in.Referrer)
	setString(&p.LastContact, in.LastContact)
	setString(&p.DueDate, in.DueDate)
	setString(&p.ActionType, in.ActionType)
	setString(&p.ComitenteNumber, in.ComitenteNumber)
	if in.IsClient != nil {
		p.IsClient = *in.IsClient
	}
	setString(&p.ClientActionType, in.ClientActionType)
	setString(&p.Status, in.Status)
	setString(&p.Notes, in.Notes)
	setString(&p.Sector, in.Sector)
}

// Apply merges the supplied fields into c.
func (in ClientInput) Apply(c *Client) {
	setString(&c.ComitenteNumber, in.ComitenteNumber)
	setString(&c.Name, in.Name)
	setString(&c.Sector, in.Sector)
	setString(&c.Email, in.Email)
	setString(&c.TaxID, in.TaxID)
	setString(&c.Officer, in.Officer)
	setString(&c.Referrer, in.Referrer)
	if in.Active != nil {
		c.Active = *in.Active
	}
}

// Apply merges the supplied fields into a.
func (in ActionInput) Apply(a *Action) {
	setString(&a.ActionDate, in.ActionDate)
	setString(&a.Description, in.Description)
	setString(&a.NextContact, in.NextContact)
	setString(&a.UserID, in.UserID)
	setString(&a.Status, in.Status)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
