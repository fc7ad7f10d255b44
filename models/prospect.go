package models

import "time"

// Action is an entry of the action log embedded in a Prospect or a Client.
type Action struct {
	ID          string `json:"id"`
	ProspectID  string `json:"prospect_id,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	ActionDate  string `json:"action_date"`
	Description string `json:"description"`
	NextContact string `json:"next_contact"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"` // abierto, cerrado
}

// Prospect is a sales lead not yet converted to a Client.
type Prospect struct {
	ID               string `gorm:"primaryKey;size:64" json:"id"`
	Name             string `gorm:"not null;index" json:"nombreCliente"`
	Contact          string `json:"contacto"`
	ContactRole      string `json:"cargo_contacto"`
	Officer          string `gorm:"index" json:"oficial"`
	Referrer         string `json:"referente"`
	LastContact      string `json:"ultimoContacto"`
	DueDate          string `json:"fechaVencimiento"`
	ActionType       string `json:"tipoAccion"`
	ComitenteNumber  string `json:"numComitente"`
	IsClient         bool   `gorm:"not null;default:false" json:"yaEsCliente"`
	ClientActionType string `json:"tipoClienteAccion"`
	Status           string `gorm:"index" json:"activo"` // "activo" or anything else
	Notes            string `gorm:"type:text" json:"notas"`
	Sector           string `json:"sector_industria"`

	Actions []Action `gorm:"type:text;serializer:json" json:"actions"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Prospect) TableName() string { return "prospects" }

// OrderKey is the tie-break used when listings compare equal.
func (p Prospect) OrderKey() (time.Time, string) { return p.CreatedAt, p.ID }

// IsActive reports whether the prospect status marks it active.
func (p Prospect) IsActive() bool {
	return p.Status == ProspectStatusActive
}

// Client is a converted account identified by its comitente number.
type Client struct {
	ID              string `gorm:"primaryKey;size:64" json:"id"`
	ComitenteNumber string `gorm:"uniqueIndex;not null;size:64" json:"numcomitente"`
	Name            string `gorm:"not null;index" json:"nombre"`
	Sector          string `json:"sector"`
	Email           string `json:"mail"`
	TaxID           string `json:"cuit"`
	Officer         string `gorm:"index" json:"oficial"`
	Referrer        string `json:"referente"`
	Active          bool   `gorm:"not null" json:"activo"`

	Actions []Action `gorm:"type:text;serializer:json" json:"actions"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Client) TableName() string { return "clients" }

func (c Client) OrderKey() (time.Time, string) { return c.CreatedAt, c.ID }

// User is an entry of the officer / referrer lookup table.
type User struct {
	ID    string `gorm:"primaryKey;size:64" json:"id"`
	Label string `gorm:"not null" json:"label"`
}

func (User) TableName() string { return "users" }

const ProspectStatusActive = "activo"

// Status filters accepted by the prospect and client listings.
const (
	StatusFilterAll      = "todos"
	StatusFilterActive   = "activos"
	StatusFilterInactive = "inactivos"
)

// Sort directions accepted by the prospect and client listings.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)
