package models

import "time"

// Stage is a named step of the sales pipeline.
type Stage struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Order       int       `gorm:"column:order;not null;index" json:"order"`
	Description *string   `json:"description"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Stage) TableName() string { return "stages" }

// StageAction is a task template attached to a Stage (call, email, meeting...).
type StageAction struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	StageID       string    `gorm:"not null;index;size:64" json:"stage_id"`
	Type          string    `gorm:"not null" json:"type"`
	Description   string    `json:"description"`
	Mandatory     bool      `gorm:"not null;default:false" json:"mandatory"`
	RequiredCount int       `gorm:"not null;default:1" json:"required_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (StageAction) TableName() string { return "stage_actions" }

// ProspectStage records a prospect occupying a stage over a time window.
type ProspectStage struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	ProspectID     string     `gorm:"not null;index;size:64" json:"prospect_id"`
	StageID        string     `gorm:"not null;index;size:64" json:"stage_id"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`
	Active         bool       `gorm:"not null" json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Stage *Stage `gorm:"foreignKey:StageID" json:"stage,omitempty"`
}

func (ProspectStage) TableName() string { return "prospect_stages" }

// ProspectAction records a StageAction scheduled for a prospect.
type ProspectAction struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	ProspectID    string    `gorm:"not null;index;size:64" json:"prospect_id"`
	ActionID      string    `gorm:"not null;index;size:64" json:"action_id"`
	AssignedTo    string    `json:"assigned_to"`
	ScheduledDate time.Time `gorm:"not null;index" json:"scheduled_date"`
	Completed     bool      `gorm:"not null;default:false" json:"completed"`
	Approved      bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Action *StageAction `gorm:"foreignKey:ActionID" json:"action,omitempty"`
}

func (ProspectAction) TableName() string { return "prospect_actions" }

// CRMEmail is an email sent to a prospect from the CRM.
type CRMEmail struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"`
	ProspectID string     `gorm:"not null;index;size:64" json:"prospect_id"`
	Subject    string     `gorm:"not null" json:"subject"`
	Content    string     `gorm:"type:text" json:"content"`
	SentAt     *time.Time `gorm:"index" json:"sent_at"`
	SentBy     string     `json:"sent_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (CRMEmail) TableName() string { return "crm_emails" }
