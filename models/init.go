package models

import "time"

// SeedData is the set of records written into an empty store on Initialize.
type SeedData struct {
	Stages          []Stage
	StageActions    []StageAction
	ProspectStages  []ProspectStage
	ProspectActions []ProspectAction
	Emails          []CRMEmail
	Prospects       []Prospect
	Clients         []Client
	Users           []User
}

// DefaultSeed returns the demo pipeline and the legacy prospect / client tables,
// all timestamped with now.
func DefaultSeed(now time.Time) SeedData {
	stages := []Stage{
		{
			ID:          "1",
			Name:        "Contacto Inicial",
			Order:       1,
			Description: strPtr("Primer contacto con el prospecto"),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "2",
			Name:        "Evaluación",
			Order:       2,
			Description: strPtr("Evaluación de necesidades y perfil"),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "3",
			Name:        "Propuesta",
			Order:       3,
			Description: strPtr("Presentación de propuesta comercial"),
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	stageActions := []StageAction{
		{
			ID:            "1",
			StageID:       "1",
			Type:          "Llamada",
			Description:   "Llamada inicial de contacto",
			Mandatory:     true,
			RequiredCount: 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "2",
			StageID:       "1",
			Type:          "Email",
			Description:   "Email de seguimiento",
			Mandatory:     true,
			RequiredCount: 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	sentAt := now
	return SeedData{
		Stages:       stages,
		StageActions: stageActions,
		ProspectStages: []ProspectStage{
			{
				ID:         "1",
				ProspectID: "1",
				StageID:    "1",
				StartDate:  now,
				Active:     true,
				CreatedAt:  now,
				UpdatedAt:  now,
			},
		},
		ProspectActions: []ProspectAction{
			{
				ID:            "1",
				ProspectID:    "1",
				ActionID:      "1",
				AssignedTo:    "user1",
				ScheduledDate: now,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		Emails: []CRMEmail{
			{
				ID:         "1",
				ProspectID: "1",
				Subject:    "Bienvenida",
				Content:    "Bienvenido a nuestro CRM",
				SentAt:     &sentAt,
				SentBy:     "user1",
				CreatedAt:  now,
				UpdatedAt:  now,
			},
		},
		Prospects: []Prospect{
			{
				ID:              "1",
				Name:            "Juan Pérez",
				Contact:         "juan@email.com",
				ContactRole:     "Gerente",
				Officer:         "1",
				Referrer:        "2",
				LastContact:     "2024-01-15",
				DueDate:         "2024-02-15",
				ActionType:      "Llamada pendiente",
				ComitenteNumber: "COM001",
				Status:          ProspectStatusActive,
				Notes:           "Cliente potencial interesado en inversiones",
				Sector:          "Tecnología",
				CreatedAt:       now,
				Actions: []Action{
					{
						ID:          "1",
						ProspectID:  "1",
						ActionDate:  "2024-01-15",
						Description: "Primera llamada de contacto",
						NextContact: "2024-02-15",
						UserID:      "1",
						Status:      "abierto",
					},
				},
			},
		},
		Clients: []Client{
			{
				ID:              "1",
				ComitenteNumber: "COM001",
				Name:            "Empresa ABC",
				Sector:          "Tecnología",
				Email:           "contacto@abc.com",
				TaxID:           "30-12345678-9",
				Officer:         "1",
				Referrer:        "2",
				Active:          true,
				CreatedAt:       now,
				Actions: []Action{
					{
						ID:          "1",
						ClientID:    "1",
						ActionDate:  "2024-01-10",
						Description: "Reunión de seguimiento",
						NextContact: "2024-02-10",
						UserID:      "1",
						Status:      "abierto",
					},
				},
			},
		},
		Users: []User{
			{ID: "1", Label: "Juan Oficial"},
			{ID: "2", Label: "María Referente"},
			{ID: "3", Label: "Pedro Analista"},
		},
	}
}

func strPtr(s string) *string {
	return &s
}
