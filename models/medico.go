package models

import (
	"time"
)

// Medico representa la tabla medicos en la base de datos
type Medico struct {
	ID                    int       `json:"id" db:"id"`
	NumeroDocumentoMedico string    `json:"numero_documento_medico" db:"numero_documento_medico"`
	TipoDocumentoMedico   string    `json:"tipo_documento_medico" db:"tipo_documento_medico"`
	NombresMedico         string    `json:"nombres_medico" db:"nombres_medico"`
	ApellidosMedico       string    `json:"apellidos_medico" db:"apellidos_medico"`
	TarjetaProfesional    string    `json:"tarjeta_profesional" db:"tarjeta_profesional"`
	TelefonoMedico        *string   `json:"telefono_medico" db:"telefono_medico"`
	EmailMedico           *string   `json:"email_medico" db:"email_medico"`
	IDEspecialidad        int       `json:"id_especialidad" db:"id_especialidad"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// MedicoRequest representa el cuerpo de creación/actualización de un médico
type MedicoRequest struct {
	NumeroDocumentoMedico *string `json:"numero_documento_medico"`
	TipoDocumentoMedico   *string `json:"tipo_documento_medico"`
	NombresMedico         *string `json:"nombres_medico"`
	ApellidosMedico       *string `json:"apellidos_medico"`
	TarjetaProfesional    *string `json:"tarjeta_profesional"`
	TelefonoMedico        *string `json:"telefono_medico"`
	EmailMedico           *string `json:"email_medico"`
	IDEspecialidad        *int    `json:"id_especialidad"`
}

// MedicoDetalle es un médico con su especialidad cargada
type MedicoDetalle struct {
	Medico
	Especialidad *EspecialidadResumen `json:"especialidad,omitempty"`
}

// MedicoResumen son los datos mínimos de un médico dentro de una cita
type MedicoResumen struct {
	ID                 int                  `json:"id"`
	NombresMedico      string               `json:"nombres_medico"`
	ApellidosMedico    string               `json:"apellidos_medico"`
	TarjetaProfesional string               `json:"tarjeta_profesional"`
	IDEspecialidad     int                  `json:"id_especialidad"`
	Especialidad       *EspecialidadResumen `json:"especialidad,omitempty"`
}
