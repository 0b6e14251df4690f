package models

import (
	"time"
)

// Paciente representa la tabla pacientes en la base de datos
type Paciente struct {
	ID                       int       `json:"id" db:"id"`
	NumeroDocumentoPaciente  string    `json:"numero_documento_paciente" db:"numero_documento_paciente"`
	TipoDocumentoPaciente    string    `json:"tipo_documento_paciente" db:"tipo_documento_paciente"`
	NombresPaciente          string    `json:"nombres_paciente" db:"nombres_paciente"`
	ApellidosPaciente        string    `json:"apellidos_paciente" db:"apellidos_paciente"`
	FechaNacimientoPaciente  string    `json:"fecha_nacimiento_paciente" db:"fecha_nacimiento_paciente"`
	GeneroPaciente           *string   `json:"genero_paciente" db:"genero_paciente"`
	DireccionPaciente        *string   `json:"direccion_paciente" db:"direccion_paciente"`
	TelefonoPaciente         *string   `json:"telefono_paciente" db:"telefono_paciente"`
	EmailPaciente            *string   `json:"email_paciente" db:"email_paciente"`
	EPSPaciente              *string   `json:"eps_paciente" db:"eps_paciente"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// PacienteRequest representa el cuerpo de creación/actualización de un paciente
type PacienteRequest struct {
	NumeroDocumentoPaciente *string `json:"numero_documento_paciente"`
	TipoDocumentoPaciente   *string `json:"tipo_documento_paciente"`
	NombresPaciente         *string `json:"nombres_paciente"`
	ApellidosPaciente       *string `json:"apellidos_paciente"`
	FechaNacimientoPaciente *string `json:"fecha_nacimiento_paciente"`
	GeneroPaciente          *string `json:"genero_paciente"`
	DireccionPaciente       *string `json:"direccion_paciente"`
	TelefonoPaciente        *string `json:"telefono_paciente"`
	EmailPaciente           *string `json:"email_paciente"`
	EPSPaciente             *string `json:"eps_paciente"`
}

// PacienteResumen son los datos mínimos de un paciente dentro de una cita
type PacienteResumen struct {
	ID                      int    `json:"id"`
	NumeroDocumentoPaciente string `json:"numero_documento_paciente"`
	NombresPaciente         string `json:"nombres_paciente"`
	ApellidosPaciente       string `json:"apellidos_paciente"`
}

// PacienteConCitas es una fila del reporte de pacientes con más citas
type PacienteConCitas struct {
	Paciente
	TotalCitas int `json:"total_citas"`
}
