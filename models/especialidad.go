package models

import (
	"time"
)

// Especialidad representa la tabla especialidades en la base de datos
type Especialidad struct {
	ID                       int       `json:"id" db:"id"`
	NombreEspecialidad       string    `json:"nombre_especialidad" db:"nombre_especialidad"`
	DescripcionEspecialidad  *string   `json:"descripcion_especialidad" db:"descripcion_especialidad"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// EspecialidadRequest representa el cuerpo de creación/actualización
type EspecialidadRequest struct {
	NombreEspecialidad      *string `json:"nombre_especialidad"`
	DescripcionEspecialidad *string `json:"descripcion_especialidad"`
}

// EspecialidadResumen son los datos mínimos de una especialidad dentro de una cita
type EspecialidadResumen struct {
	ID                 int    `json:"id"`
	NombreEspecialidad string `json:"nombre_especialidad"`
}
