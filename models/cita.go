package models

import (
	"time"
)

// Estados válidos de una cita
const (
	EstadoProgramada = "Programada"
	EstadoCancelada  = "Cancelada"
	EstadoRealizada  = "Realizada"
	EstadoNoAsistio  = "No Asistió"
)

// EstadosCita lista los valores aceptados para estado_cita
var EstadosCita = []string{EstadoProgramada, EstadoCancelada, EstadoRealizada, EstadoNoAsistio}

// EstadoCitaValido indica si el estado recibido es uno de los cuatro permitidos
func EstadoCitaValido(estado string) bool {
	for _, e := range EstadosCita {
		if estado == e {
			return true
		}
	}
	return false
}

// Cita representa la tabla citas en la base de datos
type Cita struct {
	ID                 int       `json:"id" db:"id"`
	IDPaciente         int       `json:"id_paciente" db:"id_paciente"`
	IDMedico           int       `json:"id_medico" db:"id_medico"`
	IDEspecialidadCita int       `json:"id_especialidad_cita" db:"id_especialidad_cita"`
	FechaHoraCita      FechaHora `json:"fecha_hora_cita" db:"fecha_hora_cita"`
	EstadoCita         string    `json:"estado_cita" db:"estado_cita"`
	MotivoCita         *string   `json:"motivo_cita" db:"motivo_cita"`
	ObservacionesCita  *string   `json:"observaciones_cita" db:"observaciones_cita"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// CitaRequest representa el cuerpo de creación/actualización de una cita.
// Los campos son punteros para distinguir ausente de vacío en actualizaciones
// parciales.
type CitaRequest struct {
	IDPaciente         *int    `json:"id_paciente"`
	IDMedico           *int    `json:"id_medico"`
	IDEspecialidadCita *int    `json:"id_especialidad_cita"`
	FechaHoraCita      *string `json:"fecha_hora_cita"`
	EstadoCita         *string `json:"estado_cita"`
	MotivoCita         *string `json:"motivo_cita"`
	ObservacionesCita  *string `json:"observaciones_cita"`
}

// CitaDetalle es una cita con sus relaciones cargadas
type CitaDetalle struct {
	Cita
	Paciente     *PacienteResumen     `json:"paciente,omitempty"`
	Medico       *MedicoResumen       `json:"medico,omitempty"`
	Especialidad *EspecialidadResumen `json:"especialidad,omitempty"`
}

// ConteoEspecialidad es una fila del reporte de citas por especialidad
type ConteoEspecialidad struct {
	NombreEspecialidad string `json:"nombre_especialidad"`
	TotalCitas         int    `json:"total_citas"`
}
