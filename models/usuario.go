package models

import (
	"time"
)

// Roles válidos de un usuario
const (
	RolPaciente      = "paciente"
	RolMedico        = "medico"
	RolAdministrador = "administrador"
)

// RolesUsuario lista los valores aceptados para rol_usuario
var RolesUsuario = []string{RolPaciente, RolMedico, RolAdministrador}

// RolUsuarioValido indica si el rol recibido es uno de los permitidos
func RolUsuarioValido(rol string) bool {
	for _, r := range RolesUsuario {
		if rol == r {
			return true
		}
	}
	return false
}

// Usuario representa la tabla usuarios en la base de datos.
// La contraseña se guarda hasheada y nunca se serializa hacia afuera.
type Usuario struct {
	ID            int       `json:"id" db:"id"`
	NombreUsuario string    `json:"nombre_usuario" db:"nombre_usuario"`
	Email         string    `json:"email" db:"email"`
	Contrasena    string    `json:"-" db:"contrasena"`
	RolUsuario    string    `json:"rol_usuario" db:"rol_usuario"`
	PacienteID    *int      `json:"paciente_id" db:"paciente_id"`
	MedicoID      *int      `json:"medico_id" db:"medico_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UsuarioRequest representa el cuerpo de creación/actualización de un usuario
type UsuarioRequest struct {
	NombreUsuario *string `json:"nombre_usuario"`
	Email         *string `json:"email"`
	Contrasena    *string `json:"contrasena"`
	RolUsuario    *string `json:"rol_usuario"`
	PacienteID    *int    `json:"paciente_id"`
	MedicoID      *int    `json:"medico_id"`
}
