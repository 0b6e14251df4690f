package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

const longitudMinimaContrasena = 8

func validarUsuario(ctx context.Context, req models.UsuarioRequest, esCreacion bool, ignorarID int) (ErroresValidacion, error) {
	errores := ErroresValidacion{}

	if req.NombreUsuario == nil {
		if esCreacion {
			errores.Agregar("nombre_usuario", "El nombre de usuario es obligatorio.")
		}
	} else if *req.NombreUsuario == "" {
		errores.Agregar("nombre_usuario", "El nombre de usuario es obligatorio.")
	}

	if req.Email == nil {
		if esCreacion {
			errores.Agregar("email", "El correo electrónico es obligatorio.")
		}
	} else if *req.Email == "" {
		errores.Agregar("email", "El correo electrónico es obligatorio.")
	} else if !emailValido(*req.Email) {
		errores.Agregar("email", "El formato del correo electrónico no es válido.")
	} else if ocupada, err := columnaOcupada(ctx,
		"SELECT EXISTS(SELECT 1 FROM usuarios WHERE email = $1 AND id <> $2)",
		*req.Email, ignorarID); err != nil {
		return nil, err
	} else if ocupada {
		errores.Agregar("email", "Este correo electrónico ya está registrado.")
	}

	if req.Contrasena == nil {
		if esCreacion {
			errores.Agregar("contrasena", "La contraseña es obligatoria.")
		}
	} else if len(*req.Contrasena) < longitudMinimaContrasena {
		errores.Agregar("contrasena", "La contraseña debe tener al menos 8 caracteres.")
	}

	if req.RolUsuario == nil {
		if esCreacion {
			errores.Agregar("rol_usuario", "El rol del usuario es obligatorio.")
		}
	} else if !models.RolUsuarioValido(*req.RolUsuario) {
		errores.Agregar("rol_usuario", "El rol seleccionado no es válido.")
	}

	if req.PacienteID != nil {
		existe, err := existePaciente(ctx, *req.PacienteID)
		if err != nil {
			return nil, err
		}
		if !existe {
			errores.Agregar("paciente_id", "El paciente seleccionado no es válido.")
		}
	}
	if req.MedicoID != nil {
		existe, err := existeMedico(ctx, *req.MedicoID)
		if err != nil {
			return nil, err
		}
		if !existe {
			errores.Agregar("medico_id", "El médico seleccionado no es válido.")
		}
	}

	return errores, nil
}

const columnasUsuario = "id, nombre_usuario, email, contrasena, rol_usuario, paciente_id, medico_id, created_at, updated_at"

func escanearUsuario(fila filaCita) (models.Usuario, error) {
	var u models.Usuario
	err := fila.Scan(&u.ID, &u.NombreUsuario, &u.Email, &u.Contrasena, &u.RolUsuario,
		&u.PacienteID, &u.MedicoID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ObtenerUsuarios lista las cuentas de usuario
func ObtenerUsuarios(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(c.Context(),
		"SELECT "+columnasUsuario+" FROM usuarios ORDER BY id")
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener usuarios"))
	}
	defer rows.Close()

	usuarios := []models.Usuario{}
	for rows.Next() {
		u, err := escanearUsuario(rows)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener usuarios"))
		}
		usuarios = append(usuarios, u)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener usuarios"))
	}

	return c.JSON(Exito(usuarios, "Lista de usuarios obtenida correctamente"))
}

// CrearUsuario registra una cuenta. La contraseña se hashea con bcrypt antes
// de guardarse y nunca viaja en la respuesta.
func CrearUsuario(c *fiber.Ctx) error {
	var req models.UsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	ctx := c.Context()
	errores, err := validarUsuario(ctx, req, true, 0)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el usuario"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*req.Contrasena), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el usuario"))
	}

	var u models.Usuario
	u.NombreUsuario = *req.NombreUsuario
	u.Email = *req.Email
	u.RolUsuario = *req.RolUsuario
	u.PacienteID = req.PacienteID
	u.MedicoID = req.MedicoID

	err = database.GetDB().QueryRow(ctx,
		`INSERT INTO usuarios (nombre_usuario, email, contrasena, rol_usuario, paciente_id, medico_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.NombreUsuario, u.Email, string(hash), u.RolUsuario, u.PacienteID, u.MedicoID).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el usuario"))
	}

	return c.Status(201).JSON(Exito(u, "Usuario creado correctamente"))
}

// ObtenerUsuarioPorID devuelve una cuenta de usuario
func ObtenerUsuarioPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	fila := database.GetDB().QueryRow(c.Context(),
		"SELECT "+columnasUsuario+" FROM usuarios WHERE id = $1", id)
	u, err := escanearUsuario(fila)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.Status(404).JSON(Fallo("Usuario no encontrado"))
	}
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener el usuario"))
	}

	return c.JSON(Exito(u, "Usuario encontrado"))
}

// ActualizarUsuario aplica una actualización parcial. Si llega una contraseña
// nueva se vuelve a hashear.
func ActualizarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	ctx := c.Context()
	existe, err := existeUsuario(ctx, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el usuario"))
	}
	if !existe {
		return c.Status(404).JSON(Fallo("Usuario no encontrado"))
	}

	var req models.UsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	errores, err := validarUsuario(ctx, req, false, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el usuario"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	cambios := map[string]interface{}{}
	if req.NombreUsuario != nil {
		cambios["nombre_usuario"] = *req.NombreUsuario
	}
	if req.Email != nil {
		cambios["email"] = *req.Email
	}
	if req.Contrasena != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Contrasena), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al actualizar el usuario"))
		}
		cambios["contrasena"] = string(hash)
	}
	if req.RolUsuario != nil {
		cambios["rol_usuario"] = *req.RolUsuario
	}
	if req.PacienteID != nil {
		cambios["paciente_id"] = *req.PacienteID
	}
	if req.MedicoID != nil {
		cambios["medico_id"] = *req.MedicoID
	}

	if err := actualizarFila(ctx, "usuarios", id, cambios); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el usuario"))
	}

	fila := database.GetDB().QueryRow(ctx,
		"SELECT "+columnasUsuario+" FROM usuarios WHERE id = $1", id)
	u, err := escanearUsuario(fila)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el usuario"))
	}

	return c.JSON(Exito(u, "Usuario actualizado correctamente"))
}

// EliminarUsuario elimina una cuenta de usuario
func EliminarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	etiqueta, err := database.GetDB().Exec(c.Context(), "DELETE FROM usuarios WHERE id = $1", id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al eliminar el usuario"))
	}
	if etiqueta.RowsAffected() == 0 {
		return c.Status(404).JSON(Fallo("Usuario no encontrado"))
	}

	return c.JSON(Respuesta{Status: true, Message: "Usuario eliminado correctamente"})
}
