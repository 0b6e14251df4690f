package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

// validarMedico acumula los errores de los campos presentes
func validarMedico(ctx context.Context, req models.MedicoRequest, esCreacion bool, ignorarID int) (ErroresValidacion, error) {
	errores := ErroresValidacion{}

	if req.NumeroDocumentoMedico == nil {
		if esCreacion {
			errores.Agregar("numero_documento_medico", "El número de documento es obligatorio.")
		}
	} else if *req.NumeroDocumentoMedico == "" {
		errores.Agregar("numero_documento_medico", "El número de documento es obligatorio.")
	} else if len(*req.NumeroDocumentoMedico) > 20 {
		errores.Agregar("numero_documento_medico", "El número de documento no puede superar 20 caracteres.")
	} else if ocupada, err := columnaOcupada(ctx,
		"SELECT EXISTS(SELECT 1 FROM medicos WHERE numero_documento_medico = $1 AND id <> $2)",
		*req.NumeroDocumentoMedico, ignorarID); err != nil {
		return nil, err
	} else if ocupada {
		errores.Agregar("numero_documento_medico", "Este número de documento ya está registrado.")
	}

	if req.TipoDocumentoMedico == nil {
		if esCreacion {
			errores.Agregar("tipo_documento_medico", "El tipo de documento es obligatorio.")
		}
	} else if *req.TipoDocumentoMedico == "" {
		errores.Agregar("tipo_documento_medico", "El tipo de documento es obligatorio.")
	}

	if req.NombresMedico == nil {
		if esCreacion {
			errores.Agregar("nombres_medico", "Los nombres del médico son obligatorios.")
		}
	} else if *req.NombresMedico == "" {
		errores.Agregar("nombres_medico", "Los nombres del médico son obligatorios.")
	}

	if req.ApellidosMedico == nil {
		if esCreacion {
			errores.Agregar("apellidos_medico", "Los apellidos del médico son obligatorios.")
		}
	} else if *req.ApellidosMedico == "" {
		errores.Agregar("apellidos_medico", "Los apellidos del médico son obligatorios.")
	}

	if req.TarjetaProfesional == nil {
		if esCreacion {
			errores.Agregar("tarjeta_profesional", "La tarjeta profesional es obligatoria.")
		}
	} else if *req.TarjetaProfesional == "" {
		errores.Agregar("tarjeta_profesional", "La tarjeta profesional es obligatoria.")
	} else if ocupada, err := columnaOcupada(ctx,
		"SELECT EXISTS(SELECT 1 FROM medicos WHERE tarjeta_profesional = $1 AND id <> $2)",
		*req.TarjetaProfesional, ignorarID); err != nil {
		return nil, err
	} else if ocupada {
		errores.Agregar("tarjeta_profesional", "Esta tarjeta profesional ya está registrada.")
	}

	if req.EmailMedico != nil && *req.EmailMedico != "" {
		if !emailValido(*req.EmailMedico) {
			errores.Agregar("email_medico", "El formato del correo electrónico no es válido.")
		} else if ocupada, err := columnaOcupada(ctx,
			"SELECT EXISTS(SELECT 1 FROM medicos WHERE email_medico = $1 AND id <> $2)",
			*req.EmailMedico, ignorarID); err != nil {
			return nil, err
		} else if ocupada {
			errores.Agregar("email_medico", "Este correo electrónico ya está registrado para otro médico.")
		}
	}

	if req.IDEspecialidad == nil {
		if esCreacion {
			errores.Agregar("id_especialidad", "La especialidad es obligatoria.")
		}
	} else if existe, err := existeEspecialidad(ctx, *req.IDEspecialidad); err != nil {
		return nil, err
	} else if !existe {
		errores.Agregar("id_especialidad", "La especialidad seleccionada no es válida.")
	}

	return errores, nil
}

const consultaMedicoDetalle = `
	SELECT m.id, m.numero_documento_medico, m.tipo_documento_medico, m.nombres_medico,
	       m.apellidos_medico, m.tarjeta_profesional, m.telefono_medico, m.email_medico,
	       m.id_especialidad, m.created_at, m.updated_at,
	       e.id, e.nombre_especialidad
	FROM medicos m
	JOIN especialidades e ON m.id_especialidad = e.id`

func escanearMedicoDetalle(fila filaCita) (models.MedicoDetalle, error) {
	var detalle models.MedicoDetalle
	var especialidad models.EspecialidadResumen
	err := fila.Scan(&detalle.ID, &detalle.NumeroDocumentoMedico, &detalle.TipoDocumentoMedico,
		&detalle.NombresMedico, &detalle.ApellidosMedico, &detalle.TarjetaProfesional,
		&detalle.TelefonoMedico, &detalle.EmailMedico, &detalle.IDEspecialidad,
		&detalle.CreatedAt, &detalle.UpdatedAt,
		&especialidad.ID, &especialidad.NombreEspecialidad)
	if err != nil {
		return detalle, err
	}
	detalle.Especialidad = &especialidad
	return detalle, nil
}

// ObtenerMedicos lista los médicos con su especialidad cargada
func ObtenerMedicos(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(c.Context(), consultaMedicoDetalle+" ORDER BY m.id")
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener médicos"))
	}
	defer rows.Close()

	medicos := []models.MedicoDetalle{}
	for rows.Next() {
		detalle, err := escanearMedicoDetalle(rows)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener médicos"))
		}
		medicos = append(medicos, detalle)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener médicos"))
	}

	return c.JSON(Exito(medicos, "Lista de médicos obtenida correctamente"))
}

// CrearMedico registra un nuevo médico
func CrearMedico(c *fiber.Ctx) error {
	var req models.MedicoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	ctx := c.Context()
	errores, err := validarMedico(ctx, req, true, 0)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el médico"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	var m models.Medico
	m.NumeroDocumentoMedico = *req.NumeroDocumentoMedico
	m.TipoDocumentoMedico = *req.TipoDocumentoMedico
	m.NombresMedico = *req.NombresMedico
	m.ApellidosMedico = *req.ApellidosMedico
	m.TarjetaProfesional = *req.TarjetaProfesional
	m.TelefonoMedico = req.TelefonoMedico
	m.EmailMedico = req.EmailMedico
	m.IDEspecialidad = *req.IDEspecialidad

	err = database.GetDB().QueryRow(ctx,
		`INSERT INTO medicos (numero_documento_medico, tipo_documento_medico, nombres_medico,
		    apellidos_medico, tarjeta_profesional, telefono_medico, email_medico, id_especialidad)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		m.NumeroDocumentoMedico, m.TipoDocumentoMedico, m.NombresMedico, m.ApellidosMedico,
		m.TarjetaProfesional, m.TelefonoMedico, m.EmailMedico, m.IDEspecialidad).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el médico"))
	}

	return c.Status(201).JSON(Exito(m, "Médico creado correctamente"))
}

// ObtenerMedicoPorID devuelve un médico con su especialidad
func ObtenerMedicoPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	fila := database.GetDB().QueryRow(c.Context(), consultaMedicoDetalle+" WHERE m.id = $1", id)
	detalle, err := escanearMedicoDetalle(fila)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.Status(404).JSON(Fallo("Médico no encontrado"))
	}
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener el médico"))
	}

	return c.JSON(Exito(detalle, "Médico encontrado"))
}

// ActualizarMedico aplica una actualización parcial
func ActualizarMedico(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	ctx := c.Context()
	existe, err := existeMedico(ctx, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el médico"))
	}
	if !existe {
		return c.Status(404).JSON(Fallo("Médico no encontrado"))
	}

	var req models.MedicoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	errores, err := validarMedico(ctx, req, false, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el médico"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	cambios := map[string]interface{}{}
	if req.NumeroDocumentoMedico != nil {
		cambios["numero_documento_medico"] = *req.NumeroDocumentoMedico
	}
	if req.TipoDocumentoMedico != nil {
		cambios["tipo_documento_medico"] = *req.TipoDocumentoMedico
	}
	if req.NombresMedico != nil {
		cambios["nombres_medico"] = *req.NombresMedico
	}
	if req.ApellidosMedico != nil {
		cambios["apellidos_medico"] = *req.ApellidosMedico
	}
	if req.TarjetaProfesional != nil {
		cambios["tarjeta_profesional"] = *req.TarjetaProfesional
	}
	if req.TelefonoMedico != nil {
		cambios["telefono_medico"] = *req.TelefonoMedico
	}
	if req.EmailMedico != nil {
		cambios["email_medico"] = *req.EmailMedico
	}
	if req.IDEspecialidad != nil {
		cambios["id_especialidad"] = *req.IDEspecialidad
	}

	if err := actualizarFila(ctx, "medicos", id, cambios); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el médico"))
	}

	fila := database.GetDB().QueryRow(ctx, consultaMedicoDetalle+" WHERE m.id = $1", id)
	detalle, err := escanearMedicoDetalle(fila)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el médico"))
	}

	return c.JSON(Exito(detalle, "Médico actualizado correctamente"))
}

// EliminarMedico elimina un médico. Sus citas se eliminan en cascada y su
// cuenta de usuario queda con la referencia en null.
func EliminarMedico(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	etiqueta, err := database.GetDB().Exec(c.Context(), "DELETE FROM medicos WHERE id = $1", id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al eliminar el médico"))
	}
	if etiqueta.RowsAffected() == 0 {
		return c.Status(404).JSON(Fallo("Médico no encontrado"))
	}

	return c.JSON(Respuesta{Status: true, Message: "Médico eliminado correctamente"})
}

// MedicosPorEspecialidad lista los médicos de una especialidad. El resultado
// vacío se responde 404, igual que el rango de fechas de citas.
func MedicosPorEspecialidad(c *fiber.Ctx) error {
	ctx := c.Context()

	idEspecialidad, err := strconv.Atoi(c.Params("id_especialidad"))
	especialidadValida := err == nil
	if especialidadValida {
		existe, err := existeEspecialidad(ctx, idEspecialidad)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener médicos"))
		}
		especialidadValida = existe
	}
	if !especialidadValida {
		errores := ErroresValidacion{}
		errores.Agregar("id_especialidad", "La especialidad seleccionada no es válida.")
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	rows, err := database.GetDB().Query(ctx,
		consultaMedicoDetalle+" WHERE m.id_especialidad = $1 ORDER BY m.id", idEspecialidad)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener médicos"))
	}
	defer rows.Close()

	medicos := []models.MedicoDetalle{}
	for rows.Next() {
		detalle, err := escanearMedicoDetalle(rows)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener médicos"))
		}
		medicos = append(medicos, detalle)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener médicos"))
	}

	if len(medicos) == 0 {
		return c.Status(404).JSON(Respuesta{
			Status:  false,
			Data:    medicos,
			Message: "No se encontraron médicos para la especialidad indicada.",
		})
	}

	return c.JSON(Exito(medicos, "Médicos por especialidad obtenidos correctamente."))
}
