package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

// Código de Postgres para violación de llave foránea
const codigoViolacionFK = "23503"

// validarEspecialidad acumula los errores de los campos presentes
func validarEspecialidad(ctx context.Context, req models.EspecialidadRequest, esCreacion bool, ignorarID int) (ErroresValidacion, error) {
	errores := ErroresValidacion{}

	if req.NombreEspecialidad == nil {
		if esCreacion {
			errores.Agregar("nombre_especialidad", "El nombre de la especialidad es obligatorio.")
		}
	} else if *req.NombreEspecialidad == "" {
		errores.Agregar("nombre_especialidad", "El nombre de la especialidad es obligatorio.")
	} else if len(*req.NombreEspecialidad) > 100 {
		errores.Agregar("nombre_especialidad", "El nombre de la especialidad no puede superar 100 caracteres.")
	} else if ocupada, err := columnaOcupada(ctx,
		"SELECT EXISTS(SELECT 1 FROM especialidades WHERE nombre_especialidad = $1 AND id <> $2)",
		*req.NombreEspecialidad, ignorarID); err != nil {
		return nil, err
	} else if ocupada {
		errores.Agregar("nombre_especialidad", "El nombre de la especialidad ya está registrado.")
	}

	return errores, nil
}

// ObtenerEspecialidades lista todas las especialidades
func ObtenerEspecialidades(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(c.Context(), `
		SELECT id, nombre_especialidad, descripcion_especialidad, created_at, updated_at
		FROM especialidades ORDER BY id`)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener especialidades"))
	}
	defer rows.Close()

	especialidades := []models.Especialidad{}
	for rows.Next() {
		var e models.Especialidad
		if err := rows.Scan(&e.ID, &e.NombreEspecialidad, &e.DescripcionEspecialidad,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener especialidades"))
		}
		especialidades = append(especialidades, e)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener especialidades"))
	}

	return c.JSON(Exito(especialidades, "Lista de especialidades obtenida correctamente"))
}

// CrearEspecialidad registra una nueva especialidad
func CrearEspecialidad(c *fiber.Ctx) error {
	var req models.EspecialidadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	ctx := c.Context()
	errores, err := validarEspecialidad(ctx, req, true, 0)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear la especialidad"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	var e models.Especialidad
	e.NombreEspecialidad = *req.NombreEspecialidad
	e.DescripcionEspecialidad = req.DescripcionEspecialidad

	err = database.GetDB().QueryRow(ctx,
		`INSERT INTO especialidades (nombre_especialidad, descripcion_especialidad)
		 VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		e.NombreEspecialidad, e.DescripcionEspecialidad).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear la especialidad"))
	}

	return c.Status(201).JSON(Exito(e, "Especialidad creada correctamente"))
}

// ObtenerEspecialidadPorID devuelve una especialidad
func ObtenerEspecialidadPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	var e models.Especialidad
	err = database.GetDB().QueryRow(c.Context(), `
		SELECT id, nombre_especialidad, descripcion_especialidad, created_at, updated_at
		FROM especialidades WHERE id = $1`, id).
		Scan(&e.ID, &e.NombreEspecialidad, &e.DescripcionEspecialidad, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.Status(404).JSON(Fallo("Especialidad no encontrada"))
	}
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener la especialidad"))
	}

	return c.JSON(Exito(e, "Especialidad encontrada"))
}

// ActualizarEspecialidad aplica una actualización parcial
func ActualizarEspecialidad(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	ctx := c.Context()
	existe, err := existeEspecialidad(ctx, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la especialidad"))
	}
	if !existe {
		return c.Status(404).JSON(Fallo("Especialidad no encontrada"))
	}

	var req models.EspecialidadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	errores, err := validarEspecialidad(ctx, req, false, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la especialidad"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	cambios := map[string]interface{}{}
	if req.NombreEspecialidad != nil {
		cambios["nombre_especialidad"] = *req.NombreEspecialidad
	}
	if req.DescripcionEspecialidad != nil {
		cambios["descripcion_especialidad"] = *req.DescripcionEspecialidad
	}
	if err := actualizarFila(ctx, "especialidades", id, cambios); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la especialidad"))
	}

	var e models.Especialidad
	err = database.GetDB().QueryRow(ctx, `
		SELECT id, nombre_especialidad, descripcion_especialidad, created_at, updated_at
		FROM especialidades WHERE id = $1`, id).
		Scan(&e.ID, &e.NombreEspecialidad, &e.DescripcionEspecialidad, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la especialidad"))
	}

	return c.JSON(Exito(e, "Especialidad actualizada correctamente"))
}

// EliminarEspecialidad elimina una especialidad. La restricción de llave
// foránea de medicos impide borrar una especialidad con médicos asociados;
// ese caso se responde 409. Las citas de la especialidad sí se eliminan en
// cascada.
func EliminarEspecialidad(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	etiqueta, err := database.GetDB().Exec(c.Context(),
		"DELETE FROM especialidades WHERE id = $1", id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codigoViolacionFK {
			return c.Status(409).JSON(Fallo(
				"No se pudo eliminar la especialidad, probablemente tiene médicos asociados."))
		}
		return c.Status(500).JSON(Fallo("Error al eliminar la especialidad"))
	}
	if etiqueta.RowsAffected() == 0 {
		return c.Status(404).JSON(Fallo("Especialidad no encontrada"))
	}

	return c.JSON(Respuesta{Status: true, Message: "Especialidad eliminada correctamente"})
}

// ConteoCitasPorEspecialidad agrupa las citas por especialidad. Usa LEFT JOIN
// para incluir con conteo cero las especialidades sin citas; ordena por total
// descendente y nombre ascendente como desempate estable.
func ConteoCitasPorEspecialidad(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(c.Context(), `
		SELECT e.nombre_especialidad, COUNT(c.id) AS total_citas
		FROM especialidades e
		LEFT JOIN citas c ON c.id_especialidad_cita = e.id
		GROUP BY e.id, e.nombre_especialidad
		ORDER BY total_citas DESC, e.nombre_especialidad ASC`)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener el conteo de citas"))
	}
	defer rows.Close()

	conteo := []models.ConteoEspecialidad{}
	for rows.Next() {
		var fila models.ConteoEspecialidad
		if err := rows.Scan(&fila.NombreEspecialidad, &fila.TotalCitas); err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener el conteo de citas"))
		}
		conteo = append(conteo, fila)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener el conteo de citas"))
	}

	return c.JSON(Exito(conteo, "Conteo de citas por especialidad obtenido correctamente."))
}
