package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

// Límite por defecto del reporte de pacientes con más citas
const limiteTopCitas = 5

// validarPaciente acumula los errores de los campos presentes
func validarPaciente(ctx context.Context, req models.PacienteRequest, esCreacion bool, ignorarID int) (ErroresValidacion, error) {
	errores := ErroresValidacion{}

	if req.NumeroDocumentoPaciente == nil {
		if esCreacion {
			errores.Agregar("numero_documento_paciente", "El número de documento es obligatorio.")
		}
	} else if *req.NumeroDocumentoPaciente == "" {
		errores.Agregar("numero_documento_paciente", "El número de documento es obligatorio.")
	} else if len(*req.NumeroDocumentoPaciente) > 20 {
		errores.Agregar("numero_documento_paciente", "El número de documento no puede superar 20 caracteres.")
	} else if ocupada, err := columnaOcupada(ctx,
		"SELECT EXISTS(SELECT 1 FROM pacientes WHERE numero_documento_paciente = $1 AND id <> $2)",
		*req.NumeroDocumentoPaciente, ignorarID); err != nil {
		return nil, err
	} else if ocupada {
		errores.Agregar("numero_documento_paciente", "Este número de documento ya está registrado.")
	}

	if req.TipoDocumentoPaciente == nil {
		if esCreacion {
			errores.Agregar("tipo_documento_paciente", "El tipo de documento es obligatorio.")
		}
	} else if *req.TipoDocumentoPaciente == "" {
		errores.Agregar("tipo_documento_paciente", "El tipo de documento es obligatorio.")
	}

	if req.NombresPaciente == nil {
		if esCreacion {
			errores.Agregar("nombres_paciente", "Los nombres del paciente son obligatorios.")
		}
	} else if *req.NombresPaciente == "" {
		errores.Agregar("nombres_paciente", "Los nombres del paciente son obligatorios.")
	}

	if req.ApellidosPaciente == nil {
		if esCreacion {
			errores.Agregar("apellidos_paciente", "Los apellidos del paciente son obligatorios.")
		}
	} else if *req.ApellidosPaciente == "" {
		errores.Agregar("apellidos_paciente", "Los apellidos del paciente son obligatorios.")
	}

	if req.FechaNacimientoPaciente == nil {
		if esCreacion {
			errores.Agregar("fecha_nacimiento_paciente", "La fecha de nacimiento es obligatoria.")
		}
	} else if _, ok := parseFecha(*req.FechaNacimientoPaciente); !ok {
		errores.Agregar("fecha_nacimiento_paciente", "La fecha de nacimiento debe tener el formato AAAA-MM-DD.")
	}

	if req.EmailPaciente != nil && *req.EmailPaciente != "" {
		if !emailValido(*req.EmailPaciente) {
			errores.Agregar("email_paciente", "El formato del correo electrónico no es válido.")
		} else if ocupada, err := columnaOcupada(ctx,
			"SELECT EXISTS(SELECT 1 FROM pacientes WHERE email_paciente = $1 AND id <> $2)",
			*req.EmailPaciente, ignorarID); err != nil {
			return nil, err
		} else if ocupada {
			errores.Agregar("email_paciente", "Este correo electrónico ya está registrado para otro paciente.")
		}
	}

	return errores, nil
}

func escanearPaciente(fila filaCita, p *models.Paciente) error {
	var nacimiento time.Time
	err := fila.Scan(&p.ID, &p.NumeroDocumentoPaciente, &p.TipoDocumentoPaciente,
		&p.NombresPaciente, &p.ApellidosPaciente, &nacimiento, &p.GeneroPaciente,
		&p.DireccionPaciente, &p.TelefonoPaciente, &p.EmailPaciente, &p.EPSPaciente,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	p.FechaNacimientoPaciente = nacimiento.Format(models.FormatoFecha)
	return nil
}

const columnasPaciente = `id, numero_documento_paciente, tipo_documento_paciente,
	nombres_paciente, apellidos_paciente, fecha_nacimiento_paciente, genero_paciente,
	direccion_paciente, telefono_paciente, email_paciente, eps_paciente,
	created_at, updated_at`

// ObtenerPacientes lista los pacientes ordenados alfabéticamente
func ObtenerPacientes(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(c.Context(),
		"SELECT "+columnasPaciente+" FROM pacientes ORDER BY apellidos_paciente ASC, nombres_paciente ASC")
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener pacientes"))
	}
	defer rows.Close()

	pacientes := []models.Paciente{}
	for rows.Next() {
		var p models.Paciente
		if err := escanearPaciente(rows, &p); err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener pacientes"))
		}
		pacientes = append(pacientes, p)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener pacientes"))
	}

	return c.JSON(Exito(pacientes, "Lista de pacientes obtenida correctamente"))
}

// CrearPaciente registra un nuevo paciente
func CrearPaciente(c *fiber.Ctx) error {
	var req models.PacienteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	ctx := c.Context()
	errores, err := validarPaciente(ctx, req, true, 0)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el paciente"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	nacimiento, _ := parseFecha(*req.FechaNacimientoPaciente)

	var p models.Paciente
	p.NumeroDocumentoPaciente = *req.NumeroDocumentoPaciente
	p.TipoDocumentoPaciente = *req.TipoDocumentoPaciente
	p.NombresPaciente = *req.NombresPaciente
	p.ApellidosPaciente = *req.ApellidosPaciente
	p.FechaNacimientoPaciente = nacimiento.Format(models.FormatoFecha)
	p.GeneroPaciente = req.GeneroPaciente
	p.DireccionPaciente = req.DireccionPaciente
	p.TelefonoPaciente = req.TelefonoPaciente
	p.EmailPaciente = req.EmailPaciente
	p.EPSPaciente = req.EPSPaciente

	err = database.GetDB().QueryRow(ctx,
		`INSERT INTO pacientes (numero_documento_paciente, tipo_documento_paciente,
		    nombres_paciente, apellidos_paciente, fecha_nacimiento_paciente,
		    genero_paciente, direccion_paciente, telefono_paciente, email_paciente, eps_paciente)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		p.NumeroDocumentoPaciente, p.TipoDocumentoPaciente, p.NombresPaciente,
		p.ApellidosPaciente, nacimiento, p.GeneroPaciente, p.DireccionPaciente,
		p.TelefonoPaciente, p.EmailPaciente, p.EPSPaciente).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear el paciente"))
	}

	return c.Status(201).JSON(Exito(p, "Paciente creado correctamente"))
}

// ObtenerPacientePorID devuelve un paciente
func ObtenerPacientePorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	var p models.Paciente
	fila := database.GetDB().QueryRow(c.Context(),
		"SELECT "+columnasPaciente+" FROM pacientes WHERE id = $1", id)
	err = escanearPaciente(fila, &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.Status(404).JSON(Fallo("Paciente no encontrado"))
	}
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener el paciente"))
	}

	return c.JSON(Exito(p, "Paciente encontrado"))
}

// ActualizarPaciente aplica una actualización parcial
func ActualizarPaciente(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	ctx := c.Context()
	existe, err := existePaciente(ctx, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el paciente"))
	}
	if !existe {
		return c.Status(404).JSON(Fallo("Paciente no encontrado"))
	}

	var req models.PacienteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	errores, err := validarPaciente(ctx, req, false, id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el paciente"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	cambios := map[string]interface{}{}
	if req.NumeroDocumentoPaciente != nil {
		cambios["numero_documento_paciente"] = *req.NumeroDocumentoPaciente
	}
	if req.TipoDocumentoPaciente != nil {
		cambios["tipo_documento_paciente"] = *req.TipoDocumentoPaciente
	}
	if req.NombresPaciente != nil {
		cambios["nombres_paciente"] = *req.NombresPaciente
	}
	if req.ApellidosPaciente != nil {
		cambios["apellidos_paciente"] = *req.ApellidosPaciente
	}
	if req.FechaNacimientoPaciente != nil {
		nacimiento, _ := parseFecha(*req.FechaNacimientoPaciente)
		cambios["fecha_nacimiento_paciente"] = nacimiento
	}
	if req.GeneroPaciente != nil {
		cambios["genero_paciente"] = *req.GeneroPaciente
	}
	if req.DireccionPaciente != nil {
		cambios["direccion_paciente"] = *req.DireccionPaciente
	}
	if req.TelefonoPaciente != nil {
		cambios["telefono_paciente"] = *req.TelefonoPaciente
	}
	if req.EmailPaciente != nil {
		cambios["email_paciente"] = *req.EmailPaciente
	}
	if req.EPSPaciente != nil {
		cambios["eps_paciente"] = *req.EPSPaciente
	}

	if err := actualizarFila(ctx, "pacientes", id, cambios); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el paciente"))
	}

	var p models.Paciente
	fila := database.GetDB().QueryRow(ctx,
		"SELECT "+columnasPaciente+" FROM pacientes WHERE id = $1", id)
	if err := escanearPaciente(fila, &p); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar el paciente"))
	}

	return c.JSON(Exito(p, "Paciente actualizado correctamente"))
}

// EliminarPaciente elimina un paciente. Sus citas se eliminan en cascada y
// su cuenta de usuario queda con la referencia en null.
func EliminarPaciente(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	etiqueta, err := database.GetDB().Exec(c.Context(), "DELETE FROM pacientes WHERE id = $1", id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al eliminar el paciente."))
	}
	if etiqueta.RowsAffected() == 0 {
		return c.Status(404).JSON(Fallo("Paciente no encontrado"))
	}

	return c.JSON(Respuesta{Status: true, Message: "Paciente eliminado correctamente"})
}

// proyectarPacientesPorRanking reordena los pacientes recuperados según el
// ranking de conteos y les adjunta su total. La segunda consulta no garantiza
// orden, así que nunca se confía en él: el orden lo fija la lista de ids.
func proyectarPacientesPorRanking(ids []int, conteos map[int]int, pacientes []models.Paciente) []models.PacienteConCitas {
	porID := make(map[int]models.Paciente, len(pacientes))
	for _, p := range pacientes {
		porID[p.ID] = p
	}

	resultado := make([]models.PacienteConCitas, 0, len(ids))
	for _, id := range ids {
		p, ok := porID[id]
		if !ok {
			continue
		}
		resultado = append(resultado, models.PacienteConCitas{Paciente: p, TotalCitas: conteos[id]})
	}
	return resultado
}

// PacientesConMasCitas devuelve los pacientes con más citas: primero los
// conteos ordenados (total desc, id asc como desempate estable), luego los
// registros completos re-proyectados en ese mismo orden.
func PacientesConMasCitas(c *fiber.Ctx) error {
	ctx := c.Context()
	errores := ErroresValidacion{}

	limite := limiteTopCitas
	if valor := c.Query("limite"); valor != "" {
		n, err := strconv.Atoi(valor)
		if err != nil || n < 1 {
			errores.Agregar("limite", "El límite debe ser un entero mayor o igual a 1.")
		} else {
			limite = n
		}
	}

	estado := c.Query("estado_cita")
	if len(estado) > 50 {
		errores.Agregar("estado_cita", "El estado de la cita no puede superar 50 caracteres.")
	}

	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	consulta := `
		SELECT id_paciente, COUNT(id) AS total_citas
		FROM citas
		WHERE id_paciente IS NOT NULL`
	args := []interface{}{}
	if estado != "" {
		args = append(args, estado)
		consulta += " AND estado_cita = $1"
	}
	args = append(args, limite)
	consulta += ` GROUP BY id_paciente
		ORDER BY total_citas DESC, id_paciente ASC
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := database.GetDB().Query(ctx, consulta, args...)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener pacientes con más citas"))
	}
	defer rows.Close()

	var ids []int
	conteos := map[int]int{}
	for rows.Next() {
		var id, total int
		if err := rows.Scan(&id, &total); err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener pacientes con más citas"))
		}
		ids = append(ids, id)
		conteos[id] = total
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener pacientes con más citas"))
	}
	rows.Close()

	if len(ids) == 0 {
		return c.JSON(Exito([]models.PacienteConCitas{},
			"No se encontraron pacientes con citas para los criterios indicados."))
	}

	filas, err := database.GetDB().Query(ctx,
		"SELECT "+columnasPaciente+" FROM pacientes WHERE id = ANY($1)", ids)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener pacientes con más citas"))
	}
	defer filas.Close()

	pacientes := []models.Paciente{}
	for filas.Next() {
		var p models.Paciente
		if err := escanearPaciente(filas, &p); err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener pacientes con más citas"))
		}
		pacientes = append(pacientes, p)
	}
	if err := filas.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener pacientes con más citas"))
	}

	resultado := proyectarPacientesPorRanking(ids, conteos, pacientes)
	return c.JSON(Exito(resultado, "Pacientes con más citas obtenidos correctamente."))
}
