package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

// Tamaño de página fijo del listado de citas
const citasPorPagina = 15

const consultaCitaDetalle = `
	SELECT c.id, c.id_paciente, c.id_medico, c.id_especialidad_cita, c.fecha_hora_cita,
	       c.estado_cita, c.motivo_cita, c.observaciones_cita, c.created_at, c.updated_at,
	       p.id, p.numero_documento_paciente, p.nombres_paciente, p.apellidos_paciente,
	       m.id, m.nombres_medico, m.apellidos_medico, m.tarjeta_profesional, m.id_especialidad,
	       e.id, e.nombre_especialidad
	FROM citas c
	JOIN pacientes p ON c.id_paciente = p.id
	JOIN medicos m ON c.id_medico = m.id
	JOIN especialidades e ON c.id_especialidad_cita = e.id`

// filaCita abstrae pgx.Row y pgx.Rows para el escaneo de citas con relaciones
type filaCita interface {
	Scan(dest ...interface{}) error
}

func escanearCitaDetalle(fila filaCita) (models.CitaDetalle, error) {
	var detalle models.CitaDetalle
	var paciente models.PacienteResumen
	var medico models.MedicoResumen
	var especialidad models.EspecialidadResumen

	err := fila.Scan(
		&detalle.ID, &detalle.IDPaciente, &detalle.IDMedico, &detalle.IDEspecialidadCita,
		&detalle.FechaHoraCita, &detalle.EstadoCita, &detalle.MotivoCita,
		&detalle.ObservacionesCita, &detalle.CreatedAt, &detalle.UpdatedAt,
		&paciente.ID, &paciente.NumeroDocumentoPaciente, &paciente.NombresPaciente,
		&paciente.ApellidosPaciente,
		&medico.ID, &medico.NombresMedico, &medico.ApellidosMedico,
		&medico.TarjetaProfesional, &medico.IDEspecialidad,
		&especialidad.ID, &especialidad.NombreEspecialidad)
	if err != nil {
		return detalle, err
	}

	detalle.Paciente = &paciente
	detalle.Medico = &medico
	detalle.Especialidad = &especialidad
	return detalle, nil
}

// validarCita acumula los errores de los campos presentes en la solicitud.
// En creación (esCreacion) los campos obligatorios deben venir; en
// actualización solo se validan los campos enviados. Un error devuelto es un
// fallo de la base de datos, no de validación.
func validarCita(ctx context.Context, req models.CitaRequest, esCreacion bool) (ErroresValidacion, error) {
	errores := ErroresValidacion{}

	if req.IDPaciente == nil {
		if esCreacion {
			errores.Agregar("id_paciente", "El paciente es obligatorio.")
		}
	} else if existe, err := existePaciente(ctx, *req.IDPaciente); err != nil {
		return nil, err
	} else if !existe {
		errores.Agregar("id_paciente", "El paciente seleccionado no existe.")
	}

	if req.IDMedico == nil {
		if esCreacion {
			errores.Agregar("id_medico", "El médico es obligatorio.")
		}
	} else if existe, err := existeMedico(ctx, *req.IDMedico); err != nil {
		return nil, err
	} else if !existe {
		errores.Agregar("id_medico", "El médico seleccionado no existe.")
	}

	if req.IDEspecialidadCita == nil {
		if esCreacion {
			errores.Agregar("id_especialidad_cita", "La especialidad es obligatoria.")
		}
	} else if existe, err := existeEspecialidad(ctx, *req.IDEspecialidadCita); err != nil {
		return nil, err
	} else if !existe {
		errores.Agregar("id_especialidad_cita", "La especialidad seleccionada no existe.")
	}

	if req.FechaHoraCita == nil {
		if esCreacion {
			errores.Agregar("fecha_hora_cita", "La fecha y hora de la cita son obligatorias.")
		}
	} else if fecha, ok := parseFechaHora(*req.FechaHoraCita); !ok {
		errores.Agregar("fecha_hora_cita", "El formato de fecha y hora debe ser AAAA-MM-DD HH:MM:SS.")
	} else if esCreacion && fecha.Before(time.Now()) {
		// Solo la creación exige fecha futura; la actualización acepta
		// reprogramar hacia el pasado.
		errores.Agregar("fecha_hora_cita", "La fecha y hora de la cita no puede ser en el pasado.")
	}

	if req.EstadoCita != nil {
		if *req.EstadoCita == "" {
			// En creación el estado en blanco cae al valor por defecto;
			// en actualización un estado presente pero vacío se rechaza.
			if !esCreacion {
				errores.Agregar("estado_cita", "El estado de la cita es obligatorio.")
			}
		} else if !models.EstadoCitaValido(*req.EstadoCita) {
			errores.Agregar("estado_cita", "El estado de la cita no es válido.")
		}
	}

	return errores, nil
}

// CrearCita registra una nueva cita médica
func CrearCita(c *fiber.Ctx) error {
	var req models.CitaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	ctx := c.Context()
	errores, err := validarCita(ctx, req, true)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear la cita"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	// TODO: verificar disponibilidad del médico para evitar citas solapadas
	fecha, _ := parseFechaHora(*req.FechaHoraCita)
	estado := models.EstadoProgramada
	if req.EstadoCita != nil && *req.EstadoCita != "" {
		estado = *req.EstadoCita
	}

	var cita models.Cita
	cita.IDPaciente = *req.IDPaciente
	cita.IDMedico = *req.IDMedico
	cita.IDEspecialidadCita = *req.IDEspecialidadCita
	cita.FechaHoraCita = models.NuevaFechaHora(fecha)
	cita.EstadoCita = estado
	cita.MotivoCita = req.MotivoCita
	cita.ObservacionesCita = req.ObservacionesCita

	err = database.GetDB().QueryRow(ctx,
		`INSERT INTO citas (id_paciente, id_medico, id_especialidad_cita, fecha_hora_cita,
		                    estado_cita, motivo_cita, observaciones_cita)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		cita.IDPaciente, cita.IDMedico, cita.IDEspecialidadCita, fecha,
		cita.EstadoCita, cita.MotivoCita, cita.ObservacionesCita).
		Scan(&cita.ID, &cita.CreatedAt, &cita.UpdatedAt)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al crear la cita"))
	}

	return c.Status(201).JSON(Exito(cita, "Cita creada correctamente"))
}

// ObtenerCitas lista las citas con filtros opcionales por estado, paciente y
// médico, ordenadas por fecha descendente y paginadas de a 15.
func ObtenerCitas(c *fiber.Ctx) error {
	ctx := c.Context()

	var condiciones []string
	var args []interface{}

	if estado := c.Query("estado_cita"); estado != "" {
		args = append(args, estado)
		condiciones = append(condiciones, fmt.Sprintf("c.estado_cita = $%d", len(args)))
	}
	if idPaciente := c.Query("id_paciente"); idPaciente != "" {
		id, err := strconv.Atoi(idPaciente)
		if err != nil {
			return c.Status(400).JSON(Fallo("El filtro id_paciente debe ser un número"))
		}
		args = append(args, id)
		condiciones = append(condiciones, fmt.Sprintf("c.id_paciente = $%d", len(args)))
	}
	if idMedico := c.Query("id_medico"); idMedico != "" {
		id, err := strconv.Atoi(idMedico)
		if err != nil {
			return c.Status(400).JSON(Fallo("El filtro id_medico debe ser un número"))
		}
		args = append(args, id)
		condiciones = append(condiciones, fmt.Sprintf("c.id_medico = $%d", len(args)))
	}

	where := ""
	if len(condiciones) > 0 {
		where = " WHERE " + strings.Join(condiciones, " AND ")
	}

	var total int
	err := database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM citas c"+where, args...).Scan(&total)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}

	pagina := c.QueryInt("page", 1)
	if pagina < 1 {
		pagina = 1
	}
	args = append(args, citasPorPagina, (pagina-1)*citasPorPagina)
	consulta := consultaCitaDetalle + where +
		fmt.Sprintf(" ORDER BY c.fecha_hora_cita DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := database.GetDB().Query(ctx, consulta, args...)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}
	defer rows.Close()

	citas := []models.CitaDetalle{}
	for rows.Next() {
		detalle, err := escanearCitaDetalle(rows)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener citas"))
		}
		citas = append(citas, detalle)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}

	return c.JSON(Exito(fiber.Map{
		"citas":      citas,
		"total":      total,
		"pagina":     pagina,
		"por_pagina": citasPorPagina,
	}, "Lista de citas obtenida correctamente"))
}

// ObtenerCitaPorID devuelve una cita con sus relaciones cargadas
func ObtenerCitaPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	fila := database.GetDB().QueryRow(c.Context(), consultaCitaDetalle+" WHERE c.id = $1", id)
	detalle, err := escanearCitaDetalle(fila)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.Status(404).JSON(Fallo("Cita no encontrada"))
	}
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener la cita"))
	}

	return c.JSON(Exito(detalle, "Cita encontrada"))
}

// ActualizarCita aplica una actualización parcial: solo los campos enviados
// se validan y se modifican.
func ActualizarCita(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	ctx := c.Context()
	var existe bool
	if err := database.GetDB().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM citas WHERE id = $1)", id).Scan(&existe); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la cita"))
	}
	if !existe {
		return c.Status(404).JSON(Fallo("Cita no encontrada"))
	}

	var req models.CitaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(Fallo("Datos inválidos"))
	}

	errores, err := validarCita(ctx, req, false)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la cita"))
	}
	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	cambios := map[string]interface{}{}
	if req.IDPaciente != nil {
		cambios["id_paciente"] = *req.IDPaciente
	}
	if req.IDMedico != nil {
		cambios["id_medico"] = *req.IDMedico
	}
	if req.IDEspecialidadCita != nil {
		cambios["id_especialidad_cita"] = *req.IDEspecialidadCita
	}
	if req.FechaHoraCita != nil {
		fecha, _ := parseFechaHora(*req.FechaHoraCita)
		cambios["fecha_hora_cita"] = fecha
	}
	if req.EstadoCita != nil {
		cambios["estado_cita"] = *req.EstadoCita
	}
	if req.MotivoCita != nil {
		cambios["motivo_cita"] = *req.MotivoCita
	}
	if req.ObservacionesCita != nil {
		cambios["observaciones_cita"] = *req.ObservacionesCita
	}

	if err := actualizarFila(ctx, "citas", id, cambios); err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la cita"))
	}

	fila := database.GetDB().QueryRow(ctx, consultaCitaDetalle+" WHERE c.id = $1", id)
	detalle, err := escanearCitaDetalle(fila)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al actualizar la cita"))
	}

	return c.JSON(Exito(detalle, "Cita actualizada correctamente"))
}

// EliminarCita elimina la cita sin condiciones: también las citas realizadas
// pueden borrarse.
func EliminarCita(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(Fallo("ID inválido"))
	}

	etiqueta, err := database.GetDB().Exec(c.Context(), "DELETE FROM citas WHERE id = $1", id)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al eliminar la cita"))
	}
	if etiqueta.RowsAffected() == 0 {
		return c.Status(404).JSON(Fallo("Cita no encontrada"))
	}

	return c.JSON(Respuesta{Status: true, Message: "Cita eliminada correctamente"})
}

// CitasPorMedicoYFechas lista las citas de un médico dentro de un rango de
// días inclusivo: desde las 00:00:00 de fecha_inicio hasta las 23:59:59 de
// fecha_fin.
func CitasPorMedicoYFechas(c *fiber.Ctx) error {
	ctx := c.Context()

	idMedico, err := strconv.Atoi(c.Params("id_medico"))
	medicoValido := err == nil
	if medicoValido {
		existe, err := existeMedico(ctx, idMedico)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener citas"))
		}
		medicoValido = existe
	}
	if !medicoValido {
		errores := ErroresValidacion{}
		errores.Agregar("id_medico", "El médico seleccionado no existe.")
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	errores := ErroresValidacion{}
	var inicio, fin time.Time

	fechaInicio := c.Query("fecha_inicio")
	if fechaInicio == "" {
		errores.Agregar("fecha_inicio", "La fecha de inicio es obligatoria.")
	} else if t, ok := parseFecha(fechaInicio); !ok {
		errores.Agregar("fecha_inicio", "Formato de fecha de inicio inválido (AAAA-MM-DD).")
	} else {
		inicio = t
	}

	fechaFin := c.Query("fecha_fin")
	if fechaFin == "" {
		errores.Agregar("fecha_fin", "La fecha de fin es obligatoria.")
	} else if t, ok := parseFecha(fechaFin); !ok {
		errores.Agregar("fecha_fin", "Formato de fecha de fin inválido (AAAA-MM-DD).")
	} else {
		fin = t
		if !inicio.IsZero() && fin.Before(inicio) {
			errores.Agregar("fecha_fin", "La fecha de fin debe ser igual o posterior a la fecha de inicio.")
		}
	}

	if errores.HayErrores() {
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	desde := inicio
	hasta := fin.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	rows, err := database.GetDB().Query(ctx, `
		SELECT c.id, c.id_paciente, c.id_medico, c.id_especialidad_cita, c.fecha_hora_cita,
		       c.estado_cita, c.motivo_cita, c.observaciones_cita, c.created_at, c.updated_at,
		       p.id, p.numero_documento_paciente, p.nombres_paciente, p.apellidos_paciente,
		       e.id, e.nombre_especialidad
		FROM citas c
		JOIN pacientes p ON c.id_paciente = p.id
		JOIN especialidades e ON c.id_especialidad_cita = e.id
		WHERE c.id_medico = $1 AND c.fecha_hora_cita BETWEEN $2 AND $3
		ORDER BY c.fecha_hora_cita ASC`, idMedico, desde, hasta)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}
	defer rows.Close()

	citas := []models.CitaDetalle{}
	for rows.Next() {
		var detalle models.CitaDetalle
		var paciente models.PacienteResumen
		var especialidad models.EspecialidadResumen
		err := rows.Scan(
			&detalle.ID, &detalle.IDPaciente, &detalle.IDMedico, &detalle.IDEspecialidadCita,
			&detalle.FechaHoraCita, &detalle.EstadoCita, &detalle.MotivoCita,
			&detalle.ObservacionesCita, &detalle.CreatedAt, &detalle.UpdatedAt,
			&paciente.ID, &paciente.NumeroDocumentoPaciente, &paciente.NombresPaciente,
			&paciente.ApellidosPaciente,
			&especialidad.ID, &especialidad.NombreEspecialidad)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener citas"))
		}
		detalle.Paciente = &paciente
		detalle.Especialidad = &especialidad
		citas = append(citas, detalle)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}

	// A diferencia de las próximas citas de un paciente, aquí el resultado
	// vacío se responde como 404.
	if len(citas) == 0 {
		return c.Status(404).JSON(Respuesta{
			Status:  false,
			Data:    citas,
			Message: "No se encontraron citas para el médico en el rango de fechas especificado.",
		})
	}

	return c.JSON(Exito(citas, "Citas del médico obtenidas correctamente."))
}

// ProximasCitasPorPaciente lista las citas Programadas de un paciente desde
// el instante actual en adelante. Un resultado vacío es un estado normal y se
// responde 200 con lista vacía.
func ProximasCitasPorPaciente(c *fiber.Ctx) error {
	ctx := c.Context()

	idPaciente, err := strconv.Atoi(c.Params("id_paciente"))
	pacienteValido := err == nil
	if pacienteValido {
		existe, err := existePaciente(ctx, idPaciente)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener citas"))
		}
		pacienteValido = existe
	}
	if !pacienteValido {
		errores := ErroresValidacion{}
		errores.Agregar("id_paciente", "El paciente seleccionado no existe.")
		return c.Status(400).JSON(FalloValidacion(errores))
	}

	rows, err := database.GetDB().Query(ctx, `
		SELECT c.id, c.id_paciente, c.id_medico, c.id_especialidad_cita, c.fecha_hora_cita,
		       c.estado_cita, c.motivo_cita, c.observaciones_cita, c.created_at, c.updated_at,
		       m.id, m.nombres_medico, m.apellidos_medico, m.tarjeta_profesional, m.id_especialidad,
		       em.id, em.nombre_especialidad,
		       e.id, e.nombre_especialidad
		FROM citas c
		JOIN medicos m ON c.id_medico = m.id
		JOIN especialidades em ON m.id_especialidad = em.id
		JOIN especialidades e ON c.id_especialidad_cita = e.id
		WHERE c.id_paciente = $1 AND c.estado_cita = $2 AND c.fecha_hora_cita >= NOW()
		ORDER BY c.fecha_hora_cita ASC`, idPaciente, models.EstadoProgramada)
	if err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}
	defer rows.Close()

	citas := []models.CitaDetalle{}
	for rows.Next() {
		var detalle models.CitaDetalle
		var medico models.MedicoResumen
		var espMedico models.EspecialidadResumen
		var especialidad models.EspecialidadResumen
		err := rows.Scan(
			&detalle.ID, &detalle.IDPaciente, &detalle.IDMedico, &detalle.IDEspecialidadCita,
			&detalle.FechaHoraCita, &detalle.EstadoCita, &detalle.MotivoCita,
			&detalle.ObservacionesCita, &detalle.CreatedAt, &detalle.UpdatedAt,
			&medico.ID, &medico.NombresMedico, &medico.ApellidosMedico,
			&medico.TarjetaProfesional, &medico.IDEspecialidad,
			&espMedico.ID, &espMedico.NombreEspecialidad,
			&especialidad.ID, &especialidad.NombreEspecialidad)
		if err != nil {
			return c.Status(500).JSON(Fallo("Error al obtener citas"))
		}
		medico.Especialidad = &espMedico
		detalle.Medico = &medico
		detalle.Especialidad = &especialidad
		citas = append(citas, detalle)
	}
	if err := rows.Err(); err != nil {
		return c.Status(500).JSON(Fallo("Error al obtener citas"))
	}

	if len(citas) == 0 {
		return c.JSON(Respuesta{
			Status:  true,
			Data:    citas,
			Message: "El paciente no tiene próximas citas programadas.",
		})
	}

	return c.JSON(Exito(citas, "Próximas citas del paciente obtenidas correctamente."))
}
