package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/clinicaeps/citas-backend/handlers"
	"github.com/clinicaeps/citas-backend/middleware"
)

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App) {
	// Middleware global
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(middleware.RegistroMiddleware())

	// Ruta de salud del sistema
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "API de Gestión de Citas Médicas",
			"version": "1.0.0",
		})
	})

	// Grupo de API
	api := app.Group("/api", middleware.LimitadorPorDefecto())

	// --- RUTAS DE PACIENTES ---
	// Las rutas literales van antes de /:id para que Fiber no las capture
	// como parámetro
	pacientes := api.Group("/pacientes")
	pacientes.Get("/top-citas", handlers.PacientesConMasCitas)
	pacientes.Get("/", handlers.ObtenerPacientes)
	pacientes.Post("/", handlers.CrearPaciente)
	pacientes.Get("/:id", handlers.ObtenerPacientePorID)
	pacientes.Put("/:id", handlers.ActualizarPaciente)
	pacientes.Patch("/:id", handlers.ActualizarPaciente)
	pacientes.Delete("/:id", handlers.EliminarPaciente)

	// --- RUTAS DE MÉDICOS ---
	medicos := api.Group("/medicos")
	medicos.Get("/por-especialidad/:id_especialidad", handlers.MedicosPorEspecialidad)
	medicos.Get("/", handlers.ObtenerMedicos)
	medicos.Post("/", handlers.CrearMedico)
	medicos.Get("/:id", handlers.ObtenerMedicoPorID)
	medicos.Put("/:id", handlers.ActualizarMedico)
	medicos.Patch("/:id", handlers.ActualizarMedico)
	medicos.Delete("/:id", handlers.EliminarMedico)

	// --- RUTAS DE ESPECIALIDADES ---
	especialidades := api.Group("/especialidades")
	especialidades.Get("/conteo-citas", handlers.ConteoCitasPorEspecialidad)
	especialidades.Get("/", handlers.ObtenerEspecialidades)
	especialidades.Post("/", handlers.CrearEspecialidad)
	especialidades.Get("/:id", handlers.ObtenerEspecialidadPorID)
	especialidades.Put("/:id", handlers.ActualizarEspecialidad)
	especialidades.Patch("/:id", handlers.ActualizarEspecialidad)
	especialidades.Delete("/:id", handlers.EliminarEspecialidad)

	// --- RUTAS DE CITAS ---
	citas := api.Group("/citas")
	citas.Get("/medico/:id_medico/rango-fechas", handlers.CitasPorMedicoYFechas)
	citas.Get("/paciente/:id_paciente/proximas", handlers.ProximasCitasPorPaciente)
	citas.Get("/", handlers.ObtenerCitas)
	citas.Post("/", handlers.CrearCita)
	citas.Get("/:id", handlers.ObtenerCitaPorID)
	citas.Put("/:id", handlers.ActualizarCita)
	citas.Patch("/:id", handlers.ActualizarCita)
	citas.Delete("/:id", handlers.EliminarCita)

	// --- RUTAS DE USUARIOS ---
	usuarios := api.Group("/usuarios")
	usuarios.Get("/", handlers.ObtenerUsuarios)
	usuarios.Post("/", middleware.LimitadorEstricto(), handlers.CrearUsuario)
	usuarios.Get("/:id", handlers.ObtenerUsuarioPorID)
	usuarios.Put("/:id", handlers.ActualizarUsuario)
	usuarios.Patch("/:id", handlers.ActualizarUsuario)
	usuarios.Delete("/:id", handlers.EliminarUsuario)
}
