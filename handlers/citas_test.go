package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clinicaeps/citas-backend/database"
)

var conectarUnaVez sync.Once

// appDePrueba arma una app de Fiber con las rutas bajo prueba. Las pruebas
// de integración se omiten cuando no hay una base de datos disponible.
func appDePrueba(t *testing.T) *fiber.App {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL no está definida; se omiten las pruebas de integración")
	}
	conectarUnaVez.Do(database.ConnectDB)

	app := fiber.New()
	app.Get("/pacientes/top-citas", PacientesConMasCitas)
	app.Post("/pacientes", CrearPaciente)
	app.Post("/medicos", CrearMedico)
	app.Get("/especialidades/conteo-citas", ConteoCitasPorEspecialidad)
	app.Post("/especialidades", CrearEspecialidad)
	app.Delete("/especialidades/:id", EliminarEspecialidad)
	app.Get("/citas/medico/:id_medico/rango-fechas", CitasPorMedicoYFechas)
	app.Get("/citas/paciente/:id_paciente/proximas", ProximasCitasPorPaciente)
	app.Get("/citas", ObtenerCitas)
	app.Post("/citas", CrearCita)
	app.Get("/citas/:id", ObtenerCitaPorID)
	app.Put("/citas/:id", ActualizarCita)
	return app
}

// peticionJSON ejecuta una petición contra la app y decodifica la envoltura
func peticionJSON(t *testing.T, app *fiber.App, metodo, ruta string, cuerpo interface{}) (int, map[string]interface{}) {
	t.Helper()

	var lector *bytes.Reader
	if cuerpo != nil {
		b, err := json.Marshal(cuerpo)
		if err != nil {
			t.Fatalf("no se pudo serializar el cuerpo: %v", err)
		}
		lector = bytes.NewReader(b)
	} else {
		lector = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(metodo, ruta, lector)
	if err != nil {
		t.Fatalf("no se pudo crear la petición: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("la petición %s %s falló: %v", metodo, ruta, err)
	}
	defer resp.Body.Close()

	var decodificado map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decodificado); err != nil {
		t.Fatalf("respuesta no es JSON válido: %v", err)
	}
	return resp.StatusCode, decodificado
}

func idDeRespuesta(t *testing.T, respuesta map[string]interface{}) int {
	t.Helper()
	data, ok := respuesta["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("la respuesta no trae data: %v", respuesta)
	}
	id, ok := data["id"].(float64)
	if !ok {
		t.Fatalf("data no trae id: %v", data)
	}
	return int(id)
}

// sufijo genera valores únicos para las columnas con restricción de unicidad
func sufijo() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func fechaFutura(dias int) string {
	return time.Now().AddDate(0, 0, dias).Format("2006-01-02") + " 10:30:00"
}

func crearEspecialidadDePrueba(t *testing.T, app *fiber.App) (int, string) {
	t.Helper()
	nombre := "Especialidad " + sufijo()
	codigo, respuesta := peticionJSON(t, app, "POST", "/especialidades", map[string]interface{}{
		"nombre_especialidad": nombre,
	})
	if codigo != 201 {
		t.Fatalf("no se pudo crear la especialidad de prueba: %d %v", codigo, respuesta)
	}
	return idDeRespuesta(t, respuesta), nombre
}

func crearMedicoDePrueba(t *testing.T, app *fiber.App, idEspecialidad int) int {
	t.Helper()
	s := sufijo()
	codigo, respuesta := peticionJSON(t, app, "POST", "/medicos", map[string]interface{}{
		"numero_documento_medico": "M" + s[len(s)-15:],
		"tipo_documento_medico":   "CC",
		"nombres_medico":          "Laura",
		"apellidos_medico":        "Gómez",
		"tarjeta_profesional":     "TP-" + s,
		"id_especialidad":         idEspecialidad,
	})
	if codigo != 201 {
		t.Fatalf("no se pudo crear el médico de prueba: %d %v", codigo, respuesta)
	}
	return idDeRespuesta(t, respuesta)
}

func crearPacienteDePrueba(t *testing.T, app *fiber.App) int {
	t.Helper()
	s := sufijo()
	codigo, respuesta := peticionJSON(t, app, "POST", "/pacientes", map[string]interface{}{
		"numero_documento_paciente": "P" + s[len(s)-15:],
		"tipo_documento_paciente":   "CC",
		"nombres_paciente":          "Andrés",
		"apellidos_paciente":        "Rojas",
		"fecha_nacimiento_paciente": "1990-05-20",
	})
	if codigo != 201 {
		t.Fatalf("no se pudo crear el paciente de prueba: %d %v", codigo, respuesta)
	}
	return idDeRespuesta(t, respuesta)
}

func crearCitaDePrueba(t *testing.T, app *fiber.App, idPaciente, idMedico, idEspecialidad int, estado, fecha string) int {
	t.Helper()
	cuerpo := map[string]interface{}{
		"id_paciente":          idPaciente,
		"id_medico":            idMedico,
		"id_especialidad_cita": idEspecialidad,
		"fecha_hora_cita":      fecha,
	}
	if estado != "" {
		cuerpo["estado_cita"] = estado
	}
	codigo, respuesta := peticionJSON(t, app, "POST", "/citas", cuerpo)
	if codigo != 201 {
		t.Fatalf("no se pudo crear la cita de prueba: %d %v", codigo, respuesta)
	}
	return idDeRespuesta(t, respuesta)
}

func TestCrearCitaSinEstadoQuedaProgramada(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)
	idPaciente := crearPacienteDePrueba(t, app)

	codigo, respuesta := peticionJSON(t, app, "POST", "/citas", map[string]interface{}{
		"id_paciente":          idPaciente,
		"id_medico":            idMedico,
		"id_especialidad_cita": idEspecialidad,
		"fecha_hora_cita":      fechaFutura(7),
	})

	if codigo != 201 {
		t.Fatalf("se esperaba 201, llegó %d: %v", codigo, respuesta)
	}
	data := respuesta["data"].(map[string]interface{})
	if data["estado_cita"] != "Programada" {
		t.Errorf("sin estado explícito la cita debe quedar Programada, quedó %v", data["estado_cita"])
	}
}

func TestCrearCitaConFechaPasadaEsRechazada(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)
	idPaciente := crearPacienteDePrueba(t, app)

	codigo, respuesta := peticionJSON(t, app, "POST", "/citas", map[string]interface{}{
		"id_paciente":          idPaciente,
		"id_medico":            idMedico,
		"id_especialidad_cita": idEspecialidad,
		"fecha_hora_cita":      "2020-01-01 09:00:00",
	})

	if codigo != 400 {
		t.Fatalf("se esperaba 400, llegó %d: %v", codigo, respuesta)
	}
	errores, ok := respuesta["errors"].(map[string]interface{})
	if !ok || errores["fecha_hora_cita"] == nil {
		t.Errorf("se esperaba un error sobre fecha_hora_cita: %v", respuesta)
	}
}

func TestCrearCitaAcumulaErroresDeVariosCampos(t *testing.T) {
	app := appDePrueba(t)

	codigo, respuesta := peticionJSON(t, app, "POST", "/citas", map[string]interface{}{
		"estado_cita": "Pendiente",
	})

	if codigo != 400 {
		t.Fatalf("se esperaba 400, llegó %d: %v", codigo, respuesta)
	}
	errores, ok := respuesta["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("la respuesta no trae errors: %v", respuesta)
	}
	for _, campo := range []string{"id_paciente", "id_medico", "id_especialidad_cita", "fecha_hora_cita", "estado_cita"} {
		if errores[campo] == nil {
			t.Errorf("falta el error del campo %s: %v", campo, errores)
		}
	}
}

func TestObtenerCitaInexistenteResponde404(t *testing.T) {
	app := appDePrueba(t)

	codigo, respuesta := peticionJSON(t, app, "GET", "/citas/999999999", nil)

	if codigo != 404 {
		t.Fatalf("una cita inexistente debe responder 404, llegó %d: %v", codigo, respuesta)
	}
	if respuesta["status"] != false {
		t.Errorf("status debería ser false: %v", respuesta)
	}
}

func TestActualizarCitaConEstadoVacioEsRechazado(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)
	idPaciente := crearPacienteDePrueba(t, app)
	idCita := crearCitaDePrueba(t, app, idPaciente, idMedico, idEspecialidad, "", fechaFutura(7))

	codigo, respuesta := peticionJSON(t, app, "PUT", fmt.Sprintf("/citas/%d", idCita), map[string]interface{}{
		"estado_cita": "",
	})

	if codigo != 400 {
		t.Fatalf("un estado presente pero vacío debe rechazarse, llegó %d: %v", codigo, respuesta)
	}
	errores, ok := respuesta["errors"].(map[string]interface{})
	if !ok || errores["estado_cita"] == nil {
		t.Errorf("se esperaba un error sobre estado_cita: %v", respuesta)
	}
}

func TestRangoFechasSinResultadosResponde404(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)

	ruta := fmt.Sprintf("/citas/medico/%d/rango-fechas?fecha_inicio=2026-01-01&fecha_fin=2026-01-02", idMedico)
	codigo, respuesta := peticionJSON(t, app, "GET", ruta, nil)

	if codigo != 404 {
		t.Fatalf("un rango sin citas debe responder 404, llegó %d: %v", codigo, respuesta)
	}
	if respuesta["status"] != false {
		t.Errorf("status debería ser false: %v", respuesta)
	}
	if data, ok := respuesta["data"].([]interface{}); !ok || len(data) != 0 {
		t.Errorf("data debería ser una lista vacía: %v", respuesta["data"])
	}
}

func TestRangoFechasInvertidoEsRechazado(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)

	ruta := fmt.Sprintf("/citas/medico/%d/rango-fechas?fecha_inicio=2026-02-01&fecha_fin=2026-01-01", idMedico)
	codigo, respuesta := peticionJSON(t, app, "GET", ruta, nil)

	if codigo != 400 {
		t.Fatalf("fecha_fin anterior a fecha_inicio debe responder 400, llegó %d: %v", codigo, respuesta)
	}
}

func TestProximasCitasVaciasResponde200(t *testing.T) {
	app := appDePrueba(t)
	idPaciente := crearPacienteDePrueba(t, app)

	ruta := fmt.Sprintf("/citas/paciente/%d/proximas", idPaciente)
	codigo, respuesta := peticionJSON(t, app, "GET", ruta, nil)

	if codigo != 200 {
		t.Fatalf("un paciente sin próximas citas debe responder 200, llegó %d: %v", codigo, respuesta)
	}
	if respuesta["status"] != true {
		t.Errorf("status debería ser true: %v", respuesta)
	}
	if data, ok := respuesta["data"].([]interface{}); !ok || len(data) != 0 {
		t.Errorf("data debería ser una lista vacía: %v", respuesta["data"])
	}
}

func TestProximasCitasSoloIncluyeProgramadas(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)
	idPaciente := crearPacienteDePrueba(t, app)

	idProgramada := crearCitaDePrueba(t, app, idPaciente, idMedico, idEspecialidad, "Programada", fechaFutura(7))
	crearCitaDePrueba(t, app, idPaciente, idMedico, idEspecialidad, "Realizada", fechaFutura(8))

	ruta := fmt.Sprintf("/citas/paciente/%d/proximas", idPaciente)
	codigo, respuesta := peticionJSON(t, app, "GET", ruta, nil)

	if codigo != 200 {
		t.Fatalf("se esperaba 200, llegó %d: %v", codigo, respuesta)
	}
	data, ok := respuesta["data"].([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("con una Programada y una Realizada futuras solo debe volver la Programada: %v", respuesta["data"])
	}
	cita := data[0].(map[string]interface{})
	if int(cita["id"].(float64)) != idProgramada {
		t.Errorf("se esperaba la cita %d, llegó %v", idProgramada, cita["id"])
	}
	if cita["estado_cita"] != "Programada" {
		t.Errorf("estado inesperado: %v", cita["estado_cita"])
	}
}

func TestConteoCitasPorEspecialidad(t *testing.T) {
	app := appDePrueba(t)
	idEspCitas, nombreConCitas := crearEspecialidadDePrueba(t, app)
	_, nombreSinCitas := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspCitas)
	idPaciente := crearPacienteDePrueba(t, app)
	crearCitaDePrueba(t, app, idPaciente, idMedico, idEspCitas, "", fechaFutura(7))
	crearCitaDePrueba(t, app, idPaciente, idMedico, idEspCitas, "", fechaFutura(8))

	codigo, respuesta := peticionJSON(t, app, "GET", "/especialidades/conteo-citas", nil)
	if codigo != 200 {
		t.Fatalf("se esperaba 200, llegó %d: %v", codigo, respuesta)
	}
	data, ok := respuesta["data"].([]interface{})
	if !ok {
		t.Fatalf("data no es una lista: %v", respuesta)
	}

	// Cada especialidad aparece exactamente una vez, incluidas las de
	// conteo cero, y la suma de los totales es el total de citas.
	apariciones := map[string]int{}
	totales := map[string]int{}
	suma := 0
	for _, elemento := range data {
		fila := elemento.(map[string]interface{})
		nombre := fila["nombre_especialidad"].(string)
		total := int(fila["total_citas"].(float64))
		apariciones[nombre]++
		totales[nombre] = total
		suma += total
	}

	if apariciones[nombreConCitas] != 1 || apariciones[nombreSinCitas] != 1 {
		t.Errorf("cada especialidad debe aparecer exactamente una vez: %v", apariciones)
	}
	if totales[nombreConCitas] != 2 {
		t.Errorf("la especialidad con citas debería contar 2, contó %d", totales[nombreConCitas])
	}
	if totales[nombreSinCitas] != 0 {
		t.Errorf("la especialidad sin citas debería contar 0, contó %d", totales[nombreSinCitas])
	}

	codigo, respuesta = peticionJSON(t, app, "GET", "/citas", nil)
	if codigo != 200 {
		t.Fatalf("no se pudo obtener el total de citas: %d %v", codigo, respuesta)
	}
	totalCitas := int(respuesta["data"].(map[string]interface{})["total"].(float64))
	if suma != totalCitas {
		t.Errorf("la suma de los conteos (%d) debe igualar el total de citas (%d)", suma, totalCitas)
	}
}

func TestTopCitasOrdenYDesempate(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	idMedico := crearMedicoDePrueba(t, app, idEspecialidad)

	// El estado No Asistió aísla estas citas del resto de las pruebas
	estado := "No Asistió"
	pacienteDos := crearPacienteDePrueba(t, app)
	crearCitaDePrueba(t, app, pacienteDos, idMedico, idEspecialidad, estado, fechaFutura(7))
	crearCitaDePrueba(t, app, pacienteDos, idMedico, idEspecialidad, estado, fechaFutura(8))
	pacienteUno := crearPacienteDePrueba(t, app)
	crearCitaDePrueba(t, app, pacienteUno, idMedico, idEspecialidad, estado, fechaFutura(9))
	pacienteEmpate := crearPacienteDePrueba(t, app)
	crearCitaDePrueba(t, app, pacienteEmpate, idMedico, idEspecialidad, estado, fechaFutura(10))
	crearCitaDePrueba(t, app, pacienteEmpate, idMedico, idEspecialidad, estado, fechaFutura(11))

	ruta := "/pacientes/top-citas?limite=1000&estado_cita=" + url.QueryEscape(estado)
	codigo, respuesta := peticionJSON(t, app, "GET", ruta, nil)
	if codigo != 200 {
		t.Fatalf("se esperaba 200, llegó %d: %v", codigo, respuesta)
	}
	data, ok := respuesta["data"].([]interface{})
	if !ok {
		t.Fatalf("data no es una lista: %v", respuesta)
	}

	posiciones := map[int]int{}
	totales := map[int]int{}
	for i, elemento := range data {
		fila := elemento.(map[string]interface{})
		id := int(fila["id"].(float64))
		posiciones[id] = i
		totales[id] = int(fila["total_citas"].(float64))
	}

	for _, id := range []int{pacienteDos, pacienteUno, pacienteEmpate} {
		if _, ok := posiciones[id]; !ok {
			t.Fatalf("el paciente %d no aparece en el reporte: %v", id, data)
		}
	}
	if totales[pacienteDos] != 2 || totales[pacienteEmpate] != 2 || totales[pacienteUno] != 1 {
		t.Errorf("totales inesperados: %v", totales)
	}
	// Empate en 2 citas: gana el id menor; el de 1 cita queda después
	if posiciones[pacienteDos] >= posiciones[pacienteEmpate] {
		t.Errorf("con totales iguales el id menor va primero: %v", posiciones)
	}
	if posiciones[pacienteEmpate] >= posiciones[pacienteUno] {
		t.Errorf("un total menor debe quedar después: %v", posiciones)
	}
}

func TestEliminarEspecialidadConMedicosResponde409(t *testing.T) {
	app := appDePrueba(t)
	idEspecialidad, _ := crearEspecialidadDePrueba(t, app)
	crearMedicoDePrueba(t, app, idEspecialidad)

	codigo, respuesta := peticionJSON(t, app, "DELETE", fmt.Sprintf("/especialidades/%d", idEspecialidad), nil)

	if codigo != 409 {
		t.Fatalf("una especialidad con médicos no debe poder eliminarse, llegó %d: %v", codigo, respuesta)
	}
}
