package handlers

import (
	"testing"

	"github.com/clinicaeps/citas-backend/models"
)

func TestErroresValidacionAcumulaTodos(t *testing.T) {
	errores := ErroresValidacion{}
	if errores.HayErrores() {
		t.Fatal("un mapa recién creado no debería reportar errores")
	}

	errores.Agregar("id_paciente", "El paciente es obligatorio.")
	errores.Agregar("fecha_hora_cita", "La fecha y hora de la cita es obligatoria.")
	errores.Agregar("fecha_hora_cita", "El formato de fecha y hora debe ser AAAA-MM-DD HH:MM:SS.")

	if !errores.HayErrores() {
		t.Fatal("se agregaron errores pero HayErrores devolvió false")
	}
	if len(errores) != 2 {
		t.Fatalf("se esperaban 2 campos con errores, hay %d", len(errores))
	}
	if len(errores["fecha_hora_cita"]) != 2 {
		t.Fatalf("fecha_hora_cita debería acumular 2 mensajes, tiene %d", len(errores["fecha_hora_cita"]))
	}
}

func TestParseFechaHora(t *testing.T) {
	casos := []struct {
		valor  string
		valido bool
	}{
		{"2026-09-15 10:30:00", true},
		{"2026-09-15T10:30:00", false},
		{"2026-09-15 10:30", false},
		{"2026-09-15", false},
		{"15-09-2026 10:30:00", false},
		{"", false},
	}

	for _, caso := range casos {
		_, ok := parseFechaHora(caso.valor)
		if ok != caso.valido {
			t.Errorf("parseFechaHora(%q) = %v, se esperaba %v", caso.valor, ok, caso.valido)
		}
	}
}

func TestParseFecha(t *testing.T) {
	casos := []struct {
		valor  string
		valido bool
	}{
		{"1990-05-20", true},
		{"1990-5-20", false},
		{"20/05/1990", false},
		{"1990-05-20 00:00:00", false},
		{"", false},
	}

	for _, caso := range casos {
		_, ok := parseFecha(caso.valor)
		if ok != caso.valido {
			t.Errorf("parseFecha(%q) = %v, se esperaba %v", caso.valor, ok, caso.valido)
		}
	}
}

func TestEmailValido(t *testing.T) {
	if !emailValido("paciente@clinica.com") {
		t.Error("paciente@clinica.com debería ser válido")
	}
	if emailValido("no-es-un-correo") {
		t.Error("no-es-un-correo no debería ser válido")
	}
}

func TestEstadoCitaValido(t *testing.T) {
	for _, estado := range models.EstadosCita {
		if !models.EstadoCitaValido(estado) {
			t.Errorf("el estado %q debería ser válido", estado)
		}
	}
	if models.EstadoCitaValido("programada") {
		t.Error("los estados distinguen mayúsculas: \"programada\" no debería ser válido")
	}
	if models.EstadoCitaValido("Pendiente") {
		t.Error("\"Pendiente\" no es un estado del catálogo")
	}
}

func TestProyectarPacientesPorRanking(t *testing.T) {
	paciente := func(id int, nombres string) models.Paciente {
		return models.Paciente{ID: id, NombresPaciente: nombres}
	}

	// El ranking viene de la primera consulta; la lista de pacientes llega
	// en cualquier orden y la proyección debe respetar el ranking.
	ids := []int{7, 3, 9}
	conteos := map[int]int{7: 5, 3: 5, 9: 2}
	pacientes := []models.Paciente{
		paciente(9, "Carla"),
		paciente(3, "Ana"),
		paciente(7, "Luis"),
	}

	resultado := proyectarPacientesPorRanking(ids, conteos, pacientes)

	if len(resultado) != 3 {
		t.Fatalf("se esperaban 3 pacientes, hay %d", len(resultado))
	}
	ordenEsperado := []int{7, 3, 9}
	for i, esperado := range ordenEsperado {
		if resultado[i].ID != esperado {
			t.Errorf("posición %d: se esperaba el paciente %d, llegó %d", i, esperado, resultado[i].ID)
		}
	}
	if resultado[0].TotalCitas != 5 || resultado[2].TotalCitas != 2 {
		t.Errorf("los totales no coinciden con los conteos: %+v", resultado)
	}
}

func TestProyectarPacientesPorRankingIgnoraFaltantes(t *testing.T) {
	ids := []int{1, 2}
	conteos := map[int]int{1: 3, 2: 1}
	pacientes := []models.Paciente{{ID: 2}}

	resultado := proyectarPacientesPorRanking(ids, conteos, pacientes)

	if len(resultado) != 1 {
		t.Fatalf("un id sin paciente recuperado debe omitirse, hay %d resultados", len(resultado))
	}
	if resultado[0].ID != 2 || resultado[0].TotalCitas != 1 {
		t.Errorf("resultado inesperado: %+v", resultado[0])
	}
}
