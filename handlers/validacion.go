package handlers

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

// ErroresValidacion acumula los mensajes de error por campo. Todas las reglas
// se evalúan antes de responder, de modo que el cliente recibe de una vez
// todos los campos que fallaron.
type ErroresValidacion map[string][]string

// Agregar suma un mensaje de error al campo indicado
func (e ErroresValidacion) Agregar(campo, mensaje string) {
	e[campo] = append(e[campo], mensaje)
}

// HayErrores indica si se acumuló al menos un error
func (e ErroresValidacion) HayErrores() bool {
	return len(e) > 0
}

// parseFechaHora valida el formato AAAA-MM-DD HH:MM:SS del contrato
func parseFechaHora(valor string) (time.Time, bool) {
	t, err := time.Parse(models.FormatoFechaHora, valor)
	return t, err == nil
}

// parseFecha valida el formato AAAA-MM-DD del contrato
func parseFecha(valor string) (time.Time, bool) {
	t, err := time.Parse(models.FormatoFecha, valor)
	return t, err == nil
}

// emailValido valida la forma básica de un correo electrónico
func emailValido(valor string) bool {
	_, err := mail.ParseAddress(valor)
	return err == nil
}

// Los verificadores de existencia devuelven el error de la consulta por
// separado: una fila ausente es un error de validación del cliente, pero un
// fallo de la base de datos debe responderse como 500, nunca como "no existe".

// existePaciente verifica que el id referencie una fila de pacientes
func existePaciente(ctx context.Context, id int) (bool, error) {
	var existe bool
	err := database.GetDB().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pacientes WHERE id = $1)", id).Scan(&existe)
	return existe, err
}

// existeMedico verifica que el id referencie una fila de medicos
func existeMedico(ctx context.Context, id int) (bool, error) {
	var existe bool
	err := database.GetDB().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM medicos WHERE id = $1)", id).Scan(&existe)
	return existe, err
}

// existeEspecialidad verifica que el id referencie una fila de especialidades
func existeEspecialidad(ctx context.Context, id int) (bool, error) {
	var existe bool
	err := database.GetDB().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM especialidades WHERE id = $1)", id).Scan(&existe)
	return existe, err
}

func existeUsuario(ctx context.Context, id int) (bool, error) {
	var existe bool
	err := database.GetDB().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM usuarios WHERE id = $1)", id).Scan(&existe)
	return existe, err
}

// columnaOcupada verifica unicidad de un valor en una columna, ignorando
// opcionalmente la fila indicada (para actualizaciones).
func columnaOcupada(ctx context.Context, consulta string, valor string, ignorarID int) (bool, error) {
	var ocupada bool
	err := database.GetDB().QueryRow(ctx, consulta, valor, ignorarID).Scan(&ocupada)
	return ocupada, err
}

// actualizarFila arma y ejecuta un UPDATE parcial sobre la tabla indicada con
// los cambios recibidos. No hace nada si el mapa viene vacío.
func actualizarFila(ctx context.Context, tabla string, id int, cambios map[string]interface{}) error {
	if len(cambios) == 0 {
		return nil
	}

	var asignaciones []string
	var args []interface{}
	for columna, valor := range cambios {
		args = append(args, valor)
		asignaciones = append(asignaciones, fmt.Sprintf("%s = $%d", columna, len(args)))
	}
	asignaciones = append(asignaciones, "updated_at = NOW()")
	args = append(args, id)

	consulta := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		tabla, strings.Join(asignaciones, ", "), len(args))
	_, err := database.GetDB().Exec(ctx, consulta, args...)
	return err
}
