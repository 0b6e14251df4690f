package models

import (
	"fmt"
	"strings"
	"time"
)

// Formatos de fecha del contrato de la API
const (
	FormatoFechaHora = "2006-01-02 15:04:05"
	FormatoFecha     = "2006-01-02"
)

// FechaHora envuelve time.Time para serializar en formato AAAA-MM-DD HH:MM:SS
type FechaHora struct {
	time.Time
}

// NuevaFechaHora construye una FechaHora a partir de un time.Time
func NuevaFechaHora(t time.Time) FechaHora {
	return FechaHora{Time: t}
}

// MarshalJSON serializa la fecha con el formato del contrato
func (f FechaHora) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.Format(FormatoFechaHora) + `"`), nil
}

// UnmarshalJSON acepta únicamente el formato AAAA-MM-DD HH:MM:SS
func (f *FechaHora) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(FormatoFechaHora, s)
	if err != nil {
		return fmt.Errorf("formato de fecha inválido: %s", s)
	}
	f.Time = t
	return nil
}

// Scan permite leer la columna datetime directamente desde pgx
func (f *FechaHora) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		f.Time = v
		return nil
	case string:
		t, err := time.Parse(FormatoFechaHora, v)
		if err != nil {
			return err
		}
		f.Time = t
		return nil
	case []byte:
		return f.Scan(string(v))
	case nil:
		return nil
	}
	return fmt.Errorf("tipo no soportado para FechaHora: %T", src)
}
