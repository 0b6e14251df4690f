package models

import (
	"time"
)

// Bitacora representa un registro de petición HTTP persistido en la tabla bitacora
type Bitacora struct {
	ID              int       `json:"id" db:"id"`
	IDPeticion      string    `json:"id_peticion" db:"id_peticion"`
	Metodo          string    `json:"metodo" db:"metodo"`
	Ruta            string    `json:"ruta" db:"ruta"`
	CodigoEstado    int       `json:"codigo_estado" db:"codigo_estado"`
	TiempoRespuesta int       `json:"tiempo_respuesta" db:"tiempo_respuesta"`
	IP              string    `json:"ip" db:"ip"`
	UserAgent       *string   `json:"user_agent" db:"user_agent"`
	Nivel           string    `json:"nivel" db:"nivel"`
	Entorno         string    `json:"entorno" db:"entorno"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Niveles de registro de la bitácora
const (
	NivelInfo        = "info"
	NivelAdvertencia = "advertencia"
	NivelError       = "error"
)

// Entornos de ejecución
const (
	EntornoDesarrollo = "desarrollo"
	EntornoProduccion = "produccion"
	EntornoPruebas    = "pruebas"
)
