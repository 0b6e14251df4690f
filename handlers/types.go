package handlers

// Respuesta es el sobre uniforme de todas las respuestas de la API
type Respuesta struct {
	Status  bool                `json:"status"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Exito arma una respuesta exitosa con datos y mensaje
func Exito(data interface{}, mensaje string) Respuesta {
	return Respuesta{Status: true, Data: data, Message: mensaje}
}

// Fallo arma una respuesta fallida con mensaje
func Fallo(mensaje string) Respuesta {
	return Respuesta{Status: false, Message: mensaje}
}

// FalloValidacion arma una respuesta fallida con el mapa de errores por campo
func FalloValidacion(errores ErroresValidacion) Respuesta {
	return Respuesta{Status: false, Errors: errores}
}
