package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"github.com/clinicaeps/citas-backend/database"
	"github.com/clinicaeps/citas-backend/models"
)

// RegistroMiddleware captura todas las peticiones HTTP y las persiste en la
// tabla bitacora. Cada petición recibe un identificador propio que también
// viaja en el header X-Request-ID de la respuesta.
func RegistroMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		inicio := time.Now()
		idPeticion := uuid.NewString()
		c.Set("X-Request-ID", idPeticion)

		err := c.Next()

		registro := crearRegistro(c, idPeticion, int(time.Since(inicio).Milliseconds()))

		// Guardar de forma asíncrona para no retrasar la respuesta
		go guardarRegistro(registro)

		return err
	}
}

// crearRegistro arma la entrada de bitácora a partir de la petición.
// Los strings de fiber apuntan a buffers que se reciclan al terminar el
// handler; como el registro se persiste en una goroutine, todos los valores
// tomados de la petición se copian aquí.
func crearRegistro(c *fiber.Ctx, idPeticion string, tiempoRespuesta int) models.Bitacora {
	// Obtener la IP real del cliente detrás de un proxy
	ip := utils.CopyString(c.IP())
	if reenviada := c.Get("X-Forwarded-For"); reenviada != "" {
		ip = utils.CopyString(strings.TrimSpace(strings.Split(reenviada, ",")[0]))
	}
	if ipReal := c.Get("X-Real-IP"); ipReal != "" {
		ip = utils.CopyString(ipReal)
	}

	var userAgent *string
	if ua := c.Get("User-Agent"); ua != "" {
		copia := utils.CopyString(ua)
		userAgent = &copia
	}

	return models.Bitacora{
		IDPeticion:      idPeticion,
		Metodo:          utils.CopyString(c.Method()),
		Ruta:            utils.CopyString(c.Path()),
		CodigoEstado:    c.Response().StatusCode(),
		TiempoRespuesta: tiempoRespuesta,
		IP:              ip,
		UserAgent:       userAgent,
		Nivel:           nivelPorEstado(c.Response().StatusCode()),
		Entorno:         entornoActual(),
	}
}

// nivelPorEstado determina el nivel de la bitácora según el código de estado
func nivelPorEstado(codigo int) string {
	switch {
	case codigo >= 500:
		return models.NivelError
	case codigo >= 400:
		return models.NivelAdvertencia
	default:
		return models.NivelInfo
	}
}

func entornoActual() string {
	entorno := os.Getenv("ENTORNO")
	if entorno == "" {
		entorno = models.EntornoDesarrollo
	}
	return entorno
}

// guardarRegistro inserta la entrada en la bitácora. El registro es de mejor
// esfuerzo: un fallo aquí no afecta la petición.
func guardarRegistro(registro models.Bitacora) {
	db := database.GetDB()
	if db == nil {
		fmt.Println("Error: no hay conexión a la base de datos para la bitácora")
		return
	}

	_, err := db.Exec(context.Background(),
		`INSERT INTO bitacora (id_peticion, metodo, ruta, codigo_estado, tiempo_respuesta,
		    ip, user_agent, nivel, entorno)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		registro.IDPeticion,
		registro.Metodo,
		registro.Ruta,
		registro.CodigoEstado,
		registro.TiempoRespuesta,
		registro.IP,
		registro.UserAgent,
		registro.Nivel,
		registro.Entorno,
	)
	if err != nil {
		fmt.Printf("Error guardando registro en la bitácora: %v\n", err)
	}
}
