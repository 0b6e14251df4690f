package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ConfigLimite configuración para limitar peticiones
type ConfigLimite struct {
	Max     int           // Número máximo de peticiones
	Ventana time.Duration // Ventana de tiempo
	Mensaje string        // Mensaje de error personalizado
}

// LimitePorDefecto configuración general de la API
var LimitePorDefecto = ConfigLimite{
	Max:     100,
	Ventana: 15 * time.Minute,
	Mensaje: "Demasiadas peticiones, intenta más tarde",
}

// LimiteEstricto configuración para endpoints de escritura sensibles
var LimiteEstricto = ConfigLimite{
	Max:     20,
	Ventana: 15 * time.Minute,
	Mensaje: "Límite de peticiones excedido para este endpoint",
}

// CrearLimitador crea un middleware de limitación con la configuración dada
func CrearLimitador(config ConfigLimite) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.Max,
		Expiration: config.Ventana,
		KeyGenerator: func(c *fiber.Ctx) string {
			// La IP del cliente es la clave
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":      false,
				"message":     config.Mensaje,
				"retry_after": int(config.Ventana.Seconds()),
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}

// LimitadorPorDefecto middleware de limitación general
func LimitadorPorDefecto() fiber.Handler {
	return CrearLimitador(LimitePorDefecto)
}

// LimitadorEstricto middleware de limitación estricta
func LimitadorEstricto() fiber.Handler {
	return CrearLimitador(LimiteEstricto)
}
