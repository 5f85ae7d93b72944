package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/seu-usuario/nfe-gateway/pkg/logger"
)

// LocalRequestID locals key do identificador de requisição.
const LocalRequestID = "request_id"

// LoggingMiddleware atribui um X-Request-ID (reaproveitando o do chamador
// quando presente) e registra cada requisição com latência e status.
func LoggingMiddleware(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals(LocalRequestID, requestID)
		c.Set("X-Request-ID", requestID)

		inicio := time.Now()
		err := c.Next()

		log.Info().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(inicio)).
			Str("ip", c.IP()).
			Msg("requisição HTTP")

		return err
	}
}
