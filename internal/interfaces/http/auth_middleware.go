package http

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/nfe-gateway/internal/application/dto"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	"github.com/seu-usuario/nfe-gateway/pkg/jwt"
)

// Locals key para o usuário autenticado em Fiber.
const LocalUsuario = "usuario"

// AuthMiddleware aceita duas formas de Bearer: o token estático de API
// ou um JWT emitido por POST /auth/token. Ambos vêm exclusivamente de
// configuração externa; com a configuração vazia nenhum token é aceito.
func AuthMiddleware(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "header Authorization obrigatório"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vazio"})
		}

		if cfg.APIToken != "" && subtle.ConstantTimeCompare([]byte(tokenString), []byte(cfg.APIToken)) == 1 {
			c.Locals(LocalUsuario, "api-token")
			return c.Next()
		}

		if cfg.JWTSecret != "" {
			usuario, _, err := jwt.Parse(cfg.JWTSecret, tokenString)
			if err == nil {
				c.Locals(LocalUsuario, usuario)
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido ou expirado"})
	}
}

// GetUsuario devolve o usuário do contexto (após o middleware de auth).
func GetUsuario(c *fiber.Ctx) string {
	v := c.Locals(LocalUsuario)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
