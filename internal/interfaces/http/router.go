package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-usuario/nfe-gateway/internal/application/auth"
	"github.com/seu-usuario/nfe-gateway/internal/application/emissao"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/danfe"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	"github.com/seu-usuario/nfe-gateway/pkg/logger"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	EmissaoUC *emissao.UseCase
	AuthUC    *auth.AuthUseCase
	DanfeGen  *danfe.MarotoGenerator
	AuthCfg   config.AuthConfig
	Log       *logger.Logger
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(LoggingMiddleware(deps.Log))

	// Informações do serviço (público)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"servico": "nfe-gateway",
			"leiaute": "4.00",
			"rotas": []string{
				"POST /auth/token",
				"POST /nfe/emitir",
				"POST /nfe/consultar",
				"POST /nfe/danfe",
				"GET /status",
				"GET /health",
			},
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	app.Post("/auth/token", authHandler.Token)

	// Rotas protegidas (exigem Bearer Token)
	nfeHandler := NewNFeHandler(deps.EmissaoUC, deps.DanfeGen)
	protegido := app.Group("/", AuthMiddleware(deps.AuthCfg))
	protegido.Post("/nfe/emitir", nfeHandler.Emitir)
	protegido.Post("/nfe/consultar", nfeHandler.Consultar)
	protegido.Post("/nfe/danfe", nfeHandler.Danfe)
	protegido.Get("/status", nfeHandler.Status)
}
