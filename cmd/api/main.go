package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/seu-usuario/nfe-gateway/internal/application/auth"
	"github.com/seu-usuario/nfe-gateway/internal/application/emissao"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/danfe"
	"github.com/seu-usuario/nfe-gateway/internal/infrastructure/sefaz"
	httpRouter "github.com/seu-usuario/nfe-gateway/internal/interfaces/http"
	"github.com/seu-usuario/nfe-gateway/pkg/config"
	"github.com/seu-usuario/nfe-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	sefazClient := sefaz.NewSOAPSefazClient(cfg.SEFAZ, log)
	xmlBuilder := sefaz.NewXMLBuilderService()

	// Assinador nil: a assinatura XML-DSig é delegada a um colaborador
	// externo quando plugado; sem ele, apenas homologação emite.
	emissaoUC := emissao.NewUseCase(xmlBuilder, sefazClient, nil, log)
	authUC := auth.NewAuthUseCase(cfg.Auth)
	danfeGen := danfe.NewMarotoGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "NFe Gateway API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmissaoUC: emissaoUC,
		AuthUC:    authUC,
		DanfeGen:  danfeGen,
		AuthCfg:   cfg.Auth,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
