package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dulcepan/facturacion-api/internal/application/billing"
	infrahacienda "github.com/dulcepan/facturacion-api/internal/infrastructure/hacienda"
	"github.com/dulcepan/facturacion-api/internal/infrastructure/hacienda/signer"
	"github.com/dulcepan/facturacion-api/internal/infrastructure/postgres"
	httpRouter "github.com/dulcepan/facturacion-api/internal/interfaces/http"
	"github.com/dulcepan/facturacion-api/pkg/config"
	"github.com/dulcepan/facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Validar la configuración de Hacienda antes de levantar nada: un secreto
	// faltante debe fallar aquí, no en el primer envío.
	if err := cfg.Hacienda.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración de Hacienda incompleta")
	}

	ctx := context.Background()

	// Bitácora de envíos: opcional, solo con DATABASE_URL definido.
	var envioRepo billing.EnvioRepository
	var envioLister httpRouter.EnvioLister
	if cfg.DB.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		repo := postgres.NewEnvioRepository(pool)
		envioRepo = repo
		envioLister = repo
		log.Info().Msg("bitácora de envíos activada")
	} else {
		log.Warn().Msg("sin DATABASE_URL: bitácora de envíos desactivada")
	}

	xmlBuilder := infrahacienda.NewXMLBuilderService()
	signerSvc := signer.NewDigitalSignatureService()
	submitter := infrahacienda.NewRESTClient(infrahacienda.APIConfig{
		TokenURL:     cfg.Hacienda.TokenURL,
		ReceptionURL: cfg.Hacienda.ReceptionURL,
		ClientID:     cfg.Hacienda.ClientID,
	})

	enviarUC := billing.NewEnviarFacturaUseCase(
		xmlBuilder, signerSvc, submitter,
		signer.LoadFromP12Base64,
		envioRepo,
		billing.HaciendaParams{
			CertP12Base64:   cfg.Hacienda.CertP12Base64,
			CertPassword:    cfg.Hacienda.CertPassword,
			CodigoActividad: cfg.Hacienda.CodigoActividad,
			Situacion:       cfg.Hacienda.Situacion,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // la recepción de Hacienda puede tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Enviar:    enviarUC,
		Envios:    envioLister,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
