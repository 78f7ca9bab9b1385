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

	"github.com/fatoora-tn/compta-api/internal/application/auth"
	"github.com/fatoora-tn/compta-api/internal/application/billing"
	"github.com/fatoora-tn/compta-api/internal/infrastructure/postgres"
	infrateif "github.com/fatoora-tn/compta-api/internal/infrastructure/teif"
	"github.com/fatoora-tn/compta-api/internal/infrastructure/teif/signer"
	httpRouter "github.com/fatoora-tn/compta-api/internal/interfaces/http"
	"github.com/fatoora-tn/compta-api/pkg/config"
	"github.com/fatoora-tn/compta-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("chargement de la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("démarrage de l'application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion à PostgreSQL")
	}
	defer pool.Close()

	docRepo := postgres.NewGeneratedDocumentRepository(pool)

	// Pipeline El Fatoora : génération XML TEIF → signature XAdES → archive
	generator := infrateif.NewGenerator()
	signerSvc := signer.NewXadesService()
	certCfg := billing.CertConfig{
		CertPath:     cfg.ELF.CertPath,
		CertKeyPath:  cfg.ELF.CertKeyPath,
		CertPassword: cfg.ELF.CertPassword,
	}
	generateInvoiceUC := billing.NewGenerateInvoiceUseCase(
		generator, signerSvc, signerSvc, docRepo, certCfg, log,
	)

	var clients []auth.Client
	if cfg.Auth.ClientID != "" {
		clients = append(clients, auth.Client{
			ID:         cfg.Auth.ClientID,
			SecretHash: cfg.Auth.ClientSecretHash,
		})
	}
	authUC := auth.NewAuthUseCase(clients, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local : http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Compta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		GenerateInvoice: generateInvoiceUC,
		AuthUC:          authUC,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("serveur HTTP arrêté")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("signal d'arrêt reçu, fermeture du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arrêt du serveur")
	}

	log.Info().Msg("application arrêtée")
}
