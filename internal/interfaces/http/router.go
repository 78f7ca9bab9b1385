package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fatoora-tn/compta-api/internal/application/auth"
	"github.com/fatoora-tn/compta-api/internal/application/billing"
)

// RouterDeps dépendances pour le router.
type RouterDeps struct {
	GenerateInvoice *billing.GenerateInvoiceUseCase
	AuthUC          *auth.AuthUseCase
	JWTSecret       string
}

// Router enregistre les routes de l'API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public) : échange client_id/client_secret contre un jeton
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/token", authHandler.Token)

	// Routes protégées (Bearer Token requis)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Invoices (protégé) : génération TEIF signée, aperçu, consultation
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.GenerateInvoice)
	invoices.Post("/generate", invoiceHandler.Generate)
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Get("/:id", invoiceHandler.GetByID)
}
