package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fatoora-tn/compta-api/internal/application/billing"
	"github.com/fatoora-tn/compta-api/internal/application/dto"
	"github.com/fatoora-tn/compta-api/internal/domain"
)

// InvoiceHandler gère les requêtes HTTP de génération El Fatoora (protégé).
type InvoiceHandler struct {
	uc *billing.GenerateInvoiceUseCase
}

// NewInvoiceHandler construit le handler.
func NewInvoiceHandler(uc *billing.GenerateInvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Generate godoc
// @Summary      Générer et signer une facture TEIF
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateInvoiceRequest  true  "facture à générer"
// @Success      201   {object}  billing.GeneratedInvoice
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/invoices/generate [post]
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps JSON invalide"})
	}
	inv, err := in.ToEntity()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	out, err := h.uc.GenerateInvoice(c.Context(), inv)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Preview génère le XML TEIF non signé, sans signature ni archivage.
// POST /api/invoices/preview
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps JSON invalide"})
	}
	inv, err := in.ToEntity()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	xmlOut, err := h.uc.GenerateUnsignedXML(c.Context(), inv)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.PreviewResponse{Number: inv.Number, XML: xmlOut})
}

// GetByID retourne un document archivé (XML signé et métadonnées du certificat).
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requis"})
	}
	doc, err := h.uc.GetDocument(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "document introuvable"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromGeneratedDocument(doc))
}

// mapError traduit les erreurs du cas d'usage en réponses HTTP. Une facture
// non conforme renvoie 422 avec la liste complète des problèmes ; un échec de
// signature renvoie 502 (l'infrastructure de signature est en cause, pas les
// données de l'appelant).
func (h *InvoiceHandler) mapError(c *fiber.Ctx, err error) error {
	var invalid *billing.InvalidInvoiceError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
			Code:     "INVALID_INVOICE",
			Message:  "facture non conforme El Fatoora",
			Errors:   invalid.Result.Errors(),
			Warnings: invalid.Result.Warnings(),
		})
	}
	var signing *billing.SigningError
	if errors.As(err, &signing) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "SIGNING_FAILED", Message: signing.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
