package repository

import (
	"context"

	"github.com/fatoora-tn/compta-api/internal/domain/entity"
)

// GeneratedDocumentRepository port de persistance de l'archive des documents
// TEIF générés (XML non signé et signé, métadonnées du certificat).
type GeneratedDocumentRepository interface {
	Create(ctx context.Context, doc *entity.GeneratedDocument) error
	GetByID(ctx context.Context, id string) (*entity.GeneratedDocument, error)
	// GetByInvoiceNumber retourne le document le plus récent pour un numéro
	// de facture donné (une facture peut être regénérée).
	GetByInvoiceNumber(ctx context.Context, number string) (*entity.GeneratedDocument, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.GeneratedDocument, error)
}
