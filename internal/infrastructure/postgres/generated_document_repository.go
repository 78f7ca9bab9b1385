package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fatoora-tn/compta-api/internal/domain"
	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	"github.com/fatoora-tn/compta-api/internal/domain/repository"
)

// Querier abstraction commune à *pgxpool.Pool et pgx.Tx : les adaptateurs
// fonctionnent indifféremment sur le pool ou dans une transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ repository.GeneratedDocumentRepository = (*GeneratedDocumentRepo)(nil)

// GeneratedDocumentRepo implémentation du port GeneratedDocumentRepository
// sur PostgreSQL (utilisable avec pool ou tx).
type GeneratedDocumentRepo struct {
	q Querier
}

// NewGeneratedDocumentRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewGeneratedDocumentRepository(q Querier) *GeneratedDocumentRepo {
	return &GeneratedDocumentRepo{q: q}
}

// Create archive un document généré. L'ID est attribué ici s'il est absent.
func (r *GeneratedDocumentRepo) Create(ctx context.Context, doc *entity.GeneratedDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO generated_documents (id, invoice_number, unsigned_xml, signed_xml, total_excl_tax, total_tax, total_incl_tax, cert_subject, cert_serial, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.InvoiceNumber, doc.UnsignedXML, doc.SignedXML,
		doc.TotalExclTax, doc.TotalTax, doc.TotalInclTax,
		doc.CertSubject, doc.CertSerial, doc.GeneratedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s déjà archivé: %w", doc.ID, err)
		}
		return fmt.Errorf("archiver le document: %w", err)
	}
	return nil
}

// GetByID retourne un document archivé par son identifiant.
func (r *GeneratedDocumentRepo) GetByID(ctx context.Context, id string) (*entity.GeneratedDocument, error) {
	query := `
		SELECT id, invoice_number, unsigned_xml, signed_xml, total_excl_tax, total_tax, total_incl_tax, cert_subject, cert_serial, generated_at
		FROM generated_documents WHERE id = $1`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lire le document %s: %w", id, err)
	}
	return doc, nil
}

// GetByInvoiceNumber retourne le document le plus récent pour un numéro de
// facture (une même facture peut avoir été regénérée plusieurs fois).
func (r *GeneratedDocumentRepo) GetByInvoiceNumber(ctx context.Context, number string) (*entity.GeneratedDocument, error) {
	query := `
		SELECT id, invoice_number, unsigned_xml, signed_xml, total_excl_tax, total_tax, total_incl_tax, cert_subject, cert_serial, generated_at
		FROM generated_documents WHERE invoice_number = $1
		ORDER BY generated_at DESC LIMIT 1`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lire le document de la facture %s: %w", number, err)
	}
	return doc, nil
}

// ListRecent retourne les derniers documents générés, du plus récent au plus ancien.
func (r *GeneratedDocumentRepo) ListRecent(ctx context.Context, limit int) ([]*entity.GeneratedDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, invoice_number, unsigned_xml, signed_xml, total_excl_tax, total_tax, total_incl_tax, cert_subject, cert_serial, generated_at
		FROM generated_documents
		ORDER BY generated_at DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lister les documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.GeneratedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("lire une ligne de document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("parcourir les documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (*entity.GeneratedDocument, error) {
	var doc entity.GeneratedDocument
	err := row.Scan(&doc.ID, &doc.InvoiceNumber, &doc.UnsignedXML, &doc.SignedXML,
		&doc.TotalExclTax, &doc.TotalTax, &doc.TotalInclTax,
		&doc.CertSubject, &doc.CertSerial, &doc.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
