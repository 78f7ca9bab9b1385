package billing

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/fatoora-tn/compta-api/internal/domain"
	"github.com/fatoora-tn/compta-api/internal/domain/elfatoora"
	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	"github.com/fatoora-tn/compta-api/internal/domain/repository"
	"github.com/fatoora-tn/compta-api/internal/infrastructure/teif/signer"
	"github.com/fatoora-tn/compta-api/pkg/logger"
	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// CertConfig localisation du certificat de signature (clé technique TTN).
type CertConfig struct {
	CertPath     string
	CertKeyPath  string
	CertPassword string
}

// InvalidInvoiceError échec de validation : porte la liste complète des
// problèmes pour que l'appelant les rapporte tous en une fois.
type InvalidInvoiceError struct {
	Result *elfatoora.ValidationResult
}

func (e *InvalidInvoiceError) Error() string {
	return "facture invalide : " + e.Result.Summary()
}

func (e *InvalidInvoiceError) Unwrap() error { return domain.ErrInvalidInvoice }

// SigningError échec d'infrastructure de signature, distinct d'une erreur de
// données : l'appelant peut dire "vos données sont fausses" ou "notre
// signature est indisponible".
type SigningError struct {
	Step string
	Err  error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signature (%s) : %v", e.Step, e.Err)
}

func (e *SigningError) Unwrap() error { return domain.ErrSigningFailed }

// GeneratedInvoice résultat assemblé d'une génération complète.
type GeneratedInvoice struct {
	ID          string            `json:"id"`
	Number      string            `json:"number"`
	UnsignedXML string            `json:"unsignedXml"`
	SignedXML   string            `json:"signedXml"`
	GeneratedAt time.Time         `json:"generatedAt"`
	CertSubject string            `json:"certSubject"`
	CertSerial  string            `json:"certSerial"`
	SchemaValid bool              `json:"schemaValid"`
	Signed      bool              `json:"signed"`
	Warnings    []elfatoora.Issue `json:"warnings,omitempty"`
}

// GenerateInvoiceUseCase façade de génération : validation, génération XML,
// signature, vérification et archivage, en échec rapide à chaque frontière.
type GenerateInvoiceUseCase struct {
	generator XMLGenerator
	signer    teif.Signer
	verifier  teif.Verifier
	docRepo   repository.GeneratedDocumentRepository
	certCfg   CertConfig
	log       *logger.Logger
}

// NewGenerateInvoiceUseCase construit la façade.
func NewGenerateInvoiceUseCase(
	generator XMLGenerator,
	sig teif.Signer,
	verifier teif.Verifier,
	docRepo repository.GeneratedDocumentRepository,
	certCfg CertConfig,
	log *logger.Logger,
) *GenerateInvoiceUseCase {
	return &GenerateInvoiceUseCase{
		generator: generator,
		signer:    sig,
		verifier:  verifier,
		docRepo:   docRepo,
		certCfg:   certCfg,
		log:       log,
	}
}

// GenerateInvoice exécute le cycle complet :
//
//	validation → XML TEIF → signature XAdES → vérification → archive
//
// Aucune génération partielle : une facture invalide retourne les erreurs de
// validation sans produire de XML.
func (uc *GenerateInvoiceUseCase) GenerateInvoice(ctx context.Context, inv *entity.Invoice) (*GeneratedInvoice, error) {
	res := elfatoora.Validate(inv)
	if !res.Valid() {
		uc.log.Warn().
			Str("invoice", invoiceNumber(inv)).
			Int("errors", len(res.Errors())).
			Msg("facture rejetée par la validation")
		return nil, &InvalidInvoiceError{Result: res}
	}

	unsigned, err := uc.generator.Generate(inv)
	if err != nil {
		return nil, fmt.Errorf("génération TEIF : %w", err)
	}
	schemaValid := wellFormed(unsigned)

	cert, err := loadCertificate(uc.certCfg)
	if err != nil {
		return nil, &SigningError{Step: "chargement du certificat", Err: err}
	}
	subject, serial, err := certMetadata(cert)
	if err != nil {
		return nil, &SigningError{Step: "lecture du certificat", Err: err}
	}

	signed, err := uc.signer.Sign(unsigned, cert)
	if err != nil {
		return nil, &SigningError{Step: "signature XAdES", Err: err}
	}
	signedOK := uc.verifier.Verify(signed)
	if !signedOK {
		return nil, &SigningError{Step: "vérification post-signature",
			Err: fmt.Errorf("le document signé ne se vérifie pas")}
	}

	out := &GeneratedInvoice{
		ID:          uuid.New().String(),
		Number:      inv.Number,
		UnsignedXML: string(unsigned),
		SignedXML:   string(signed),
		GeneratedAt: time.Now().UTC(),
		CertSubject: subject,
		CertSerial:  serial,
		SchemaValid: schemaValid,
		Signed:      true,
		Warnings:    res.Warnings(),
	}

	if uc.docRepo != nil {
		doc := &entity.GeneratedDocument{
			ID:            out.ID,
			InvoiceNumber: out.Number,
			UnsignedXML:   out.UnsignedXML,
			SignedXML:     out.SignedXML,
			TotalExclTax:  inv.Totals.ExclTax,
			TotalTax:      inv.Totals.Tax,
			TotalInclTax:  inv.Totals.InclTax,
			CertSubject:   subject,
			CertSerial:    serial,
			GeneratedAt:   out.GeneratedAt,
		}
		if err := uc.docRepo.Create(ctx, doc); err != nil {
			return nil, fmt.Errorf("archivage du document généré : %w", err)
		}
	}

	uc.log.Info().
		Str("invoice", out.Number).
		Str("document_id", out.ID).
		Bool("schema_valid", schemaValid).
		Msg("facture El Fatoora générée et signée")
	return out, nil
}

// GenerateUnsignedXML court-circuite la signature (aperçu / dry-run) mais
// valide d'abord, et échoue exactement comme le cycle complet.
func (uc *GenerateInvoiceUseCase) GenerateUnsignedXML(ctx context.Context, inv *entity.Invoice) (string, error) {
	res := elfatoora.Validate(inv)
	if !res.Valid() {
		return "", &InvalidInvoiceError{Result: res}
	}
	unsigned, err := uc.generator.Generate(inv)
	if err != nil {
		return "", fmt.Errorf("génération TEIF : %w", err)
	}
	return string(unsigned), nil
}

// GetDocument relit un document archivé par son identifiant.
func (uc *GenerateInvoiceUseCase) GetDocument(ctx context.Context, id string) (*entity.GeneratedDocument, error) {
	if uc.docRepo == nil {
		return nil, domain.ErrNotFound
	}
	return uc.docRepo.GetByID(ctx, id)
}

// ── aides privées ─────────────────────────────────────────────────────────────

// wellFormed re-parse le document généré : garde-fou structurel avant
// signature (le schéma XSD officiel n'est pas embarqué).
func wellFormed(xmlBytes []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return false
	}
	return doc.Root() != nil && doc.Root().Tag == "TEIF"
}

func loadCertificate(cfg CertConfig) (tls.Certificate, error) {
	if cfg.CertPath == "" {
		return tls.Certificate{}, fmt.Errorf("ELF_CERT_PATH non configuré")
	}
	lower := strings.ToLower(cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		return signer.LoadFromP12(cfg.CertPath, cfg.CertPassword)
	}
	return signer.LoadFromPEM(cfg.CertPath, cfg.CertKeyPath)
}

func certMetadata(cert tls.Certificate) (subject, serial string, err error) {
	if len(cert.Certificate) == 0 {
		return "", "", fmt.Errorf("certificat sans chaîne X.509")
	}
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return "", "", err
	}
	return parsed.Subject.String(), parsed.SerialNumber.Text(16), nil
}

func invoiceNumber(inv *entity.Invoice) string {
	if inv == nil {
		return ""
	}
	return inv.Number
}
