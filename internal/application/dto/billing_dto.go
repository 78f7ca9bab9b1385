package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// GenerateInvoiceRequest body pour POST /api/invoices/generate et /preview.
// Les dates sont au format du standard (ddMMyy), les tables de codes (type de
// document, type d'identifiant, taxe, mode de paiement) par leur code externe.
type GenerateInvoiceRequest struct {
	Number        string               `json:"number"`
	IssueDate     string               `json:"issue_date"`               // ddMMyy
	DueDate       string               `json:"due_date,omitempty"`       // ddMMyy
	ServicePeriod string               `json:"service_period,omitempty"` // ddMMyy-ddMMyy
	DocumentType  string               `json:"document_type"`            // I-11 … I-16
	Currency      string               `json:"currency,omitempty"`
	Supplier      PartyRequest         `json:"supplier"`
	Customer      CustomerRequest      `json:"customer"`
	Lines         []LineRequest        `json:"lines"`
	PaymentTerms  []PaymentTermRequest `json:"payment_terms,omitempty"`
	Totals        TotalsRequest        `json:"totals"`
	OriginalRef   *OriginalRefRequest  `json:"original_ref,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

// PartyRequest partenaire (fournisseur ou client).
type PartyRequest struct {
	Identifier         string          `json:"identifier"`
	IdentifierType     string          `json:"identifier_type,omitempty"` // I-01 … I-04 ; déduit si absent
	Name               string          `json:"name"`
	RegistrationNumber string          `json:"registration_number,omitempty"`
	Address            AddressRequest  `json:"address"`
	Contact            *ContactRequest `json:"contact,omitempty"`
}

// CustomerRequest client : un partenaire plus sa qualité fiscale.
type CustomerRequest struct {
	PartyRequest
	Individual bool `json:"individual,omitempty"` // particulier non assujetti
}

// AddressRequest adresse postale.
type AddressRequest struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"` // ISO 3166-1, "TN" par défaut
}

// ContactRequest coordonnées optionnelles.
type ContactRequest struct {
	Phone   string `json:"phone,omitempty"`
	Fax     string `json:"fax,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// LineRequest ligne de facture. Les trois montants dérivés sont optionnels :
// fournis, ils sont contrôlés ; absents, ils sont recalculés.
type LineRequest struct {
	Number        int              `json:"number"`
	ItemCode      string           `json:"item_code"`
	Description   string           `json:"description,omitempty"`
	Unit          string           `json:"unit,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	TaxRate       decimal.Decimal  `json:"tax_rate"`
	TaxCode       string           `json:"tax_code,omitempty"` // I-1602 par défaut
	AmountExclTax *decimal.Decimal `json:"amount_excl_tax,omitempty"`
	TaxAmount     *decimal.Decimal `json:"tax_amount,omitempty"`
	AmountInclTax *decimal.Decimal `json:"amount_incl_tax,omitempty"`
}

// PaymentTermRequest condition de paiement.
type PaymentTermRequest struct {
	Method        string          `json:"method"` // I-111 … I-118
	Description   string          `json:"description,omitempty"`
	BankAccount   *AccountRequest `json:"bank_account,omitempty"`
	PostalAccount *AccountRequest `json:"postal_account,omitempty"`
}

// AccountRequest coordonnées de compte (RIB ou CCP).
type AccountRequest struct {
	Number      string `json:"number"`
	OwnerID     string `json:"owner_id,omitempty"`
	Institution string `json:"institution,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Country     string `json:"country,omitempty"`
}

// TotalsRequest totaux de pied de facture.
type TotalsRequest struct {
	ExclTax   decimal.Decimal  `json:"excl_tax"`
	Tax       decimal.Decimal  `json:"tax"`
	InclTax   decimal.Decimal  `json:"incl_tax"`
	StampDuty *decimal.Decimal `json:"stamp_duty,omitempty"`
}

// OriginalRefRequest référence à la facture d'origine (avoir, note de débit).
type OriginalRefRequest struct {
	Number    string `json:"number"`
	IssueDate string `json:"issue_date,omitempty"` // ddMMyy
}

// GeneratedDocumentResponse document archivé pour GET /api/invoices/:id.
type GeneratedDocumentResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	UnsignedXML   string          `json:"unsigned_xml"`
	SignedXML     string          `json:"signed_xml"`
	TotalExclTax  decimal.Decimal `json:"total_excl_tax"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalInclTax  decimal.Decimal `json:"total_incl_tax"`
	CertSubject   string          `json:"cert_subject"`
	CertSerial    string          `json:"cert_serial"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// PreviewResponse aperçu non signé pour POST /api/invoices/preview.
type PreviewResponse struct {
	Number string `json:"number"`
	XML    string `json:"xml"`
}

// ToEntity convertit la requête en facture du domaine. Seuls les échecs de
// décodage (date illisible, code de table inconnu) sont des erreurs ici : la
// cohérence métier relève du validateur, qui rapporte tout d'un coup.
func (r *GenerateInvoiceRequest) ToEntity() (*entity.Invoice, error) {
	docType, ok := teif.DocumentTypeFromCode(r.DocumentType)
	if !ok {
		return nil, fmt.Errorf("type de document inconnu : %q", r.DocumentType)
	}

	inv := &entity.Invoice{
		Number:       r.Number,
		DocumentType: docType,
		Currency:     r.Currency,
		Notes:        r.Notes,
	}

	if r.IssueDate != "" {
		d, err := teif.ParseDate(r.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("issue_date : %w", err)
		}
		inv.IssueDate = d
	}
	if r.DueDate != "" {
		d, err := teif.ParseDate(r.DueDate)
		if err != nil {
			return nil, fmt.Errorf("due_date : %w", err)
		}
		inv.DueDate = &d
	}
	if r.ServicePeriod != "" {
		start, end, err := teif.ParsePeriod(r.ServicePeriod)
		if err != nil {
			return nil, fmt.Errorf("service_period : %w", err)
		}
		inv.PeriodStart = &start
		inv.PeriodEnd = &end
	}

	supplier, err := r.Supplier.toParty()
	if err != nil {
		return nil, fmt.Errorf("supplier : %w", err)
	}
	inv.Supplier = supplier

	customerParty, err := r.Customer.toParty()
	if err != nil {
		return nil, fmt.Errorf("customer : %w", err)
	}
	custType := entity.CustomerProfessional
	if r.Customer.Individual {
		custType = entity.CustomerIndividual
	}
	inv.Customer = entity.Customer{Party: customerParty, Type: custType}

	for i, l := range r.Lines {
		line, err := l.toLine()
		if err != nil {
			return nil, fmt.Errorf("lines[%d] : %w", i, err)
		}
		inv.Lines = append(inv.Lines, line)
	}

	for i, p := range r.PaymentTerms {
		term, err := p.toTerm()
		if err != nil {
			return nil, fmt.Errorf("payment_terms[%d] : %w", i, err)
		}
		inv.PaymentTerms = append(inv.PaymentTerms, term)
	}

	inv.Totals = entity.Totals{
		ExclTax:   r.Totals.ExclTax,
		Tax:       r.Totals.Tax,
		InclTax:   r.Totals.InclTax,
		StampDuty: r.Totals.StampDuty,
	}

	if r.OriginalRef != nil {
		ref := entity.InvoiceReference{Number: r.OriginalRef.Number}
		if r.OriginalRef.IssueDate != "" {
			d, err := teif.ParseDate(r.OriginalRef.IssueDate)
			if err != nil {
				return nil, fmt.Errorf("original_ref.issue_date : %w", err)
			}
			ref.IssueDate = &d
		}
		inv.OriginalRef = &ref
	}

	return inv, nil
}

func (p *PartyRequest) toParty() (entity.Party, error) {
	idType := teif.IdentifierType(0)
	if p.IdentifierType != "" {
		t, ok := teif.IdentifierTypeFromCode(p.IdentifierType)
		if !ok {
			return entity.Party{}, fmt.Errorf("type d'identifiant inconnu : %q", p.IdentifierType)
		}
		idType = t
	} else if t, ok := teif.ClassifyIdentifier(p.Identifier); ok {
		idType = t
	}

	country := p.Address.Country
	if country == "" {
		country = "TN"
	}
	party := entity.Party{
		Identifier:         p.Identifier,
		IdentifierType:     idType,
		Name:               p.Name,
		RegistrationNumber: p.RegistrationNumber,
		Address: entity.Address{
			Street:     p.Address.Street,
			City:       p.Address.City,
			PostalCode: p.Address.PostalCode,
			Country:    country,
		},
	}
	if c := p.Contact; c != nil {
		party.Contact = &entity.Contact{
			Phone:   c.Phone,
			Fax:     c.Fax,
			Email:   c.Email,
			Website: c.Website,
		}
	}
	return party, nil
}

func (l *LineRequest) toLine() (entity.Line, error) {
	taxKind := teif.TaxTVA
	if l.TaxCode != "" {
		k, ok := teif.TaxKindFromCode(l.TaxCode)
		if !ok {
			return entity.Line{}, fmt.Errorf("code de taxe inconnu : %q", l.TaxCode)
		}
		taxKind = k
	}
	return entity.Line{
		Number:        l.Number,
		ItemCode:      l.ItemCode,
		Description:   l.Description,
		Unit:          l.Unit,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		TaxRate:       l.TaxRate,
		TaxKind:       taxKind,
		AmountExclTax: l.AmountExclTax,
		TaxAmount:     l.TaxAmount,
		AmountInclTax: l.AmountInclTax,
	}, nil
}

func (p *PaymentTermRequest) toTerm() (entity.PaymentTerm, error) {
	method, ok := teif.PaymentMethodFromCode(p.Method)
	if !ok {
		return entity.PaymentTerm{}, fmt.Errorf("mode de paiement inconnu : %q", p.Method)
	}
	term := entity.PaymentTerm{Method: method, Description: p.Description}
	if a := p.BankAccount; a != nil {
		term.BankAccount = a.toAccount()
	}
	if a := p.PostalAccount; a != nil {
		term.PostalAccount = a.toAccount()
	}
	return term, nil
}

func (a *AccountRequest) toAccount() *entity.AccountDetails {
	return &entity.AccountDetails{
		Number:      a.Number,
		OwnerID:     a.OwnerID,
		Institution: a.Institution,
		Branch:      a.Branch,
		Country:     a.Country,
	}
}

// FromGeneratedDocument convertit l'entité archivée en réponse HTTP.
func FromGeneratedDocument(doc *entity.GeneratedDocument) *GeneratedDocumentResponse {
	if doc == nil {
		return nil
	}
	return &GeneratedDocumentResponse{
		ID:            doc.ID,
		InvoiceNumber: doc.InvoiceNumber,
		UnsignedXML:   doc.UnsignedXML,
		SignedXML:     doc.SignedXML,
		TotalExclTax:  doc.TotalExclTax,
		TotalTax:      doc.TotalTax,
		TotalInclTax:  doc.TotalInclTax,
		CertSubject:   doc.CertSubject,
		CertSerial:    doc.CertSerial,
		GeneratedAt:   doc.GeneratedAt,
	}
}
