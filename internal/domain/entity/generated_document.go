package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GeneratedDocument trace d'une génération El Fatoora réussie : le document
// signé archivé avec les métadonnées du certificat utilisé. Les totaux sont
// dupliqués hors du XML pour rester requêtables (rapprochement comptable).
type GeneratedDocument struct {
	ID            string
	InvoiceNumber string
	UnsignedXML   string
	SignedXML     string
	TotalExclTax  decimal.Decimal
	TotalTax      decimal.Decimal
	TotalInclTax  decimal.Decimal
	CertSubject   string
	CertSerial    string
	GeneratedAt   time.Time
}
