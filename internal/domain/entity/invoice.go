package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// Invoice représente une facture El Fatoora complète, telle que reçue du
// service hôte après les contrôles de présence amont. Objet valeur : construit
// une fois, traversé en lecture seule par le pipeline, jamais muté.
type Invoice struct {
	Number       string     // Numéro de facture (<= 70 caractères)
	IssueDate    time.Time  // Date d'émission (zéro = absente, erreur dure)
	DueDate      *time.Time // Date limite de paiement (optionnelle)
	PeriodStart  *time.Time // Début de période de prestation (optionnel)
	PeriodEnd    *time.Time // Fin de période de prestation (optionnelle)
	DocumentType teif.DocumentType
	Supplier     Party
	Customer     Customer
	Lines        []Line
	PaymentTerms []PaymentTerm
	Totals       Totals
	Currency     string            // Code devise ISO 4217 ; "TND" par défaut
	OriginalRef  *InvoiceReference // Facture d'origine (obligatoire pour avoir / note de débit)
	Notes        string
}

// InvoiceReference référence à une facture d'origine (avoir, note de débit).
type InvoiceReference struct {
	Number    string
	IssueDate *time.Time
}

// Totals totaux de la facture, fournis par l'appelant et revalidés par le
// moteur (tolérance 0.001 sur les millimes).
type Totals struct {
	ExclTax   decimal.Decimal
	Tax       decimal.Decimal
	InclTax   decimal.Decimal
	StampDuty *decimal.Decimal // Droit de timbre (optionnel)
}

// Line ligne de facture. Les trois montants dérivés sont optionnels : s'ils
// sont fournis le validateur les recalcule et les compare, sinon le générateur
// les calcule lui-même avec les mêmes arrondis.
type Line struct {
	Number      int    // Numéro de ligne, base 1
	ItemCode    string // Code article (<= 35 caractères, obligatoire)
	Description string
	Unit        string // Code unité de mesure (PCE, KGM, ...)
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
	TaxRate     decimal.Decimal // Taux de TVA : exactement 0, 7, 13 ou 19
	TaxKind     teif.TaxKind

	AmountExclTax *decimal.Decimal
	TaxAmount     *decimal.Decimal
	AmountInclTax *decimal.Decimal
}

// Currency retourne la devise effective de la facture.
func (i *Invoice) EffectiveCurrency() string {
	if i.Currency == "" {
		return teif.DefaultCurrency
	}
	return i.Currency
}

// HasServicePeriod indique si la période de prestation est complète (les deux
// bornes présentes). Le générateur et le validateur partagent ce prédicat :
// une période incomplète est un avertissement et n'est pas émise dans le XML.
func (i *Invoice) HasServicePeriod() bool {
	return i.PeriodStart != nil && i.PeriodEnd != nil
}
