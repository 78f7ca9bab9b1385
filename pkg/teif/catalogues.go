// Package teif contient les catalogues de codes et les validations alignés au
// standard tunisien de la facture électronique TEIF (Tunisia Electronic
// Invoice Format) v1.8.8, publié par Tunisie TradeNet (TTN).
package teif

// Version du standard et agence de contrôle (attributs de l'élément racine).
const (
	Version           = "1.8.8"
	ControllingAgency = "TTN"
)

// =============================================================================
// Types de document (en-tête Bgm). Les consommateurs aval (TTN, DGI) font du
// pattern-matching sur ces codes littéraux : ne jamais les renommer.
// =============================================================================

// DocumentType type de document TEIF (variante fermée).
type DocumentType int

const (
	DocumentInvoice     DocumentType = iota + 1 // Facture
	DocumentCreditNote                          // Avoir
	DocumentDebitNote                           // Note de débit
	DocumentProforma                            // Facture proforma
	DocumentSelfBilling                         // Autofacturation
	DocumentOther                               // Autre document
)

// documentTypeCodes table de correspondance vers les codes externes du standard.
var documentTypeCodes = map[DocumentType]string{
	DocumentInvoice:     "I-11",
	DocumentCreditNote:  "I-12",
	DocumentDebitNote:   "I-13",
	DocumentProforma:    "I-14",
	DocumentSelfBilling: "I-15",
	DocumentOther:       "I-16",
}

// documentTypeLabels libellés officiels (texte de l'élément DocumentType).
var documentTypeLabels = map[DocumentType]string{
	DocumentInvoice:     "Facture",
	DocumentCreditNote:  "Facture avoir",
	DocumentDebitNote:   "Note de débit",
	DocumentProforma:    "Facture proforma",
	DocumentSelfBilling: "Autofacturation",
	DocumentOther:       "Autre",
}

// Code retourne le code externe du type de document (ex. "I-11").
func (t DocumentType) Code() string { return documentTypeCodes[t] }

// Label retourne le libellé officiel du type de document.
func (t DocumentType) Label() string { return documentTypeLabels[t] }

// IsValid indique si la variante appartient à la table fermée.
func (t DocumentType) IsValid() bool { _, ok := documentTypeCodes[t]; return ok }

// MayBeNegative indique si le type de document peut référencer des montants négatifs.
func (t DocumentType) MayBeNegative() bool {
	return t == DocumentCreditNote || t == DocumentDebitNote
}

// DocumentTypeFromCode retrouve la variante à partir du code externe.
func DocumentTypeFromCode(code string) (DocumentType, bool) {
	for t, c := range documentTypeCodes {
		if c == code {
			return t, true
		}
	}
	return 0, false
}

// RequiresOriginalReference indique si la référence à la facture d'origine est obligatoire.
func (t DocumentType) RequiresOriginalReference() bool {
	return t == DocumentCreditNote || t == DocumentDebitNote
}

// =============================================================================
// Codes fonction partenaire (PartnerDetails @functionCode).
// =============================================================================

const (
	PartnerFunctionSupplier = "I-62" // Fournisseur (émetteur)
	PartnerFunctionCustomer = "I-64" // Client (récepteur)
)

// =============================================================================
// Codes fonction date (DateText @functionCode) et identifiant de format période.
// =============================================================================

const (
	DateFunctionInvoice       = "I-31" // Date d'émission de la facture
	DateFunctionDue           = "I-32" // Date limite de paiement
	DateFunctionServicePeriod = "I-36" // Période de prestation

	DateFormatDay     = "ddMMyy"
	DateFormatDayTime = "ddMMyyHHmm"
	DateFormatPeriod  = "ddMMyy-ddMMyy"
)

// =============================================================================
// Types d'identifiant fiscal (PartnerIdentifier @type). Voir identifier.go
// pour les règles structurelles de chaque type.
// =============================================================================

// IdentifierType type d'identifiant d'un partenaire (variante fermée).
type IdentifierType int

const (
	IdentifierFiscal     IdentifierType = iota + 1 // Matricule fiscal (13 caractères)
	IdentifierNationalID                           // Carte d'identité nationale (8 chiffres)
	IdentifierResidence                            // Carte de séjour / passeport (9 chiffres)
	IdentifierOther                                // Autre identifiant (libre, 1 à 35 caractères)
)

var identifierTypeCodes = map[IdentifierType]string{
	IdentifierFiscal:     "I-01",
	IdentifierNationalID: "I-02",
	IdentifierResidence:  "I-03",
	IdentifierOther:      "I-04",
}

// Code retourne le code externe du type d'identifiant (ex. "I-01").
func (t IdentifierType) Code() string { return identifierTypeCodes[t] }

// IsValid indique si la variante appartient à la table fermée.
func (t IdentifierType) IsValid() bool { _, ok := identifierTypeCodes[t]; return ok }

// IdentifierTypeFromCode retrouve la variante à partir du code externe.
func IdentifierTypeFromCode(code string) (IdentifierType, bool) {
	for t, c := range identifierTypeCodes {
		if c == code {
			return t, true
		}
	}
	return 0, false
}

// =============================================================================
// Types de taxe (TaxTypeName @code).
// =============================================================================

// TaxKind nature de la taxe portée par une ligne ou un total.
type TaxKind int

const (
	TaxTVA       TaxKind = iota + 1 // Taxe sur la valeur ajoutée
	TaxStampDuty                    // Droit de timbre
	TaxFODEC                        // Fonds de développement de la compétitivité
	TaxOther                        // Autre prélèvement
)

var taxKindCodes = map[TaxKind]string{
	TaxTVA:       "I-1602",
	TaxStampDuty: "I-1601",
	TaxFODEC:     "I-1603",
	TaxOther:     "I-1699",
}

var taxKindLabels = map[TaxKind]string{
	TaxTVA:       "TVA",
	TaxStampDuty: "Droit de timbre",
	TaxFODEC:     "FODEC",
	TaxOther:     "Autre",
}

// Code retourne le code externe du type de taxe (ex. "I-1602").
func (k TaxKind) Code() string { return taxKindCodes[k] }

// Label retourne le libellé du type de taxe.
func (k TaxKind) Label() string { return taxKindLabels[k] }

// IsValid indique si la variante appartient à la table fermée.
func (k TaxKind) IsValid() bool { _, ok := taxKindCodes[k]; return ok }

// TaxKindFromCode retrouve la variante à partir du code externe.
func TaxKindFromCode(code string) (TaxKind, bool) {
	for k, c := range taxKindCodes {
		if c == code {
			return k, true
		}
	}
	return 0, false
}

// =============================================================================
// Codes type de montant (Moa @amountTypeCode).
// =============================================================================

const (
	AmountLineExclTax  = "I-183" // Montant hors taxes de la ligne
	AmountLineTax      = "I-184" // Montant de taxe de la ligne
	AmountLineInclTax  = "I-185" // Montant toutes taxes de la ligne
	AmountUnitPrice    = "I-171" // Prix unitaire
	AmountTotalExclTax = "I-176" // Total hors taxes de la facture
	AmountTotalTax     = "I-178" // Total des taxes de la facture
	AmountStampDuty    = "I-179" // Droit de timbre
	AmountTotalInclTax = "I-180" // Total toutes taxes comprises
)

// =============================================================================
// Modes de paiement (Pyt). Le bloc compte (bancaire ou postal) n'est émis que
// pour les modes qui l'exigent.
// =============================================================================

// PaymentMethod mode de paiement (variante fermée).
type PaymentMethod int

const (
	PaymentCash           PaymentMethod = iota + 1 // Espèces
	PaymentCheck                                   // Chèque
	PaymentCard                                    // Carte bancaire
	PaymentBankTransfer                            // Virement bancaire
	PaymentPostalTransfer                          // Virement postal
	PaymentDirectDebit                             // Prélèvement
	PaymentLetterOfCredit                          // Lettre de crédit
	PaymentOtherMethod                             // Autre
)

var paymentMethodCodes = map[PaymentMethod]string{
	PaymentCash:           "I-111",
	PaymentCheck:          "I-112",
	PaymentCard:           "I-113",
	PaymentBankTransfer:   "I-114",
	PaymentPostalTransfer: "I-115",
	PaymentDirectDebit:    "I-116",
	PaymentLetterOfCredit: "I-117",
	PaymentOtherMethod:    "I-118",
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentCash:           "Espèces",
	PaymentCheck:          "Chèque",
	PaymentCard:           "Carte bancaire",
	PaymentBankTransfer:   "Virement bancaire",
	PaymentPostalTransfer: "Virement postal",
	PaymentDirectDebit:    "Prélèvement",
	PaymentLetterOfCredit: "Lettre de crédit",
	PaymentOtherMethod:    "Autre",
}

// Code retourne le code externe du mode de paiement (ex. "I-114").
func (m PaymentMethod) Code() string { return paymentMethodCodes[m] }

// Label retourne le libellé du mode de paiement.
func (m PaymentMethod) Label() string { return paymentMethodLabels[m] }

// IsValid indique si la variante appartient à la table fermée.
func (m PaymentMethod) IsValid() bool { _, ok := paymentMethodCodes[m]; return ok }

// PaymentMethodFromCode retrouve la variante à partir du code externe.
func PaymentMethodFromCode(code string) (PaymentMethod, bool) {
	for m, c := range paymentMethodCodes {
		if c == code {
			return m, true
		}
	}
	return 0, false
}

// RequiresBankAccount indique si le mode exige un bloc compte bancaire.
func (m PaymentMethod) RequiresBankAccount() bool {
	return m == PaymentBankTransfer || m == PaymentDirectDebit || m == PaymentLetterOfCredit
}

// RequiresPostalAccount indique si le mode exige un bloc compte postal.
func (m PaymentMethod) RequiresPostalAccount() bool {
	return m == PaymentPostalTransfer
}

// Codes fonction du bloc compte (PytFii @functionCode).
const (
	AccountFunctionBank   = "I-141" // Compte bancaire
	AccountFunctionPostal = "I-142" // Compte courant postal
)

// =============================================================================
// Unités de mesure (LinQty @measurementUnit) — codes UNECE d'usage courant.
// =============================================================================

const (
	UnitPiece    = "PCE" // Pièce
	UnitKilogram = "KGM" // Kilogramme
	UnitLitre    = "LTR" // Litre
	UnitMetre    = "MTR" // Mètre
	UnitHour     = "HUR" // Heure
	UnitDay      = "DAY" // Jour
)

// ValidMeasurementUnitCodes codes d'unité de mesure admis en facturation.
var ValidMeasurementUnitCodes = map[string]bool{
	UnitPiece: true, UnitKilogram: true, UnitLitre: true,
	UnitMetre: true, UnitHour: true, UnitDay: true,
}

// DefaultCurrency devise par défaut des factures tunisiennes.
const DefaultCurrency = "TND"
