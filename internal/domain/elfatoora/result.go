// Package elfatoora contient le moteur de conformité El Fatoora : validation
// métier des factures contre les règles fiscales tunisiennes avant génération
// du XML TEIF. Les codes d'erreur sont le vrai contrat externe ; les messages
// peuvent être localisés par l'appelant.
package elfatoora

import "strings"

// Codes d'erreur stables du moteur (complètent les codes ELF_ du paquet
// pkg/teif portés par les codecs identifiant et date). Ne jamais les renommer.
const (
	CodeMissingInvoiceNumber  = "ELF_MISSING_INVOICE_NUMBER"
	CodeInvoiceNumberTooLong  = "ELF_INVOICE_NUMBER_TOO_LONG"
	CodeMissingInvoiceDate    = "ELF_MISSING_INVOICE_DATE"
	CodeDueDateBeforeIssue    = "ELF_DUE_DATE_BEFORE_ISSUE_DATE"
	CodeMissingSupplier       = "ELF_MISSING_SUPPLIER"
	CodeMissingCustomer       = "ELF_MISSING_CUSTOMER"
	CodeInvalidPostalCode     = "ELF_INVALID_POSTAL_CODE"
	CodeInvalidDocumentType   = "ELF_INVALID_DOCUMENT_TYPE"
	CodeNoLines               = "ELF_NO_LINES"
	CodeMissingItemCode       = "ELF_MISSING_ITEM_CODE"
	CodeItemCodeTooLong       = "ELF_ITEM_CODE_TOO_LONG"
	CodeMissingQuantity       = "ELF_MISSING_QUANTITY"
	CodeInvalidQuantity       = "ELF_INVALID_QUANTITY"
	CodeMissingUnitPrice      = "ELF_MISSING_UNIT_PRICE"
	CodeInvalidUnitPrice      = "ELF_INVALID_UNIT_PRICE"
	CodeInvalidTaxRate        = "ELF_INVALID_TAX_RATE"
	CodeIncorrectLineAmount   = "ELF_INCORRECT_LINE_AMOUNT"
	CodeIncorrectTaxAmount    = "ELF_INCORRECT_TAX_AMOUNT"
	CodeIncorrectLineTotal    = "ELF_INCORRECT_LINE_TOTAL"
	CodeIncorrectTotalExclTax = "ELF_INCORRECT_TOTAL_EXCL_TAX"
	CodeIncorrectTotalTax     = "ELF_INCORRECT_TOTAL_TAX"
	CodeIncorrectInvoiceTotal = "ELF_INCORRECT_INVOICE_TOTAL"
	CodeMissingOriginalRef    = "ELF_MISSING_ORIGINAL_INVOICE_REF"
	CodeInvalidPaymentMethod  = "ELF_INVALID_PAYMENT_METHOD"
	CodeMissingAccountDetails = "ELF_MISSING_ACCOUNT_DETAILS"
)

// Codes d'avertissement : surfacés à l'appelant, ne bloquent jamais la génération.
const (
	WarnIncompleteServicePeriod = "ELF_INCOMPLETE_SERVICE_PERIOD"
)

// Issue une entrée (chemin de champ, code stable, message lisible).
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult résultat de validation : objet valeur, muté uniquement via
// les opérations d'ajout explicites pendant sa construction.
type ValidationResult struct {
	errors   []Issue
	warnings []Issue
}

// NewValidationResult construit un résultat vide (valide).
func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

// AddError ajoute une erreur dure.
func (r *ValidationResult) AddError(field, code, message string) {
	r.errors = append(r.errors, Issue{Field: field, Code: code, Message: message})
}

// AddWarning ajoute un avertissement (ne rend jamais le résultat invalide).
func (r *ValidationResult) AddWarning(field, code, message string) {
	r.warnings = append(r.warnings, Issue{Field: field, Code: code, Message: message})
}

// Merge absorbe les erreurs et avertissements d'un autre résultat, dans l'ordre.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.errors = append(r.errors, other.errors...)
	r.warnings = append(r.warnings, other.warnings...)
}

// Valid vrai si aucune erreur dure n'a été collectée.
func (r *ValidationResult) Valid() bool { return len(r.errors) == 0 }

// Errors copie ordonnée des erreurs.
func (r *ValidationResult) Errors() []Issue {
	out := make([]Issue, len(r.errors))
	copy(out, r.errors)
	return out
}

// Warnings copie ordonnée des avertissements.
func (r *ValidationResult) Warnings() []Issue {
	out := make([]Issue, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// HasError vrai si une erreur au code donné a été collectée.
func (r *ValidationResult) HasError(code string) bool {
	for _, e := range r.errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// HasWarning vrai si un avertissement au code donné a été collecté.
func (r *ValidationResult) HasWarning(code string) bool {
	for _, w := range r.warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Summary concatène les codes d'erreur, pour les logs.
func (r *ValidationResult) Summary() string {
	codes := make([]string, len(r.errors))
	for i, e := range r.errors {
		codes[i] = e.Code
	}
	return strings.Join(codes, ", ")
}
