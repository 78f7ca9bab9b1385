package elfatoora

import (
	"fmt"

	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// Validate exécute toutes les validations métier dans l'ordre et fusionne
// l'ensemble des erreurs et avertissements, sans court-circuit : l'appelant
// reçoit la liste complète des problèmes en un seul passage. Les contrôles de
// présence faits en amont sont réaffirmés défensivement.
func Validate(inv *entity.Invoice) *ValidationResult {
	res := NewValidationResult()
	if inv == nil {
		res.AddError("", CodeMissingInvoiceNumber, "facture nulle")
		return res
	}

	validatePresence(inv, res)
	validateParties(inv, res)
	validateDates(inv, res)

	for _, line := range inv.Lines {
		validateLineShape(line, res)
		ValidateLineAmounts(line, res)
	}
	ValidateInvoiceTotals(inv, res)

	validatePaymentTerms(inv, res)

	// Règle structurelle : avoir et note de débit doivent référencer la
	// facture d'origine.
	if inv.DocumentType.RequiresOriginalReference() && inv.OriginalRef == nil {
		res.AddError("originalRef", CodeMissingOriginalRef,
			fmt.Sprintf("le type de document %s exige une référence à la facture d'origine", inv.DocumentType.Code()))
	}

	return res
}

func validatePresence(inv *entity.Invoice, res *ValidationResult) {
	if inv.Number == "" {
		res.AddError("number", CodeMissingInvoiceNumber, "numéro de facture absent")
	} else if len(inv.Number) > 70 {
		res.AddError("number", CodeInvoiceNumberTooLong,
			fmt.Sprintf("numéro de facture de %d caractères (maximum 70)", len(inv.Number)))
	}
	if !inv.DocumentType.IsValid() {
		res.AddError("documentType", CodeInvalidDocumentType,
			fmt.Sprintf("type de document inconnu (%d)", inv.DocumentType))
	}
	if inv.Supplier.Identifier == "" {
		res.AddError("supplier.identifier", CodeMissingSupplier, "identifiant fournisseur absent")
	}
	if inv.Customer.Identifier == "" {
		res.AddError("customer.identifier", CodeMissingCustomer, "identifiant client absent")
	}
}

// validateParties valide les identifiants contre le type déclaré (le type
// déclaré prime sur la classification automatique) et le code postal tunisien.
func validateParties(inv *entity.Invoice, res *ValidationResult) {
	if inv.Supplier.Identifier != "" {
		addIdentifierIssue(res, "supplier.identifier",
			teif.ValidateIdentifier(inv.Supplier.Identifier, inv.Supplier.IdentifierType))
	}
	if inv.Customer.Identifier != "" {
		addIdentifierIssue(res, "customer.identifier",
			teif.ValidateIdentifier(inv.Customer.Identifier, inv.Customer.IdentifierType))
	}
	validatePostalCode(inv.Supplier.Address, "supplier.address.postalCode", res)
	validatePostalCode(inv.Customer.Address, "customer.address.postalCode", res)
}

func validatePostalCode(addr entity.Address, field string, res *ValidationResult) {
	if addr.Country != "TN" || addr.PostalCode == "" {
		return
	}
	if len(addr.PostalCode) != 4 {
		res.AddError(field, CodeInvalidPostalCode,
			fmt.Sprintf("code postal tunisien %q : 4 chiffres attendus", addr.PostalCode))
		return
	}
	for i := 0; i < 4; i++ {
		if addr.PostalCode[i] < '0' || addr.PostalCode[i] > '9' {
			res.AddError(field, CodeInvalidPostalCode,
				fmt.Sprintf("code postal tunisien %q non numérique", addr.PostalCode))
			return
		}
	}
}

// validateDates cohérence des dates : date d'émission obligatoire, date
// limite jamais antérieure à l'émission, période incomplète = avertissement.
func validateDates(inv *entity.Invoice, res *ValidationResult) {
	if inv.IssueDate.IsZero() {
		res.AddError("issueDate", CodeMissingInvoiceDate, "date d'émission absente")
		return
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.IssueDate) {
		res.AddError("dueDate", CodeDueDateBeforeIssue,
			fmt.Sprintf("date limite %s antérieure à la date d'émission %s",
				teif.FormatDate(*inv.DueDate), teif.FormatDate(inv.IssueDate)))
	}
	switch {
	case inv.PeriodStart != nil && inv.PeriodEnd != nil:
		if inv.PeriodStart.After(*inv.PeriodEnd) {
			res.AddError("periodStart", teif.CodeInvalidPeriod,
				"début de période postérieur à la fin")
		}
	case inv.PeriodStart != nil || inv.PeriodEnd != nil:
		res.AddWarning("periodStart", WarnIncompleteServicePeriod,
			"période de prestation incomplète : une seule borne renseignée, période non émise")
	}
}

func validateLineShape(line entity.Line, res *ValidationResult) {
	field := fmt.Sprintf("lines[%d]", line.Number)
	if line.ItemCode == "" {
		res.AddError(field+".itemCode", CodeMissingItemCode, "code article absent")
	} else if len(line.ItemCode) > 35 {
		res.AddError(field+".itemCode", CodeItemCodeTooLong,
			fmt.Sprintf("code article de %d caractères (maximum 35)", len(line.ItemCode)))
	}
}

func validatePaymentTerms(inv *entity.Invoice, res *ValidationResult) {
	for i, term := range inv.PaymentTerms {
		field := fmt.Sprintf("paymentTerms[%d]", i)
		if !term.Method.IsValid() {
			res.AddError(field+".method", CodeInvalidPaymentMethod,
				fmt.Sprintf("mode de paiement inconnu (%d)", term.Method))
			continue
		}
		if term.Method.RequiresBankAccount() && term.BankAccount == nil {
			res.AddError(field+".bankAccount", CodeMissingAccountDetails,
				fmt.Sprintf("le mode %s exige un compte bancaire", term.Method.Label()))
		}
		if term.Method.RequiresPostalAccount() && term.PostalAccount == nil {
			res.AddError(field+".postalAccount", CodeMissingAccountDetails,
				fmt.Sprintf("le mode %s exige un compte postal", term.Method.Label()))
		}
	}
}

func addIdentifierIssue(res *ValidationResult, field string, err error) {
	if err == nil {
		return
	}
	if ce, ok := err.(*teif.CodeError); ok {
		res.AddError(field, ce.Code, ce.Message)
		return
	}
	res.AddError(field, teif.CodeInvalidIdentifier, err.Error())
}
