package elfatoora_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-tn/compta-api/internal/domain/elfatoora"
	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// factureValide construit une facture complète et cohérente qui doit passer
// toutes les validations. Les tests d'erreur partent de cette facture et
// cassent un champ à la fois.
func factureValide() *entity.Invoice {
	issue := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 1, 0)
	return &entity.Invoice{
		Number:       "FAC-2025-0042",
		IssueDate:    issue,
		DueDate:      &due,
		DocumentType: teif.DocumentInvoice,
		Supplier: entity.Party{
			Identifier:     "1234567AAM001",
			IdentifierType: teif.IdentifierFiscal,
			Name:           "Société Tunisienne de Services",
			Address: entity.Address{
				Street:     "12 avenue Habib Bourguiba",
				City:       "Tunis",
				PostalCode: "1001",
				Country:    "TN",
			},
		},
		Customer: entity.Customer{
			Party: entity.Party{
				Identifier:     "7654321BBM002",
				IdentifierType: teif.IdentifierFiscal,
				Name:           "Client SARL",
				Address: entity.Address{
					City:       "Sfax",
					PostalCode: "3000",
					Country:    "TN",
				},
			},
			Type:   entity.CustomerProfessional,
			Regime: entity.RegimeSubjectToVAT,
		},
		Lines: []entity.Line{ligneComplete()},
		Totals: entity.Totals{
			ExclTax: dec("200"),
			Tax:     dec("38"),
			InclTax: dec("238"),
		},
		Currency: "TND",
	}
}

func TestValidate_FactureValide(t *testing.T) {
	res := elfatoora.Validate(factureValide())
	require.True(t, res.Valid(), "la facture de référence doit passer : %s", res.Summary())
	assert.Empty(t, res.Warnings())
}

func TestValidate_FactureNulle(t *testing.T) {
	res := elfatoora.Validate(nil)
	assert.False(t, res.Valid())
}

func TestValidate_NumeroAbsent(t *testing.T) {
	inv := factureValide()
	inv.Number = ""

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeMissingInvoiceNumber))
}

func TestValidate_NumeroTropLong(t *testing.T) {
	inv := factureValide()
	long := make([]byte, 71)
	for i := range long {
		long[i] = 'X'
	}
	inv.Number = string(long)

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeInvoiceNumberTooLong))
}

func TestValidate_DateEmissionAbsente(t *testing.T) {
	inv := factureValide()
	inv.IssueDate = time.Time{}

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeMissingInvoiceDate))
}

func TestValidate_DateLimiteAnterieure(t *testing.T) {
	inv := factureValide()
	due := inv.IssueDate.AddDate(0, 0, -1)
	inv.DueDate = &due

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeDueDateBeforeIssue))
}

// TestValidate_PasDeCourtCircuit : plusieurs champs cassés produisent
// plusieurs erreurs en une seule passe, jamais seulement la première.
func TestValidate_PasDeCourtCircuit(t *testing.T) {
	inv := factureValide()
	inv.Number = ""
	inv.Lines[0].TaxRate = dec("18")
	due := inv.IssueDate.AddDate(0, 0, -2)
	inv.DueDate = &due

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeMissingInvoiceNumber))
	assert.True(t, res.HasError(elfatoora.CodeInvalidTaxRate))
	assert.True(t, res.HasError(elfatoora.CodeDueDateBeforeIssue))
	assert.GreaterOrEqual(t, len(res.Errors()), 3)
}

func TestValidate_TauxTVA18Rejete(t *testing.T) {
	inv := factureValide()
	inv.Lines[0].TaxRate = dec("18")

	res := elfatoora.Validate(inv)
	require.False(t, res.Valid())
	assert.True(t, res.HasError(elfatoora.CodeInvalidTaxRate))
}

func TestValidate_IdentifiantFournisseurInvalide(t *testing.T) {
	inv := factureValide()
	inv.Supplier.Identifier = "1234567IAM001" // lettre de contrôle interdite

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(teif.CodeForbiddenLetter))
}

// TestValidator_ClientParticulier_TypeDeclareGagne : le type déclaré prime
// sur la classification automatique. Une CIN de 8 chiffres déclarée matricule
// fiscal doit être rejetée comme matricule, pas validée comme CIN.
func TestValidator_ClientParticulier_TypeDeclareGagne(t *testing.T) {
	inv := factureValide()
	inv.Customer.Identifier = "12345678"
	inv.Customer.IdentifierType = teif.IdentifierFiscal
	inv.Customer.Type = entity.CustomerIndividual

	res := elfatoora.Validate(inv)
	require.False(t, res.Valid())
	assert.True(t, res.HasError(teif.CodeInvalidIdentifierLength))

	// Déclarée correctement CIN, la même valeur passe.
	inv.Customer.IdentifierType = teif.IdentifierNationalID
	res = elfatoora.Validate(inv)
	assert.True(t, res.Valid(), "CIN déclarée CIN : %s", res.Summary())
}

func TestValidate_CodePostalTunisien(t *testing.T) {
	inv := factureValide()
	inv.Supplier.Address.PostalCode = "100"

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeInvalidPostalCode))

	// Hors Tunisie, le format local ne s'applique pas.
	inv.Supplier.Address.Country = "FR"
	inv.Supplier.Address.PostalCode = "75008"
	res = elfatoora.Validate(inv)
	assert.False(t, res.HasError(elfatoora.CodeInvalidPostalCode))
}

func TestValidate_PeriodeIncomplete_Avertissement(t *testing.T) {
	inv := factureValide()
	debut := inv.IssueDate.AddDate(0, -1, 0)
	inv.PeriodStart = &debut

	res := elfatoora.Validate(inv)
	assert.True(t, res.Valid(), "un avertissement ne doit pas invalider")
	assert.True(t, res.HasWarning(elfatoora.WarnIncompleteServicePeriod))
}

func TestValidate_PeriodeInversee(t *testing.T) {
	inv := factureValide()
	debut := inv.IssueDate
	fin := inv.IssueDate.AddDate(0, 0, -5)
	inv.PeriodStart = &debut
	inv.PeriodEnd = &fin

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(teif.CodeInvalidPeriod))
}

func TestValidate_AvoirSansReference(t *testing.T) {
	inv := factureValide()
	inv.DocumentType = teif.DocumentCreditNote

	res := elfatoora.Validate(inv)
	require.False(t, res.Valid())
	assert.True(t, res.HasError(elfatoora.CodeMissingOriginalRef))
}

func TestValidate_AvoirAvecReference(t *testing.T) {
	inv := factureValide()
	inv.DocumentType = teif.DocumentCreditNote
	origDate := inv.IssueDate.AddDate(0, -2, 0)
	inv.OriginalRef = &entity.InvoiceReference{
		Number:    "FAC-2025-0001",
		IssueDate: &origDate,
	}

	res := elfatoora.Validate(inv)
	assert.True(t, res.Valid(), "avoir référencé : %s", res.Summary())
}

func TestValidate_NoteDebitSansReference(t *testing.T) {
	inv := factureValide()
	inv.DocumentType = teif.DocumentDebitNote

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeMissingOriginalRef))
}

func TestValidate_TypeDocumentInconnu(t *testing.T) {
	inv := factureValide()
	inv.DocumentType = teif.DocumentType(99)

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeInvalidDocumentType))
}

func TestValidate_CodeArticle(t *testing.T) {
	inv := factureValide()
	inv.Lines[0].ItemCode = ""

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeMissingItemCode))

	long := make([]byte, 36)
	for i := range long {
		long[i] = 'A'
	}
	inv = factureValide()
	inv.Lines[0].ItemCode = string(long)
	res = elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeItemCodeTooLong))
}

func TestValidate_ModePaiement(t *testing.T) {
	inv := factureValide()
	inv.PaymentTerms = []entity.PaymentTerm{{Method: teif.PaymentMethod(0)}}

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeInvalidPaymentMethod),
		"le mode zéro n'est pas un mode de paiement")
}

func TestValidate_VirementSansCompte(t *testing.T) {
	inv := factureValide()
	inv.PaymentTerms = []entity.PaymentTerm{{Method: teif.PaymentBankTransfer}}

	res := elfatoora.Validate(inv)
	assert.True(t, res.HasError(elfatoora.CodeMissingAccountDetails))
}

func TestValidate_VirementAvecCompte(t *testing.T) {
	inv := factureValide()
	inv.PaymentTerms = []entity.PaymentTerm{{
		Method: teif.PaymentBankTransfer,
		BankAccount: &entity.AccountDetails{
			Number:      "TN5901000123456789012345",
			OwnerID:     "1234567AAM001",
			Institution: "Banque de Tunisie",
			Country:     "TN",
		},
	}}

	res := elfatoora.Validate(inv)
	assert.True(t, res.Valid(), "virement avec RIB : %s", res.Summary())
}

func TestValidate_EspecesSansCompte(t *testing.T) {
	// Les espèces n'exigent aucun compte.
	inv := factureValide()
	inv.PaymentTerms = []entity.PaymentTerm{{Method: teif.PaymentCash}}

	res := elfatoora.Validate(inv)
	assert.True(t, res.Valid(), "%s", res.Summary())
}
