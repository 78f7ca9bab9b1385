package elfatoora

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fatoora-tn/compta-api/internal/domain/entity"
)

// Tolérance absolue entre un montant recalculé et un montant fourni (0.001,
// soit la précision millime du standard). Conservée telle quelle, sans la
// redériver.
var amountTolerance = decimal.New(1, -3)

// Taux légaux de TVA tunisiens. Tout autre taux est une erreur dure.
var legalTaxRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromInt(7),
	decimal.NewFromInt(13),
	decimal.NewFromInt(19),
}

// Round3 arrondit à 3 décimales, demi-supérieur (arrondi commercial du
// standard : les montants sont tous positifs ici).
func Round3(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// CalculateLineAmountExclTax montant hors taxes d'une ligne : round3(q * pu).
func CalculateLineAmountExclTax(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round3(quantity.Mul(unitPrice))
}

// CalculateLineTaxAmount montant de taxe d'une ligne : round3(ht * taux / 100).
func CalculateLineTaxAmount(amountExclTax, taxRate decimal.Decimal) decimal.Decimal {
	return Round3(amountExclTax.Mul(taxRate).Div(decimal.NewFromInt(100)))
}

// IsLegalTaxRate vrai si le taux appartient à {0, 7, 13, 19}.
func IsLegalTaxRate(rate decimal.Decimal) bool {
	for _, r := range legalTaxRates {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}

// withinTolerance vrai si |a - b| <= 0.001.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// ValidateLineAmounts recalcule les montants dérivés d'une ligne et les
// compare aux valeurs fournies (si fournies). Quantité absente, prix unitaire
// absent et taux hors barème sont trois erreurs dures distinctes, jamais
// silencieusement défaultées.
func ValidateLineAmounts(line entity.Line, res *ValidationResult) {
	field := fmt.Sprintf("lines[%d]", line.Number)

	if line.Quantity == nil {
		res.AddError(field+".quantity", CodeMissingQuantity, "quantité absente")
	} else if !line.Quantity.IsPositive() {
		res.AddError(field+".quantity", CodeInvalidQuantity,
			fmt.Sprintf("quantité %s non strictement positive", line.Quantity))
	}
	if line.UnitPrice == nil {
		res.AddError(field+".unitPrice", CodeMissingUnitPrice, "prix unitaire absent")
	} else if line.UnitPrice.IsNegative() {
		res.AddError(field+".unitPrice", CodeInvalidUnitPrice,
			fmt.Sprintf("prix unitaire %s négatif", line.UnitPrice))
	}
	if !IsLegalTaxRate(line.TaxRate) {
		res.AddError(field+".taxRate", CodeInvalidTaxRate,
			fmt.Sprintf("taux de TVA %s hors barème légal (0, 7, 13, 19)", line.TaxRate))
	}
	if line.Quantity == nil || line.UnitPrice == nil || !IsLegalTaxRate(line.TaxRate) {
		return
	}

	exclTax := CalculateLineAmountExclTax(*line.Quantity, *line.UnitPrice)
	taxAmount := CalculateLineTaxAmount(exclTax, line.TaxRate)
	inclTax := exclTax.Add(taxAmount)

	if line.AmountExclTax != nil && !withinTolerance(*line.AmountExclTax, exclTax) {
		res.AddError(field+".amountExclTax", CodeIncorrectLineAmount,
			fmt.Sprintf("montant HT fourni %s, recalculé %s", line.AmountExclTax, exclTax))
	}
	if line.TaxAmount != nil && !withinTolerance(*line.TaxAmount, taxAmount) {
		res.AddError(field+".taxAmount", CodeIncorrectTaxAmount,
			fmt.Sprintf("montant de taxe fourni %s, recalculé %s", line.TaxAmount, taxAmount))
	}
	if line.AmountInclTax != nil && !withinTolerance(*line.AmountInclTax, inclTax) {
		res.AddError(field+".amountInclTax", CodeIncorrectLineTotal,
			fmt.Sprintf("montant TTC fourni %s, recalculé %s", line.AmountInclTax, inclTax))
	}
}

// ValidateInvoiceTotals vérifie les totaux de la facture contre la somme des
// lignes : total HT = somme des HT lignes, total TTC = total HT + total taxes,
// toujours à la tolérance près. Une facture sans ligne est une erreur dure.
func ValidateInvoiceTotals(inv *entity.Invoice, res *ValidationResult) {
	if len(inv.Lines) == 0 {
		res.AddError("lines", CodeNoLines, "la facture doit comporter au moins une ligne")
		return
	}

	var sumExcl, sumTax decimal.Decimal
	for _, line := range inv.Lines {
		if line.Quantity == nil || line.UnitPrice == nil || !IsLegalTaxRate(line.TaxRate) {
			// Ligne déjà rejetée par ValidateLineAmounts : les totaux ne sont
			// pas comparables.
			return
		}
		excl := CalculateLineAmountExclTax(*line.Quantity, *line.UnitPrice)
		sumExcl = sumExcl.Add(excl)
		sumTax = sumTax.Add(CalculateLineTaxAmount(excl, line.TaxRate))
	}

	if !withinTolerance(inv.Totals.ExclTax, sumExcl) {
		res.AddError("totals.exclTax", CodeIncorrectTotalExclTax,
			fmt.Sprintf("total HT fourni %s, somme des lignes %s", inv.Totals.ExclTax, sumExcl))
	}
	if !withinTolerance(inv.Totals.Tax, sumTax) {
		res.AddError("totals.tax", CodeIncorrectTotalTax,
			fmt.Sprintf("total taxes fourni %s, somme des lignes %s", inv.Totals.Tax, sumTax))
	}
	expectedIncl := inv.Totals.ExclTax.Add(inv.Totals.Tax)
	if !withinTolerance(inv.Totals.InclTax, expectedIncl) {
		res.AddError("totals.inclTax", CodeIncorrectInvoiceTotal,
			fmt.Sprintf("total TTC fourni %s, attendu HT + taxes = %s", inv.Totals.InclTax, expectedIncl))
	}
}
