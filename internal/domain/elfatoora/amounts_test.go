package elfatoora_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-tn/compta-api/internal/domain/elfatoora"
	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests de l'arithmétique millimes du moteur El Fatoora.
//
// Vecteur de référence (TVA 19 %) :
//
//	quantité 2.000 × prix unitaire 100.000 = HT    200.000
//	200.000 × 19 / 100                     = TVA    38.000
//	200.000 + 38.000                       = TTC   238.000
//
// Toute comparaison de montants tolère un écart d'arrondi de 0.001 TND
// (un millime), jamais plus.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestRound3(t *testing.T) {
	cas := []struct {
		entree, attendu string
	}{
		{"1.2344", "1.234"},
		{"1.2345", "1.235"}, // demi-millime arrondi au supérieur
		{"1.2346", "1.235"},
		{"0.0005", "0.001"},
		{"100", "100"},
	}
	for _, c := range cas {
		assert.True(t, elfatoora.Round3(dec(c.entree)).Equal(dec(c.attendu)),
			"Round3(%s) doit valoir %s", c.entree, c.attendu)
	}
}

func TestCalculateLineAmounts_VectorReference(t *testing.T) {
	ht := elfatoora.CalculateLineAmountExclTax(dec("2"), dec("100"))
	assert.True(t, ht.Equal(dec("200")), "HT attendu 200.000, obtenu %s", ht)

	tva := elfatoora.CalculateLineTaxAmount(ht, dec("19"))
	assert.True(t, tva.Equal(dec("38")), "TVA attendue 38.000, obtenue %s", tva)
}

func TestCalculateLineTaxAmount_Arrondi(t *testing.T) {
	// 33.333 × 19 % = 6.33327 → 6.333 après arrondi au millime.
	tva := elfatoora.CalculateLineTaxAmount(dec("33.333"), dec("19"))
	assert.True(t, tva.Equal(dec("6.333")), "obtenu %s", tva)
}

func TestIsLegalTaxRate(t *testing.T) {
	for _, taux := range []string{"0", "7", "13", "19"} {
		assert.True(t, elfatoora.IsLegalTaxRate(dec(taux)), "taux %s doit être légal", taux)
	}
	for _, taux := range []string{"18", "20", "-7", "19.5"} {
		assert.False(t, elfatoora.IsLegalTaxRate(dec(taux)), "taux %s doit être illégal", taux)
	}
}

func ligneComplete() entity.Line {
	return entity.Line{
		Number:        1,
		ItemCode:      "ART-001",
		Description:   "Prestation de conseil",
		Unit:          "PCE",
		Quantity:      decPtr("2"),
		UnitPrice:     decPtr("100"),
		TaxRate:       dec("19"),
		TaxKind:       teif.TaxTVA,
		AmountExclTax: decPtr("200"),
		TaxAmount:     decPtr("38"),
		AmountInclTax: decPtr("238"),
	}
}

func TestValidateLineAmounts_Nominal(t *testing.T) {
	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligneComplete(), res)
	assert.True(t, res.Valid(), "ligne cohérente : %s", res.Summary())
}

func TestValidateLineAmounts_ToleranceMillime(t *testing.T) {
	// Un écart d'exactement un millime est toléré.
	ligne := ligneComplete()
	ligne.AmountExclTax = decPtr("200.001")
	ligne.AmountInclTax = decPtr("238.001")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.Valid(), "un millime d'écart doit passer : %s", res.Summary())
}

func TestValidateLineAmounts_EcartDeuxMillimes(t *testing.T) {
	ligne := ligneComplete()
	ligne.AmountExclTax = decPtr("200.002")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeIncorrectLineAmount),
		"deux millimes d'écart doivent être rejetés")
}

func TestValidateLineAmounts_QuantiteManquante(t *testing.T) {
	ligne := ligneComplete()
	ligne.Quantity = nil

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeMissingQuantity))
}

func TestValidateLineAmounts_QuantiteNulle(t *testing.T) {
	ligne := ligneComplete()
	ligne.Quantity = decPtr("0")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeInvalidQuantity),
		"une quantité nulle ou négative est invalide")
}

func TestValidateLineAmounts_PrixNegatif(t *testing.T) {
	ligne := ligneComplete()
	ligne.UnitPrice = decPtr("-5")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeInvalidUnitPrice))
}

func TestValidateLineAmounts_PrixZeroLegal(t *testing.T) {
	// Un prix unitaire de zéro est légal (article offert).
	ligne := ligneComplete()
	ligne.UnitPrice = decPtr("0")
	ligne.AmountExclTax = decPtr("0")
	ligne.TaxAmount = decPtr("0")
	ligne.AmountInclTax = decPtr("0")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.Valid(), "prix zéro : %s", res.Summary())
}

func TestValidateLineAmounts_TauxIllegal(t *testing.T) {
	ligne := ligneComplete()
	ligne.TaxRate = dec("18")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeInvalidTaxRate),
		"18 %% n'est pas un taux de TVA tunisien")
}

func TestValidateLineAmounts_TVAIncorrecte(t *testing.T) {
	ligne := ligneComplete()
	ligne.TaxAmount = decPtr("37")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeIncorrectTaxAmount))
}

func TestValidateLineAmounts_TTCIncorrect(t *testing.T) {
	ligne := ligneComplete()
	ligne.AmountInclTax = decPtr("240")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateLineAmounts(ligne, res)
	assert.True(t, res.HasError(elfatoora.CodeIncorrectLineTotal))
}

func factureTotaux() *entity.Invoice {
	ligne := ligneComplete()
	return &entity.Invoice{
		Lines: []entity.Line{ligne},
		Totals: entity.Totals{
			ExclTax: dec("200"),
			Tax:     dec("38"),
			InclTax: dec("238"),
		},
	}
}

func TestValidateInvoiceTotals_Nominal(t *testing.T) {
	res := elfatoora.NewValidationResult()
	elfatoora.ValidateInvoiceTotals(factureTotaux(), res)
	assert.True(t, res.Valid(), "totaux cohérents : %s", res.Summary())
}

func TestValidateInvoiceTotals_SansLigne(t *testing.T) {
	res := elfatoora.NewValidationResult()
	elfatoora.ValidateInvoiceTotals(&entity.Invoice{}, res)
	assert.True(t, res.HasError(elfatoora.CodeNoLines))
}

func TestValidateInvoiceTotals_HTIncoherent(t *testing.T) {
	inv := factureTotaux()
	inv.Totals.ExclTax = dec("210")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateInvoiceTotals(inv, res)
	assert.True(t, res.HasError(elfatoora.CodeIncorrectTotalExclTax))
}

func TestValidateInvoiceTotals_TTCDifferentDeLaSomme(t *testing.T) {
	// TTC ≠ HT + TVA même quand chaque composante colle aux lignes.
	inv := factureTotaux()
	inv.Totals.InclTax = dec("239")

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateInvoiceTotals(inv, res)
	assert.True(t, res.HasError(elfatoora.CodeIncorrectInvoiceTotal))
}

func TestValidateInvoiceTotals_DroitDeTimbreHorsEquation(t *testing.T) {
	// Le droit de timbre est porté à part (I-179) : il n'entre pas dans
	// l'équation TTC = HT + taxes.
	inv := factureTotaux()
	timbre := dec("1")
	inv.Totals.StampDuty = &timbre

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateInvoiceTotals(inv, res)
	assert.True(t, res.Valid(), "timbre fiscal présent : %s", res.Summary())
}

func TestValidateInvoiceTotals_MultiLignes(t *testing.T) {
	l1 := ligneComplete()
	l2 := entity.Line{
		Number:        2,
		ItemCode:      "ART-002",
		Unit:          "PCE",
		Quantity:      decPtr("3"),
		UnitPrice:     decPtr("10.500"),
		TaxRate:       dec("7"),
		TaxKind:       teif.TaxTVA,
		AmountExclTax: decPtr("31.500"),
		TaxAmount:     decPtr("2.205"),
		AmountInclTax: decPtr("33.705"),
	}
	inv := &entity.Invoice{
		Lines: []entity.Line{l1, l2},
		Totals: entity.Totals{
			ExclTax: dec("231.500"),
			Tax:     dec("40.205"),
			InclTax: dec("271.705"),
		},
	}

	res := elfatoora.NewValidationResult()
	elfatoora.ValidateInvoiceTotals(inv, res)
	assert.True(t, res.Valid(), "deux lignes à taux différents : %s", res.Summary())
	require.Empty(t, res.Errors())
}
