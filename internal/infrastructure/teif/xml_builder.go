// Package teif implémente la génération du XML TEIF 1.8.8 (El Fatoora) à
// partir du modèle de facture validé. Transformation pure et déterministe :
// la même facture produit toujours exactement les mêmes octets.
package teif

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/fatoora-tn/compta-api/internal/domain/elfatoora"
	"github.com/fatoora-tn/compta-api/internal/domain/entity"
	pkgteif "github.com/fatoora-tn/compta-api/pkg/teif"
)

// Generator construit le document TEIF non signé (la signature est injectée
// ensuite par le service de signature, jamais ici).
type Generator struct{}

// NewGenerator crée le générateur.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produit le document TEIF 1.8.8 en UTF-8. Les montants dérivés
// omis par l'appelant sont calculés avec les mêmes aides d'arrondi que le
// validateur, garantissant des valeurs déjà prouvées cohérentes.
func (g *Generator) Generate(inv *entity.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("teif: facture nulle")
	}
	for _, line := range inv.Lines {
		if line.Quantity == nil || line.UnitPrice == nil {
			return nil, fmt.Errorf("teif: ligne %d sans quantité ou prix unitaire (facture non validée)", line.Number)
		}
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	// Racine versionnée : la version du standard et l'agence de contrôle sont
	// des littéraux du contrat (attribut "controlingAgency", orthographe du
	// standard).
	root := xml.StartElement{
		Name: xml.Name{Local: "TEIF"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "controlingAgency"}, Value: pkgteif.ControllingAgency},
			{Name: xml.Name{Local: "version"}, Value: pkgteif.Version},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	g.writeHeader(enc, inv)
	g.writeBody(enc, inv)

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeHeader émet l'en-tête message : identifiants émetteur et récepteur.
// "MessageRecieverIdentifier" reprend l'orthographe du schéma officiel.
func (g *Generator) writeHeader(enc *xml.Encoder, inv *entity.Invoice) {
	start(enc, "InvoiceHeader")
	writeTextAttr(enc, "MessageSenderIdentifier", inv.Supplier.Identifier,
		"type", inv.Supplier.IdentifierType.Code())
	writeTextAttr(enc, "MessageRecieverIdentifier", inv.Customer.Identifier,
		"type", inv.Customer.IdentifierType.Code())
	end(enc, "InvoiceHeader")
}

func (g *Generator) writeBody(enc *xml.Encoder, inv *entity.Invoice) {
	start(enc, "InvoiceBody")

	g.writeBgm(enc, inv)
	g.writeDtm(enc, inv)
	g.writePartnerSection(enc, inv)
	g.writePytSection(enc, inv)
	g.writeLinSection(enc, inv)
	g.writeInvoiceMoa(enc, inv)
	g.writeInvoiceTax(enc, inv)

	if inv.Notes != "" {
		writeTextAttr(enc, "Ftx", normText(inv.Notes), "lang", "fr")
	}

	end(enc, "InvoiceBody")
}

// writeBgm métadonnées du document : identifiant, type (table de codes
// fermée) et référence à la facture d'origine pour avoir / note de débit.
func (g *Generator) writeBgm(enc *xml.Encoder, inv *entity.Invoice) {
	start(enc, "Bgm")
	writeText(enc, "DocumentIdentifier", inv.Number)
	writeTextAttr(enc, "DocumentType", inv.DocumentType.Label(), "code", inv.DocumentType.Code())
	if inv.OriginalRef != nil {
		start(enc, "DocumentReferences")
		writeText(enc, "Reference", inv.OriginalRef.Number)
		if inv.OriginalRef.IssueDate != nil {
			writeTextAttr(enc, "ReferenceDate", pkgteif.FormatDate(*inv.OriginalRef.IssueDate),
				"format", pkgteif.DateFormatDay)
		}
		end(enc, "DocumentReferences")
	}
	end(enc, "Bgm")
}

// writeDtm dates du document, chacune portée par un code fonction. Le bloc
// période n'est émis que si les deux bornes sont présentes, en accord avec
// l'avertissement "période incomplète" du validateur.
func (g *Generator) writeDtm(enc *xml.Encoder, inv *entity.Invoice) {
	start(enc, "Dtm")
	writeDate(enc, pkgteif.FormatDate(inv.IssueDate), pkgteif.DateFormatDay, pkgteif.DateFunctionInvoice)
	if inv.DueDate != nil {
		writeDate(enc, pkgteif.FormatDate(*inv.DueDate), pkgteif.DateFormatDay, pkgteif.DateFunctionDue)
	}
	if inv.HasServicePeriod() {
		writeDate(enc, pkgteif.FormatPeriod(*inv.PeriodStart, *inv.PeriodEnd),
			pkgteif.DateFormatPeriod, pkgteif.DateFunctionServicePeriod)
	}
	end(enc, "Dtm")
}

func (g *Generator) writePartnerSection(enc *xml.Encoder, inv *entity.Invoice) {
	start(enc, "PartnerSection")
	g.writePartner(enc, pkgteif.PartnerFunctionSupplier, inv.Supplier)
	g.writePartner(enc, pkgteif.PartnerFunctionCustomer, inv.Customer.Party)
	end(enc, "PartnerSection")
}

// writePartner bloc partenaire, étiqueté par son code fonction fixe
// (fournisseur I-62, client I-64 : constantes externes, jamais dérivées).
func (g *Generator) writePartner(enc *xml.Encoder, functionCode string, p entity.Party) {
	startAttr(enc, "PartnerDetails", "functionCode", functionCode)
	start(enc, "Nad")
	writeTextAttr(enc, "PartnerIdentifier", p.Identifier, "type", p.IdentifierType.Code())
	writeTextAttr(enc, "PartnerName", normText(p.Name), "nameType", "Qualification")
	if p.RegistrationNumber != "" {
		writeText(enc, "RegistrationIdentifier", p.RegistrationNumber)
	}
	startAttr(enc, "AdressDescription", "lang", "fr")
	if p.Address.Street != "" {
		writeText(enc, "AdressStreet", normText(p.Address.Street))
	}
	if p.Address.City != "" {
		writeText(enc, "CityName", normText(p.Address.City))
	}
	if p.Address.PostalCode != "" {
		writeText(enc, "PostalCode", p.Address.PostalCode)
	}
	if p.Address.Country != "" {
		writeTextAttr(enc, "Country", p.Address.Country, "codeList", "ISO_3166-1")
	}
	end(enc, "AdressDescription")
	end(enc, "Nad")
	if c := p.Contact; c != nil {
		start(enc, "CtaSection")
		if c.Phone != "" {
			writeTextAttr(enc, "Communication", c.Phone, "comMeansType", "TE")
		}
		if c.Fax != "" {
			writeTextAttr(enc, "Communication", c.Fax, "comMeansType", "FX")
		}
		if c.Email != "" {
			writeTextAttr(enc, "Communication", c.Email, "comMeansType", "EM")
		}
		if c.Website != "" {
			writeTextAttr(enc, "Communication", c.Website, "comMeansType", "WW")
		}
		end(enc, "CtaSection")
	}
	end(enc, "PartnerDetails")
}

// writePytSection section conditions de paiement : omise entièrement (pas de
// conteneur vide) quand la facture n'en porte aucune. Le bloc compte n'est
// imbriqué que pour les modes qui l'exigent.
func (g *Generator) writePytSection(enc *xml.Encoder, inv *entity.Invoice) {
	if len(inv.PaymentTerms) == 0 {
		return
	}
	start(enc, "PytSection")
	for _, term := range inv.PaymentTerms {
		start(enc, "PytSectionDetails")
		start(enc, "Pyt")
		writeText(enc, "PaymentTermsTypeCode", term.Method.Code())
		desc := term.Description
		if desc == "" {
			desc = term.Method.Label()
		}
		writeText(enc, "PaymentTermsDescription", normText(desc))
		end(enc, "Pyt")
		if term.Method.RequiresBankAccount() && term.BankAccount != nil {
			g.writeAccount(enc, pkgteif.AccountFunctionBank, term.BankAccount)
		}
		if term.Method.RequiresPostalAccount() && term.PostalAccount != nil {
			g.writeAccount(enc, pkgteif.AccountFunctionPostal, term.PostalAccount)
		}
		end(enc, "PytSectionDetails")
	}
	end(enc, "PytSection")
}

func (g *Generator) writeAccount(enc *xml.Encoder, functionCode string, acc *entity.AccountDetails) {
	startAttr(enc, "PytFii", "functionCode", functionCode)
	start(enc, "AccountHolder")
	writeText(enc, "AccountNumber", acc.Number)
	if acc.OwnerID != "" {
		writeText(enc, "OwnerIdentifier", acc.OwnerID)
	}
	end(enc, "AccountHolder")
	start(enc, "InstitutionIdentification")
	if acc.Institution != "" {
		writeText(enc, "InstitutionName", normText(acc.Institution))
	}
	if acc.Branch != "" {
		writeText(enc, "BranchIdentifier", normText(acc.Branch))
	}
	if acc.Country != "" {
		writeTextAttr(enc, "Country", acc.Country, "codeList", "ISO_3166-1")
	}
	end(enc, "InstitutionIdentification")
	end(enc, "PytFii")
}

// writeLinSection lignes en ordre croissant de numéro. Les montants dérivés
// absents sont obtenus via les aides du validateur de montants : le générateur
// ne rederive jamais la logique de tolérance.
func (g *Generator) writeLinSection(enc *xml.Encoder, inv *entity.Invoice) {
	lines := make([]entity.Line, len(inv.Lines))
	copy(lines, inv.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Number < lines[j].Number })

	currency := inv.EffectiveCurrency()
	start(enc, "LinSection")
	for _, line := range lines {
		g.writeLin(enc, line, currency)
	}
	end(enc, "LinSection")
}

func (g *Generator) writeLin(enc *xml.Encoder, line entity.Line, currency string) {
	unit := line.Unit
	if unit == "" {
		unit = pkgteif.UnitPiece
	}
	exclTax, taxAmount, inclTax := lineAmounts(line)

	start(enc, "Lin")
	writeText(enc, "ItemIdentifier", fmt.Sprintf("%d", line.Number))
	startAttr(enc, "LinImd", "lang", "fr")
	writeText(enc, "ItemCode", line.ItemCode)
	if line.Description != "" {
		writeTextAttr(enc, "ItemDescription", normText(line.Description), "lang", "fr")
	}
	end(enc, "LinImd")
	start(enc, "LinQty")
	writeTextAttr(enc, "Quantity", formatAmount(*line.Quantity), "measurementUnit", unit)
	end(enc, "LinQty")
	start(enc, "LinTax")
	writeTextAttr(enc, "TaxTypeName", line.TaxKind.Label(), "code", line.TaxKind.Code())
	start(enc, "TaxDetails")
	writeText(enc, "TaxRate", line.TaxRate.String())
	end(enc, "TaxDetails")
	end(enc, "LinTax")
	start(enc, "LinMoa")
	start(enc, "MoaDetails")
	writeMoa(enc, pkgteif.AmountUnitPrice, *line.UnitPrice, currency)
	writeMoa(enc, pkgteif.AmountLineExclTax, exclTax, currency)
	writeMoa(enc, pkgteif.AmountLineTax, taxAmount, currency)
	writeMoa(enc, pkgteif.AmountLineInclTax, inclTax, currency)
	end(enc, "MoaDetails")
	end(enc, "LinMoa")
	end(enc, "Lin")
}

func (g *Generator) writeInvoiceMoa(enc *xml.Encoder, inv *entity.Invoice) {
	currency := inv.EffectiveCurrency()
	start(enc, "InvoiceMoa")
	start(enc, "AmountDetails")
	writeMoa(enc, pkgteif.AmountTotalExclTax, inv.Totals.ExclTax, currency)
	writeMoa(enc, pkgteif.AmountTotalTax, inv.Totals.Tax, currency)
	if inv.Totals.StampDuty != nil {
		writeMoa(enc, pkgteif.AmountStampDuty, *inv.Totals.StampDuty, currency)
	}
	writeMoa(enc, pkgteif.AmountTotalInclTax, inv.Totals.InclTax, currency)
	end(enc, "AmountDetails")
	end(enc, "InvoiceMoa")
}

// writeInvoiceTax récapitulatif par taux : un bloc par couple (taxe, taux)
// distinct, en ordre croissant de taux pour garder la sortie déterministe.
func (g *Generator) writeInvoiceTax(enc *xml.Encoder, inv *entity.Invoice) {
	type taxKey struct {
		kind pkgteif.TaxKind
		rate string
	}
	currency := inv.EffectiveCurrency()

	keys := make([]taxKey, 0, len(inv.Lines))
	totals := make(map[taxKey]decimal.Decimal)
	rates := make(map[taxKey]decimal.Decimal)
	for _, line := range inv.Lines {
		_, taxAmount, _ := lineAmounts(line)
		k := taxKey{kind: line.TaxKind, rate: line.TaxRate.String()}
		if _, seen := totals[k]; !seen {
			keys = append(keys, k)
			rates[k] = line.TaxRate
		}
		totals[k] = totals[k].Add(taxAmount)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return rates[keys[i]].LessThan(rates[keys[j]])
	})

	start(enc, "InvoiceTax")
	for _, k := range keys {
		start(enc, "InvoiceTaxDetails")
		start(enc, "Tax")
		writeTextAttr(enc, "TaxTypeName", k.kind.Label(), "code", k.kind.Code())
		start(enc, "TaxDetails")
		writeText(enc, "TaxRate", k.rate)
		end(enc, "TaxDetails")
		end(enc, "Tax")
		start(enc, "AmountDetails")
		writeMoa(enc, pkgteif.AmountTotalTax, totals[k], currency)
		end(enc, "AmountDetails")
		end(enc, "InvoiceTaxDetails")
	}
	end(enc, "InvoiceTax")
}

// ── aides d'écriture ──────────────────────────────────────────────────────────

// lineAmounts retourne les trois montants dérivés d'une ligne : ceux fournis
// par l'appelant (déjà prouvés cohérents par le validateur), sinon recalculés
// avec les aides partagées (mêmes arrondis garantis).
func lineAmounts(line entity.Line) (exclTax, taxAmount, inclTax decimal.Decimal) {
	exclTax = elfatoora.CalculateLineAmountExclTax(*line.Quantity, *line.UnitPrice)
	if line.AmountExclTax != nil {
		exclTax = *line.AmountExclTax
	}
	taxAmount = elfatoora.CalculateLineTaxAmount(exclTax, line.TaxRate)
	if line.TaxAmount != nil {
		taxAmount = *line.TaxAmount
	}
	inclTax = exclTax.Add(taxAmount)
	if line.AmountInclTax != nil {
		inclTax = *line.AmountInclTax
	}
	return exclTax, taxAmount, inclTax
}

// formatAmount précision fixe de 3 décimales, jamais de notation scientifique
// ni de troncature.
func formatAmount(d decimal.Decimal) string {
	return d.Round(3).StringFixed(3)
}

// normText normalise le texte libre en NFC pour que deux entrées égales
// produisent des octets identiques.
func normText(s string) string {
	return norm.NFC.String(s)
}

func start(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func startAttr(enc *xml.Encoder, local, attrName, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrName}, Value: attrValue}},
	})
}

func end(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func writeText(enc *xml.Encoder, local, value string) {
	start(enc, local)
	_ = enc.EncodeToken(xml.CharData(value))
	end(enc, local)
}

func writeTextAttr(enc *xml.Encoder, local, value, attrName, attrValue string) {
	startAttr(enc, local, attrName, attrValue)
	_ = enc.EncodeToken(xml.CharData(value))
	end(enc, local)
}

// writeDate date typée : DateText @format @functionCode.
func writeDate(enc *xml.Encoder, value, format, functionCode string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: "DateText"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "format"}, Value: format},
			{Name: xml.Name{Local: "functionCode"}, Value: functionCode},
		},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	end(enc, "DateText")
}

// writeMoa montant typé : Moa @amountTypeCode > Amount @currencyIdentifier.
func writeMoa(enc *xml.Encoder, amountTypeCode string, amount decimal.Decimal, currency string) {
	startAttr(enc, "Moa", "amountTypeCode", amountTypeCode)
	writeTextAttr(enc, "Amount", formatAmount(amount), "currencyIdentifier", currency)
	end(enc, "Moa")
}
