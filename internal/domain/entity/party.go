package entity

import "github.com/fatoora-tn/compta-api/pkg/teif"

// Party partenaire de la facture (fournisseur ou client).
type Party struct {
	Identifier         string // Identifiant fiscal (matricule, CIN, ...)
	IdentifierType     teif.IdentifierType
	Name               string // Raison sociale ou nom légal
	RegistrationNumber string // Registre de commerce (optionnel)
	Address            Address
	Contact            *Contact
}

// Address adresse postale d'un partenaire. Le code postal tunisien est
// contraint à exactement 4 chiffres quand Country vaut "TN".
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string // Code ISO 3166-1 alpha-2
}

// Contact bloc de contact optionnel.
type Contact struct {
	Phone   string
	Fax     string
	Email   string
	Website string
}

// CustomerType qualité du client au regard de la TVA.
type CustomerType int

const (
	CustomerProfessional CustomerType = iota + 1 // Professionnel assujetti
	CustomerIndividual                           // Particulier non assujetti
)

// TaxRegime régime TVA déclaré du client (optionnel).
type TaxRegime int

const (
	RegimeUnspecified   TaxRegime = iota // Non renseigné
	RegimeSubjectToVAT                   // Assujetti à la TVA
	RegimeNotSubjectVAT                  // Non assujetti
)

// Customer client de la facture : un partenaire plus sa qualité fiscale.
type Customer struct {
	Party
	Type   CustomerType
	Regime TaxRegime
}

// PaymentTerm condition de paiement. Le bloc compte n'est renseigné que pour
// les modes qui l'exigent (virement, prélèvement, lettre de crédit : compte
// bancaire ; virement postal : compte postal).
type PaymentTerm struct {
	Method        teif.PaymentMethod
	Description   string
	BankAccount   *AccountDetails
	PostalAccount *AccountDetails
}

// AccountDetails coordonnées d'un compte bancaire ou postal.
type AccountDetails struct {
	Number      string // Numéro de compte (RIB ou CCP)
	OwnerID     string // Identifiant du titulaire
	Institution string // Banque ou centre des chèques postaux
	Branch      string // Agence
	Country     string
}
