package teif

import "fmt"

// Codes d'erreur stables de validation d'identifiant. Ces codes font partie du
// contrat externe du moteur : ne jamais les renommer.
const (
	CodeInvalidIdentifier       = "ELF_INVALID_IDENTIFIER"
	CodeInvalidIdentifierLength = "ELF_INVALID_IDENTIFIER_LENGTH"
	CodeForbiddenLetter         = "ELF_IDENTIFIER_FORBIDDEN_LETTER"
	CodeInvalidFiscalPosition   = "ELF_INVALID_FISCAL_POSITION_CODE"
	CodeInvalidFiscalCategory   = "ELF_INVALID_FISCAL_CATEGORY_CODE"
)

// CodeError erreur portant un code stable consommable par l'appelant.
type CodeError struct {
	Code    string
	Message string
}

func (e *CodeError) Error() string { return e.Code + ": " + e.Message }

func codeErrorf(code, format string, args ...interface{}) *CodeError {
	return &CodeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Lettres de position fiscale et de catégorie admises dans le matricule fiscal
// (structure: 7 chiffres, clé de contrôle, position, catégorie, 3 chiffres
// d'établissement). Exemple valide : 0736202XAM000.
const (
	fiscalPositionLetters = "ABDNP"
	fiscalCategoryLetters = "CMNPE"
)

// ClassifyIdentifier infère le type d'un identifiant par essais successifs :
// matricule fiscal, puis CIN (8 chiffres), puis carte de séjour (9 chiffres),
// sinon "autre". Le booléen est faux si la valeur ne satisfait aucune règle
// structurelle (y compris celle du type "autre" : 1 à 35 caractères).
func ClassifyIdentifier(value string) (IdentifierType, bool) {
	if ValidateIdentifier(value, IdentifierFiscal) == nil {
		return IdentifierFiscal, true
	}
	if ValidateIdentifier(value, IdentifierNationalID) == nil {
		return IdentifierNationalID, true
	}
	if ValidateIdentifier(value, IdentifierResidence) == nil {
		return IdentifierResidence, true
	}
	if ValidateIdentifier(value, IdentifierOther) == nil {
		return IdentifierOther, true
	}
	return IdentifierOther, false
}

// ValidateIdentifier valide un identifiant contre le type déclaré par
// l'appelant. Le type déclaré prime toujours sur ce que la classification
// automatique aurait inféré (ex. le matricule d'un fournisseur est toujours
// validé comme matricule fiscal). Retourne nil ou une *CodeError.
func ValidateIdentifier(value string, expected IdentifierType) error {
	switch expected {
	case IdentifierFiscal:
		return validateFiscalID(value)
	case IdentifierNationalID:
		return validateAllDigits(value, 8, "carte d'identité nationale")
	case IdentifierResidence:
		return validateAllDigits(value, 9, "carte de séjour")
	case IdentifierOther:
		if len(value) < 1 || len(value) > 35 {
			return codeErrorf(CodeInvalidIdentifierLength,
				"identifiant libre : longueur %d hors bornes [1,35]", len(value))
		}
		return nil
	default:
		return codeErrorf(CodeInvalidIdentifier, "type d'identifiant inconnu (%d)", expected)
	}
}

// validateFiscalID applique la structure du matricule fiscal tunisien :
// 7 chiffres, une lettre de contrôle (majuscule, I et O exclus), une lettre de
// position fiscale {A,B,D,N,P}, une lettre de catégorie {C,M,N,P,E}, puis le
// numéro d'établissement sur 3 chiffres (000 à 999).
func validateFiscalID(value string) error {
	if len(value) != 13 {
		return codeErrorf(CodeInvalidIdentifierLength,
			"matricule fiscal : 13 caractères attendus, %d reçus", len(value))
	}
	for i := 0; i < 7; i++ {
		if !isDigit(value[i]) {
			return codeErrorf(CodeInvalidIdentifier,
				"matricule fiscal : chiffre attendu en position %d", i+1)
		}
	}
	control := value[7]
	if control < 'A' || control > 'Z' || control == 'I' || control == 'O' {
		return codeErrorf(CodeForbiddenLetter,
			"matricule fiscal : clé de contrôle %q interdite (majuscule hors I et O)", string(control))
	}
	if !containsByte(fiscalPositionLetters, value[8]) {
		return codeErrorf(CodeInvalidFiscalPosition,
			"matricule fiscal : code position fiscale %q invalide (attendu A, B, D, N ou P)", string(value[8]))
	}
	if !containsByte(fiscalCategoryLetters, value[9]) {
		return codeErrorf(CodeInvalidFiscalCategory,
			"matricule fiscal : code catégorie %q invalide (attendu C, M, N, P ou E)", string(value[9]))
	}
	for i := 10; i < 13; i++ {
		if !isDigit(value[i]) {
			return codeErrorf(CodeInvalidIdentifier,
				"matricule fiscal : numéro d'établissement non numérique en position %d", i+1)
		}
	}
	return nil
}

func validateAllDigits(value string, length int, label string) error {
	if len(value) != length {
		return codeErrorf(CodeInvalidIdentifierLength,
			"%s : %d chiffres attendus, %d caractères reçus", label, length, len(value))
	}
	for i := 0; i < len(value); i++ {
		if !isDigit(value[i]) {
			return codeErrorf(CodeInvalidIdentifier,
				"%s : caractère non numérique en position %d", label, i+1)
		}
	}
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func containsByte(set string, b byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return true
		}
	}
	return false
}
