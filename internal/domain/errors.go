package domain

import "errors"

// Erreurs de domaine (sans dépendances externes). ErrInvalidInvoice et
// ErrSigningFailed sont distinguées pour que l'appelant sépare "vos données
// sont fausses" de "notre infrastructure de signature est indisponible".
var (
	ErrNotFound       = errors.New("ressource introuvable")
	ErrInvalidInput   = errors.New("entrée invalide")
	ErrUnauthorized   = errors.New("non autorisé")
	ErrInvalidInvoice = errors.New("facture non conforme El Fatoora")
	ErrSigningFailed  = errors.New("échec de la signature électronique")
)
