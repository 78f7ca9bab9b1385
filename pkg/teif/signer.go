package teif

import "crypto/tls"

// CertificateHandle matériel de clé déjà résolu par l'hôte. Le moteur ne gère
// jamais l'acquisition du certificat ni le format du keystore : il reçoit une
// paire clé privée / certificat prête à l'emploi.
type CertificateHandle = tls.Certificate

// Signer signe un XML TEIF canonique et retourne le document avec le noeud
// ds:Signature injecté dans l'élément racine.
type Signer interface {
	Sign(xmlBytes []byte, cert CertificateHandle) ([]byte, error)
}

// Verifier vérifie la signature d'un document TEIF signé. Retourne false
// (jamais de panique) pour un document non signé ou altéré.
type Verifier interface {
	Verify(xmlBytes []byte) bool
}
