// Chargement du certificat de signature depuis un .p12 (PKCS#12) ou une paire
// PEM. L'acquisition du certificat reste une affaire d'hôte : le moteur ne
// consomme que la tls.Certificate résolue.

package signer

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// LoadFromP12 charge certificat et clé privée depuis un fichier .p12/.pfx.
// Le mot de passe peut être vide si le fichier n'est pas protégé.
func LoadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("lire p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("décoder p12: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// LoadFromPEM charge certificat et clé depuis des fichiers PEM (séparés ou
// combinés dans le même fichier).
func LoadFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, fmt.Errorf("chemin du certificat vide")
	}
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("charger PEM: %w", err)
	}
	return cert, nil
}

// CertDigestAndIssuerSerial retourne le digest SHA-256 du certificat (Base64),
// le nom de l'émetteur et le numéro de série en hexadécimal, pour le bloc
// xades:SigningCertificate.
func CertDigestAndIssuerSerial(cert *x509.Certificate) (digestB64 string, issuerName string, serialHex string) {
	h := sha256.Sum256(cert.Raw)
	digestB64 = base64.StdEncoding.EncodeToString(h[:])
	issuerName = cert.Issuer.String()
	serialHex = cert.SerialNumber.Text(16)
	return digestB64, issuerName, serialHex
}
