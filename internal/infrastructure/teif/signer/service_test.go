package signer_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-tn/compta-api/internal/infrastructure/teif/signer"
)

// certificatDeTest génère un certificat RSA autosigné valable une heure.
// Aucun matériel de clé réel n'entre jamais dans les tests.
func certificatDeTest(t *testing.T) tls.Certificate {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "Test Signataire El Fatoora",
			Organization: []string{"Société Tunisienne de Services"},
			Country:      []string{"TN"},
		},
		NotBefore:   time.Now().Add(-time.Minute),
		NotAfter:    time.Now().Add(time.Hour),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}
}

const documentDeTest = `<?xml version="1.0" encoding="UTF-8"?>
<TEIF controlingAgency="TTN" version="1.8.8">
  <InvoiceHeader>
    <MessageSenderIdentifier type="I-01">1234567AAM001</MessageSenderIdentifier>
    <MessageRecieverIdentifier type="I-01">7654321BBM002</MessageRecieverIdentifier>
  </InvoiceHeader>
  <InvoiceBody>
    <Bgm>
      <DocumentIdentifier>FAC-2025-0042</DocumentIdentifier>
      <DocumentType code="I-11">Facture</DocumentType>
    </Bgm>
  </InvoiceBody>
</TEIF>`

func TestSign_PuisVerify(t *testing.T) {
	svc := signer.NewXadesService()
	cert := certificatDeTest(t)

	signe, err := svc.Sign([]byte(documentDeTest), cert)
	require.NoError(t, err)
	require.NotEmpty(t, signe)

	assert.Contains(t, string(signe), "ds:Signature",
		"le bloc de signature doit être injecté dans le document")
	assert.Contains(t, string(signe), "xades:SigningTime")
	assert.True(t, svc.Verify(signe), "un document fraîchement signé doit se vérifier")
}

func TestVerify_DocumentNonSigne(t *testing.T) {
	svc := signer.NewXadesService()
	assert.False(t, svc.Verify([]byte(documentDeTest)),
		"un document sans signature doit être refusé sans panique")
}

func TestVerify_DocumentAltere(t *testing.T) {
	svc := signer.NewXadesService()
	cert := certificatDeTest(t)

	signe, err := svc.Sign([]byte(documentDeTest), cert)
	require.NoError(t, err)

	// Altération d'un octet du contenu métier après signature.
	altere := []byte(string(signe))
	for i := range altere {
		if altere[i] == '4' {
			altere[i] = '5'
			break
		}
	}
	assert.False(t, svc.Verify(altere), "un document altéré doit être refusé")
}

func TestVerify_EntreesDegenerees(t *testing.T) {
	svc := signer.NewXadesService()

	// Jamais de panique, toujours false.
	assert.False(t, svc.Verify(nil))
	assert.False(t, svc.Verify([]byte{}))
	assert.False(t, svc.Verify([]byte("pas du xml")))
	assert.False(t, svc.Verify([]byte("<racine></racine>")))
	assert.False(t, svc.Verify([]byte("<TEIF><Signature/></TEIF>")))
}

func TestSign_EntreesInvalides(t *testing.T) {
	svc := signer.NewXadesService()
	cert := certificatDeTest(t)

	_, err := svc.Sign(nil, cert)
	assert.Error(t, err, "XML vide refusé")

	_, err = svc.Sign([]byte(documentDeTest), tls.Certificate{})
	assert.Error(t, err, "certificat sans clé refusé")
}

func TestSign_SignatureEnDernierEnfant(t *testing.T) {
	svc := signer.NewXadesService()
	cert := certificatDeTest(t)

	signe, err := svc.Sign([]byte(documentDeTest), cert)
	require.NoError(t, err)

	xml := string(signe)
	posBody := strings.LastIndex(xml, "</InvoiceBody>")
	posSig := strings.LastIndex(xml, "<ds:Signature")
	require.Positive(t, posBody)
	require.Positive(t, posSig)
	assert.Less(t, posBody, posSig,
		"la signature enveloppée est le dernier enfant de la racine")
}
