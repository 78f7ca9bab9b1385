// Service de signature XAdES pour les documents TEIF (El Fatoora).
// Signature enveloppée : le noeud ds:Signature est injecté comme dernier
// enfant de l'élément racine TEIF, avec la vérification symétrique.

package signer

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/fatoora-tn/compta-api/pkg/teif"
)

// XadesService signe les documents TEIF et vérifie les documents signés.
type XadesService struct{}

// NewXadesService crée le service.
func NewXadesService() *XadesService {
	return &XadesService{}
}

// Sign signe le XML TEIF non signé et retourne le document avec le noeud
// ds:Signature injecté dans la racine. Déterministe à matériel de clé donné,
// au SigningTime embarqué près.
func (s *XadesService) Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, errors.New("teif: XML vide")
	}
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("teif: le certificat doit inclure une clé privée RSA")
	}
	if len(cert.Certificate) == 0 {
		return nil, errors.New("teif: certificat sans chaîne X.509")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("teif: parser le certificat: %w", err)
	}

	// 1) Digest du document canonisé (sans signature), Reference URI="".
	canonicalDoc, err := canonicalize(xmlBytes)
	if err != nil {
		canonicalDoc = xmlBytes
	}
	docDigest := sha256.Sum256(canonicalDoc)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	// 2) SignedInfo canonisé puis signé en RSA-SHA256.
	signedInfoXML := buildSignedInfo(docDigestB64)
	canonicalSignedInfo, err := canonicalize([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("teif: signer SignedInfo: %w", err)
	}

	// 3) Bloc ds:Signature complet (KeyInfo + propriétés XAdES) et injection.
	signatureXML := buildFullSignature(
		signedInfoXML,
		base64.StdEncoding.EncodeToString(signatureValue),
		base64.StdEncoding.EncodeToString(x509Cert.Raw),
		time.Now().UTC().Format(SigningTimeFormat),
		x509Cert,
	)
	return injectSignature(xmlBytes, signatureXML)
}

// Verify vérifie le document signé : false (jamais de panique ni d'erreur)
// pour un document non signé, mal formé ou altéré. Indépendante de l'horloge
// murale, hormis le contrôle du SigningTime contre la fenêtre de validité du
// certificat signataire quand les deux sont présents.
func (s *XadesService) Verify(xmlBytes []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return false
	}
	root := doc.Root()
	if root == nil {
		return false
	}
	sigEl := childByTag(root, "Signature")
	if sigEl == nil {
		return false
	}

	signedInfo := childByTag(sigEl, "SignedInfo")
	digestB64 := elementText(signedInfo, "Reference", "DigestValue")
	signatureB64 := textOfChild(sigEl, "SignatureValue")
	certB64 := elementText(sigEl, "KeyInfo", "X509Data", "X509Certificate")
	if signedInfo == nil || digestB64 == "" || signatureB64 == "" || certB64 == "" {
		return false
	}

	certDER, err := base64.StdEncoding.DecodeString(strings.TrimSpace(certB64))
	if err != nil {
		return false
	}
	x509Cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return false
	}
	pubKey, ok := x509Cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return false
	}

	// 1) Digest du document sans sa signature (transformée enveloppée).
	root.RemoveChild(sigEl)
	var stripped bytes.Buffer
	if _, err := doc.WriteTo(&stripped); err != nil {
		return false
	}
	canonicalDoc, err := canonicalize(stripped.Bytes())
	if err != nil {
		canonicalDoc = stripped.Bytes()
	}
	docDigest := sha256.Sum256(canonicalDoc)
	wantDigest, err := base64.StdEncoding.DecodeString(strings.TrimSpace(digestB64))
	if err != nil || !bytes.Equal(docDigest[:], wantDigest) {
		return false
	}

	// 2) Signature RSA sur le SignedInfo canonisé.
	siDoc := etree.NewDocument()
	siDoc.SetRoot(signedInfo.Copy())
	var siBuf bytes.Buffer
	if _, err := siDoc.WriteTo(&siBuf); err != nil {
		return false
	}
	canonicalSignedInfo, err := canonicalize(siBuf.Bytes())
	if err != nil {
		canonicalSignedInfo = siBuf.Bytes()
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signatureB64))
	if err != nil {
		return false
	}
	if rsa.VerifyPKCS1v15(pubKey, crypto.SHA256, signHash[:], signatureValue) != nil {
		return false
	}

	// 3) SigningTime dans la fenêtre de validité du certificat, si présent.
	if st := findSigningTime(sigEl); st != "" {
		when, err := time.Parse(SigningTimeFormat, st)
		if err == nil && (when.Before(x509Cert.NotBefore) || when.After(x509Cert.NotAfter)) {
			return false
		}
	}
	return true
}

// canonicalize canonisation XML (C14N inclusive) partagée entre signature et
// vérification : les deux côtés doivent voir exactement les mêmes octets.
func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func buildSignedInfo(docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference URI="">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + TransformEnveloped + `"/>`)
	sb.WriteString(`<ds:Transform Algorithm="` + AlgC14N + `"/></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func buildFullSignature(signedInfoXML, signatureValueB64, certB64, signingTime string, cert *x509.Certificate) string {
	certDigestB64, issuerName, serialHex := CertDigestAndIssuerSerial(cert)
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + signatureValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`<ds:Object><xades:QualifyingProperties>`)
	sb.WriteString(`<xades:SignedProperties Id="signed-props">`)
	sb.WriteString(`<xades:SignedSignatureProperties>`)
	sb.WriteString(`<xades:SigningTime>` + signingTime + `</xades:SigningTime>`)
	sb.WriteString(`<xades:SigningCertificate><xades:Cert><xades:CertDigest><ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + certDigestB64 + `</ds:DigestValue></xades:CertDigest>`)
	sb.WriteString(`<xades:IssuerSerial><ds:X509IssuerName>` + escapeXML(issuerName) + `</ds:X509IssuerName><ds:X509SerialNumber>` + serialHex + `</ds:X509SerialNumber></xades:IssuerSerial></xades:Cert></xades:SigningCertificate>`)
	sb.WriteString(`<xades:SignaturePolicyIdentifier><xades:SignaturePolicyId><xades:SigPolicyId><xades:Identifier>` + SignaturePolicyURL + `</xades:Identifier></xades:SigPolicyId></xades:SignaturePolicyId></xades:SignaturePolicyIdentifier>`)
	sb.WriteString(`</xades:SignedSignatureProperties></xades:SignedProperties></xades:QualifyingProperties></ds:Object>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// injectSignature parse le XML, ajoute ds:Signature comme dernier enfant de
// la racine TEIF, et sérialise.
func injectSignature(xmlBytes []byte, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("teif: parser le XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("teif: document sans racine")
	}
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("teif: parser le noeud Signature: %w", err)
	}
	sigRoot := sigDoc.Root()
	if sigRoot == nil {
		return nil, errors.New("teif: noeud Signature vide")
	}
	root.AddChild(sigRoot)

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("teif: sérialiser le document signé: %w", err)
	}
	return out.Bytes(), nil
}

// ── navigation etree (tolérante aux préfixes de namespace) ───────────────────

func childByTag(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func elementText(el *etree.Element, path ...string) string {
	cur := el
	for _, tag := range path {
		cur = childByTag(cur, tag)
		if cur == nil {
			return ""
		}
	}
	return cur.Text()
}

func textOfChild(el *etree.Element, tag string) string {
	if c := childByTag(el, tag); c != nil {
		return c.Text()
	}
	return ""
}

func findSigningTime(sigEl *etree.Element) string {
	return elementText(sigEl, "Object", "QualifyingProperties", "SignedProperties",
		"SignedSignatureProperties", "SigningTime")
}

// Vérification statique des ports pkg/teif.
var (
	_ teif.Signer   = (*XadesService)(nil)
	_ teif.Verifier = (*XadesService)(nil)
)
