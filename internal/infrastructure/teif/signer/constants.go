// Constantes pour la signature XAdES des documents TEIF (El Fatoora).

package signer

// Politique de signature El Fatoora publiée par Tunisie TradeNet.
const (
	SignaturePolicyURL = "https://www.tradenet.com.tn/elfatoora/politique_de_signature_v1.0.pdf"
)

// Namespaces et algorithmes XMLDSig / XAdES.
const (
	NamespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES     = "http://uri.etsi.org/01903/v1.3.2#"
	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256          = "http://www.w3.org/2000/09/xmldsig#sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// Format de l'horodatage xades:SigningTime embarqué dans la signature.
const SigningTimeFormat = "2006-01-02T15:04:05.000Z"
