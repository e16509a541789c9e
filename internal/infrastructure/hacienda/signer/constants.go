// Constantes para la firma XMLDSig enveloped de comprobantes electrónicos.

package signer

// Namespaces y algoritmos XMLDSig. Canonicalización exclusiva (exc-c14n),
// digest SHA-256 y firma RSA-SHA256, según exige el validador de Hacienda.
const (
	NamespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	AlgC14NExclusive   = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256          = "http://www.w3.org/2001/04/xmlenc#sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)
