// Package hacienda: interfaz para firma digital de comprobantes XML (XMLDSig enveloped).

package hacienda

import "crypto/tls"

// Signer firma un comprobante XML y devuelve el XML con el nodo ds:Signature embebido.
type Signer interface {
	// Sign toma el XML del comprobante (sin firma) y el certificado con llave privada,
	// y retorna el XML con <ds:Signature> como último hijo del elemento raíz.
	Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error)
}
