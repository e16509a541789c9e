package signer_test

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/xml"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucarion/c14n"

	"github.com/dulcepan/facturacion-api/internal/infrastructure/hacienda/signer"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: credencial de prueba autofirmada (no sale del proceso)
// ──────────────────────────────────────────────────────────────────────────────

func testCredential(t *testing.T) (tls.Certificate, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Panaderia Dulce Pan S.A.", Country: []string{"CR"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
		Leaf:        leaf,
	}, priv
}

const docSinFirma = `<?xml version="1.0" encoding="utf-8"?><FacturaElectronica xmlns="https://cdn.comprobanteselectronicos.go.cr/xml-schemas/v4.3/facturaElectronica"><Clave>50609032400310112345600100001010000000155100000001</Clave><NumeroConsecutivo>00100001010000000155</NumeroConsecutivo></FacturaElectronica>`

// ──────────────────────────────────────────────────────────────────────────────
// Tests Sign
// ──────────────────────────────────────────────────────────────────────────────

// El documento firmado debe ser XML bien formado con exactamente un nodo Signature
// que embebe el DER Base64 del certificado del firmante.
func TestSign_EstructuraFirma(t *testing.T) {
	cert, _ := testCredential(t)
	svc := signer.NewDigitalSignatureService()

	firmado, err := svc.Sign([]byte(docSinFirma), cert)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(firmado), "el XML firmado debe parsear")

	firmas := doc.FindElements("//ds:Signature")
	require.Len(t, firmas, 1, "exactamente un nodo ds:Signature")

	certB64 := base64.StdEncoding.EncodeToString(cert.Certificate[0])
	assert.Contains(t, string(firmado), certB64, "debe embeber el certificado en Base64")
	assert.Contains(t, string(firmado), "rsa-sha256")
	assert.Contains(t, string(firmado), "xml-exc-c14n")
	assert.Contains(t, string(firmado), "enveloped-signature")

	// La firma queda como último hijo de la raíz (convención enveloped).
	hijos := doc.Root().ChildElements()
	assert.Equal(t, "Signature", hijos[len(hijos)-1].Tag)
}

// El SignatureValue debe verificar con la llave pública del certificado sobre
// el SignedInfo canonicalizado (exc-c14n + SHA-256).
func TestSign_VerificacionCriptografica(t *testing.T) {
	cert, priv := testCredential(t)
	svc := signer.NewDigitalSignatureService()

	firmado, err := svc.Sign([]byte(docSinFirma), cert)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(firmado))

	signedInfo := doc.FindElement("//ds:Signature/ds:SignedInfo")
	require.NotNil(t, signedInfo)
	sigValue := doc.FindElement("//ds:Signature/ds:SignatureValue")
	require.NotNil(t, sigValue)

	// Serializar el SignedInfo tal como quedó en el documento y canonicalizarlo
	siDoc := etree.NewDocument()
	siDoc.SetRoot(signedInfo.Copy())
	siText, err := siDoc.WriteToString()
	require.NoError(t, err)
	dec := xml.NewDecoder(bytes.NewReader([]byte(siText)))
	canonical, err := c14n.Canonicalize(dec)
	require.NoError(t, err)

	digest := sha256.Sum256(canonical)
	sigBytes, err := base64.StdEncoding.DecodeString(sigValue.Text())
	require.NoError(t, err)

	err = rsa.VerifyPKCS1v15(&priv.PublicKey, crypto.SHA256, digest[:], sigBytes)
	assert.NoError(t, err, "la firma debe verificar con la llave pública del bundle")
}

// Dos firmas del mismo documento no tienen por qué coincidir: el documento
// firmado es de un solo uso.
func TestSign_NoDeterminista(t *testing.T) {
	cert, _ := testCredential(t)
	svc := signer.NewDigitalSignatureService()

	f1, err1 := svc.Sign([]byte(docSinFirma), cert)
	f2, err2 := svc.Sign([]byte(docSinFirma), cert)
	require.NoError(t, err1)
	require.NoError(t, err2)

	// Ambas deben ser válidas; no se exige igualdad byte a byte.
	assert.NotEmpty(t, f1)
	assert.NotEmpty(t, f2)
}

// XML vacío o credencial sin llave RSA se rechazan antes de firmar.
func TestSign_EntradasInvalidas(t *testing.T) {
	cert, _ := testCredential(t)
	svc := signer.NewDigitalSignatureService()

	_, err := svc.Sign(nil, cert)
	require.Error(t, err)

	_, err = svc.Sign([]byte(docSinFirma), tls.Certificate{Certificate: cert.Certificate})
	require.Error(t, err, "sin llave privada RSA no se puede firmar")
}
