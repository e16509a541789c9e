package signer_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcepan/facturacion-api/internal/domain"
	"github.com/dulcepan/facturacion-api/internal/infrastructure/hacienda/signer"
)

func pemBlocks(t *testing.T, conLlave, conCert bool) []*pem.Block {
	t.Helper()
	var blocks []*pem.Block

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	if conLlave {
		blocks = append(blocks, &pem.Block{
			Type:  "PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		})
	}
	if conCert {
		tmpl := &x509.Certificate{
			SerialNumber: big.NewInt(7),
			Subject:      pkix.Name{CommonName: "test"},
			NotBefore:    time.Now().Add(-time.Hour),
			NotAfter:     time.Now().Add(time.Hour),
		}
		der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
		require.NoError(t, err)
		blocks = append(blocks, &pem.Block{Type: "CERTIFICATE", Bytes: der})
	}
	return blocks
}

// Bundle bien formado con llave y certificado ⇒ credencial completa.
func TestCredentialFromPEM_Completa(t *testing.T) {
	cert, err := signer.CredentialFromPEM(pemBlocks(t, true, true))
	require.NoError(t, err)

	assert.NotNil(t, cert.PrivateKey)
	require.Len(t, cert.Certificate, 1)
	assert.NotNil(t, cert.Leaf)
}

// Bundle válido pero SIN llave privada ⇒ ErrCredential, distinguible de una
// contraseña incorrecta (que falla antes, en la decodificación PKCS#12).
func TestCredentialFromPEM_SinLlave(t *testing.T) {
	_, err := signer.CredentialFromPEM(pemBlocks(t, false, true))
	require.ErrorIs(t, err, domain.ErrCredential)
	assert.Contains(t, err.Error(), "llave privada")
}

// Bundle con llave pero sin certificado ⇒ ErrCredential.
func TestCredentialFromPEM_SinCertificado(t *testing.T) {
	_, err := signer.CredentialFromPEM(pemBlocks(t, true, false))
	require.ErrorIs(t, err, domain.ErrCredential)
	assert.Contains(t, err.Error(), "certificado")
}

// Texto que no es Base64 válido ⇒ ErrCredential inmediato, sin tocar PKCS#12.
func TestLoadFromP12Base64_Base64Invalido(t *testing.T) {
	_, err := signer.LoadFromP12Base64("esto no es base64 !!!", "clave")
	require.ErrorIs(t, err, domain.ErrCredential)
}

// Bytes arbitrarios (no PKCS#12) ⇒ falla en la decodificación del bundle.
func TestLoadFromP12_BundleCorrupto(t *testing.T) {
	basura := base64.StdEncoding.EncodeToString([]byte("no soy un p12"))
	_, err := signer.LoadFromP12Base64(basura, "clave")
	require.ErrorIs(t, err, domain.ErrCredential)
	assert.Contains(t, err.Error(), "decodificar p12")
}
