// Carga de credencial de firma desde un bundle PKCS#12 (.p12) en memoria.

package signer

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/pkcs12"

	"github.com/dulcepan/facturacion-api/internal/domain"
)

// LoadFromP12Base64 decodifica el bundle desde texto Base64 (formato en que la
// plataforma entrega el secreto) y delega en LoadFromP12.
func LoadFromP12Base64(b64, password string) (tls.Certificate, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: el bundle p12 no es Base64 válido: %v", domain.ErrCredential, err)
	}
	return LoadFromP12(data, password)
}

// LoadFromP12 extrae la llave privada y el certificado de un bundle PKCS#12.
//
// Dos modos de fallo distinguibles: una contraseña o bundle inválido falla en
// la decodificación PKCS#12; un bundle bien formado pero sin llave privada (o
// sin certificado) falla después, durante el recorrido de las bolsas. Ambos
// envuelven domain.ErrCredential con mensajes distintos para el diagnóstico.
//
// La credencial vive solo en memoria y solo durante la invocación: no se
// cachea entre requests.
func LoadFromP12(data []byte, password string) (tls.Certificate, error) {
	// ToPEM recorre las bolsas del bundle (shrouded key bag, key bag, cert bag)
	// y las expone como bloques PEM homogéneos.
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: decodificar p12 (¿contraseña incorrecta?): %v", domain.ErrCredential, err)
	}
	return CredentialFromPEM(blocks)
}

// CredentialFromPEM selecciona la primera llave privada y el primer certificado
// en un único recorrido sobre los bloques, despachando por tipo de bloque.
func CredentialFromPEM(blocks []*pem.Block) (tls.Certificate, error) {
	var cert tls.Certificate
	for _, b := range blocks {
		switch b.Type {
		case "PRIVATE KEY", "RSA PRIVATE KEY":
			if cert.PrivateKey != nil {
				continue
			}
			key, err := parsePrivateKey(b.Bytes)
			if err != nil {
				return tls.Certificate{}, fmt.Errorf("%w: llave privada ilegible: %v", domain.ErrCredential, err)
			}
			cert.PrivateKey = key
		case "CERTIFICATE":
			if len(cert.Certificate) > 0 {
				continue
			}
			leaf, err := x509.ParseCertificate(b.Bytes)
			if err != nil {
				return tls.Certificate{}, fmt.Errorf("%w: certificado ilegible: %v", domain.ErrCredential, err)
			}
			cert.Certificate = [][]byte{leaf.Raw}
			cert.Leaf = leaf
		}
	}
	if cert.PrivateKey == nil {
		return tls.Certificate{}, fmt.Errorf("%w: el bundle no contiene llave privada", domain.ErrCredential)
	}
	if len(cert.Certificate) == 0 {
		return tls.Certificate{}, fmt.Errorf("%w: el bundle no contiene certificado", domain.ErrCredential)
	}
	return cert, nil
}

// parsePrivateKey admite llaves PKCS#1 y PKCS#8 (ambas aparecen según la bolsa de origen).
func parsePrivateKey(der []byte) (interface{}, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	return x509.ParsePKCS8PrivateKey(der)
}
