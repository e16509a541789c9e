package billing

import (
	"context"
	"crypto/tls"

	"github.com/dulcepan/facturacion-api/internal/domain/entity"
)

// EnvioRepository persiste la bitácora de envíos. Un valor nil desactiva la
// bitácora: el pipeline de firma y envío no depende de la base de datos.
type EnvioRepository interface {
	Save(ctx context.Context, envio *entity.EnvioFactura) error
}

// CredentialLoader materializa la credencial de firma a partir del .p12 en
// Base64 y su contraseña. Se invoca en cada envío: la credencial no se cachea.
type CredentialLoader func(certB64, password string) (tls.Certificate, error)

// HaciendaParams parámetros del emisor para el ciclo de envío.
type HaciendaParams struct {
	CertP12Base64   string
	CertPassword    string
	CodigoActividad string
	Situacion       string
}
