package hacienda

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dulcepan/facturacion-api/internal/domain"
	pkghacienda "github.com/dulcepan/facturacion-api/pkg/hacienda"
)

// ClaveParams contiene los datos para generar la clave numérica del comprobante.
type ClaveParams struct {
	EmisorID    string    // cédula del emisor, solo dígitos, máximo 12
	Consecutivo string    // numeración del emisor; se concatena tal cual, sin relleno
	Fecha       time.Time // fecha de emisión (se toman día, mes y año)
	Situacion   string    // "1" normal, "2" contingencia, "3" sin internet; vacío = normal
}

// GenerarClave construye la clave numérica del comprobante (nota 2 del anexo):
//
//	país(3) + día(2) + mes(2) + año(2) + emisor(12, relleno con ceros) +
//	consecutivo(ancho variable) + situación(1) + código de seguridad(8)
//
// El consecutivo NO se rellena: el ancho variable junto a campos fijos es una
// asimetría del anexo y se conserva tal cual. Con el consecutivo típico de 20
// dígitos la clave resultante mide exactamente 50.
//
// El código de seguridad es un aleatorio uniforme en [10000000, 99999999] sin
// pretensión criptográfica. La unicidad real depende de que el caller garantice
// consecutivos monótonos: aquí no se verifica contra claves previas.
func GenerarClave(p ClaveParams) (string, error) {
	emisor := strings.TrimSpace(p.EmisorID)
	consecutivo := strings.TrimSpace(p.Consecutivo)
	if emisor == "" {
		return "", fmt.Errorf("%w: se requiere la identificación del emisor para la clave", domain.ErrValidation)
	}
	if consecutivo == "" {
		return "", fmt.Errorf("%w: se requiere el consecutivo para la clave", domain.ErrValidation)
	}
	for _, r := range emisor {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: la identificación del emisor debe ser numérica: %q", domain.ErrValidation, emisor)
		}
	}
	if len(emisor) > 12 {
		// El anexo no define truncamiento; rechazar es preferible a emitir una clave malformada.
		return "", fmt.Errorf("%w: la identificación del emisor excede 12 dígitos", domain.ErrValidation)
	}

	situacion := p.Situacion
	if situacion == "" {
		situacion = pkghacienda.SituacionNormal
	}

	fecha := p.Fecha
	if fecha.IsZero() {
		fecha = time.Now()
	}

	codigoSeguridad := 10000000 + rand.Intn(90000000)

	var sb strings.Builder
	sb.WriteString(pkghacienda.CountryCode)
	sb.WriteString(fecha.Format("020106")) // ddMMyy
	sb.WriteString(fmt.Sprintf("%012s", emisor))
	sb.WriteString(consecutivo)
	sb.WriteString(situacion)
	sb.WriteString(fmt.Sprintf("%08d", codigoSeguridad))
	return sb.String(), nil
}
