package hacienda

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dulcepan/facturacion-api/internal/domain"
)

// ── Puerto (interfaz) ──────────────────────────────────────────────────────────

// SubmitDocument agrupa los datos del envío: comprobante firmado y su identidad.
type SubmitDocument struct {
	Clave              string
	Fecha              time.Time
	TipoIdentificacion string // tipo de identificación del emisor
	EmisorID           string // número de identificación del emisor
	SignedXML          []byte // comprobante firmado (se envía en Base64)
}

// SubmitResult resultado crudo de la recepción en Hacienda. Un estado no-2xx es
// un desenlace normal (p. ej. rechazo de validación): viaja como dato, nunca
// como error. La interpretación de negocio queda fuera de este cliente.
type SubmitResult struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	ErrorCause string `json:"errorCause,omitempty"` // header x-error-cause, si Hacienda lo envía
}

// Submitter define el puerto de salida hacia el API de recepción de Hacienda.
// La implementación concreta usa REST; para tests se puede inyectar un doble.
type Submitter interface {
	// Submit obtiene un token fresco y entrega el comprobante firmado.
	// Cada envío re-autentica: no hay caché de tokens en este diseño.
	Submit(ctx context.Context, doc SubmitDocument) (*SubmitResult, error)
}

// ── Implementación REST ────────────────────────────────────────────────────────

// APIConfig endpoints y credencial OAuth2 del cliente.
type APIConfig struct {
	TokenURL     string
	ReceptionURL string
	ClientID     string
}

// RESTClient implementa Submitter contra el API v4.3 de Hacienda.
// Usa net/http de la stdlib; no requiere librerías de terceros.
type RESTClient struct {
	cfg        APIConfig
	httpClient *http.Client
}

// NewRESTClient construye el cliente con un timeout de red generoso (60 s):
// la recepción de Hacienda puede tardar varios segundos en responder.
func NewRESTClient(cfg APIConfig) *RESTClient {
	return &RESTClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// tokenResponse respuesta del IDP (client_credentials).
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// receptionPayload sobre JSON del comprobante para el endpoint de recepción.
type receptionPayload struct {
	Clave          string          `json:"clave"`
	Fecha          string          `json:"fecha"`
	Emisor         receptionEmisor `json:"emisor"`
	ComprobanteXML string          `json:"comprobanteXml"`
}

type receptionEmisor struct {
	TipoIdentificacion   string `json:"tipoIdentificacion"`
	NumeroIdentificacion string `json:"numeroIdentificacion"`
}

// Token solicita un bearer token con el flujo client_credentials (cliente
// público: client_id sin secret). Un estado no-2xx del IDP es ErrAuth e incluye
// el cuerpo de la respuesta para diagnóstico; una falla de transporte es ErrNetwork.
func (c *RESTClient) Token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("hacienda: crear request de token: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: llamada al IDP fallida: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return "", fmt.Errorf("%w: leer respuesta del IDP: %v", domain.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: IDP respondió %d: %s", domain.ErrAuth, resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("%w: respuesta del IDP ilegible: %v", domain.ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: el IDP no devolvió access_token", domain.ErrAuth)
	}
	return tok.AccessToken, nil
}

// Submit entrega el comprobante firmado: primero el token (secuencial, el envío
// no puede proceder sin él), luego el POST de recepción. El resultado se
// devuelve textual: estado, texto de estado y el header x-error-cause si existe.
func (c *RESTClient) Submit(ctx context.Context, doc SubmitDocument) (*SubmitResult, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload := receptionPayload{
		Clave: doc.Clave,
		Fecha: doc.Fecha.Format(time.RFC3339),
		Emisor: receptionEmisor{
			TipoIdentificacion:   doc.TipoIdentificacion,
			NumeroIdentificacion: doc.EmisorID,
		},
		ComprobanteXML: base64.StdEncoding.EncodeToString(doc.SignedXML),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hacienda: serializar envío: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ReceptionURL,
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hacienda: crear request de recepción: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrNetwork, ctx.Err())
		}
		return nil, fmt.Errorf("%w: llamada de recepción fallida: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	// El cuerpo de recepción no se interpreta; se drena para reutilizar la conexión.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	return &SubmitResult{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		ErrorCause: resp.Header.Get("x-error-cause"),
	}, nil
}

var _ Submitter = (*RESTClient)(nil)
