package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dulcepan/facturacion-api/internal/domain/entity"
)

// ParteRequest identifica al emisor o receptor en la petición de envío.
type ParteRequest struct {
	Nombre               string `json:"nombre"`
	TipoIdentificacion   string `json:"tipo_identificacion"`
	NumeroIdentificacion string `json:"numero_identificacion"`
	Provincia            string `json:"provincia,omitempty"`
	Canton               string `json:"canton,omitempty"`
	Distrito             string `json:"distrito,omitempty"`
	OtrasSenas           string `json:"otras_senas,omitempty"`
	CodigoPaisTelefono   string `json:"codigo_pais_telefono,omitempty"`
	Telefono             string `json:"telefono,omitempty"`
	Correo               string `json:"correo,omitempty"`
}

// LineaRequest es una línea de detalle de la factura.
// Los montos aceptan número o string JSON (decimal exacto).
type LineaRequest struct {
	Codigo         string          `json:"codigo"`
	Detalle        string          `json:"detalle"`
	UnidadMedida   string          `json:"unidad_medida,omitempty"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	TarifaImpuesto decimal.Decimal `json:"tarifa_impuesto"`
	EsServicio     bool            `json:"es_servicio,omitempty"`
}

// EnviarFacturaRequest es el cuerpo de POST /api/facturas.
type EnviarFacturaRequest struct {
	Consecutivo    string          `json:"consecutivo"`
	CondicionVenta string          `json:"condicion_venta"`
	MedioPago      string          `json:"medio_pago"`
	PlazoCredito   string          `json:"plazo_credito,omitempty"`
	Moneda         string          `json:"moneda,omitempty"`
	TipoCambio     decimal.Decimal `json:"tipo_cambio,omitempty"`
	FechaEmision   time.Time       `json:"fecha_emision,omitempty"`
	Emisor         *ParteRequest   `json:"emisor"`
	Receptor       *ParteRequest   `json:"receptor"`
	Detalle        []LineaRequest  `json:"detalle"`
}

// ToEntity convierte la petición al modelo de dominio.
func (r EnviarFacturaRequest) ToEntity() *entity.Factura {
	f := &entity.Factura{
		Consecutivo:    r.Consecutivo,
		CondicionVenta: r.CondicionVenta,
		MedioPago:      r.MedioPago,
		PlazoCredito:   r.PlazoCredito,
		Moneda:         r.Moneda,
		TipoCambio:     r.TipoCambio,
		FechaEmision:   r.FechaEmision,
	}
	if r.Emisor != nil {
		f.Emisor = r.Emisor.toParte()
	}
	if r.Receptor != nil {
		f.Receptor = r.Receptor.toParte()
	}
	for _, l := range r.Detalle {
		f.Detalle = append(f.Detalle, entity.LineaFactura{
			Codigo:         l.Codigo,
			Detalle:        l.Detalle,
			UnidadMedida:   l.UnidadMedida,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			TarifaImpuesto: l.TarifaImpuesto,
			EsServicio:     l.EsServicio,
		})
	}
	return f
}

func (p ParteRequest) toParte() *entity.Parte {
	return &entity.Parte{
		Nombre:               p.Nombre,
		TipoIdentificacion:   p.TipoIdentificacion,
		NumeroIdentificacion: p.NumeroIdentificacion,
		Provincia:            p.Provincia,
		Canton:               p.Canton,
		Distrito:             p.Distrito,
		OtrasSenas:           p.OtrasSenas,
		CodigoPaisTelefono:   p.CodigoPaisTelefono,
		Telefono:             p.Telefono,
		Correo:               p.Correo,
	}
}

// EnviarFacturaResponse es la respuesta 200 del envío: la clave generada y el
// desenlace reportado por Hacienda (un rechazo del comprobante también llega aquí).
type EnviarFacturaResponse struct {
	Success    bool   `json:"success"`
	Clave      string `json:"clave"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	ErrorCause string `json:"errorCause,omitempty"`
}

// ErrorResponse cuerpo de error HTTP (fallo del pipeline, no del comprobante).
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// EnvioResponse es una entrada de la bitácora de envíos en respuestas de listado.
type EnvioResponse struct {
	ID          string          `json:"id"`
	Clave       string          `json:"clave"`
	Consecutivo string          `json:"consecutivo"`
	EmisorID    string          `json:"emisor_id"`
	Total       decimal.Decimal `json:"total"`
	HTTPStatus  int             `json:"http_status"`
	ErrorCause  string          `json:"error_cause,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EnvioFromEntity convierte el registro de dominio a su representación JSON.
func EnvioFromEntity(e entity.EnvioFactura) EnvioResponse {
	return EnvioResponse{
		ID:          e.ID,
		Clave:       e.Clave,
		Consecutivo: e.Consecutivo,
		EmisorID:    e.EmisorID,
		Total:       e.Total,
		HTTPStatus:  e.HTTPStatus,
		ErrorCause:  e.ErrorCause,
		CreatedAt:   e.CreatedAt,
	}
}
