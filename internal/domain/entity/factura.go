package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Parte identifica al emisor o receptor de un comprobante electrónico.
type Parte struct {
	Nombre               string
	TipoIdentificacion   string // "01" física, "02" jurídica, "03" DIMEX, "04" NITE
	NumeroIdentificacion string
	Provincia            string
	Canton               string
	Distrito             string
	OtrasSenas           string
	CodigoPaisTelefono   string
	Telefono             string
	Correo               string
}

// LineaFactura es una línea de detalle inmutable del comprobante.
type LineaFactura struct {
	Codigo         string          // código de producto/servicio (se rellena a 13 dígitos en el XML)
	Detalle        string          // descripción
	UnidadMedida   string          // catálogo de unidades ("Unid", "Sp", ...)
	Cantidad       decimal.Decimal // >= 0
	PrecioUnitario decimal.Decimal // >= 0
	TarifaImpuesto decimal.Decimal // porcentaje de IVA (0 = exento)
	EsServicio     bool            // clasifica la línea en servicios vs mercancías
}

// Factura agrupa los datos de entrada del comprobante antes de generar el XML.
type Factura struct {
	Consecutivo    string // numeración del emisor, ancho variable (no se rellena)
	CondicionVenta string
	MedioPago      string
	PlazoCredito   string
	Moneda         string // "CRC", "USD", ...
	TipoCambio     decimal.Decimal
	FechaEmision   time.Time
	Emisor         *Parte
	Receptor       *Parte
	Detalle        []LineaFactura
}

// EnvioFactura es el registro de bitácora de un intento de envío a Hacienda.
// No persiste el XML firmado: solo la clave y el desenlace del intento.
type EnvioFactura struct {
	ID          string
	Clave       string
	Consecutivo string
	EmisorID    string
	Total       decimal.Decimal
	HTTPStatus  int
	ErrorCause  string
	CreatedAt   time.Time
}
