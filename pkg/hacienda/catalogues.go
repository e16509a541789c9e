// Package hacienda contiene catálogos y puertos alineados al Anexo de
// Comprobantes Electrónicos v4.3 del Ministerio de Hacienda (Costa Rica).
package hacienda

import "github.com/shopspring/decimal"

// =============================================================================
// Identidad del documento (clave numérica, nota 2 del anexo)
// =============================================================================

const (
	// CountryCode prefijo de país de la clave numérica (Costa Rica).
	CountryCode = "506"

	// Situación del comprobante (posición 43 de la clave).
	SituacionNormal       = "1"
	SituacionContingencia = "2"
	SituacionSinInternet  = "3"
)

// =============================================================================
// Tipos de identificación (nota 5)
// =============================================================================

const (
	IdentCedulaFisica   = "01"
	IdentCedulaJuridica = "02"
	IdentDIMEX          = "03"
	IdentNITE           = "04"
)

// ValidIdentificationTypes tipos de identificación aceptados por el anexo.
var ValidIdentificationTypes = map[string]bool{
	IdentCedulaFisica: true, IdentCedulaJuridica: true,
	IdentDIMEX: true, IdentNITE: true,
}

// =============================================================================
// Condición de venta (nota 6) y medio de pago (nota 7)
// =============================================================================

const (
	VentaContado       = "01"
	VentaCredito       = "02"
	VentaConsignacion  = "03"
	VentaApartado      = "04"
	VentaArrendamiento = "05"
	VentaOtros         = "99"
)

const (
	PagoEfectivo      = "01"
	PagoTarjeta       = "02"
	PagoCheque        = "03"
	PagoTransferencia = "04"
	PagoTerceros      = "05"
	PagoOtros         = "99"
)

// =============================================================================
// Unidades de medida (nota 11, selección de uso común en panadería/ventas)
// =============================================================================

const (
	UnidadUnidad    = "Unid"
	UnidadServicio  = "Sp" // Servicios profesionales
	UnidadKilogramo = "Kg"
	UnidadGramo     = "g"
	UnidadLitro     = "L"
	UnidadHora      = "h"
)

// =============================================================================
// Impuestos (nota 12) y tarifas de IVA (nota 13)
// =============================================================================

const (
	ImpuestoIVA = "01" // Impuesto al Valor Agregado

	TarifaExenta    = "01" // 0%
	TarifaReducida1 = "02" // 1%
	TarifaReducida2 = "03" // 2%
	TarifaReducida4 = "04" // 4%
	TarifaGeneral   = "08" // 13%
)

// CodigoTarifa devuelve el código de tarifa de IVA para un porcentaje dado.
// Porcentajes fuera de catálogo se reportan con el código de tarifa general.
func CodigoTarifa(porcentaje decimal.Decimal) string {
	switch porcentaje.StringFixed(2) {
	case "0.00":
		return TarifaExenta
	case "1.00":
		return TarifaReducida1
	case "2.00":
		return TarifaReducida2
	case "4.00":
		return TarifaReducida4
	case "13.00":
		return TarifaGeneral
	default:
		return TarifaGeneral
	}
}

// =============================================================================
// Normativa (resolución DGT vigente para comprobantes electrónicos)
// =============================================================================

const (
	NumeroResolucion = "DGT-R-48-2016"
	FechaResolucion  = "07-10-2016 08:00:00"
)
