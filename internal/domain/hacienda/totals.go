// Package hacienda: lógica de dominio del comprobante electrónico v4.3
// (totales del ResumenFactura y clave numérica de 50 dígitos).

package hacienda

import (
	"github.com/shopspring/decimal"

	"github.com/dulcepan/facturacion-api/internal/domain/entity"
)

// Totales agrupa los montos del ResumenFactura. Los montos se mantienen como
// decimal y se serializan SIEMPRE con StringFixed(5): el esquema exige cinco
// decimales exactos y la reproducibilidad bit a bit entre sistemas.
type Totales struct {
	TotalServGravados       decimal.Decimal
	TotalServExentos        decimal.Decimal
	TotalMercanciasGravadas decimal.Decimal
	TotalMercanciasExentas  decimal.Decimal
	TotalGravado            decimal.Decimal
	TotalExento             decimal.Decimal
	TotalVenta              decimal.Decimal
	TotalDescuentos         decimal.Decimal
	TotalVentaNeta          decimal.Decimal
	TotalImpuesto           decimal.Decimal
	TotalComprobante        decimal.Decimal
}

// CalcularTotales recorre las líneas y acumula los totales del comprobante.
//
// Por línea: subtotal = cantidad × precio unitario; impuesto = subtotal × tarifa / 100.
// El subtotal se clasifica en gravado o exento según tarifa > 0, y en servicios
// o mercancías según la línea. No existe modelo de descuentos por línea:
// TotalDescuentos queda en cero y TotalVentaNeta == TotalVenta.
//
// Invariantes: TotalComprobante = TotalVentaNeta + TotalImpuesto;
// TotalVentaNeta = TotalVenta − TotalDescuentos. Lista vacía ⇒ todo en cero.
func CalcularTotales(lineas []entity.LineaFactura) Totales {
	var t Totales
	cien := decimal.NewFromInt(100)

	for _, l := range lineas {
		subtotal := l.Cantidad.Mul(l.PrecioUnitario)
		impuesto := subtotal.Mul(l.TarifaImpuesto).Div(cien)

		t.TotalVenta = t.TotalVenta.Add(subtotal)
		t.TotalImpuesto = t.TotalImpuesto.Add(impuesto)

		gravada := l.TarifaImpuesto.IsPositive()
		switch {
		case l.EsServicio && gravada:
			t.TotalServGravados = t.TotalServGravados.Add(subtotal)
		case l.EsServicio:
			t.TotalServExentos = t.TotalServExentos.Add(subtotal)
		case gravada:
			t.TotalMercanciasGravadas = t.TotalMercanciasGravadas.Add(subtotal)
		default:
			t.TotalMercanciasExentas = t.TotalMercanciasExentas.Add(subtotal)
		}
	}

	t.TotalGravado = t.TotalServGravados.Add(t.TotalMercanciasGravadas)
	t.TotalExento = t.TotalServExentos.Add(t.TotalMercanciasExentas)
	t.TotalVentaNeta = t.TotalVenta.Sub(t.TotalDescuentos)
	t.TotalComprobante = t.TotalVentaNeta.Add(t.TotalImpuesto)
	return t
}

// SubtotalLinea calcula cantidad × precio unitario de una línea.
func SubtotalLinea(l entity.LineaFactura) decimal.Decimal {
	return l.Cantidad.Mul(l.PrecioUnitario)
}

// ImpuestoLinea calcula el monto de impuesto de una línea (subtotal × tarifa / 100).
func ImpuestoLinea(l entity.LineaFactura) decimal.Decimal {
	return SubtotalLinea(l).Mul(l.TarifaImpuesto).Div(decimal.NewFromInt(100))
}

// FormatMonto serializa un monto con cinco decimales exactos (ej: "0.00000").
func FormatMonto(d decimal.Decimal) string {
	return d.StringFixed(5)
}

// FormatCantidad serializa una cantidad con tres decimales exactos (ej: "2.000").
func FormatCantidad(d decimal.Decimal) string {
	return d.StringFixed(3)
}
