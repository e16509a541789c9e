package hacienda

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/dulcepan/facturacion-api/internal/domain"
	"github.com/dulcepan/facturacion-api/internal/domain/entity"
	domhacienda "github.com/dulcepan/facturacion-api/internal/domain/hacienda"
	pkghacienda "github.com/dulcepan/facturacion-api/pkg/hacienda"
)

// Namespace y versión oficiales del esquema FacturaElectronica v4.3.
const (
	NsFactura     = "https://cdn.comprobanteselectronicos.go.cr/xml-schemas/v4.3/facturaElectronica"
	nsXsi         = "http://www.w3.org/2001/XMLSchema-instance"
	nsXsd         = "http://www.w3.org/2001/XMLSchema"
	SchemaVersion = "4.3"
)

// zonaCostaRica es el huso horario fijo del comprobante (UTC−06:00, sin DST).
var zonaCostaRica = time.FixedZone("America/Costa_Rica", -6*60*60)

// FacturaBuildContext agrupa los insumos del documento: factura, totales y clave.
type FacturaBuildContext struct {
	Factura         *entity.Factura
	Totales         domhacienda.Totales
	Clave           string
	CodigoActividad string
}

// XMLBuilderService construye el XML FacturaElectronica v4.3 (sin firma).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera los bytes del comprobante según el esquema v4.3.
//
// El orden de los elementos es parte del contrato de validación de Hacienda y
// no debe alterarse. La salida comienza exactamente en `<?xml` — sin BOM ni
// espacios previos: cualquier byte delante de la declaración rompe la
// verificación de firma aguas abajo.
func (s *XMLBuilderService) Build(ctx *FacturaBuildContext) ([]byte, error) {
	if ctx == nil || ctx.Factura == nil {
		return nil, fmt.Errorf("%w: falta la factura en el contexto", domain.ErrValidation)
	}
	f := ctx.Factura
	if f.Emisor == nil {
		return nil, fmt.Errorf("%w: falta el emisor", domain.ErrValidation)
	}
	if f.Receptor == nil {
		return nil, fmt.Errorf("%w: falta el receptor", domain.ErrValidation)
	}
	if len(f.Detalle) == 0 {
		return nil, fmt.Errorf("%w: la factura no tiene líneas de detalle", domain.ErrValidation)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	enc := xml.NewEncoder(&buf)

	root := xml.StartElement{
		Name: xml.Name{Local: "FacturaElectronica"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: NsFactura},
			{Name: xml.Name{Local: "xmlns:xsd"}, Value: nsXsd},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: nsXsi},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	fecha := f.FechaEmision
	if fecha.IsZero() {
		fecha = time.Now()
	}

	writeElem(enc, "Clave", ctx.Clave)
	writeElem(enc, "CodigoActividad", ctx.CodigoActividad)
	writeElem(enc, "NumeroConsecutivo", f.Consecutivo)
	writeElem(enc, "FechaEmision", fecha.In(zonaCostaRica).Format("2006-01-02T15:04:05-07:00"))

	if err := s.writeParte(enc, "Emisor", f.Emisor); err != nil {
		return nil, err
	}
	if err := s.writeParte(enc, "Receptor", f.Receptor); err != nil {
		return nil, err
	}

	writeElem(enc, "CondicionVenta", f.CondicionVenta)
	if f.PlazoCredito != "" {
		writeElem(enc, "PlazoCredito", f.PlazoCredito)
	}
	writeElem(enc, "MedioPago", f.MedioPago)

	if err := s.writeDetalleServicio(enc, f.Detalle); err != nil {
		return nil, err
	}
	if err := s.writeResumen(enc, f, ctx.Totales); err != nil {
		return nil, err
	}

	// Normativa: referencia fija a la resolución DGT vigente.
	startElem(enc, "Normativa")
	writeElem(enc, "NumeroResolucion", pkghacienda.NumeroResolucion)
	writeElem(enc, "FechaResolucion", pkghacienda.FechaResolucion)
	endElem(enc, "Normativa")

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeParte escribe el bloque Emisor o Receptor (nombre, identificación, ubicación, contacto).
func (s *XMLBuilderService) writeParte(enc *xml.Encoder, local string, p *entity.Parte) error {
	startElem(enc, local)
	writeElem(enc, "Nombre", p.Nombre)

	startElem(enc, "Identificacion")
	writeElem(enc, "Tipo", p.TipoIdentificacion)
	writeElem(enc, "Numero", p.NumeroIdentificacion)
	endElem(enc, "Identificacion")

	if p.Provincia != "" || p.Canton != "" || p.Distrito != "" || p.OtrasSenas != "" {
		startElem(enc, "Ubicacion")
		writeElem(enc, "Provincia", p.Provincia)
		writeElem(enc, "Canton", p.Canton)
		writeElem(enc, "Distrito", p.Distrito)
		if p.OtrasSenas != "" {
			writeElem(enc, "OtrasSenas", p.OtrasSenas)
		}
		endElem(enc, "Ubicacion")
	}
	if p.Telefono != "" {
		startElem(enc, "Telefono")
		codigo := p.CodigoPaisTelefono
		if codigo == "" {
			codigo = pkghacienda.CountryCode
		}
		writeElem(enc, "CodigoPais", codigo)
		writeElem(enc, "NumTelefono", p.Telefono)
		endElem(enc, "Telefono")
	}
	if p.Correo != "" {
		writeElem(enc, "CorreoElectronico", p.Correo)
	}
	endElem(enc, local)
	return nil
}

// writeDetalleServicio escribe una LineaDetalle por cada línea, numerada desde 1.
func (s *XMLBuilderService) writeDetalleServicio(enc *xml.Encoder, lineas []entity.LineaFactura) error {
	startElem(enc, "DetalleServicio")
	for i, l := range lineas {
		subtotal := domhacienda.SubtotalLinea(l)
		impuesto := domhacienda.ImpuestoLinea(l)

		startElem(enc, "LineaDetalle")
		writeElem(enc, "NumeroLinea", strconv.Itoa(i+1))
		writeElem(enc, "Codigo", fmt.Sprintf("%013s", l.Codigo))
		writeElem(enc, "Cantidad", domhacienda.FormatCantidad(l.Cantidad))
		writeElem(enc, "UnidadMedida", unidadODefault(l))
		writeElem(enc, "Detalle", l.Detalle)
		writeElem(enc, "PrecioUnitario", domhacienda.FormatMonto(l.PrecioUnitario))
		writeElem(enc, "MontoTotal", domhacienda.FormatMonto(subtotal))
		writeElem(enc, "SubTotal", domhacienda.FormatMonto(subtotal))

		if l.TarifaImpuesto.IsPositive() {
			startElem(enc, "Impuesto")
			writeElem(enc, "Codigo", pkghacienda.ImpuestoIVA)
			writeElem(enc, "CodigoTarifa", pkghacienda.CodigoTarifa(l.TarifaImpuesto))
			writeElem(enc, "Tarifa", l.TarifaImpuesto.StringFixed(2))
			writeElem(enc, "Monto", domhacienda.FormatMonto(impuesto))
			endElem(enc, "Impuesto")
		}

		writeElem(enc, "MontoTotalLinea", domhacienda.FormatMonto(subtotal.Add(impuesto)))
		endElem(enc, "LineaDetalle")
	}
	endElem(enc, "DetalleServicio")
	return nil
}

// writeResumen escribe el ResumenFactura con moneda, tipo de cambio y todos los totales.
func (s *XMLBuilderService) writeResumen(enc *xml.Encoder, f *entity.Factura, t domhacienda.Totales) error {
	startElem(enc, "ResumenFactura")

	moneda := f.Moneda
	if moneda == "" {
		moneda = "CRC"
	}
	tipoCambio := f.TipoCambio
	if tipoCambio.IsZero() {
		tipoCambio = decimal.NewFromInt(1)
	}
	startElem(enc, "CodigoTipoMoneda")
	writeElem(enc, "CodigoMoneda", moneda)
	writeElem(enc, "TipoCambio", tipoCambio.StringFixed(5))
	endElem(enc, "CodigoTipoMoneda")

	writeElem(enc, "TotalServGravados", domhacienda.FormatMonto(t.TotalServGravados))
	writeElem(enc, "TotalServExentos", domhacienda.FormatMonto(t.TotalServExentos))
	writeElem(enc, "TotalMercanciasGravadas", domhacienda.FormatMonto(t.TotalMercanciasGravadas))
	writeElem(enc, "TotalMercExentas", domhacienda.FormatMonto(t.TotalMercanciasExentas))
	writeElem(enc, "TotalGravado", domhacienda.FormatMonto(t.TotalGravado))
	writeElem(enc, "TotalExento", domhacienda.FormatMonto(t.TotalExento))
	writeElem(enc, "TotalVenta", domhacienda.FormatMonto(t.TotalVenta))
	writeElem(enc, "TotalDescuentos", domhacienda.FormatMonto(t.TotalDescuentos))
	writeElem(enc, "TotalVentaNeta", domhacienda.FormatMonto(t.TotalVentaNeta))
	writeElem(enc, "TotalImpuesto", domhacienda.FormatMonto(t.TotalImpuesto))
	writeElem(enc, "TotalComprobante", domhacienda.FormatMonto(t.TotalComprobante))

	endElem(enc, "ResumenFactura")
	return nil
}

func unidadODefault(l entity.LineaFactura) string {
	if l.UnidadMedida != "" {
		return l.UnidadMedida
	}
	if l.EsServicio {
		return pkghacienda.UnidadServicio
	}
	return pkghacienda.UnidadUnidad
}

func startElem(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func endElem(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

// writeElem escribe <local>valor</local>. El texto se normaliza a NFC para que
// los acentos lleguen con una única representación de bytes al canonicalizador.
func writeElem(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
	_ = enc.EncodeToken(xml.CharData(norm.NFC.String(value)))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}
