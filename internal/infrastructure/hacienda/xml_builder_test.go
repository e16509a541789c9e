package hacienda_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dulcepan/facturacion-api/internal/domain"
	"github.com/dulcepan/facturacion-api/internal/domain/entity"
	domhacienda "github.com/dulcepan/facturacion-api/internal/domain/hacienda"
	"github.com/dulcepan/facturacion-api/internal/infrastructure/hacienda"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func facturaPrueba() *entity.Factura {
	return &entity.Factura{
		Consecutivo:    "00100001010000000155",
		CondicionVenta: "01",
		MedioPago:      "01",
		Moneda:         "CRC",
		FechaEmision:   time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
		Emisor: &entity.Parte{
			Nombre:               "Panadería Dulce Pan S.A.",
			TipoIdentificacion:   "02",
			NumeroIdentificacion: "3101123456",
			Provincia:            "1",
			Canton:               "01",
			Distrito:             "01",
			OtrasSenas:           "San José centro",
			Telefono:             "22223333",
			Correo:               "facturas@dulcepan.cr",
		},
		Receptor: &entity.Parte{
			Nombre:               "Cliente de Prueba",
			TipoIdentificacion:   "01",
			NumeroIdentificacion: "109870654",
			Correo:               "cliente@example.com",
		},
		Detalle: []entity.LineaFactura{
			{
				Codigo:         "PAN001",
				Detalle:        "Baguette artesanal",
				UnidadMedida:   "Unid",
				Cantidad:       decimal.NewFromInt(2),
				PrecioUnitario: decimal.NewFromInt(1000),
				TarifaImpuesto: decimal.NewFromInt(13),
			},
		},
	}
}

func buildPrueba(t *testing.T) []byte {
	t.Helper()
	f := facturaPrueba()
	ctx := &hacienda.FacturaBuildContext{
		Factura:         f,
		Totales:         domhacienda.CalcularTotales(f.Detalle),
		Clave:           "50609032400310112345600100001010000000155100000001",
		CodigoActividad: "107301",
	}
	xmlBytes, err := hacienda.NewXMLBuilderService().Build(ctx)
	require.NoError(t, err)
	return xmlBytes
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Build
// ──────────────────────────────────────────────────────────────────────────────

// La salida debe comenzar exactamente en la declaración XML: ningún byte antes
// de `<?xml` (un BOM o espacio rompe la verificación de firma aguas abajo).
func TestBuild_SinBytesPrevios(t *testing.T) {
	xmlBytes := buildPrueba(t)
	assert.True(t, strings.HasPrefix(string(xmlBytes), `<?xml version="1.0" encoding="utf-8"?>`),
		"el documento debe arrancar en la declaración XML")
}

// El documento parsea, usa el namespace v4.3 y conserva el consecutivo exacto.
func TestBuild_EstructuraBasica(t *testing.T) {
	xmlBytes := buildPrueba(t)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes), "el XML debe ser bien formado")

	root := doc.Root()
	require.Equal(t, "FacturaElectronica", root.Tag)
	assert.Equal(t, hacienda.NsFactura, root.SelectAttrValue("xmlns", ""))

	assert.Equal(t, "00100001010000000155", doc.FindElement("//NumeroConsecutivo").Text(),
		"NumeroConsecutivo debe ser el consecutivo de entrada, exacto")
	assert.Equal(t, "50609032400310112345600100001010000000155100000001",
		doc.FindElement("//Clave").Text())
	assert.Equal(t, "107301", doc.FindElement("//CodigoActividad").Text())
}

// FechaEmision con offset fijo de Costa Rica (−06:00) y precisión de segundos.
func TestBuild_FechaEmisionCostaRica(t *testing.T) {
	xmlBytes := buildPrueba(t)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))

	fecha := doc.FindElement("//FechaEmision").Text()
	assert.True(t, strings.HasSuffix(fecha, "-06:00"), "offset de Costa Rica: %s", fecha)
	assert.Equal(t, "2024-03-09T08:30:00-06:00", fecha, "14:30 UTC son las 08:30 en Costa Rica")
}

// La línea de detalle formatea código a 13 dígitos, cantidad a 3 decimales y
// montos a 5, con el bloque de impuesto calculado.
func TestBuild_LineaDetalle(t *testing.T) {
	xmlBytes := buildPrueba(t)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))

	linea := doc.FindElement("//DetalleServicio/LineaDetalle")
	require.NotNil(t, linea)

	assert.Equal(t, "1", linea.FindElement("NumeroLinea").Text())
	assert.Equal(t, "0000000PAN001", linea.FindElement("Codigo").Text(), "código rellenado a 13")
	assert.Equal(t, "2.000", linea.FindElement("Cantidad").Text())
	assert.Equal(t, "1000.00000", linea.FindElement("PrecioUnitario").Text())
	assert.Equal(t, "2000.00000", linea.FindElement("MontoTotal").Text())
	assert.Equal(t, "2260.00000", linea.FindElement("MontoTotalLinea").Text())

	imp := linea.FindElement("Impuesto")
	require.NotNil(t, imp, "línea gravada debe llevar bloque Impuesto")
	assert.Equal(t, "01", imp.FindElement("Codigo").Text())
	assert.Equal(t, "08", imp.FindElement("CodigoTarifa").Text(), "13% es tarifa general")
	assert.Equal(t, "13.00", imp.FindElement("Tarifa").Text())
	assert.Equal(t, "260.00000", imp.FindElement("Monto").Text())
}

// El resumen lleva moneda, todos los totales a 5 decimales y la normativa fija.
func TestBuild_ResumenYNormativa(t *testing.T) {
	xmlBytes := buildPrueba(t)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))

	resumen := doc.FindElement("//ResumenFactura")
	require.NotNil(t, resumen)
	assert.Equal(t, "CRC", resumen.FindElement("CodigoTipoMoneda/CodigoMoneda").Text())
	assert.Equal(t, "2000.00000", resumen.FindElement("TotalVenta").Text())
	assert.Equal(t, "0.00000", resumen.FindElement("TotalDescuentos").Text())
	assert.Equal(t, "2000.00000", resumen.FindElement("TotalVentaNeta").Text())
	assert.Equal(t, "260.00000", resumen.FindElement("TotalImpuesto").Text())
	assert.Equal(t, "2260.00000", resumen.FindElement("TotalComprobante").Text())

	normativa := doc.FindElement("//Normativa")
	require.NotNil(t, normativa)
	assert.Equal(t, "DGT-R-48-2016", normativa.FindElement("NumeroResolucion").Text())
}

// Emisor, receptor o detalle ausentes ⇒ ErrValidation sin documento.
func TestBuild_EntradasObligatorias(t *testing.T) {
	svc := hacienda.NewXMLBuilderService()

	f := facturaPrueba()
	f.Emisor = nil
	_, err := svc.Build(&hacienda.FacturaBuildContext{Factura: f})
	require.ErrorIs(t, err, domain.ErrValidation)

	f = facturaPrueba()
	f.Receptor = nil
	_, err = svc.Build(&hacienda.FacturaBuildContext{Factura: f})
	require.ErrorIs(t, err, domain.ErrValidation)

	f = facturaPrueba()
	f.Detalle = nil
	_, err = svc.Build(&hacienda.FacturaBuildContext{Factura: f})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Build(nil)
	require.ErrorIs(t, err, domain.ErrValidation)
}
