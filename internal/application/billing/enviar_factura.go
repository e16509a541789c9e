package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dulcepan/facturacion-api/internal/domain"
	"github.com/dulcepan/facturacion-api/internal/domain/entity"
	domhacienda "github.com/dulcepan/facturacion-api/internal/domain/hacienda"
	infrahacienda "github.com/dulcepan/facturacion-api/internal/infrastructure/hacienda"
	pkghacienda "github.com/dulcepan/facturacion-api/pkg/hacienda"
	"github.com/dulcepan/facturacion-api/pkg/logger"
)

// EnviarFacturaUseCase orquesta el ciclo completo de factura electrónica:
//
//	Totales → Clave numérica → XML v4.3 → Firma XML-DSig → Envío a Hacienda
//
// El ciclo es síncrono con la petición HTTP: el caller recibe el desenlace
// reportado por Hacienda (aceptación o rechazo) en la misma respuesta. Un
// rechazo del comprobante NO es error del pipeline: viaja como dato.
type EnviarFacturaUseCase struct {
	xmlBuilder *infrahacienda.XMLBuilderService
	signer     pkghacienda.Signer
	submitter  infrahacienda.Submitter
	loadCred   CredentialLoader
	envioRepo  EnvioRepository // nil = bitácora desactivada
	params     HaciendaParams
	log        *logger.Logger
}

// NewEnviarFacturaUseCase construye el orquestador con todas sus dependencias.
// envioRepo puede ser nil (sin DATABASE_URL no hay bitácora).
func NewEnviarFacturaUseCase(
	xmlBuilder *infrahacienda.XMLBuilderService,
	signer pkghacienda.Signer,
	submitter infrahacienda.Submitter,
	loadCred CredentialLoader,
	envioRepo EnvioRepository,
	params HaciendaParams,
	log *logger.Logger,
) *EnviarFacturaUseCase {
	return &EnviarFacturaUseCase{
		xmlBuilder: xmlBuilder,
		signer:     signer,
		submitter:  submitter,
		loadCred:   loadCred,
		envioRepo:  envioRepo,
		params:     params,
		log:        log,
	}
}

// ResultadoEnvio es el desenlace del ciclo: la clave generada y la respuesta
// cruda de la recepción de Hacienda.
type ResultadoEnvio struct {
	Clave    string
	Hacienda infrahacienda.SubmitResult
}

// Enviar ejecuta el ciclo completo para una factura.
//
// Cualquier fallo del pipeline (validación, credencial, firma, red, auth)
// retorna error envuelto sobre los sentinelas de domain. Un estado no-2xx de
// Hacienda es un desenlace normal y llega en ResultadoEnvio.
func (uc *EnviarFacturaUseCase) Enviar(ctx context.Context, f *entity.Factura) (*ResultadoEnvio, error) {
	if f == nil || f.Emisor == nil {
		return nil, fmt.Errorf("%w: falta el emisor de la factura", domain.ErrValidation)
	}

	envioID := uuid.New().String()
	log := uc.log.With().Str("envio_id", envioID).Str("consecutivo", f.Consecutivo).Logger()

	if f.FechaEmision.IsZero() {
		f.FechaEmision = time.Now()
	}

	totales := domhacienda.CalcularTotales(f.Detalle)

	clave, err := domhacienda.GenerarClave(domhacienda.ClaveParams{
		EmisorID:    f.Emisor.NumeroIdentificacion,
		Consecutivo: f.Consecutivo,
		Fecha:       f.FechaEmision,
		Situacion:   uc.params.Situacion,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("clave", clave).Msg("clave numérica generada")

	xmlBytes, err := uc.xmlBuilder.Build(&infrahacienda.FacturaBuildContext{
		Factura:         f,
		Totales:         totales,
		Clave:           clave,
		CodigoActividad: uc.params.CodigoActividad,
	})
	if err != nil {
		return nil, err
	}

	// La credencial se materializa por envío, nunca se cachea en memoria.
	cert, err := uc.loadCred(uc.params.CertP12Base64, uc.params.CertPassword)
	if err != nil {
		log.Error().Err(err).Msg("credencial de firma inválida")
		return nil, err
	}

	signedXML, err := uc.signer.Sign(xmlBytes, cert)
	if err != nil {
		log.Error().Err(err).Msg("firma del comprobante")
		return nil, err
	}

	result, err := uc.submitter.Submit(ctx, infrahacienda.SubmitDocument{
		Clave:              clave,
		Fecha:              f.FechaEmision,
		TipoIdentificacion: f.Emisor.TipoIdentificacion,
		EmisorID:           f.Emisor.NumeroIdentificacion,
		SignedXML:          signedXML,
	})
	if err != nil {
		log.Error().Err(err).Msg("envío a Hacienda")
		return nil, err
	}

	log.Info().
		Str("clave", clave).
		Int("status", result.Status).
		Str("error_cause", result.ErrorCause).
		Msg("comprobante entregado a Hacienda")

	uc.registrarEnvio(ctx, log, f, clave, totales, result)

	return &ResultadoEnvio{Clave: clave, Hacienda: *result}, nil
}

// registrarEnvio anota el intento en la bitácora. Un fallo al persistir se
// loguea y no altera el desenlace del envío.
func (uc *EnviarFacturaUseCase) registrarEnvio(
	ctx context.Context,
	log zerolog.Logger,
	f *entity.Factura,
	clave string,
	totales domhacienda.Totales,
	result *infrahacienda.SubmitResult,
) {
	if uc.envioRepo == nil {
		return
	}
	envio := &entity.EnvioFactura{
		Clave:       clave,
		Consecutivo: f.Consecutivo,
		EmisorID:    f.Emisor.NumeroIdentificacion,
		Total:       totales.TotalComprobante,
		HTTPStatus:  result.Status,
		ErrorCause:  result.ErrorCause,
	}
	if err := uc.envioRepo.Save(ctx, envio); err != nil {
		log.Warn().Err(err).Msg("no se pudo registrar el envío en la bitácora")
	}
}
