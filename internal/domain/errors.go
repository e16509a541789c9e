package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// La taxonomía cubre el ciclo de envío: validación de entrada, credencial de
// firma, autenticación ante Hacienda y fallas de red. El rechazo del
// comprobante por parte de Hacienda NO es un error: viaja como resultado.
var (
	ErrValidation = errors.New("datos de factura inválidos")
	ErrCredential = errors.New("credencial de firma inválida")
	ErrAuth       = errors.New("autenticación ante Hacienda fallida")
	ErrNetwork    = errors.New("error de red hacia Hacienda")
)
