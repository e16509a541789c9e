package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dulcepan/facturacion-api/internal/domain/entity"
)

// Querier es el subconjunto de pgx que usan los repositorios; lo satisfacen
// tanto *pgxpool.Pool como pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EnvioRepo persiste la bitácora de envíos a Hacienda (usable con pool o tx).
type EnvioRepo struct {
	q Querier
}

// NewEnvioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEnvioRepository(q Querier) *EnvioRepo {
	return &EnvioRepo{q: q}
}

// Save registra un intento de envío. El XML firmado no se persiste.
func (r *EnvioRepo) Save(ctx context.Context, envio *entity.EnvioFactura) error {
	if envio.ID == "" {
		envio.ID = uuid.New().String()
	}
	if envio.CreatedAt.IsZero() {
		envio.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO envios_hacienda (id, clave, consecutivo, emisor_id, total, http_status, error_cause, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		envio.ID, envio.Clave, envio.Consecutivo, envio.EmisorID,
		envio.Total, envio.HTTPStatus, nullIfEmpty(envio.ErrorCause), envio.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert envío: %w", err)
	}
	return nil
}

// ListByEmisor devuelve los envíos de un emisor, del más reciente al más antiguo.
func (r *EnvioRepo) ListByEmisor(ctx context.Context, emisorID string, limit int) ([]entity.EnvioFactura, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, clave, consecutivo, emisor_id, total, http_status, COALESCE(error_cause, ''), created_at
		FROM envios_hacienda
		WHERE emisor_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, emisorID, limit)
	if err != nil {
		return nil, fmt.Errorf("listar envíos: %w", err)
	}
	defer rows.Close()

	var envios []entity.EnvioFactura
	for rows.Next() {
		var e entity.EnvioFactura
		if err := rows.Scan(&e.ID, &e.Clave, &e.Consecutivo, &e.EmisorID,
			&e.Total, &e.HTTPStatus, &e.ErrorCause, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan envío: %w", err)
		}
		envios = append(envios, e)
	}
	return envios, rows.Err()
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
