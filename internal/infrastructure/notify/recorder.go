// Package notify implementa el sink de notificaciones del motor de stock.
// La implementación actual persiste en la tabla notifications y deja rastro en
// el log; un transporte real (email, push) puede reemplazarla detrás del mismo
// puerto.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimoda/minimoda-api/internal/application/stock"
	"github.com/minimoda/minimoda-api/pkg/logger"
)

var _ stock.Notifier = (*Recorder)(nil)

// Recorder persiste cada notificación como fila en notifications.
type Recorder struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewRecorder construye el sink sobre el pool.
func NewRecorder(pool *pgxpool.Pool, log *logger.Logger) *Recorder {
	return &Recorder{pool: pool, log: log}
}

// Notify inserta la notificación. El caller trata cualquier error como
// best-effort: se loguea y la mutación de stock sigue su curso.
func (r *Recorder) Notify(ctx context.Context, notificationType, title, message string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serializar payload de notificación: %w", err)
	}

	query := `
		INSERT INTO notifications (id, type, title, message, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.pool.Exec(ctx, query,
		uuid.New().String(), notificationType, title, message, payload, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	r.log.Info().
		Str("type", notificationType).
		Str("title", title).
		Msg("notificación registrada")
	return nil
}
