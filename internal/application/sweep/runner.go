package sweep

import (
	"context"
	"time"

	"github.com/minimoda/minimoda-api/pkg/logger"
)

// Runner supervisa tareas periódicas sobre time.Ticker, atadas al contexto de
// apagado de la aplicación. Sin estado mutable compartido: cada tarea lee y
// escribe únicamente a través del almacén transaccional.
type Runner struct {
	log *logger.Logger
}

// NewRunner construye el supervisor de tareas periódicas.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{log: log}
}

// Every lanza una goroutine que ejecuta fn cada interval hasta que ctx se
// cancele. Los errores de cada tick se registran y el ciclo continúa.
func (r *Runner) Every(ctx context.Context, interval time.Duration, name string, fn func(ctx context.Context) error) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		r.log.Info().Str("task", name).Dur("interval", interval).Msg("tarea periódica iniciada")
		for {
			select {
			case <-ctx.Done():
				r.log.Info().Str("task", name).Msg("tarea periódica detenida")
				return
			case <-t.C:
				if err := fn(ctx); err != nil {
					r.log.Error().Err(err).Str("task", name).Msg("fallo en tarea periódica")
				}
			}
		}
	}()
}
