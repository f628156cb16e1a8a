package worker

import (
	"context"
	"log/slog"

	"storefront/internal/domain/interaction"
	"storefront/internal/metrics"
)

// StatsWorker drains interaction events published by the interaction service
// and turns them into metrics.
type StatsWorker struct {
	Ch  <-chan interaction.Event
	log *slog.Logger
}

func NewStatsWorker(ch <-chan interaction.Event, log *slog.Logger) *StatsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &StatsWorker{Ch: ch, log: log}
}

// Run blocks until ctx is done or the channel is closed.
func (w *StatsWorker) Run(ctx context.Context) {
	w.log.Info("stats worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("stats worker stopped")
			return
		case ev, ok := <-w.Ch:
			if !ok {
				w.log.Info("stats worker channel closed")
				return
			}
			w.handle(ctx, ev)
		}
	}
}

func (w *StatsWorker) handle(ctx context.Context, ev interaction.Event) {
	metrics.IncInteraction(string(ev.Tipo))
	w.log.DebugContext(ctx, "interaction recorded",
		"interacao_id", ev.ID,
		"tipo", ev.Tipo,
		"produto_id", ev.ProdutoID,
	)
}
