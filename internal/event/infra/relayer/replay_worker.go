package relayer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/eventpub/internal/event/domain"
	"github.com/davicafu/eventpub/internal/event/infra/metrics"
)

// ReplayWorker reenvía los sobres guardados tras un fallo de envío.
type ReplayWorker struct {
	store     domain.ReplayStore
	sender    domain.EventSender
	interval  time.Duration
	batchSize int
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewReplayWorker(
	store domain.ReplayStore,
	sender domain.EventSender,
	interval time.Duration,
	batchSize int,
	m *metrics.Metrics,
	log *zap.Logger,
) *ReplayWorker {
	return &ReplayWorker{
		store:     store,
		sender:    sender,
		interval:  interval,
		batchSize: batchSize,
		metrics:   m,
		log:       log,
	}
}

// Start inicia el bucle de polling. Bloquea hasta que se cancela ctx.
func (w *ReplayWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("🚀 Replay worker iniciado",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🛑 Replay worker detenido.")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch intenta un único envío por sobre pendiente y devuelve cuántos se reenviaron.
func (w *ReplayWorker) ProcessBatch(ctx context.Context) int {
	events, err := w.store.FetchPending(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener eventos pendientes", zap.Error(err))
		return 0
	}
	if len(events) == 0 {
		return 0
	}
	w.log.Info("📬 Eventos pendientes de reenvío", zap.Int("count", len(events)))

	replayed := 0
	for _, evt := range events {
		if ctx.Err() != nil {
			break
		}
		if w.replayOne(ctx, evt) {
			replayed++
		}
	}
	return replayed
}

func (w *ReplayWorker) replayOne(ctx context.Context, evt domain.PersistedEvent) bool {
	if err := w.sender.Send(ctx, evt.RoutingKey, evt.Envelope); err != nil {
		w.log.Warn("⚠️ No se pudo reenviar evento",
			zap.String("transaction_id", evt.TransactionID),
			zap.String("routing_key", evt.RoutingKey.String()),
			zap.Error(err))
		if w.metrics != nil {
			w.metrics.ReplayFailures.Inc()
		}
		// queda pendiente para el siguiente tick
		return false
	}

	if w.metrics != nil {
		w.metrics.Replayed.Inc()
	}

	if err := w.store.MarkReplayed(ctx, evt.TransactionID); err != nil {
		w.log.Warn("⚠️ No se pudo marcar evento como reenviado",
			zap.String("transaction_id", evt.TransactionID),
			zap.Error(err))
		return true
	}

	w.log.Info("✅ Evento reenviado y marcado", zap.String("transaction_id", evt.TransactionID))
	return true
}
