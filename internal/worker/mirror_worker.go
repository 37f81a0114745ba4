package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"keuangan/internal/amqp"
	ports "keuangan/internal/sheets"
)

// recentEvents bounds the duplicate-delivery memory.
const recentEvents = 1024

// MirrorWorker replays appended rows into a secondary store.
type MirrorWorker struct {
	mirror ports.LedgerWriter

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func NewMirrorWorker(mirror ports.LedgerWriter) *MirrorWorker {
	return &MirrorWorker{
		mirror: mirror,
		seen:   make(map[string]struct{}),
	}
}

// HandleLedgerAppended appends the message's rows to the mirror in order.
// A returned error makes the consumer requeue the message.
//
// A partial write is not retried: the rows that landed would be written
// twice. It is logged and acknowledged instead.
func (w *MirrorWorker) HandleLedgerAppended(ctx context.Context, msg *amqp.LedgerAppendedMessage) error {
	if w.wasSeen(msg.EventID) {
		slog.InfoContext(ctx, "Skipping already mirrored event", "event_id", msg.EventID)
		return nil
	}

	txs, err := msg.Transactions()
	if err != nil {
		slog.ErrorContext(ctx, "Dropping event with invalid rows",
			"event_id", msg.EventID,
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "Mirroring appended rows",
		"event_id", msg.EventID,
		"rows", len(txs))

	if err := w.mirror.Append(ctx, txs...); err != nil {
		var pw *ports.PartialWriteError
		if errors.As(err, &pw) {
			w.markSeen(msg.EventID)
			slog.ErrorContext(ctx, "Mirror holds a partial submission",
				"event_id", msg.EventID,
				"written", pw.Written,
				"total", pw.Total,
				"error", err)
			return nil
		}
		return fmt.Errorf("mirror append: %w", err)
	}

	w.markSeen(msg.EventID)
	slog.InfoContext(ctx, "Successfully mirrored rows",
		"event_id", msg.EventID,
		"rows", len(txs))
	return nil
}

func (w *MirrorWorker) wasSeen(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.seen[id]
	return ok
}

func (w *MirrorWorker) markSeen(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[id]; ok {
		return
	}
	w.seen[id] = struct{}{}
	w.order = append(w.order, id)
	if len(w.order) > recentEvents {
		delete(w.seen, w.order[0])
		w.order = w.order[1:]
	}
}
