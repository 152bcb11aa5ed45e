package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"mvp-foundry/internal/model"
	"mvp-foundry/internal/platform/rabbitmq"
)

type ArchiveAppender interface {
	Append(ctx context.Context, row *model.BlueprintArchive) error
}

// ArchiveWorker consumes blueprint.recorded events and appends them to the
// archive table.
type ArchiveWorker struct {
	conn      *amqp.Connection
	repo      ArchiveAppender
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewArchiveWorker(conn *amqp.Connection, repo ArchiveAppender, queueName string, logger *slog.Logger) *ArchiveWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		logger:    logger.With("component", "archive_worker", "queue", queueName),
	}
}

func (w *ArchiveWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("delivery channel closed")
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	w.logger.Info("archive worker started")
	return nil
}

func (w *ArchiveWorker) handle(ctx context.Context, d amqp.Delivery) {
	row, err := decodeRecorded(d.Body)
	if err != nil {
		w.logger.Warn("decode recorded event failed", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.repo.Append(ctx, row); err != nil {
		w.logger.Error("archive recorded event failed", "blueprint_id", row.BlueprintID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func decodeRecorded(body []byte) (*model.BlueprintArchive, error) {
	var event model.RecordedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.EventID == "" || event.Entry.ID == "" {
		return nil, fmt.Errorf("recorded event is missing ids")
	}
	return &model.BlueprintArchive{
		EventID:        event.EventID,
		BlueprintID:    event.Entry.ID,
		Title:          event.Entry.Title,
		OriginalPrompt: event.Entry.OriginalPrompt,
		BlueprintAt:    event.Entry.CreatedAt,
	}, nil
}

func (w *ArchiveWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
