package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studydeck/internal/model"
)

var errEmptyUsage = errors.New("usage event has no session or tokens")

// UsageRecorder adds tokens to a session's running total.
type UsageRecorder interface {
	AddTokenUsage(ctx context.Context, sessionID uint, delta int64) error
}

// UsageMeterWorker consumes usage events and folds them into
// sessions.token_usage.
type UsageMeterWorker struct {
	conn      *amqp.Connection
	recorder  UsageRecorder
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUsageMeterWorker(conn *amqp.Connection, recorder UsageRecorder, queueName string, logger *slog.Logger) *UsageMeterWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageMeterWorker{
		conn:      conn,
		recorder:  recorder,
		queueName: queueName,
		logger:    logger.With("component", "usage_meter", "queue", queueName),
	}
}

func (w *UsageMeterWorker) Start(ctx context.Context) error {
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

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
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
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Error("record usage failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("usage meter started")
	return nil
}

// handle decodes one event and records it. Events without a session or
// without tokens are rejected.
func (w *UsageMeterWorker) handle(ctx context.Context, body []byte) error {
	var event model.UsageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode usage event failed: %w", err)
	}
	if event.SessionID == 0 || event.Total() <= 0 {
		return errEmptyUsage
	}
	if err := w.recorder.AddTokenUsage(ctx, event.SessionID, event.Total()); err != nil {
		return err
	}
	w.logger.Debug("usage recorded", "session_id", event.SessionID, "model", event.Model, "tokens", event.Total())
	return nil
}

func (w *UsageMeterWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
