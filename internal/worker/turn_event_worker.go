package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"chatbot-backend/internal/model"
	"chatbot-backend/internal/repository"
)

// TurnEventWorker drains the turn-event queue into MySQL. One consumer
// goroutine, stopped via Close on shutdown.
type TurnEventWorker struct {
	conn      *amqp.Connection
	repo      *repository.TurnEventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTurnEventWorker(conn *amqp.Connection, repo *repository.TurnEventRepository, queueName string) *TurnEventWorker {
	return &TurnEventWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *TurnEventWorker) Start(ctx context.Context) error {
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

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
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
					return
				}

				var event model.TurnEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Error().Err(err).Msg("worker decode turn event failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&event); err != nil {
					log.Error().Err(err).Uint("chat_id", event.ChatID).Msg("worker persist turn event failed")
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *TurnEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
