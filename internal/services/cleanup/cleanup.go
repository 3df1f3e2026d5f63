// Package services содержит фоновое удаление замещённых медиафайлов.
// Задачи публикуются в RabbitMQ и обрабатываются воркером по принципу
// best effort: сбой удаления логируется и не приводит к повтору.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/account-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// DeletionTask — сообщение очереди media_cleanup.
type DeletionTask struct {
	URL string `json:"url"`
}

// Publisher ставит задачи удаления в очередь media_cleanup.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// DispatchDeletion публикует задачу удаления объекта по его ссылке.
func (p *Publisher) DispatchDeletion(url string) error {
	const op = "services.cleanup.DispatchDeletion"

	task := DeletionTask{URL: url}
	if err := rabbitmq.PublishMessage(p.ch, rabbitmq.MediaExchange,
		rabbitmq.CleanupQueue.RoutingKey, task); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Remover описывает контракт удаления объекта хранилища по ссылке.
type Remover interface {
	DeleteByURL(ctx context.Context, url string) error
}

// Worker читает задачи из очереди media_cleanup и удаляет объекты
// из внешнего хранилища.
type Worker struct {
	ch      *amqp.Channel
	remover Remover
	log     *slog.Logger
}

// NewWorker создает новый экземпляр Worker.
func NewWorker(ch *amqp.Channel, remover Remover, log *slog.Logger) *Worker {
	return &Worker{
		ch:      ch,
		remover: remover,
		log:     log,
	}
}

// Start запускает потребление очереди. Обработка останавливается
// при отмене контекста.
//
// Сбой удаления логируется, но сообщение подтверждается: задача
// одноразовая, а осиротевший объект в хранилище безопаснее
// бесконечного повтора.
func (w *Worker) Start(ctx context.Context) error {
	const op = "services.cleanup.Start"

	err := rabbitmq.ConsumeMessages(ctx, w.ch, rabbitmq.CleanupQueue.QueueName, func(body []byte) error {
		var task DeletionTask
		if err := json.Unmarshal(body, &task); err != nil {
			w.log.Error("failed to decode cleanup task", sl.Err(err))
			return nil
		}
		if task.URL == "" {
			return nil
		}
		if err := w.remover.DeleteByURL(ctx, task.URL); err != nil {
			w.log.Error("failed to delete replaced media file",
				slog.String("url", task.URL), sl.Err(err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
