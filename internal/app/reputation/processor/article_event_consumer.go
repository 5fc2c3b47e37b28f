package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wafflemarket/internal/app/reputation/entity"
	"wafflemarket/internal/app/reputation/service"
	"wafflemarket/pkg/logger"
	"wafflemarket/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "reputation-service"

// ArticleEventConsumer слушает топик article_events и сбрасывает
// кеш температуры сторон сделки: любое событие объявления меняет
// счетчики сделок, от которых зависит формула
type ArticleEventConsumer struct {
	reader   *kafka.Reader
	trustSvc service.TrustServiceInterface
	topic    string
	groupID  string
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewArticleEventConsumer создает новый Kafka consumer событий объявлений
func NewArticleEventConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	trustSvc service.TrustServiceInterface,
) *ArticleEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &ArticleEventConsumer{
		reader:   reader,
		trustSvc: trustSvc,
		topic:    topic,
		groupID:  groupID,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *ArticleEventConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting article event consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer и дожидается завершения цикла чтения
func (c *ArticleEventConsumer) Stop() {
	logger.Info().Msg("Stopping article event consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Article event consumer stopped")
}

func (c *ArticleEventConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if readCtx.Err() != nil {
					continue
				}

				metrics.RecordKafkaError(serviceName, c.topic, "consume")
				logger.Error().Err(err).Msg("Failed to fetch article event")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				logger.Error().Err(err).
					Int64("offset", message.Offset).
					Int("partition", message.Partition).
					Msg("Failed to process article event")
				// Offset не коммитим, сообщение будет перечитано
				continue
			}

			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID)
			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("Failed to commit article event offset")
			}
		}
	}
}

func (c *ArticleEventConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ArticleEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal article event: %w", err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("article_id", event.ArticleID.String()).
		Msg("Received article event")

	// Сбрасываем кеш обеих сторон: счетчик listed продавца меняется всегда,
	// счетчик bought покупателя - при продаже
	if err := c.trustSvc.InvalidateScore(ctx, event.SellerID, "article_event"); err != nil {
		return fmt.Errorf("failed to invalidate seller score: %w", err)
	}

	if event.BuyerID != nil {
		if err := c.trustSvc.InvalidateScore(ctx, *event.BuyerID, "article_event"); err != nil {
			return fmt.Errorf("failed to invalidate buyer score: %w", err)
		}
	}

	return nil
}

// GetStats возвращает статистику consumer
func (c *ArticleEventConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
