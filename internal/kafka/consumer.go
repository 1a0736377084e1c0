package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"cricket-booking/internal/logger"
	"cricket-booking/internal/models"
	"cricket-booking/internal/services"
)

// retryDelay is the pause before rejoining the group after a claim stopped on a storage failure.
const retryDelay = 2 * time.Second

// GroundUpdater applies ground maintenance events to the catalogue.
type GroundUpdater interface {
	ApplyGroundUpdate(ctx context.Context, event *models.GroundUpdateEvent) error
}

type Consumer struct {
	consumer sarama.ConsumerGroup
	topics   []string
	log      *logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logger.Logger) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.LogKafka("SUBSCRIBED", topic, fmt.Sprintf("Consumer group %s joined", groupID))
	return &Consumer{consumer: consumer, topics: []string{topic}, log: log}, nil
}

// ConsumeGroundUpdates blocks until ctx is cancelled or the group fails.
func (c *Consumer) ConsumeGroundUpdates(ctx context.Context, updater GroundUpdater) error {
	handler := &GroundUpdateHandler{Updater: updater, Log: c.log}

	for {
		if err := c.consumer.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("KAFKA", fmt.Sprintf("Error consuming messages: %v", err))
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if handler.stalled.Swap(false) {
			c.log.Warn("KAFKA", fmt.Sprintf("Redelivering ground updates in %s", retryDelay))
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}

// GroundUpdateHandler is the sarama group handler for the ground-updates topic.
type GroundUpdateHandler struct {
	Updater GroundUpdater
	Log     *logger.Logger

	stalled atomic.Bool
}

func (h *GroundUpdateHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *GroundUpdateHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks malformed messages and events the catalogue rejects (validation, unknown ground)
// as consumed. A storage failure leaves the message unmarked and ends the claim. Sarama then closes
// the session, and the next session resumes from the last committed offset, redelivering it.
func (h *GroundUpdateHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event models.GroundUpdateEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			h.Log.Error("KAFKA", fmt.Sprintf("Failed to unmarshal message at offset %d: %v", message.Offset, err))
			session.MarkMessage(message, "")
			continue
		}

		if err := h.Updater.ApplyGroundUpdate(session.Context(), &event); err != nil {
			if services.KindOf(err) == services.KindStorage {
				h.Log.Error("KAFKA", fmt.Sprintf("Storage failure applying %s for ground %d at offset %d, will redeliver: %v",
					event.Type, event.GroundID, message.Offset, err))
				h.stalled.Store(true)
				return nil
			}
			h.Log.Warn("KAFKA", fmt.Sprintf("Skipping %s for ground %d at offset %d: %v", event.Type, event.GroundID, message.Offset, err))
			session.MarkMessage(message, "")
			continue
		}

		h.Log.LogKafka("APPLIED", message.Topic, fmt.Sprintf("%s for ground %d", event.Type, event.GroundID))
		session.MarkMessage(message, "")
	}
	return nil
}
