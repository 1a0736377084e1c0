package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cricket-booking/internal/kafka"
	"cricket-booking/internal/logger"
	"cricket-booking/internal/models"
	"cricket-booking/internal/services"
)

type MockGroundUpdater struct {
	mock.Mock
}

func (m *MockGroundUpdater) ApplyGroundUpdate(ctx context.Context, event *models.GroundUpdateEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Mock implementations for Sarama interfaces
type MockConsumerGroupSession struct {
	mock.Mock
}

func (m *MockConsumerGroupSession) Claims() map[string][]int32 {
	args := m.Called()
	return args.Get(0).(map[string][]int32)
}

func (m *MockConsumerGroupSession) MemberID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConsumerGroupSession) GenerationID() int32 {
	args := m.Called()
	return int32(args.Int(0))
}

func (m *MockConsumerGroupSession) MarkOffset(topic string, partition int32, offset int64, metadata string) {
	m.Called(topic, partition, offset, metadata)
}

func (m *MockConsumerGroupSession) Commit() {
	m.Called()
}

func (m *MockConsumerGroupSession) ResetOffset(topic string, partition int32, offset int64, metadata string) {
	m.Called(topic, partition, offset, metadata)
}

func (m *MockConsumerGroupSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	m.Called(msg, metadata)
}

func (m *MockConsumerGroupSession) Context() context.Context {
	args := m.Called()
	return args.Get(0).(context.Context)
}

type MockConsumerGroupClaim struct {
	mock.Mock
}

func (m *MockConsumerGroupClaim) Topic() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConsumerGroupClaim) Partition() int32 {
	args := m.Called()
	return int32(args.Int(0))
}

func (m *MockConsumerGroupClaim) InitialOffset() int64 {
	args := m.Called()
	return int64(args.Int(0))
}

func (m *MockConsumerGroupClaim) HighWaterMarkOffset() int64 {
	args := m.Called()
	return int64(args.Int(0))
}

func (m *MockConsumerGroupClaim) Messages() <-chan *sarama.ConsumerMessage {
	args := m.Called()
	return args.Get(0).(chan *sarama.ConsumerMessage)
}

func quietLogger() *logger.Logger {
	return logger.NewLogger(logger.WithOutput(io.Discard))
}

func message(t *testing.T, offset int64, v any) *sarama.ConsumerMessage {
	t.Helper()
	var body []byte
	switch raw := v.(type) {
	case string:
		body = []byte(raw)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return &sarama.ConsumerMessage{Topic: "ground-updates", Offset: offset, Value: body}
}

func TestGroundUpdateHandler_ConsumeClaim(t *testing.T) {
	closed := false
	rating := 4.5
	reviews := 20

	availability := &models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: 3, IsAvailable: &closed}
	unknown := &models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: 99, IsAvailable: &closed}
	rated := &models.GroundUpdateEvent{Type: models.EventGroundRating, GroundID: 3, Rating: &rating, TotalReviews: &reviews}

	updater := new(MockGroundUpdater)
	updater.On("ApplyGroundUpdate", mock.Anything, mock.MatchedBy(func(e *models.GroundUpdateEvent) bool {
		return e.GroundID == 3 && e.Type == models.EventGroundAvailability
	})).Return(nil).Once()
	updater.On("ApplyGroundUpdate", mock.Anything, mock.MatchedBy(func(e *models.GroundUpdateEvent) bool {
		return e.GroundID == 99
	})).Return(fmt.Errorf("ground 99: %w", services.ErrNotFound)).Once()

	msgChan := make(chan *sarama.ConsumerMessage, 4)
	first := message(t, 0, availability)
	garbage := message(t, 1, "{not json")
	rejected := message(t, 2, unknown)
	second := message(t, 3, rated)
	msgChan <- first
	msgChan <- garbage
	msgChan <- rejected
	msgChan <- second
	close(msgChan)

	updater.On("ApplyGroundUpdate", mock.Anything, mock.MatchedBy(func(e *models.GroundUpdateEvent) bool {
		return e.Type == models.EventGroundRating
	})).Return(nil).Once()

	session := &MockConsumerGroupSession{}
	session.On("Context").Return(context.Background())
	session.On("MarkMessage", first, "").Return().Once()
	session.On("MarkMessage", garbage, "").Return().Once()
	session.On("MarkMessage", rejected, "").Return().Once()
	session.On("MarkMessage", second, "").Return().Once()

	claim := &MockConsumerGroupClaim{}
	claim.On("Messages").Return(msgChan)

	handler := &kafka.GroundUpdateHandler{Updater: updater, Log: quietLogger()}
	require.NoError(t, handler.ConsumeClaim(session, claim))

	updater.AssertExpectations(t)
	session.AssertExpectations(t)
	claim.AssertExpectations(t)
}

func TestGroundUpdateHandler_StorageFailureStopsClaim(t *testing.T) {
	open := true
	failing := message(t, 7, &models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: 3, IsAvailable: &open})
	after := message(t, 8, &models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: 4, IsAvailable: &open})

	updater := new(MockGroundUpdater)
	updater.On("ApplyGroundUpdate", mock.Anything, mock.MatchedBy(func(e *models.GroundUpdateEvent) bool {
		return e.GroundID == 3
	})).Return(errors.New("connection refused")).Once()

	msgChan := make(chan *sarama.ConsumerMessage, 2)
	msgChan <- failing
	msgChan <- after
	close(msgChan)

	session := &MockConsumerGroupSession{}
	session.On("Context").Return(context.Background())

	claim := &MockConsumerGroupClaim{}
	claim.On("Messages").Return(msgChan)

	handler := &kafka.GroundUpdateHandler{Updater: updater, Log: quietLogger()}
	require.NoError(t, handler.ConsumeClaim(session, claim))

	updater.AssertExpectations(t)
	updater.AssertNumberOfCalls(t, "ApplyGroundUpdate", 1)
	session.AssertNotCalled(t, "MarkMessage", mock.Anything, mock.Anything)
	assert.Len(t, msgChan, 1, "messages after the failure stay queued for the next session")
}

type recordingUpdater struct {
	events chan *models.GroundUpdateEvent
}

func (r *recordingUpdater) ApplyGroundUpdate(ctx context.Context, event *models.GroundUpdateEvent) error {
	select {
	case r.events <- event:
	case <-ctx.Done():
	}
	return nil
}

// TestConsumerIntegration requires a running Kafka broker.
func TestConsumerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	broker := os.Getenv("KAFKA_BROKERS")
	if broker == "" {
		broker = "localhost:29092"
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer([]string{broker}, config)
	if err != nil {
		t.Skip("Skipping test because Kafka is not available:", err)
		return
	}
	defer producer.Close()

	topic := "ground-updates-test"
	groupID := "test-consumer-group-" + time.Now().Format("20060102150405")
	consumer, err := kafka.NewConsumer([]string{broker}, groupID, topic, quietLogger())
	require.NoError(t, err)
	defer consumer.Close()

	updater := &recordingUpdater{events: make(chan *models.GroundUpdateEvent, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := consumer.ConsumeGroundUpdates(ctx, updater); err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Consumer error: %v", err)
		}
	}()

	groundID := time.Now().UnixNano() % 100000
	open := true
	body, err := json.Marshal(&models.GroundUpdateEvent{Type: models.EventGroundAvailability, GroundID: groundID, IsAvailable: &open})
	require.NoError(t, err)

	// The group starts at the newest offset, so keep publishing until the first event lands.
	deadline := time.After(30 * time.Second)
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		_, _, err = producer.SendMessage(&sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(body)})
		require.NoError(t, err)

		select {
		case got := <-updater.events:
			if got.GroundID != groundID {
				continue
			}
			assert.Equal(t, models.EventGroundAvailability, got.Type)
			require.NotNil(t, got.IsAvailable)
			assert.True(t, *got.IsAvailable)
			return
		case <-tick.C:
		case <-deadline:
			t.Fatalf("Timeout waiting for ground %d update to be consumed", groundID)
		}
	}
}
