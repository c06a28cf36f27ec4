package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/ticketnest/booking-engine/internal/domain"
)

// RedisBroadcaster fans seat events out over Redis streams, one topic
// per showtime. The stream is shared by all server instances, so
// viewers converge on the same truth behind a load balancer.
type RedisBroadcaster struct {
	client    redis.UniversalClient
	publisher message.Publisher
	logger    watermill.LoggerAdapter
}

func NewRedisBroadcaster(client redis.UniversalClient, logger *slog.Logger) (*RedisBroadcaster, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis stream publisher: %w", err)
	}

	return &RedisBroadcaster{
		client:    client,
		publisher: publisher,
		logger:    wmLogger,
	}, nil
}

func showtimeTopic(showtimeID uuid.UUID) string {
	return fmt.Sprintf("seat-events.%s", showtimeID)
}

func (b *RedisBroadcaster) Publish(ctx context.Context, event domain.SeatEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	return b.publisher.Publish(showtimeTopic(event.ShowtimeID), msg)
}

func (b *RedisBroadcaster) Subscribe(
	ctx context.Context,
	showtimeID uuid.UUID) (<-chan domain.SeatEvent, func(), error) {

	// An empty consumer group puts the subscriber in fan-out mode:
	// every viewer of the showtime receives every event.
	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        b.client,
		ConsumerGroup: "",
	}, b.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis stream subscriber: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	messages, err := subscriber.Subscribe(ctx, showtimeTopic(showtimeID))
	if err != nil {
		cancel()
		subscriber.Close()
		return nil, nil, err
	}

	events := make(chan domain.SeatEvent, 16)

	go func() {
		defer close(events)

		for msg := range messages {
			var event domain.SeatEvent

			err := json.Unmarshal(msg.Payload, &event)
			if err != nil {
				b.logger.Error("failed to unmarshal seat event", err, watermill.LogFields{
					"message_id": msg.UUID,
				})
				msg.Ack()
				continue
			}

			select {
			case events <- event:
			default:
				// A stalled viewer re-fetches state on reconnect;
				// dropping beats blocking the stream.
			}

			msg.Ack()
		}
	}()

	unsubscribe := func() {
		cancel()
		subscriber.Close()
	}

	return events, unsubscribe, nil
}

func (b *RedisBroadcaster) Close() error {
	return b.publisher.Close()
}
