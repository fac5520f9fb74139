package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PlaceBookingCanceller is the slice of the booking service the consumer
// needs; satisfied by *application.BookingService.
type PlaceBookingCanceller interface {
	CancelAllForPlace(ctx context.Context, placeID uuid.UUID, reason string) (int, error)
}

// ListingEventConsumer listens to listing events and cancels the active
// bookings of places that leave the market.
type ListingEventConsumer struct {
	consumer *Consumer
	service  PlaceBookingCanceller
	logger   *zap.Logger
}

// NewListingEventConsumer creates a new ListingEventConsumer.
func NewListingEventConsumer(
	brokers []string,
	groupID string,
	service PlaceBookingCanceller,
	logger *zap.Logger,
) *ListingEventConsumer {
	return &ListingEventConsumer{
		consumer: NewConsumer(brokers, groupID, TopicListingEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming listing events. Blocks until the context is cancelled.
func (c *ListingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *ListingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ListingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from listing topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PlaceDeactivated:
		return c.handlePlaceDeactivated(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled listing event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *ListingEventConsumer) handlePlaceDeactivated(ctx context.Context, cloudEvent CloudEvent) error {
	var evt PlaceDeactivatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PlaceDeactivatedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	reason := evt.Reason
	if reason == "" {
		reason = "place is no longer available"
	}

	cancelled, err := c.service.CancelAllForPlace(ctx, evt.PlaceID, reason)
	if err != nil {
		c.logger.Error("failed to cancel bookings for deactivated place",
			zap.String("place_id", evt.PlaceID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("cancelled bookings for deactivated place",
		zap.String("place_id", evt.PlaceID.String()),
		zap.Int("cancelled", cancelled),
	)
	return nil
}
