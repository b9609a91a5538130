package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"ticket-service/internal/core/domain"
)

// SeatReservationRequested is the command published for the seat booking service.
type SeatReservationRequested struct {
	ReservationID string    `json:"reservation_id"`
	AccountID     int64     `json:"account_id"`
	Seats         int       `json:"seats"`
	RequestedAt   time.Time `json:"requested_at"`
}

// SeatReservationPublisher is an implementation of the SeatReservationGateway port for Kafka.
type SeatReservationPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewSeatReservationPublisher creates a new Kafka producer for reservation commands.
func NewSeatReservationPublisher(bootstrapServers []string, topic string, logger *slog.Logger) (*SeatReservationPublisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(bootstrapServers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(10 * time.Second),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	// Checking the connection
	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}

	return &SeatReservationPublisher{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

// ReserveSeat publishes a reservation command and waits for the broker to acknowledge it.
// Records are keyed by account so one account's reservations stay ordered.
func (p *SeatReservationPublisher) ReserveSeat(ctx context.Context, accountID int64, seats int) error {
	record, err := newReservationRecord(accountID, seats, time.Now().UTC())
	if err != nil {
		return err
	}
	record.Topic = p.topic

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("%w: publish to %s: %w", domain.ErrReservationFailed, p.topic, err)
	}

	p.logger.DebugContext(ctx, "seat reservation published", "topic", p.topic, "account_id", accountID, "seats", seats)
	return nil
}

func newReservationRecord(accountID int64, seats int, now time.Time) (*kgo.Record, error) {
	cmd := SeatReservationRequested{
		ReservationID: uuid.NewString(),
		AccountID:     accountID,
		Seats:         seats,
		RequestedAt:   now,
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation: %w", err)
	}

	return &kgo.Record{
		Key:   []byte(strconv.FormatInt(accountID, 10)),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte("SeatReservationRequested")},
		},
	}, nil
}

// Close gracefully stops the producer.
func (p *SeatReservationPublisher) Close() {
	p.logger.Info("flushing kafka producer...")
	if err := p.client.Flush(context.Background()); err != nil {
		p.logger.Warn("kafka flush failed", "error", err)
	}
	p.client.Close()
	p.logger.Info("kafka client stopped")
}
