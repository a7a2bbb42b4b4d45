package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/cinema-ticket-booking/internal/booking"
)

// Publisher sends booking events to BookingEventsQueue.  The connection
// is opened on first use and re-opened after a failed publish, so a
// broker outage never prevents the server from starting.
type Publisher struct {
    url string
    log *slog.Logger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *slog.Logger) *Publisher {
    return &Publisher{url: url, log: log}
}

// Publish implements booking.EventPublisher.  Messages are persistent and
// carry a fresh uuid as message id.
func (p *Publisher) Publish(ctx context.Context, ev booking.Event) error {
    id := uuid.NewString()
    body, err := json.Marshal(fromDomain(id, ev))
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    id,
        Type:         string(ev.Type),
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", BookingEventsQueue, false, false, pub); err != nil {
        p.reset()
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    p.log.DebugContext(ctx, "booking event published",
        slog.String("event", string(ev.Type)),
        slog.String("message_id", id),
        slog.Uint64("booking_id", ev.BookingID))
    return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn == nil {
        return nil
    }
    err := p.conn.Close()
    p.conn, p.ch = nil, nil
    return err
}

// channel returns an open channel, dialing when needed.  Callers hold mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("open channel: %w", err)
    }
    if err := declare(ch); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

var _ booking.EventPublisher = (*Publisher)(nil)

// declare makes sure the durable events queue exists.
func declare(ch *amqp.Channel) error {
    if _, err := ch.QueueDeclare(BookingEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    return nil
}
