package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// AuditLog appends one line per booking event to a file.
type AuditLog struct {
    path string
    mu   sync.Mutex
}

// NewAuditLog returns an AuditLog writing to path.  Parent directories are
// created on first write.
func NewAuditLog(path string) *AuditLog { return &AuditLog{path: path} }

// Append decodes a message body and writes it to the log.
func (a *AuditLog) Append(body []byte) error {
    a.mu.Lock()
    defer a.mu.Unlock()
    if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    return handleMessage(body, f)
}

// handleMessage renders a single event as a human-friendly line.
func handleMessage(body []byte, w io.Writer) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.BookingID == 0 {
        return errors.New("event without type or booking id")
    }
    seats := make([]string, len(ev.SeatIDs))
    for i, id := range ev.SeatIDs {
        seats[i] = fmt.Sprint(id)
    }
    line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | schedule_id=%d | total=%d | seats=[%s] | message_id=%s\n",
        ev.OccurredAt, ev.Type, ev.BookingID, ev.UserID, ev.ScheduleID, ev.TotalPrice, strings.Join(seats, ","), ev.MessageID)
    if _, err := io.WriteString(w, line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// StartAuditConsumer consumes BookingEventsQueue and appends each event
// to audit.  It reconnects with exponential backoff (capped at 30s) and
// returns only when ctx is cancelled.  Malformed messages are rejected
// without requeue.
func StartAuditConsumer(ctx context.Context, url string, audit *AuditLog, log *slog.Logger) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("audit consumer: dial failed", slog.Any("err", err), slog.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, audit, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("audit consumer: consume loop ended, reconnecting", slog.Any("err", err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, audit *AuditLog, log *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("audit consumer: set QoS failed", slog.Any("err", err))
    }
    if err := declare(ch); err != nil {
        return err
    }
    msgs, err := ch.Consume(BookingEventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := audit.Append(d.Body); err != nil {
                log.Error("audit consumer: handle message failed",
                    slog.String("message_id", d.MessageId), slog.Any("err", err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
