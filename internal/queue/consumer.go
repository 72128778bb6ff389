package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartReservationConsumer connects to RabbitMQ, declares the
// reservation.booked and reservation.cancelled queues (durable), and
// starts consuming messages. Each message is appended to
// logs/booking.log in a single-line, human-friendly format. The
// function runs a reconnect loop and keeps running across broker
// outages, logging processing errors and rejecting the offending
// message so the server continues operating.
func StartReservationConsumer() {
    url := brokerURL()

    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("reservation-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("reservation-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("reservation-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{bookedQueueName, cancelledQueueName} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    booked, err := ch.Consume(bookedQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", bookedQueueName, err)
    }
    cancelled, err := ch.Consume(cancelledQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", cancelledQueueName, err)
    }

    for {
        select {
        case d, ok := <-booked:
            if !ok {
                return errors.New("booked deliveries channel closed")
            }
            dispatch(d, handleBooked)
        case d, ok := <-cancelled:
            if !ok {
                return errors.New("cancelled deliveries channel closed")
            }
            dispatch(d, handleCancelled)
        }
    }
}

func dispatch(d amqp.Delivery, handle func([]byte) error) {
    if err := handle(d.Body); err != nil {
        log.Printf("reservation-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleBooked(body []byte) error {
    var ev ReservationBookedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Reservation booked | reservation_id=%d | confirmation=%s | user_id=%d | table_id=%d | table_seats=%d | seats=%d | cost=%d\n",
        ev.BookedAt, ev.ReservationID, ev.ConfirmationCode, ev.UserID, ev.TableID, ev.TableSeats, ev.NumberOfSeats, ev.Cost)
    return appendLog(line)
}

func handleCancelled(body []byte) error {
    var ev ReservationCancelledEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Reservation cancelled | reservation_id=%d | confirmation=%s | user_id=%d | table_id=%d | seats=%d\n",
        ev.CancelledAt, ev.ReservationID, ev.ConfirmationCode, ev.UserID, ev.TableID, ev.NumberOfSeats)
    return appendLog(line)
}

func appendLog(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "booking.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
