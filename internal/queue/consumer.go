package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-kot/internal/model"
	"github.com/iliyamo/restaurant-kot/internal/printer"
	"github.com/iliyamo/restaurant-kot/internal/repository"
)

// errDiscard marks failures that redelivery can never fix: malformed
// payloads and events pointing at tickets with no printable rows.  Such
// messages are rejected without requeue so they cannot wedge the queue.
// Every other failure is treated as transient and requeued.
var errDiscard = errors.New("unprocessable message")

// ItemFetcher loads the line items of a ticket for printing.  The consumer
// re-reads the rows instead of trusting the event body so that items
// cancelled between save and print are dropped from the receipt.
type ItemFetcher func(ctx context.Context, ticketNo int64) ([]model.TicketItem, error)

// StartTicketConsumer connects to RabbitMQ, declares the ticket.created
// queue (durable) and consumes events: for each one it fetches the
// ticket's items, renders the receipt and forwards it to the sink.  The
// function runs a reconnect loop with exponential backoff and never
// returns under normal operation.  Malformed messages are rejected without
// requeue; transient store or sink failures are nacked back onto the
// queue so the receipt prints once the outage clears.
func StartTicketConsumer(sink printer.ReceiptSink, fetch ItemFetcher) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, sink, fetch); err != nil {
			log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, sink printer.ReceiptSink, fetch ItemFetcher) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(ticketQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ticketQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, sink, fetch); err != nil {
			requeue := !errors.Is(err, errDiscard)
			log.Printf("ticket-consumer: handle message failed (requeue=%t): %v", requeue, err)
			_ = d.Nack(false, requeue)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

// handleMessage decodes one event, loads the ticket and prints it.
// Unrecoverable failures are wrapped in errDiscard so the consume loop
// can tell them apart from transient ones.
func handleMessage(body []byte, sink printer.ReceiptSink, fetch ItemFetcher) error {
	var ev TicketCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %v: %w", err, errDiscard)
	}
	if ev.TicketNo <= 0 {
		return fmt.Errorf("event missing ticket number: %w", errDiscard)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := fetch(ctx, ev.TicketNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("ticket %d has no rows: %w", ev.TicketNo, errDiscard)
		}
		return fmt.Errorf("fetch ticket %d: %w", ev.TicketNo, err)
	}

	doc := printer.Render(ev.TicketNo, items, time.Now())
	if err := sink.Print(ctx, ev.TicketNo, doc); err != nil {
		return fmt.Errorf("print ticket %d: %w", ev.TicketNo, err)
	}
	return nil
}
