package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// DefaultPublishBuffer is the number of events held while the broker is slow.
const DefaultPublishBuffer = 256

var (
	// ErrBufferFull is returned when an event is dropped because the
	// outbound buffer is full.
	ErrBufferFull = errors.New("publish buffer full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher closed")
)

// Publisher sends booking events to the booking queue. Publish only
// enqueues; a single background goroutine owns the broker connection,
// dials it lazily and drops it after a failed publish so the next event
// redials. Safe for concurrent use.
type Publisher struct {
	url     string
	timeout time.Duration

	queue chan amqp.Publishing
	ctx   context.Context
	stop  context.CancelFunc
	wg    sync.WaitGroup
	once  sync.Once

	// owned by the run goroutine
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for the broker at url holding up to
// buffer pending events. Each dial and publish is bounded by timeout.
func NewPublisher(url string, timeout time.Duration, buffer int) *Publisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if buffer <= 0 {
		buffer = DefaultPublishBuffer
	}
	ctx, stop := context.WithCancel(context.Background())
	p := &Publisher{
		url:     url,
		timeout: timeout,
		queue:   make(chan amqp.Publishing, buffer),
		ctx:     ctx,
		stop:    stop,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish marshals ev and queues it as a persistent message routed to
// BookingQueue. It never waits on the broker: a full buffer drops the
// event with ErrBufferFull.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	select {
	case <-p.ctx.Done():
		return ErrPublisherClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case p.queue <- pub:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops the background sender and releases the broker connection.
// Events still buffered are dropped.
func (p *Publisher) Close() error {
	p.once.Do(func() {
		p.stop()
		p.wg.Wait()
		if n := len(p.queue); n > 0 {
			log.Warn().Int("dropped", n).Msg("booking-publisher: closing with pending events")
		}
	})
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	defer p.reset()

	for {
		select {
		case <-p.ctx.Done():
			return
		case pub := <-p.queue:
			if err := p.send(pub); err != nil {
				if p.ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Str("event", pub.Type).Msg("booking-publisher: event dropped")
			}
		}
	}
}

func (p *Publisher) send(pub amqp.Publishing) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", BookingQueue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing and declaring the queue if
// needed.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: p.dialer(ctx)})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if err := declareBookingQueue(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// dialer connects under ctx and bounds the AMQP handshake by the same
// deadline. The library clears the deadline once the connection is open.
func (p *Publisher) dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(p.timeout)
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
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

// declareBookingQueue makes sure the durable queue exists (idempotent).
func declareBookingQueue(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		BookingQueue, // name
		true,         // durable
		false,        // autoDelete
		false,        // exclusive
		false,        // noWait
		nil,          // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
