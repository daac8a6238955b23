package broker

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

var ErrProducerClosed = errors.New("producer is not connected")

// Producer publishes raw event payloads on a subject.
type Producer interface {
	Publish(subject string, data []byte) error
	Close()
}

type NatsProducer struct {
	conn *nats.Conn
}

// NewNatsProducer connects to the NATS server at url. The connection keeps
// reconnecting in the background if the server goes away.
func NewNatsProducer(url string) (*NatsProducer, error) {
	conn, err := nats.Connect(url,
		nats.Name("goaltracker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Println("NATS producer initialized")
	return &NatsProducer{conn: conn}, nil
}

func (p *NatsProducer) Publish(subject string, data []byte) error {
	if p == nil || p.conn == nil || p.conn.IsClosed() {
		return ErrProducerClosed
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (p *NatsProducer) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
