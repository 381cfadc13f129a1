// Package rabbitmq holds the broker connection used to fan storage changes
// out to every running instance.
package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"campus-crave/internal/config"
)

const dialTimeout = 10 * time.Second

var (
	ErrClosed = errors.New("rabbitmq: connection closed")
	ErrNacked = errors.New("rabbitmq: publish nacked by broker")
)

// Message is one change notification on the wire.
type Message struct {
	ID      string
	Origin  string
	Body    []byte
	Headers amqp.Table
}

// Client owns one connection and a confirm-mode channel for publishing.
// Consumers open their own channel with NewChannel.
type Client struct {
	conn *amqp.Connection
	pub  *amqp.Channel

	mu      sync.Mutex // one unconfirmed publish at a time
	confirm <-chan amqp.Confirmation
}

func URL(cfg config.RabbitMQConfig) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	if cfg.UseTLS {
		u.Scheme = "amqps"
	}
	if cfg.VHost != "" && cfg.VHost != "/" {
		u.Path = "/" + cfg.VHost
	}
	return u.String()
}

// Dial connects as name, which shows up in the broker's connection list.
func Dial(cfg config.RabbitMQConfig, name string) (*Client, error) {
	amqpCfg := amqp.Config{
		Dial:       amqp.DefaultDial(dialTimeout),
		Properties: amqp.NewConnectionProperties(),
	}
	amqpCfg.Properties.SetClientConnectionName(name)
	if cfg.UseTLS {
		amqpCfg.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	conn, err := amqp.DialConfig(URL(cfg), amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := pub.Confirm(false); err != nil {
		_ = pub.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Client{
		conn:    conn,
		pub:     pub,
		confirm: pub.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (c *Client) NewChannel() (*amqp.Channel, error) {
	if c.conn == nil || c.conn.IsClosed() {
		return nil, ErrClosed
	}
	return c.conn.Channel()
}

func (c *Client) Close() {
	if c.pub != nil {
		_ = c.pub.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareFanout declares a durable fanout exchange.
func (c *Client) DeclareFanout(name string) error {
	return c.pub.ExchangeDeclare(name, amqp.ExchangeFanout, true, false, false, false, nil)
}

// Publish sends m to a fanout exchange and waits for the broker's confirm.
func (c *Client) Publish(ctx context.Context, exchange string, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.pub.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   m.ID,
		AppId:       m.Origin,
		Timestamp:   time.Now().UTC(),
		Headers:     m.Headers,
		Body:        m.Body,
	})
	if err != nil {
		return err
	}

	select {
	case conf, ok := <-c.confirm:
		if !ok {
			return ErrClosed
		}
		if !conf.Ack {
			return ErrNacked
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
