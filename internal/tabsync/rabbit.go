package tabsync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"campus-crave/internal/common/logger"
	"campus-crave/internal/connections/rabbitmq"
)

const DefaultExchange = "cc_storage_fanout"

// Rabbit broadcasts changes over a fanout exchange. Each subscriber gets its
// own server-named exclusive queue, so every running tab sees every change.
type Rabbit struct {
	client   *rabbitmq.Client
	exchange string
	tab      string
	lg       *logger.Logger
}

func NewRabbit(client *rabbitmq.Client, exchange, tab string) (*Rabbit, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := client.DeclareFanout(exchange); err != nil {
		return nil, fmt.Errorf("declare %s: %w", exchange, err)
	}
	return &Rabbit{client: client, exchange: exchange, tab: tab, lg: logger.New("tabsync")}, nil
}

func (r *Rabbit) Publish(ctx context.Context, c Change) error {
	body, err := Encode(c)
	if err != nil {
		return err
	}
	msg := rabbitmq.Message{
		ID:      uuid.NewString(),
		Origin:  c.Origin,
		Body:    body,
		Headers: amqp.Table{"x-key": c.Key},
	}
	if err := r.client.Publish(ctx, r.exchange, msg); err != nil {
		return fmt.Errorf("publish %s: %w", c.Key, err)
	}
	return nil
}

func (r *Rabbit) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch, err := r.client.NewChannel()
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", r.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue bind %s: %w", q.Name, err)
	}
	consumerTag := "tab-" + r.tab
	deliveries, err := ch.Consume(q.Name, consumerTag, false, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}

	out := make(chan Change, defaultSubscriberCapacity)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				_ = ch.Cancel(consumerTag, false)
				return
			case d, ok := <-deliveries:
				if !ok {
					r.lg.Warn("sync_consumer_closed", map[string]any{"queue": q.Name})
					return
				}
				c, err := Decode(d.Body)
				if err != nil {
					r.lg.Error("sync_message_invalid", err, map[string]any{"message_id": d.MessageId})
					_ = d.Nack(false, false)
					continue
				}
				select {
				case out <- c:
					_ = d.Ack(false)
				case <-ctx.Done():
					_ = d.Nack(false, true)
					_ = ch.Cancel(consumerTag, false)
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *Rabbit) Close() error {
	r.client.Close()
	return nil
}
