package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/northbeam/accounts-service/internal/application/auth"
)

const (
	DefaultExchange = "accounts.mail"

	// Minimum window to wait for Return / Confirm.
	publishWait = 150 * time.Millisecond
)

// Notifier publishes mail jobs to a topic exchange for a downstream
// mailer worker. One message per auth.Mail, routed by kind
// (mail.verification, mail.welcome, mail.password_reset,
// mail.reset_success).
type Notifier struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewNotifier(url string) (*Notifier, error) {
	n := &Notifier{
		url:      url,
		exchange: DefaultExchange,
	}
	if err := n.connect(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ch != nil {
		_ = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		_ = n.conn.Close()
		n.conn = nil
	}
	return nil
}

// ---- auth.Notifier ----

type mailMessage struct {
	Kind string `json:"kind"`
	To   string `json:"to"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Link string `json:"link,omitempty"`
}

func (n *Notifier) Send(ctx context.Context, m auth.Mail) error {
	msg := mailMessage{
		Kind: string(m.Kind),
		To:   m.To,
		Name: m.Name,
		Code: m.Code,
		Link: m.Link,
	}
	return n.publishJSON(ctx, "mail."+msg.Kind, msg)
}

// ---- internal ----

func (n *Notifier) connect() error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		n.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	// Enable confirm mode.
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	n.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	n.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	n.conn = conn
	n.ch = ch
	return nil
}

func (n *Notifier) ensureConnected() error {
	if n.conn != nil && !n.conn.IsClosed() && n.ch != nil {
		return nil
	}
	return n.connect()
}

func (n *Notifier) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.ensureConnected(); err != nil {
		return err
	}

	// Drain any stale confirm / return messages to avoid mixing results.
drain:
	for {
		select {
		case <-n.confirmCh:
		case <-n.returnCh:
		default:
			break drain
		}
	}

	// mandatory = true
	if err := n.ch.PublishWithContext(
		ctx,
		n.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		// Publish call itself failed (channel/connection level error).
		n.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	// Wait for Return / Confirm / Timeout.
	select {
	case ret := <-n.returnCh:
		// No queue is bound for this routing key.
		return fmt.Errorf(
			"rabbitmq unroutable: key=%s code=%d text=%s",
			routingKey, ret.ReplyCode, ret.ReplyText,
		)

	case conf := <-n.confirmCh:
		// Mandatory delivery: a Return for an unroutable message arrives
		// before the Ack, so check returnCh non-blockingly.
		select {
		case ret := <-n.returnCh:
			return fmt.Errorf(
				"rabbitmq unroutable: key=%s code=%d text=%s",
				routingKey, ret.ReplyCode, ret.ReplyText,
			)
		default:
		}

		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-time.After(publishWait):
		return fmt.Errorf("rabbitmq publish timeout: key=%s", routingKey)

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) resetConn() {
	if n.ch != nil {
		_ = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		_ = n.conn.Close()
		n.conn = nil
	}
}
