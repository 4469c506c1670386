package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
)

// publisher is the part of *amqp.Channel the email sender uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EmailSender enqueues outgoing mail on a RabbitMQ queue consumed by the mail
// relay.
type EmailSender struct {
	conn      *amqp.Connection
	ch        publisher
	queueName string
	from      string
	cb        *gobreaker.CircuitBreaker
}

type emailEnvelope struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// NewEmailSender dials RabbitMQ and declares the durable queue.
func NewEmailSender(amqpURL, queueName, from string, cb *gobreaker.CircuitBreaker) (*EmailSender, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &EmailSender{conn: conn, ch: ch, queueName: queueName, from: from, cb: cb}, nil
}

func newEmailSenderWithPublisher(ch publisher, queueName, from string, cb *gobreaker.CircuitBreaker) *EmailSender {
	return &EmailSender{ch: ch, queueName: queueName, from: from, cb: cb}
}

// Send publishes the message as a persistent JSON envelope.
func (s *EmailSender) Send(ctx context.Context, recipient string, msg Message) error {
	body, err := json.Marshal(emailEnvelope{
		From:    s.from,
		To:      recipient,
		Subject: msg.Subject,
		Body:    msg.Body,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.ch.PublishWithContext(
			ctx,
			"",          // default exchange
			s.queueName, // routing key == queue name
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
	})
	return err
}

// Close releases the channel and connection.
func (s *EmailSender) Close() error {
	if ch, ok := s.ch.(*amqp.Channel); ok && ch != nil {
		if err := ch.Close(); err != nil {
			return err
		}
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
