// Package notify delivers templated messages over email and WhatsApp.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Channel names a delivery medium.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers a rendered message to one recipient: an email address or a
// phone number depending on the channel.
type Sender interface {
	Send(ctx context.Context, recipient string, msg Message) error
}

// Notification is a request to render TemplateKey with Data and deliver it.
type Notification struct {
	Channel     Channel
	Recipient   string
	TemplateKey TemplateKey
	Data        map[string]any
}

// LogSender writes messages to the logger instead of delivering them. It backs
// any channel that has no transport configured.
type LogSender struct {
	channel Channel
	logger  *zap.Logger
}

// NewLogSender builds a log-only sender for channel.
func NewLogSender(channel Channel, logger *zap.Logger) *LogSender {
	return &LogSender{channel: channel, logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(_ context.Context, recipient string, msg Message) error {
	s.logger.Info("notification (log only)",
		zap.String("channel", string(s.channel)),
		zap.String("recipient", recipient),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
