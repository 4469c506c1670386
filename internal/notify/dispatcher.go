package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Recorder counts delivery outcomes.
type Recorder interface {
	RecordNotification(channel string, ok bool)
}

// Dispatcher renders notifications and routes them to the channel's sender.
type Dispatcher struct {
	senders   map[Channel]Sender
	templates *Templates
	logger    *zap.Logger
	recorder  Recorder
}

// NewDispatcher wires senders by channel. recorder may be nil.
func NewDispatcher(senders map[Channel]Sender, templates *Templates, logger *zap.Logger, recorder Recorder) *Dispatcher {
	if templates == nil {
		templates = DefaultTemplates()
	}
	return &Dispatcher{senders: senders, templates: templates, logger: logger, recorder: recorder}
}

// Deliver renders and sends n, returning the first failure.
func (d *Dispatcher) Deliver(ctx context.Context, n Notification) error {
	sender, ok := d.senders[n.Channel]
	if !ok {
		return fmt.Errorf("no sender for channel %q", n.Channel)
	}
	msg, err := d.templates.Render(n.TemplateKey, n.Data)
	if err != nil {
		return err
	}
	return sender.Send(ctx, n.Recipient, msg)
}

// Notify delivers n and logs a failure instead of returning it. Callers never
// see delivery errors.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	if n.Recipient == "" {
		d.logger.Debug("notification skipped: no recipient",
			zap.String("channel", string(n.Channel)),
			zap.String("template", string(n.TemplateKey)))
		return
	}
	err := d.Deliver(ctx, n)
	if d.recorder != nil {
		d.recorder.RecordNotification(string(n.Channel), err == nil)
	}
	if err != nil {
		d.logger.Warn("notification failed",
			zap.String("channel", string(n.Channel)),
			zap.String("recipient", n.Recipient),
			zap.String("template", string(n.TemplateKey)),
			zap.Error(err))
	}
}
