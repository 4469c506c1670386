package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/notify"
)

// Notifier accepts fire-and-forget notifications.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

// NotificationService turns domain events into email and WhatsApp messages.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     nopLogger(logger),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAdoptionSubmitted, n.handleAdoptionSubmitted)
	n.dispatcher.Subscribe(events.EventAdoptionApproved, n.handleAdoptionDecided)
	n.dispatcher.Subscribe(events.EventAdoptionRejected, n.handleAdoptionDecided)
	n.dispatcher.Subscribe(events.EventUserBanned, n.handleUserBanned)
	n.dispatcher.Subscribe(events.EventUserUnbanned, n.handleUserUnbanned)
	n.dispatcher.Subscribe(events.EventVendorApproved, n.handleVendorReviewed)
	n.dispatcher.Subscribe(events.EventVendorRejected, n.handleVendorReviewed)
}

func (n *NotificationService) handleAdoptionSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AdoptionPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("AdoptionSubmitted", zap.String("adoption_id", payload.AdoptionID), zap.String("pet_id", payload.PetID))
	n.send(ctx, notify.ChannelEmail, payload.VendorEmail, notify.TemplateAdoptionSubmitted, map[string]any{
		"VendorName":    payload.VendorName,
		"ApplicantName": payload.ApplicantName,
		"PetName":       payload.PetName,
		"AdoptionID":    payload.AdoptionID,
	})
	return nil
}

func (n *NotificationService) handleAdoptionDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AdoptionPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	key := notify.TemplateAdoptionRejected
	if event.Type == events.EventAdoptionApproved {
		key = notify.TemplateAdoptionApproved
	}
	n.logger.Info("AdoptionDecided",
		zap.String("event_type", string(event.Type)),
		zap.String("adoption_id", payload.AdoptionID))

	data := map[string]any{
		"ApplicantName": payload.ApplicantName,
		"PetName":       payload.PetName,
		"AdoptionID":    payload.AdoptionID,
	}
	n.send(ctx, notify.ChannelEmail, payload.ApplicantEmail, key, data)
	n.send(ctx, notify.ChannelWhatsApp, payload.ApplicantPhone, key, data)
	return nil
}

func (n *NotificationService) handleUserBanned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserBannedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("UserBanned", zap.String("user_id", payload.UserID), zap.Time("scheduled_unban_at", payload.ScheduledUnbanAt))
	data := map[string]any{
		"Name":   payload.Name,
		"Reason": payload.Reason,
		"Until":  payload.ScheduledUnbanAt.UTC().Format("Jan 2, 2006 15:04 MST"),
	}
	n.send(ctx, notify.ChannelEmail, payload.Email, notify.TemplateUserBanned, data)
	n.send(ctx, notify.ChannelWhatsApp, payload.Phone, notify.TemplateUserBanned, data)
	return nil
}

func (n *NotificationService) handleUserUnbanned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserUnbannedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("UserUnbanned", zap.String("user_id", payload.UserID), zap.Bool("scheduled", payload.Scheduled))
	data := map[string]any{"Name": payload.Name}
	n.send(ctx, notify.ChannelEmail, payload.Email, notify.TemplateUserUnbanned, data)
	n.send(ctx, notify.ChannelWhatsApp, payload.Phone, notify.TemplateUserUnbanned, data)
	return nil
}

func (n *NotificationService) handleVendorReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VendorReviewedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	key := notify.TemplateVendorRejected
	if event.Type == events.EventVendorApproved {
		key = notify.TemplateVendorApproved
	}
	n.logger.Info("VendorReviewed",
		zap.String("event_type", string(event.Type)),
		zap.String("application_id", payload.ApplicationID))
	n.send(ctx, notify.ChannelEmail, payload.Email, key, map[string]any{
		"OrganizationName": payload.OrganizationName,
		"Reason":           payload.Reason,
	})
	return nil
}

func (n *NotificationService) send(ctx context.Context, channel notify.Channel, recipient string, key notify.TemplateKey, data map[string]any) {
	if n.notifier == nil {
		return
	}
	n.notifier.Notify(ctx, notify.Notification{
		Channel:     channel,
		Recipient:   recipient,
		TemplateKey: key,
		Data:        data,
	})
}

func unexpectedPayload(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}
