package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gp-maquinas/maintenance-service/internal/config"
	"github.com/gp-maquinas/maintenance-service/internal/events"
)

// NotificationService emits notifications for domain events: failed logins
// for operators, service record changes for store managers.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLoginFailed, n.handleLoginFailed)
	n.dispatcher.Subscribe(events.EventServiceCreated, n.handleServiceChanged)
	n.dispatcher.Subscribe(events.EventServiceUpdated, n.handleServiceChanged)
	n.dispatcher.Subscribe(events.EventServiceDeleted, n.handleServiceChanged)
}

func (n *NotificationService) handleLoginFailed(ctx context.Context, event events.Event) error {
	n.logger.Info("LoginFailed", zap.String("username", event.Actor.Username))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleServiceChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ServiceChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("store_id", event.StoreID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("store_id", event.StoreID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("store_id", event.StoreID),
		zap.String("event_type", string(event.Type)))
}
