package services

import (
	"context"

	"omnioracle/internal/models"
	"omnioracle/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Publisher pushes committed state changes to subscribed clients. The
// websocket hub implements it; tests use NopPublisher. Publishing happens
// after commit, so the initiating caller always sees its own write in the
// HTTP response regardless of push delivery.
type Publisher interface {
	PublishMarket(market *models.Market)
	PublishNotification(n *models.Notification)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) PublishMarket(*models.Market)             {}
func (NopPublisher) PublishNotification(*models.Notification) {}

// notifyUser stores a notification record and pushes it to subscribers.
// Notification delivery is best effort and never fails the operation that
// produced it.
func notifyUser(ctx context.Context, repo *repository.Repository, publisher Publisher, userID, title, message string, kind models.NotificationType) {
	n := &models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	}
	if err := repo.CreateNotification(ctx, n); err != nil {
		logrus.WithError(err).Warn("failed to store notification")
		return
	}
	publisher.PublishNotification(n)
}
