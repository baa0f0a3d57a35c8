package ws

import (
	"log"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

// HubNotifier bridges the service layer to the Hub. It implements
// service.Notifier without the services importing this package.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) MessageCreated(dest domain.Destination, msg *domain.EnrichedMessage) {
	n.publish(EventTypeMessageNew, dest, MessagePayload{EnrichedMessage: *msg})
}

func (n *HubNotifier) MessageUpdated(dest domain.Destination, msg *domain.EnrichedMessage) {
	n.publish(EventTypeMessageUpdated, dest, MessagePayload{EnrichedMessage: *msg})
}

func (n *HubNotifier) MessageDeleted(dest domain.Destination, messageID uuid.UUID) {
	n.publish(EventTypeMessageDeleted, dest, MessageDeletedPayload{ID: messageID})
}

func (n *HubNotifier) publish(eventType string, dest domain.Destination, payload any) {
	feed := FeedKey(dest)
	if feed == "" {
		return
	}
	evt, err := NewEvent(eventType, feed, payload)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToFeed(feed, evt, nil)
}
