package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/harborchat/harbor/internal/domain"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// FeedAuthorizer reports whether a user may read a destination's feed.
// The message service implements it, so subscriptions resolve membership
// the same way paging does.
type FeedAuthorizer interface {
	CanReadFeed(ctx context.Context, userID uuid.UUID, dest domain.Destination) (bool, error)
}

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	auth   FeedAuthorizer

	// feeds tracks which destination feeds this client listens to.
	feeds map[string]struct{}
	mu    sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, auth FeedAuthorizer) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		auth:   auth,
		feeds:  make(map[string]struct{}),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// IsSubscribed checks if this client is subscribed to a feed.
func (c *Client) IsSubscribed(feed string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.feeds[feed]
	return ok
}

// Subscribe adds a feed subscription.
func (c *Client) Subscribe(feed string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feeds[feed] = struct{}{}
}

// Unsubscribe removes a feed subscription.
func (c *Client) Unsubscribe(feed string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.feeds, feed)
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeFeedSubscribe, EventTypeFeedUnsubscribe:
		var p FeedPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid feed payload")
			return
		}
		dest := p.destination()
		if err := dest.Validate(); err != nil {
			c.sendError("INVALID_PAYLOAD", "exactly one feed target must be set")
			return
		}
		feed := FeedKey(dest)
		if event.Type == EventTypeFeedSubscribe {
			ok, err := c.auth.CanReadFeed(context.Background(), c.userID, dest)
			if err != nil {
				c.sendError("INTERNAL", "could not verify feed access")
				return
			}
			if !ok {
				c.sendError("FORBIDDEN", "you do not have access to this feed")
				return
			}
			c.Subscribe(feed)
			log.Printf("ws: %s subscribed to %s", c.userID, feed)
		} else {
			c.Unsubscribe(feed)
			log.Printf("ws: %s unsubscribed from %s", c.userID, feed)
		}

	case EventTypeTypingStart, EventTypeTypingStop:
		if event.Feed == "" {
			c.sendError("INVALID_PAYLOAD", "feed required for typing events")
			return
		}
		c.hub.HandleTyping(c, event)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, "", ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
