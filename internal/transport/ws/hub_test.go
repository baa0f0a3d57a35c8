package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

// feedGate is a fixed-answer FeedAuthorizer for hub tests.
type feedGate bool

func (g feedGate) CanReadFeed(context.Context, uuid.UUID, domain.Destination) (bool, error) {
	return bool(g), nil
}

func TestFeedKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	cases := []struct {
		dest domain.Destination
		want string
	}{
		{domain.ChannelDestination(id), "channel:" + id.String()},
		{domain.ConversationDestination(id), "conversation:" + id.String()},
		{domain.ThreadDestination(id), "thread:" + id.String()},
		{domain.Destination{}, ""},
	}
	for _, tc := range cases {
		if got := FeedKey(tc.dest); got != tc.want {
			t.Errorf("FeedKey(%+v) = %q, want %q", tc.dest, got, tc.want)
		}
	}

	// A thread destination wins over a stray channel id, matching how
	// replies carry both.
	thread := domain.Destination{ChannelID: &id, ParentMessageID: &id}
	if got := FeedKey(thread); got != "thread:"+id.String() {
		t.Errorf("FeedKey(thread with channel) = %q", got)
	}
}

func recvEvent(t *testing.T, ch chan []byte) *Event {
	t.Helper()
	select {
	case data := <-ch:
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return &evt
	case <-time.After(time.Second):
		t.Fatal("no event within 1s")
		return nil
	}
}

func TestHubBroadcastsToSubscribersOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	subscriber := NewClient(hub, nil, uuid.New(), feedGate(true))
	bystander := NewClient(hub, nil, uuid.New(), feedGate(true))
	hub.register <- subscriber
	hub.register <- bystander

	feed := "channel:" + uuid.NewString()
	subscriber.Subscribe(feed)

	// Drain the presence broadcast the second registration produced.
	if got := recvEvent(t, subscriber.send); got.Type != EventTypePresence {
		t.Fatalf("expected presence first, got %s", got.Type)
	}

	evt, err := NewEvent(EventTypeMessageNew, feed, MessageDeletedPayload{ID: uuid.New()})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	hub.BroadcastToFeed(feed, evt, nil)

	got := recvEvent(t, subscriber.send)
	if got.Type != EventTypeMessageNew || got.Feed != feed {
		t.Errorf("event = %+v", got)
	}

	// The bystander subscribed to nothing and gets nothing.
	select {
	case data := <-bystander.send:
		var evt Event
		_ = json.Unmarshal(data, &evt)
		t.Errorf("bystander received %s", evt.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubStopsDeliveringAfterUnsubscribe(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, uuid.New(), feedGate(true))
	hub.register <- client

	feed := "conversation:" + uuid.NewString()
	client.Subscribe(feed)
	client.Unsubscribe(feed)

	evt, _ := NewEvent(EventTypeMessageNew, feed, MessageDeletedPayload{ID: uuid.New()})
	hub.BroadcastToFeed(feed, evt, nil)

	// Drain whatever arrives briefly; nothing should be feed traffic.
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case data := <-client.send:
			var got Event
			_ = json.Unmarshal(data, &got)
			if got.Feed == feed {
				t.Fatalf("unsubscribed client received %s", got.Type)
			}
		case <-deadline:
			return
		}
	}
}

func TestHubTypingExcludesSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := NewClient(hub, nil, uuid.New(), feedGate(true))
	listener := NewClient(hub, nil, uuid.New(), feedGate(true))
	hub.register <- sender
	hub.register <- listener

	feed := "channel:" + uuid.NewString()
	sender.Subscribe(feed)
	listener.Subscribe(feed)

	// Drain the presence broadcast the second registration produced.
	select {
	case <-sender.send:
	case <-time.After(time.Second):
		t.Fatal("no presence broadcast")
	}

	hub.HandleTyping(sender, &Event{Type: EventTypeTypingStart, Feed: feed})

	got := recvEvent(t, listener.send)
	if got.Type != EventTypeTyping || got.Feed != feed {
		t.Errorf("listener event = %+v", got)
	}
	var payload TypingPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.UserID != sender.userID {
		t.Errorf("typing user = %v, want sender", payload.UserID)
	}

	select {
	case data := <-sender.send:
		var evt Event
		_ = json.Unmarshal(data, &evt)
		if evt.Type == EventTypeTyping {
			t.Error("sender received their own typing event")
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeRequiresFeedAccess(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	channelID := uuid.New()
	member := NewClient(hub, nil, uuid.New(), feedGate(true))
	outsider := NewClient(hub, nil, uuid.New(), feedGate(false))
	hub.register <- member
	hub.register <- outsider

	// Drain the presence broadcast the second registration produced.
	if got := recvEvent(t, member.send); got.Type != EventTypePresence {
		t.Fatalf("expected presence first, got %s", got.Type)
	}

	payload, err := json.Marshal(FeedPayload{ChannelID: &channelID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	sub := &Event{Type: EventTypeFeedSubscribe, Payload: payload}
	member.handleEvent(sub)
	outsider.handleEvent(sub)

	feed := "channel:" + channelID.String()
	if !member.IsSubscribed(feed) {
		t.Fatal("member subscription rejected")
	}
	if outsider.IsSubscribed(feed) {
		t.Fatal("outsider subscription accepted")
	}

	got := recvEvent(t, outsider.send)
	if got.Type != EventTypeError {
		t.Fatalf("outsider event = %s, want error", got.Type)
	}
	var errPayload ErrorPayload
	if err := json.Unmarshal(got.Payload, &errPayload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if errPayload.Code != "FORBIDDEN" {
		t.Errorf("error code = %s, want FORBIDDEN", errPayload.Code)
	}

	// A publish on the feed reaches the member and never the outsider.
	notifier := NewHubNotifier(hub)
	msg := &domain.EnrichedMessage{Message: domain.Message{ID: uuid.New(), ChannelID: &channelID}}
	notifier.MessageCreated(domain.ChannelDestination(channelID), msg)

	if got := recvEvent(t, member.send); got.Type != EventTypeMessageNew {
		t.Errorf("member event = %s, want %s", got.Type, EventTypeMessageNew)
	}
	select {
	case data := <-outsider.send:
		var evt Event
		_ = json.Unmarshal(data, &evt)
		if evt.Feed == feed {
			t.Errorf("outsider received %s for a feed it may not read", evt.Type)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
