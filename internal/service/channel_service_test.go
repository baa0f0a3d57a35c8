package service

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeChannelName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Channel", "my-channel"},
		{"my-channel", "my-channel"},
		{"  General   Stuff ", "general-stuff"},
		{"UPPER", "upper"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tc := range cases {
		if got := NormalizeChannelName(tc.in); got != tc.want {
			t.Errorf("NormalizeChannelName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	// Normalizing twice changes nothing.
	once := NormalizeChannelName("My Channel")
	if twice := NormalizeChannelName(once); twice != once {
		t.Errorf("normalization not idempotent: %q -> %q", once, twice)
	}
}

func TestCreateChannelNormalizesName(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	ch, err := e.channels.Create(ctx, owner, ws.ID, "My Channel")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ch.Name != "my-channel" {
		t.Errorf("name = %q, want my-channel", ch.Name)
	}
}

func TestChannelMutationsRequireAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)

	bob := e.newUser(t, "bob")
	e.join(t, bob, ws)

	if _, err := e.channels.Create(ctx, bob, ws.ID, "plans"); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("create: err = %v, want ErrNotAdmin", err)
	}
	if _, err := e.channels.Update(ctx, bob, ch.ID, "renamed"); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("update: err = %v, want ErrNotAdmin", err)
	}
	if err := e.channels.Delete(ctx, bob, ch.ID); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("delete: err = %v, want ErrNotAdmin", err)
	}
}

func TestChannelReadsDegradeForNonMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)

	eve := e.newUser(t, "eve")
	channels, err := e.channels.ListByWorkspace(ctx, eve, ws.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("non-member sees %d channels", len(channels))
	}

	got, err := e.channels.GetByID(ctx, eve, ch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("non-member read returned the channel")
	}
}

func TestDeleteChannelCascadesMessages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)
	msg := e.post(t, owner, CreateMessageInput{ChannelID: &ch.ID})
	if _, err := e.reactions.Toggle(ctx, owner, msg.ID, "👍"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := e.channels.Delete(ctx, owner, ch.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got, _ := e.store.Messages().GetByID(ctx, msg.ID); got != nil {
		t.Error("message survived channel delete")
	}
	if got, _ := e.store.Reactions().ListByMessage(ctx, msg.ID); len(got) != 0 {
		t.Error("reactions survived channel delete")
	}
}
