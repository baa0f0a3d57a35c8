package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

func TestToggleReactionParity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)
	msg := e.post(t, owner, CreateMessageInput{ChannelID: &ch.ID})

	// An odd number of toggles leaves the reaction present, an even
	// number removes it.
	for round := 0; round < 2; round++ {
		if _, err := e.reactions.Toggle(ctx, owner, msg.ID, "👍"); err != nil {
			t.Fatalf("toggle on: %v", err)
		}
		groups, err := e.reactions.Aggregate(ctx, owner, msg.ID)
		if err != nil {
			t.Fatalf("aggregate: %v", err)
		}
		if len(groups) != 1 || groups[0].Value != "👍" || groups[0].Count != 1 {
			t.Fatalf("after toggle on: groups = %+v", groups)
		}

		if _, err := e.reactions.Toggle(ctx, owner, msg.ID, "👍"); err != nil {
			t.Fatalf("toggle off: %v", err)
		}
		groups, err = e.reactions.Aggregate(ctx, owner, msg.ID)
		if err != nil {
			t.Fatalf("aggregate: %v", err)
		}
		if len(groups) != 0 {
			t.Fatalf("after toggle off: groups = %+v", groups)
		}
	}
}

func TestToggleDistinctValuesCoexist(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)
	msg := e.post(t, owner, CreateMessageInput{ChannelID: &ch.ID})

	for _, v := range []string{"👍", "🎉"} {
		if _, err := e.reactions.Toggle(ctx, owner, msg.ID, v); err != nil {
			t.Fatalf("toggle %s: %v", v, err)
		}
	}

	groups, err := e.reactions.Aggregate(ctx, owner, msg.ID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %+v, want two values", groups)
	}
}

func TestToggleRequiresMembership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)
	msg := e.post(t, owner, CreateMessageInput{ChannelID: &ch.ID})

	eve := e.newUser(t, "eve")
	if _, err := e.reactions.Toggle(ctx, eve, msg.ID, "👍"); !errors.Is(err, ErrNotMember) {
		t.Errorf("outsider toggle: err = %v, want ErrNotMember", err)
	}
	if _, err := e.reactions.Toggle(ctx, owner, uuid.New(), "👍"); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("missing message: err = %v, want ErrMessageNotFound", err)
	}
}

func TestAggregateDegradesForNonMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)
	msg := e.post(t, owner, CreateMessageInput{ChannelID: &ch.ID})
	if _, err := e.reactions.Toggle(ctx, owner, msg.ID, "👍"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	eve := e.newUser(t, "eve")
	groups, err := e.reactions.Aggregate(ctx, eve, msg.ID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if groups == nil || len(groups) != 0 {
		t.Errorf("non-member aggregate = %v, want empty slice", groups)
	}
}

func TestAggregateReactionsGroupsInFirstSeenOrder(t *testing.T) {
	m1, m2, m3 := uuid.New(), uuid.New(), uuid.New()
	base := time.Now()
	raw := []domain.Reaction{
		{ID: uuid.New(), MemberID: m1, Value: "🎉", CreatedAt: base},
		{ID: uuid.New(), MemberID: m2, Value: "👍", CreatedAt: base.Add(time.Second)},
		{ID: uuid.New(), MemberID: m3, Value: "🎉", CreatedAt: base.Add(2 * time.Second)},
	}

	groups := AggregateReactions(raw)
	if len(groups) != 2 {
		t.Fatalf("groups = %+v, want 2", groups)
	}
	if groups[0].Value != "🎉" || groups[1].Value != "👍" {
		t.Errorf("group order = [%s %s], want first-seen [🎉 👍]", groups[0].Value, groups[1].Value)
	}
	if groups[0].Count != 2 || len(groups[0].MemberIDs) != 2 {
		t.Errorf("🎉 group = %+v, want two members", groups[0])
	}
	if groups[0].MemberIDs[0] != m1 || groups[0].MemberIDs[1] != m3 {
		t.Errorf("🎉 members = %v, want creation order [%v %v]", groups[0].MemberIDs, m1, m3)
	}
	if groups[1].Count != 1 || groups[1].MemberIDs[0] != m2 {
		t.Errorf("👍 group = %+v", groups[1])
	}
}

func TestAggregateReactionsEmptyIsNotNil(t *testing.T) {
	groups := AggregateReactions(nil)
	if groups == nil {
		t.Fatal("AggregateReactions(nil) = nil, want empty slice")
	}
	if len(groups) != 0 {
		t.Fatalf("groups = %+v", groups)
	}
}
