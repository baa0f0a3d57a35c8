package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateWorkspaceSeedsAdminAndDefaultChannel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")

	ws := e.newWorkspace(t, owner, "Acme")
	if ws.OwnerUserID != owner {
		t.Errorf("owner = %v, want %v", ws.OwnerUserID, owner)
	}
	if len(ws.JoinCode) != 6 {
		t.Errorf("join code %q, want 6 characters", ws.JoinCode)
	}
	for _, r := range ws.JoinCode {
		if !strings.ContainsRune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", r) {
			t.Errorf("join code %q contains unexpected character %q", ws.JoinCode, r)
		}
	}

	member, err := e.workspaces.Current(ctx, owner, ws.ID)
	if err != nil {
		t.Fatalf("current member: %v", err)
	}
	if member == nil {
		t.Fatal("creator is not a member of their workspace")
	}
	if member.Role != "admin" {
		t.Errorf("creator role = %q, want admin", member.Role)
	}

	ch := e.defaultChannel(t, owner, ws)
	if ch.Name != "geral" {
		t.Errorf("seeded channel = %q, want geral", ch.Name)
	}
}

func TestJoinCodeIsCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	bob := e.newUser(t, "bob")
	member, err := e.workspaces.Join(ctx, bob, ws.ID, strings.ToLower(ws.JoinCode))
	if err != nil {
		t.Fatalf("join with lowercased code: %v", err)
	}
	if member.Role != "member" {
		t.Errorf("joiner role = %q, want member", member.Role)
	}
}

func TestJoinRejectsWrongCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	bob := e.newUser(t, "bob")
	if _, err := e.workspaces.Join(ctx, bob, ws.ID, "XXXXXX"); !errors.Is(err, ErrInvalidJoinCode) {
		t.Errorf("err = %v, want ErrInvalidJoinCode", err)
	}
}

func TestJoinTwiceConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	bob := e.newUser(t, "bob")
	e.join(t, bob, ws)
	if _, err := e.workspaces.Join(ctx, bob, ws.ID, ws.JoinCode); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestRotateJoinCodeInvalidatesOldCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	oldCode := ws.JoinCode

	newCode, err := e.workspaces.RotateJoinCode(ctx, owner, ws.ID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newCode == oldCode {
		t.Error("rotation returned the same code")
	}

	bob := e.newUser(t, "bob")
	if _, err := e.workspaces.Join(ctx, bob, ws.ID, oldCode); !errors.Is(err, ErrInvalidJoinCode) {
		t.Errorf("old code: err = %v, want ErrInvalidJoinCode", err)
	}
	if _, err := e.workspaces.Join(ctx, bob, ws.ID, newCode); err != nil {
		t.Errorf("new code: %v", err)
	}
}

func TestRotateJoinCodeRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	bob := e.newUser(t, "bob")
	e.join(t, bob, ws)
	if _, err := e.workspaces.RotateJoinCode(ctx, bob, ws.ID); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("member rotation: err = %v, want ErrNotAdmin", err)
	}

	eve := e.newUser(t, "eve")
	if _, err := e.workspaces.RotateJoinCode(ctx, eve, ws.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("outsider rotation: err = %v, want ErrNotMember", err)
	}
}

func TestLeaveWorkspace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	bob := e.newUser(t, "bob")
	e.join(t, bob, ws)
	if err := e.workspaces.Leave(ctx, bob, ws.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if member, _ := e.workspaces.Current(ctx, bob, ws.ID); member != nil {
		t.Error("membership survived leave")
	}

	// Leaving made room to rejoin.
	e.join(t, bob, ws)

	if err := e.workspaces.Leave(ctx, owner, ws.ID); !errors.Is(err, ErrAdminCannotLeave) {
		t.Errorf("admin leave: err = %v, want ErrAdminCannotLeave", err)
	}

	eve := e.newUser(t, "eve")
	if err := e.workspaces.Leave(ctx, eve, ws.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("outsider leave: err = %v, want ErrNotMember", err)
	}
}

func TestWorkspaceReadsDegradeForNonMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	eve := e.newUser(t, "eve")
	got, err := e.workspaces.GetByID(ctx, eve, ws.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("non-member read returned the workspace")
	}

	// The public preview still works and reports non-membership.
	info, err := e.workspaces.GetInfo(ctx, eve, ws.ID)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info == nil || info.Name != "Acme" || info.IsMember {
		t.Errorf("info = %+v, want name Acme and is_member false", info)
	}
}

func TestDeleteWorkspaceCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")
	ch := e.defaultChannel(t, owner, ws)
	msg := e.post(t, owner, CreateMessageInput{ChannelID: &ch.ID})
	if _, err := e.reactions.Toggle(ctx, owner, msg.ID, "👍"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := e.workspaces.Delete(ctx, owner, ws.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got, _ := e.workspaces.List(ctx, owner); len(got) != 0 {
		t.Errorf("workspaces remain after delete: %d", len(got))
	}
	if got, err := e.store.Channels().GetByID(ctx, ch.ID); err != nil || got != nil {
		t.Errorf("channel survived cascade: %v, %v", got, err)
	}
	if got, err := e.store.Messages().GetByID(ctx, msg.ID); err != nil || got != nil {
		t.Errorf("message survived cascade: %v, %v", got, err)
	}
	if got, err := e.store.Reactions().ListByMessage(ctx, msg.ID); err != nil || len(got) != 0 {
		t.Errorf("reactions survived cascade: %v, %v", got, err)
	}
	if member, _ := e.workspaces.Current(ctx, owner, ws.ID); member != nil {
		t.Error("membership survived cascade")
	}
}

func TestUpdateWorkspaceRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.newUser(t, "alice")
	ws := e.newWorkspace(t, owner, "Acme")

	bob := e.newUser(t, "bob")
	e.join(t, bob, ws)
	if _, err := e.workspaces.Update(ctx, bob, ws.ID, "Evil Corp"); !errors.Is(err, ErrNotAdmin) {
		t.Errorf("err = %v, want ErrNotAdmin", err)
	}

	updated, err := e.workspaces.Update(ctx, owner, ws.ID, "Acme Inc")
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Name != "Acme Inc" {
		t.Errorf("name = %q, want Acme Inc", updated.Name)
	}
}

func TestJoinCodeVisibleToAdminsOnly(t *testing.T) {
	e := newEnv(t)
	adminID := e.newUser(t, "alice")
	memberID := e.newUser(t, "bob")
	ws := e.newWorkspace(t, adminID, "Acme")
	e.join(t, memberID, ws)

	if ws.JoinCode == "" {
		t.Fatal("create returned no join code")
	}

	got, err := e.workspaces.GetByID(context.Background(), adminID, ws.ID)
	if err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if got.JoinCode != ws.JoinCode {
		t.Errorf("admin sees join code %q, want %q", got.JoinCode, ws.JoinCode)
	}

	got, err = e.workspaces.GetByID(context.Background(), memberID, ws.ID)
	if err != nil {
		t.Fatalf("member get: %v", err)
	}
	if got == nil {
		t.Fatal("member read degraded to nil")
	}
	if got.JoinCode != "" {
		t.Errorf("member sees join code %q", got.JoinCode)
	}
}
