package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository/memory"
)

// env wires every service onto one in-memory store, the same shape main
// builds against postgres.
type env struct {
	store         *memory.Store
	workspaces    *WorkspaceService
	channels      *ChannelService
	conversations *ConversationService
	messages      *MessageService
	reactions     *ReactionService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	return &env{
		store:         store,
		workspaces:    NewWorkspaceService(store.Workspaces(), store.Members()),
		channels:      NewChannelService(store.Channels(), store.Members()),
		conversations: NewConversationService(store.Conversations(), store.Members()),
		messages:      NewMessageService(store.Messages(), store.Reactions(), store.Channels(), store.Conversations(), store.Members()),
		reactions:     NewReactionService(store.Reactions(), store.Messages(), store.Members()),
	}
}

func (e *env) newUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user := &domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		CreatedAt:   time.Now(),
	}
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user.ID
}

func (e *env) newWorkspace(t *testing.T, ownerID uuid.UUID, name string) *domain.Workspace {
	t.Helper()
	ws, err := e.workspaces.Create(context.Background(), ownerID, name)
	if err != nil {
		t.Fatalf("creating workspace %s: %v", name, err)
	}
	return ws
}

func (e *env) join(t *testing.T, userID uuid.UUID, ws *domain.Workspace) *domain.Member {
	t.Helper()
	member, err := e.workspaces.Join(context.Background(), userID, ws.ID, ws.JoinCode)
	if err != nil {
		t.Fatalf("joining workspace: %v", err)
	}
	return member
}

func (e *env) defaultChannel(t *testing.T, userID uuid.UUID, ws *domain.Workspace) *domain.Channel {
	t.Helper()
	channels, err := e.channels.ListByWorkspace(context.Background(), userID, ws.ID)
	if err != nil {
		t.Fatalf("listing channels: %v", err)
	}
	if len(channels) == 0 {
		t.Fatal("workspace has no seeded channel")
	}
	return &channels[0]
}

func (e *env) post(t *testing.T, userID uuid.UUID, input CreateMessageInput) *domain.EnrichedMessage {
	t.Helper()
	if input.Body == nil {
		input.Body = body("hello")
	}
	msg, err := e.messages.Create(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("posting message: %v", err)
	}
	return msg
}

func body(text string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"text":%q}`, text))
}
