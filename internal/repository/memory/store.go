// Package memory implements the repository interfaces on plain maps guarded
// by one mutex. Every repository call is a critical section, which gives the
// same atomic read-then-write guarantees the postgres transactions provide.
// The service tests run against this substrate.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users         map[uuid.UUID]domain.User
	workspaces    map[uuid.UUID]domain.Workspace
	members       map[uuid.UUID]domain.Member
	channels      map[uuid.UUID]domain.Channel
	conversations map[uuid.UUID]domain.Conversation
	messages      map[uuid.UUID]domain.Message
	reactions     map[uuid.UUID]domain.Reaction
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]domain.User),
		workspaces:    make(map[uuid.UUID]domain.Workspace),
		members:       make(map[uuid.UUID]domain.Member),
		channels:      make(map[uuid.UUID]domain.Channel),
		conversations: make(map[uuid.UUID]domain.Conversation),
		messages:      make(map[uuid.UUID]domain.Message),
		reactions:     make(map[uuid.UUID]domain.Reaction),
	}
}

func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

func (s *Store) Workspaces() repository.WorkspaceRepository { return &workspaceRepo{s} }

func (s *Store) Members() repository.MemberRepository { return &memberRepo{s} }

func (s *Store) Channels() repository.ChannelRepository { return &channelRepo{s} }

func (s *Store) Conversations() repository.ConversationRepository { return &conversationRepo{s} }

func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s} }

func (s *Store) Reactions() repository.ReactionRepository { return &reactionRepo{s} }

// decorate fills the joined author fields the postgres queries resolve with
// a join. Callers hold s.mu.
func (s *Store) decorate(m *domain.Member) {
	if u, ok := s.users[m.UserID]; ok {
		m.Username = u.Username
		m.DisplayName = u.DisplayName
		m.AvatarURL = u.AvatarURL
	}
}

func (s *Store) decorateMessage(m *domain.Message) {
	if mb, ok := s.members[m.AuthorMemberID]; ok {
		if u, ok := s.users[mb.UserID]; ok {
			m.AuthorName = u.DisplayName
			m.AuthorAvatar = u.AvatarURL
		}
	}
}
