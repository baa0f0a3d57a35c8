package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

var ErrChannelNotFound = errors.New("channel not found")

type ChannelService struct {
	channelRepo repository.ChannelRepository
	memberRepo  repository.MemberRepository
}

func NewChannelService(channelRepo repository.ChannelRepository, memberRepo repository.MemberRepository) *ChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		memberRepo:  memberRepo,
	}
}

// Create adds a channel to the workspace. Admin only; the name is
// normalized before it is stored.
func (s *ChannelService) Create(ctx context.Context, userID, workspaceID uuid.UUID, name string) (*domain.Channel, error) {
	if err := s.requireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	ch := &domain.Channel{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        NormalizeChannelName(name),
		CreatedAt:   time.Now(),
	}
	if err := s.channelRepo.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("creating channel: %w", err)
	}

	return ch, nil
}

// ListByWorkspace returns the workspace's channels for members and an empty
// list for everyone else.
func (s *ChannelService) ListByWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.Channel, error) {
	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return []domain.Channel{}, nil
	}

	channels, err := s.channelRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	return channels, nil
}

// GetByID returns the channel for workspace members and nil for everyone
// else.
func (s *ChannelService) GetByID(ctx context.Context, userID, channelID uuid.UUID) (*domain.Channel, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, nil
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, ch.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}

	return ch, nil
}

// Update renames the channel. Admin only; normalization applies on every
// write, not just create.
func (s *ChannelService) Update(ctx context.Context, userID, channelID uuid.UUID, name string) (*domain.Channel, error) {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}

	if err := s.requireAdmin(ctx, ch.WorkspaceID, userID); err != nil {
		return nil, err
	}

	normalized := NormalizeChannelName(name)
	if err := s.channelRepo.UpdateName(ctx, channelID, normalized); err != nil {
		return nil, fmt.Errorf("renaming channel: %w", err)
	}
	ch.Name = normalized

	return ch, nil
}

func (s *ChannelService) Delete(ctx context.Context, userID, channelID uuid.UUID) error {
	ch, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return ErrChannelNotFound
	}

	if err := s.requireAdmin(ctx, ch.WorkspaceID, userID); err != nil {
		return err
	}

	return s.channelRepo.Delete(ctx, channelID)
}

func (s *ChannelService) requireAdmin(ctx context.Context, workspaceID, userID uuid.UUID) error {
	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	switch member.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleMember:
		return ErrNotAdmin
	}
	return ErrNotAdmin
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeChannelName lower-cases the name and collapses every whitespace
// run into a single hyphen. "My Channel" becomes "my-channel"; an already
// normalized name passes through unchanged.
func NormalizeChannelName(name string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-"))
}
