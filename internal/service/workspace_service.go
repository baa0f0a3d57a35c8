package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrNotMember         = errors.New("caller is not a member of this workspace")
	ErrNotAdmin          = errors.New("admin role required")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrInvalidJoinCode   = errors.New("invalid join code")
	ErrAdminCannotLeave  = errors.New("admins cannot leave their workspace")
)

// defaultChannelName is seeded into every new workspace.
const defaultChannelName = "geral"

const joinCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const joinCodeLength = 6

type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	memberRepo    repository.MemberRepository
}

func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, memberRepo repository.MemberRepository) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
	}
}

// Create inserts the workspace together with its admin member and the
// default channel. The creator is the owner and the only admin.
func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Workspace, error) {
	code, err := generateJoinCode()
	if err != nil {
		return nil, fmt.Errorf("generating join code: %w", err)
	}

	now := time.Now()
	ws := &domain.Workspace{
		ID:          uuid.New(),
		Name:        name,
		OwnerUserID: userID,
		JoinCode:    code,
		CreatedAt:   now,
	}
	admin := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        domain.RoleAdmin,
		CreatedAt:   now,
	}
	seed := &domain.Channel{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        defaultChannelName,
		CreatedAt:   now,
	}

	if err := s.workspaceRepo.Create(ctx, ws, admin, seed); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	return ws, nil
}

// List returns the caller's workspaces. An unknown user simply has none.
func (s *WorkspaceService) List(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	return s.workspaceRepo.ListByUser(ctx, userID)
}

// GetByID returns the workspace for members and nil for everyone else.
// Reads degrade to absent instead of failing. The join code comes back
// only for admins.
func (s *WorkspaceService) GetByID(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Workspace, error) {
	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}

	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil || ws == nil {
		return nil, err
	}
	if member.Role != domain.RoleAdmin {
		ws.JoinCode = ""
	}
	return ws, nil
}

// GetInfo is safe to serve to non-members: it exposes only the name and
// whether the caller already belongs.
func (s *WorkspaceService) GetInfo(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.WorkspaceInfo, error) {
	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, nil
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	return &domain.WorkspaceInfo{Name: ws.Name, IsMember: member != nil}, nil
}

func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID uuid.UUID, name string) (*domain.Workspace, error) {
	if err := s.requireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}

	if err := s.workspaceRepo.UpdateName(ctx, workspaceID, name); err != nil {
		return nil, fmt.Errorf("updating workspace: %w", err)
	}
	ws.Name = name

	return ws, nil
}

// Delete cascades to members, channels, conversations, messages and
// reactions in one transaction.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	if err := s.requireAdmin(ctx, workspaceID, userID); err != nil {
		return err
	}

	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if ws == nil {
		return ErrWorkspaceNotFound
	}

	return s.workspaceRepo.DeleteCascade(ctx, workspaceID)
}

// RotateJoinCode replaces the join code. The old code stops working the
// moment this returns.
func (s *WorkspaceService) RotateJoinCode(ctx context.Context, userID, workspaceID uuid.UUID) (string, error) {
	if err := s.requireAdmin(ctx, workspaceID, userID); err != nil {
		return "", err
	}

	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	if ws == nil {
		return "", ErrWorkspaceNotFound
	}

	code, err := generateJoinCode()
	if err != nil {
		return "", fmt.Errorf("generating join code: %w", err)
	}
	if err := s.workspaceRepo.UpdateJoinCode(ctx, workspaceID, code); err != nil {
		return "", fmt.Errorf("rotating join code: %w", err)
	}

	return code, nil
}

// Join redeems a join code. Codes compare case-insensitively. The member
// unique index decides concurrent joins: the loser gets ErrAlreadyMember.
func (s *WorkspaceService) Join(ctx context.Context, userID, workspaceID uuid.UUID, code string) (*domain.Member, error) {
	ws, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrWorkspaceNotFound
	}

	if !strings.EqualFold(code, ws.JoinCode) {
		return nil, ErrInvalidJoinCode
	}

	existing, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        domain.RoleMember,
		CreatedAt:   time.Now(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("creating member: %w", err)
	}

	return member, nil
}

// Leave removes the caller's membership. Admins cannot leave; they delete
// the workspace or stay, so no workspace ends up adminless.
func (s *WorkspaceService) Leave(ctx context.Context, userID, workspaceID uuid.UUID) error {
	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	if member.Role == domain.RoleAdmin {
		return ErrAdminCannotLeave
	}

	return s.memberRepo.Delete(ctx, member.ID)
}

// Current returns the caller's member record in the workspace, or nil when
// the caller does not belong. Never an error for non-members.
func (s *WorkspaceService) Current(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Member, error) {
	return s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
}

// requireAdmin is the admin gate shared by every directory mutation.
func (s *WorkspaceService) requireAdmin(ctx context.Context, workspaceID, userID uuid.UUID) error {
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

func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}
