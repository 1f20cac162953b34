package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, email, name, passwordHash string) (*User, error) {
	now := s.now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveJID finds the account linked to a full or bare JID.
func (s *Service) ResolveJID(ctx context.Context, jid string) (*User, error) {
	bare, err := BareJID(jid)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByJID(ctx, bare)
}

func (s *Service) LinkJID(ctx context.Context, id uuid.UUID, jid string) (*User, error) {
	bare, err := BareJID(jid)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetJID(ctx, id, bare, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UnlinkJID(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetJID(ctx, id, "", s.now().UTC())
}
