// Package users stores accounts and their linked chat addresses.
package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrJIDTaken   = errors.New("chat address already linked to another account")
	ErrInvalidJID = errors.New("invalid chat address")
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	JID          string    `json:"jid,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type LinkJIDRequest struct {
	JID string `json:"jid" validate:"required,max=320"`
}

// BareJID lower-cases a JID and strips its resource part. It rejects
// addresses without both a local part and a domain.
func BareJID(jid string) (string, error) {
	bare, _, _ := strings.Cut(strings.TrimSpace(jid), "/")
	local, domain, ok := strings.Cut(bare, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(bare, " \t") {
		return "", fmt.Errorf("%w: %q", ErrInvalidJID, jid)
	}
	return strings.ToLower(bare), nil
}
