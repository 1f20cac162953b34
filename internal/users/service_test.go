package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID map[uuid.UUID]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*User{}}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	for _, other := range f.byID {
		if other.Email == u.Email {
			return ErrEmailTaken
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) find(match func(*User) bool) (*User, error) {
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	return f.find(func(u *User) bool { return u.Email == email })
}

func (f *fakeRepo) GetByJID(_ context.Context, jid string) (*User, error) {
	return f.find(func(u *User) bool { return u.JID != "" && u.JID == jid })
}

func (f *fakeRepo) SetJID(_ context.Context, id uuid.UUID, jid string, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range f.byID {
		if otherID != id && jid != "" && other.JID == jid {
			return ErrJIDTaken
		}
	}
	u.JID = jid
	u.UpdatedAt = at
	return nil
}

func TestBareJID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Alice@Example.org", want: "alice@example.org"},
		{in: "alice@example.org/phone", want: "alice@example.org"},
		{in: "  bob@chat.local/res/x ", want: "bob@chat.local"},
		{in: "example.org", wantErr: true},
		{in: "@example.org", wantErr: true},
		{in: "alice@", wantErr: true},
		{in: "", wantErr: true},
		{in: "al ice@example.org", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := BareJID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidJID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_CreateNormalizesEmail(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	u, err := svc.Create(ctx, " Alice@Example.org ", " Alice ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", u.Email)
	assert.Equal(t, "Alice", u.Name)

	got, err := svc.GetByEmail(ctx, "ALICE@example.org")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Create(ctx, "alice@example.org", "", "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_JIDLinking(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	alice, err := svc.Create(ctx, "alice@example.org", "Alice", "hash")
	require.NoError(t, err)
	bob, err := svc.Create(ctx, "bob@example.org", "Bob", "hash")
	require.NoError(t, err)

	linked, err := svc.LinkJID(ctx, alice.ID, "Alice@Chat.Example.org/laptop")
	require.NoError(t, err)
	assert.Equal(t, "alice@chat.example.org", linked.JID)

	found, err := svc.ResolveJID(ctx, "alice@chat.example.org/phone")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = svc.LinkJID(ctx, bob.ID, "alice@chat.example.org")
	assert.ErrorIs(t, err, ErrJIDTaken)

	_, err = svc.LinkJID(ctx, bob.ID, "not-a-jid")
	assert.ErrorIs(t, err, ErrInvalidJID)

	require.NoError(t, svc.UnlinkJID(ctx, alice.ID))
	_, err = svc.ResolveJID(ctx, "alice@chat.example.org")
	assert.ErrorIs(t, err, ErrNotFound)
}
