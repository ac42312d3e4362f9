package identity

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	userrepo "github.com/indrajit912/hermes/internal/user/repository"
)

const staticKey = "service-secret"

func newResolver(t *testing.T) (*Resolver, *gorm.DB, *secrets.Cipher) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&userdomain.User{}))

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	cipher := secrets.New(key)

	return NewResolver(conn, userrepo.Provide(), cipher, staticKey), conn, cipher
}

func seedUser(t *testing.T, conn *gorm.DB, cipher *secrets.Cipher, id, token string, approved bool) {
	t.Helper()

	user := &userdomain.User{
		ID:             id,
		Name:           id,
		Email:          id + "@example.com",
		APIKeyApproved: approved,
	}
	if approved {
		require.NoError(t, user.SetAPIKey(cipher, token))
	} else {
		require.NoError(t, user.SetPendingAPIKey(cipher, token))
	}
	require.NoError(t, conn.Create(user).Error)
}

func TestResolveUserFindsApprovedKey(t *testing.T) {
	r, conn, cipher := newResolver(t)
	seedUser(t, conn, cipher, "u1", "key-one", true)
	seedUser(t, conn, cipher, "u2", "key-two", true)
	seedUser(t, conn, cipher, "u3", "key-three", false)

	id, err := r.ResolveUser(context.Background(), "key-two")
	require.NoError(t, err)
	assert.Equal(t, ApprovedUser, id.Kind)
	require.NotNil(t, id.User)
	assert.Equal(t, "u2", id.User.ID)
}

func TestResolveUserClassifiesPendingKey(t *testing.T) {
	r, conn, cipher := newResolver(t)
	seedUser(t, conn, cipher, "u1", "pending-key", false)

	id, err := r.ResolveUser(context.Background(), "pending-key")
	require.NoError(t, err)
	assert.Equal(t, PendingUser, id.Kind)
	require.NotNil(t, id.User)
	assert.Equal(t, "u1", id.User.ID)
}

func TestResolveUserUnknownToken(t *testing.T) {
	r, conn, cipher := newResolver(t)
	seedUser(t, conn, cipher, "u1", "key-one", true)

	id, err := r.ResolveUser(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, id.Kind)
	assert.Nil(t, id.User)

	id, err = r.ResolveUser(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, id.Kind)
}

func TestResolveApprovedUserIgnoresPending(t *testing.T) {
	r, conn, cipher := newResolver(t)
	seedUser(t, conn, cipher, "u1", "pending-key", false)

	id, err := r.ResolveApprovedUser(context.Background(), "pending-key")
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, id.Kind)
}

func TestResolveUserSkipsForeignCiphertext(t *testing.T) {
	r, conn, cipher := newResolver(t)

	// A row written under a different master key must not abort the scan.
	otherKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	seedUser(t, conn, secrets.New(otherKey), "stale", "old-epoch-key", true)
	seedUser(t, conn, cipher, "u1", "key-one", true)

	id, err := r.ResolveUser(context.Background(), "key-one")
	require.NoError(t, err)
	assert.Equal(t, ApprovedUser, id.Kind)
	assert.Equal(t, "u1", id.User.ID)

	id, err = r.ResolveUser(context.Background(), "old-epoch-key")
	require.NoError(t, err)
	assert.Equal(t, Unauthenticated, id.Kind)
}

func TestMatchesStaticKey(t *testing.T) {
	r, _, _ := newResolver(t)

	assert.True(t, r.MatchesStaticKey(staticKey))
	assert.False(t, r.MatchesStaticKey("wrong"))
	assert.False(t, r.MatchesStaticKey(""))

	unset := NewResolver(nil, nil, nil, "")
	assert.False(t, unset.MatchesStaticKey(""))
	assert.False(t, unset.MatchesStaticKey("anything"))
}
