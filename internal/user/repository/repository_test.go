package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	userdomain "github.com/indrajit912/hermes/internal/user/domain"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&userdomain.User{}))
	return conn
}

func TestConsumeQuotaStopsAtLimit(t *testing.T) {
	conn := openDB(t)
	repo := Provide()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, conn, &userdomain.User{ID: "u1", Name: "A", Email: "a@example.com"}))

	for i := 0; i < 3; i++ {
		ok, err := repo.ConsumeQuota(ctx, conn, "u1", 3)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.ConsumeQuota(ctx, conn, "u1", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, conn, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.DefaultBotUsage)
}

func TestReleaseQuotaCompensates(t *testing.T) {
	conn := openDB(t)
	repo := Provide()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, conn, &userdomain.User{ID: "u1", Name: "A", Email: "a@example.com"}))

	ok, err := repo.ConsumeQuota(ctx, conn, "u1", 1)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.ReleaseQuota(ctx, conn, "u1"))

	ok, err = repo.ConsumeQuota(ctx, conn, "u1", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMarkApprovedWinsOnlyOnce(t *testing.T) {
	conn := openDB(t)
	repo := Provide()
	ctx := context.Background()

	user := &userdomain.User{
		ID:                   "u1",
		Name:                 "A",
		Email:                "a@example.com",
		APIKeyPlainEncrypted: "pending-ciphertext",
	}
	require.NoError(t, repo.Insert(ctx, conn, user))

	user.APIKeyEncrypted = "approved-ciphertext"
	user.APIKeyPlainEncrypted = ""

	won, err := repo.MarkApproved(ctx, conn, user)
	require.NoError(t, err)
	assert.True(t, won)

	// A second writer racing the same transition matches zero rows. The
	// flag condition, not a prior read, is what keeps the key release
	// single-shot.
	rival := &userdomain.User{ID: "u1", APIKeyEncrypted: "rival-ciphertext"}
	won, err = repo.MarkApproved(ctx, conn, rival)
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := repo.FindByID(ctx, conn, "u1")
	require.NoError(t, err)
	assert.True(t, stored.APIKeyApproved)
	assert.Equal(t, "approved-ciphertext", stored.APIKeyEncrypted)
	assert.Empty(t, stored.APIKeyPlainEncrypted)
}

func TestMarkApprovedUnknownUser(t *testing.T) {
	conn := openDB(t)
	repo := Provide()

	won, err := repo.MarkApproved(context.Background(), conn, &userdomain.User{ID: "missing"})
	require.NoError(t, err)
	assert.False(t, won)
}

func TestConsumeQuotaUnknownUser(t *testing.T) {
	conn := openDB(t)
	repo := Provide()

	ok, err := repo.ConsumeQuota(context.Background(), conn, "missing", 5)
	require.NoError(t, err)
	assert.False(t, ok)
}
