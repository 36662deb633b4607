package database_test

import (
	"context"
	"testing"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "maria")
	_, err := uuid.Parse(u.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "en", u.NativeLanguage)

	dup := &models.User{Username: "maria"}
	assert.ErrorIs(t, f.users.Create(ctx, dup), database.ErrConflict)

	chat := int64(4242)
	u.DisplayName = "María"
	u.TargetLanguage = "el"
	u.TelegramChatID = &chat
	require.NoError(t, f.users.Update(ctx, u))

	got, err := f.users.GetByPublicID(ctx, u.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "María", got.DisplayName)
	assert.Equal(t, "el", got.TargetLanguage)
	require.NotNil(t, got.TelegramChatID)
	assert.Equal(t, chat, *got.TelegramChatID)

	_, err = f.users.GetByPublicID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUserListForDigest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.user(t, "quiet")
	chat := int64(7)
	loud := &models.User{Username: "loud", TelegramChatID: &chat}
	require.NoError(t, f.users.Create(ctx, loud))

	users, err := f.users.ListForDigest(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "loud", users[0].Username)
}

func TestUserGetByChatID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	chat := int64(99)
	u := &models.User{Username: "linked", TelegramChatID: &chat}
	require.NoError(t, f.users.Create(ctx, u))

	got, err := f.users.GetByChatID(ctx, chat)
	require.NoError(t, err)
	assert.Equal(t, u.PublicID, got.PublicID)

	_, err = f.users.GetByChatID(ctx, 100)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
