package repository_test

import (
	"context"
	"testing"
	"time"

	"ice-breakun/backend/internal/models"
	"ice-breakun/backend/internal/repository"
	"ice-breakun/backend/internal/testutil"
	apperrors "ice-breakun/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newRepos(t *testing.T) (*repository.GormUserRepository, *repository.GormMessageRepository) {
	db := testutil.NewDB(t)
	return repository.NewGormUserRepository(db), repository.NewGormMessageRepository(db)
}

func createUser(t *testing.T, repo *repository.GormUserRepository, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	users, _ := newRepos(t)

	alice := createUser(t, users, "Alice", "a@x.io")
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())
	assert.False(t, alice.UpdatedAt.Before(alice.CreatedAt))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "a@x.io", got.Email)

	missing, err := users.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users, _ := newRepos(t)

	createUser(t, users, "Alice", "a@x.io")
	err := users.Create(ctx, &models.User{Name: "Other", Email: "a@x.io"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUniqueViolation, apperrors.KindOf(err))

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRepository_ListOrdered(t *testing.T) {
	ctx := context.Background()
	users, _ := newRepos(t)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	createUser(t, users, "A", "a@x.io")
	createUser(t, users, "B", "b@x.io")
	createUser(t, users, "C", "c@x.io")

	list, err = users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	users, _ := newRepos(t)

	alice := createUser(t, users, "Alice", "a@x.io")
	createUser(t, users, "Bob", "b@x.io")

	time.Sleep(5 * time.Millisecond)
	updated, err := users.Update(ctx, alice.ID, models.UserChanges{Name: strPtr("Alicia")})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "a@x.io", updated.Email)
	assert.True(t, updated.UpdatedAt.After(alice.UpdatedAt))

	_, err = users.Update(ctx, alice.ID, models.UserChanges{Email: strPtr("b@x.io")})
	assert.Equal(t, apperrors.KindUniqueViolation, apperrors.KindOf(err))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", got.Email)

	_, err = users.Update(ctx, 9999, models.UserChanges{Name: strPtr("Ghost")})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	users, messages := newRepos(t)

	alice := createUser(t, users, "Alice", "a@x.io")
	bob := createUser(t, users, "Bob", "b@x.io")
	for _, content := range []string{"one", "two"} {
		require.NoError(t, messages.Create(ctx, &models.Message{Content: content, UserID: alice.ID}))
	}
	require.NoError(t, messages.Create(ctx, &models.Message{Content: "bob's", UserID: bob.ID}))

	removed, err := users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, removed.ID)
	require.Len(t, removed.Messages, 2)
	for _, m := range removed.Messages {
		assert.Equal(t, alice.ID, m.UserID)
	}

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	owned, err := messages.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)

	all, err := messages.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, bob.ID, all[0].UserID)

	_, err = users.Delete(ctx, alice.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestMessageRepository_CreateLoadsUser(t *testing.T) {
	ctx := context.Background()
	users, messages := newRepos(t)

	alice := createUser(t, users, "Alice", "a@x.io")
	msg := &models.Message{Content: "hi", UserID: alice.ID}
	require.NoError(t, messages.Create(ctx, msg))

	assert.NotZero(t, msg.ID)
	require.NotNil(t, msg.User)
	assert.Equal(t, "Alice", msg.User.Name)
}

func TestMessageRepository_CreateUnknownUser(t *testing.T) {
	ctx := context.Background()
	_, messages := newRepos(t)

	err := messages.Create(ctx, &models.Message{Content: "x", UserID: 9999})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForeignKeyViolation, apperrors.KindOf(err))

	all, err := messages.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMessageRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	users, messages := newRepos(t)

	alice := createUser(t, users, "Alice", "a@x.io")
	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, messages.Create(ctx, &models.Message{Content: content, UserID: alice.ID}))
		time.Sleep(2 * time.Millisecond)
	}

	all, err := messages.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Content)
	assert.Equal(t, "first", all[2].Content)
	for _, m := range all {
		require.NotNil(t, m.User)
		assert.Equal(t, alice.ID, m.User.ID)
	}
}

func TestMessageRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	users, messages := newRepos(t)

	alice := createUser(t, users, "Alice", "a@x.io")
	msg := &models.Message{Content: "hi", UserID: alice.ID}
	require.NoError(t, messages.Create(ctx, msg))
	time.Sleep(5 * time.Millisecond)

	updated, err := messages.Update(ctx, msg.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Content)
	assert.True(t, updated.UpdatedAt.After(msg.UpdatedAt))
	assert.Equal(t, msg.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.Equal(t, alice.ID, updated.UserID)
	require.NotNil(t, updated.User)

	_, err = messages.Update(ctx, 9999, "nope")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	removed, err := messages.Delete(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, removed.ID)

	got, err := messages.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = messages.Delete(ctx, msg.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
