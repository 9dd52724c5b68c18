package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/notifications"
	"github.com/classmatch/api/store"
)

func TestRegister(t *testing.T) {
	st := store.NewMemory()
	notifier := &fakeNotifier{}
	svc := NewUsers(st, notifier)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "Alice@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct horse")))
	assert.Equal(t, 1, notifier.count(notifications.TemplateWelcome))

	_, err = svc.Register(ctx, "Alice Again", "alice@example.com", "another pass")
	require.Error(t, err)
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.FullName)

	_, err = svc.GetProfile(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestRegisterNotifierFailureStillRegisters(t *testing.T) {
	st := store.NewMemory()
	notifier := &fakeNotifier{fail: assert.AnError}
	svc := NewUsers(st, notifier)

	user, err := svc.Register(context.Background(), "Bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
}
