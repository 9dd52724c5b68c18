package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/store"
)

func newTestRoster(t *testing.T) (*Roster, *store.Memory, *fakeNotifier) {
	t.Helper()
	st := store.NewMemory()
	notifier := &fakeNotifier{}
	roster := NewRoster(st, notifier, testConfig())
	seedClassType(t, st, "ct1", "Mandarin")
	return roster, st, notifier
}

func requireInvariants(t *testing.T, class *models.Class) {
	t.Helper()
	require.LessOrEqual(t, len(class.Members), class.TotalSpots)
	require.Equal(t, class.TotalSpots-len(class.Members), class.SpotsLeft)
}

func TestCreateClass(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	t.Run("defaults total spots from config", func(t *testing.T) {
		class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, class.TotalSpots)
		assert.Equal(t, 5, class.SpotsLeft)
		assert.Equal(t, models.ClassStatusActive, class.Status)
	})

	t.Run("unknown class type", func(t *testing.T) {
		_, err := roster.CreateClass(ctx, "nope", "Monday", "6:00 PM", nil, 0)
		require.Error(t, err)
		assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
	})

	t.Run("too many initial members", func(t *testing.T) {
		members := []models.Member{
			{UserID: "u1", Name: "Alice"},
			{UserID: "u2", Name: "Bob"},
			{UserID: "u3", Name: "Carl"},
		}
		_, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", members, 2)
		require.Error(t, err)
		assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	})

	t.Run("duplicate initial member", func(t *testing.T) {
		members := []models.Member{
			{UserID: "u1", Name: "Alice"},
			{UserID: "u1", Name: "Alice again"},
		}
		_, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", members, 5)
		require.Error(t, err)
		assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	})

	t.Run("seeded members count against capacity", func(t *testing.T) {
		members := []models.Member{
			{UserID: "u1", Name: "Alice"},
			{UserID: "u2", Name: "Bob"},
		}
		class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", members, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, class.SpotsLeft)
		requireInvariants(t, class)
	})
}

func TestJoinClassFillsToCapacity(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 2)
	require.NoError(t, err)
	require.Equal(t, 2, class.SpotsLeft)

	class, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, class.SpotsLeft)
	requireInvariants(t, class)

	class, err = roster.JoinClass(ctx, class.ID, "u2", "Bob")
	require.NoError(t, err)
	assert.Equal(t, 0, class.SpotsLeft)
	requireInvariants(t, class)

	_, err = roster.JoinClass(ctx, class.ID, "u3", "Carl")
	assert.ErrorIs(t, err, ErrClassFull)

	final, err := roster.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, final.Members, 2)
	requireInvariants(t, final)
}

func TestJoinClassDuplicate(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)

	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err)

	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	final, err := roster.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, final.Members, 1)
}

func TestJoinClassNotFound(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	_, err := roster.JoinClass(context.Background(), "missing", "u1", "Alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestLeaveClass(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u2", "Bob")
	require.NoError(t, err)

	updated, err := roster.LeaveClass(ctx, class.ID, "u1")
	require.NoError(t, err)
	assert.Len(t, updated.Members, 1)
	assert.Equal(t, "u2", updated.Members[0].UserID)
	assert.Equal(t, 4, updated.SpotsLeft)
	requireInvariants(t, updated)

	_, err = roster.LeaveClass(ctx, class.ID, "u1")
	assert.ErrorIs(t, err, ErrNotEnrolled)

	final, err := roster.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, final.Members, 1)
}

func TestInterleavedJoinLeaveKeepsInvariants(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Tuesday", "7:00 PM", nil, 3)
	require.NoError(t, err)

	steps := []struct {
		join   bool
		userID string
	}{
		{true, "u1"}, {true, "u2"}, {false, "u1"},
		{true, "u3"}, {true, "u4"}, {false, "u2"},
		{true, "u5"}, {true, "u6"},
	}
	for _, step := range steps {
		var current *models.Class
		if step.join {
			current, err = roster.JoinClass(ctx, class.ID, step.userID, step.userID)
		} else {
			current, err = roster.LeaveClass(ctx, class.ID, step.userID)
		}
		if err == nil {
			requireInvariants(t, current)
		} else {
			assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
		}
		stored, getErr := roster.GetClass(ctx, class.ID)
		require.NoError(t, getErr)
		requireInvariants(t, stored)
	}
}

func TestConcurrentJoinLastSpot(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 2)
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u0", "Zoe")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, uid := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, results[i] = roster.JoinClass(ctx, class.ID, uid, uid)
		}(i, uid)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
		}
	}
	assert.Equal(t, 1, successes, "exactly one join may win the last spot")

	final, err := roster.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Len(t, final.Members, 2)
	requireInvariants(t, final)
}

func TestJoinRetriesOnVersionMismatch(t *testing.T) {
	st := store.NewMemory()
	flaky := &flakyStore{Store: st, failUpdates: 1}
	roster := NewRoster(flaky, &fakeNotifier{}, testConfig())
	seedClassType(t, st, "ct1", "Mandarin")
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)

	joined, err := roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err, "one mismatch must be absorbed by a retry")
	assert.Len(t, joined.Members, 1)
}

func TestJoinSurfacesConflictAfterRetriesExhausted(t *testing.T) {
	st := store.NewMemory()
	flaky := &flakyStore{Store: st, failUpdates: maxWriteAttempts}
	roster := NewRoster(flaky, &fakeNotifier{}, testConfig())
	seedClassType(t, st, "ct1", "Mandarin")
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)

	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))

	final, err := roster.GetClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Empty(t, final.Members)
}

func TestCancelledClassRejectsMutation(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err)

	cancelled, err := roster.CancelClass(ctx, class.ID, "instructor unavailable")
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "instructor unavailable", cancelled.CancelReason)

	_, err = roster.JoinClass(ctx, class.ID, "u2", "Bob")
	assert.ErrorIs(t, err, ErrClassNotActive)
	_, err = roster.LeaveClass(ctx, class.ID, "u1")
	assert.ErrorIs(t, err, ErrClassNotActive)
	day := "Friday"
	_, err = roster.UpdateClass(ctx, class.ID, ClassPatch{Day: &day})
	assert.ErrorIs(t, err, ErrClassNotActive)

	reactivated, err := roster.ReactivateClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusActive, reactivated.Status)
	assert.Nil(t, reactivated.CancelledAt)
	assert.Empty(t, reactivated.CancelReason)

	_, err = roster.JoinClass(ctx, class.ID, "u2", "Bob")
	require.NoError(t, err)
}

func TestCancelTwiceOverwrites(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)

	first, err := roster.CancelClass(ctx, class.ID, "first reason")
	require.NoError(t, err)

	second, err := roster.CancelClass(ctx, class.ID, "second reason")
	require.NoError(t, err)
	assert.Equal(t, "second reason", second.CancelReason)
	assert.True(t, !second.CancelledAt.Before(*first.CancelledAt))
}

func TestUpdateClass(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()
	seedClassType(t, roster.store, "ct2", "Spanish")

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u2", "Bob")
	require.NoError(t, err)

	t.Run("partial fields", func(t *testing.T) {
		day, slotTime, ct := "Wednesday", "8:00 PM", "ct2"
		updated, err := roster.UpdateClass(ctx, class.ID, ClassPatch{Day: &day, Time: &slotTime, ClassTypeID: &ct})
		require.NoError(t, err)
		assert.Equal(t, "Wednesday", updated.Day)
		assert.Equal(t, "8:00 PM", updated.Time)
		assert.Equal(t, "ct2", updated.ClassTypeID)
		assert.Len(t, updated.Members, 2)
	})

	t.Run("unknown class type reference", func(t *testing.T) {
		ct := "nope"
		_, err := roster.UpdateClass(ctx, class.ID, ClassPatch{ClassTypeID: &ct})
		require.Error(t, err)
		assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
	})

	t.Run("shrink below member count rejected", func(t *testing.T) {
		spots := 1
		_, err := roster.UpdateClass(ctx, class.ID, ClassPatch{TotalSpots: &spots})
		require.Error(t, err)
		assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
	})

	t.Run("shrink to member count recomputes spotsLeft", func(t *testing.T) {
		spots := 2
		updated, err := roster.UpdateClass(ctx, class.ID, ClassPatch{TotalSpots: &spots})
		require.NoError(t, err)
		assert.Equal(t, 0, updated.SpotsLeft)
		requireInvariants(t, updated)
	})

	t.Run("grow recomputes spotsLeft", func(t *testing.T) {
		spots := 6
		updated, err := roster.UpdateClass(ctx, class.ID, ClassPatch{TotalSpots: &spots})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.SpotsLeft)
	})
}

func TestDeleteClass(t *testing.T) {
	roster, _, _ := newTestRoster(t)
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)

	require.NoError(t, roster.DeleteClass(ctx, class.ID))

	_, err = roster.GetClass(ctx, class.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))

	err = roster.DeleteClass(ctx, class.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestJoinNotifiesUserAndOperator(t *testing.T) {
	st := store.NewMemory()
	notifier := &fakeNotifier{}
	cfg := testConfig()
	cfg.OperatorEmail = "ops@classmatch.io"
	roster := NewRoster(st, notifier, cfg)
	seedClassType(t, st, "ct1", "Mandarin")
	seedUser(t, st, "u1", "Alice", "alice@example.com")
	ctx := context.Background()

	class, err := roster.CreateClass(ctx, "ct1", "Monday", "6:00 PM", nil, 5)
	require.NoError(t, err)
	_, err = roster.JoinClass(ctx, class.ID, "u1", "Alice")
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "alice@example.com", notifier.sent[0].To.Email)
	assert.Equal(t, "ops@classmatch.io", notifier.sent[1].To.Email)
	assert.Equal(t, "20%", notifier.sent[0].Data["fillRate"])
}
