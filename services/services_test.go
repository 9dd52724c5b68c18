package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	config "github.com/classmatch/api/configs"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/notifications"
	"github.com/classmatch/api/store"
)

// fakeNotifier records every notification; optionally fails each call.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	fail error
}

type sentNotification struct {
	To       notifications.Recipient
	Template string
	Data     map[string]any
}

func (f *fakeNotifier) Notify(ctx context.Context, to notifications.Recipient, template string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{To: to, Template: template, Data: data})
	return f.fail
}

func (f *fakeNotifier) count(template string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.Template == template {
			n++
		}
	}
	return n
}

// flakyStore delegates to the wrapped store but rejects the first
// failUpdates conditional writes with ErrVersionMismatch.
type flakyStore struct {
	store.Store
	mu          sync.Mutex
	failUpdates int
}

func (f *flakyStore) Update(ctx context.Context, collection, id string, doc any, expectedVersion int64) error {
	f.mu.Lock()
	if f.failUpdates > 0 && expectedVersion != store.AnyVersion {
		f.failUpdates--
		f.mu.Unlock()
		return store.ErrVersionMismatch
	}
	f.mu.Unlock()
	return f.Store.Update(ctx, collection, id, doc, expectedVersion)
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultClassSpots:      5,
		AvailabilityMaxAgeDays: 30,
	}
}

func seedClassType(t *testing.T, st store.Store, id, name string) {
	t.Helper()
	ct := models.ClassType{
		ID:         id,
		Name:       name,
		Categories: []string{"language"},
		IsActive:   true,
	}
	require.NoError(t, st.Create(context.Background(), models.CollectionClassTypes, id, &ct))
}

func seedUser(t *testing.T, st store.Store, id, name, email string) {
	t.Helper()
	user := models.User{ID: id, FullName: name, Email: email}
	require.NoError(t, st.Create(context.Background(), models.CollectionUsers, id, &user))
}
