package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

const testPath = "users/uid-1/menuItems"

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	}
}

func receive(t *testing.T, ch <-chan []domain.MenuItem) []domain.MenuItem {
	t.Helper()
	select {
	case items := <-ch:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestStore_SubscribeDeliversInitialAndSubsequentSnapshots(t *testing.T) {
	store := NewStore()
	store.WithIDGenerator(sequentialIDs())
	ctx := context.Background()

	snapshots := make(chan []domain.MenuItem, 10)
	feed := store.Subscribe(ctx, testPath, func(items []domain.MenuItem) { snapshots <- items }, nil)
	defer feed.Unsubscribe()

	assert.Empty(t, receive(t, snapshots))

	id, err := store.Create(ctx, testPath, domain.Draft{Name: "Soda", Price: 1.5})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)
	assert.Equal(t, []domain.MenuItem{{ID: "doc-1", Name: "Soda", Price: 1.5}}, receive(t, snapshots))

	_, err = store.Create(ctx, testPath, domain.Draft{Name: "Tea", Price: 1})
	require.NoError(t, err)
	got := receive(t, snapshots)
	require.Len(t, got, 2)
	assert.Equal(t, "Soda", got[0].Name)
	assert.Equal(t, "Tea", got[1].Name)

	require.NoError(t, store.Delete(ctx, testPath, "doc-1"))
	assert.Equal(t, []domain.MenuItem{{ID: "doc-2", Name: "Tea", Price: 1}}, receive(t, snapshots))
}

func TestStore_CollectionsAreIsolatedByPath(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "users/a/menuItems", domain.Draft{Name: "Soda", Price: 1})
	require.NoError(t, err)

	assert.Len(t, store.Snapshot("users/a/menuItems"), 1)
	assert.Empty(t, store.Snapshot("users/b/menuItems"))
}

func TestStore_DeleteUnknownIDIsSilent(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Delete(context.Background(), testPath, "missing"))
}

func TestStore_QueryEqual(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, err := store.Create(ctx, testPath, domain.Draft{Name: "Soda", Price: 1.5})
	require.NoError(t, err)
	_, err = store.Create(ctx, testPath, domain.Draft{Name: "soda", Price: 2})
	require.NoError(t, err)

	byName, err := store.QueryEqual(ctx, testPath, ports.FieldName, "Soda")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, 1.5, byName[0].Price)

	byPrice, err := store.QueryEqual(ctx, testPath, ports.FieldPrice, 2.0)
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "soda", byPrice[0].Name)

	_, err = store.QueryEqual(ctx, testPath, "color", "red")
	assert.ErrorIs(t, err, ports.ErrUnsupportedField)
}

func TestStore_UnsubscribeStopsDelivery(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	snapshots := make(chan []domain.MenuItem, 10)
	feed := store.Subscribe(ctx, testPath, func(items []domain.MenuItem) { snapshots <- items }, nil)
	receive(t, snapshots)
	feed.Unsubscribe()
	feed.Unsubscribe()

	_, err := store.Create(ctx, testPath, domain.Draft{Name: "Soda", Price: 1})
	require.NoError(t, err)

	select {
	case items := <-snapshots:
		t.Fatalf("unexpected snapshot after unsubscribe: %v", items)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_ContextCancelEndsFeed(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	snapshots := make(chan []domain.MenuItem, 10)
	store.Subscribe(ctx, testPath, func(items []domain.MenuItem) { snapshots <- items }, nil)
	receive(t, snapshots)
	cancel()

	require.Eventually(t, func() bool {
		store.mu.RLock()
		defer store.mu.RUnlock()
		return len(store.feeds[testPath]) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStore_InjectFeedErrorDeliversOnce(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	snapshots := make(chan []domain.MenuItem, 10)
	errs := make(chan error, 10)
	store.Subscribe(ctx, testPath, func(items []domain.MenuItem) { snapshots <- items }, func(err error) { errs <- err })
	receive(t, snapshots)

	boom := errors.New("permission denied")
	store.InjectFeedError(testPath, boom)
	store.InjectFeedError(testPath, boom)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("expected feed error")
	}
	select {
	case err := <-errs:
		t.Fatalf("error delivered twice: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}
