package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymemory "github.com/Apurer/restaurant-pos/internal/domains/identity/adapters/memory"
	identityapp "github.com/Apurer/restaurant-pos/internal/domains/identity/application"
	menumemory "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/memory"
	menuapp "github.com/Apurer/restaurant-pos/internal/domains/menu/application"
	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newTestTerminal(t *testing.T) (*Terminal, *menumemory.Store) {
	t.Helper()
	store := menumemory.NewStore()
	terminal := NewTerminal(menuapp.NewSynchronizer(store))
	t.Cleanup(terminal.Close)
	return terminal, store
}

func connect(t *testing.T, terminal *Terminal, identity string) {
	t.Helper()
	terminal.HandleIdentity(identity, true)
	require.Eventually(t, func() bool {
		s := terminal.Session()
		return !s.Loading && len(terminal.Menu()) == 17
	}, waitFor, tick)
}

func findItem(t *testing.T, items []menudomain.MenuItem, name string) menudomain.MenuItem {
	t.Helper()
	for _, item := range items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("item %q not on the menu", name)
	return menudomain.MenuItem{}
}

func TestTerminal_ConnectLoadsSeededMenu(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	assert.Equal(t, Session{Status: StatusConnecting}, terminal.Session())

	terminal.HandleIdentity("uid-1", true)
	assert.Equal(t, StatusConnected, terminal.Session().Status)
	assert.Equal(t, "uid-1", terminal.Session().Identity)

	require.Eventually(t, func() bool { return len(terminal.Menu()) == 17 }, waitFor, tick)
	assert.False(t, terminal.Session().Loading)
}

func TestTerminal_IdentityLostClearsMenu(t *testing.T) {
	terminal, store := newTestTerminal(t)
	connect(t, terminal, "uid-1")

	terminal.HandleIdentity("", false)
	assert.Equal(t, Session{Status: StatusDisconnected}, terminal.Session())
	assert.Empty(t, terminal.Menu())

	_, err := store.Create(context.Background(), "users/uid-1/menuItems", menudomain.Draft{Name: "Soda", Price: 1})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, terminal.Menu())
}

func TestTerminal_EditsRequireConnection(t *testing.T) {
	terminal, store := newTestTerminal(t)

	err := terminal.AddMenuItem(context.Background(), "Soda", 1)
	require.ErrorIs(t, err, ErrNotConnected)
	err = terminal.DeleteMenuItem(context.Background(), "anything")
	require.ErrorIs(t, err, ErrNotConnected)

	notice, ok := terminal.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeError, notice.Kind)
	assert.Empty(t, store.Snapshot("users//menuItems"))
}

func TestTerminal_AddMenuItemSetsNotices(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	connect(t, terminal, "uid-1")

	require.NoError(t, terminal.AddMenuItem(context.Background(), " Horchata ", 1.75))
	notice, ok := terminal.Notice()
	require.True(t, ok)
	assert.Equal(t, Notice{Kind: NoticeSuccess, Message: `"Horchata" added to the menu.`, At: notice.At}, notice)
	require.Eventually(t, func() bool { return len(terminal.Menu()) == 18 }, waitFor, tick)

	err := terminal.AddMenuItem(context.Background(), "Horchata", 2)
	require.ErrorIs(t, err, menuapp.ErrDuplicateItem)
	notice, _ = terminal.Notice()
	assert.Equal(t, NoticeError, notice.Kind)

	terminal.DismissNotice()
	_, ok = terminal.Notice()
	assert.False(t, ok)
}

func TestTerminal_DeleteRemovesOnlyThatOrderLine(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	connect(t, terminal, "uid-1")

	menu := terminal.Menu()
	corona := findItem(t, menu, "CORONA")
	pilsener := findItem(t, menu, "PILSENER")
	require.NoError(t, terminal.AddToOrder(corona.ID))
	require.NoError(t, terminal.AddToOrder(corona.ID))
	require.NoError(t, terminal.AddToOrder(pilsener.ID))

	require.NoError(t, terminal.DeleteMenuItem(context.Background(), corona.ID))

	lines, total := terminal.Order()
	require.Len(t, lines, 1)
	assert.Equal(t, pilsener.ID, lines[0].Item.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, "1.25", total.String())

	notice, _ := terminal.Notice()
	assert.Equal(t, "Item removed from the menu.", notice.Message)
	require.Eventually(t, func() bool { return len(terminal.Menu()) == 16 }, waitFor, tick)
}

func TestTerminal_OrderOperations(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	connect(t, terminal, "uid-1")

	corona := findItem(t, terminal.Menu(), "CORONA")
	require.ErrorIs(t, terminal.AddToOrder("missing"), ErrUnknownItem)

	require.NoError(t, terminal.AddToOrder(corona.ID))
	require.NoError(t, terminal.AddToOrder(corona.ID))
	total, change := terminal.ChangeDue("10")
	assert.Equal(t, "4", total.String())
	assert.Equal(t, "6", change.String())

	terminal.RemoveFromOrder(corona.ID)
	lines, _ := terminal.Order()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	terminal.ClearOrder()
	lines, total = terminal.Order()
	assert.Empty(t, lines)
	assert.True(t, total.IsZero())
}

func TestTerminal_SubscriptionErrorBecomesNotice(t *testing.T) {
	terminal, store := newTestTerminal(t)
	connect(t, terminal, "uid-1")

	store.InjectFeedError("users/uid-1/menuItems", errors.New("permission denied"))
	require.Eventually(t, func() bool {
		notice, ok := terminal.Notice()
		return ok && notice.Kind == NoticeError
	}, waitFor, tick)

	notice, _ := terminal.Notice()
	assert.Contains(t, notice.Message, "Failed to load the menu")
	assert.False(t, terminal.Session().Loading)
}

func TestTerminal_WatchStreamsSnapshots(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	connect(t, terminal, "uid-1")

	ctx, cancel := context.WithCancel(context.Background())
	updates := terminal.Watch(ctx)

	select {
	case items := <-updates:
		assert.Len(t, items, 17)
	case <-time.After(waitFor):
		t.Fatal("no initial menu")
	}

	require.NoError(t, terminal.AddMenuItem(context.Background(), "Horchata", 1.75))
	select {
	case items := <-updates:
		assert.Len(t, items, 18)
	case <-time.After(waitFor):
		t.Fatal("no menu update")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, waitFor, tick)
}

func TestTerminal_AttachFollowsAnonymousProvider(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	provider := identityapp.NewAnonymousProvider(identitymemory.NewStore())
	terminal.Attach(provider)
	assert.Equal(t, StatusConnecting, terminal.Session().Status)

	identity, err := provider.SignIn(context.Background(), "till-1")
	require.NoError(t, err)
	assert.Equal(t, identity.Token, terminal.Session().Identity)
	require.Eventually(t, func() bool { return len(terminal.Menu()) == 17 }, waitFor, tick)

	provider.SignOut()
	assert.Equal(t, StatusDisconnected, terminal.Session().Status)
}
