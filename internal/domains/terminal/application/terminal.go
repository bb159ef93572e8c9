package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	identityports "github.com/Apurer/restaurant-pos/internal/domains/identity/ports"
	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	menuports "github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
	orderdomain "github.com/Apurer/restaurant-pos/internal/domains/order/domain"
)

var (
	// ErrNotConnected is returned by menu edits while no identity is available.
	ErrNotConnected = errors.New("not connected")
	// ErrUnknownItem is returned when an order references an item missing from the current menu.
	ErrUnknownItem = errors.New("item is not on the current menu")
)

// ConnectionStatus mirrors the identity lifecycle.
type ConnectionStatus string

const (
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// NoticeKind classifies a transient notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the single transient message shown to the operator.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// Session describes the terminal's connection.
type Session struct {
	Identity string
	Status   ConnectionStatus
	Loading  bool
}

// Terminal is the presentation boundary of one point-of-sale station: it
// follows the identity, keeps the live menu, and owns the local order.
type Terminal struct {
	menu   menuports.Service
	logger *slog.Logger
	now    func() time.Time

	mu           sync.Mutex
	status       ConnectionStatus
	identity     string
	loading      bool
	items        []menudomain.MenuItem
	cart         *orderdomain.Cart
	notice       *Notice
	subscription menuports.Subscription
	generation   uint64
	watchers     map[uint64]chan []menudomain.MenuItem
	nextWatcher  uint64
	detach       func()
}

type Option func(*Terminal)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Terminal) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Terminal) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTerminal wires the terminal around the menu service. It starts in the
// connecting state until an identity is reported.
func NewTerminal(menu menuports.Service, opts ...Option) *Terminal {
	t := &Terminal{
		menu:     menu,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		status:   StatusConnecting,
		cart:     orderdomain.NewCart(),
		watchers: map[uint64]chan []menudomain.MenuItem{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Attach follows identity changes reported by provider until Close.
func (t *Terminal) Attach(provider identityports.Provider) {
	detach := provider.OnIdentityChange(t.HandleIdentity)
	t.mu.Lock()
	previous := t.detach
	t.detach = detach
	t.mu.Unlock()
	if previous != nil {
		previous()
	}
}

// HandleIdentity replaces the menu subscription whenever the identity changes.
func (t *Terminal) HandleIdentity(token string, ok bool) {
	token = strings.TrimSpace(token)
	t.mu.Lock()
	old := t.subscription
	t.subscription = nil
	t.generation++
	generation := t.generation
	t.items = nil
	if ok && token != "" {
		t.status = StatusConnected
		t.identity = token
		t.loading = true
	} else {
		t.status = StatusDisconnected
		t.identity = ""
		t.loading = false
	}
	t.mu.Unlock()

	if old != nil {
		old.Unsubscribe()
	}
	if !ok || token == "" {
		t.logger.Info("identity lost, menu subscription closed")
		return
	}

	t.logger.Info("identity resolved, subscribing to menu", slog.String("identity", token))
	sub := t.menu.Subscribe(token,
		func(items []menudomain.MenuItem) { t.onItems(generation, items) },
		func(err error) { t.onError(generation, err) },
	)
	t.mu.Lock()
	if t.generation != generation {
		t.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	t.subscription = sub
	t.mu.Unlock()
}

func (t *Terminal) onItems(generation uint64, items []menudomain.MenuItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if generation != t.generation {
		return
	}
	t.items = menudomain.CloneItems(items)
	t.loading = false
	for _, ch := range t.watchers {
		offer(ch, menudomain.CloneItems(items))
	}
}

func (t *Terminal) onError(generation uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if generation != t.generation {
		return
	}
	t.loading = false
	t.setNoticeLocked(NoticeError, fmt.Sprintf("Failed to load the menu: %v", err))
}

// AddMenuItem creates a menu item for the current identity.
func (t *Terminal) AddMenuItem(ctx context.Context, name string, price float64) error {
	identity, err := t.connectedIdentity()
	if err != nil {
		return err
	}
	if err := t.menu.AddItem(ctx, identity, name, price); err != nil {
		t.setNotice(NoticeError, fmt.Sprintf("Failed to add the item: %v", err))
		return err
	}
	t.setNotice(NoticeSuccess, fmt.Sprintf("%q added to the menu.", strings.TrimSpace(name)))
	return nil
}

// DeleteMenuItem removes a menu item and, on success, its order line.
func (t *Terminal) DeleteMenuItem(ctx context.Context, itemID string) error {
	identity, err := t.connectedIdentity()
	if err != nil {
		return err
	}
	if err := t.menu.DeleteItem(ctx, identity, itemID); err != nil {
		t.setNotice(NoticeError, fmt.Sprintf("Failed to remove the item: %v", err))
		return err
	}
	t.mu.Lock()
	t.cart.Drop(strings.TrimSpace(itemID))
	t.setNoticeLocked(NoticeSuccess, "Item removed from the menu.")
	t.mu.Unlock()
	return nil
}

// AddToOrder adds one unit of a current menu item to the order.
func (t *Terminal) AddToOrder(itemID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range t.items {
		if item.ID == itemID {
			t.cart.Add(item)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
}

// RemoveFromOrder takes one unit of itemID off the order.
func (t *Terminal) RemoveFromOrder(itemID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cart.Remove(itemID)
}

func (t *Terminal) ClearOrder() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cart.Clear()
}

// Order returns the order lines and their total.
func (t *Terminal) Order() ([]orderdomain.Line, orderdomain.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Lines(), t.cart.Total()
}

// ChangeDue returns the order total and the change for the received amount.
func (t *Terminal) ChangeDue(received string) (total, change orderdomain.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Total(), t.cart.ChangeDue(received)
}

// Menu returns the latest menu snapshot.
func (t *Terminal) Menu() []menudomain.MenuItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return menudomain.CloneItems(t.items)
}

func (t *Terminal) Session() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Session{Identity: t.identity, Status: t.status, Loading: t.loading}
}

// Notice returns the current notice, if any.
func (t *Terminal) Notice() (Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.notice == nil {
		return Notice{}, false
	}
	return *t.notice, true
}

func (t *Terminal) DismissNotice() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notice = nil
}

// Watch streams menu snapshots until ctx is done. Slow readers only see the
// latest snapshot. The current menu is sent first when one is loaded.
func (t *Terminal) Watch(ctx context.Context) <-chan []menudomain.MenuItem {
	ch := make(chan []menudomain.MenuItem, 1)
	t.mu.Lock()
	t.nextWatcher++
	id := t.nextWatcher
	t.watchers[id] = ch
	if t.status == StatusConnected && !t.loading {
		offer(ch, menudomain.CloneItems(t.items))
	}
	t.mu.Unlock()

	context.AfterFunc(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.watchers[id]; ok {
			delete(t.watchers, id)
			close(ch)
		}
	})
	return ch
}

// Close detaches from the identity provider, ends the menu subscription, and
// closes every watcher.
func (t *Terminal) Close() {
	t.mu.Lock()
	sub, detach := t.subscription, t.detach
	t.subscription, t.detach = nil, nil
	t.generation++
	for id, ch := range t.watchers {
		delete(t.watchers, id)
		close(ch)
	}
	t.mu.Unlock()

	if detach != nil {
		detach()
	}
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (t *Terminal) connectedIdentity() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusConnected || t.identity == "" {
		t.setNoticeLocked(NoticeError, "Not connected. Please wait.")
		return "", ErrNotConnected
	}
	return t.identity, nil
}

func (t *Terminal) setNotice(kind NoticeKind, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setNoticeLocked(kind, message)
}

func (t *Terminal) setNoticeLocked(kind NoticeKind, message string) {
	t.notice = &Notice{Kind: kind, Message: message, At: t.now()}
}

// offer replaces any unread snapshot in ch. Callers hold t.mu, so they are the only sender.
func offer(ch chan []menudomain.MenuItem, items []menudomain.MenuItem) {
	select {
	case ch <- items:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- items
}
