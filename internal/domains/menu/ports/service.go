package ports

import (
	"context"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
)

// SubscriptionState enumerates the lifecycle of a menu subscription.
type SubscriptionState string

const (
	StateUnsubscribed SubscriptionState = "unsubscribed"
	StateSubscribing  SubscriptionState = "subscribing"
	StateStreaming    SubscriptionState = "streaming"
	StateSeeding      SubscriptionState = "seeding"
	StateError        SubscriptionState = "error"
)

// Subscription is a cancellable handle on a live menu feed.
type Subscription interface {
	// Unsubscribe stops delivery; no callback runs after it returns.
	Unsubscribe()
	State() SubscriptionState
}

// Service exposes the menu synchronization use cases to adapters.
type Service interface {
	Subscribe(identity string, onItems func([]domain.MenuItem), onError func(error)) Subscription
	AddItem(ctx context.Context, identity, name string, price float64) error
	DeleteItem(ctx context.Context, identity, itemID string) error
}
