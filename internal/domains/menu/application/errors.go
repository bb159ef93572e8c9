package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
)

var (
	// ErrInvalidInput signals a bad name, price, identity or id. The store is never contacted.
	ErrInvalidInput = errors.New("invalid menu input")
	// ErrDuplicateItem signals that an item with the same name already exists.
	ErrDuplicateItem = errors.New("menu item already exists")
	// ErrStoreFailure wraps any remote read or write error.
	ErrStoreFailure = errors.New("menu store failure")
	// ErrSubscription wraps the error that terminated a subscription.
	ErrSubscription = errors.New("menu subscription failed")
	// ErrMissingItemID is returned when a delete names no item.
	ErrMissingItemID = errors.New("menu item id must not be empty")
)

// DuplicateItemError names the item that blocked a create.
type DuplicateItemError struct {
	Name   string
	ItemID string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("menu item %q already exists", e.Name)
}

func (e *DuplicateItemError) Is(target error) bool {
	return target == ErrDuplicateItem
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrEmptyOwner) ||
		errors.Is(err, ErrMissingItemID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func storeFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
