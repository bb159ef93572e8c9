package domain

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrEmptyName    = errors.New("menu item name must not be empty")
	ErrInvalidPrice = errors.New("menu item price must be a finite number greater than zero")
)

// MenuItem is a stored menu document. Items are never mutated in place; the
// store assigns the ID on create.
type MenuItem struct {
	ID    string
	Name  string
	Price float64
}

// Draft carries the fields written when a menu item is created.
type Draft struct {
	Name  string
	Price float64
}

// NewDraft trims the name and validates the draft.
func NewDraft(name string, price float64) (Draft, error) {
	draft := Draft{Name: strings.TrimSpace(name), Price: price}
	if err := draft.Validate(); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// Validate enforces the creation invariants.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(d.Price) || math.IsInf(d.Price, 0) || d.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Item attaches a store-assigned identifier to the draft.
func (d Draft) Item(id string) MenuItem {
	return MenuItem{ID: id, Name: d.Name, Price: d.Price}
}

// CloneItems returns a copy of the slice so callers cannot alias store state.
func CloneItems(items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out
}
