package mapper

import (
	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
)

// MenuItem represents the transport-layer shape of a menu document.
type MenuItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AddMenuItemRequest is the body accepted when creating a menu item.
type AddMenuItemRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// FromDomainItems converts a snapshot into the transport representation.
func FromDomainItems(items []menudomain.MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, MenuItem{ID: item.ID, Name: item.Name, Price: item.Price})
	}
	return out
}
