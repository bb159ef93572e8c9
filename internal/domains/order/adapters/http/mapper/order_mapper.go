package mapper

import (
	orderdomain "github.com/Apurer/restaurant-pos/internal/domains/order/domain"
)

// OrderLine represents one cart line in transport responses.
type OrderLine struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// Order is the transport shape of the current cart.
type Order struct {
	Lines []OrderLine `json:"lines"`
	Total string      `json:"total"`
}

// Change is the transport shape of a change-due calculation.
type Change struct {
	Received  string `json:"received"`
	Total     string `json:"total"`
	ChangeDue string `json:"changeDue"`
}

// FromDomainLines converts cart lines and their total into the transport representation.
// Amounts are rendered with two decimal places.
func FromDomainLines(lines []orderdomain.Line, total orderdomain.Amount) Order {
	out := Order{Lines: make([]OrderLine, 0, len(lines)), Total: total.StringFixed(2)}
	for _, line := range lines {
		out.Lines = append(out.Lines, OrderLine{
			ItemID:   line.Item.ID,
			Name:     line.Item.Name,
			Price:    orderdomain.AmountFromFloat(line.Item.Price).StringFixed(2),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal().StringFixed(2),
		})
	}
	return out
}

// FromDomainChange renders a change-due calculation.
func FromDomainChange(received string, total, change orderdomain.Amount) Change {
	return Change{
		Received:  received,
		Total:     total.StringFixed(2),
		ChangeDue: change.StringFixed(2),
	}
}
