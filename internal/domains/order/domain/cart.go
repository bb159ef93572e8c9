package domain

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
)

// Amount is an exact decimal money value.
type Amount = decimal.Decimal

// AmountFromFloat converts a stored menu price into an exact amount.
func AmountFromFloat(price float64) Amount {
	return decimal.NewFromFloat(price)
}

// Line pairs the menu item snapshot taken when it was last added with a quantity.
type Line struct {
	Item     menudomain.MenuItem
	Quantity int
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return AmountFromFloat(l.Item.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the local order being rung up. It performs no I/O, never fails, and
// is not safe for concurrent use.
type Cart struct {
	lines map[string]*Line
}

func NewCart() *Cart {
	return &Cart{lines: map[string]*Line{}}
}

// Add counts one more unit of item. A repeat add replaces the stored snapshot
// so the line reflects the latest name and price.
func (c *Cart) Add(item menudomain.MenuItem) {
	if item.ID == "" {
		return
	}
	c.ensure()
	if line, ok := c.lines[item.ID]; ok {
		line.Quantity++
		line.Item = item
		return
	}
	c.lines[item.ID] = &Line{Item: item, Quantity: 1}
}

// Remove takes away one unit, deleting the line when it reaches zero.
func (c *Cart) Remove(itemID string) {
	line, ok := c.lines[itemID]
	if !ok {
		return
	}
	if line.Quantity > 1 {
		line.Quantity--
		return
	}
	delete(c.lines, itemID)
}

// Drop deletes the whole line for itemID and reports whether one existed.
func (c *Cart) Drop(itemID string) bool {
	if _, ok := c.lines[itemID]; !ok {
		return false
	}
	delete(c.lines, itemID)
	return true
}

func (c *Cart) Clear() {
	c.lines = map[string]*Line{}
}

// Total sums price times quantity over every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ChangeDue is received minus Total. Only the leading number of received
// counts ("12abc" reads as 12, "1,50" as 1); input without one, or beyond
// float64 range, yields zero. The result may be negative.
func (c *Cart) ChangeDue(received string) decimal.Decimal {
	amount, ok := parseLeadingAmount(received)
	if !ok {
		return decimal.Zero
	}
	return amount.Sub(c.Total())
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func parseLeadingAmount(raw string) (decimal.Decimal, bool) {
	prefix := leadingNumber.FindString(strings.TrimSpace(raw))
	if prefix == "" {
		return decimal.Zero, false
	}
	// Underflow reports ErrRange with a finite result; only overflow is rejected.
	f, _ := strconv.ParseFloat(prefix, 64)
	if math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.NewFromFloat(f), true
	}
	return amount, true
}

// Lines returns a copy of every line ordered by item name, then id.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Item.Name != lines[j].Item.Name {
			return lines[i].Item.Name < lines[j].Item.Name
		}
		return lines[i].Item.ID < lines[j].Item.ID
	})
	return lines
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Quantity returns the units of itemID in the cart.
func (c *Cart) Quantity(itemID string) int {
	if line, ok := c.lines[itemID]; ok {
		return line.Quantity
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) ensure() {
	if c.lines == nil {
		c.lines = map[string]*Line{}
	}
}
