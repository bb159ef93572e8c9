package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	orderdomain "github.com/Apurer/restaurant-pos/internal/domains/order/domain"
)

func TestFromDomainLines_FormatsAmounts(t *testing.T) {
	cart := orderdomain.NewCart()
	cart.Add(menudomain.MenuItem{ID: "a", Name: "Soda", Price: 1.5})
	cart.Add(menudomain.MenuItem{ID: "a", Name: "Soda", Price: 1.5})

	order := FromDomainLines(cart.Lines(), cart.Total())
	require.Len(t, order.Lines, 1)
	assert.Equal(t, OrderLine{ItemID: "a", Name: "Soda", Price: "1.50", Quantity: 2, Subtotal: "3.00"}, order.Lines[0])
	assert.Equal(t, "3.00", order.Total)
}

func TestFromDomainLines_EmptyCartHasNoLines(t *testing.T) {
	order := FromDomainLines(nil, orderdomain.AmountFromFloat(0))
	assert.NotNil(t, order.Lines)
	assert.Empty(t, order.Lines)
	assert.Equal(t, "0.00", order.Total)
}
