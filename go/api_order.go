package posserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/restaurant-pos/internal/domains/order/adapters/http/mapper"
	terminalapp "github.com/Apurer/restaurant-pos/internal/domains/terminal/application"
	apierrors "github.com/Apurer/restaurant-pos/internal/shared/errors"
)

// OrderAPI exposes the local order of the terminal.
type OrderAPI struct {
	terminal *terminalapp.Terminal
}

func NewOrderAPI(terminal *terminalapp.Terminal) OrderAPI {
	return OrderAPI{terminal: terminal}
}

// AddOrderLineRequest names the menu item to add one unit of.
type AddOrderLineRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// Get /v1/order
// Returns the order lines and total
func (api *OrderAPI) GetOrder(c *gin.Context) {
	c.JSON(http.StatusOK, api.currentOrder())
}

// Post /v1/order/lines
// Adds one unit of a menu item to the order
func (api *OrderAPI) AddOrderLine(c *gin.Context) {
	var payload AddOrderLineRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	itemID := strings.TrimSpace(payload.ItemID)
	if err := api.terminal.AddToOrder(itemID); err != nil {
		if errors.Is(err, terminalapp.ErrUnknownItem) {
			respondError(c, apierrors.NewNotFoundProblem("menu item", itemID))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.currentOrder())
}

// Delete /v1/order/lines/:itemId
// Removes one unit of a menu item from the order
func (api *OrderAPI) RemoveOrderLine(c *gin.Context) {
	api.terminal.RemoveFromOrder(c.Param("itemId"))
	c.JSON(http.StatusOK, api.currentOrder())
}

// Delete /v1/order
// Clears the order
func (api *OrderAPI) ClearOrder(c *gin.Context) {
	api.terminal.ClearOrder()
	c.Status(http.StatusNoContent)
}

// Get /v1/order/change
// Calculates the change due for the received amount
func (api *OrderAPI) GetChange(c *gin.Context) {
	received := c.Query("received")
	total, change := api.terminal.ChangeDue(received)
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainChange(received, total, change))
}

func (api *OrderAPI) currentOrder() orderhttpmapper.Order {
	lines, total := api.terminal.Order()
	return orderhttpmapper.FromDomainLines(lines, total)
}
