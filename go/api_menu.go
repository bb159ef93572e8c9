package posserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	menuhttpmapper "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/http/mapper"
	terminalapp "github.com/Apurer/restaurant-pos/internal/domains/terminal/application"
)

// MenuAPI exposes the live menu of the terminal.
type MenuAPI struct {
	terminal *terminalapp.Terminal
}

func NewMenuAPI(terminal *terminalapp.Terminal) MenuAPI {
	return MenuAPI{terminal: terminal}
}

// Get /v1/menu
// Lists the current menu snapshot
func (api *MenuAPI) ListMenu(c *gin.Context) {
	c.JSON(http.StatusOK, menuhttpmapper.FromDomainItems(api.terminal.Menu()))
}

// Get /v1/menu/stream
// Streams menu snapshots as server-sent events
func (api *MenuAPI) StreamMenu(c *gin.Context) {
	updates := api.terminal.Watch(c.Request.Context())
	c.Stream(func(w io.Writer) bool {
		items, ok := <-updates
		if !ok {
			return false
		}
		c.SSEvent("menu", menuhttpmapper.FromDomainItems(items))
		return true
	})
}

// Post /v1/menu
// Adds an item to the menu
func (api *MenuAPI) AddMenuItem(c *gin.Context) {
	var payload menuhttpmapper.AddMenuItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := api.terminal.AddMenuItem(c.Request.Context(), payload.Name, payload.Price); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Delete /v1/menu/:itemId
// Removes an item from the menu and from the order
func (api *MenuAPI) DeleteMenuItem(c *gin.Context) {
	if err := api.terminal.DeleteMenuItem(c.Request.Context(), c.Param("itemId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
