package posserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	terminalapp "github.com/Apurer/restaurant-pos/internal/domains/terminal/application"
)

// SessionAPI exposes the connection state and the transient notice.
type SessionAPI struct {
	terminal *terminalapp.Terminal
}

func NewSessionAPI(terminal *terminalapp.Terminal) SessionAPI {
	return SessionAPI{terminal: terminal}
}

// Session is the transport shape of the terminal connection.
type Session struct {
	Identity string `json:"identity,omitempty"`
	Status   string `json:"status"`
	Loading  bool   `json:"loading"`
}

// Notice is the transport shape of the transient notice.
type Notice struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Get /v1/session
// Returns the identity and connection status
func (api *SessionAPI) GetSession(c *gin.Context) {
	s := api.terminal.Session()
	c.JSON(http.StatusOK, Session{Identity: s.Identity, Status: string(s.Status), Loading: s.Loading})
}

// Get /v1/notice
// Returns the current notice, or 204 when there is none
func (api *SessionAPI) GetNotice(c *gin.Context) {
	notice, ok := api.terminal.Notice()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, Notice{Kind: string(notice.Kind), Message: notice.Message, At: notice.At})
}

// Delete /v1/notice
// Dismisses the current notice
func (api *SessionAPI) DismissNotice(c *gin.Context) {
	api.terminal.DismissNotice()
	c.Status(http.StatusNoContent)
}
