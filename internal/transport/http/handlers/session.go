package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/arklim/dispatch-console-auth/internal/infra/telemetry"
	"github.com/arklim/dispatch-console-auth/internal/transport/http/middleware"
	"github.com/arklim/dispatch-console-auth/internal/usecase"
)

// SessionHandler exposes the per-tab session lifecycle endpoints.
type SessionHandler struct {
	registry  *usecase.TabRegistry
	telemetry *telemetry.Provider
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(registry *usecase.TabRegistry, provider *telemetry.Provider) *SessionHandler {
	return &SessionHandler{registry: registry, telemetry: provider}
}

// RegisterRoutes binds session routes.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/bootstrap", h.bootstrap)
	r.GET("/state", h.state)
	r.DELETE("", h.closeTab)
}

// bootstrap classifies the tab's session start. Runs once per tab; repeat
// calls report the continuing classification without touching storage.
func (h *SessionHandler) bootstrap(c *gin.Context) {
	var req BootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid bootstrap payload"))
		return
	}

	location, err := url.Parse(req.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid location"))
		return
	}

	tab := h.registry.Get(middleware.GetTabID(c))
	outcome := tab.BootstrapOnce(c.Request.Context(), location.Path, location.Query())

	h.telemetry.ObserveBootstrap(string(outcome))
	h.telemetry.SetLiveTabs(h.registry.Len())

	c.JSON(http.StatusOK, BootstrapResponse{Outcome: string(outcome)})
}

// state resolves and returns the tab's auth state. The first call verifies
// any stored credential with the backend; later calls return the cached
// resolution unless a login or logout superseded it.
func (h *SessionHandler) state(c *gin.Context) {
	tab := h.registry.Get(middleware.GetTabID(c))

	state := tab.Auth.State()
	if !state.Status.Resolved() {
		state = tab.Auth.Initialize(c.Request.Context())
	}

	resp := AuthStateResponse{Status: string(state.Status)}
	if state.User != nil {
		summary := newUserSummary(*state.User)
		resp.User = &summary
	}

	c.JSON(http.StatusOK, resp)
}

// closeTab tears down the tab session; its tab-scoped storage dies with it.
func (h *SessionHandler) closeTab(c *gin.Context) {
	h.registry.Close(middleware.GetTabID(c))
	h.telemetry.SetLiveTabs(h.registry.Len())
	c.JSON(http.StatusOK, MessageResponse{Message: "tab session closed"})
}
