package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/dispatch-console-auth/internal/infra/telemetry"
	"github.com/arklim/dispatch-console-auth/internal/transport/http/middleware"
	"github.com/arklim/dispatch-console-auth/internal/usecase"
)

// GuardHandler exposes the route guard decision endpoint.
type GuardHandler struct {
	registry  *usecase.TabRegistry
	telemetry *telemetry.Provider
}

// NewGuardHandler constructs GuardHandler.
func NewGuardHandler(registry *usecase.TabRegistry, provider *telemetry.Provider) *GuardHandler {
	return &GuardHandler{registry: registry, telemetry: provider}
}

// RegisterRoutes binds guard routes.
func (h *GuardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/decide", h.decide)
}

// decide evaluates the tab's auth state against the requested path and
// returns render, redirect, or suspend. Unresolved states suspend rather
// than redirect so a slow credential check never bounces an operator who
// is about to be confirmed.
func (h *GuardHandler) decide(c *gin.Context) {
	var req GuardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid guard payload"))
		return
	}

	tab := h.registry.Get(middleware.GetTabID(c))
	decision := usecase.Decide(tab.Auth.State(), routeFor(req.Path))

	h.telemetry.ObserveGuardDecision(string(decision.Action))

	resp := GuardResponse{
		Action:     string(decision.Action),
		RedirectTo: decision.RedirectTo,
		ReturnTo:   decision.ReturnTo,
		ActualRole: string(decision.ActualRole),
	}
	for _, role := range decision.RequiredRoles {
		resp.RequiredRoles = append(resp.RequiredRoles, string(role))
	}

	c.JSON(http.StatusOK, resp)
}

// routeFor resolves the route spec for an arbitrary path. Declared dashboard
// areas carry their allow-lists; the login and unauthorized screens are
// public; everything else requires authentication but admits any role.
func routeFor(path string) usecase.RouteSpec {
	if area, ok := usecase.AreaFor(path); ok {
		return area
	}
	switch path {
	case usecase.PathLogin, usecase.PathUnauthorized:
		return usecase.RouteSpec{Path: path, RequireAuth: false}
	}
	return usecase.RouteSpec{Path: path, RequireAuth: true}
}
