package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/dispatch-console-auth/internal/identity"
	"github.com/arklim/dispatch-console-auth/internal/infra/telemetry"
	"github.com/arklim/dispatch-console-auth/internal/transport/http/middleware"
	"github.com/arklim/dispatch-console-auth/internal/usecase"
)

// AuthHandler exposes login and logout for the calling tab.
type AuthHandler struct {
	registry  *usecase.TabRegistry
	telemetry *telemetry.Provider
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(registry *usecase.TabRegistry, provider *telemetry.Provider) *AuthHandler {
	return &AuthHandler{registry: registry, telemetry: provider}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}

	r.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	tab := h.registry.Get(middleware.GetTabID(c))

	user, err := tab.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.telemetry.ObserveLogin("failure")
		h.respondLoginError(c, err)
		return
	}

	h.telemetry.ObserveLogin("success")
	c.JSON(http.StatusOK, AuthLoginResponse{
		User:       newUserSummary(user),
		RedirectTo: usecase.HomePath(user.Role),
	})
}

// respondLoginError keeps backend rejection messages intact so the operator
// sees exactly what the backend said.
func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmailRequired), errors.Is(err, usecase.ErrPasswordRequired):
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	var backendErr *identity.BackendError
	if errors.As(err, &backendErr) {
		status := backendErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusUnauthorized
		}
		c.JSON(status, NewErrorResponse(c, backendErr.Error()))
		return
	}

	c.JSON(http.StatusUnauthorized, NewErrorResponse(c, err.Error()))
}

func (h *AuthHandler) logout(c *gin.Context) {
	tab := h.registry.Get(middleware.GetTabID(c))
	tab.Auth.Logout(c.Request.Context())

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}
