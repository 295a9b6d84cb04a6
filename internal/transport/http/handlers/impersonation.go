package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/dispatch-console-auth/internal/infra/telemetry"
	"github.com/arklim/dispatch-console-auth/internal/transport/http/middleware"
	"github.com/arklim/dispatch-console-auth/internal/usecase"
)

// ImpersonationHandler exposes the super-admin impersonation sub-protocol.
type ImpersonationHandler struct {
	registry  *usecase.TabRegistry
	telemetry *telemetry.Provider
}

// NewImpersonationHandler constructs ImpersonationHandler.
func NewImpersonationHandler(registry *usecase.TabRegistry, provider *telemetry.Provider) *ImpersonationHandler {
	return &ImpersonationHandler{registry: registry, telemetry: provider}
}

// RegisterRoutes binds impersonation routes.
func (h *ImpersonationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/start", h.start)
	r.POST("/return", h.end)
	r.GET("/banner", h.banner)
}

func (h *ImpersonationHandler) start(c *gin.Context) {
	var req ImpersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Target.ID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid impersonation payload"))
		return
	}

	tab := h.registry.Get(middleware.GetTabID(c))

	if err := tab.Impersonation.Start(c.Request.Context(), req.Target.toDomain()); err != nil {
		h.telemetry.ObserveImpersonation("start", "failure")
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotSuperAdmin, Status: http.StatusForbidden, Message: usecase.ErrNotSuperAdmin.Error()},
			{Err: usecase.ErrImpersonateSuperAdmin, Status: http.StatusForbidden, Message: usecase.ErrImpersonateSuperAdmin.Error()},
		}, http.StatusBadGateway, "impersonation start failed")
		return
	}

	h.telemetry.ObserveImpersonation("start", "success")

	state := tab.Auth.State()
	resp := ImpersonateResponse{RedirectTo: usecase.PathAdmin}
	if state.User != nil {
		resp.User = newUserSummary(*state.User)
		resp.RedirectTo = usecase.HomePath(state.User.Role)
	}
	c.JSON(http.StatusOK, resp)
}

// end exits impersonation. A backend failure still returns 200: the fallback
// navigation target carries the return-to-admin marker and the operator is
// never stranded in the assumed identity.
func (h *ImpersonationHandler) end(c *gin.Context) {
	tab := h.registry.Get(middleware.GetTabID(c))

	result, err := tab.Impersonation.Return(c.Request.Context())
	if err != nil {
		h.telemetry.ObserveImpersonation("return", "failure")
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotImpersonating, Status: http.StatusConflict, Message: usecase.ErrNotImpersonating.Error()},
		}, http.StatusInternalServerError, "impersonation return failed")
		return
	}

	if result.Graceful {
		h.telemetry.ObserveImpersonation("return", "success")
	} else {
		h.telemetry.ObserveImpersonation("return", "fallback")
	}

	c.JSON(http.StatusOK, ImpersonationReturnResponse{
		NavigateTo: result.NavigateTo,
		Graceful:   result.Graceful,
	})
}

func (h *ImpersonationHandler) banner(c *gin.Context) {
	tab := h.registry.Get(middleware.GetTabID(c))

	ictx, ok := tab.Impersonation.Context(c.Request.Context())
	if !ok {
		c.JSON(http.StatusOK, BannerResponse{Show: false})
		return
	}

	original := newUserSummary(ictx.OriginalUser)
	current := newUserSummary(ictx.CurrentUser)
	c.JSON(http.StatusOK, BannerResponse{
		Show:         tab.Impersonation.ShouldShowBackToSuperAdmin(c.Request.Context()),
		OriginalUser: &original,
		CurrentUser:  &current,
	})
}
