package identity

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler exposes the reference backend over HTTP, mirroring the contract the
// Client dials. Mounted in-process when backend.embedded is set, or deployed
// standalone.
type Handler struct {
	service *Service
}

// NewHandler constructs the backend handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes binds the backend endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.login)
	r.GET("/auth/verify", h.verify)
	r.POST("/impersonation/start", h.startImpersonation)
	r.POST("/impersonation/end", h.endImpersonation)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorPayload{Error: "invalid login payload"})
		return
	}

	cred, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCredentialPayload(cred))
}

func (h *Handler) verify(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorPayload{Error: "missing bearer token"})
		return
	}

	user, err := h.service.Verify(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserPayload(user))
}

func (h *Handler) startImpersonation(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorPayload{Error: "missing bearer token"})
		return
	}

	var req impersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetUserID == "" {
		c.JSON(http.StatusBadRequest, errorPayload{Error: "invalid impersonation payload"})
		return
	}

	cred, err := h.service.StartImpersonation(c.Request.Context(), token, req.TargetUserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCredentialPayload(cred))
}

func (h *Handler) endImpersonation(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorPayload{Error: "missing bearer token"})
		return
	}

	cred, err := h.service.EndImpersonation(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCredentialPayload(cred))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorPayload{Error: ErrInvalidCredentials.Error()})
	case errors.Is(err, ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, errorPayload{Error: ErrInvalidToken.Error()})
	case errors.Is(err, ErrUserDisabled):
		c.JSON(http.StatusForbidden, errorPayload{Error: ErrUserDisabled.Error()})
	case errors.Is(err, ErrImpersonationDenied):
		c.JSON(http.StatusForbidden, errorPayload{Error: ErrImpersonationDenied.Error()})
	case errors.Is(err, ErrNoImpersonation):
		c.JSON(http.StatusConflict, errorPayload{Error: ErrNoImpersonation.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}
