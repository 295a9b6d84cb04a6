package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the operator view returned by the API.
type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Department: user.Department,
	}
}

func (s UserSummary) toDomain() domain.User {
	return domain.User{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Role:       domain.Role(s.Role),
		Department: s.Department,
	}
}

// BootstrapRequest carries the tab's initial location.
type BootstrapRequest struct {
	Location string `json:"location" binding:"required"`
}

// BootstrapResponse reports the bootstrap classification for the tab.
type BootstrapResponse struct {
	Outcome string `json:"outcome"`
}

// AuthStateResponse is the tab's current auth state snapshot.
type AuthStateResponse struct {
	Status string       `json:"status"`
	User   *UserSummary `json:"user,omitempty"`
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	User       UserSummary `json:"user"`
	RedirectTo string      `json:"redirect_to"`
}

// GuardRequest asks for a routing decision on a path.
type GuardRequest struct {
	Path string `json:"path" binding:"required"`
}

// GuardResponse reports the route guard's decision.
type GuardResponse struct {
	Action        string   `json:"action"`
	RedirectTo    string   `json:"redirect_to,omitempty"`
	ReturnTo      string   `json:"return_to,omitempty"`
	RequiredRoles []string `json:"required_roles,omitempty"`
	ActualRole    string   `json:"actual_role,omitempty"`
}

// ImpersonateRequest identifies the target operator to assume.
type ImpersonateRequest struct {
	Target UserSummary `json:"target" binding:"required"`
}

// ImpersonateResponse reports the assumed identity and where to navigate.
type ImpersonateResponse struct {
	User       UserSummary `json:"user"`
	RedirectTo string      `json:"redirect_to"`
}

// ImpersonationReturnResponse reports the outcome of an impersonation return.
type ImpersonationReturnResponse struct {
	NavigateTo string `json:"navigate_to"`
	Graceful   bool   `json:"graceful"`
}

// BannerResponse reports whether the back-to-superadmin banner should render.
type BannerResponse struct {
	Show         bool         `json:"show"`
	OriginalUser *UserSummary `json:"original_user,omitempty"`
	CurrentUser  *UserSummary `json:"current_user,omitempty"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes the readiness payload with per-check results.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
