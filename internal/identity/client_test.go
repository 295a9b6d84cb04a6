package identity

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

// newBackendPair serves the reference backend over httptest and returns a
// client dialing it, exercising both sides of the wire contract.
func newBackendPair(t *testing.T) *Client {
	t.Helper()

	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)

	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/backend/v1"))

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return NewClient(config.BackendSettings{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func TestClientLoginRoundTrip(t *testing.T) {
	client := newBackendPair(t)

	cred, err := client.Login(context.Background(), "dep@example.com", "dep-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if cred.User.ID != "d-1" || cred.User.Role != domain.RoleDepartment {
		t.Fatalf("unexpected user: %+v", cred.User)
	}
	if cred.User.Department != "fire" {
		t.Fatalf("expected department carried over the wire, got %q", cred.User.Department)
	}
}

func TestClientLoginSurfacesBackendMessageVerbatim(t *testing.T) {
	client := newBackendPair(t)

	_, err := client.Login(context.Background(), "dep@example.com", "wrong")
	if err == nil {
		t.Fatalf("expected login failure")
	}

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %T", err)
	}
	if backendErr.Error() != ErrInvalidCredentials.Error() {
		t.Fatalf("expected backend message verbatim, got %q", backendErr.Error())
	}
}

func TestClientVerify(t *testing.T) {
	client := newBackendPair(t)
	ctx := context.Background()

	cred, err := client.Login(ctx, "dep@example.com", "dep-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user, err := client.Verify(ctx, cred.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "d-1" {
		t.Fatalf("expected d-1, got %s", user.ID)
	}
}

func TestClientVerifyRejectsBadToken(t *testing.T) {
	client := newBackendPair(t)

	_, err := client.Verify(context.Background(), "garbage")
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if backendErr.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", backendErr.StatusCode)
	}
}

func TestClientImpersonationRoundTrip(t *testing.T) {
	client := newBackendPair(t)
	ctx := context.Background()

	super, err := client.Login(ctx, "root@example.com", "super-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	assumed, err := client.StartImpersonation(ctx, super.Token, "d-1")
	if err != nil {
		t.Fatalf("start impersonation: %v", err)
	}
	if assumed.User.Role != domain.RoleDepartment {
		t.Fatalf("expected department role, got %s", assumed.User.Role)
	}

	restored, err := client.EndImpersonation(ctx, assumed.Token)
	if err != nil {
		t.Fatalf("end impersonation: %v", err)
	}
	if restored.User.Role != domain.RoleSuperAdmin {
		t.Fatalf("expected super-admin restored, got %s", restored.User.Role)
	}
}
