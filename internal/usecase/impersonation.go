package usecase

import (
	"context"
	"errors"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
)

var (
	// ErrNotSuperAdmin indicates impersonation was requested by a user who is
	// not a super-admin.
	ErrNotSuperAdmin = errors.New("impersonation requires a super-admin")
	// ErrImpersonateSuperAdmin indicates the impersonation target is itself a
	// super-admin, which is disallowed.
	ErrImpersonateSuperAdmin = errors.New("cannot impersonate a super-admin")
	// ErrNotImpersonating indicates a return was requested with no active
	// impersonation context.
	ErrNotImpersonating = errors.New("no active impersonation")
)

// ReturnResult tells the caller where to navigate after an impersonation
// return. Graceful is false when the backend flow failed and the hard
// return-to-admin fallback was taken.
type ReturnResult struct {
	NavigateTo string
	Graceful   bool
}

// ImpersonationController manages the enter/exit sub-protocol on top of the
// auth state store. State machine: Idle -> Impersonating -> Idle.
type ImpersonationController struct {
	tabID    string
	auth     *AuthStateStore
	durable  port.DurableStore
	identity port.IdentityProvider
	audit    port.AuditPublisher
	log      *zap.Logger
	now      func() time.Time

	signal *Debouncer
	onSync func()
}

// NewImpersonationController wires the controller for one tab.
func NewImpersonationController(tabID string, auth *AuthStateStore, durable port.DurableStore, identity port.IdentityProvider, audit port.AuditPublisher, log *zap.Logger) *ImpersonationController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImpersonationController{
		tabID:    tabID,
		auth:     auth,
		durable:  durable,
		identity: identity,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// WithNavigationSync registers the callback invoked after every broadcast and
// after debounced history-navigation re-checks. The delay gives storage
// writes time to complete before state is re-read.
func (c *ImpersonationController) WithNavigationSync(delay time.Duration, onSync func()) *ImpersonationController {
	c.signal = NewDebouncer(delay)
	c.onSync = onSync
	return c
}

// Start applies an externally initiated impersonation: the current
// super-admin assumes the target identity. The backend mints the target
// credential; the durable identity fields are swapped so the whole app,
// including the route guard, sees the impersonated role.
func (c *ImpersonationController) Start(ctx context.Context, target domain.User) error {
	state := c.auth.State()
	if state.User == nil || state.User.Role != domain.RoleSuperAdmin {
		return ErrNotSuperAdmin
	}
	if target.Role == domain.RoleSuperAdmin {
		return ErrImpersonateSuperAdmin
	}

	cred, err := c.identity.StartImpersonation(ctx, state.Token, target.ID)
	if err != nil {
		return err
	}

	ictx := domain.ImpersonationContext{
		IsImpersonating: true,
		OriginalUser:    *state.User,
		CurrentUser:     cred.User,
	}
	if err := ictx.Validate(); err != nil {
		return err
	}

	raw, err := domain.EncodeImpersonationContext(ictx)
	if err != nil {
		return err
	}
	if err := c.durable.Set(ctx, port.KeyImpersonation, raw); err != nil {
		return err
	}

	c.auth.ApplyCredential(ctx, cred)
	c.broadcast()
	c.publishStarted(ctx, ictx)

	c.log.Info("impersonation started",
		zap.String("actor_id", ictx.OriginalUser.ID),
		zap.String("target_id", ictx.CurrentUser.ID),
		zap.String("target_role", string(ictx.CurrentUser.Role)),
	)
	return nil
}

// Context returns the active impersonation context, if any. A context that
// fails to parse is treated as absent.
func (c *ImpersonationController) Context(ctx context.Context) (domain.ImpersonationContext, bool) {
	raw, err := c.durable.Get(ctx, port.KeyImpersonation)
	if err != nil {
		return domain.ImpersonationContext{}, false
	}

	ictx, err := domain.DecodeImpersonationContext(raw)
	if err != nil || !ictx.IsImpersonating {
		return domain.ImpersonationContext{}, false
	}
	return ictx, true
}

// ShouldShowBackToSuperAdmin reports whether the persistent banner offering a
// path back to the original identity should render.
func (c *ImpersonationController) ShouldShowBackToSuperAdmin(ctx context.Context) bool {
	ictx, ok := c.Context(ctx)
	if !ok {
		return false
	}
	return ictx.CurrentUser.Role != domain.RoleSuperAdmin
}

// Return ends impersonation. The graceful flow asks the backend to re-mint
// the original super-admin credential; if that fails the caller is directed
// to a hard navigation carrying the return-to-admin marker, so the operator
// is never stranded in an impersonated state.
func (c *ImpersonationController) Return(ctx context.Context) (ReturnResult, error) {
	ictx, ok := c.Context(ctx)
	if !ok {
		return ReturnResult{}, ErrNotImpersonating
	}

	state := c.auth.State()

	cred, err := c.identity.EndImpersonation(ctx, state.Token)
	if err != nil {
		// Fall back to the hard redirect; the bootstrap routine recognizes
		// the marker and leaves storage alone.
		c.clearContext(ctx)
		c.broadcast()
		c.publishEnded(ctx, ictx, false)
		c.log.Warn("graceful impersonation return failed, using fallback", zap.Error(err))
		return ReturnResult{
			NavigateTo: PathSuperAdmin + "?" + ReturnToAdminParam + "=true",
			Graceful:   false,
		}, nil
	}

	c.auth.ApplyCredential(ctx, cred)
	c.clearContext(ctx)
	c.broadcast()
	c.publishEnded(ctx, ictx, true)

	c.log.Info("impersonation ended", zap.String("actor_id", ictx.OriginalUser.ID))
	return ReturnResult{NavigateTo: PathSuperAdmin, Graceful: true}, nil
}

// OnNavigation handles browser history signals (back/forward, fragment
// change). Re-checks are debounced: only the final settled storage value is
// observed.
func (c *ImpersonationController) OnNavigation() {
	if c.signal == nil || c.onSync == nil {
		return
	}
	c.signal.Trigger(c.onSync)
}

// Close tears the controller down; pending debounced re-checks are dropped.
func (c *ImpersonationController) Close() {
	if c.signal != nil {
		c.signal.Stop()
	}
}

func (c *ImpersonationController) broadcast() {
	if c.onSync != nil {
		c.onSync()
	}
}

func (c *ImpersonationController) clearContext(ctx context.Context) {
	if err := c.durable.Delete(ctx, port.KeyImpersonation); err != nil {
		c.log.Warn("delete impersonation context", zap.Error(err))
	}
}

func (c *ImpersonationController) publishStarted(ctx context.Context, ictx domain.ImpersonationContext) {
	if c.audit == nil {
		return
	}
	event := domain.ImpersonationStartedEvent{
		EventID:    uuid.NewString(),
		TabID:      c.tabID,
		ActorID:    ictx.OriginalUser.ID,
		TargetID:   ictx.CurrentUser.ID,
		TargetRole: string(ictx.CurrentUser.Role),
		At:         c.now().UTC(),
	}
	if err := c.audit.PublishImpersonationStarted(ctx, event); err != nil {
		c.log.Warn("publish impersonation started", zap.Error(err))
	}
}

func (c *ImpersonationController) publishEnded(ctx context.Context, ictx domain.ImpersonationContext, graceful bool) {
	if c.audit == nil {
		return
	}
	event := domain.ImpersonationEndedEvent{
		EventID:  uuid.NewString(),
		TabID:    c.tabID,
		ActorID:  ictx.OriginalUser.ID,
		TargetID: ictx.CurrentUser.ID,
		Graceful: graceful,
		At:       c.now().UTC(),
	}
	if err := c.audit.PublishImpersonationEnded(ctx, event); err != nil {
		c.log.Warn("publish impersonation ended", zap.Error(err))
	}
}
