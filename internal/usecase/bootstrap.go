package usecase

import (
	"context"
	"net/url"
	"strconv"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
)

// ReturnToAdminParam is the URL query marker the impersonation-return
// fallback carries. Bootstrap treats its presence as "do not touch storage".
const ReturnToAdminParam = "returnToAdmin"

// BootstrapOutcome classifies what the bootstrap routine did with the tab.
type BootstrapOutcome string

const (
	// OutcomeReturnToAdmin means the URL carried the return-to-admin marker
	// and bootstrap deliberately left all storage untouched.
	OutcomeReturnToAdmin BootstrapOutcome = "return_to_admin"
	// OutcomeNewSession means no session marker existed; a fresh one was
	// minted and the credential retention policy was applied.
	OutcomeNewSession BootstrapOutcome = "new_session"
	// OutcomeContinuing means a live session marker existed and credentials
	// were left for the auth store to verify.
	OutcomeContinuing BootstrapOutcome = "continuing"
	// OutcomeExpired means the session marker passed the age ceiling; both
	// scopes were cleared and a fresh marker minted.
	OutcomeExpired BootstrapOutcome = "expired"
)

// Bootstrapper runs exactly once per tab, before the first protected render,
// and reconciles the two storage scopes. It never returns an error: every
// corruption or storage failure degrades to "require login".
type Bootstrapper struct {
	durable port.DurableStore
	tab     port.TabStore
	maxAge  time.Duration
	log     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewBootstrapper constructs the once-per-tab bootstrap routine.
func NewBootstrapper(durable port.DurableStore, tab port.TabStore, maxAge time.Duration, log *zap.Logger) *Bootstrapper {
	if log == nil {
		log = zap.NewNop()
	}
	if maxAge <= 0 {
		maxAge = domain.DefaultSessionMaxAge
	}
	return &Bootstrapper{
		durable: durable,
		tab:     tab,
		maxAge:  maxAge,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock injects a custom clock (primarily for testing).
func (b *Bootstrapper) WithClock(now func() time.Time) *Bootstrapper {
	if now != nil {
		b.now = now
	}
	return b
}

// Bootstrap classifies the tab as a new or continuing session and applies
// the storage retention policy for the requested path and query.
func (b *Bootstrapper) Bootstrap(ctx context.Context, path string, query url.Values) BootstrapOutcome {
	if query.Get(ReturnToAdminParam) == "true" {
		// Mid-impersonation-return; credentials are intentionally preserved.
		b.log.Debug("bootstrap skipped for impersonation return", zap.String("path", path))
		return OutcomeReturnToAdmin
	}

	session, ok := b.readSession(ctx)
	if !ok {
		b.startSession(ctx)
		b.applyRetentionPolicy(ctx, path)
		return OutcomeNewSession
	}

	if session.Expired(b.now().UTC(), b.maxAge) {
		// Stale tab: force re-authentication by wiping both scopes.
		if err := b.durable.Clear(ctx); err != nil {
			b.log.Warn("clear durable scope", zap.Error(err))
		}
		if err := b.tab.Clear(ctx); err != nil {
			b.log.Warn("clear tab scope", zap.Error(err))
		}
		b.startSession(ctx)
		b.log.Info("session expired at bootstrap",
			zap.String("session_id", session.ID),
			zap.Duration("max_age", b.maxAge),
		)
		return OutcomeExpired
	}

	// Continuing session: leave credentials untouched; verification is the
	// auth store's job.
	return OutcomeContinuing
}

func (b *Bootstrapper) readSession(ctx context.Context) (domain.Session, bool) {
	id, err := b.tab.Get(ctx, port.KeySessionID)
	if err != nil || id == "" {
		return domain.Session{}, false
	}

	raw, err := b.tab.Get(ctx, port.KeySessionTimestamp)
	if err != nil {
		return domain.Session{}, false
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Unreadable timestamp counts as no session marker at all.
		return domain.Session{}, false
	}

	return domain.Session{ID: id, CreatedAt: time.UnixMilli(millis).UTC()}, true
}

func (b *Bootstrapper) startSession(ctx context.Context) {
	session := domain.Session{ID: b.newID(), CreatedAt: b.now().UTC()}

	if err := b.tab.Set(ctx, port.KeySessionID, session.ID); err != nil {
		b.log.Warn("persist session id", zap.Error(err))
	}
	if err := b.tab.Set(ctx, port.KeySessionTimestamp, strconv.FormatInt(session.CreatedAt.UnixMilli(), 10)); err != nil {
		b.log.Warn("persist session timestamp", zap.Error(err))
	}
}

// applyRetentionPolicy decides, for a brand-new session, whether the durable
// credential pair survives until backend verification or is cleared to force
// a fresh login.
func (b *Bootstrapper) applyRetentionPolicy(ctx context.Context, path string) {
	token, tokenErr := b.durable.Get(ctx, port.KeyToken)
	rawUser, userErr := b.durable.Get(ctx, port.KeyUser)

	if tokenErr != nil && userErr != nil {
		// Nothing stored; nothing to clean.
		return
	}

	pair := domain.Credential{Token: token}
	if userErr == nil {
		user, err := domain.DecodeUser(rawUser)
		if err != nil {
			// Corruption: clear both halves, never surface the error.
			b.clearCredential(ctx)
			b.log.Warn("stored profile corrupted, forcing re-login", zap.Error(err))
			return
		}
		pair.User = user
	}

	if IsDashboardPath(path) && pair.WellFormed() {
		// Optimistic reuse: provisionally trust, then let backend
		// verification confirm or evict.
		return
	}

	b.clearCredential(ctx)
}

func (b *Bootstrapper) clearCredential(ctx context.Context) {
	if err := b.durable.Delete(ctx, port.KeyToken); err != nil {
		b.log.Warn("delete token", zap.Error(err))
	}
	if err := b.durable.Delete(ctx, port.KeyUser); err != nil {
		b.log.Warn("delete user", zap.Error(err))
	}
}
