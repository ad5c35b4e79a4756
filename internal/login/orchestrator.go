package login

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jcallaghan/sessionlink/internal/bridge"
	"github.com/jcallaghan/sessionlink/internal/credentials"
	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/session"
	"github.com/jcallaghan/sessionlink/internal/storage"
)

// State identifies where the login flow currently is
type State string

const (
	StateInit           State = "init"
	StateForcedRedirect State = "forced_redirect"
	StateInteractive    State = "interactive"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateFailed         State = "failed"
)

// transitions lists the allowed state changes. Authenticated is
// terminal for this flow; Failed allows retry through Interactive.
var transitions = map[State]map[State]struct{}{
	StateInit: {
		StateForcedRedirect: {},
		StateInteractive:    {},
	},
	StateInteractive: {
		StateAuthenticating: {},
		StateAuthenticated:  {},
	},
	StateAuthenticating: {
		StateAuthenticated: {},
		StateFailed:        {},
	},
	StateFailed: {
		StateInteractive:   {},
		StateAuthenticated: {},
	},
}

// Navigator abstracts the host browsing context: full-page redirects
// that leave the app, and the transition into the authenticated area.
type Navigator interface {
	Redirect(url string)
	EnterApp()
}

// ErrorReporter receives failures that have no form context to attach
// to, such as token logins triggered by the native bridge.
type ErrorReporter interface {
	ReportError(err error)
}

// Gateway is the subset of session exchanges the orchestrator drives
type Gateway interface {
	LoginWithPassword(ctx context.Context, email, password string) (*model.User, error)
	LoginWithToken(ctx context.Context, token string) (*model.User, error)
	IssueLongLivedToken(ctx context.Context) string
}

// HostBridge is the native-host surface the orchestrator needs
type HostBridge interface {
	IsNativeHost() bool
	Send(kind, payload string)
	SubscribeTokens() *bridge.Subscription
}

// Config holds configuration for the orchestrator
type Config struct {
	// OpenIDAuthURL is the identity-provider authorization endpoint
	OpenIDAuthURL string

	// HostName keys the persisted copy of relayed host tokens
	HostName string
}

// DefaultConfig returns default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		OpenIDAuthURL: "/api/session/openid/auth",
		HostName:      "native",
	}
}

// Options wires the orchestrator's collaborators
type Options struct {
	Gateway      Gateway
	Credentials  *credentials.Store
	Bridge       HostBridge
	Sessions     *session.Store
	Capabilities model.Capabilities
	Navigator    Navigator
	Reporter     ErrorReporter

	// Tokens optionally persists relayed host tokens (may be nil)
	Tokens storage.Store

	// Logger is optional; a no-op logger is used when nil
	Logger *slog.Logger

	Config Config
}

// Orchestrator is the state machine tying credentials, gateway, bridge
// and session store together for one login lifecycle. It decides
// forced-OpenID redirect vs interactive form, reacts to native token
// delivery, and commits the authenticated user on any success.
type Orchestrator struct {
	gateway  Gateway
	creds    *credentials.Store
	bridge   HostBridge
	sessions *session.Store
	tokens   storage.Store
	caps     model.Capabilities
	nav      Navigator
	reporter ErrorReporter
	logger   *slog.Logger
	cfg      Config

	mu         sync.Mutex
	state      State
	failed     bool
	redirected bool
	navigated  bool
	inFlight   bool
	sub        *bridge.Subscription

	closeOnce sync.Once
	done      chan struct{}
}

// New creates an orchestrator in the Init state
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	cfg := opts.Config
	if cfg.OpenIDAuthURL == "" {
		cfg.OpenIDAuthURL = DefaultConfig().OpenIDAuthURL
	}
	if cfg.HostName == "" {
		cfg.HostName = DefaultConfig().HostName
	}

	return &Orchestrator{
		gateway:  opts.Gateway,
		creds:    opts.Credentials,
		bridge:   opts.Bridge,
		sessions: opts.Sessions,
		tokens:   opts.Tokens,
		caps:     opts.Capabilities,
		nav:      opts.Navigator,
		reporter: opts.Reporter,
		logger:   logger.With(slog.String("component", "login")),
		cfg:      cfg,
		state:    StateInit,
		done:     make(chan struct{}),
	}
}

// Start activates the flow: signals the native host that the
// authentication screen is up, registers the inbound-token listener,
// and resolves Init into ForcedRedirect or Interactive. Calling Start
// again re-evaluates the redirect but registers nothing twice.
func (o *Orchestrator) Start(ctx context.Context) {
	// Screen-active signal, fire and forget
	o.bridge.Send(bridge.KindAuthentication, "")

	o.mu.Lock()
	if o.sub == nil && !o.closedLocked() {
		o.sub = o.bridge.SubscribeTokens()
		go o.listenTokens(ctx, o.sub)
	}
	o.mu.Unlock()

	if o.EvaluateRedirect() {
		return
	}

	o.mu.Lock()
	if o.state == StateInit {
		o.setStateLocked(StateInteractive)
	}
	o.mu.Unlock()
}

// EvaluateRedirect applies the forced-OpenID policy. It is safe to
// call on every refresh: the redirect is issued at most once per
// lifecycle regardless of how often the flag is re-checked.
func (o *Orchestrator) EvaluateRedirect() bool {
	o.mu.Lock()
	if !o.caps.OpenIDForced || o.closedLocked() {
		o.mu.Unlock()
		return false
	}
	if o.redirected {
		o.mu.Unlock()
		return true
	}
	o.redirected = true
	o.setStateLocked(StateForcedRedirect)
	o.mu.Unlock()

	o.logger.Info("forced OpenID login, redirecting")
	o.nav.Redirect(o.cfg.OpenIDAuthURL)
	return true
}

// SubmitPassword runs the password login path using the current
// credentials. Both submit gestures (button and Enter key) land here;
// while an attempt is in flight, further submissions are dropped so a
// duplicated gesture cannot double-submit.
//
// A rejected login does not propagate as an error: it sets the failed
// flag and clears the password, leaving the email intact for retry.
func (o *Orchestrator) SubmitPassword(ctx context.Context) error {
	email := o.creds.Email(ctx)
	password := o.creds.Password()
	if email == "" || password == "" {
		return model.ErrEmptyCredentials
	}

	o.mu.Lock()
	if o.closedLocked() {
		o.mu.Unlock()
		return model.ErrOrchestratorClosed
	}
	if o.inFlight {
		o.mu.Unlock()
		return nil
	}
	if o.state == StateFailed {
		o.setStateLocked(StateInteractive)
	}
	o.inFlight = true
	o.setStateLocked(StateAuthenticating)
	o.mu.Unlock()

	attemptID := uuid.NewString()
	o.logger.Debug("password login attempt", slog.String("attempt_id", attemptID))

	user, err := o.gateway.LoginWithPassword(ctx, email, password)

	o.mu.Lock()
	o.inFlight = false
	if o.closedLocked() {
		// Late result after teardown, discard
		o.mu.Unlock()
		return nil
	}
	if err != nil {
		o.failed = true
		o.setStateLocked(StateFailed)
		o.mu.Unlock()

		o.creds.ClearPassword()
		o.logger.Info("password login failed",
			slog.String("attempt_id", attemptID),
			slog.String("error", err.Error()))
		return nil
	}
	o.mu.Unlock()

	o.logger.Info("password login succeeded", slog.String("attempt_id", attemptID))
	o.commit(ctx, user, true)
	return nil
}

// SubmitToken runs the token login path. Inbound native tokens arrive
// here independent of form state; the bridge listener routes failures
// to the catch-all reporter since there is no form to attach them to.
func (o *Orchestrator) SubmitToken(ctx context.Context, token string) error {
	if o.isClosed() {
		return model.ErrOrchestratorClosed
	}

	user, err := o.gateway.LoginWithToken(ctx, token)
	if err != nil {
		return err
	}

	o.commit(ctx, user, false)
	return nil
}

// LoginWithOpenID performs the user-initiated identity-provider
// redirect. Unconditional; the provider owns the flow from here on.
func (o *Orchestrator) LoginWithOpenID() {
	o.logger.Info("manual OpenID login, redirecting")
	o.nav.Redirect(o.cfg.OpenIDAuthURL)
}

// Close tears the orchestration instance down: the token subscription
// is removed exactly once, and any late-arriving results are discarded
// instead of committed. Safe to call from any exit path.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		sub := o.sub
		o.sub = nil
		close(o.done)
		o.mu.Unlock()

		if sub != nil {
			sub.Cancel()
		}
		o.logger.Debug("orchestrator closed")
	})
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Failed reports whether the last password attempt was rejected
func (o *Orchestrator) Failed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failed
}

// Capabilities returns the server-capability snapshot the flow was
// started with
func (o *Orchestrator) Capabilities() model.Capabilities {
	return o.caps
}

// listenTokens feeds inbound host tokens into the token login path
// until the subscription is cancelled or the orchestrator closes
func (o *Orchestrator) listenTokens(ctx context.Context, sub *bridge.Subscription) {
	for {
		select {
		case token, ok := <-sub.Tokens():
			if !ok {
				return
			}
			o.logger.Debug("token received from native host")
			if err := o.SubmitToken(ctx, token); err != nil {
				o.reporter.ReportError(err)
			}
		case <-o.done:
			return
		}
	}
}

// commit reconciles a successful exchange into shared session state.
// Concurrent successes may race here: last write wins for the session
// store, and only the first success navigates. When reissue is set,
// the long-lived-token side effect runs as a detached task strictly
// after the navigation, and its outcome is discarded.
func (o *Orchestrator) commit(ctx context.Context, user *model.User, reissue bool) {
	o.mu.Lock()
	if o.closedLocked() {
		o.mu.Unlock()
		return
	}
	o.sessions.SetUser(user)
	first := !o.navigated
	o.navigated = true
	o.failed = false
	if o.state != StateAuthenticated {
		o.setStateLocked(StateAuthenticated)
	}
	o.mu.Unlock()

	if first {
		o.nav.EnterApp()
	}

	if reissue {
		go o.relayLoginToken(context.WithoutCancel(ctx))
	}
}

// relayLoginToken issues a long-lived token and relays it to the
// native host. Issuance is best-effort: an empty token means skip the
// relay entirely, never an error.
func (o *Orchestrator) relayLoginToken(ctx context.Context) {
	if !o.bridge.IsNativeHost() {
		return
	}

	token := o.gateway.IssueLongLivedToken(ctx)
	if token == "" {
		o.logger.Debug("no long-lived token issued, skipping relay")
		return
	}

	o.bridge.Send(bridge.KindLogin, token)

	if o.tokens != nil {
		if err := o.tokens.SaveHostToken(ctx, o.cfg.HostName, token); err != nil {
			o.logger.Warn("could not persist host token", slog.String("error", err.Error()))
		}
	}
}

func (o *Orchestrator) setStateLocked(to State) {
	from := o.state
	if from == to {
		return
	}
	if allowed, ok := transitions[from]; ok {
		if _, exists := allowed[to]; !exists {
			o.logger.Warn("unexpected state transition",
				slog.String("from", string(from)),
				slog.String("to", string(to)))
		}
	}
	o.state = to
	o.logger.Debug("state change",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
}

func (o *Orchestrator) closedLocked() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closedLocked()
}
