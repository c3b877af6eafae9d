package rp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/zitadel/logging"
	"github.com/zitadel/schema"

	"github.com/idpkit/backchannel/pkg/event"
	httphelper "github.com/idpkit/backchannel/pkg/http"
	"github.com/idpkit/backchannel/pkg/oidc"
	"github.com/idpkit/backchannel/pkg/session"
)

const (
	// DefaultBackChannelLogoutRoute is the route pattern the handler
	// intercepts POST requests on. The registrationId parameter selects
	// the client registration the logout token is validated against.
	DefaultBackChannelLogoutRoute = "/logout/back-channel/{registrationId}"

	// RegistrationIDParam is the name of the route parameter carrying
	// the registration ID.
	RegistrationIDParam = "registrationId"

	// LogoutTokenParam is the name of the form parameter carrying the
	// logout token, as required by the Back-Channel Logout
	// specification.
	LogoutTokenParam = "logout_token"
)

type logoutRequest struct {
	LogoutToken string `schema:"logout_token"`
}

// VerifierFactory returns the verifier used for logout tokens of the
// given registration. The default factory verifies signatures against
// the registration's jwks_uri.
type VerifierFactory func(registration *ClientRegistration) *LogoutTokenVerifier

// ErrorHandler answers requests whose logout token could not be
// decoded. Decode failures are not protocol violations by the provider,
// so they are not answered with 400 but surfaced here.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// BackChannelLogoutHandler accepts and processes Back-Channel Logout
// requests sent by the OpenID Provider: it validates the logout token,
// publishes a logout event for every matched principal and expires
// their sessions.
type BackChannelLogoutHandler struct {
	clients     ClientRegistry
	sessions    session.Registry
	broadcaster *event.Broadcaster

	route           string
	decoder         httphelper.Decoder
	verifier        VerifierFactory
	verifierOptions []VerifierOption
	errorHandler    ErrorHandler
	logger          *slog.Logger
	httpClient      *http.Client

	// mu guards keySets
	mu      sync.Mutex
	keySets map[string]oidc.KeySet
}

// HandlerOption configures a BackChannelLogoutHandler.
type HandlerOption func(*BackChannelLogoutHandler)

// WithRoute overwrites DefaultBackChannelLogoutRoute. The pattern
// should contain a {registrationId} parameter; without one, every
// request on the route is answered with 400.
func WithRoute(route string) HandlerOption {
	return func(h *BackChannelLogoutHandler) {
		h.route = route
	}
}

// WithVerifierFactory replaces the verifier construction, e.g. to
// verify against locally provisioned keys instead of the jwks_uri.
func WithVerifierFactory(factory VerifierFactory) HandlerOption {
	return func(h *BackChannelLogoutHandler) {
		h.verifier = factory
	}
}

// WithVerifierOptions passes options to the verifiers built by the
// default factory.
func WithVerifierOptions(options ...VerifierOption) HandlerOption {
	return func(h *BackChannelLogoutHandler) {
		h.verifierOptions = options
	}
}

// WithErrorHandler replaces the handling of token decode failures. The
// default logs the error and answers with 500.
func WithErrorHandler(errorHandler ErrorHandler) HandlerOption {
	return func(h *BackChannelLogoutHandler) {
		h.errorHandler = errorHandler
	}
}

// WithLogger sets the fallback logger used when the request context
// does not carry one. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *BackChannelLogoutHandler) {
		h.logger = logger
	}
}

// WithHTTPClient sets the client used for JWKS calls to the provider.
func WithHTTPClient(client *http.Client) HandlerOption {
	return func(h *BackChannelLogoutHandler) {
		h.httpClient = client
	}
}

// NewBackChannelLogoutHandler returns a handler terminating the
// sessions tracked in the given registry when the provider of one of
// the given client registrations requests a logout.
func NewBackChannelLogoutHandler(clients ClientRegistry, sessions session.Registry, broadcaster *event.Broadcaster, options ...HandlerOption) *BackChannelLogoutHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	h := &BackChannelLogoutHandler{
		clients:     clients,
		sessions:    sessions,
		broadcaster: broadcaster,
		route:       DefaultBackChannelLogoutRoute,
		decoder:     decoder,
		httpClient:  httphelper.DefaultHTTPClient,
		keySets:     make(map[string]oidc.KeySet),
	}
	for _, option := range options {
		option(h)
	}
	if !strings.HasPrefix(h.route, "/") {
		panic("rp: back-channel logout route must be a pattern starting with /, got " + strconv.Quote(h.route))
	}
	if h.verifier == nil {
		h.verifier = h.jwksVerifier
	}
	if h.errorHandler == nil {
		h.errorHandler = h.defaultErrorHandler
	}
	return h
}

// Middleware returns a handler that processes POST requests matching
// the logout route and passes every other request to next unchanged.
func (h *BackChannelLogoutHandler) Middleware(next http.Handler) http.Handler {
	router := chi.NewRouter()
	router.Post(h.route, h.handleLogout)
	router.NotFound(next.ServeHTTP)
	router.MethodNotAllowed(next.ServeHTTP)
	return router
}

// Router returns the handler mounted on its route, answering
// unmatched requests with 404. Use Middleware to embed the handler
// into an existing pipeline instead.
func (h *BackChannelLogoutHandler) Router() chi.Router {
	router := chi.NewRouter()
	router.Post(h.route, h.handleLogout)
	return router
}

func (h *BackChannelLogoutHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := Tracer.Start(r.Context(), "handleLogout")
	defer span.End()
	r = r.WithContext(ctx)

	registrationID := chi.URLParam(r, RegistrationIDParam)
	if registrationID == "" {
		// the route was mounted without a {registrationId} parameter,
		// which is a configuration problem, not a caller fault
		h.requestLogger(ctx).ErrorContext(ctx, "back-channel logout route does not provide a registration id", "route", h.route)
		httphelper.MarshalJSONWithStatus(w, oidc.ErrInvalidRequest().WithDescription("registration id missing"), http.StatusBadRequest)
		return
	}
	logger := h.requestLogger(ctx).With("registration_id", registrationID)

	registration, err := h.clients.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		h.logoutError(w, r, oidc.ErrInvalidRequest().WithParent(err).WithDescription("unknown client registration"))
		return
	}
	token, requestErr := h.parseRequest(r)
	if requestErr != nil {
		h.logoutError(w, r, requestErr)
		return
	}

	verifier := h.verifier(registration)
	claims, err := DecodeLogoutToken(ctx, token, verifier)
	if err != nil {
		h.errorHandler(w, r, err)
		return
	}
	if err := oidc.ValidateLogoutTokenClaims(claims, (*oidc.Verifier)(verifier)); err != nil {
		h.logoutError(w, r, oidc.ErrInvalidRequest().WithParent(err).WithDescription("logout token validation failed"))
		return
	}

	matched, err := h.logout(ctx, claims)
	if err != nil {
		logger.ErrorContext(ctx, "back-channel logout failed", "error", err)
		httphelper.MarshalJSONWithStatus(w, oidc.ErrServerError().WithDescription("logout failed"), http.StatusInternalServerError)
		return
	}
	logger.InfoContext(ctx, "back-channel logout processed", "matched_principals", matched)
	w.WriteHeader(http.StatusOK)
}

// logout publishes a logout event for every principal the token
// addresses and expires their sessions afterwards, so subscribers
// receive the notification while their session is still active. It
// returns the number of matched principals; zero is a valid outcome.
func (h *BackChannelLogoutHandler) logout(ctx context.Context, claims *oidc.LogoutTokenClaims) (int, error) {
	principals, err := h.sessions.AllPrincipals(ctx)
	if err != nil {
		return 0, err
	}
	matched := session.Match(claims, principals)
	for _, principal := range matched {
		h.broadcaster.Publish(principal)
		sessions, err := h.sessions.Sessions(ctx, principal)
		if err != nil {
			return len(matched), err
		}
		for _, information := range sessions {
			if err := h.sessions.Expire(ctx, information.SessionID); err != nil {
				return len(matched), err
			}
		}
	}
	return len(matched), nil
}

func (h *BackChannelLogoutHandler) parseRequest(r *http.Request) (string, *oidc.Error) {
	if err := r.ParseForm(); err != nil {
		return "", oidc.ErrInvalidRequest().WithParent(err).WithDescription("cannot parse form")
	}
	request := new(logoutRequest)
	if err := h.decoder.Decode(request, r.PostForm); err != nil {
		return "", oidc.ErrInvalidRequest().WithParent(err).WithDescription("cannot parse request")
	}
	if request.LogoutToken == "" {
		return "", oidc.ErrInvalidRequest().WithDescription("%s parameter missing", LogoutTokenParam)
	}
	return request.LogoutToken, nil
}

func (h *BackChannelLogoutHandler) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	h.requestLogger(r.Context()).ErrorContext(r.Context(), "logout token could not be decoded", "error", err)
	httphelper.MarshalJSONWithStatus(w, oidc.ErrServerError().WithDescription("logout token could not be decoded"), http.StatusInternalServerError)
}

// logoutError answers a protocol violation by the caller with 400 and
// logs it on warn level, as misbehaving providers are an operational
// concern but not a fault of this application.
func (h *BackChannelLogoutHandler) logoutError(w http.ResponseWriter, r *http.Request, err *oidc.Error) {
	h.requestLogger(r.Context()).WarnContext(r.Context(), "invalid back-channel logout request", "error", err)
	httphelper.MarshalJSONWithStatus(w, err, http.StatusBadRequest)
}

func (h *BackChannelLogoutHandler) requestLogger(ctx context.Context) *slog.Logger {
	if logger, ok := logging.FromContext(ctx); ok {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// jwksVerifier is the default VerifierFactory, verifying signatures
// against the keys published on the registration's jwks_uri. Key sets
// are cached per registration.
func (h *BackChannelLogoutHandler) jwksVerifier(registration *ClientRegistration) *LogoutTokenVerifier {
	h.mu.Lock()
	defer h.mu.Unlock()
	keySet, ok := h.keySets[registration.RegistrationID]
	if !ok {
		keySet = NewRemoteKeySet(h.httpClient, registration.JWKSURL)
		h.keySets[registration.RegistrationID] = keySet
	}
	return NewLogoutTokenVerifier(registration, keySet, h.verifierOptions...)
}
