// Server is an example relying party accepting back-channel logout
// requests from a single OpenID Provider. Sessions are kept in memory
// and a Server-Sent Events endpoint notifies browsers about their
// logout, so a fresh checkout is enough to try the flow against e.g. a
// local Keycloak.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/zitadel/logging"

	"github.com/idpkit/backchannel/example/server/config"
	"github.com/idpkit/backchannel/pkg/event"
	httphelper "github.com/idpkit/backchannel/pkg/http"
	"github.com/idpkit/backchannel/pkg/oidc"
	"github.com/idpkit/backchannel/pkg/rp"
	"github.com/idpkit/backchannel/pkg/session"
)

func main() {
	// optional .env file for local development
	_ = godotenv.Load()

	cfg := config.FromEnvVars(&config.Config{
		Port:           config.DefaultPort,
		Route:          rp.DefaultBackChannelLogoutRoute,
		RegistrationID: "keycloak",
	})
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}))

	clients := rp.NewStaticClientRegistry(&rp.ClientRegistration{
		RegistrationID: cfg.RegistrationID,
		ClientID:       cfg.ClientID,
		Issuer:         cfg.Issuer,
		JWKSURL:        cfg.JWKSURL,
	})
	sessions := session.NewInMemoryRegistry()
	broadcaster := event.NewBroadcaster()
	logout := rp.NewBackChannelLogoutHandler(clients, sessions, broadcaster,
		rp.WithRoute(cfg.Route),
		rp.WithLogger(logger),
	)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.ToContext(r.Context(), logger)))
		})
	})

	// fake login, use it to seat a session before triggering a
	// provider logout
	router.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
		principal := session.Claims{}
		if sub := r.FormValue("sub"); sub != "" {
			principal[oidc.ClaimSubject] = sub
		}
		if sid := r.FormValue("sid"); sid != "" {
			principal[oidc.ClaimSessionID] = sid
		}
		info, err := sessions.Register(r.Context(), principal, "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		httphelper.MarshalJSON(w, map[string]string{"session_id": info.SessionID})
	})

	// browsers subscribe here to learn about their logout
	sse := cors.AllowAll().Handler(event.SubscriptionHandler(broadcaster, principalFromQuery))
	router.Handle("/events", sse)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: logout.Middleware(router),
	}
	logger.Info("example relying party is listening", "port", cfg.Port, "route", cfg.Route)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// principalFromQuery identifies the subscriber by sub and sid query
// parameters. A real application resolves the principal from its
// authenticated session instead.
func principalFromQuery(r *http.Request) (session.Principal, error) {
	principal := session.Claims{}
	if sub := r.URL.Query().Get("sub"); sub != "" {
		principal[oidc.ClaimSubject] = sub
	}
	if sid := r.URL.Query().Get("sid"); sid != "" {
		principal[oidc.ClaimSessionID] = sid
	}
	if len(principal) == 0 {
		return nil, errors.New("missing sub or sid query parameter")
	}
	return principal, nil
}
