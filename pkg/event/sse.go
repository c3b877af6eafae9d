package event

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/zitadel/logging"

	"github.com/idpkit/backchannel/pkg/session"
)

// PrincipalResolver resolves the authenticated principal of a
// subscription request, typically from the request's session cookie or
// bearer token.
type PrincipalResolver func(r *http.Request) (session.Principal, error)

// SubscriptionHandler serves a Server-Sent Events stream delivering
// one event per logout published for the caller's principal. The
// stream stays open until the client disconnects; disconnecting
// promptly tears the subscription down.
func SubscriptionHandler(broadcaster *Broadcaster, resolve PrincipalResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger, ok := logging.FromContext(r.Context())
		if !ok {
			logger = slog.Default()
		}

		principal, err := resolve(r)
		if err != nil {
			logger.Warn("logout subscription without authenticated principal", "error", err)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sub := broadcaster.Subscribe(principal)
		defer sub.Close()

		for {
			select {
			case <-r.Context().Done():
				return
			case message, ok := <-sub.Messages():
				if !ok {
					return
				}
				data, err := json.Marshal(message)
				if err != nil {
					logger.Error("marshal logout notification", "error", err)
					return
				}
				if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})
}
