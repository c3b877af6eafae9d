package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRegistry is a Registry keeping all session information in
// process memory. It is safe for concurrent use.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Information
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		sessions: make(map[string]*Information),
	}
}

// Register tracks a new session for the given principal. An empty
// sessionID generates a fresh one. The registered session information
// is returned.
func (r *InMemoryRegistry) Register(ctx context.Context, principal Principal, sessionID string) (*Information, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	info := &Information{
		SessionID:   sessionID,
		Principal:   principal,
		LastRequest: time.Now(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = info
	return info, nil
}

// AllPrincipals implements Registry. Principals sharing the same
// identity per Equal are reported once.
func (r *InMemoryRegistry) AllPrincipals(ctx context.Context) ([]Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var principals []Principal
	for _, info := range r.sessions {
		if info.Expired || containsPrincipal(principals, info.Principal) {
			continue
		}
		principals = append(principals, info.Principal)
	}
	return principals, nil
}

// Sessions implements Registry.
func (r *InMemoryRegistry) Sessions(ctx context.Context, principal Principal) ([]*Information, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*Information
	for _, info := range r.sessions {
		if info.Expired || !Equal(info.Principal, principal) {
			continue
		}
		sessions = append(sessions, copyInformation(info))
	}
	return sessions, nil
}

// Expire implements Registry.
func (r *InMemoryRegistry) Expire(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.sessions[sessionID]; ok {
		info.Expired = true
	}
	return nil
}

// IsExpired reports whether the session with the given ID is unknown
// or was set to expire.
func (r *InMemoryRegistry) IsExpired(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.sessions[sessionID]
	return !ok || info.Expired
}

func containsPrincipal(principals []Principal, principal Principal) bool {
	for _, p := range principals {
		if Equal(p, principal) {
			return true
		}
	}
	return false
}

func copyInformation(info *Information) *Information {
	c := *info
	return &c
}
