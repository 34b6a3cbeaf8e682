package session

import (
	"net/http"
)

// Middleware resolves the request's session and, when valid, attaches it to
// the request context. Requests without a valid session pass through
// unauthenticated; downstream handlers decide what that means.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, outcome, err := m.Resolve(r.Context(), w, r)
		if err != nil || outcome != OutcomeValid {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireSession rejects requests without a valid session. The client only
// ever sees 401; the precise reason stays in the audit trail.
func (m *Manager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, outcome, err := m.Resolve(r.Context(), w, r)
		if err != nil || outcome != OutcomeValid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
