package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/iwvelando/ingredient-optimizer/internal/form"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// session is one browser's form together with its own submission limiter.
type session struct {
	form    *form.Form
	limiter *rate.Limiter
}

// sessionStore keeps one session per browser, bounded by max. The least
// recently used session is evicted first.
type sessionStore struct {
	entries *lru[*session]
	limit   rate.Limit
	burst   int
	logger  *zap.Logger
}

// newSessionStore returns a store whose sessions each allow limit submissions
// per second with the given burst.
func newSessionStore(max int, limit rate.Limit, burst int, logger *zap.Logger) *sessionStore {
	if max <= 0 {
		max = constants.DefaultMaxSessions
	}
	return &sessionStore{
		entries: newLRU[*session](max, sessionEvictions.Inc),
		limit:   limit,
		burst:   burst,
		logger:  logger,
	}
}

func (s *sessionStore) get(id string) (*session, bool) {
	return s.entries.get(id)
}

func (s *sessionStore) create() (string, *session) {
	id := uuid.NewString()
	sess := &session{
		form:    form.New(s.logger),
		limiter: rate.NewLimiter(s.limit, s.burst),
	}
	activeSessions.Set(float64(s.entries.add(id, sess)))
	return id, sess
}

func (s *sessionStore) len() int {
	return s.entries.len()
}

// sessionFor returns the caller's session, starting a new one when the cookie
// is missing, malformed or has been evicted.
func (h *handler) sessionFor(w http.ResponseWriter, r *http.Request) *session {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
		if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			if sess, ok := h.sessions.get(cookie.Value); ok {
				return sess
			}
		}
	}

	id, sess := h.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (h *handler) formFor(w http.ResponseWriter, r *http.Request) *form.Form {
	return h.sessionFor(w, r).form
}
