package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func TestSessionStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := newSessionStore(2, rate.Inf, 0, zap.NewNop())

	first, _ := store.create()
	second, _ := store.create()

	if _, ok := store.get(first); !ok {
		t.Fatal("expected first session to exist")
	}

	third, _ := store.create()

	if store.len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.len())
	}
	if _, ok := store.get(second); ok {
		t.Fatal("expected least recently used session to be evicted")
	}
	if _, ok := store.get(first); !ok {
		t.Fatal("expected recently used session to survive")
	}
	if _, ok := store.get(third); !ok {
		t.Fatal("expected newest session to survive")
	}
}

func TestFormForReusesCookieSession(t *testing.T) {
	h := &handler{logger: zap.NewNop(), sessions: newSessionStore(10, rate.Inf, 0, zap.NewNop())}

	rr := httptest.NewRecorder()
	first := h.formFor(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != constants.SessionCookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	second := h.formFor(rr, req)

	if first != second {
		t.Fatal("expected the same form for the same cookie")
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("expected no new cookie for a known session")
	}
}

func TestFormForRejectsMalformedCookie(t *testing.T) {
	h := &handler{logger: zap.NewNop(), sessions: newSessionStore(10, rate.Inf, 0, zap.NewNop())}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "not-a-uuid"})
	rr := httptest.NewRecorder()
	h.formFor(rr, req)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "not-a-uuid" {
		t.Fatalf("expected a fresh session cookie, got %v", cookies)
	}
	if h.sessions.len() != 1 {
		t.Fatalf("expected 1 session, got %d", h.sessions.len())
	}
}

func TestSessionsHaveIndependentLimiters(t *testing.T) {
	store := newSessionStore(10, rate.Limit(0.001), 1, zap.NewNop())

	_, first := store.create()
	_, second := store.create()

	if !first.limiter.Allow() {
		t.Fatal("expected first submission of a session to be allowed")
	}
	if first.limiter.Allow() {
		t.Fatal("expected second submission of the same session to be throttled")
	}
	if !second.limiter.Allow() {
		t.Fatal("expected another session to keep its own allowance")
	}
}

func TestLRUGetOrAddReusesEntries(t *testing.T) {
	evicted := 0
	cache := newLRU[int](2, func() { evicted++ })

	created := 0
	create := func() int {
		created++
		return created
	}

	if got := cache.getOrAdd("a", create); got != 1 {
		t.Fatalf("expected new entry 1, got %d", got)
	}
	if got := cache.getOrAdd("a", create); got != 1 {
		t.Fatalf("expected existing entry 1, got %d", got)
	}
	cache.getOrAdd("b", create)
	cache.getOrAdd("c", create)

	if evicted != 1 || cache.len() != 2 {
		t.Fatalf("expected one eviction and 2 entries, got %d/%d", evicted, cache.len())
	}
	if _, ok := cache.get("a"); ok {
		t.Fatal("expected least recently used entry to be evicted")
	}
}
