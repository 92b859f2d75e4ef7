// Package testutil provides common utility functions for testing.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// SampleResultBody is a minimal successful optimizer response.
const SampleResultBody = `{"usedIngredients":[{"name":"Chicken Breast","quantity":"150"}],"totalCost":"12.50"}`

// RecordedRequest is one request received by an OptimizerStub.
type RecordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Raw         []byte
	Body        map[string]interface{}
}

// OptimizerStub is a fake optimizer service that records requests and replies
// with a configurable status and body.
type OptimizerStub struct {
	Server *httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []RecordedRequest
}

// NewOptimizerStub starts a stub answering every request with status and body.
// The server is closed when the test finishes.
func NewOptimizerStub(t testing.TB, status int, body string) *OptimizerStub {
	t.Helper()

	stub := &OptimizerStub{status: status, body: body}
	stub.Server = httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(stub.Server.Close)
	return stub
}

func (s *OptimizerStub) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	recorded := RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Raw:         raw,
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		recorded.Body = decoded
	}

	s.mu.Lock()
	s.requests = append(s.requests, recorded)
	status, body := s.status, s.body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// URL returns the stub's base URL.
func (s *OptimizerStub) URL() string {
	return s.Server.URL
}

// Respond changes the reply for subsequent requests.
func (s *OptimizerStub) Respond(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Requests returns a copy of everything received so far.
func (s *OptimizerStub) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Count returns the number of requests received.
func (s *OptimizerStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// UnreachableURL returns the base URL of a server that has already been shut
// down, so any request to it fails at the transport level.
func UnreachableURL(t testing.TB) string {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}
