package testutil

import (
	"net/http"
	"strings"
	"testing"
)

func TestOptimizerStubRecordsRequests(t *testing.T) {
	stub := NewOptimizerStub(t, http.StatusOK, SampleResultBody)

	resp, err := http.Post(stub.URL()+"/calculate", "application/json", strings.NewReader(`{"budget": 20}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if stub.Count() != 1 {
		t.Fatalf("expected 1 recorded request, got %d", stub.Count())
	}

	recorded := stub.Requests()[0]
	if recorded.Path != "/calculate" {
		t.Fatalf("expected path /calculate, got %s", recorded.Path)
	}
	if recorded.Body["budget"] != 20.0 {
		t.Fatalf("expected decoded budget 20, got %v", recorded.Body["budget"])
	}
}

func TestOptimizerStubRespond(t *testing.T) {
	stub := NewOptimizerStub(t, http.StatusOK, SampleResultBody)
	stub.Respond(http.StatusBadRequest, `{"error":"Budget too low"}`)

	resp, err := http.Post(stub.URL()+"/calculate", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestUnreachableURL(t *testing.T) {
	url := UnreachableURL(t)
	if _, err := http.Get(url); err == nil {
		t.Fatal("expected request to closed server to fail")
	}
}
