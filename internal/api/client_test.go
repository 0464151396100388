package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return NewClient(ts.URL, 5*time.Second, nil), ts
}

func TestDoAttachesHeaders(t *testing.T) {
	var got http.Header
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	})
	defer ts.Close()

	client.SetTokenSource(func() string { return "tok-123" })
	if _, err := client.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/catalog/services",
		SalonID: 42,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth := got.Get("Authorization"); auth != "Bearer tok-123" {
		t.Fatalf("expected bearer token, got %q", auth)
	}
	if salon := got.Get("X-Salon-Id"); salon != "42" {
		t.Fatalf("expected X-Salon-Id 42, got %q", salon)
	}
	if got.Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id to be set")
	}
	if accept := got.Get("Accept"); accept != "application/json" {
		t.Fatalf("expected Accept application/json, got %q", accept)
	}
}

func TestDoPublicSkipsToken(t *testing.T) {
	var got http.Header
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	})
	defer ts.Close()

	client.SetTokenSource(func() string { return "tok-123" })
	if _, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Public: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth := got.Get("Authorization"); auth != "" {
		t.Fatalf("public request must not carry a token, got %q", auth)
	}
}

func TestDoUnauthorizedFiresHook(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer ts.Close()

	fired := 0
	client.SetUnauthorizedHook(func() { fired++ })

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/auth/me"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected hook to fire once, fired %d times", fired)
	}
}

func TestDoPublicUnauthorizedSkipsHook(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer ts.Close()

	fired := 0
	client.SetUnauthorizedHook(func() { fired++ })

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Public: true,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if fired != 0 {
		t.Fatalf("a failed login must not tear down the session, hook fired %d times", fired)
	}
}

func TestDoValidationError(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"name":["The name field is required."]}}`))
	})
	defer ts.Close()

	_, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/catalog/services", SalonID: 1})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Fields["name"]) != 1 {
		t.Fatalf("expected one field error for name, got %+v", validation.Fields)
	}
}

func TestDoServerError(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	})
	defer ts.Close()

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/appointments", SalonID: 1})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Message != "boom" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestDoNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/auth/me"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestDoCancelledContext(t *testing.T) {
	client, ts := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/catalog/staff", SalonID: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
