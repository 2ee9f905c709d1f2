package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

type testProviderConfig struct {
	timeout    time.Duration
	maxRetries int
}

func (c testProviderConfig) GetProviderTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return 2 * time.Second
}

func (c testProviderConfig) GetProviderMaxRetries() int {
	if c.maxRetries > 0 {
		return c.maxRetries
	}
	return 3
}

func (c testProviderConfig) GetProviderRetryBaseDelay() time.Duration { return time.Millisecond }
func (c testProviderConfig) GetProviderRateLimit() float64            { return 1000 }
func (c testProviderConfig) GetProviderRateBurst() int                { return 1000 }

func newTestBase(t *testing.T, baseURL string, cfg testProviderConfig) *Base {
	t.Helper()
	creds := config.VendorCredentials{
		BaseURL:      baseURL,
		ClientID:     "client",
		ClientSecret: "secret",
	}
	base := NewBase("testvendor", travel.CapabilityFlight, creds, cfg, logger.New("development"))
	return &base
}

func tokenHandler(tokenCalls *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(tokenCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-abc","expires_in":3600}`))
	}
}

func TestDoRetriesUpToBudgetOnServerErrors(t *testing.T) {
	var tokenCalls, apiCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/things", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{})

	var out struct{}
	err := base.getJSON(context.Background(), "things", "/v1/things", nil, &out)
	if err == nil {
		t.Fatal("expected error from persistent server failure")
	}
	if !IsKind(err, ErrKindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if got := atomic.LoadInt64(&apiCalls); got != 3 {
		t.Fatalf("expected 3 attempts including the first, got %d", got)
	}
}

func TestDoRefreshesTokenOnceOnUnauthorized(t *testing.T) {
	var tokenCalls, apiCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/things", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&apiCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{})

	var out struct {
		OK bool `json:"ok"`
	}
	if err := base.getJSON(context.Background(), "things", "/v1/things", nil, &out); err != nil {
		t.Fatalf("expected success after forced refresh, got %v", err)
	}
	if !out.OK {
		t.Fatal("expected decoded response after refresh")
	}
	if got := atomic.LoadInt64(&tokenCalls); got != 2 {
		t.Fatalf("expected exactly 2 token fetches, got %d", got)
	}
	if got := atomic.LoadInt64(&apiCalls); got != 2 {
		t.Fatalf("expected exactly 2 api calls, got %d", got)
	}
}

func TestDoGivesUpAfterSecondUnauthorized(t *testing.T) {
	var tokenCalls, apiCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/things", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{})

	err := base.getJSON(context.Background(), "things", "/v1/things", nil, nil)
	if !IsKind(err, ErrKindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := atomic.LoadInt64(&apiCalls); got != 2 {
		t.Fatalf("expected exactly 2 api calls (one forced refresh), got %d", got)
	}
}

func TestDoDoesNotRetryRejectedResponses(t *testing.T) {
	var tokenCalls, apiCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/things", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{})

	err := base.getJSON(context.Background(), "things", "/v1/things", nil, nil)
	if !IsKind(err, ErrKindRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
	if got := atomic.LoadInt64(&apiCalls); got != 1 {
		t.Fatalf("expected a single attempt for a rejected call, got %d", got)
	}
}

func TestDoDoesNotRetryNonIdempotentCalls(t *testing.T) {
	var tokenCalls, apiCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{})

	err := base.postJSON(context.Background(), "book", "/v1/bookings", map[string]string{"offer": "o1"}, callOpts{}, nil)
	if !IsKind(err, ErrKindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if got := atomic.LoadInt64(&apiCalls); got != 1 {
		t.Fatalf("expected a single attempt for a non-idempotent call, got %d", got)
	}
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	var tokenCalls, apiCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/things", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{})

	for i := 0; i < 3; i++ {
		if err := base.getJSON(context.Background(), "things", "/v1/things", nil, nil); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}
	if got := atomic.LoadInt64(&tokenCalls); got != 1 {
		t.Fatalf("expected a single token fetch for 3 calls, got %d", got)
	}
}

func TestRequestMapsDeadlineToTimeout(t *testing.T) {
	var tokenCalls int64

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	base := newTestBase(t, server.URL, testProviderConfig{timeout: 50 * time.Millisecond, maxRetries: 1})

	err := base.getJSON(context.Background(), "slow", "/v1/slow", nil, nil)
	if !IsKind(err, ErrKindTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestSessionUsableHonorsExpirySkew(t *testing.T) {
	now := time.Now()

	within := session{token: "t", expiresAt: now.Add(30 * time.Second)}
	if within.usable(now) {
		t.Fatal("token expiring within the skew window must not be reused")
	}

	fresh := session{token: "t", expiresAt: now.Add(5 * time.Minute)}
	if !fresh.usable(now) {
		t.Fatal("token well before expiry must be reused")
	}

	empty := session{}
	if empty.usable(now) {
		t.Fatal("empty session must never be usable")
	}
}

func TestValidateRequiredRejectsMissingParams(t *testing.T) {
	base := newTestBase(t, "http://localhost:0", testProviderConfig{})

	err := base.validateRequired("search", map[string]string{"origin": "AMS", "destination": " "})
	if !IsKind(err, ErrKindRejected) {
		t.Fatalf("expected rejected error for blank parameter, got %v", err)
	}

	if err := base.validateRequired("search", map[string]string{"origin": "AMS"}); err != nil {
		t.Fatalf("expected no error for complete parameters, got %v", err)
	}
}
