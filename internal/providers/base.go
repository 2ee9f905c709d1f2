package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"

	"golang.org/x/time/rate"
)

// tokenExpirySkew is how close to expiry a token is refreshed rather than used.
const tokenExpirySkew = 60 * time.Second

// session is one vendor's OAuth2 client-credentials token. It is owned
// exclusively by the adapter instance holding it.
type session struct {
	token     string
	expiresAt time.Time
}

func (s session) usable(now time.Time) bool {
	return s.token != "" && now.Before(s.expiresAt.Add(-tokenExpirySkew))
}

// Base supplies the behavior shared by every vendor adapter: the HTTP call
// wrapper with a hard timeout, the token cache, bounded retry with backoff,
// outbound rate limiting and failure tagging. Vendor adapters embed it.
type Base struct {
	name       string
	capability travel.Capability
	baseURL    string
	creds      config.VendorCredentials
	httpClient *http.Client

	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	limiter        *rate.Limiter
	log            *logger.Logger

	mu      sync.Mutex
	session session
}

// NewBase wires the shared adapter behavior for one vendor.
func NewBase(name string, capability travel.Capability, creds config.VendorCredentials, cfg config.ProviderConfig, log *logger.Logger) Base {
	timeout := cfg.GetProviderTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.GetProviderMaxRetries()
	if maxRetries < 1 {
		maxRetries = 3
	}
	baseDelay := cfg.GetProviderRetryBaseDelay()
	if baseDelay <= 0 {
		baseDelay = 250 * time.Millisecond
	}

	return Base{
		name:           name,
		capability:     capability,
		baseURL:        strings.TrimRight(creds.BaseURL, "/"),
		creds:          creds,
		httpClient:     &http.Client{},
		timeout:        timeout,
		maxRetries:     maxRetries,
		retryBaseDelay: baseDelay,
		limiter:        rate.NewLimiter(rate.Limit(cfg.GetProviderRateLimit()), cfg.GetProviderRateBurst()),
		log:            log.WithProvider(name),
	}
}

// Name returns the vendor name.
func (b *Base) Name() string { return b.name }

// Capability returns the search domain this adapter serves.
func (b *Base) Capability() travel.Capability { return b.capability }

// validateRequired fails fast before any request is built.
func (b *Base) validateRequired(op string, params map[string]string) error {
	for field, value := range params {
		if strings.TrimSpace(value) == "" {
			err := &Error{Provider: b.name, Op: op, Kind: ErrKindRejected, Err: fmt.Errorf("missing required parameter %q", field)}
			b.log.ProviderError(b.name, op, err)
			return err
		}
	}
	return nil
}

// token returns a usable bearer token, fetching or refreshing lazily. A caller
// arriving while another refresh is in flight blocks on the mutex and reuses
// the refreshed session instead of issuing a second fetch.
func (b *Base) token(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session.usable(time.Now()) {
		return b.session.token, nil
	}

	sess, err := b.fetchToken(ctx)
	if err != nil {
		b.session = session{}
		return "", err
	}
	b.session = sess
	return sess.token, nil
}

// invalidateToken discards the cached session after an auth failure.
func (b *Base) invalidateToken() {
	b.mu.Lock()
	b.session = session{}
	b.mu.Unlock()
}

func (b *Base) fetchToken(ctx context.Context) (session, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", b.creds.ClientID)
	form.Set("client_secret", b.creds.ClientSecret)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return session{}, &Error{Provider: b.name, Op: "token", Kind: ErrKindAuth, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return session{}, &Error{Provider: b.name, Op: "token", Kind: ErrKindAuth, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session{}, &Error{Provider: b.name, Op: "token", Kind: ErrKindAuth, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return session{}, &Error{Provider: b.name, Op: "token", Kind: ErrKindAuth, Err: err}
	}
	if payload.AccessToken == "" {
		return session{}, &Error{Provider: b.name, Op: "token", Kind: ErrKindAuth, Err: errors.New("empty access token")}
	}

	return session{
		token:     payload.AccessToken,
		expiresAt: time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// callOpts tunes one logical vendor call.
type callOpts struct {
	// idempotent enables the generic retry budget.
	idempotent bool
	// noAuth skips the bearer token (for vendors without OAuth endpoints).
	noAuth bool
}

// getJSON performs an idempotent GET and decodes the response into out.
func (b *Base) getJSON(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	return b.do(ctx, op, http.MethodGet, path, query, nil, callOpts{idempotent: true}, out)
}

// postJSON performs a POST with a JSON body and decodes the response into out.
// Set opts.idempotent only when the vendor documents the call as safe to repeat.
func (b *Base) postJSON(ctx context.Context, op, path string, body interface{}, opts callOpts, out interface{}) error {
	return b.do(ctx, op, http.MethodPost, path, nil, body, opts, out)
}

// deleteJSON performs an idempotent DELETE and decodes the response into out.
func (b *Base) deleteJSON(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	return b.do(ctx, op, http.MethodDelete, path, query, nil, callOpts{idempotent: true}, out)
}

// do runs the bounded retry loop around one logical call. The loop is
// iterative: attempts are capped at maxRetries including the first, the delay
// doubles per attempt, and only retryable failures on idempotent calls
// consume the budget. A 401 triggers exactly one forced token refresh and
// retry, independent of that budget.
func (b *Base) do(ctx context.Context, op, method, path string, query url.Values, body interface{}, opts callOpts, out interface{}) error {
	var lastErr error
	refreshed := false
	delay := b.retryBaseDelay

	for attempt := 1; attempt <= b.maxRetries; attempt++ {
		data, err := b.request(ctx, op, method, path, query, body, opts)
		if err == nil {
			if out == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				decodeErr := &Error{Provider: b.name, Op: op, Kind: ErrKindUnavailable, Err: fmt.Errorf("decode response: %w", err)}
				b.log.ProviderError(b.name, op, decodeErr)
				return decodeErr
			}
			return nil
		}

		if IsKind(err, ErrKindAuth) && !opts.noAuth && !refreshed {
			refreshed = true
			b.invalidateToken()
			attempt--
			continue
		}

		lastErr = err

		var perr *Error
		retryable := errors.As(err, &perr) && perr.Retryable()
		if !opts.idempotent || !retryable || attempt == b.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			cancelErr := &Error{Provider: b.name, Op: op, Kind: ErrKindTimeout, Err: context.Cause(ctx)}
			b.log.ProviderError(b.name, op, cancelErr)
			return cancelErr
		case <-time.After(delay):
		}
		delay *= 2
	}

	b.log.ProviderError(b.name, op, lastErr)
	return lastErr
}

// request performs a single HTTP exchange with the hard timeout applied and
// the outbound limiter gating the call before it is issued.
func (b *Base) request(ctx context.Context, op, method, path string, query url.Values, body interface{}, opts callOpts) ([]byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindTimeout, Err: err}
	}

	var token string
	if !opts.noAuth {
		var err error
		token, err = b.token(ctx)
		if err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindRejected, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := b.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(callCtx, method, reqURL, reader)
	if err != nil {
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindRejected, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		// A deadline hit is retryable as a timeout, never left hanging.
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindTimeout, Err: err}
		}
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	b.log.ProviderCall(b.name, op, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindUnavailable, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindAuth, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusRequestTimeout:
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindTimeout, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindRejected, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(data, 200))}
	default:
		return nil, &Error{Provider: b.name, Op: op, Kind: ErrKindUnavailable, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
