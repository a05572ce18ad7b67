// Package apiclient is the HTTP facade in front of the hotel REST API. One
// Client holds the transport, retry policy and circuit breaker; Bind derives a
// per-browser view that injects that browser's bearer credential.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/grandstay/hotel-web/internal/api/metrics"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

const (
	defaultTimeout     = 10 * time.Second
	maxErrorBodyBytes  = 64 << 10
	headerRequestedBy  = "X-Requested-With"
	requestedByXHR     = "XMLHttpRequest"
	contentTypeJSON    = "application/json"
	defaultMaxFailures = 5
)

// Config is the single configuration surface of the facade.
type Config struct {
	BaseURL string
	// Timeout applies to every request. Defaults to 10s.
	Timeout time.Duration
	// RetryMaxElapsed enables exponential-backoff retries of GET requests that
	// failed without a response. Zero disables retries.
	RetryMaxElapsed time.Duration
	// BreakerMaxFailures consecutive network failures open the breaker.
	BreakerMaxFailures uint32
	// BreakerOpenTimeout is how long the breaker stays open.
	BreakerOpenTimeout time.Duration
}

// Client is safe for concurrent use by all browsers.
type Client struct {
	base    *url.URL
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

var _ ports.APIBinder = (*Client)(nil)

// New validates cfg and returns a Client.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = defaultMaxFailures
	}

	c := &Client{
		base: base,
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "hotel-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return c, nil
}

// TokenSource yields the bearer credential to attach. An empty token means
// the request is sent anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Bind returns the API facades for one browser. The credential is read from
// creds before every request; any 401 response is reported to onUnauthorized.
func (c *Client) Bind(creds ports.CredentialStore, onUnauthorized ports.UnauthorizedHandler) ports.APIs {
	return c.BindSource(creds, onUnauthorized)
}

// BindSource is Bind for callers that only hold a token source.
func (c *Client) BindSource(tokens TokenSource, onUnauthorized ports.UnauthorizedHandler) ports.APIs {
	b := &binding{client: c, tokens: tokens, onUnauthorized: onUnauthorized}
	return ports.APIs{
		Auth:     &authAPI{b},
		Rooms:    &roomsAPI{b},
		Bookings: &bookingsAPI{b},
		Admin:    &adminAPI{b},
	}
}

// Ping reports whether the API answers at all. Any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+"/rooms", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: http.MethodGet, Path: "/rooms", Err: err}
	}
	resp.Body.Close()
	return nil
}

type binding struct {
	client         *Client
	tokens         TokenSource
	onUnauthorized ports.UnauthorizedHandler
}

// request describes one API call. body is either nil, an io.Reader with an
// explicit contentType, or a value encoded as JSON.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	contentType string
}

func (b *binding) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return b.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (b *binding) sendJSON(ctx context.Context, method, path string, body, out any) error {
	return b.do(ctx, request{method: method, path: path, body: body}, out)
}

func (b *binding) do(ctx context.Context, r request, out any) error {
	payload, contentType, err := encodeBody(r)
	if err != nil {
		return fmt.Errorf("%s %s: encode body: %w", r.method, r.path, err)
	}

	start := time.Now()
	var resp *http.Response
	op := func() error {
		res, err := b.roundTrip(ctx, r, payload, contentType)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		resp = res
		return nil
	}

	err = backoff.Retry(op, backoff.WithContext(b.client.retryPolicy(r.method), ctx))
	metrics.APIRequestDuration.WithLabelValues(r.method).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			metrics.APIRequestsTotal.WithLabelValues(r.method, "canceled").Inc()
			return fmt.Errorf("%s %s: %w", r.method, r.path, ctx.Err())
		}
		metrics.APIRequestsTotal.WithLabelValues(r.method, "network").Inc()
		return err
	}
	defer resp.Body.Close()
	metrics.APIRequestsTotal.WithLabelValues(r.method, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized {
			metrics.APIUnauthorizedTotal.Inc()
			if b.onUnauthorized != nil {
				b.onUnauthorized.HandleUnauthorized(ctx)
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s %s: decode response: %w", r.method, r.path, err)
	}
	return nil
}

// roundTrip sends one attempt through the breaker. Only failures without a
// response count against the breaker.
func (b *binding) roundTrip(ctx context.Context, r request, payload []byte, contentType string) (*http.Response, error) {
	req, err := b.newRequest(ctx, r, payload, contentType)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	res, err := b.client.breaker.Execute(func() (interface{}, error) {
		return b.client.http.Do(req)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		netErr := &NetworkError{Method: r.method, Path: r.path, Err: err}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(netErr)
		}
		b.client.log.Debug().Err(err).Str("method", r.method).Str("path", r.path).Msg("api request failed without response")
		return nil, netErr
	}
	return res.(*http.Response), nil
}

func (b *binding) newRequest(ctx context.Context, r request, payload []byte, contentType string) (*http.Request, error) {
	target := b.client.base.String() + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", r.method, r.path, err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(headerRequestedBy, requestedByXHR)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if b.tokens != nil {
		token, err := b.tokens.Token(ctx)
		if err != nil {
			b.client.log.Warn().Err(err).Msg("could not read stored credential, sending request anonymously")
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) retryPolicy(method string) backoff.BackOff {
	if method != http.MethodGet || c.cfg.RetryMaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.cfg.RetryMaxElapsed
	return b
}

func encodeBody(r request) ([]byte, string, error) {
	switch body := r.body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		data, err := io.ReadAll(body)
		return data, r.contentType, err
	default:
		data, err := json.Marshal(body)
		return data, contentTypeJSON, err
	}
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	return eb.text()
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func escape(id string) string { return url.PathEscape(id) }
