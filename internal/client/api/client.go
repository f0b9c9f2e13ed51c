// Package api is the HTTP client for the GophTube backend. Every request the
// application makes is built here: cookie credentials, content type, JSON
// decoding and error normalization.
package api

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/models"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// RequestOptions parameterizes a single call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is nil, a *Form for multipart uploads, or any value encoded as JSON.
	Body any
	// Header is applied after the defaults and may override them.
	Header http.Header
}

// Client issues requests against a fixed base address. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	cache   *responseCache
}

type options struct {
	transport http.RoundTripper
	caFile    string
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *Metrics
	cacheSize int
	cacheTTL  time.Duration
}

// Option configures a Client at construction.
type Option func(*options)

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithCAFile trusts an extra CA certificate. Ignored when WithTransport is set.
func WithCAFile(path string) Option {
	return func(o *options) { o.caFile = path }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics instruments the transport.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCache enables an in-memory cache of GET responses holding at most
// size entries for ttl. Every non-GET call through the client purges it.
func WithCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// New builds a client for baseURL. The base address cannot be changed later.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := &options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	transport := o.transport
	if transport == nil {
		if o.caFile != "" {
			t, err := newTLSTransport(o.caFile)
			if err != nil {
				return nil, err
			}
			transport = t
		} else {
			transport = http.DefaultTransport
		}
	}
	if o.metrics != nil {
		transport = o.metrics.instrument(transport)
	}
	transport = requestIDTransport{next: transport}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(cmp.Or(baseURL, DefaultBaseURL), "/"),
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   o.timeout,
		},
		log: o.logger,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if o.cacheSize > 0 {
		c.cache = newResponseCache(o.cacheSize, o.cacheTTL)
	}
	return c, nil
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string { return c.baseURL }

// Jar exposes the cookie jar holding the session credentials.
func (c *Client) Jar() http.CookieJar { return c.http.Jar }

// Do performs one request against endpoint and decodes the JSON body into
// out. out may be nil.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	method := cmp.Or(opts.Method, http.MethodGet)
	log := c.log.With(zap.String("method", method), zap.String("endpoint", endpoint))

	var gen uint64
	if c.cache != nil {
		if method == http.MethodGet {
			if raw, ok := c.cache.get(endpoint); ok {
				log.Debug("api cache hit")
				return decodeInto(raw, out)
			}
			gen = c.cache.generation()
		} else {
			c.cache.invalidate()
			// reads issued while the mutation was in flight may hold old data
			defer c.cache.invalidate()
		}
	}

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range opts.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("api error", zap.Error(err))
		return &Error{Kind: KindTransport, Message: networkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("api error", zap.Error(err))
		return &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Message: networkErrorMessage, Err: err}
	}
	log = log.With(zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if !json.Valid(raw) {
		err := &Error{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    "invalid response: body is not valid JSON",
		}
		log.Error("api error", zap.Error(err))
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		err := &Error{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    cmp.Or(failure.Message, DefaultErrorMessage),
		}
		log.Error("api error", zap.Error(err))
		return err
	}

	if out != nil && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		err := &Error{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    "invalid response: " + ErrNilResponse.Error(),
			Err:        ErrNilResponse,
		}
		log.Error("api error", zap.Error(err))
		return err
	}

	if err := decodeInto(raw, out); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			apiErr.StatusCode = resp.StatusCode
		}
		log.Error("api error", zap.Error(err))
		return err
	}

	if c.cache != nil && method == http.MethodGet && !c.cache.add(endpoint, raw, gen) {
		log.Debug("api cache skip: invalidated while in flight")
	}
	log.Debug("api request completed")
	return nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "application/json", nil
	case *Form:
		if b == nil {
			return nil, "application/json", nil
		}
		buf, ct, err := b.encode()
		if err != nil {
			return nil, "", fmt.Errorf("encode multipart body: %w", err)
		}
		return buf, ct, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func decodeInto(raw []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Message: "invalid response: " + err.Error(), Err: err}
	}
	return nil
}

// call performs a request and decodes the standard envelope.
func call[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (*models.Envelope[T], error) {
	var env models.Envelope[T]
	if err := c.Do(ctx, endpoint, opts, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func post(body any) RequestOptions {
	return RequestOptions{Method: http.MethodPost, Body: body}
}
