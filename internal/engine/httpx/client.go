// Package httpx is the shared outbound HTTP client: Chrome TLS fingerprint,
// optional proxy, retries with backoff on throttling.
package httpx

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	utls "github.com/refraction-networking/utls"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 8 * time.Second
	jitterFactor       = 0.5
	maxBodyBytes       = 4 << 20
)

// DefaultUserAgent identifies pinmap to public APIs that require one.
const DefaultUserAgent = "pinmap/0.1 (terminal place map)"

// ThrottledError is returned when every attempt was throttled.
type ThrottledError struct {
	StatusCode int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled (status %d)", e.StatusCode)
}

// StatusError is a non-retryable unexpected status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Options configures a Client. Zero values take defaults.
type Options struct {
	Timeout     time.Duration
	ProxyURL    string
	UserAgent   string
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

type Client struct {
	http      *http.Client
	userAgent string
	retries   int
	base      time.Duration
	max       time.Duration
	throttled atomic.Int64
}

func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = defaultBaseBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		DialTLSContext:      chromeDialer(dialer),
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy url: %w", err)
		}
		// The proxy tunnels the connection, so the fingerprinting dialer
		// cannot be used.
		transport.Proxy = http.ProxyURL(proxy)
		transport.DialTLSContext = nil
		transport.TLSClientConfig = &tls.Config{}
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		userAgent: opts.UserAgent,
		retries:   opts.MaxRetries,
		base:      opts.BaseBackoff,
		max:       opts.MaxBackoff,
	}, nil
}

// chromeDialer performs the TLS handshake with a Chrome ClientHello and
// HTTP/1.1 ALPN.
func chromeDialer(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
		if err != nil {
			conn.Close()
			return nil, err
		}
		for i, ext := range spec.Extensions {
			if alpn, ok := ext.(*utls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
				spec.Extensions[i] = alpn
				break
			}
		}

		tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloCustom)
		if err := tlsConn.ApplyPreset(&spec); err != nil {
			conn.Close()
			return nil, err
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
}

// Get fetches rawURL, retrying with exponential backoff and jitter while the
// server answers 429 or 503.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	var lastErr error
	for attempt := range c.retries {
		body, err := c.do(ctx, rawURL, header)
		if err == nil {
			c.throttled.Store(0)
			return body, nil
		}
		lastErr = err

		var te *ThrottledError
		if !errors.As(err, &te) {
			return nil, err
		}
		c.throttled.Add(1)

		if attempt == c.retries-1 {
			break
		}
		backoff := c.base * time.Duration(1<<uint(attempt))
		if backoff > c.max {
			backoff = c.max
		}
		jitter := time.Duration(float64(backoff) * jitterFactor * rand.Float64())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}
	return nil, lastErr
}

// GetJSON is Get followed by decoding into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, v any) error {
	body, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ConsecutiveThrottles is how many throttled answers arrived since the last
// success.
func (c *Client) ConsecutiveThrottles() int64 {
	return c.throttled.Load()
}

func (c *Client) do(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusServiceUnavailable:
		io.Copy(io.Discard, resp.Body)
		return nil, &ThrottledError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}
