package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNetwork marks every failure to obtain a complete archive body: transport
// errors, timeouts, non-2xx responses, truncated or oversized bodies.
var ErrNetwork = errors.New("network error")

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 64 << 20
)

// Client fetches archive bodies.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	maxBytes   int64
	userAgent  string
	progress   io.Writer
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout bounds the whole request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithProgress reports download percentage to w when the server announces a
// Content-Length.
func WithProgress(w io.Writer) Option {
	return func(cl *Client) {
		cl.progress = w
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		maxBytes:   defaultMaxBytes,
		userAgent:  "create-plugin",
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs one GET against url and returns the complete body. The body is
// only returned once the server answered 2xx and the stream ended cleanly.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %s: %w", ErrNetwork, url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("fetching archive", "url", url, "timeout", c.timeout)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading %s: %w", ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: download of %s returned status %d", ErrNetwork, url, resp.StatusCode)
	}
	if resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%w: archive is %d bytes, limit is %d", ErrNetwork, resp.ContentLength, c.maxBytes)
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("archive fetched", "url", url, "bytes", len(body))
	return body, nil
}

// readBody reads at most maxBytes+1 bytes so an oversized body is detected
// without buffering it whole.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	total := resp.ContentLength
	var r io.Reader = io.LimitReader(resp.Body, c.maxBytes+1)
	if c.progress != nil && total > 0 {
		r = io.TeeReader(r, &percentWriter{w: c.progress, total: total, last: -1})
	}

	body, err := io.ReadAll(r)
	if c.progress != nil && total > 0 {
		fmt.Fprintln(c.progress)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading download stream: %w", ErrNetwork, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: archive exceeds %d bytes", ErrNetwork, c.maxBytes)
	}
	if total > 0 && int64(len(body)) != total {
		return nil, fmt.Errorf("%w: received %d of %d bytes", ErrNetwork, len(body), total)
	}
	return body, nil
}

type percentWriter struct {
	w       io.Writer
	total   int64
	written int64
	last    int
}

func (p *percentWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	percent := int(p.written * 100 / p.total)
	if percent != p.last {
		fmt.Fprintf(p.w, "\rDownloading... %d%%", percent)
		p.last = percent
	}
	return len(b), nil
}
