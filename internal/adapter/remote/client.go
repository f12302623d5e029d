package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"docstage/internal/domain"
)

const headerRequestID = "X-Request-ID"

// Client talks to the processing service. It implements port.Processor and
// port.Registry. Every call is a single request: no retries, no queuing.
type Client struct {
	http    *resty.Client
	baseURL string
	log     *zap.Logger
}

type Option func(*Client)

// WithTimeout bounds every request. Zero leaves it to the service.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHTTPClient swaps the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.baseURL)
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("base URL must be an absolute http(s) URL, got: %s", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		http:    resty.New().SetBaseURL(baseURL),
		baseURL: baseURL,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(headerRequestID) == "" {
				r.SetHeader(headerRequestID, uuid.NewString())
			}
			return nil
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			c.log.Debug("service response",
				zap.String("method", resp.Request.Method),
				zap.String("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("elapsed", resp.Time()),
				zap.String("request_id", resp.Request.Header.Get(headerRequestID)),
			)
			return nil
		})

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one request and maps network failures and non-2xx responses to
// *domain.TransportError.
func (c *Client) do(ctx context.Context, method, path string, prepare func(*resty.Request)) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if prepare != nil {
		prepare(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, &domain.TransportError{
			Message: fmt.Sprintf("%s %s failed", method, path),
			Err:     err,
		}
	}

	if resp.IsError() || resp.StatusCode() >= 300 {
		return resp, &domain.TransportError{
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("%s %s", method, path),
			Detail:     parseDetail(resp.Body()),
		}
	}
	return resp, nil
}

// parseDetail extracts the server's error description. FastAPI style bodies
// carry either a string or a list of validation errors under "detail".
func parseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		text := strings.TrimSpace(string(body))
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		return text
	}

	root := gjson.ParseBytes(body)
	detail := root.Get("detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		var msgs []string
		detail.ForEach(func(_, item gjson.Result) bool {
			if msg := item.Get("msg"); msg.Exists() {
				if loc := item.Get("loc"); loc.IsArray() {
					var parts []string
					for _, p := range loc.Array() {
						parts = append(parts, p.String())
					}
					msgs = append(msgs, strings.Join(parts, ".")+": "+msg.String())
				} else {
					msgs = append(msgs, msg.String())
				}
			} else {
				msgs = append(msgs, item.String())
			}
			return true
		})
		return strings.Join(msgs, "; ")
	case detail.Exists():
		if msg := detail.Get("message"); msg.Exists() {
			return msg.String()
		}
		return detail.Raw
	}

	for _, key := range []string{"error", "message"} {
		if v := root.Get(key); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
