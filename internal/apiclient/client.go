// Package apiclient is the typed client for the mix backend.
//
// Every call forwards the resolved host identity as X-Telegram-* headers and
// returns either the decoded payload or a single *errors.Error whose Message
// is fit for showing to the user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/text/language"

	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/identity"
	"github.com/hookahmix/miniapp/internal/locale"
	"github.com/hookahmix/miniapp/internal/logger"
	"github.com/hookahmix/miniapp/internal/metrics"
	"github.com/hookahmix/miniapp/internal/ratelimit"
)

// DefaultBaseURL is used when Options.BaseURL is empty.
const DefaultBaseURL = "http://localhost:8000/api"

// IdentityFunc returns the identity to forward with a request. A nil result
// sends the request without identity headers.
type IdentityFunc func() *identity.User

// StaticIdentity forwards the same identity with every request.
func StaticIdentity(u *identity.User) IdentityFunc {
	return func() *identity.User { return u }
}

// FromSource resolves the identity from src on every request.
func FromSource(src identity.Source) IdentityFunc {
	return func() *identity.User { return identity.Resolve(src) }
}

// Options configures a Client.
type Options struct {
	// HTTPClient defaults to a client without a timeout.
	HTTPClient *http.Client
	Identity   IdentityFunc
	Throttle   *ratelimit.Throttle
	Metrics    *metrics.Collector
	Logger     *slog.Logger
	BaseURL    string
	Locale     language.Tag
}

// Client talks to the backend. Resource groups hang off it as fields.
type Client struct {
	http     *http.Client
	identity IdentityFunc
	throttle *ratelimit.Throttle
	metrics  *metrics.Collector
	logger   *slog.Logger
	baseURL  string
	locale   language.Tag

	Categories *CategoryService
	Tobaccos   *TobaccoService
	Mixes      *MixService
	User       *UserService
}

// New creates a client from opts.
func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Identity == nil {
		opts.Identity = StaticIdentity(identity.Fallback())
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Russian
	}

	c := &Client{
		http:     opts.HTTPClient,
		identity: opts.Identity,
		throttle: opts.Throttle,
		metrics:  opts.Metrics,
		logger:   logger.OrDiscard(opts.Logger).With("component", "api"),
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		locale:   opts.Locale,
	}
	c.Categories = &CategoryService{c: c}
	c.Tobaccos = &TobaccoService{c: c}
	c.Mixes = &MixService{c: c}
	c.User = &UserService{c: c}
	return c
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	return request[domain.Health](ctx, c, http.MethodGet, "/health", nil)
}

// RequestOption adjusts an outgoing request after the default headers are set.
type RequestOption func(*http.Request)

// WithHeader sets a header, overriding identity and content headers.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// WithoutIdentity strips the identity headers from the request.
func WithoutIdentity() RequestOption {
	return func(r *http.Request) {
		r.Header.Del(identity.HeaderUserID)
		r.Header.Del(identity.HeaderUsername)
		r.Header.Del(identity.HeaderFirstName)
	}
}

// request performs one API call and decodes the JSON response into T.
// Caller options are applied last so their headers win.
func request[T any](ctx context.Context, c *Client, method, endpoint string, body any, opts ...RequestOption) (T, error) {
	var zero T

	group := ratelimit.GroupOf(endpoint)
	if c.throttle.Enabled() {
		start := time.Now()
		if err := c.throttle.Wait(ctx, group); err != nil {
			return zero, domainerrors.Network(c.text(locale.MsgNetworkError), err)
		}
		c.metrics.RecordThrottleWait(group, time.Since(start))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zero, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return zero, domainerrors.Wrap(err, domainerrors.CodeInternal, "create request")
	}

	identity.Apply(req.Header, c.identity())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	log := c.logger.With("request_id", uuid.NewString(), "method", method, "endpoint", endpoint)
	done := c.metrics.StartRequest(method, group)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		done(0)
		log.Warn("api request failed", logger.Err(err), "duration", time.Since(start))
		return zero, domainerrors.Network(c.text(locale.MsgNetworkError), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		done(0)
		log.Warn("api response read failed", logger.Err(err), "status", resp.StatusCode)
		return zero, domainerrors.Network(c.text(locale.MsgNetworkError), err)
	}
	done(resp.StatusCode)

	log.Debug("api request", "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := c.responseError(resp.StatusCode, data)
		log.Debug("api error", "status", resp.StatusCode, "message", apiErr.Message)
		return zero, apiErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return zero, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, domainerrors.Wrapf(err, domainerrors.CodeInternal, "decode %s %s response", method, endpoint)
	}
	return out, nil
}

// responseError turns a non-success response into an *errors.Error.
//
// The message is the body's "detail" when it is a string, or the joined "msg"
// values when it is a validation error list. An unparseable body yields the
// network message, a parseable one without detail the generic message.
func (c *Client) responseError(status int, body []byte) *domainerrors.Error {
	if !gjson.ValidBytes(body) || len(bytes.TrimSpace(body)) == 0 {
		return domainerrors.Response(status, c.text(locale.MsgNetworkError))
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String && detail.String() != "":
		return domainerrors.Response(status, detail.String())

	case detail.IsArray():
		var msgs []string
		for _, m := range detail.Get("#.msg").Array() {
			if s := strings.TrimSpace(m.String()); s != "" {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) == 0 {
			return domainerrors.Response(status, c.text(locale.MsgGenericError))
		}
		return domainerrors.Response(status, strings.Join(msgs, "; ")).WithDetails(msgs)

	default:
		return domainerrors.Response(status, c.text(locale.MsgGenericError))
	}
}

func (c *Client) text(key string) string {
	return locale.Text(c.locale, key)
}

// messageResponse is the body of delete-style endpoints.
type messageResponse struct {
	Message string `json:"message"`
}
