// Package restclient implements ports.ResourceClient against the upstream admin REST API.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	apperrors "github.com/JULEEP/admin-frontend/internal/errors"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

const (
	// DefaultTimeout bounds every upstream request when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 << 10

	opList   = "list"
	opGet    = "get"
	opPatch  = "patch"
	opDelete = "delete"
)

// Options configures the client factory.
type Options struct {
	BaseURL    string           // Required: upstream API base URL (scheme and host)
	Timeout    time.Duration    // Optional: per-request timeout (defaults to DefaultTimeout)
	APIToken   string           // Optional: bearer token used when a session carries none
	UserAgent  string           // Optional: User-Agent header
	HTTPClient *http.Client     // Optional: custom client; a cookie-jar client is built otherwise
	Logger     *slog.Logger     // Optional: structured logger
	Metrics    *metrics.Metrics // Optional: Prometheus instruments
}

// Factory builds per-resource clients that share one HTTP client.
type Factory struct {
	base         *url.URL
	http         *http.Client
	timeout      time.Duration
	defaultToken string
	userAgent    string
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

var _ ports.ResourceClientFactory = (*Factory)(nil)

// NewFactory validates opts and constructs a Factory.
func NewFactory(opts Options) (*Factory, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("upstream base url %q must be http or https", opts.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q has no host", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := opts.HTTPClient
	if client == nil {
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		client = &http.Client{Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Factory{
		base:         base,
		http:         client,
		timeout:      timeout,
		defaultToken: opts.APIToken,
		userAgent:    opts.UserAgent,
		logger:       logger.With("component", "restclient"),
		metrics:      opts.Metrics,
	}, nil
}

// ClientFor returns a client for desc authenticated with apiToken, or the
// factory default token when apiToken is empty.
func (f *Factory) ClientFor(desc model.ResourceDescriptor, apiToken string) (ports.ResourceClient, error) {
	return f.NewClient(desc, apiToken)
}

// NewClient is ClientFor with a concrete return type.
func (f *Factory) NewClient(desc model.ResourceDescriptor, apiToken string) (*Client, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.ItemsPath != "" {
		if _, err := jmespath.Compile(desc.ItemsPath); err != nil {
			return nil, fmt.Errorf("resource %q: invalid items path %q: %w", desc.Name, desc.ItemsPath, err)
		}
	}
	token := apiToken
	if token == "" {
		token = f.defaultToken
	}
	return &Client{
		factory: f,
		desc:    desc,
		token:   token,
		logger:  f.logger.With("resource", desc.Name),
	}, nil
}

// Client talks to one resource endpoint.
type Client struct {
	factory *Factory
	desc    model.ResourceDescriptor
	token   string
	logger  *slog.Logger
}

var _ ports.ResourceClient = (*Client)(nil)

// List fetches the collection. Entries that are not objects or lack an id are skipped.
func (c *Client) List(ctx context.Context) ([]model.Entity, error) {
	body, err := c.do(ctx, opList, http.MethodGet, c.desc.ListPath, nil)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err = json.Unmarshal(body, &decoded); err != nil {
		return nil, apperrors.Transport(fmt.Sprintf("decode %s list response", c.desc.Name), err)
	}

	if c.desc.ItemsPath != "" {
		decoded, err = jmespath.Search(c.desc.ItemsPath, decoded)
		if err != nil {
			return nil, apperrors.Transport(fmt.Sprintf("extract %s items", c.desc.Name), err)
		}
	}

	raw, ok := decoded.([]any)
	if !ok {
		c.logger.Warn("list response is not an array", "items_path", c.desc.ItemsPath)
		return []model.Entity{}, nil
	}

	idField := c.desc.IDFieldOrDefault()
	items := make([]model.Entity, 0, len(raw))
	skipped := 0
	for _, entry := range raw {
		obj, isObj := entry.(map[string]any)
		if !isObj {
			skipped++
			continue
		}
		e, hasID := model.NewEntity(idField, obj)
		if !hasID {
			skipped++
			continue
		}
		items = append(items, e)
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed list entries", "skipped", skipped, "kept", len(items))
	}
	return items, nil
}

// Get fetches one entity from the descriptor's detail endpoint.
// A 404 is a not-found error; a body without an object or id is a transport error.
func (c *Client) Get(ctx context.Context, id string) (model.Entity, error) {
	if c.desc.GetPath == "" {
		return model.Entity{}, apperrors.Internalf("resource %q has no detail endpoint", c.desc.Name)
	}
	body, err := c.do(ctx, opGet, http.MethodGet, model.EntityPath(c.desc.GetPath, url.PathEscape(id)), nil)
	if err != nil {
		return model.Entity{}, err
	}

	var obj map[string]any
	if err = json.Unmarshal(body, &obj); err != nil {
		return model.Entity{}, apperrors.Transport(fmt.Sprintf("decode %s %s", c.desc.Singular, id), err)
	}
	e, ok := model.NewEntity(c.desc.IDFieldOrDefault(), obj)
	if !ok {
		return model.Entity{}, apperrors.TransportStatus(http.StatusBadGateway,
			fmt.Sprintf("%s %s response has no %s", c.desc.Singular, id, c.desc.IDFieldOrDefault()))
	}
	return e, nil
}

// PatchField sends {field: value} to the entity's patch endpoint.
func (c *Client) PatchField(ctx context.Context, id, field string, value any) error {
	if c.desc.PatchPath == "" {
		return apperrors.Internalf("resource %q has no patch endpoint", c.desc.Name)
	}
	payload, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode patch body")
	}
	_, err = c.do(ctx, opPatch, http.MethodPatch, model.EntityPath(c.desc.PatchPath, url.PathEscape(id)), payload)
	return err
}

// Delete removes the entity.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.desc.DeletePath == "" {
		return apperrors.Internalf("resource %q has no delete endpoint", c.desc.Name)
	}
	_, err := c.do(ctx, opDelete, http.MethodDelete, model.EntityPath(c.desc.DeletePath, url.PathEscape(id)), nil)
	return err
}

// do issues one request. Non-2xx responses and network failures become
// transport errors; 404 becomes a not-found error. There are no retries.
func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.factory.timeout)
	defer cancel()

	target := c.factory.base.JoinPath(path)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.factory.userAgent != "" {
		req.Header.Set("User-Agent", c.factory.userAgent)
	}

	start := time.Now()
	resp, err := c.factory.http.Do(req)
	if err != nil {
		terr := apperrors.Transport(fmt.Sprintf("%s %s failed", method, path), err)
		c.observe(op, 0, start, terr)
		return nil, terr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError(resp, c.desc.Singular)
		c.observe(op, resp.StatusCode, start, serr)
		c.logger.Debug("upstream rejected request",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"error", serr,
		)
		return nil, serr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		rerr := apperrors.Transport(fmt.Sprintf("read %s response", path), err)
		c.observe(op, resp.StatusCode, start, rerr)
		return nil, rerr
	}
	c.observe(op, resp.StatusCode, start, nil)
	return body, nil
}

func (c *Client) observe(op string, status int, start time.Time, err error) {
	c.factory.metrics.ObserveUpstream(metrics.UpstreamCall{
		Resource:  c.desc.Name,
		Operation: op,
		Status:    status,
		Duration:  time.Since(start),
		Err:       err,
	})
}

// statusError maps a non-2xx response to an application error, surfacing the
// server's message or error field when the body carries one.
func statusError(resp *http.Response, singular string) *apperrors.AppError {
	msg := upstreamMessage(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusNotFound {
		if msg == "" {
			if singular == "" {
				singular = "entity"
			}
			msg = singular + " not found"
		}
		return apperrors.NotFound(msg)
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return apperrors.TransportStatus(resp.StatusCode, msg)
}

func upstreamMessage(r io.Reader) string {
	var body map[string]any
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := body[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
