package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JULEEP/admin-frontend/internal/adapters/memstore"
	"github.com/JULEEP/admin-frontend/internal/adapters/restclient"
	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/service"
)

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

// ContainsAll checks if a string contains all the given substrings.
func ContainsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// fakeUpstream is an in-memory admin API serving the built-in resources.
type fakeUpstream struct {
	t       *testing.T
	catalog *model.ResourceCatalog

	mu          sync.Mutex
	collections map[string][]map[string]any
	failDelete  map[string]int
	failPatch   map[string]int
	failList    map[string]int
	patches     []map[string]any
	deletes     []string
	tokens      []string

	srv *httptest.Server
}

func newFakeUpstream(t *testing.T, catalog *model.ResourceCatalog) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{
		t:           t,
		catalog:     catalog,
		collections: make(map[string][]map[string]any),
		failDelete:  make(map[string]int),
		failPatch:   make(map[string]int),
		failList:    make(map[string]int),
	}
	u.srv = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.srv.Close)
	return u
}

// seed stores n entities for resource with ids prefix1..prefixN.
func (u *fakeUpstream) seed(resource, prefix string, n int, extra map[string]any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	items := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		id := prefix + strconv.Itoa(i)
		item := map[string]any{model.DefaultIDField: id, "title": "Item " + id, "name": "Name " + id}
		for k, v := range extra {
			item[k] = v
		}
		items = append(items, item)
	}
	u.collections[resource] = items
}

func (u *fakeUpstream) ids(resource string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, 0, len(u.collections[resource]))
	for _, item := range u.collections[resource] {
		out = append(out, item[model.DefaultIDField].(string))
	}
	return out
}

func (u *fakeUpstream) field(resource, id, field string) any {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, item := range u.collections[resource] {
		if item[model.DefaultIDField] == id {
			return item[field]
		}
	}
	return nil
}

func (u *fakeUpstream) setFailDelete(id string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failDelete[id] = status
}

func (u *fakeUpstream) setFailPatch(id string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failPatch[id] = status
}

func (u *fakeUpstream) setFailList(resource string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failList[resource] = status
}

func (u *fakeUpstream) seenTokens() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.tokens...)
}

func (u *fakeUpstream) patchCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.patches)
}

func (u *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens = append(u.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))

	for _, d := range u.catalog.All() {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == d.ListPath:
			u.list(w, d)
			return
		case r.Method == http.MethodGet && d.GetPath != "" && strings.HasPrefix(r.URL.Path, pathPrefix(d.GetPath)):
			u.fetch(w, d, strings.TrimPrefix(r.URL.Path, pathPrefix(d.GetPath)))
			return
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, pathPrefix(d.PatchPath)):
			u.patch(w, r, d, strings.TrimPrefix(r.URL.Path, pathPrefix(d.PatchPath)))
			return
		case r.Method == http.MethodDelete && d.DeletePath != "" && strings.HasPrefix(r.URL.Path, pathPrefix(d.DeletePath)):
			u.remove(w, d, strings.TrimPrefix(r.URL.Path, pathPrefix(d.DeletePath)))
			return
		}
	}
	http.NotFound(w, r)
}

func (u *fakeUpstream) list(w http.ResponseWriter, d model.ResourceDescriptor) {
	if status := u.failList[d.Name]; status != 0 {
		writeUpstreamJSON(w, status, map[string]string{"message": "list failed"})
		return
	}
	items := u.collections[d.Name]
	if items == nil {
		items = []map[string]any{}
	}
	if d.ItemsPath != "" {
		writeUpstreamJSON(w, http.StatusOK, map[string]any{d.ItemsPath: items})
		return
	}
	writeUpstreamJSON(w, http.StatusOK, items)
}

func (u *fakeUpstream) fetch(w http.ResponseWriter, d model.ResourceDescriptor, id string) {
	for _, item := range u.collections[d.Name] {
		if item[model.DefaultIDField] == id {
			writeUpstreamJSON(w, http.StatusOK, item)
			return
		}
	}
	writeUpstreamJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
}

func (u *fakeUpstream) patch(w http.ResponseWriter, r *http.Request, d model.ResourceDescriptor, id string) {
	body, _ := io.ReadAll(r.Body)
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		writeUpstreamJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	u.patches = append(u.patches, fields)
	if status := u.failPatch[id]; status != 0 {
		writeUpstreamJSON(w, status, map[string]string{"message": "patch rejected"})
		return
	}
	for _, item := range u.collections[d.Name] {
		if item[model.DefaultIDField] == id {
			for k, v := range fields {
				item[k] = v
			}
			writeUpstreamJSON(w, http.StatusOK, item)
			return
		}
	}
	writeUpstreamJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
}

func (u *fakeUpstream) remove(w http.ResponseWriter, d model.ResourceDescriptor, id string) {
	u.deletes = append(u.deletes, id)
	if status := u.failDelete[id]; status != 0 {
		writeUpstreamJSON(w, status, map[string]string{"message": "delete rejected"})
		return
	}
	items := u.collections[d.Name]
	for i, item := range items {
		if item[model.DefaultIDField] == id {
			u.collections[d.Name] = append(items[:i:i], items[i+1:]...)
			writeUpstreamJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeUpstreamJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
}

func pathPrefix(template string) string {
	return strings.TrimSuffix(template, "{id}")
}

func writeUpstreamJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// consoleHarness runs the full console router against a fake upstream.
type consoleHarness struct {
	upstream *fakeUpstream
	registry *service.ViewRegistry
	metrics  *metrics.Metrics
	server   *httptest.Server
	client   *http.Client
}

type harnessOption func(*service.ViewRegistryOptions)

func withRollback() harnessOption {
	return func(o *service.ViewRegistryOptions) { o.Config.RollbackOnToggleFailure = true }
}

func newConsoleHarness(t *testing.T, opts ...harnessOption) *consoleHarness {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
	}

	catalog, err := model.NewResourceCatalog(model.BuiltinResources())
	require.NoError(t, err)
	upstream := newFakeUpstream(t, catalog)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(metrics.Options{})
	factory, err := restclient.NewFactory(restclient.Options{
		BaseURL:    upstream.srv.URL,
		Timeout:    2 * time.Second,
		HTTPClient: upstream.srv.Client(),
		APIToken:   "default-token",
		Logger:     logger,
		Metrics:    m,
	})
	require.NoError(t, err)

	regOpts := service.ViewRegistryOptions{
		Catalog: catalog,
		Clients: factory,
		Config:  service.ViewConfig{PageSize: 5},
		Logger:  logger,
		Metrics: m,
	}
	for _, opt := range opts {
		opt(&regOpts)
	}
	registry, err := service.NewViewRegistry(regOpts)
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	dashboard, err := service.NewDashboardService(service.DashboardServiceOptions{
		Catalog: catalog,
		Clients: factory,
		Logger:  logger,
	})
	require.NoError(t, err)

	router := NewRouter(RouterServices{
		Views:         registry,
		Dashboard:     dashboard,
		Sessions:      memstore.NewSessionStore(nil),
		SettleTimeout: 2 * time.Second,
		Metrics:       m,
		TemplateFS:    os.DirFS(TemplatePathFromTest),
		Logger:        logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &consoleHarness{
		upstream: upstream,
		registry: registry,
		metrics:  m,
		server:   srv,
		client:   newConsoleClient(t),
	}
}

// newConsoleClient returns a browser-like client with its own session cookie jar.
// Redirects are returned to the caller rather than followed.
func newConsoleClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// request performs method path; htmx marks the request as an htmx swap of target.
func (h *consoleHarness) request(t *testing.T, method, path, target string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, h.server.URL+path, nil)
	require.NoError(t, err)
	if target != "" {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", target)
	}
	if requiresCSRFValidation(method) {
		req.Header.Set(DefaultCSRFHeaderName, h.csrfToken(t))
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

// csrfToken returns the client's CSRF cookie, loading the dashboard once to obtain it.
func (h *consoleHarness) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(h.server.URL)
	require.NoError(t, err)
	find := func() string {
		for _, c := range h.client.Jar.Cookies(u) {
			if c.Name == DefaultCSRFCookieName {
				return c.Value
			}
		}
		return ""
	}
	if token := find(); token != "" {
		return token
	}
	resp, err := h.client.Get(h.server.URL + "/")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	token := find()
	require.NotEmpty(t, token, "console did not issue a CSRF cookie")
	return token
}

func (h *consoleHarness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return h.request(t, http.MethodGet, path, "")
}

func (h *consoleHarness) post(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return h.request(t, http.MethodPost, path, resourceViewTarget)
}

// snapshot fetches the JSON view of resource for the harness session.
func (h *consoleHarness) snapshot(t *testing.T, resource string) viewResponse {
	t.Helper()
	resp, body := h.get(t, "/api/views/"+url.PathEscape(resource))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var out viewResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}
