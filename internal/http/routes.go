package httpx

import (
	"bytes"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	backoffice "github.com/JULEEP/admin-frontend"
	"github.com/JULEEP/admin-frontend/internal/adapters/memstore"
	"github.com/JULEEP/admin-frontend/internal/observability/metrics"
	"github.com/JULEEP/admin-frontend/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Views     ViewRegistry      // Required: mounted views per session
	Dashboard DashboardProvider // Optional: landing page figures
	// Sessions persists console sessions; an in-memory store is used when nil.
	Sessions      ports.SessionStore
	SessionTTL    time.Duration
	CookieName    string
	CookieDomain  string
	SecureCookies bool
	SettleTimeout time.Duration
	Metrics       *metrics.Metrics
	// TemplateFS overrides the template source (tests); chosen by IsDev otherwise.
	TemplateFS fs.FS
	IsDev      bool         // Development mode flag for hot reloading, etc.
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", healthHandler(services.Views))
	mux.Handle("HEAD /healthz", healthHandler(services.Views))
	mux.Handle("GET /metrics", services.Metrics.Handler())

	// Static assets at /static
	// Dev mode: serve from disk for hot reloading
	// Prod mode: serve from embedded FS
	mux.Handle("GET /static/", staticWithFallback(services.IsDev))

	uiHandlers := setupUIHandlers(services)
	if uiHandlers != nil {
		store := services.Sessions
		if store == nil {
			store = memstore.NewSessionStore(nil)
		}
		sessions := Sessions(SessionConfig{
			Store:        store,
			CookieName:   services.CookieName,
			CookieDomain: services.CookieDomain,
			TTL:          services.SessionTTL,
			Secure:       services.SecureCookies,
			Logger:       services.Logger,
		})
		csrf := CSRFProtection(CSRFConfig{
			CookieDomain: services.CookieDomain,
			TTL:          services.SessionTTL,
			Secure:       services.SecureCookies,
		})
		registerUIRoutes(mux, uiHandlers, func(next http.Handler) http.Handler {
			return csrf(sessions(next))
		})
		registerViewAPIRoutes(mux, &ViewHandlers{UI: uiHandlers}, sessions)
	}

	// Wrap with NotFound handler
	return &notFoundHandler{
		mux:        mux,
		uiHandlers: uiHandlers,
	}
}

// registerUIRoutes mounts the browser routes behind wrap (CSRF and sessions).
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, wrap func(http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, wrap(fn))
	}
	handle("GET /{$}", h.Index)
	handle("GET /{resource}", h.ResourcePage)
	// Detail routes use literal resource names so they cannot overlap /static/.
	for _, d := range h.Views.Catalog().All() {
		name := d.Name
		handle("GET /"+name+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			r.SetPathValue("resource", name)
			h.EntityDetail(w, r)
		})
	}
	handle("POST /{resource}/{id}/toggle", h.ToggleEntity)
	handle("POST /{resource}/{id}/delete", h.RequestDelete)
	handle("POST /{resource}/delete/confirm", h.ConfirmDelete)
	handle("POST /{resource}/delete/cancel", h.CancelDelete)
	handle("POST /{resource}/notice/ack", h.AcknowledgeNotice)
	handle("POST /{resource}/reload", h.ReloadView)
}

func registerViewAPIRoutes(mux *http.ServeMux, h *ViewHandlers, sessions func(http.Handler) http.Handler) {
	mux.Handle("GET /api/views/{resource}", sessions(http.HandlerFunc(h.Get)))
}

// templateFS picks the template source: disk in dev mode for quick iteration,
// the embedded copy otherwise.
func templateFS(services RouterServices) fs.FS {
	if services.TemplateFS != nil {
		return services.TemplateFS
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(backoffice.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		log.Printf("failed to create sub-filesystem for templates: %v; falling back to disk", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// setupUIHandlers creates UI handlers with a template renderer.
func setupUIHandlers(services RouterServices) *UIHandlers {
	if services.Views == nil {
		return nil
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services),
		Logger:     services.Logger,
	})
	if err != nil {
		if services.Logger != nil {
			services.Logger.Error("failed to create template renderer", slog.Any("error", err))
		} else {
			log.Printf("ERROR: failed to create template renderer: %v", err)
		}
		return nil
	}

	return &UIHandlers{
		T:             tr,
		Views:         services.Views,
		Dashboard:     services.Dashboard,
		SettleTimeout: services.SettleTimeout,
		IsDev:         services.IsDev,
		Logger:        services.Logger,
	}
}

// staticWithFallback serves /static/* assets.
// In dev mode (isDev=true), serves from disk for hot reloading.
// In production mode (isDev=false), serves from embedded FS.
func staticWithFallback(isDev bool) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}

	staticSub, err := fs.Sub(backoffice.StaticFS, StaticPathFromRoot)
	if err != nil {
		log.Printf("failed to create sub-filesystem for static assets: %v", err)
		// Fallback to disk serving if embed fails
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))), true)
}

// staticWithCacheHeaders wraps a static file handler to add cache headers.
// Embedded assets change only with a new build, so they get a short public cache.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}

	cw := newCaptureWriter(w)
	// Serve the request through the mux, capturing status, headers, and body
	h.mux.ServeHTTP(cw, r)

	// If the mux didn't handle the request (404), use our custom handler
	if cw.status == http.StatusNotFound {
		if h.uiHandlers != nil {
			h.uiHandlers.NotFound(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}

	// Not a 404 (e.g. 405 or a redirect): write the captured response
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		log.Printf("failed to write captured response: %v", err)
	}
}
