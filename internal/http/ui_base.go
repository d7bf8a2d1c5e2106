package httpx

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JULEEP/admin-frontend/internal/domain/model"
	"github.com/JULEEP/admin-frontend/internal/domain/view"
	"github.com/JULEEP/admin-frontend/internal/http/ui/viewmodel"
	"github.com/JULEEP/admin-frontend/internal/service"
)

// DefaultSettleTimeout bounds how long a handler waits for a view to finish
// its requests before rendering whatever state it has.
const DefaultSettleTimeout = 2 * time.Second

// ViewRegistry is the subset of the view registry the UI needs.
type ViewRegistry interface {
	Catalog() *model.ResourceCatalog
	Navigate(sess model.Session, resource string) (*view.View, error)
	Ensure(sess model.Session, resource string) (*view.View, error)
	Fetch(ctx context.Context, sess model.Session, resource, id string) (model.ResourceDescriptor, model.Entity, error)
	Current(sessionID, resource string) (*view.View, bool)
	Mounted() []service.MountedView
}

// DashboardProvider computes the dashboard summary.
type DashboardProvider interface {
	Summary(ctx context.Context, apiToken string) model.DashboardSummary
}

// Compile-time interface assertions to ensure concrete services satisfy their UI interfaces.
var (
	_ ViewRegistry      = (*service.ViewRegistry)(nil)
	_ DashboardProvider = (*service.DashboardService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Views     ViewRegistry
	Dashboard DashboardProvider
	// SettleTimeout bounds waits for in-flight requests; DefaultSettleTimeout when zero.
	SettleTimeout time.Duration
	IsDev         bool // Development mode flag for enhanced error reporting
	Logger        *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
	// NavActive names the highlighted sidebar entry; defaults to CurrentPage.
	NavActive string
}

// pageData is the data handed to the layout and content templates.
type pageData struct {
	viewmodel.Layout
	Resource  *viewmodel.ResourceView
	Detail    *viewmodel.EntityDetail
	Dashboard *viewmodel.Dashboard
	Code      string
	Message   string
}

// LayoutData implements viewmodel.LayoutProvider.
func (p *pageData) LayoutData() *viewmodel.Layout { return &p.Layout }

// buildLayout constructs shared layout metadata, including the resource navigation.
func (h *UIHandlers) buildLayout(meta PageMeta) viewmodel.Layout {
	active := meta.NavActive
	if active == "" {
		active = meta.CurrentPage
	}
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		DevMode:     h.IsDev,
	}
	layout.Nav = append(layout.Nav, viewmodel.NavItem{
		Name:   PageDashboard,
		Title:  "Dashboard",
		Href:   "/",
		Active: active == PageDashboard,
	})
	if h.Views != nil {
		for _, d := range h.Views.Catalog().All() {
			layout.Nav = append(layout.Nav, viewmodel.NavItem{
				Name:   d.Name,
				Title:  d.Title,
				Href:   "/" + d.Name,
				Active: active == d.Name,
			})
		}
	}
	return layout
}

// basePageData constructs the common page data for meta.
func (h *UIHandlers) basePageData(meta PageMeta) *pageData {
	return &pageData{Layout: h.buildLayout(meta)}
}

// renderPage renders a page with proper htmx partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data *pageData) {
	data.CSRFToken = GetCSRFToken(r)
	if data.Resource != nil {
		data.Resource.CSRFToken = data.CSRFToken
	}

	// Handle full page requests first (early return) to reduce nesting
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	// For htmx requests, render the content plus out-of-band header updates
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Hint client JS to update nav active state based on current path
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})

	layout := extractLayoutInfo(data)

	// Include a <title> element so htmx updates document.title on partial swaps
	safeDocTitle := html.EscapeString(layout.Title)
	if _, err := w.Write([]byte(`<title>` + safeDocTitle + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}

	// Out-of-band update for the header title
	safeTitle := html.EscapeString(layout.PageTitle)
	if _, err := w.Write([]byte(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` + safeTitle + `</h1>`)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}

	if err := h.T.t.ExecuteTemplate(w, ContentTemplateFor(layout.CurrentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
		return
	}
}

func extractLayoutInfo(data any) viewmodel.Layout {
	if provider, ok := data.(viewmodel.LayoutProvider); ok {
		if layout := provider.LayoutData(); layout != nil {
			return *layout
		}
	}
	if layout, ok := data.(viewmodel.Layout); ok {
		return layout
	}
	return viewmodel.Layout{}
}

// settle waits, within the configured bound, for v to finish its in-flight requests.
// A timeout is not an error: the caller renders the state reached so far.
func (h *UIHandlers) settle(ctx context.Context, v *view.View) error {
	timeout := h.SettleTimeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := v.WaitIdle(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// NotFound renders a 404 page for browsers and a JSON error for API paths.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || h.T == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("not found"),
		})
		return
	}
	h.renderErrorPage(w, r, http.StatusNotFound, "The page you're looking for doesn't exist.")
}

// renderErrorPage renders the standalone error layout with status code.
func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, code int, message string) {
	data := h.basePageData(PageMeta{
		Title:       http.StatusText(code) + " - Back Office",
		PageTitle:   http.StatusText(code),
		CurrentPage: PageNotFound,
	})
	data.Code = strconv.Itoa(code)
	data.Message = message

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := h.T.RenderError(w, r, data); err != nil {
		h.logger().Error("failed to render error page", "error", err, "status", code)
	}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	// In dev mode, show detailed error in the response
	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		errHTML := html.EscapeString(err.Error())
		pathHTML := html.EscapeString(r.URL.Path)
		contextHTML := html.EscapeString(context)
		if _, writeErr := w.Write([]byte(`
			<div class="template-error">
				<h2>Template Rendering Error</h2>
				<p><strong>Context:</strong> ` + contextHTML + `</p>
				<p><strong>Path:</strong> ` + pathHTML + `</p>
				<pre>` + errHTML + `</pre>
			</div>
		`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	// In production, show generic error
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
