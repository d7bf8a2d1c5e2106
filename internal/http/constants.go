package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageDashboard = "dashboard"
	PageResource  = "resource"
	PageDetail    = "detail"
	PageNotFound  = "not-found"
)

// Template paths used for loading templates in dev mode and tests.
const (
	TemplatePathFromRoot = "web/templates"       // From project root
	TemplatePathFromTest = "../../web/templates" // From internal/http test files
	StaticPathFromRoot   = "web/static"
)

// Partial template names rendered on htmx swaps.
const (
	resourceViewTemplate = "resource-view"
)

// resourceViewTarget is the element id replaced by resource-view partials.
const resourceViewTarget = "resource-view"

// Content templates are defined once and reused to avoid per-call allocations.
//
//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageDashboard: "dashboard-content",
	PageResource:  "resource-content",
	PageDetail:    "detail-content",
	PageNotFound:  "not-found-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
