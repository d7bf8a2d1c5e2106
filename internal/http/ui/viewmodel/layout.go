package viewmodel

// NavItem is one sidebar entry.
type NavItem struct {
	Name   string
	Title  string
	Href   string
	Active bool
}

// Layout captures shared chrome metadata (titles, navigation state).
type Layout struct {
	Title       string
	PageTitle   string
	CurrentPage string
	Nav         []NavItem
	DevMode     bool
	CSRFToken   string
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
