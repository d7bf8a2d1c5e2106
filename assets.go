// Package backoffice provides embedded console assets for production builds.
package backoffice

import "embed"

// In dev mode (DEV=true), assets are loaded from disk for quick iteration.
// In production mode, assets are served from these embedded filesystems.

//go:embed all:web/static
var StaticFS embed.FS

//go:embed all:web/templates
var TemplateFS embed.FS
