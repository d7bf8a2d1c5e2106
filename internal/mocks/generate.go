// Package mocks provides mock implementations for testing the console engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockResourceClient(ctrl)
//	client.EXPECT().List(gomock.Any()).Return(items, nil)
package mocks

// Generate mock for ResourceClient interface from internal/ports package.
// This creates MockResourceClient with methods for all ResourceClient interface methods:
// List, PatchField, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_client_mock.go github.com/JULEEP/admin-frontend/internal/ports ResourceClient

// Generate mock for ResourceClientFactory interface from internal/ports package.
// This creates MockResourceClientFactory with methods for all ResourceClientFactory interface methods:
// ClientFor
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_client_factory_mock.go github.com/JULEEP/admin-frontend/internal/ports ResourceClientFactory

// Generate mock for SessionStore interface from internal/ports package.
// This creates MockSessionStore with methods for all SessionStore interface methods:
// Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/JULEEP/admin-frontend/internal/ports SessionStore
