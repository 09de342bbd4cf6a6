// Package mocks provides mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the auth ports. The mocks are generated using go:generate directives.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	lookup := mocks.NewMockAuthorizationLookup(ctrl)
//	lookup.EXPECT().CheckUser(gomock.Any(), "alice@example.com").Return(decision, nil)
package mocks

// Generate mock for AuthorizationLookup interface from internal/ports.
// This creates MockAuthorizationLookup with CheckUser.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=authorization_lookup_mock.go github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports AuthorizationLookup

// Generate mock for CacheRepository interface from internal/ports.
// This creates MockCacheRepository with Get, Set, Delete, Health.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports CacheRepository

// Generate mock for IdentityProvider interface from internal/ports.
// This creates MockIdentityProvider with Subscribe and EndSession.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=identity_provider_mock.go github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/ports IdentityProvider
