package domain

import (
	"context"
	"errors"
)

// Lookup failures. ErrTenantNotFound is a definitive miss; the unavailable
// errors mean the backing system could not answer and the resolver may fall
// through to its next step.
var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrStoreUnavailable     = errors.New("tenant store unavailable")
	ErrDirectoryUnavailable = errors.New("tenant directory unavailable")
	ErrAmbiguousHost        = errors.New("ambiguous host")
	ErrUpstreamUnavailable  = errors.New("tenant upstream unavailable")
)

// Repository is the read-only accessor over local tenant records. Every
// lookup is filtered to active tenants and compares keys case-normalized.
// Implementations return ErrTenantNotFound for a definitive miss and wrap
// ErrStoreUnavailable for transport failures so callers can tell the two
// apart.
type Repository interface {
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	FindByCustomDomain(ctx context.Context, domain string) (*Tenant, error)
	// FirstActive returns the active tenant with the lowest creation
	// timestamp. Only the development fallback uses it.
	FirstActive(ctx context.Context) (*Tenant, error)
}

// Directory is the external registry of tenant records, the authoritative
// control plane. It answers a single resolve-by-key query and may be slow or
// unreachable; implementations wrap ErrDirectoryUnavailable for transport
// failures.
type Directory interface {
	ResolveKey(ctx context.Context, key string) (*Tenant, error)
}

// Resolver maps an inbound host string to exactly one active tenant or a
// definitive failure.
type Resolver interface {
	Resolve(ctx context.Context, host string) (*Tenant, error)
}
