// Package tenantctx carries the per-request tenant through the context and
// memoizes resolution for the lifetime of a single request. Nothing here
// caches across requests: tenant records can change between requests and a
// longer-lived cache risks serving stale or cross-tenant data.
package tenantctx

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/zap"
)

type requestTenantKey struct{}

// RequestTenant resolves the tenant for one inbound request at most once.
type RequestTenant struct {
	resolver domain.Resolver
	host     string
	log      *zap.Logger

	once     sync.Once
	tenant   *domain.Tenant
	features domain.Features
	err      error
}

// NewRequestTenant wraps a resolver and the request's host header.
func NewRequestTenant(res domain.Resolver, host string, log *zap.Logger) *RequestTenant {
	return &RequestTenant{resolver: res, host: host, log: log}
}

func (r *RequestTenant) resolve(ctx context.Context) {
	r.once.Do(func() {
		if r.resolver == nil {
			r.err = domain.ErrTenantNotFound
			return
		}
		r.tenant, r.err = r.resolver.Resolve(ctx, r.host)
		if r.err != nil {
			return
		}
		features, err := domain.ParseFeatures(r.tenant.FeatureFlags)
		if err != nil && r.log != nil {
			r.log.Warn("malformed tenant feature flags, using defaults",
				zap.String("tenant_id", r.tenant.ID.String()),
				zap.Error(err),
			)
		}
		r.features = features
	})
}

// Tenant returns the resolved tenant, resolving on first use.
func (r *RequestTenant) Tenant(ctx context.Context) (*domain.Tenant, error) {
	r.resolve(ctx)
	if r.err != nil {
		return nil, r.err
	}
	return r.tenant, nil
}

// TenantID returns the resolved tenant's id.
func (r *RequestTenant) TenantID(ctx context.Context) (snowflake.ID, error) {
	tenant, err := r.Tenant(ctx)
	if err != nil {
		return 0, err
	}
	return tenant.ID, nil
}

// FeatureEnabled reports whether the named flag is on for the resolved
// tenant. It is false when the tenant did not resolve.
func (r *RequestTenant) FeatureEnabled(ctx context.Context, name string) bool {
	r.resolve(ctx)
	if r.err != nil {
		return false
	}
	return r.features.Enabled(name)
}

// WithRequestTenant stores the request's tenant wrapper in the context.
func WithRequestTenant(ctx context.Context, rt *RequestTenant) context.Context {
	return context.WithValue(ctx, requestTenantKey{}, rt)
}

// FromContext returns the request's tenant wrapper, if set.
func FromContext(ctx context.Context) (*RequestTenant, bool) {
	if ctx == nil {
		return nil, false
	}
	rt, ok := ctx.Value(requestTenantKey{}).(*RequestTenant)
	return rt, ok && rt != nil
}

// RequireTenant returns the resolved tenant or the resolution failure.
// Requests carrying no tenant wrapper at all fail with ErrTenantNotFound.
func RequireTenant(ctx context.Context) (*domain.Tenant, error) {
	rt, ok := FromContext(ctx)
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return rt.Tenant(ctx)
}

// CurrentTenantID returns the resolved tenant id or the resolution failure.
func CurrentTenantID(ctx context.Context) (snowflake.ID, error) {
	rt, ok := FromContext(ctx)
	if !ok {
		return 0, domain.ErrTenantNotFound
	}
	return rt.TenantID(ctx)
}

// FeatureEnabled reports whether the named flag is on for the request's
// tenant; false when tenancy is unresolved.
func FeatureEnabled(ctx context.Context, name string) bool {
	rt, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return rt.FeatureEnabled(ctx, name)
}
