// Package resolver maps inbound hosts to tenants with a layered fallback
// strategy: directory first, then the local store, never the wrong tenant.
package resolver

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/zap"
)

// Mode gates the development fallback. It is passed explicitly so tests can
// exercise both modes deterministically.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// Resolution outcome labels reported to metrics.
const (
	sourceDirectory    = "directory"
	sourceReserved     = "reserved"
	sourceDevFallback  = "dev_fallback"
	sourceSubdomain    = "subdomain"
	sourceCustomDomain = "custom_domain"
	sourceNotFound     = "not_found"
)

// Options carries the resolver constants.
type Options struct {
	Mode              Mode
	PlatformDomain    string
	ReservedLabel     string
	LocalDevHost      string
	DefaultTenantSlug string
}

// OptionsFromConfig derives resolver options from application config.
func OptionsFromConfig(cfg config.Config) Options {
	mode := ModeDevelopment
	if cfg.IsProduction() {
		mode = ModeProduction
	}
	return Options{
		Mode:              mode,
		PlatformDomain:    cfg.Tenancy.PlatformDomain,
		ReservedLabel:     cfg.Tenancy.ReservedLabel,
		LocalDevHost:      cfg.Tenancy.LocalDevHost,
		DefaultTenantSlug: cfg.Tenancy.DefaultTenantSlug,
	}
}

type resolver struct {
	mode           Mode
	platformDomain string
	reservedHost   string
	reservedLabel  string
	devHost        string
	defaultSlug    string

	repo      domain.Repository
	directory domain.Directory
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// New builds the resolver. directory may be nil, in which case the
// directory step is a permanent miss and the local store carries resolution.
func New(opts Options, repo domain.Repository, dir domain.Directory, log *zap.Logger, m *metrics.Metrics) domain.Resolver {
	platformDomain := NormalizeHost(opts.PlatformDomain)
	reservedLabel := strings.ToLower(strings.TrimSpace(opts.ReservedLabel))
	return &resolver{
		mode:           opts.Mode,
		platformDomain: platformDomain,
		reservedLabel:  reservedLabel,
		reservedHost:   reservedLabel + "." + platformDomain,
		devHost:        NormalizeHost(opts.LocalDevHost),
		defaultSlug:    strings.ToLower(strings.TrimSpace(opts.DefaultTenantSlug)),
		repo:           repo,
		directory:      dir,
		log:            log.Named("tenant.resolver"),
		metrics:        m,
	}
}

// Resolve applies the ordered strategy. Each step proceeds to the next only
// on a miss; internal lookup failures are logged and count as a miss so a
// broken backend can never swap in a different tenant. If nothing resolves
// and at least one step failed with a transport error, the upstream error
// wins over a definitive NotFound.
func (r *resolver) Resolve(ctx context.Context, rawHost string) (*domain.Tenant, error) {
	host := NormalizeHost(rawHost)
	if host == "" {
		r.metrics.RecordResolution(sourceNotFound)
		return nil, domain.ErrTenantNotFound
	}

	sawUnavailable := false

	// 1. Directory lookup: the control plane wins when reachable.
	if r.directory != nil {
		if key := r.directoryKey(host); key != "" {
			tenant, err := r.directory.ResolveKey(ctx, key)
			switch {
			case err == nil:
				r.metrics.RecordResolution(sourceDirectory)
				return tenant, nil
			case errors.Is(err, domain.ErrTenantNotFound):
				// definitive miss in the control plane, try local fallbacks
			default:
				sawUnavailable = true
				r.metrics.RecordDirectoryFailure()
				r.log.Warn("tenant directory unreachable, falling back to local store",
					zap.String("host", host),
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}

	// 2. Reserved-name default: the platform's own host always resolves.
	if host == r.reservedHost {
		tenant, err := r.repo.FindBySlug(ctx, r.defaultSlug)
		if err == nil {
			r.metrics.RecordResolution(sourceReserved)
			return tenant, nil
		}
		sawUnavailable = r.noteLookupFailure(host, "reserved default", err) || sawUnavailable
	}

	// 3. Development fallback: lets a developer preview arbitrary hostnames
	// locally. Mode-gated so it can never activate in production.
	if r.mode == ModeDevelopment && host != r.devHost {
		tenant, err := r.repo.FirstActive(ctx)
		if err == nil {
			r.metrics.RecordResolution(sourceDevFallback)
			return tenant, nil
		}
		sawUnavailable = r.noteLookupFailure(host, "dev fallback", err) || sawUnavailable
	}

	// 4. Subdomain lookup against the local store.
	if label, ok := r.subdomainLabel(host); ok && label != r.reservedLabel {
		tenant, err := r.repo.FindBySubdomain(ctx, label)
		if err == nil {
			if conflicted, cerr := r.conflictsWithCustomDomain(ctx, host, tenant); cerr == nil && conflicted {
				r.metrics.RecordAmbiguousHost()
				r.log.Error("host matches both a subdomain and a different tenant's custom domain",
					zap.String("host", host),
					zap.String("subdomain", label),
				)
				return nil, domain.ErrAmbiguousHost
			}
			r.metrics.RecordResolution(sourceSubdomain)
			return tenant, nil
		}
		sawUnavailable = r.noteLookupFailure(host, "subdomain", err) || sawUnavailable
	}

	// 5. Custom-domain lookup against the local store.
	if !isLoopback(host) {
		tenant, err := r.repo.FindByCustomDomain(ctx, host)
		if err == nil {
			r.metrics.RecordResolution(sourceCustomDomain)
			return tenant, nil
		}
		sawUnavailable = r.noteLookupFailure(host, "custom domain", err) || sawUnavailable
	}

	// 6. Definitive failure.
	r.metrics.RecordResolution(sourceNotFound)
	if sawUnavailable {
		return nil, domain.ErrUpstreamUnavailable
	}
	return nil, domain.ErrTenantNotFound
}

// conflictsWithCustomDomain reports whether a custom-domain record for the
// full host points at a tenant other than the subdomain hit. An unreadable
// store cannot confirm a conflict; the subdomain hit stands in that case.
func (r *resolver) conflictsWithCustomDomain(ctx context.Context, host string, tenant *domain.Tenant) (bool, error) {
	other, err := r.repo.FindByCustomDomain(ctx, host)
	if err != nil {
		if !errors.Is(err, domain.ErrTenantNotFound) {
			r.log.Warn("ambiguity check skipped, store unreadable",
				zap.String("host", host),
				zap.Error(err),
			)
			return false, err
		}
		return false, nil
	}
	return other.ID != tenant.ID, nil
}

func (r *resolver) noteLookupFailure(host, step string, err error) bool {
	if errors.Is(err, domain.ErrTenantNotFound) {
		return false
	}
	r.log.Warn("tenant lookup failed, treating as miss",
		zap.String("host", host),
		zap.String("step", step),
		zap.Error(err),
	)
	return true
}

// directoryKey derives the key the directory is queried with. Only the exact
// reserved host maps to the "default" key; a reserved leading label on a
// deeper host (app.x.warden.example) is an ordinary subdomain key.
func (r *resolver) directoryKey(host string) string {
	if host == r.reservedHost {
		return "default"
	}
	if label, ok := r.subdomainLabel(host); ok {
		return label
	}
	if isLoopback(host) {
		return ""
	}
	return "custom:" + host
}

// subdomainLabel returns the leading label when host hangs off the platform
// wildcard domain.
func (r *resolver) subdomainLabel(host string) (string, bool) {
	suffix := "." + r.platformDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	rest := strings.TrimSuffix(host, suffix)
	if rest == "" {
		return "", false
	}
	if label, _, found := strings.Cut(rest, "."); found {
		return label, true
	}
	return rest, true
}

// NormalizeHost lowercases the host and strips any port and trailing dot.
func NormalizeHost(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

func isLoopback(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
