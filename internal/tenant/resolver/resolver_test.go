package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/zap"
)

type fakeRepo struct {
	bySlug      map[string]*domain.Tenant
	bySubdomain map[string]*domain.Tenant
	byDomain    map[string]*domain.Tenant
	first       *domain.Tenant

	unavailable bool
	calls       int
}

func (f *fakeRepo) lookup(m map[string]*domain.Tenant, key string) (*domain.Tenant, error) {
	f.calls++
	if f.unavailable {
		return nil, domain.ErrStoreUnavailable
	}
	tenant, ok := m[strings.ToLower(key)]
	if !ok || !tenant.IsActive {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

func (f *fakeRepo) FindBySlug(_ context.Context, slug string) (*domain.Tenant, error) {
	return f.lookup(f.bySlug, slug)
}

func (f *fakeRepo) FindBySubdomain(_ context.Context, subdomain string) (*domain.Tenant, error) {
	return f.lookup(f.bySubdomain, subdomain)
}

func (f *fakeRepo) FindByCustomDomain(_ context.Context, customDomain string) (*domain.Tenant, error) {
	return f.lookup(f.byDomain, customDomain)
}

func (f *fakeRepo) FirstActive(_ context.Context) (*domain.Tenant, error) {
	f.calls++
	if f.unavailable {
		return nil, domain.ErrStoreUnavailable
	}
	if f.first == nil {
		return nil, domain.ErrTenantNotFound
	}
	return f.first, nil
}

type fakeDirectory struct {
	byKey       map[string]*domain.Tenant
	unavailable bool
	lastKey     string
}

func (f *fakeDirectory) ResolveKey(_ context.Context, key string) (*domain.Tenant, error) {
	f.lastKey = key
	if f.unavailable {
		return nil, domain.ErrDirectoryUnavailable
	}
	tenant, ok := f.byKey[key]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return tenant, nil
}

func testTenant(id int64, slug string) *domain.Tenant {
	return &domain.Tenant{
		ID:       snowflake.ID(id),
		Name:     slug,
		Slug:     slug,
		IsActive: true,
	}
}

func testOptions(mode Mode) Options {
	return Options{
		Mode:              mode,
		PlatformDomain:    "warden.example",
		ReservedLabel:     "app",
		LocalDevHost:      "localhost:3000",
		DefaultTenantSlug: "default",
	}
}

func newTestResolver(t *testing.T, mode Mode, repo domain.Repository, dir domain.Directory) domain.Resolver {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return New(testOptions(mode), repo, dir, zap.NewNop(), m)
}

func TestResolveBySubdomain(t *testing.T) {
	acme := testTenant(1, "acme")
	repo := &fakeRepo{bySubdomain: map[string]*domain.Tenant{"acme": acme}}
	r := newTestResolver(t, ModeProduction, repo, nil)

	got, err := r.Resolve(context.Background(), "acme.warden.example")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)
}

func TestResolveStripsPortAndCase(t *testing.T) {
	acme := testTenant(1, "acme")
	repo := &fakeRepo{bySubdomain: map[string]*domain.Tenant{"acme": acme}}
	r := newTestResolver(t, ModeProduction, repo, nil)

	got, err := r.Resolve(context.Background(), "ACME.Warden.Example:8443")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)
}

func TestResolveByCustomDomain(t *testing.T) {
	acme := testTenant(1, "acme")
	repo := &fakeRepo{byDomain: map[string]*domain.Tenant{"mods.acme.gg": acme}}
	r := newTestResolver(t, ModeProduction, repo, nil)

	got, err := r.Resolve(context.Background(), "mods.acme.gg")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)
}

func TestResolveReservedHostUsesDefaultSlug(t *testing.T) {
	platform := testTenant(9, "default")
	repo := &fakeRepo{bySlug: map[string]*domain.Tenant{"default": platform}}
	r := newTestResolver(t, ModeProduction, repo, nil)

	got, err := r.Resolve(context.Background(), "app.warden.example")
	require.NoError(t, err)
	assert.Equal(t, platform.ID, got.ID)
}

func TestResolveInactiveTenantIsNotFound(t *testing.T) {
	gone := testTenant(2, "gone")
	gone.IsActive = false
	repo := &fakeRepo{bySubdomain: map[string]*domain.Tenant{"gone": gone}}
	r := newTestResolver(t, ModeProduction, repo, nil)

	_, err := r.Resolve(context.Background(), "gone.warden.example")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolveDirectoryWins(t *testing.T) {
	local := testTenant(1, "local")
	central := testTenant(2, "central")
	repo := &fakeRepo{bySubdomain: map[string]*domain.Tenant{"acme": local}}
	dir := &fakeDirectory{byKey: map[string]*domain.Tenant{"acme": central}}
	r := newTestResolver(t, ModeProduction, repo, dir)

	got, err := r.Resolve(context.Background(), "acme.warden.example")
	require.NoError(t, err)
	assert.Equal(t, central.ID, got.ID)
	assert.Equal(t, "acme", dir.lastKey)
}

func TestResolveDirectoryKeyDerivation(t *testing.T) {
	dir := &fakeDirectory{byKey: map[string]*domain.Tenant{}}
	repo := &fakeRepo{}
	r := newTestResolver(t, ModeProduction, repo, dir)

	cases := []struct {
		host string
		key  string
	}{
		{"app.warden.example", "default"},
		{"acme.warden.example", "acme"},
		{"mods.acme.gg", "custom:mods.acme.gg"},
	}
	for _, tc := range cases {
		_, _ = r.Resolve(context.Background(), tc.host)
		assert.Equal(t, tc.key, dir.lastKey, "host %s", tc.host)
	}
}

func TestResolveFallsBackWhenDirectoryUnavailable(t *testing.T) {
	acme := testTenant(1, "acme")
	repo := &fakeRepo{bySubdomain: map[string]*domain.Tenant{"acme": acme}}
	dir := &fakeDirectory{unavailable: true}
	r := newTestResolver(t, ModeProduction, repo, dir)

	got, err := r.Resolve(context.Background(), "acme.warden.example")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)
}

func TestResolveDevFallback(t *testing.T) {
	first := testTenant(3, "first")
	repo := &fakeRepo{first: first}
	r := newTestResolver(t, ModeDevelopment, repo, nil)

	got, err := r.Resolve(context.Background(), "whatever.invalid")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestResolveDevFallbackSkipsCanonicalDevHost(t *testing.T) {
	first := testTenant(3, "first")
	repo := &fakeRepo{first: first}
	r := newTestResolver(t, ModeDevelopment, repo, nil)

	_, err := r.Resolve(context.Background(), "localhost:3000")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolveDevFallbackNeverActivatesInProduction(t *testing.T) {
	first := testTenant(3, "first")
	repo := &fakeRepo{first: first}
	r := newTestResolver(t, ModeProduction, repo, nil)

	_, err := r.Resolve(context.Background(), "whatever.invalid")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolveAmbiguousHost(t *testing.T) {
	bySub := testTenant(1, "acme")
	byDomain := testTenant(2, "other")
	repo := &fakeRepo{
		bySubdomain: map[string]*domain.Tenant{"acme": bySub},
		byDomain:    map[string]*domain.Tenant{"acme.warden.example": byDomain},
	}
	r := newTestResolver(t, ModeProduction, repo, nil)

	_, err := r.Resolve(context.Background(), "acme.warden.example")
	assert.ErrorIs(t, err, domain.ErrAmbiguousHost)
}

func TestResolveSubdomainMatchingOwnCustomDomainIsNotAmbiguous(t *testing.T) {
	acme := testTenant(1, "acme")
	repo := &fakeRepo{
		bySubdomain: map[string]*domain.Tenant{"acme": acme},
		byDomain:    map[string]*domain.Tenant{"acme.warden.example": acme},
	}
	r := newTestResolver(t, ModeProduction, repo, nil)

	got, err := r.Resolve(context.Background(), "acme.warden.example")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, got.ID)
}

func TestResolveNotFoundIsDefinitive(t *testing.T) {
	r := newTestResolver(t, ModeProduction, &fakeRepo{}, nil)

	_, err := r.Resolve(context.Background(), "unknown.warden.example")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolveUpstreamUnavailableWhenEveryStepFails(t *testing.T) {
	repo := &fakeRepo{unavailable: true}
	dir := &fakeDirectory{unavailable: true}
	r := newTestResolver(t, ModeProduction, repo, dir)

	_, err := r.Resolve(context.Background(), "acme.warden.example")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestResolveEmptyHost(t *testing.T) {
	r := newTestResolver(t, ModeProduction, &fakeRepo{}, nil)

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestResolveIsIdempotent(t *testing.T) {
	acme := testTenant(1, "acme")
	repo := &fakeRepo{bySubdomain: map[string]*domain.Tenant{"acme": acme}}
	r := newTestResolver(t, ModeProduction, repo, nil)

	first, err := r.Resolve(context.Background(), "acme.warden.example")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "acme.warden.example")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeHost(t *testing.T) {
	cases := map[string]string{
		"Example.COM":     "example.com",
		"example.com:443": "example.com",
		"example.com.":    "example.com",
		" ":               "",
		"[::1]:8080":      "::1",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHost(in), "input %q", in)
	}
}

func TestSubdomainLabelUsesLeadingLabel(t *testing.T) {
	r := New(testOptions(ModeProduction), &fakeRepo{}, nil, zap.NewNop(), metrics.New(prometheus.NewRegistry())).(*resolver)

	label, ok := r.subdomainLabel("a.b.warden.example")
	require.True(t, ok)
	assert.Equal(t, "a", label)

	_, ok = r.subdomainLabel("warden.example")
	assert.False(t, ok)
}
