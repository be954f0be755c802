package tenantctx

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type countingResolver struct {
	tenant *domain.Tenant
	err    error
	calls  int
}

func (r *countingResolver) Resolve(_ context.Context, _ string) (*domain.Tenant, error) {
	r.calls++
	return r.tenant, r.err
}

func TestRequestTenantResolvesOnce(t *testing.T) {
	res := &countingResolver{tenant: &domain.Tenant{ID: snowflake.ID(7), IsActive: true}}
	rt := NewRequestTenant(res, "acme.warden.example", zap.NewNop())
	ctx := WithRequestTenant(context.Background(), rt)

	for i := 0; i < 5; i++ {
		tenant, err := RequireTenant(ctx)
		require.NoError(t, err)
		assert.Equal(t, snowflake.ID(7), tenant.ID)
	}
	id, err := CurrentTenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(7), id)

	assert.Equal(t, 1, res.calls)
}

func TestRequestTenantMemoizesFailure(t *testing.T) {
	res := &countingResolver{err: domain.ErrTenantNotFound}
	rt := NewRequestTenant(res, "unknown.example", zap.NewNop())
	ctx := WithRequestTenant(context.Background(), rt)

	_, err := RequireTenant(ctx)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	_, err = RequireTenant(ctx)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Equal(t, 1, res.calls)
}

func TestRequireTenantWithoutWrapper(t *testing.T) {
	_, err := RequireTenant(context.Background())
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)

	_, err = CurrentTenantID(context.Background())
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestFeatureEnabled(t *testing.T) {
	res := &countingResolver{tenant: &domain.Tenant{
		ID:           snowflake.ID(7),
		IsActive:     true,
		FeatureFlags: datatypes.JSON(`{"archive": false}`),
	}}
	rt := NewRequestTenant(res, "acme.warden.example", zap.NewNop())
	ctx := WithRequestTenant(context.Background(), rt)

	assert.False(t, FeatureEnabled(ctx, domain.FeatureArchive))
	assert.True(t, FeatureEnabled(ctx, domain.FeaturePunishments))
	assert.Equal(t, 1, res.calls)
}

func TestFeatureEnabledFalseWhenUnresolved(t *testing.T) {
	res := &countingResolver{err: domain.ErrTenantNotFound}
	rt := NewRequestTenant(res, "unknown.example", zap.NewNop())
	ctx := WithRequestTenant(context.Background(), rt)

	assert.False(t, FeatureEnabled(ctx, domain.FeatureArchive))
	assert.False(t, FeatureEnabled(context.Background(), domain.FeatureArchive))
}

func TestFeatureEnabledMalformedFlagsUseDefaults(t *testing.T) {
	res := &countingResolver{tenant: &domain.Tenant{
		ID:           snowflake.ID(7),
		IsActive:     true,
		FeatureFlags: datatypes.JSON(`{broken`),
	}}
	rt := NewRequestTenant(res, "acme.warden.example", zap.NewNop())
	ctx := WithRequestTenant(context.Background(), rt)

	assert.True(t, FeatureEnabled(ctx, domain.FeatureArchive))
}
