package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardenhq/warden/internal/report/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Report{}))
	return db
}

const (
	tenantID   = snowflake.ID(100)
	reporterID = snowflake.ID(200)
)

func seedReport(t *testing.T, db *gorm.DB, id int64, createdAt time.Time, status domain.ReportStatus) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Report{
		ID:         snowflake.ID(id),
		TenantID:   tenantID,
		ReporterID: reporterID,
		SubjectID:  "user-555",
		Reason:     "spam",
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}).Error)
}

func TestCountByReporterSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seedReport(t, db, 1, base.Add(-30*time.Hour), domain.StatusOpen)
	seedReport(t, db, 2, base.Add(-10*time.Hour), domain.StatusOpen)
	seedReport(t, db, 3, base.Add(-time.Hour), domain.StatusResolved)

	count, err := repo.CountByReporterSince(context.Background(), tenantID, reporterID, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCountScopesByTenantAndReporter(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedReport(t, db, 1, base.Add(-time.Hour), domain.StatusOpen)

	count, err := repo.CountByReporterSince(context.Background(), snowflake.ID(999), reporterID, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountByReporterSince(context.Background(), tenantID, snowflake.ID(999), base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOldestByReporterSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	oldest, err := repo.OldestByReporterSince(context.Background(), tenantID, reporterID, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, oldest)

	seedReport(t, db, 1, base.Add(-30*time.Hour), domain.StatusOpen)
	seedReport(t, db, 2, base.Add(-10*time.Hour), domain.StatusOpen)
	seedReport(t, db, 3, base.Add(-time.Hour), domain.StatusOpen)

	oldest, err = repo.OldestByReporterSince(context.Background(), tenantID, reporterID, base.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.True(t, oldest.Equal(base.Add(-10*time.Hour)))
}

func TestListByTenant(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seedReport(t, db, 1, base.Add(-3*time.Hour), domain.StatusOpen)
	seedReport(t, db, 2, base.Add(-2*time.Hour), domain.StatusResolved)
	seedReport(t, db, 3, base.Add(-time.Hour), domain.StatusOpen)

	reports, err := repo.ListByTenant(context.Background(), tenantID, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	// newest first
	assert.Equal(t, snowflake.ID(3), reports[0].ID)

	reports, err = repo.ListByTenant(context.Background(), tenantID, domain.ListRequest{Status: domain.StatusResolved})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, snowflake.ID(2), reports[0].ID)

	reports, err = repo.ListByTenant(context.Background(), tenantID, domain.ListRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, snowflake.ID(2), reports[0].ID)
}

func TestCreatePersistsReport(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := repo.Create(context.Background(), &domain.Report{
		ID:         snowflake.ID(42),
		TenantID:   tenantID,
		ReporterID: reporterID,
		SubjectID:  "user-555",
		Reason:     "harassment",
		Details:    "see attached thread",
		Status:     domain.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)

	count, err := repo.CountByReporterSince(context.Background(), tenantID, reporterID, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
