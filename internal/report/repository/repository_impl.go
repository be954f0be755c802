package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wardenhq/warden/internal/report/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed report store.
func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *repository) CountByReporterSince(ctx context.Context, tenantID, reporterID snowflake.ID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("tenant_id = ? AND reporter_id = ? AND created_at >= ?", tenantID, reporterID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) OldestByReporterSince(ctx context.Context, tenantID, reporterID snowflake.ID, since time.Time) (*time.Time, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reporter_id = ? AND created_at >= ?", tenantID, reporterID, since).
		Order("created_at ASC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	createdAt := report.CreatedAt
	return &createdAt, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID snowflake.ID, req domain.ListRequest) ([]domain.Report, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Limit > 0 {
		query = query.Limit(req.Limit)
	}
	if req.Offset > 0 {
		query = query.Offset(req.Offset)
	}

	var reports []domain.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
