package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ListRequest filters the triage listing.
type ListRequest struct {
	Status ReportStatus
	Limit  int
	Offset int
}

// Repository persists reports and answers the write-history queries the
// sliding-window limiter is computed from. The limiter state is derived on
// demand from report rows, never materialized separately.
type Repository interface {
	Create(ctx context.Context, report *Report) error
	CountByReporterSince(ctx context.Context, tenantID, reporterID snowflake.ID, since time.Time) (int64, error)
	// OldestByReporterSince returns the creation time of the oldest report in
	// the trailing window, or nil when the window is empty.
	OldestByReporterSince(ctx context.Context, tenantID, reporterID snowflake.ID, since time.Time) (*time.Time, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID, req ListRequest) ([]Report, error)
}
