package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/wardenhq/warden/internal/clock"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/report/domain"
	"go.uber.org/zap"
)

const rateLimitScope = "report_submit"

type service struct {
	repo    domain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics

	limit  int
	window time.Duration
}

// NewService builds the submission service with the given sliding-window
// policy (limit submissions per window per reporter per tenant).
func NewService(
	repo domain.Repository,
	genID *snowflake.Node,
	clk clock.Clock,
	log *zap.Logger,
	m *metrics.Metrics,
	limit int,
	window time.Duration,
) domain.Service {
	if limit <= 0 {
		limit = 3
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &service{
		repo:    repo,
		genID:   genID,
		clock:   clk,
		log:     log.Named("report"),
		metrics: m,
		limit:   limit,
		window:  window,
	}
}

func (s *service) CheckSubmitLimit(ctx context.Context, reporterID, tenantID snowflake.ID) (domain.SubmitQuota, error) {
	now := s.clock.Now()
	count, err := s.repo.CountByReporterSince(ctx, tenantID, reporterID, now.Add(-s.window))
	if err != nil {
		s.log.Warn("submit limit check failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("reporter_id", reporterID.String()),
			zap.Error(err),
		)
		return domain.SubmitQuota{}, fmt.Errorf("%w: %v", domain.ErrRateLimitUnavailable, err)
	}

	current := int(count)
	remaining := s.limit - current
	if remaining < 0 {
		remaining = 0
	}
	return domain.SubmitQuota{
		Allowed:   current < s.limit,
		Remaining: remaining,
		Current:   current,
		ResetAt:   now.Add(s.window),
	}, nil
}

func (s *service) NextAvailableSubmitTime(ctx context.Context, reporterID, tenantID snowflake.ID) (*time.Time, error) {
	now := s.clock.Now()
	oldest, err := s.repo.OldestByReporterSince(ctx, tenantID, reporterID, now.Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateLimitUnavailable, err)
	}
	if oldest == nil {
		return nil, nil
	}
	next := oldest.Add(s.window)
	if !next.After(now) {
		return nil, nil
	}
	return &next, nil
}

// Submit gates on the sliding window and persists the report. The check and
// the insert are not transactional: two concurrent submissions from the
// same reporter can both observe a free slot and exceed the limit by one.
// The window is an abuse deterrent, not a hard quota.
func (s *service) Submit(ctx context.Context, tenantID snowflake.ID, req domain.SubmitRequest) (*domain.Report, error) {
	if req.ReporterID == 0 || tenantID == 0 {
		return nil, domain.ErrInvalidSubmission
	}
	subject := strings.TrimSpace(req.SubjectID)
	reason := strings.TrimSpace(req.Reason)
	if subject == "" || reason == "" {
		return nil, domain.ErrInvalidSubmission
	}

	quota, err := s.CheckSubmitLimit(ctx, req.ReporterID, tenantID)
	if err != nil {
		// Fail closed: an unanswerable check never bypasses the gate.
		return nil, err
	}
	if !quota.Allowed {
		s.metrics.RecordRateLimitDenied(rateLimitScope)
		return nil, domain.ErrRateLimited
	}
	s.metrics.RecordRateLimitAllowed(rateLimitScope)

	now := s.clock.Now()
	report := &domain.Report{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		ReporterID: req.ReporterID,
		SubjectID:  subject,
		Reason:     reason,
		Details:    strings.TrimSpace(req.Details),
		Status:     domain.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *service) List(ctx context.Context, tenantID snowflake.ID, req domain.ListRequest) ([]domain.Report, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}
	return s.repo.ListByTenant(ctx, tenantID, req)
}
