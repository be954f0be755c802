package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reportdomain "github.com/wardenhq/warden/internal/report/domain"
	"github.com/wardenhq/warden/internal/tenantctx"
)

type createReportRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Details   string `json:"details"`
}

// CreateReport files a new report for the request's tenant. The submission
// limiter inside the service is a hard gate: it fails closed when the store
// cannot answer.
func (s *Server) CreateReport(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, err := tenantctx.CurrentTenantID(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	report, err := s.reportSvc.Submit(ctx, tenantID, reportdomain.SubmitRequest{
		ReporterID: userID,
		SubjectID:  req.SubjectID,
		Reason:     req.Reason,
		Details:    req.Details,
	})
	if err != nil {
		if errors.Is(err, reportdomain.ErrRateLimited) {
			s.setSubmitRetryAfter(c, userID, tenantID)
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports returns open reports for triage.
func (s *Server) ListReports(c *gin.Context) {
	s.listReports(c, reportdomain.ReportStatus(c.Query("status")))
}

// ListArchivedReports returns resolved reports; the route only exists for
// tenants with the archive feature on.
func (s *Server) ListArchivedReports(c *gin.Context) {
	status := reportdomain.ReportStatus(c.Query("status"))
	if status == "" || status == reportdomain.StatusOpen {
		status = reportdomain.StatusResolved
	}
	s.listReports(c, status)
}

func (s *Server) listReports(c *gin.Context, status reportdomain.ReportStatus) {
	ctx := c.Request.Context()
	tenantID, err := tenantctx.CurrentTenantID(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reports, err := s.reportSvc.List(ctx, tenantID, reportdomain.ListRequest{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type reportQuotaResponse struct {
	reportdomain.SubmitQuota
	NextAvailableAt *time.Time `json:"next_available_at"`
}

// GetReportQuota returns the caller's standing against the submission window
// plus the precise instant a slot frees up.
func (s *Server) GetReportQuota(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, err := tenantctx.CurrentTenantID(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	quota, err := s.reportSvc.CheckSubmitLimit(ctx, userID, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	next, err := s.reportSvc.NextAvailableSubmitTime(ctx, userID, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, reportQuotaResponse{SubmitQuota: quota, NextAvailableAt: next})
}

// setSubmitRetryAfter derives Retry-After from the oldest report's expiry.
func (s *Server) setSubmitRetryAfter(c *gin.Context, userID, tenantID snowflake.ID) {
	next, err := s.reportSvc.NextAvailableSubmitTime(c.Request.Context(), userID, tenantID)
	if err != nil || next == nil {
		return
	}
	secs := int(time.Until(*next)/time.Second) + 1
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
}
