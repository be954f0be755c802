package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	// ErrRateLimited means the reporter exhausted their submission window.
	ErrRateLimited = errors.New("report rate limit exceeded")
	// ErrRateLimitUnavailable means the store could not answer the limit
	// check. The submission path fails closed on it: no store, no report.
	ErrRateLimitUnavailable = errors.New("report rate limit unavailable")
	// ErrInvalidSubmission rejects submissions missing required fields.
	ErrInvalidSubmission = errors.New("invalid report submission")
)

// SubmitQuota is the reporter's standing against the sliding window.
// ResetAt is a conservative upper bound (now + window); callers needing the
// precise next-available instant use NextAvailableSubmitTime.
type SubmitQuota struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Current   int       `json:"current"`
	ResetAt   time.Time `json:"reset_at"`
}

// SubmitRequest is a new report submission.
type SubmitRequest struct {
	ReporterID snowflake.ID
	SubjectID  string
	Reason     string
	Details    string
}

// Service gates and persists report submissions per (reporter, tenant).
type Service interface {
	Submit(ctx context.Context, tenantID snowflake.ID, req SubmitRequest) (*Report, error)
	CheckSubmitLimit(ctx context.Context, reporterID, tenantID snowflake.ID) (SubmitQuota, error)
	// NextAvailableSubmitTime returns when the oldest report in the window
	// ages out, or nil when a slot is already free.
	NextAvailableSubmitTime(ctx context.Context, reporterID, tenantID snowflake.ID) (*time.Time, error)
	List(ctx context.Context, tenantID snowflake.ID, req ListRequest) ([]Report, error)
}
