// Package domain contains the report model and service contracts for the
// submission write path.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReportStatus is the triage state of a report.
type ReportStatus string

const (
	StatusOpen      ReportStatus = "open"
	StatusResolved  ReportStatus = "resolved"
	StatusDismissed ReportStatus = "dismissed"
)

// Report is one player-filed report, always scoped to a tenant.
type Report struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index:ix_reports_tenant,priority:1" json:"tenant_id"`
	ReporterID snowflake.ID `gorm:"not null;index:ix_reports_reporter,priority:1" json:"reporter_id"`

	// SubjectID identifies the reported player; opaque to the core.
	SubjectID string       `gorm:"type:text;not null" json:"subject_id"`
	Reason    string       `gorm:"type:text;not null" json:"reason"`
	Details   string       `gorm:"type:text" json:"details"`
	Status    ReportStatus `gorm:"type:text;not null;default:'open'" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_reports_reporter,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Report) TableName() string { return "reports" }
