// Package domain contains the tenant model and the contracts the resolver
// builds on.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Tenant represents one customer organization sharing the deployment. The
// core only ever reads tenant records; the administrative surface that
// creates and edits them lives elsewhere.
type Tenant struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"type:text;not null" json:"name"`

	// Slug, Subdomain and CustomDomain are independent lookup keys. All are
	// stored lowercased and unique when non-null.
	Slug         string  `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	Subdomain    string  `gorm:"type:text;not null;uniqueIndex:ux_tenants_subdomain" json:"subdomain"`
	CustomDomain *string `gorm:"type:text;uniqueIndex:ux_tenants_custom_domain" json:"custom_domain"`

	// An inactive tenant never resolves; the resolver treats it as absent.
	// No gorm default here: a default tag makes gorm omit the zero value on
	// insert, which would flip IsActive=false records to TRUE. The column
	// default lives in the SQL migration only.
	IsActive bool `gorm:"not null" json:"is_active"`

	// Branding is opaque to the core and passed through to the frontend.
	Branding datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"branding"`

	// FeatureFlags holds the raw flag JSON; parse it with ParseFeatures.
	FeatureFlags datatypes.JSON `gorm:"column:feature_flags" json:"feature_flags"`

	// Discord integration credentials. Opaque strings, never validated here.
	GuildID           string            `gorm:"column:guild_id;type:text" json:"guild_id"`
	OAuthClientID     string            `gorm:"column:oauth_client_id;type:text" json:"oauth_client_id"`
	OAuthClientSecret string            `gorm:"column:oauth_client_secret;type:text" json:"-"`
	BotToken          string            `gorm:"column:bot_token;type:text" json:"-"`
	WebhookURL        string            `gorm:"column:webhook_url;type:text" json:"-"`
	RoleMappings      datatypes.JSONMap `gorm:"column:role_mappings;type:jsonb;not null;default:'{}'" json:"role_mappings"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
