package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/wardenhq/warden/internal/tenant/domain"
	"github.com/wardenhq/warden/internal/tenantctx"
)

type tenantView struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Slug     string                 `json:"slug"`
	Branding map[string]interface{} `json:"branding"`
	Features map[string]bool        `json:"features"`
}

// GetTenant returns the resolved tenant's public configuration. Credentials
// never leave the server.
func (s *Server) GetTenant(c *gin.Context) {
	ctx := c.Request.Context()
	tenant, err := tenantctx.RequireTenant(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	features := make(map[string]bool)
	for _, name := range []string{
		tenantdomain.FeatureArchive,
		tenantdomain.FeaturePunishments,
		tenantdomain.FeatureDiscordNotify,
	} {
		features[name] = tenantctx.FeatureEnabled(ctx, name)
	}

	c.JSON(http.StatusOK, tenantView{
		ID:       tenant.ID.String(),
		Name:     tenant.Name,
		Slug:     tenant.Slug,
		Branding: tenant.Branding,
		Features: features,
	})
}
