// Package directory talks to the external tenant registry, the
// authoritative control plane for tenant records.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/tenant/domain"
	"go.uber.org/zap"
)

// Client resolves tenants against the directory over HTTP. Every call is
// bounded by the configured timeout so a slow directory cannot stall the
// resolution chain.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New builds a directory client, or returns nil when no directory is
// configured. The resolver treats a nil directory as a permanent miss on its
// first step.
func New(cfg config.Config, log *zap.Logger) domain.Directory {
	base := strings.TrimRight(cfg.Directory.BaseURL, "/")
	if base == "" {
		return nil
	}

	timeout := cfg.Directory.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("tenant.directory"),
	}
}

// ResolveKey asks the directory for the active tenant matching key on any of
// slug, subdomain or custom domain.
func (c *Client) ResolveKey(ctx context.Context, key string) (*domain.Tenant, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, domain.ErrTenantNotFound
	}

	endpoint := fmt.Sprintf("%s/v1/tenants/resolve?key=%s", c.baseURL, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrTenantNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: directory returned %d", domain.ErrDirectoryUnavailable, resp.StatusCode)
	}

	var tenant domain.Tenant
	if err := json.NewDecoder(resp.Body).Decode(&tenant); err != nil {
		c.log.Warn("directory returned undecodable tenant payload", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantNotFound
	}
	return &tenant, nil
}
