// Package credentials resolves per-tenant registry API credentials and
// exchanges them for short-lived access tokens.
package credentials

import (
	"context"
	"fmt"
	"strings"

	"matter_intake_backend/internal/credentials/secrets"
	"matter_intake_backend/platform/apperr"
	"matter_intake_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

// TokenExchanger performs the registry's refresh-token grant.
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, clientID, clientSecret, refreshToken string) (string, error)
}

// Provider authenticates a tenant against the registry. Three secrets are
// looked up by the lower-cased tenant initials, then exchanged for a bearer
// token. Any missing secret or a failed exchange is fatal for the operation.
type Provider struct {
	store     secrets.Store
	exchanger TokenExchanger
	log       *logger.Logger

	// Collapses concurrent exchanges for the same tenant; tokens are
	// short-lived so no caching beyond the in-flight call is done.
	group singleflight.Group
}

// New creates a credential provider.
func New(store secrets.Store, exchanger TokenExchanger, log *logger.Logger) *Provider {
	return &Provider{store: store, exchanger: exchanger, log: log}
}

// Authenticate resolves the tenant's credentials and returns an access token.
func (p *Provider) Authenticate(ctx context.Context, tenantInitials string) (string, error) {
	tenant := strings.ToLower(strings.TrimSpace(tenantInitials))
	if tenant == "" {
		return "", apperr.Validation("tenant initials are required")
	}

	token, err, _ := p.group.Do(tenant, func() (any, error) {
		return p.exchange(ctx, tenant)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (p *Provider) exchange(ctx context.Context, tenant string) (string, error) {
	clientID, err := p.store.Get(ctx, tenant+"/registry-client-id")
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, fmt.Sprintf("missing registry client id for tenant %s", tenant), err)
	}
	clientSecret, err := p.store.Get(ctx, tenant+"/registry-client-secret")
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, fmt.Sprintf("missing registry client secret for tenant %s", tenant), err)
	}
	refreshToken, err := p.store.Get(ctx, tenant+"/registry-refresh-token")
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, fmt.Sprintf("missing registry refresh token for tenant %s", tenant), err)
	}

	token, err := p.exchanger.ExchangeToken(ctx, clientID, clientSecret, refreshToken)
	if err != nil {
		p.log.Error("token exchange failed", "tenant", tenant, "error", err)
		return "", apperr.Wrap(apperr.KindAuth, "registry token exchange failed", err)
	}

	p.log.Debug("token exchange succeeded", "tenant", tenant)
	return token, nil
}
