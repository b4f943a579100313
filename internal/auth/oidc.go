package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"kuenkele/timetrack/internal/config"
)

// ErrMissingSubject is returned for tokens that verify but carry no subject.
var ErrMissingSubject = errors.New("id token has no subject")

// OIDCVerifier checks ID tokens against the provider's keys and returns the
// subject as user id.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
	logger   *zap.Logger
}

// NewOIDCVerifier builds a verifier from the configured endpoints without
// a discovery round trip. Keys are fetched lazily from the JWKS URL.
func NewOIDCVerifier(ctx context.Context, cfg config.OIDCConfig, logger *zap.Logger) *OIDCVerifier {
	providerCfg := oidc.ProviderConfig{
		IssuerURL:   cfg.Issuer(),
		AuthURL:     cfg.AuthURL(),
		TokenURL:    cfg.TokenURL(),
		UserInfoURL: cfg.UserInfoURL(),
		JWKSURL:     cfg.JWKSURL(),
	}
	provider := providerCfg.NewProvider(ctx)

	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		logger:   logger,
	}
}

// Verify validates signature, issuer, audience and expiry of raw.
func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (string, error) {
	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		v.logger.Debug("ID token rejected", zap.Error(err))
		return "", fmt.Errorf("failed to verify id token: %w", err)
	}
	if token.Subject == "" {
		return "", ErrMissingSubject
	}
	return token.Subject, nil
}

// Endpoint returns the OAuth2 endpoints for cfg. With discover set, the
// provider's discovery document is used instead of the derived paths.
func Endpoint(ctx context.Context, cfg config.OIDCConfig, discover bool) (oauth2.Endpoint, error) {
	if !discover {
		return oauth2.Endpoint{
			AuthURL:  cfg.AuthURL(),
			TokenURL: cfg.TokenURL(),
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer())
	if err != nil {
		return oauth2.Endpoint{}, fmt.Errorf("failed to discover provider %s: %w", cfg.Issuer(), err)
	}
	return provider.Endpoint(), nil
}

// LogoutURL is the provider's end-session page with the ID token as hint, so
// the provider can end its own session for that login.
func LogoutURL(cfg config.OIDCConfig, idToken string) string {
	v := url.Values{}
	v.Set("id_token_hint", idToken)
	v.Set("client_id", cfg.ClientID)
	return cfg.EndSessionURL() + "?" + v.Encode()
}
