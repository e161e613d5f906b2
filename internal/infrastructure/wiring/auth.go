package wiring

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/config"
)

// TokenSource returns the bearer token source for auth, or nil when no
// credential is configured. A static token takes precedence over client
// credentials.
func TokenSource(ctx context.Context, auth config.Auth) oauth2.TokenSource {
	switch {
	case auth.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: auth.Token, TokenType: "Bearer"})
	case auth.TokenURL != "":
		cc := &clientcredentials.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			TokenURL:     auth.TokenURL,
			Scopes:       auth.Scopes,
		}
		return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx))
	default:
		return nil
	}
}
