// Package auth authenticates announce as a GitHub App.
//
// A GitHub App signs a short-lived RS256 JWT with its private key and
// exchanges it for an installation access token. AppTokenSource performs
// that exchange and implements oauth2.TokenSource, so it plugs into
// oauth2.NewClient and the go-github client:
//
//	ts, err := auth.NewAppTokenSource(auth.AppConfig{
//	    AppID:          12345,
//	    InstallationID: 67890,
//	    PrivateKey:     pemBytes,
//	})
//	client, err := collect.NewGitHubClient(ts.Reusable(), "")
//
// Installation tokens last an hour; Reusable caches them until shortly
// before expiry.
package auth
