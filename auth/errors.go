package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidAppKey indicates the GitHub App private key is not an RSA PEM key.
	ErrInvalidAppKey = errors.New("invalid GitHub App private key")

	// ErrAppNotConfigured indicates a missing app ID or installation ID.
	ErrAppNotConfigured = errors.New("GitHub App ID and installation ID are required")

	// ErrTokenExchange indicates GitHub refused to mint an installation token.
	ErrTokenExchange = errors.New("installation token exchange failed")
)
