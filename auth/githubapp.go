package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	annhttp "github.com/randalmurphal/announce/http"
)

// Defaults for the GitHub App flow.
const (
	DefaultGitHubAPIURL = "https://api.github.com"

	// AppJWTTTL stays under GitHub's ten minute ceiling.
	AppJWTTTL = 9 * time.Minute

	// clockSkew backdates iat for runners with drifting clocks.
	clockSkew = 60 * time.Second

	// refreshEarly renews cached installation tokens before they lapse.
	refreshEarly = time.Minute

	exchangeTimeout = 30 * time.Second
)

// AppConfig identifies a GitHub App installation.
type AppConfig struct {
	AppID          int64
	InstallationID int64

	// PrivateKey is the app's PEM encoded RSA key.
	PrivateKey []byte

	// BaseURL defaults to DefaultGitHubAPIURL. Set it for GitHub Enterprise.
	BaseURL string

	HTTPClient *http.Client
	Now        func() time.Time
}

// ParseAppKey parses a PEM encoded RSA private key.
func ParseAppKey(pemData []byte) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAppKey, err)
	}
	return key, nil
}

// LoadAppKey reads and parses a private key file.
func LoadAppKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read app key: %w", err)
	}
	if _, err := ParseAppKey(data); err != nil {
		return nil, err
	}
	return data, nil
}

// GenerateAppJWT signs the JWT GitHub expects from an app: issuer is the
// app ID, RS256, at most ten minutes long.
func GenerateAppJWT(appID int64, key *rsa.PrivateKey, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-clockSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(AppJWTTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign app JWT: %w", err)
	}
	return signed, nil
}

// AppTokenSource mints installation access tokens.
type AppTokenSource struct {
	cfg AppConfig
	key *rsa.PrivateKey
}

var _ oauth2.TokenSource = (*AppTokenSource)(nil)

// NewAppTokenSource validates cfg and parses the private key.
func NewAppTokenSource(cfg AppConfig) (*AppTokenSource, error) {
	if cfg.AppID <= 0 || cfg.InstallationID <= 0 {
		return nil, ErrAppNotConfigured
	}
	key, err := ParseAppKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGitHubAPIURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AppTokenSource{cfg: cfg, key: key}, nil
}

// Reusable wraps the source so a token is minted once and reused until
// shortly before it expires.
func (s *AppTokenSource) Reusable() oauth2.TokenSource {
	return oauth2.ReuseTokenSourceWithExpiry(nil, s, refreshEarly)
}

type installationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token exchanges a fresh app JWT for an installation token.
func (s *AppTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
	defer cancel()
	return s.TokenContext(ctx)
}

// TokenContext is Token with caller-controlled cancellation.
func (s *AppTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	appJWT, err := GenerateAppJWT(s.cfg.AppID, s.key, s.cfg.Now())
	if err != nil {
		return nil, err
	}

	client := annhttp.NewClient(annhttp.ClientConfig{
		Client:      s.cfg.HTTPClient,
		BaseURL:     s.cfg.BaseURL,
		ServiceName: "github-app",
		BeforeRequest: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+appJWT)
			req.Header.Set("Accept", "application/vnd.github+json")
		},
	})

	var out installationToken
	path := fmt.Sprintf("/app/installations/%d/access_tokens", s.cfg.InstallationID)
	if err := client.Post(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: empty token in response", ErrTokenExchange)
	}

	return &oauth2.Token{
		AccessToken: out.Token,
		TokenType:   "token",
		Expiry:      out.ExpiresAt,
	}, nil
}
