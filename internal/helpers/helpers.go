package helpers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator checks Supabase-issued access tokens. Asymmetric tokens are
// verified against the project's JWKS; HS256 tokens are accepted only when a
// JWT secret is configured.
type TokenValidator struct {
	jwks       *keyfunc.JWKS
	hmacSecret []byte
}

// NewTokenValidator fetches the JWKS of the Supabase project at supabaseURL
// and keeps it refreshed in the background until Close is called.
func NewTokenValidator(ctx context.Context, supabaseURL, jwtSecret string) (*TokenValidator, error) {
	v := &TokenValidator{}
	if jwtSecret != "" {
		v.hmacSecret = []byte(jwtSecret)
	}
	if supabaseURL == "" {
		if v.hmacSecret == nil {
			return nil, errors.New("SUPABASE_URL not set")
		}
		return v, nil
	}

	jwksURL := fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", strings.TrimRight(supabaseURL, "/"))

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               fetchCtx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		if v.hmacSecret == nil {
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
		return v, nil
	}
	v.jwks = jwks
	return v, nil
}

func (v *TokenValidator) keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.hmacSecret == nil {
			return nil, errors.New("hmac signed tokens are not accepted")
		}
		return v.hmacSecret, nil
	}
	if v.jwks == nil {
		return nil, errors.New("no signing keys loaded")
	}
	return v.jwks.Keyfunc(token)
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256", "HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// NormalizeEmail trims and lower-cases an address. The result is the identity
// used to match members.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LooksLikeEmail is the minimal address check used by the form workflows.
func LooksLikeEmail(email string) bool {
	return strings.Contains(email, "@")
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
