package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"todoboard/internal/config"

	"github.com/MicahParks/keyfunc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const UserIDKey = "user_id"

var (
	ErrMissingAuthorization = errors.New("missing authorization header")
	ErrBadAuthorization     = errors.New("bad auth header")
	ErrInvalidToken         = errors.New("invalid token")
)

// Verifier validates bearer tokens issued by the identity provider and
// returns their subject as the user id.
type Verifier struct {
	jwks     *keyfunc.JWKS
	secret   []byte
	audience string
	issuer   string
	parser   *jwt.Parser
}

// NewVerifier prefers a JWKS endpoint when one is configured and falls back
// to an HS256 shared secret.
func NewVerifier(cfg *config.Config, logger *zap.Logger) (*Verifier, error) {
	v := &Verifier{audience: cfg.JWTAudience, issuer: cfg.JWTIssuer}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				logger.Warn("Failed to refresh JWKS", zap.Error(err))
			},
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		v.jwks = jwks
		v.parser = jwt.NewParser(jwt.WithValidMethods([]string{"RS256", "ES256"}))
	case cfg.JWTSecret != "":
		v.secret = []byte(cfg.JWTSecret)
		v.parser = jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	default:
		return nil, errors.New("either JWKS_URL or JWT_SECRET must be set")
	}

	logger.Info("Auth configured", zap.Bool("jwks", v.jwks != nil))
	return v, nil
}

// NewHS256Verifier builds a shared-secret verifier without touching config.
func NewHS256Verifier(secret, audience, issuer string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func (v *Verifier) keyFor(token *jwt.Token) (interface{}, error) {
	if v.jwks != nil {
		return v.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("invalid signing method")
	}
	return v.secret, nil
}

// UserID verifies a raw token and returns its sub claim.
func (v *Verifier) UserID(raw string) (string, error) {
	if raw == "" {
		return "", ErrBadAuthorization
	}

	token, err := v.parser.Parse(raw, v.keyFor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return "", fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return "", fmt.Errorf("%w: invalid audience", ErrInvalidToken)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return "", fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return sub, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingAuthorization
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrBadAuthorization
	}
	token := strings.TrimSpace(header[len(prefix):])
	if strings.Count(token, ".") != 2 {
		return "", ErrBadAuthorization
	}
	return token, nil
}

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
