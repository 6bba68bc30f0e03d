package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/finance-dashboard/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// DefaultClockSkew is the tolerance applied to exp, iat and nbf.
const DefaultClockSkew = 30 * time.Second

// ErrMissingSubject means a verified token carried no sub claim.
var ErrMissingSubject = errors.New("token missing subject claim")

// Verifier verifies session JWTs issued by the identity provider
type Verifier struct {
	jwks   *JWKSManager
	issuer string
	skew   time.Duration
}

// NewVerifier creates a new JWT verifier. The iss claim must equal issuer
// exactly, including any trailing slash.
func NewVerifier(jwks *JWKSManager, issuer string) *Verifier {
	return &Verifier{
		jwks:   jwks,
		issuer: strings.TrimSpace(issuer),
		skew:   DefaultClockSkew,
	}
}

// Verify checks the signature, issuer and validity window of tokenString and
// returns its claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.SessionClaims, error) {
	keys, err := v.jwks.GetJWKS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAcceptableSkew(v.skew),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	if token.Subject() == "" {
		return nil, ErrMissingSubject
	}

	claims := &models.SessionClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
	}
	if exp := token.Expiration(); !exp.IsZero() {
		claims.Exp = exp.Unix()
	}
	if iat := token.IssuedAt(); !iat.IsZero() {
		claims.Iat = iat.Unix()
	}

	private := token.PrivateClaims()
	claims.Email = stringClaim(private, "email")
	claims.FirstName = stringClaim(private, "first_name")
	claims.LastName = stringClaim(private, "last_name")
	claims.ImageURL = stringClaim(private, "image_url")
	claims.Azp = stringClaim(private, "azp")

	return claims, nil
}

func stringClaim(claims map[string]any, name string) string {
	if v, ok := claims[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
