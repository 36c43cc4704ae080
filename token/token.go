// Package token holds the client side view of the bearer tokens issued by the gym API,
// and the signer the stub API uses to issue them.
package token

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"golang.org/x/oauth2"
)

// NewPair returns an access/refresh token pair. When the access token is a JWT carrying an
// exp claim, Expiry is filled in; it is left zero otherwise (oauth2 treats that as never
// expiring, the API remains the authority either way).
func NewPair(accessToken, refreshToken string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if claims, err := Inspect(accessToken); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok
}

// SetBearer writes the Authorization header for tok into h
func SetBearer(h http.Header, tok *oauth2.Token) {
	h.Set("Authorization", tok.Type()+" "+tok.AccessToken)
}

// Claims is the subset of an access token the client looks at
type Claims struct {
	Subject   string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresWithin reports whether the token expires in less than d from now.
// A token without an exp claim never does.
func (c *Claims) ExpiresWithin(d time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return NowTimeFunc().Add(d).After(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token WITHOUT verifying its signature.
// The client has no key to verify with; this is for display and diagnostics only.
func Inspect(rawToken string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &registered); err != nil {
		return nil, gymerrors.Wrapf(gymerrors.ErrInvalidToken, "%v", err)
	}

	claims := &Claims{Subject: registered.Subject}
	if id, err := strconv.ParseInt(registered.Subject, 10, 64); err == nil {
		claims.UserID = id
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
