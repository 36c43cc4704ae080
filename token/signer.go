package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Signer issues and verifies the access tokens handed out by the stub API
type Signer interface {
	// Issue creates a signed access token for userID valid for ttl
	Issue(userID int64, ttl time.Duration) (string, error)

	// Verify checks signature and expiry and returns the user ID the token was issued to
	Verify(rawToken string) (int64, error)
}

var _ Signer = (*HMACSigner)(nil)

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	secret []byte
	issuer string
}

// NewHMACSigner creates a new HMAC signer with the given secret
func NewHMACSigner(secret, issuer string) (*HMACSigner, error) {
	if secret == "" {
		return nil, errors.New("[token.NewHMACSigner] secret is required")
	}
	return &HMACSigner{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

func (h *HMACSigner) Issue(userID int64, ttl time.Duration) (string, error) {
	now := NowTimeFunc()
	claims := jwt.RegisteredClaims{
		Issuer:    h.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token with HMAC")
	}
	return signed, nil
}

func (h *HMACSigner) Verify(rawToken string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(rawToken, &claims, h.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, gymerrors.ErrTokenExpired
		}
		return 0, gymerrors.Wrapf(gymerrors.ErrInvalidToken, "%v", err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, gymerrors.Wrapf(gymerrors.ErrInvalidToken, "bad subject %q", claims.Subject)
	}
	return userID, nil
}

func (h *HMACSigner) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}
