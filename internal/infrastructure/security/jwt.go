package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/northbeam/accounts-service/internal/application/auth"
	"github.com/northbeam/accounts-service/internal/domain"
)

// JWTSigner issues the signed session credential delivered in the client
// cookie. Validity is a pure function of signature + expiry.
type JWTSigner struct {
	secret []byte
	issuer string
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
	}
}

type sessionClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(accountID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) Verify(token string) (auth.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrSessionInvalid()
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.SessionClaims{}, domain.ErrSessionExpired()
		}
		return auth.SessionClaims{}, domain.ErrSessionInvalid()
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return auth.SessionClaims{}, domain.ErrSessionInvalid()
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return auth.SessionClaims{
		AccountID: claims.AccountID,
		Exp:       exp,
	}, nil
}
