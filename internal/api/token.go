package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is the standard JWT issuer claim stamped on tokens this daemon
// mints, so a token can be told apart from one minted by another boxd.
const tokenIssuer = "boxd"

// issueAccessToken mints a short-lived HS256 JWT signed with secret, so a
// caller holding the static API key can trade it for a token that expires
// instead of sharing the long-lived secret with every downstream consumer.
func issueAccessToken(secret string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, expiresAt, err
}

// parseAccessToken verifies tokenString against secret and rejects anything
// not signed with an HMAC method (HS256/HS384/HS512) or not minted by this
// issuer.
func parseAccessToken(secret, tokenString string) error {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	if claims.Issuer != tokenIssuer {
		return errors.New("unexpected issuer")
	}
	return nil
}
