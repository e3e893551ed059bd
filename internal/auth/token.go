// Package auth verifies the bearer tokens issued by the identity service.
// Token issuance lives outside this repository; both sides share an HS256
// secret.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity facts carried by a verified token.
type Claims struct {
	Subject string
	OrgID   string
	Role    string
}

// Verify parses and validates tokenString against secret and returns its
// claims. Expired, malformed or badly-signed tokens return ErrInvalidToken.
func Verify(tokenString string, secret []byte) (Claims, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if orgID, ok := mapClaims["orgId"].(string); ok {
		claims.OrgID = orgID
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if claims.Subject == "" || claims.OrgID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Sign mints a token for the given claims, valid for ttl. Kept for tests
// and operational tooling; the production issuer is external.
func Sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.Subject,
		"orgId": claims.OrgID,
		"role":  claims.Role,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
