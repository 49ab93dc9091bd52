package utils // package utils provides helper functions for token creation and hashing

import (
	"errors" // sentinel error for every token rejection
	"time"   // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // jti claim so individual tokens are traceable in logs
)

// ErrInvalidToken is the single rejection every validation failure collapses
// into. Expired, badly signed and malformed tokens are indistinguishable to
// the caller; the reason must never leak over the wire.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the identity a verified token carries. StoreName is empty
// for clients and for seller accounts without a store assignment.
type TokenClaims struct {
	Username  string
	Role      string
	StoreName string
}

// UserToken is a signed JWT plus its expiry, returned to login handlers.
type UserToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewUserToken builds and signs an HS256 JWT for a user. The claims carry
// the username, role and (for sellers) the assigned store name alongside
// the standard exp/iat/jti set. Validity is ttlDays from now; there is no
// refresh and no revocation, so a compromised token stays live until expiry.
func NewUserToken(secret, username, role, storeName string, ttlDays int) (UserToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"username":  username,
		"role":      role,
		"storeName": storeName,
		"exp":       exp.Unix(),
		"iat":       time.Now().UTC().Unix(),
		"jti":       uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return UserToken{}, err
	}
	return UserToken{Token: signed, Exp: exp}, nil
}

// ParseUserToken verifies a raw JWT and extracts the identity claims. Any
// failure — wrong algorithm, bad signature, expiry, missing claims — returns
// ErrInvalidToken and nothing else.
func ParseUserToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC before touching claims.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	storeName, _ := claims["storeName"].(string)
	if username == "" || role == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return TokenClaims{Username: username, Role: role, StoreName: storeName}, nil
}
