// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/vizion/internal/platform/constants"
)

const tokenIssuerName = "vizion-apitest"

// sessionClaims is the payload of the session cookie.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// tokenIssuer signs and verifies session tokens with HS256 and a per-server
// random secret.
type tokenIssuer struct {
	secret []byte
}

func newTokenIssuer() (*tokenIssuer, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("token: failed to generate secret: %w", err)
	}
	return &tokenIssuer{secret: secret}, nil
}

// issue returns a signed token valid for [constants.SessionTTL].
func (issuer *tokenIssuer) issue(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(constants.SessionTTL)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)
	if err != nil {
		return "", fmt.Errorf("token: failed to sign: %w", err)
	}
	return signed, nil
}

// verify checks the signature and expiry and returns the user id.
func (issuer *tokenIssuer) verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: unexpected signing method: %v", token.Header["alg"])
		}
		return issuer.secret, nil
	}, jwt.WithIssuer(tokenIssuerName))
	if err != nil {
		return "", fmt.Errorf("token: invalid: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("token: invalid claims")
	}
	return claims.UserID, nil
}

// # Passwords

// hashPassword uses the minimum bcrypt cost; these are throwaway test accounts.
func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("token: failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
