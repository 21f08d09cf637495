package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// StaffClaims is the payload the login service signs into staff tokens.
type StaffClaims struct {
	StaffId int    `json:"staff_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	jwt.StandardClaims
}

func JwtGenerate(secret []byte, staffId int, name string, role string, lifespan time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &StaffClaims{
		StaffId: staffId,
		Name:    name,
		Role:    role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(lifespan).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	return t.SignedString(secret)
}

func JwtValidate(secret []byte, token string) (*StaffClaims, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	parsed, err := jwt.ParseWithClaims(token, &StaffClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*StaffClaims)
	if !ok || !parsed.Valid {
		return nil, ErrorUnauthorized
	}
	return claims, nil
}
