package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrBadCredentials = errors.New("invalid credentials")
)

// Service issues and verifies the dashboard's bearer tokens.
type Service struct {
	secret   []byte
	expiry   time.Duration
	user     string
	password string
}

func New(secret string, expiry time.Duration, user, password string) *Service {
	return &Service{
		secret:   []byte(secret),
		expiry:   expiry,
		user:     user,
		password: password,
	}
}

// Login checks the configured dashboard credentials and issues a token.
func (s *Service) Login(email, password string) (string, error) {
	if s.user == "" || email != s.user || password != s.password {
		return "", ErrBadCredentials
	}
	return s.IssueToken(email)
}

// IssueToken signs an HS256 token for the given user.
func (s *Service) IssueToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken validates a token and returns the subject (user email).
func (s *Service) VerifyToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// FromHeader extracts the token from an Authorization header value,
// with or without the Bearer prefix.
func FromHeader(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return header[len("Bearer "):]
	}
	return header
}
