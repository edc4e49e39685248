// Package auth guards the admin surface with a single configured account and
// short-lived HS256 tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer    = "foodify"
	roleAdmin = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

type Credentials struct {
	Username string
	// Password is used only when PasswordHash is empty.
	Password     string
	PasswordHash string
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	username string
	hash     []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthenticator(creds Credentials, secret []byte, ttl time.Duration) (*Authenticator, error) {
	if strings.TrimSpace(creds.Username) == "" {
		return nil, errors.New("admin username is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	hash := []byte(creds.PasswordHash)
	if len(hash) == 0 {
		if creds.Password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}

	return &Authenticator{
		username: creds.Username,
		hash:     hash,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Login checks the credentials and issues a token valid until the returned time.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(a.username)
}

func (a *Authenticator) Issue(subject string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

func (a *Authenticator) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != roleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
