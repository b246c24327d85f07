// Package adminauth checks back-office credentials and issues signed
// session tokens.
package adminauth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "leopold-admin"

var (
	// ErrInvalidCredentials is returned for a wrong login or password.
	ErrInvalidCredentials = errors.New("invalid admin credentials")

	// ErrInvalidToken is returned for a malformed, forged or expired session token.
	ErrInvalidToken = errors.New("invalid admin session token")
)

// Authenticator verifies the single configured admin account.
type Authenticator struct {
	login []byte
	hash  []byte
}

// NewAuthenticator hashes password with bcrypt. A password that already is a
// bcrypt hash is used as is.
func NewAuthenticator(login, password string) (*Authenticator, error) {
	if login == "" || password == "" {
		return nil, errors.New("admin login and password are required")
	}

	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return &Authenticator{login: []byte(login), hash: hash}, nil
}

// Check returns ErrInvalidCredentials unless login and password match.
func (a *Authenticator) Check(login, password string) error {
	loginOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(login)), a.login) == 1
	// Always run bcrypt so a wrong login costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !loginOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Claims are the JWT claims of an admin session.
type Claims struct {
	jwt.RegisteredClaims
}

// Session is a verified admin session.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// Sessions signs and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a token issuer. An empty secret is replaced by random
// bytes, which invalidates tokens on restart.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a token for a new session with a random id.
func (s *Sessions) Issue() (string, Session, error) {
	now := s.now()
	sess := Session{ID: uuid.NewString(), ExpiresAt: now.Add(s.ttl)}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Issuer:    issuer,
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, sess, nil
}

// Parse verifies token and returns its session.
func (s *Sessions) Parse(token string) (Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return Session{}, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return Session{ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
