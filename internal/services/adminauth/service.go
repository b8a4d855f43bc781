package adminauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrTokenExpired       = errors.New("session token expired")
)

const nonceBytes = 16

// Service issues and validates stateless admin session tokens. A token is
// "issuedAtMillis.nonce.signature" where the signature is an HMAC-SHA256
// over "issuedAtMillis.nonce". No server-side session state is kept;
// expiry is derived from the embedded timestamp.
type Service struct {
	username string
	password string
	apiToken string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewService(username, password, apiToken, secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{
		username: username,
		password: password,
		apiToken: apiToken,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login checks the configured credential pair and issues a session token.
// An unconfigured pair never matches, so a deployment without admin
// credentials has no working login. Both fields are compared in constant
// time regardless of which one is wrong.
func (s *Service) Login(username, password string) (string, error) {
	if s.username == "" || s.password == "" {
		return "", ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return s.issue()
}

func (s *Service) issue() (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate session nonce: %w", err)
	}

	base := strconv.FormatInt(s.now().UnixMilli(), 10) + "." + hex.EncodeToString(nonce)
	return base + "." + s.sign(base), nil
}

// ValidateToken verifies the signature and the expiry window. Signature
// verification happens before any timestamp parsing so malformed and
// forged tokens are indistinguishable to the caller.
func (s *Service) ValidateToken(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	base := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(s.sign(base)), []byte(parts[2])) {
		return ErrInvalidToken
	}

	issuedMillis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrInvalidToken
	}

	issuedAt := time.UnixMilli(issuedMillis)
	now := s.now()
	if issuedAt.After(now.Add(time.Minute)) {
		return ErrInvalidToken
	}
	if now.Sub(issuedAt) > s.ttl {
		return ErrTokenExpired
	}

	return nil
}

// CheckAPIToken validates the static machine-to-machine token used by
// non-browser admin clients.
func (s *Service) CheckAPIToken(token string) bool {
	if s.apiToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) == 1
}

func (s *Service) sign(base string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}
