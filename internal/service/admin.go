// Package service contains the business logic layer.
//
// This file implements the admin session service: a single shared
// credential guarding the dashboard, exchanged for a server-issued
// session token.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/DukeRupert/gascert/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// SessionTokenBytes is the number of random bytes per session token.
// 32 bytes = 256 bits of entropy; hex-encoded to 64 characters.
const SessionTokenBytes = 32

// AdminService defines the interface for admin authentication.
//
// The token returned by Login is opaque to the client: the server keeps a
// SHA-256 hash of it with an expiry, and the cookie value is worthless
// once the session is removed. Nothing about the credential can be
// reconstructed from the token.
type AdminService interface {
	// Login checks the shared admin credential and mints a session token.
	// Returns domain.EUNAUTHORIZED on a wrong username or password.
	// There is no lockout or rate limiting; failed attempts may retry
	// immediately.
	Login(ctx context.Context, username, password string) (string, error)

	// Validate reports whether token belongs to an unexpired session.
	// Returns domain.EUNAUTHORIZED otherwise.
	Validate(ctx context.Context, token string) error

	// Logout unconditionally removes the session for token. Unknown
	// tokens are a no-op.
	Logout(ctx context.Context, token string)
}

// adminService implements AdminService with an in-memory session table.
//
// A single-process deployment is assumed; restarting the server logs the
// admin out, which is acceptable for a single shared credential.
type adminService struct {
	username        string
	password        string // plain value or bcrypt hash ($2 prefix)
	sessionDuration time.Duration
	logger          *slog.Logger

	mu       sync.Mutex
	sessions map[string]time.Time // token hash -> expiry
}

// NewAdminService creates a new AdminService.
func NewAdminService(username, password string, sessionDuration time.Duration, logger *slog.Logger) AdminService {
	return &adminService{
		username:        username,
		password:        password,
		sessionDuration: sessionDuration,
		logger:          logger,
		sessions:        make(map[string]time.Time),
	}
}

// Login checks the configured credential and mints a session token.
func (s *adminService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "admin.login"

	if !s.credentialsMatch(username, password) {
		s.logger.Info("admin login failed", "username", username)
		return "", domain.Unauthorized(op, "Invalid username or password")
	}

	raw := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", domain.Internal(err, op, "failed to generate session token")
	}
	token := hex.EncodeToString(raw)

	s.mu.Lock()
	s.sessions[hashToken(token)] = time.Now().Add(s.sessionDuration)
	s.mu.Unlock()

	s.logger.Info("admin login", "expires_in", s.sessionDuration)
	return token, nil
}

// Validate checks token against the session table, pruning it if expired.
func (s *adminService) Validate(ctx context.Context, token string) error {
	const op = "admin.validate"

	if token == "" {
		return domain.Unauthorized(op, "Authentication required")
	}

	key := hashToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[key]
	if !ok {
		return domain.Unauthorized(op, "Authentication required")
	}
	if time.Now().After(expiry) {
		delete(s.sessions, key)
		return domain.Unauthorized(op, "Session expired")
	}
	return nil
}

// Logout removes the session for token.
func (s *adminService) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	delete(s.sessions, hashToken(token))
	s.mu.Unlock()

	s.logger.Info("admin logout")
}

// credentialsMatch compares the submitted credential against configuration.
// Uses constant-time comparison throughout; both the username and password
// checks always run so timing does not reveal which one failed.
func (s *adminService) credentialsMatch(username, password string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	var passMatch bool
	if strings.HasPrefix(s.password, "$2") {
		passMatch = bcrypt.CompareHashAndPassword([]byte(s.password), []byte(password)) == nil
	} else {
		passMatch = subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	}

	return userMatch && passMatch
}

// hashToken returns the hex SHA-256 of a raw session token. Only hashes
// are kept server-side.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
