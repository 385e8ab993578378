package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusworks/examport/internal/model"
)

// Store holds the process-wide authenticated identity: either a logged-in
// student or an admin bearer token. It is written only by the login/logout
// paths and read by every repository, so access is guarded by an RWMutex.
type Store struct {
	mu         sync.RWMutex
	student    *model.Student
	adminToken string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// SetStudent records the authenticated student, replacing any prior identity.
func (s *Store) SetStudent(student model.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.student = &student
	s.adminToken = ""
}

// Student returns the authenticated student, if any.
func (s *Store) Student() (model.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.student == nil {
		return model.Student{}, false
	}
	return *s.student, true
}

// SetAdminToken records the bearer token issued at admin login.
func (s *Store) SetAdminToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminToken = token
	s.student = nil
}

// AdminToken returns the current admin bearer token, or "" when not
// logged in as admin. Satisfies api.TokenSource.
func (s *Store) AdminToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminToken
}

// Clear drops the stored identity. Used on logout and application exit.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.student = nil
	s.adminToken = ""
}

// TokenExpiry decodes the admin token's registered claims without verifying
// the signature and returns the expiry time. The client cannot verify the
// backend's signature; the expiry is a display/re-login hint only.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.AdminToken()
	if token == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
