// Package auth verifies credentials, registers accounts, and encodes the
// session tokens that carry an authenticated identity.
//
// The service tolerates the database being unreachable: lookups fall back
// to an in-memory account table seeded with the demo users, so the app
// works with zero external configuration.
package auth

import (
	"context"
	"fmt"
	"log"
	"sync"

	"sloozify/internal/database"
	apperrors "sloozify/internal/errors"
	"sloozify/internal/models"
	"sloozify/internal/sentry"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	lookupUserStmt = "SELECT id, email, name, role, password_hash FROM users WHERE email = ? LIMIT 1"
	insertUserStmt = "INSERT INTO users (id, email, password_hash, name, role) VALUES (?, ?, ?, ?, ?)"
)

// account pairs an identity with its credential hash. Only the service
// sees the hash; AuthUser values handed out never include it.
type account struct {
	user         models.AuthUser
	passwordHash []byte
}

// Service implements authentication and registration over the query
// router, with the in-memory table as fallback. Each Service owns its own
// table; there is no package-level state, so tests can run isolated
// instances in parallel.
type Service struct {
	db *database.Client

	mu    sync.RWMutex
	users map[string]*account // keyed by email
}

// NewService returns a service seeded with the two demo accounts.
func NewService(db *database.Client) *Service {
	s := &Service{
		db:    db,
		users: make(map[string]*account),
	}
	s.seed("1", "manager@sloozify.com", "manager123", "John Manager", models.RoleManager)
	s.seed("2", "keeper@sloozify.com", "keeper123", "Sarah Keeper", models.RoleStoreKeeper)
	return s
}

func (s *Service) seed(id, email, password, name string, role models.Role) {
	hash, err := hashPassword(password)
	if err != nil {
		log.Printf("[auth] seeding %s failed: %v", email, err)
		return
	}
	s.users[email] = &account{
		user:         models.AuthUser{ID: id, Email: email, Name: name, Role: role},
		passwordHash: []byte(hash),
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate verifies email/password and returns the matching identity,
// or nil when the credentials do not match any account. Invalid
// credentials are a normal outcome, not an error.
//
// The persistent store is consulted first; when it cannot answer (router
// unavailable or query failure) the in-memory table answers instead. The
// password is verified against the hash held by whichever store produced
// the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) *models.AuthUser {
	rows, err := s.db.Query(ctx, lookupUserStmt, email)
	switch {
	case err != nil:
		log.Printf("[auth] user lookup failed, using in-memory table: %v", err)
	case len(rows) > 0:
		return verifyRow(rows[0], password)
	}

	// Fall back on router failure or when the store has no such account.
	s.mu.RLock()
	acct, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		return nil
	}
	u := acct.user
	return &u
}

// verifyRow checks the supplied password against the stored hash and
// builds the identity from the persistent record. Returns nil on mismatch
// or on a malformed row.
func verifyRow(row database.Row, password string) *models.AuthUser {
	hash := rowString(row["password_hash"])
	if hash == "" {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil
	}
	return &models.AuthUser{
		ID:    rowString(row["id"]),
		Email: rowString(row["email"]),
		Name:  rowString(row["name"]),
		Role:  models.Role(rowString(row["role"])),
	}
}

// rowString normalizes the scalar representations drivers hand back.
func rowString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Register creates a new account. The in-memory table is authoritative for
// uniqueness and holds the durable copy; the persistent store receives a
// best-effort mirror whose failure never rolls the registration back.
// Returns ErrDuplicateAccount when the email is taken.
func (s *Service) Register(ctx context.Context, email, password, name string, role models.Role) (*models.AuthUser, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	acct := &account{
		user: models.AuthUser{
			ID:    uuid.NewString(),
			Email: email,
			Name:  name,
			Role:  role,
		},
		passwordHash: []byte(hash),
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		return nil, apperrors.ErrDuplicateAccount
	}
	s.users[email] = acct
	s.mu.Unlock()

	if _, err := s.db.Query(ctx, insertUserStmt,
		acct.user.ID, email, hash, name, string(role)); err != nil {
		log.Printf("[auth] persistent insert failed, account kept in memory: %v", err)
		sentry.CaptureError(err, "mirror registration to database")
	}

	u := acct.user
	return &u, nil
}
