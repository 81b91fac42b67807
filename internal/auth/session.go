package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"sync"

	"sloozify/internal/models"

	"github.com/gorilla/securecookie"
)

// Errors for session token handling
var (
	ErrMissingSessionKey = errors.New("session keys not configured")
	ErrInvalidSessionKey = errors.New("invalid session key format")
)

const sessionCookie = "session"

// TokenCodecConfig holds token codec configuration
type TokenCodecConfig struct {
	// IsSecure sets the Secure flag on cookies (true for HTTPS)
	IsSecure bool
	// AllowInsecureKeys allows random key generation in dev mode
	// If false and keys are missing, NewTokenCodec returns an error
	AllowInsecureKeys bool
}

// TokenCodec turns an AuthUser into an opaque session token and back.
// The token is the whole session state: there is no server-side session
// store, and the credential is never part of the encoding.
type TokenCodec struct {
	sc       *securecookie.SecureCookie
	isSecure bool
}

// Track whether we've already warned about missing keys (warn only once)
var (
	keyWarningOnce sync.Once
	keyWarningMsg  string
)

// NewTokenCodec creates a token codec.
// In production (AllowInsecureKeys=false), returns an error if keys are not
// configured. In development (AllowInsecureKeys=true), generates random keys
// with a warning; tokens then stop decoding after a restart.
func NewTokenCodec(cfg TokenCodecConfig) (*TokenCodec, error) {
	hashKey, err := getKey("SESSION_HASH_KEY", 32, cfg.AllowInsecureKeys)
	if err != nil {
		return nil, err
	}

	blockKey, err := getKey("SESSION_BLOCK_KEY", 32, cfg.AllowInsecureKeys)
	if err != nil {
		return nil, err
	}

	keyWarningOnce.Do(func() {
		if keyWarningMsg != "" {
			log.Println(keyWarningMsg)
		}
	})

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(30 * 24 * 60 * 60) // 30 days

	return &TokenCodec{
		sc:       sc,
		isSecure: cfg.IsSecure,
	}, nil
}

// getKey reads key from environment or generates a random one if allowed
func getKey(envVar string, length int, allowRandom bool) ([]byte, error) {
	keyHex := os.Getenv(envVar)
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, ErrInvalidSessionKey
		}
		if len(key) < length {
			return nil, ErrInvalidSessionKey
		}
		return key[:length], nil
	}

	// Key not set
	if !allowRandom {
		return nil, ErrMissingSessionKey
	}

	// Generate random key (sessions won't survive restarts)
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	keyWarningMsg = "WARNING: Session keys not configured. Using random keys - sessions will not persist across server restarts. Set SESSION_HASH_KEY and SESSION_BLOCK_KEY environment variables for production."

	return key, nil
}

// Encode serializes the identity into an opaque token.
func (tc *TokenCodec) Encode(user *models.AuthUser) (string, error) {
	return tc.sc.Encode(sessionCookie, user)
}

// Decode is the inverse of Encode. Returns nil on any malformed or
// truncated token; a bad token is never an internal error.
func (tc *TokenCodec) Decode(token string) *models.AuthUser {
	var u models.AuthUser
	if err := tc.sc.Decode(sessionCookie, token, &u); err != nil {
		return nil
	}
	return &u
}

// SetSession writes the session cookie for an authenticated user.
func (tc *TokenCodec) SetSession(w http.ResponseWriter, user *models.AuthUser) error {
	token, err := tc.Encode(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		Secure:   tc.isSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// GetSession reads and decodes the session cookie. Returns nil when the
// cookie is absent or does not decode.
func (tc *TokenCodec) GetSession(r *http.Request) *models.AuthUser {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	return tc.Decode(cookie.Value)
}

// ClearSession removes the session cookie
func (tc *TokenCodec) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   tc.isSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
