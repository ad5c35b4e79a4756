package stubserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcallaghan/sessionlink/internal/dependencies/clock"
	"github.com/jcallaghan/sessionlink/internal/model"
)

// Errors
var (
	ErrInvalidLogin   = errors.New("invalid email or password")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrAccountExists  = errors.New("account already exists")
)

// account pairs a user record with its password hash
type account struct {
	user         model.User
	passwordHash string
}

// Accounts manages user accounts, login sessions and access tokens for
// the development backend. Everything lives in memory.
type Accounts struct {
	clock      clock.Clock
	signingKey []byte

	mu       sync.RWMutex
	byEmail  map[string]*account
	byID     map[int]*account
	sessions map[string]int
	nextID   int
}

// NewAccounts creates an empty account registry. The signing key backs
// the access tokens this registry mints and verifies.
func NewAccounts(clk clock.Clock, signingKey []byte) *Accounts {
	return &Accounts{
		clock:      clk,
		signingKey: signingKey,
		byEmail:    make(map[string]*account),
		byID:       make(map[int]*account),
		sessions:   make(map[string]int),
		nextID:     1,
	}
}

// Create registers a new account. The email must be unused.
func (a *Accounts) Create(ctx context.Context, name, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.byEmail[email]; exists {
		return nil, ErrAccountExists
	}

	acct := &account{
		user: model.User{
			ID:    a.nextID,
			Name:  name,
			Email: email,
		},
		passwordHash: string(hash),
	}
	a.nextID++

	a.byEmail[email] = acct
	a.byID[acct.user.ID] = acct

	user := acct.user
	return &user, nil
}

// Authenticate checks an email/password pair against the registry
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	a.mu.RLock()
	acct, ok := a.byEmail[email]
	a.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}

	user := acct.user
	return &user, nil
}

// CreateSession opens a login session for a user and returns its
// opaque session token
func (a *Accounts) CreateSession(userID int) string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	token := base64.RawURLEncoding.EncodeToString(b)

	a.mu.Lock()
	a.sessions[token] = userID
	a.mu.Unlock()

	return token
}

// UserBySession resolves a session token to its user
func (a *Accounts) UserBySession(token string) (*model.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	userID, ok := a.sessions[token]
	if !ok {
		return nil, ErrInvalidSession
	}
	acct, ok := a.byID[userID]
	if !ok {
		return nil, ErrInvalidSession
	}

	user := acct.user
	return &user, nil
}

// MintToken issues a signed access token for a user with the given
// expiration
func (a *Accounts) MintToken(userID int, expiresAt time.Time) (string, error) {
	now := a.clock.Now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// UserByToken verifies an access token and resolves its user
func (a *Accounts) UserByToken(tokenString string) (*model.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return a.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	acct, ok := a.byID[userID]
	if !ok {
		return nil, ErrInvalidToken
	}

	user := acct.user
	return &user, nil
}
