// Package session tracks the registered users, the logged-in user and the
// per-user key namespace every other store writes under.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/validation"
)

// Namespace is a resolved session. The zero value has no user and every Key
// call on it fails with ErrNoActiveSession.
type Namespace struct {
	User models.User
}

// Email is the address the namespace is keyed by
func (n Namespace) Email() string {
	return n.User.Email
}

// Key returns user_<email>_<dataType>
func (n Namespace) Key(dataType string) (string, error) {
	if n.User.Email == "" {
		return "", apperrors.ErrNoActiveSession
	}
	return KeyFor(n.User.Email, dataType), nil
}

// KeyFor builds a namespaced key without a session
func KeyFor(email, dataType string) string {
	return constants.UserKeyPrefix + email + "_" + dataType
}

// Store reads and writes the session keys
type Store struct {
	kv storage.Store
}

func New(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// CurrentUser returns the logged-in user, or nil when nobody is logged in.
// A malformed loggedUser blob is logged and treated as logged out.
func (s *Store) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	found, err := storage.GetJSON(ctx, s.kv, constants.LoggedUserKey, &u)
	if err != nil {
		if found {
			logger.Warn("Ignoring unreadable session", "error", err)
			return nil, nil
		}
		return nil, apperrors.Read(constants.LoggedUserKey, err)
	}
	if !found || u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

// Begin resolves the session once for a sequence of store calls
func (s *Store) Begin(ctx context.Context) (Namespace, error) {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return Namespace{}, err
	}
	if u == nil {
		return Namespace{}, apperrors.ErrNoActiveSession
	}
	return Namespace{User: *u}, nil
}

// NamespaceKey resolves the session and returns the key for dataType
func (s *Store) NamespaceKey(ctx context.Context, dataType string) (string, error) {
	ns, err := s.Begin(ctx)
	if err != nil {
		return "", err
	}
	return ns.Key(dataType)
}

// Users returns the registry. Read failures degrade to an empty registry.
func (s *Store) Users(ctx context.Context) []models.User {
	var users []models.User
	if _, err := storage.GetJSON(ctx, s.kv, constants.RegisteredUsersKey, &users); err != nil {
		logger.Warn("Failed to read user registry", "error", err)
		return []models.User{}
	}
	if users == nil {
		return []models.User{}
	}
	return users
}

func findUser(users []models.User, email string) (models.User, bool) {
	for _, u := range users {
		if u.SameEmail(email) {
			return u, true
		}
	}
	return models.User{}, false
}

// Register validates and stores a new user, then logs them in
func (s *Store) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := validation.Registration(name, email, password); err != nil {
		return nil, err
	}

	// A registry that cannot be read must not be overwritten
	var users []models.User
	if _, err := storage.GetJSON(ctx, s.kv, constants.RegisteredUsersKey, &users); err != nil {
		return nil, apperrors.Read(constants.RegisteredUsersKey, err)
	}
	if _, taken := findUser(users, email); taken {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := models.User{Name: name, Email: email, Password: hash}

	if err := storage.SetJSON(ctx, s.kv, constants.RegisteredUsersKey, append(users, u)); err != nil {
		return nil, apperrors.Write(constants.RegisteredUsersKey, err)
	}
	if err := s.setLoggedUser(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("Registered user", "email", email)
	return &u, nil
}

// Login verifies credentials against the registry and persists the session
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := validation.Required("email", email); err != nil {
		return nil, err
	}
	if err := validation.Required("password", password); err != nil {
		return nil, err
	}

	u, ok := findUser(s.Users(ctx), email)
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}
	match, err := VerifyPassword(password, u.Password)
	if err != nil {
		logger.Warn("Stored password hash is unreadable", "email", u.Email, "error", err)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !match {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.setLoggedUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) setLoggedUser(ctx context.Context, u models.User) error {
	if err := storage.SetJSON(ctx, s.kv, constants.LoggedUserKey, u); err != nil {
		return apperrors.Write(constants.LoggedUserKey, err)
	}
	return nil
}

// Logout clears the session pointer. Logging out twice is not an error.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, constants.LoggedUserKey); err != nil {
		return apperrors.Write(constants.LoggedUserKey, err)
	}
	return nil
}

// IsNoSession reports whether err means nobody is logged in
func IsNoSession(err error) bool {
	return errors.Is(err, apperrors.ErrNoActiveSession)
}
