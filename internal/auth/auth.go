// Package auth manages the local user registry and the current session.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/kv"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/storage"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var errBadCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrInvalidInput)

// Registry registers users and tracks who is logged in.
type Registry struct {
	kv      kv.Store
	records *storage.Store
	clock   timecalc.Clock
	logger  *zap.Logger

	// cost is the bcrypt cost; tests lower it.
	cost int
}

// Option configures a Registry.
type Option func(*Registry)

// WithBcryptCost overrides the bcrypt cost.
func WithBcryptCost(cost int) Option {
	return func(r *Registry) { r.cost = cost }
}

// NewRegistry returns a Registry. records is used to create the empty data
// blob of new users.
func NewRegistry(kvs kv.Store, records *storage.Store, clock timecalc.Clock, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = timecalc.SystemClock{}
	}
	r := &Registry{kv: kvs, records: records, clock: clock, logger: logger, cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) loadUsers(ctx context.Context) (map[string]model.User, error) {
	raw, ok, err := r.kv.Get(ctx, storage.UsersKey)
	if err != nil {
		return nil, fmt.Errorf("reading user registry: %w", err)
	}
	users := map[string]model.User{}
	if !ok {
		return users, nil
	}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		r.logger.Warn("Malformed user registry, treating as empty", zap.Error(err))
		return map[string]model.User{}, nil
	}
	return users, nil
}

// Register creates a new account.
func (r *Registry) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", apperrors.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrInvalidInput, MinPasswordLength)
	}

	users, err := r.loadUsers(ctx)
	if err != nil {
		return err
	}
	if _, taken := users[username]; taken {
		return fmt.Errorf("%w: username %q is already taken", apperrors.ErrInvalidInput, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	users[username] = model.User{Password: string(hash), CreatedAt: r.clock.Now()}

	b, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := r.kv.Set(ctx, storage.UsersKey, string(b)); err != nil {
		return fmt.Errorf("writing user registry: %w", err)
	}
	if err := r.records.InitUser(ctx, username); err != nil {
		return err
	}
	r.logger.Info("User registered", zap.String("user", username))
	return nil
}

// Login verifies credentials and stores a new current session.
func (r *Registry) Login(ctx context.Context, username, password string) (model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.Session{}, fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
	}

	users, err := r.loadUsers(ctx)
	if err != nil {
		return model.Session{}, err
	}
	u, ok := users[username]
	if !ok {
		return model.Session{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.Session{}, errBadCredentials
		}
		r.logger.Warn("Stored password hash unusable", zap.String("user", username), zap.Error(err))
		return model.Session{}, errBadCredentials
	}

	sess := model.Session{
		ID:        uuid.NewString(),
		Username:  username,
		LoginTime: r.clock.Now(),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return model.Session{}, fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := r.kv.Set(ctx, storage.SessionKey, string(b)); err != nil {
		return model.Session{}, fmt.Errorf("writing session: %w", err)
	}
	return sess, nil
}

// Current returns the logged-in session or apperrors.ErrNoSession. A
// malformed stored session is removed and treated as logged out.
func (r *Registry) Current(ctx context.Context) (model.Session, error) {
	raw, ok, err := r.kv.Get(ctx, storage.SessionKey)
	if err != nil {
		return model.Session{}, fmt.Errorf("reading session: %w", err)
	}
	if !ok {
		return model.Session{}, apperrors.ErrNoSession
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.Username == "" {
		r.logger.Warn("Error parsing saved session, logging out", zap.Error(err))
		if delErr := r.kv.Delete(ctx, storage.SessionKey); delErr != nil {
			return model.Session{}, fmt.Errorf("clearing session: %w", delErr)
		}
		return model.Session{}, apperrors.ErrNoSession
	}
	return sess, nil
}

// Logout clears the current session.
func (r *Registry) Logout(ctx context.Context) error {
	if err := r.kv.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
