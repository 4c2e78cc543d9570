// Package session owns the authenticated state of the client: the bearer
// token, the cached profile, and their durable copies. It is the sole writer
// of the auth_token and user_data storage keys.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/pkg/apperror"
	"github.com/mealforge/mealforge-go/pkg/kv"
	"github.com/mealforge/mealforge-go/pkg/log"
	"github.com/mealforge/mealforge-go/pkg/payload"
)

const (
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

const (
	storageKeyToken   = "auth_token"
	storageKeyProfile = "user_data"

	minPasswordLength = 6
)

type (
	State int

	// Manager drives the session lifecycle. Mutating operations are
	// serialized through opMu so that concurrent calls cannot leave the
	// durable copy disagreeing with the in-memory one; the short-held mu
	// guards the state fields themselves, which lets the global 401 hook
	// invalidate the session from inside an in-flight gateway call without
	// deadlocking.
	Manager struct {
		gateway Gateway
		store   kv.Store
		logger  log.Logger

		opMu sync.Mutex

		mu         sync.RWMutex
		state      State
		token      string
		profile    *model.Profile
		generation uint64
	}
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

func NewManager(gateway Gateway, store kv.Store, logger log.Logger) *Manager {
	return &Manager{
		gateway: gateway,
		store:   store,
		logger:  logger,
		state:   StateUnknown,
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Generation increases on every state transition. Callers running reads
// concurrently with a possible logout snapshot it before the read and
// discard the result if it moved.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Token implements the API client's token source.
func (m *Manager) Token(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.state == StateAuthenticated && m.token != ""
}

func (m *Manager) Profile() (model.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateAuthenticated || m.profile == nil {
		return model.Profile{}, false
	}
	return *m.profile, true
}

// Restore rebuilds session state from durable storage at startup. A cached
// token and profile enter Authenticated optimistically, then the live
// profile is fetched: an authentication failure purges the session, any
// other failure keeps the cached profile so the client stays usable offline.
func (m *Manager) Restore(ctx context.Context) (State, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	token, profile, ok := m.loadPersisted(ctx)
	if !ok {
		m.clearStorage(ctx)
		m.transition(StateUnauthenticated, "", nil)
		return StateUnauthenticated, nil
	}

	if expired, reason := tokenExpired(token); expired {
		m.logger.WithField("reason", reason).Info(ctx, "persisted token expired, discarding session")
		m.clearStorage(ctx)
		m.transition(StateUnauthenticated, "", nil)
		return StateUnauthenticated, nil
	}

	m.transition(StateAuthenticated, token, &profile)

	live, err := m.gateway.Me(ctx)
	switch {
	case err == nil:
		m.transition(StateAuthenticated, token, &live)
		if err := m.persistProfile(ctx, live); err != nil {
			m.logger.WithError(err).Warn(ctx, "failed to persist verified profile")
		}
	case apperror.IsKind(err, apperror.KindAuthentication):
		m.invalidate(ctx)
	default:
		m.logger.WithError(err).Warn(ctx, "session verification failed, keeping cached profile")
	}

	return m.State(), nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := payload.RequireFields(
		map[string]any{"email": email, "password": password},
		"email", "password",
	); err != nil {
		return model.Session{}, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	sess, err := m.gateway.Login(ctx, email, password)
	if err != nil {
		return model.Session{}, fmt.Errorf("login: %w", err)
	}

	if err := m.persistSession(ctx, sess); err != nil {
		return model.Session{}, err
	}
	m.transition(StateAuthenticated, sess.Token, &sess.Profile)

	return sess, nil
}

func (m *Manager) Register(ctx context.Context, registration model.Registration) (model.Session, error) {
	registration.Email = strings.ToLower(strings.TrimSpace(registration.Email))
	if err := payload.RequireFields(
		map[string]any{
			"name":     registration.Name,
			"email":    registration.Email,
			"password": registration.Password,
		},
		"name", "email", "password",
	); err != nil {
		return model.Session{}, err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	sess, err := m.gateway.Register(ctx, registration)
	if err != nil {
		return model.Session{}, fmt.Errorf("register: %w", err)
	}

	if err := m.persistSession(ctx, sess); err != nil {
		return model.Session{}, err
	}
	m.transition(StateAuthenticated, sess.Token, &sess.Profile)

	return sess, nil
}

// Logout clears local state unconditionally. The server call is best-effort:
// its failure is logged, never propagated.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, authenticated := m.Token(ctx); authenticated {
		if err := m.gateway.Logout(ctx); err != nil {
			m.logger.WithError(err).Warn(ctx, "server logout failed, clearing local session anyway")
		}
	}

	m.invalidate(ctx)
}

// CurrentProfile fetches the authoritative profile. The network fetch runs
// without the operation lock so reads do not queue behind mutations; the
// cache update and its durable copy take it, so a logout that won the race
// already holds both keys cleared and the stale result is discarded whole.
func (m *Manager) CurrentProfile(ctx context.Context) (model.Profile, error) {
	generation := m.Generation()

	live, err := m.gateway.Me(ctx)
	if err != nil {
		m.invalidateOnAuthFailure(ctx, err)
		return model.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	stale := m.generation != generation || m.state != StateAuthenticated
	if !stale {
		m.profile = &live
	}
	m.mu.Unlock()

	if !stale {
		if err := m.persistProfile(ctx, live); err != nil {
			m.logger.WithError(err).Warn(ctx, "failed to persist refreshed profile")
		}
	}

	return live, nil
}

func (m *Manager) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Profile, error) {
	if update.IsEmpty() {
		return model.Profile{}, apperror.NewValidation("profile update has no fields", nil)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	merged, err := m.gateway.UpdateProfile(ctx, update)
	if err != nil {
		m.invalidateOnAuthFailure(ctx, err)
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	token := m.token
	m.profile = &merged
	m.mu.Unlock()

	if err := m.persistSession(ctx, model.Session{Token: token, Profile: merged}); err != nil {
		return model.Profile{}, err
	}

	return merged, nil
}

func (m *Manager) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if err := payload.RequireFields(
		map[string]any{"currentPassword": currentPassword, "newPassword": newPassword},
		"currentPassword", "newPassword",
	); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return apperror.NewValidation(
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength),
			map[string]string{"newPassword": fmt.Sprintf("must be at least %d characters", minPasswordLength)},
		)
	}

	if err := m.gateway.ChangePassword(ctx, currentPassword, newPassword); err != nil {
		m.invalidateOnAuthFailure(ctx, err)
		return fmt.Errorf("change password: %w", err)
	}

	return nil
}

// HandleAuthFailure is the global 401 hook registered on the API client.
// Safe to call from inside an in-flight gateway call.
func (m *Manager) HandleAuthFailure(ctx context.Context) {
	m.invalidate(ctx)
}

func (m *Manager) invalidateOnAuthFailure(ctx context.Context, err error) {
	if apperror.IsKind(err, apperror.KindAuthentication) {
		m.invalidate(ctx)
	}
}

func (m *Manager) invalidate(ctx context.Context) {
	m.clearStorage(ctx)
	m.transition(StateUnauthenticated, "", nil)
}

func (m *Manager) transition(state State, token string, profile *model.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state
	m.token = token
	m.profile = profile
	m.generation++
}

// persistSession writes the durable copy, token first. A crash between the
// two writes leaves a token without a cached profile, which Restore treats
// as an absent session, never the reverse.
func (m *Manager) persistSession(ctx context.Context, sess model.Session) error {
	if err := m.store.Set(ctx, storageKeyToken, []byte(sess.Token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	return m.persistProfile(ctx, sess.Profile)
}

func (m *Manager) persistProfile(ctx context.Context, profile model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := m.store.Set(ctx, storageKeyProfile, data); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}

	return nil
}

func (m *Manager) loadPersisted(ctx context.Context) (string, model.Profile, bool) {
	tokenData, err := m.store.Get(ctx, storageKeyToken)
	if err != nil || len(tokenData) == 0 {
		return "", model.Profile{}, false
	}

	profileData, err := m.store.Get(ctx, storageKeyProfile)
	if err != nil {
		return "", model.Profile{}, false
	}

	var profile model.Profile
	if err := json.Unmarshal(profileData, &profile); err != nil {
		m.logger.WithError(err).Warn(ctx, "corrupt persisted profile, discarding session")
		return "", model.Profile{}, false
	}

	return string(tokenData), profile, true
}

func (m *Manager) clearStorage(ctx context.Context) {
	if err := m.store.Delete(ctx, storageKeyToken); err != nil {
		m.logger.WithError(err).Warn(ctx, "failed to clear persisted token")
	}
	if err := m.store.Delete(ctx, storageKeyProfile); err != nil {
		m.logger.WithError(err).Warn(ctx, "failed to clear persisted profile")
	}
}
