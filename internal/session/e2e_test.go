package session_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealforge/mealforge-go/internal/api"
	"github.com/mealforge/mealforge-go/internal/devserver"
	"github.com/mealforge/mealforge-go/internal/model"
	"github.com/mealforge/mealforge-go/internal/session"
	pkghttp "github.com/mealforge/mealforge-go/pkg/http"
	"github.com/mealforge/mealforge-go/pkg/kv"
	"github.com/mealforge/mealforge-go/pkg/log"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	server := devserver.New(
		devserver.Config{JWTSecret: []byte("e2e-secret"), TokenTTL: time.Hour},
		log.New(log.LevelDisabled),
	)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// newStack wires a manager the way cmd/mealforge does: real API client,
// token source and 401 hook registered, shared durable store.
func newStack(t *testing.T, baseURL string, store kv.Store) *session.Manager {
	t.Helper()

	client := api.NewClient(
		pkghttp.NewClient(pkghttp.WithBaseURL(baseURL), pkghttp.WithTimeout(5*time.Second)),
		log.New(log.LevelDisabled),
	)

	mgr := session.NewManager(client, store, log.New(log.LevelDisabled))
	client.SetTokenSource(mgr)
	client.OnUnauthorized(mgr.HandleAuthFailure)

	return mgr
}

func TestE2E_RegisterThenRestoreAfterRestart(t *testing.T) {
	backend := newBackend(t)
	store := kv.NewMemoryStore()
	ctx := context.Background()

	mgr := newStack(t, backend.URL, store)
	_, err := mgr.Register(ctx, model.Registration{
		Name:     "Robin",
		Email:    "Robin@Example.com ",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, session.StateAuthenticated, mgr.State())

	profile, ok := mgr.Profile()
	require.True(t, ok)
	assert.Equal(t, "robin@example.com", profile.Email, "email normalized before the request")

	// a fresh manager over the same store and backend is a process restart
	restarted := newStack(t, backend.URL, store)
	state, err := restarted.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StateAuthenticated, state)

	restored, ok := restarted.Profile()
	require.True(t, ok)
	assert.Equal(t, profile.ID, restored.ID)
}

func TestE2E_RestoreWithRejectedTokenEndsUnauthenticated(t *testing.T) {
	backend := newBackend(t)
	store := kv.NewMemoryStore()

	persistSession(t, store, "not-a-valid-token", testProfile)

	mgr := newStack(t, backend.URL, store)
	state, err := mgr.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.StateUnauthenticated, state)
	requireStorageEmpty(t, store)
}

func TestE2E_LogoutClearsStateWhenServerUnreachable(t *testing.T) {
	backend := newBackend(t)
	store := kv.NewMemoryStore()
	ctx := context.Background()

	mgr := newStack(t, backend.URL, store)
	_, err := mgr.Register(ctx, model.Registration{
		Name:     "Robin",
		Email:    "robin@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	backend.Close()

	mgr.Logout(ctx)

	assert.Equal(t, session.StateUnauthenticated, mgr.State())
	requireStorageEmpty(t, store)
}

func TestE2E_RevokedTokenMidSessionInvalidatesGlobally(t *testing.T) {
	backend := newBackend(t)
	store := kv.NewMemoryStore()
	ctx := context.Background()

	mgr := newStack(t, backend.URL, store)
	_, err := mgr.Register(ctx, model.Registration{
		Name:     "Robin",
		Email:    "robin@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	// overwrite the persisted token with garbage and restore: the manager
	// optimistically authenticates, the verification 401 tears it down
	require.NoError(t, store.Set(ctx, "auth_token", []byte("garbage")))
	restarted := newStack(t, backend.URL, store)
	state, err := restarted.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StateUnauthenticated, state)
	requireStorageEmpty(t, store)
}

func TestE2E_UpdateProfilePersistsMergedResult(t *testing.T) {
	backend := newBackend(t)
	store := kv.NewMemoryStore()
	ctx := context.Background()

	mgr := newStack(t, backend.URL, store)
	_, err := mgr.Register(ctx, model.Registration{
		Name:     "Old",
		Email:    "robin@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)

	newName := "New"
	merged, err := mgr.UpdateProfile(ctx, model.ProfileUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "New", merged.Name)
	assert.Equal(t, "robin@example.com", merged.Email)

	// merged result survives a restart without a fresh fetch
	restarted := newStack(t, backend.URL, store)
	_, err = restarted.Restore(ctx)
	require.NoError(t, err)

	profile, ok := restarted.Profile()
	require.True(t, ok)
	assert.Equal(t, "New", profile.Name)
}
