package session_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/activesession"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	devid "github.com/dmitrymomot/sessionkit/pkg/device"
	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestNew(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	store := activesession.NewFileStore(t.TempDir())
	dev := &device{id: "deadbeef"}

	_, err = session.New(nil, store, dev)
	assert.ErrorIs(t, err, session.ErrNoCookieManager)
	_, err = session.New(cookies, nil, dev)
	assert.ErrorIs(t, err, session.ErrNoStore)
	_, err = session.New(cookies, store, nil)
	assert.ErrorIs(t, err, session.ErrNoDevice)

	mgr, err := session.New(cookies, store, dev, session.WithConfig(session.Config{}))
	require.NoError(t, err)
	assert.Equal(t, session.DefaultConfig(), mgr.Config())
}

func TestManager_SessionID(t *testing.T) {
	t.Parallel()

	f := setup(t, session.WithSalt("pepper"))
	sum := sha256.Sum256([]byte("alice:u1:pepper"))
	assert.Equal(t, hex.EncodeToString(sum[:]), f.mgr.SessionID("alice", "u1"))
	assert.NotEqual(t, f.mgr.SessionID("alice", "u1"), f.mgr.SessionID("alice", "u2"))
}

func TestManager_LoginThenResolve(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()
	ctx := context.Background()

	var inv session.Invalidation
	rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
		var err error
		inv, err = f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)

		id, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAuthenticated, state)
		require.NotNil(t, id)
		assert.Equal(t, "alice", id.Username)
		assert.Equal(t, "u1", id.UserID)
		assert.Equal(t, session.SourceLogin, id.Source)
		assert.Equal(t, session.StateAuthenticated, s.State())
	})

	assert.True(t, inv.Required())
	assert.Equal(t, session.ReasonLogin, inv.Reason)

	t.Run("cookie payload", func(t *testing.T) {
		p, ok := f.payloadOf(t, rec)
		require.True(t, ok)
		assert.Equal(t, "alice", p.Username)
		assert.Equal(t, "u1", p.UserID)
		assert.True(t, p.Expiry.Equal(t0.Add(7*24*time.Hour)))
		assert.True(t, p.LastActivity.Equal(t0))

		c := rec.Result().Cookies()[0]
		assert.Equal(t, "auth_token", c.Name)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Expires.Equal(t0.Add(7*24*time.Hour)))
	})

	t.Run("device record", func(t *testing.T) {
		r, err := f.store.Load(ctx, "deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "alice", r.Username)
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, f.mgr.SessionID("alice", "u1"), r.SessionID)
	})

	t.Run("next request resolves from cookie", func(t *testing.T) {
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			id, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAuthenticated, state)
			require.NotNil(t, id)
			assert.Equal(t, "alice", id.Username)
			assert.Equal(t, session.SourceCookie, id.Source)
		})
	})
}

func TestManager_ResolveIsCachedPerScope(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})

	rec := httptest.NewRecorder()
	s := f.mgr.NewScope(rec, j.request("/"))
	ctx := context.Background()

	_, state := f.mgr.Resolve(ctx, s)
	require.Equal(t, session.StateAuthenticated, state)
	writes := len(rec.Result().Cookies())

	// A cached scope does not consult the device record again.
	require.NoError(t, f.store.Clear(ctx, "deadbeef"))
	for range 3 {
		id, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAuthenticated, state)
		assert.Equal(t, "alice", id.Username)
	}
	assert.Equal(t, writes, len(rec.Result().Cookies()), "cached resolves do no I/O")
}

func TestManager_AnonymousWithoutCookie(t *testing.T) {
	t.Parallel()

	f := setup(t)
	rec := f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
		id, state := f.mgr.Resolve(ctx, s)
		assert.Nil(t, id)
		assert.Equal(t, session.StateAnonymous, state)
		assert.Nil(t, s.Identity())
	})
	assert.Empty(t, rec.Result().Cookies())
}

func TestManager_Logout(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})
	require.Contains(t, j.cookies, "auth_token")

	t.Run("terminal for the scope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s := f.mgr.NewScope(rec, j.request("/"))
		ctx := context.Background()

		_, state := f.mgr.Resolve(ctx, s)
		require.Equal(t, session.StateAuthenticated, state)
		require.Positive(t, f.mgr.Registry().Len())

		inv := f.mgr.Logout(ctx, s)
		assert.True(t, inv.Required())
		assert.Equal(t, session.ReasonLogout, inv.Reason)

		// The request still carries a valid cookie and the cache was warm.
		id, state := f.mgr.Resolve(ctx, s)
		assert.Nil(t, id)
		assert.Equal(t, session.StateAnonymous, state)
		assert.Nil(t, s.Identity())

		assert.True(t, deleted(rec, "auth_token"))
		assert.Zero(t, f.mgr.Registry().Len())

		_, err := f.store.Load(ctx, "deadbeef")
		assert.ErrorIs(t, err, activesession.ErrNotFound)

		j.store(rec)
	})

	t.Run("next request is anonymous", func(t *testing.T) {
		assert.NotContains(t, j.cookies, "auth_token")
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
	})

	t.Run("idempotent without cookie", func(t *testing.T) {
		rec := f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
			f.mgr.Logout(ctx, s)
			f.mgr.Logout(ctx, s)
		})
		assert.True(t, deleted(rec, "auth_token"))
	})

	t.Run("login after logout in one scope", func(t *testing.T) {
		f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
			f.mgr.Logout(ctx, s)
			_, err := f.mgr.Login(ctx, s, "bob", "u2")
			require.NoError(t, err)
			id, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAuthenticated, state)
			assert.Equal(t, "bob", id.Username)
		})
	})
}

// Login at T0, active at T0+1d, gone at T0+8d.
func TestManager_FixedExpiryScenario(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()

	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})

	f.clock.Set(t0.Add(24 * time.Hour))
	rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
		id, state := f.mgr.Resolve(ctx, s)
		require.Equal(t, session.StateAuthenticated, state)
		assert.True(t, id.LastActivity.Equal(t0.Add(24*time.Hour)))
		assert.True(t, id.Expiry.Equal(t0.Add(7*24*time.Hour)))
	})

	p, ok := f.payloadOf(t, rec)
	require.True(t, ok, "resolve refreshes the cookie")
	assert.True(t, p.LastActivity.Equal(t0.Add(24*time.Hour)))
	assert.True(t, p.Expiry.Equal(t0.Add(7*24*time.Hour)), "expiry does not slide")

	r, err := f.store.Load(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.True(t, r.LastActive.Equal(t0.Add(24*time.Hour)))

	f.clock.Set(t0.Add(8 * 24 * time.Hour))

	// A client that ignores cookie expiry still presents the old value.
	stale := j.request("/")
	rec = httptest.NewRecorder()
	s := f.mgr.NewScope(rec, stale)
	ctx := context.Background()

	id, state := f.mgr.Resolve(ctx, s)
	assert.Nil(t, id)
	assert.Equal(t, session.StateAnonymous, state)
	assert.True(t, deleted(rec, "auth_token"), "expired payload is purged")

	_, state = f.mgr.Resolve(ctx, s)
	assert.Equal(t, session.StateAnonymous, state)

	j.store(rec)
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAnonymous, state)
	})
}

func TestManager_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})

	f.clock.Set(t0.Add(7 * 24 * time.Hour))
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAuthenticated, state, "honored while now <= expiry")
	})
}

func TestManager_BadCookies(t *testing.T) {
	t.Parallel()

	f := setup(t)
	other, err := cookie.New([]string{"another-secret-key-that-is-long-enough"})
	require.NoError(t, err)

	valid, err := session.EncodePayload(session.Payload{Username: "alice", UserID: "u1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
	}{
		{"unsigned json", `{"username":"alice","user_id":"u1","expiry":"2099-01-01 00:00:00"}`},
		{"garbage", "garbage"},
		{"signed by another key", other.Sign(valid)},
		{"signed but not json", f.cookies.Sign("alice")},
		{"signed without user id", f.cookies.Sign(`{"username":"alice","expiry":"2099-01-01 00:00:00"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.value})
			rec := httptest.NewRecorder()
			s := f.mgr.NewScope(rec, r)

			id, state := f.mgr.Resolve(context.Background(), s)
			assert.Nil(t, id)
			assert.Equal(t, session.StateAnonymous, state)
			assert.True(t, deleted(rec, "auth_token"))
		})
	}
}

func TestManager_LoginReplacesOtherUser(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "bob", "u2")
		require.NoError(t, err)
	})

	f.clock.Set(t0.Add(time.Hour))
	rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, state := f.mgr.Resolve(ctx, s)
		require.Equal(t, session.StateAuthenticated, state)

		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)

		id, _ := f.mgr.Resolve(ctx, s)
		assert.Equal(t, "alice", id.Username)
		assert.Equal(t, "u1", id.UserID)
	})

	var last session.Payload
	for _, c := range rec.Result().Cookies() {
		plain, err := f.cookies.Verify(c.Value)
		require.NoError(t, err)
		last, err = session.DecodePayload(plain)
		require.NoError(t, err)
	}
	assert.Equal(t, "alice", last.Username)
	assert.Equal(t, "u1", last.UserID)
	assert.True(t, last.Expiry.Equal(t0.Add(time.Hour+7*24*time.Hour)), "login writes a complete fresh payload")
}

func TestManager_LoginValidation(t *testing.T) {
	t.Parallel()

	f := setup(t)
	f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "", "u1")
		assert.ErrorIs(t, err, session.ErrInvalidIdentity)
		_, err = f.mgr.Login(ctx, s, "alice", "")
		assert.ErrorIs(t, err, session.ErrInvalidIdentity)
		_, err = f.mgr.LoginUser(ctx, s, nil)
		assert.ErrorIs(t, err, session.ErrInvalidIdentity)

		_, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAnonymous, state)
	})
}

func TestManager_LoginUser(t *testing.T) {
	t.Parallel()

	f := setup(t)
	user := &identity.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.LoginUser(ctx, s, user)
		require.NoError(t, err)

		id, _ := f.mgr.Resolve(ctx, s)
		require.NotNil(t, id.User)
		assert.Equal(t, "alice@example.com", id.User.Email)

		id.User.Email = "changed"
		again, _ := f.mgr.Resolve(ctx, s)
		assert.Equal(t, "alice@example.com", again.User.Email, "callers get copies")
	})
}

func TestManager_CookieWriteFailure(t *testing.T) {
	t.Parallel()

	f := setup(t, session.WithCookieName("bad name"))
	f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
		inv, err := f.mgr.Login(ctx, s, "alice", "u1")
		assert.ErrorIs(t, err, session.ErrCookieWrite)
		assert.False(t, inv.Required())

		_, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAnonymous, state)
	})
}

func TestManager_StoreFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: t0}
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	store := activesession.NewFileStore(filepath.Join(blocker, "active"))
	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	mgr, err := session.New(cookies, store, &device{id: "deadbeef"}, session.WithClock(clock.Now))
	require.NoError(t, err)

	j := newJar()
	rec := httptest.NewRecorder()
	s := mgr.NewScope(rec, j.request("/"))
	_, err = mgr.Login(context.Background(), s, "alice", "u1")
	require.NoError(t, err)
	j.store(rec)

	rec = httptest.NewRecorder()
	s = mgr.NewScope(rec, j.request("/"))
	_, state := mgr.Resolve(context.Background(), s)
	assert.Equal(t, session.StateAuthenticated, state)
	assert.Equal(t, session.StateAuthenticated, s.State())

	rec = httptest.NewRecorder()
	s = mgr.NewScope(rec, j.request("/"))
	assert.Equal(t, session.ReasonLogout, mgr.Logout(context.Background(), s).Reason)
}

func TestManager_EncryptedCookie(t *testing.T) {
	t.Parallel()

	f := setup(t, session.WithEncryptedCookie(true))
	j := newJar()
	rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})

	raw := rec.Result().Cookies()[0].Value
	plain, err := f.cookies.Open(raw)
	require.NoError(t, err)
	assert.Contains(t, plain, `"username":"alice"`)
	_, err = f.cookies.Verify(raw)
	assert.Error(t, err)

	f.visit(j, func(ctx context.Context, s *session.Scope) {
		id, state := f.mgr.Resolve(ctx, s)
		assert.Equal(t, session.StateAuthenticated, state)
		assert.Equal(t, "alice", id.Username)
	})
}

func TestManager_DirectoryCheck(t *testing.T) {
	t.Parallel()

	dir := stubDirectory{users: map[string]*identity.User{
		"alice": {ID: "u1", Username: "alice", Email: "alice@example.com"},
	}}

	t.Run("matching user", func(t *testing.T) {
		f := setup(t, session.WithDirectory(dir))
		j := newJar()
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, err := f.mgr.Login(ctx, s, "alice", "u1")
			require.NoError(t, err)
		})
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			id, state := f.mgr.Resolve(ctx, s)
			require.Equal(t, session.StateAuthenticated, state)
			require.NotNil(t, id.User)
			assert.Equal(t, "alice@example.com", id.User.Email)
		})
	})

	t.Run("user id mismatch purges", func(t *testing.T) {
		f := setup(t, session.WithDirectory(dir))
		j := newJar()
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, err := f.mgr.Login(ctx, s, "alice", "u-stale")
			require.NoError(t, err)
		})
		rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
		assert.True(t, deleted(rec, "auth_token"))
	})

	t.Run("unknown user purges", func(t *testing.T) {
		f := setup(t, session.WithDirectory(dir))
		j := newJar()
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, err := f.mgr.Login(ctx, s, "ghost", "u9")
			require.NoError(t, err)
		})
		rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
		assert.True(t, deleted(rec, "auth_token"))
	})

	t.Run("directory outage keeps the cookie", func(t *testing.T) {
		f := setup(t, session.WithDirectory(stubDirectory{err: errors.New("down")}))
		j := newJar()
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, err := f.mgr.Login(ctx, s, "alice", "u1")
			require.NoError(t, err)
		})
		rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
		assert.False(t, deleted(rec, "auth_token"))
		assert.Contains(t, j.cookies, "auth_token")
	})
}

func TestManager_DeviceRecovery(t *testing.T) {
	t.Parallel()

	// login signs alice in and returns a jar holding only the device cookie,
	// as a browser that lost its session cookie would.
	login := func(t *testing.T, f *fixture) *jar {
		t.Helper()
		j := newJar()
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, err := f.mgr.Login(ctx, s, "alice", "u1")
			require.NoError(t, err)
		})
		delete(j.cookies, "auth_token")
		return j
	}

	t.Run("client presenting its device cookie recovers", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		j := login(t, f)
		require.Contains(t, j.cookies, "device_session")

		f.clock.Set(t0.Add(2 * 24 * time.Hour))
		rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
			id, state := f.mgr.Resolve(ctx, s)
			require.Equal(t, session.StateAuthenticated, state)
			assert.Equal(t, "alice", id.Username)
			assert.Equal(t, session.SourceRecovery, id.Source)
		})

		p, ok := f.payloadOf(t, rec)
		require.True(t, ok, "recovery re-issues the cookie")
		assert.True(t, p.Expiry.Equal(t0.Add(7*24*time.Hour)), "expiry = last_active + ttl")
		assert.True(t, p.LastActivity.Equal(t0.Add(2*24*time.Hour)))
	})

	t.Run("client without device cookie stays anonymous", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		login(t, f)

		rec := f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("forged device cookie stays anonymous", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		login(t, f)

		j := newJar()
		j.cookies["device_session"] = &http.Cookie{Name: "device_session", Value: "deadbeef_1f0e_1700000000_1001_00000001"}
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
	})

	t.Run("record replaced by another client is not recovered", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		j := login(t, f)

		f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
			_, err := f.mgr.Login(ctx, s, "bob", "u2")
			require.NoError(t, err)
		})
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
	})

	t.Run("expired record stays anonymous", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		j := login(t, f)

		f.clock.Set(t0.Add(8 * 24 * time.Hour))
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})

		_, err := os.Stat(f.store.Path("deadbeef"))
		assert.True(t, os.IsNotExist(err), "expired record is deleted")
	})

	t.Run("record bound to another device is rejected", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		j := login(t, f)

		data, err := json.Marshal(map[string]string{
			"session_id":  "x",
			"username":    "mallory",
			"user_id":     "u9",
			"device_id":   "cafebabe_1_2",
			"last_active": t0.Format("2006-01-02 15:04:05"),
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(f.store.Path("deadbeef"), data, 0o600))

		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
	})

	t.Run("disabled by default", func(t *testing.T) {
		f := setup(t)
		j := login(t, f)
		assert.NotContains(t, j.cookies, "device_session")

		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
	})

	t.Run("not used after logout", func(t *testing.T) {
		f := setup(t, session.WithDeviceRecovery(true))
		j := login(t, f)

		rec := f.visit(j, func(ctx context.Context, s *session.Scope) {
			f.mgr.Logout(ctx, s)
		})
		assert.True(t, deleted(rec, "device_session"))
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			_, state := f.mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
		})
	})

	t.Run("device cookie name must differ from session cookie", func(t *testing.T) {
		cookies, err := cookie.New([]string{testSecret})
		require.NoError(t, err)
		_, err = session.New(cookies, activesession.NewFileStore(t.TempDir()), &device{id: "deadbeef"},
			session.WithConfig(session.Config{DeviceRecovery: true, DeviceCookieName: "auth_token"}),
		)
		assert.ErrorIs(t, err, session.ErrInvalidConfig)
	})
}

// Every client of one server shares the same device identity, so the device
// record alone must never authenticate a client.
func TestManager_DeviceRecoveryIsolatesClients(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: t0}
	store := activesession.NewFileStore(t.TempDir(), activesession.WithClock(clock.Now))
	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	dev := devid.New(filepath.Join(t.TempDir(), "device_id"),
		devid.WithFingerprint(func() string { return "a1b2c3d4e5f6" }),
		devid.WithClock(clock.Now),
	)
	mgr, err := session.New(cookies, store, dev,
		session.WithClock(clock.Now),
		session.WithDeviceRecovery(true),
	)
	require.NoError(t, err)
	f := &fixture{mgr: mgr, store: store, cookies: cookies, clock: clock}

	alice := newJar()
	f.visit(alice, func(ctx context.Context, s *session.Scope) {
		_, err := mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})

	t.Run("other client without cookies", func(t *testing.T) {
		rec := f.visit(newJar(), func(ctx context.Context, s *session.Scope) {
			id, state := mgr.Resolve(ctx, s)
			assert.Equal(t, session.StateAnonymous, state)
			assert.Nil(t, id)
		})
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("same client after losing its session cookie", func(t *testing.T) {
		j := &jar{cookies: map[string]*http.Cookie{"device_session": alice.cookies["device_session"]}}
		f.visit(j, func(ctx context.Context, s *session.Scope) {
			id, state := mgr.Resolve(ctx, s)
			require.Equal(t, session.StateAuthenticated, state)
			assert.Equal(t, "alice", id.Username)
			assert.Equal(t, session.SourceRecovery, id.Source)
		})
	})
}

func TestManager_ConcurrentTouches(t *testing.T) {
	t.Parallel()

	f := setup(t)
	j := newJar()
	f.visit(j, func(ctx context.Context, s *session.Scope) {
		_, err := f.mgr.Login(ctx, s, "alice", "u1")
		require.NoError(t, err)
	})

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := f.mgr.NewScope(httptest.NewRecorder(), j.request("/"))
			_, state := f.mgr.Resolve(context.Background(), s)
			assert.Equal(t, session.StateAuthenticated, state)
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(f.store.Path("deadbeef"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	r, err := f.store.Load(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "alice", r.Username)
}
