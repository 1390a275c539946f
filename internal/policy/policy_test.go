package policy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeRoles map[string]gate.Role

func (f fakeRoles) RoleOf(_ context.Context, uid string) (gate.Role, error) {
	if uid == "broken" {
		return gate.RoleUser, errors.New("connection reset")
	}
	if r, ok := f[uid]; ok {
		return r, nil
	}
	return gate.RoleUser, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Profile{}))
	return db
}

func TestDBRoleResolver(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Profile{ID: "admin-1", Username: "root", Role: "admin"}).Error)
	require.NoError(t, db.Create(&models.Profile{ID: "user-1", Username: "ana"}).Error)

	r := NewDBRoleResolver(db)
	ctx := context.Background()

	role, err := r.RoleOf(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, gate.RoleAdmin, role)

	role, err = r.RoleOf(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, gate.RoleUser, role)

	role, err = r.RoleOf(ctx, "nobody")
	require.NoError(t, err, "missing profile is a plain user")
	assert.Equal(t, gate.RoleUser, role)
}

func TestDBRoleResolver_StoreError(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = NewDBRoleResolver(db).RoleOf(context.Background(), "x")
	assert.Error(t, err)
}

func TestAuthGate_Actor(t *testing.T) {
	ag := NewAuthGateWithRoles(fakeRoles{"boss": gate.RoleAdmin})

	a, err := ag.Actor(context.Background())
	require.NoError(t, err)
	assert.False(t, a.Authenticated())

	a, err = ag.Actor(auth.WithUserID(context.Background(), "boss"))
	require.NoError(t, err)
	assert.Equal(t, gate.Actor{UserID: "boss", Role: gate.RoleAdmin}, a)

	_, err = ag.Actor(auth.WithUserID(context.Background(), "broken"))
	assert.Error(t, err)
}

func TestGuard_Order(t *testing.T) {
	ag := NewAuthGateWithRoles(fakeRoles{"boss": gate.RoleAdmin})
	owner := func(ctx context.Context) (gate.Ownable, error) { return gate.Owner("alice"), nil }
	missing := func(ctx context.Context) (gate.Ownable, error) { return nil, gorm.ErrRecordNotFound }

	tests := []struct {
		name    string
		uid     string
		load    LoadFunc
		wantErr error
		ran     bool
	}{
		{"missing record beats missing identity", "", missing, store.ErrNotFound, false},
		{"no identity", "", owner, gate.ErrUnauthenticated, false},
		{"stranger", "bob", owner, gate.ErrForbidden, false},
		{"owner", "alice", owner, nil, true},
		{"admin", "boss", owner, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.uid != "" {
				ctx = auth.WithUserID(ctx, tt.uid)
			}
			ran := false
			got, err := Guard(ctx, ag, ResourceComment, gate.ActionDelete, tt.load,
				func(_ context.Context, actor gate.Actor) (string, error) {
					ran = true
					return "ok:" + actor.UserID, nil
				})
			assert.Equal(t, tt.ran, ran)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok:"+tt.uid, got)
		})
	}
}

func TestGuard_PerformErrorPassesThrough(t *testing.T) {
	ag := NewAuthGateWithRoles(fakeRoles{})
	ctx := auth.WithUserID(context.Background(), "alice")
	upstream := errors.New("duplicate key value violates unique constraint")

	_, err := Guard(ctx, ag, ResourceArticle, gate.ActionUpdate,
		func(context.Context) (gate.Ownable, error) { return gate.Owner("alice"), nil },
		func(context.Context, gate.Actor) (struct{}, error) { return struct{}{}, upstream })
	assert.Equal(t, upstream, err)
}

func TestRequireAdmin(t *testing.T) {
	ag := NewAuthGateWithRoles(fakeRoles{"boss": gate.RoleAdmin})
	h := ag.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for uid, want := range map[string]int{"": 401, "ana": 403, "boss": 200, "broken": 500} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/comments", nil)
		if uid != "" {
			req = req.WithContext(auth.WithUserID(req.Context(), uid))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, "uid=%q", uid)
	}
}

func TestRequireIdentity(t *testing.T) {
	ag := NewAuthGateWithRoles(fakeRoles{})
	h := ag.RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"not authenticated"}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "ana"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
