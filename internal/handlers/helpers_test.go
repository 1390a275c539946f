package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/db"
	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB returns a migrated and seeded in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.Seed(gdb))
	return gdb
}

func newGate(gdb *gorm.DB) *policy.AuthGate {
	return policy.NewAuthGate(gdb)
}

func seedProfile(t *testing.T, gdb *gorm.DB, id, username, role string) models.Profile {
	t.Helper()
	p := models.Profile{ID: id, Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func seedArticle(t *testing.T, gdb *gorm.DB, authorID, slug string, status models.ArticleStatus) models.Article {
	t.Helper()
	a := models.Article{
		AuthorID: authorID,
		Title:    "Title " + slug,
		Slug:     slug,
		Content:  "Body",
		Status:   status,
	}
	if status == models.ArticleStatusApproved {
		now := time.Now()
		a.PublishedAt = &now
	}
	require.NoError(t, gdb.Create(&a).Error)
	return a
}

func seedComment(t *testing.T, gdb *gorm.DB, articleID, authorID, content string) models.Comment {
	t.Helper()
	c := models.Comment{ArticleID: articleID, AuthorID: authorID, Content: content}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

// newRequest builds a request as the router would hand it over: chi path
// params set and, when uid is not empty, an identity in the context.
func newRequest(method, target, body, uid string, params map[string]string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if uid != "" {
		ctx = auth.WithUserID(ctx, uid)
	}
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
