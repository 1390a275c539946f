package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/slug"
	"github.com/destinote/destinote/internal/validation"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// ok is the body of writes that have nothing else to report.
var ok = map[string]any{"success": true}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// decodeValid decodes and validates a request body. Guarded handlers call
// it from their perform step, after the target and the caller are checked.
func decodeValid(r *http.Request, dst any) error {
	if err := httpx.Decode(r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}

// callerID returns the resolved user id, or "" for anonymous requests.
func callerID(ctx context.Context) string {
	uid, _ := auth.UserIDFromContext(ctx)
	return uid
}

// ownerOf loads the owner column of one non-deleted row.
func ownerOf(db *gorm.DB, model any, column string, where string, args ...any) func(context.Context) (gate.Ownable, error) {
	return func(ctx context.Context) (gate.Ownable, error) {
		var owners []string
		err := db.WithContext(ctx).Model(model).Where(where, args...).Limit(1).Pluck(column, &owners).Error
		if err != nil {
			return nil, err
		}
		if len(owners) == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return gate.Owner(owners[0]), nil
	}
}

// uniqueSlug derives a slug from title that is free in table.column,
// appending -2, -3 ... on collision. Soft-deleted rows still hold their slug.
func uniqueSlug(ctx context.Context, db *gorm.DB, model any, column, title, fallback, excludeID string) (string, error) {
	base := slug.MakeOr(title, fallback)
	candidate := base
	for i := 2; i < 100; i++ {
		var n int64
		q := db.WithContext(ctx).Unscoped().Model(model).Where(column+" = ?", candidate)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", errors.New("could not allocate a unique slug")
}
