package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/policy"
	"github.com/destinote/destinote/internal/store"
	"github.com/destinote/destinote/internal/validation"
	"gorm.io/gorm"
)

var (
	adminCommentLimits = store.Limits{Default: 50, Min: 1, Max: 200}
	adminUserLimits    = store.Limits{Default: 20, Min: 1, Max: 200}
	adminArticleLimits = store.Limits{Default: 50, Min: 1, Max: 200}
)

// AdminHandler serves the moderation endpoints. Routes are mounted behind
// AuthGate.RequireAdmin; the handlers repeat the admin check through the
// gate where they act on a single record.
type AdminHandler struct {
	db   *gorm.DB
	gate *policy.AuthGate
}

func NewAdminHandler(db *gorm.DB, ag *policy.AuthGate) *AdminHandler {
	return &AdminHandler{db: db, gate: ag}
}

type reviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// exists only checks presence; the admin policy ignores ownership.
func (h *AdminHandler) exists(model any, id string) policy.LoadFunc {
	return func(ctx context.Context) (gate.Ownable, error) {
		var ids []string
		if err := h.db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return gate.Owner(""), nil
	}
}

// Articles lists articles in any state.
// Filters: status, author (author id), from and to (creation date, inclusive).
func (h *AdminHandler) Articles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := h.db.WithContext(r.Context()).Preload("Author")

	if s := q.Get("status"); s != "" {
		if !models.ArticleStatus(s).Valid() {
			httpx.Error(w, r, httpx.BadRequest("invalid status %q", s))
			return
		}
		db = db.Where("status = ?", s)
	}
	if a := q.Get("author"); a != "" {
		db = db.Where("author_id = ?", a)
	}
	if raw := q.Get("from"); raw != "" {
		from, _, err := parseDate(raw)
		if err != nil {
			httpx.Error(w, r, httpx.BadRequest("invalid from date"))
			return
		}
		db = db.Where("created_at >= ?", from)
	}
	if raw := q.Get("to"); raw != "" {
		to, dateOnly, err := parseDate(raw)
		if err != nil {
			httpx.Error(w, r, httpx.BadRequest("invalid to date"))
			return
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
			db = db.Where("created_at < ?", to)
		} else {
			db = db.Where("created_at <= ?", to)
		}
	}

	limit := adminArticleLimits.Clamp(q.Get("limit"))
	offset := store.Offset(q.Get("offset"))

	var articles []models.Article
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"limit":    limit,
		"offset":   offset,
	})
}

// ReviewArticle approves or rejects an article.
func (h *AdminHandler) ReviewArticle(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	id := pathParam(r, "id")
	status := models.ArticleStatus(req.Status)
	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceAdmin, gate.ActionModerate,
		h.exists(&models.Article{}, id),
		func(ctx context.Context, actor gate.Actor) (struct{}, error) {
			now := time.Now()
			changes := map[string]any{
				"status":      status,
				"reviewed_at": now,
				"reviewed_by": actor.UserID,
			}
			if status == models.ArticleStatusApproved {
				changes["published_at"] = now
				changes["rejection_reason"] = ""
			} else {
				changes["rejection_reason"] = strings.TrimSpace(req.Reason)
			}
			return struct{}{}, h.db.WithContext(ctx).Model(&models.Article{ID: id}).Updates(changes).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "id": id, "status": status})
}

// Comments lists the most recent live comments.
func (h *AdminHandler) Comments(w http.ResponseWriter, r *http.Request) {
	limit := adminCommentLimits.Clamp(r.URL.Query().Get("limit"))

	var comments []models.Comment
	if err := h.db.WithContext(r.Context()).Preload("Author").
		Order("created_at DESC").Limit(limit).Find(&comments).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"comments": comments, "limit": limit})
}

// DeleteComment soft-deletes any comment.
func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceAdmin, gate.ActionDelete,
		h.exists(&models.Comment{}, id),
		func(ctx context.Context, _ gate.Actor) (struct{}, error) {
			return struct{}{}, h.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ok)
}

// Users searches profiles by username, full name or email.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := adminUserLimits.Clamp(q.Get("limit"))
	offset := store.Offset(q.Get("offset"))

	db := h.db.WithContext(r.Context())
	if term := strings.ToLower(strings.TrimSpace(q.Get("q"))); term != "" {
		like := "%" + term + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var users []models.Profile
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// parseDate accepts YYYY-MM-DD or RFC 3339. dateOnly reports the first form.
func parseDate(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	return t, false, err
}
