package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/logging"
	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/policy"
	"github.com/destinote/destinote/internal/store"
	"github.com/destinote/destinote/internal/validation"
	"gorm.io/gorm"
)

type CommentHandler struct {
	db   *gorm.DB
	gate *policy.AuthGate
}

func NewCommentHandler(db *gorm.DB, ag *policy.AuthGate) *CommentHandler {
	return &CommentHandler{db: db, gate: ag}
}

type createCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// commentView is a comment enriched for the caller.
type commentView struct {
	models.Comment
	Likes     int64 `json:"likes"`
	LikedByMe bool  `json:"likedByMe"`
}

// List returns the live comments of an approved article, oldest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	articleID := pathParam(r, "id")
	if err := h.requireApprovedArticle(ctx, articleID); err != nil {
		httpx.Error(w, r, err)
		return
	}

	var comments []models.Comment
	if err := h.db.WithContext(ctx).Preload("Author").
		Where("article_id = ?", articleID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	counts := map[string]int64{}
	mine := map[string]bool{}
	if len(ids) > 0 {
		var rows []struct {
			CommentID string
			N         int64
		}
		if err := h.db.WithContext(ctx).Model(&models.CommentLike{}).
			Select("comment_id, COUNT(*) AS n").
			Where("comment_id IN ?", ids).
			Group("comment_id").Scan(&rows).Error; err != nil {
			httpx.Error(w, r, err)
			return
		}
		for _, row := range rows {
			counts[row.CommentID] = row.N
		}

		if uid := callerID(ctx); uid != "" {
			var liked []string
			if err := h.db.WithContext(ctx).Model(&models.CommentLike{}).
				Where("user_id = ? AND comment_id IN ?", uid, ids).
				Pluck("comment_id", &liked).Error; err != nil {
				httpx.Error(w, r, err)
				return
			}
			for _, id := range liked {
				mine[id] = true
			}
		}
	}

	out := make([]commentView, len(comments))
	for i, c := range comments {
		out[i] = commentView{Comment: c, Likes: counts[c.ID], LikedByMe: mine[c.ID]}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"comments": out})
}

// Create adds a comment by the caller to an approved article.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	articleID := pathParam(r, "id")
	if err := h.requireApprovedArticle(ctx, articleID); err != nil {
		httpx.Error(w, r, err)
		return
	}

	actor, err := h.gate.Authorize(ctx, gate.ActionCreate, policy.ResourceComment, nil)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req createCommentRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.Struct(&req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	c := models.Comment{ArticleID: articleID, AuthorID: actor.UserID, Content: req.Content}
	if err := h.db.WithContext(ctx).Create(&c).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// ToggleLike flips the caller's like on a comment. The read and the write
// are separate statements: two concurrent toggles by the same user may
// both observe the same state.
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	commentID := pathParam(r, "id")

	liked, err := policy.Guard(r.Context(), h.gate, policy.ResourceLike, gate.ActionUpdate,
		ownerOf(h.db, &models.Comment{}, "author_id", "id = ?", commentID),
		func(ctx context.Context, actor gate.Actor) (bool, error) {
			db := h.db.WithContext(ctx)
			var existing models.CommentLike
			err := db.Where("comment_id = ? AND user_id = ?", commentID, actor.UserID).Take(&existing).Error
			switch {
			case err == nil:
				return false, db.Delete(&models.CommentLike{}, "comment_id = ? AND user_id = ?", commentID, actor.UserID).Error
			case errors.Is(err, gorm.ErrRecordNotFound):
				return true, db.Create(&models.CommentLike{CommentID: commentID, UserID: actor.UserID}).Error
			default:
				return false, err
			}
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Debug().Str("comment_id", commentID).Bool("liked", liked).Msg("like toggled")
	httpx.JSON(w, http.StatusOK, map[string]any{"liked": liked})
}

// Delete soft-deletes a comment. Authors and admins only.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := pathParam(r, "id")

	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceComment, gate.ActionDelete,
		ownerOf(h.db, &models.Comment{}, "author_id", "id = ?", commentID),
		func(ctx context.Context, _ gate.Actor) (struct{}, error) {
			return struct{}{}, h.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", commentID).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ok)
}

func (h *CommentHandler) requireApprovedArticle(ctx context.Context, id string) error {
	var n int64
	err := h.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ? AND status = ?", id, models.ArticleStatusApproved).Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
