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

var publicArticleLimits = store.Limits{Default: 20, Min: 1, Max: 100}

type ArticleHandler struct {
	db   *gorm.DB
	gate *policy.AuthGate
}

func NewArticleHandler(db *gorm.DB, ag *policy.AuthGate) *ArticleHandler {
	return &ArticleHandler{db: db, gate: ag}
}

type createArticleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Excerpt     string `json:"excerpt" validate:"max=500"`
	Content     string `json:"content" validate:"required"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2,alpha"`
}

type updateArticleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Excerpt     *string `json:"excerpt" validate:"omitempty,max=500"`
	Content     *string `json:"content"`
	CountryCode *string `json:"country_code" validate:"omitempty,len=2,alpha"`
}

type coverRequest struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id" validate:"required"`
	Width    *int   `json:"width" validate:"omitempty,gt=0"`
	Height   *int   `json:"height" validate:"omitempty,gt=0"`
	Alt      string `json:"alt" validate:"max=255"`
}

type photoRequest struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id" validate:"required"`
	Width    *int   `json:"width" validate:"omitempty,gt=0"`
	Height   *int   `json:"height" validate:"omitempty,gt=0"`
	Alt      string `json:"alt" validate:"max=255"`
	Caption  string `json:"caption" validate:"max=500"`
	Position int    `json:"position" validate:"gte=0"`
}

// loadArticle fetches a live article; the record itself is the Ownable.
func (h *ArticleHandler) loadArticle(id string, dst *models.Article) policy.LoadFunc {
	return func(ctx context.Context) (gate.Ownable, error) {
		if err := h.db.WithContext(ctx).Take(dst, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return dst, nil
	}
}

// List returns approved articles, newest first.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := publicArticleLimits.Clamp(q.Get("limit"))
	offset := store.Offset(q.Get("offset"))

	db := h.db.WithContext(r.Context()).Preload("Author").
		Where("status = ?", models.ArticleStatusApproved)
	if c := strings.ToUpper(strings.TrimSpace(q.Get("country"))); c != "" {
		db = db.Where("country_code = ?", c)
	}

	var articles []models.Article
	if err := db.Order("published_at DESC").Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"articles": articles,
		"limit":    limit,
		"offset":   offset,
	})
}

// BySlug is public and only ever serves approved articles.
func (h *ArticleHandler) BySlug(w http.ResponseWriter, r *http.Request) {
	var a models.Article
	err := h.db.WithContext(r.Context()).
		Preload("Author").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("position, created_at") }).
		Where("slug = ? AND status = ?", pathParam(r, "slug"), models.ArticleStatusApproved).
		Take(&a).Error
	if err != nil {
		httpx.Error(w, r, store.Translate(err))
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// Create starts a draft owned by the caller.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResourceArticle, nil)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req createArticleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.Struct(&req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	ctx := r.Context()
	a := models.Article{
		AuthorID:    actor.UserID,
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CountryCode: strings.ToUpper(req.CountryCode),
		Status:      models.ArticleStatusDraft,
	}
	if a.CountryCode != "" {
		if err := h.requireCountry(ctx, a.CountryCode); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	if a.Slug, err = uniqueSlug(ctx, h.db, &models.Article{}, "slug", a.Title, "article", ""); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.db.WithContext(ctx).Create(&a).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

// Update edits the text fields of an article. The slug is kept so
// published links stay valid.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var a models.Article
	out, err := policy.Guard(r.Context(), h.gate, policy.ResourceArticle, gate.ActionUpdate,
		h.loadArticle(pathParam(r, "id"), &a),
		func(ctx context.Context, _ gate.Actor) (*models.Article, error) {
			var req updateArticleRequest
			if err := decodeValid(r, &req); err != nil {
				return nil, err
			}
			if req.Title == nil && req.Excerpt == nil && req.Content == nil && req.CountryCode == nil {
				return nil, httpx.BadRequest("nothing to update")
			}

			fields := []string{"updated_at"}
			if req.Title != nil {
				a.Title = strings.TrimSpace(*req.Title)
				fields = append(fields, "title")
			}
			if req.Excerpt != nil {
				a.Excerpt = *req.Excerpt
				fields = append(fields, "excerpt")
			}
			if req.Content != nil {
				a.Content = *req.Content
				fields = append(fields, "content")
			}
			if req.CountryCode != nil {
				a.CountryCode = strings.ToUpper(*req.CountryCode)
				if err := h.requireCountry(ctx, a.CountryCode); err != nil {
					return nil, err
				}
				fields = append(fields, "country_code")
			}
			return &a, h.db.WithContext(ctx).Model(&a).Select(fields).Updates(&a).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Submit moves an article into the moderation queue.
func (h *ArticleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var a models.Article
	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceArticle, gate.ActionUpdate,
		h.loadArticle(pathParam(r, "id"), &a),
		func(ctx context.Context, _ gate.Actor) (struct{}, error) {
			if a.Status == models.ArticleStatusApproved {
				return struct{}{}, httpx.BadRequest("article is already approved")
			}
			now := time.Now()
			return struct{}{}, h.db.WithContext(ctx).Model(&models.Article{ID: a.ID}).Updates(map[string]any{
				"status":           models.ArticleStatusPending,
				"submitted_at":     now,
				"rejection_reason": "",
			}).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "status": models.ArticleStatusPending})
}

// SetCover stores the main image metadata returned by the image host.
func (h *ArticleHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	cover, err := policy.Guard(r.Context(), h.gate, policy.ResourceArticle, gate.ActionUpdate,
		ownerOf(h.db, &models.Article{}, "author_id", "id = ?", id),
		func(ctx context.Context, _ gate.Actor) (*coverRequest, error) {
			var req coverRequest
			if err := decodeValid(r, &req); err != nil {
				return nil, err
			}
			return &req, h.db.WithContext(ctx).Model(&models.Article{ID: id}).Updates(map[string]any{
				"cover_url":       req.URL,
				"cover_public_id": req.PublicID,
				"cover_width":     req.Width,
				"cover_height":    req.Height,
				"cover_alt":       req.Alt,
			}).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "cover": cover})
}

// AddPhoto appends an image to the article gallery.
func (h *ArticleHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	photo, err := policy.Guard(r.Context(), h.gate, policy.ResourcePhoto, gate.ActionCreate,
		ownerOf(h.db, &models.Article{}, "author_id", "id = ?", id),
		func(ctx context.Context, actor gate.Actor) (*models.ArticlePhoto, error) {
			var req photoRequest
			if err := decodeValid(r, &req); err != nil {
				return nil, err
			}
			p := &models.ArticlePhoto{
				ArticleID:  id,
				UploaderID: actor.UserID,
				URL:        req.URL,
				PublicID:   req.PublicID,
				Width:      req.Width,
				Height:     req.Height,
				Alt:        req.Alt,
				Caption:    req.Caption,
				Position:   req.Position,
			}
			return p, h.db.WithContext(ctx).Create(p).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, photo)
}

// DeletePhoto removes a gallery image. The photo must belong to the article
// in the path; the article author (or an admin) may remove it.
func (h *ArticleHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	articleID, photoID := pathParam(r, "id"), pathParam(r, "photoId")

	load := func(ctx context.Context) (gate.Ownable, error) {
		var row struct{ AuthorID string }
		err := h.db.WithContext(ctx).Table("article_photos").
			Select("articles.author_id").
			Joins("JOIN articles ON articles.id = article_photos.article_id AND articles.deleted_at IS NULL").
			Where("article_photos.id = ? AND article_photos.article_id = ?", photoID, articleID).
			Take(&row).Error
		if err != nil {
			return nil, err
		}
		return gate.Owner(row.AuthorID), nil
	}

	_, err := policy.Guard(r.Context(), h.gate, policy.ResourcePhoto, gate.ActionDelete, load,
		func(ctx context.Context, _ gate.Actor) (struct{}, error) {
			return struct{}{}, h.db.WithContext(ctx).Delete(&models.ArticlePhoto{}, "id = ?", photoID).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ok)
}

func (h *ArticleHandler) requireCountry(ctx context.Context, code string) error {
	var n int64
	if err := h.db.WithContext(ctx).Model(&models.Country{}).Where("code = ?", code).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return httpx.BadRequest("unknown country %q", code)
	}
	return nil
}
