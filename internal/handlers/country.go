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
	"gorm.io/gorm/clause"
)

type CountryHandler struct {
	db   *gorm.DB
	gate *policy.AuthGate
}

func NewCountryHandler(db *gorm.DB, ag *policy.AuthGate) *CountryHandler {
	return &CountryHandler{db: db, gate: ag}
}

type visitRequest struct {
	VisitedAt string `json:"visited_at" validate:"omitempty,datetime=2006-01-02"`
}

func (h *CountryHandler) Continents(w http.ResponseWriter, r *http.Request) {
	var continents []models.Continent
	if err := h.db.WithContext(r.Context()).Order("name").Find(&continents).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"continents": continents})
}

// List returns countries, optionally narrowed by continent code or slug.
func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	db := h.db.WithContext(ctx)
	if c := strings.TrimSpace(r.URL.Query().Get("continent")); c != "" {
		bySlug := h.db.WithContext(ctx).Model(&models.Continent{}).Select("code").Where("slug = ?", strings.ToLower(c))
		db = db.Where("continent_code = ? OR continent_code IN (?)", strings.ToUpper(c), bySlug)
	}

	var countries []models.Country
	if err := db.Order("name").Find(&countries).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"countries": countries})
}

// Get looks a country up by ISO code or slug.
func (h *CountryHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "code")
	var c models.Country
	err := h.db.WithContext(r.Context()).
		Where("code = ? OR slug = ?", strings.ToUpper(key), strings.ToLower(key)).
		Take(&c).Error
	if err != nil {
		httpx.Error(w, r, store.Translate(err))
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Visited lists the countries a user has marked. Public.
func (h *CountryHandler) Visited(w http.ResponseWriter, r *http.Request) {
	var visits []models.VisitedCountry
	if err := h.db.WithContext(r.Context()).Preload("Country").
		Where("user_id = ?", pathParam(r, "id")).
		Order("created_at DESC").Find(&visits).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"visited": visits, "count": len(visits)})
}

// MarkVisited records a visit by the caller. Marking twice is a no-op.
// The body is optional.
func (h *CountryHandler) MarkVisited(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := httpx.DecodeOptional(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	code := strings.ToUpper(pathParam(r, "code"))
	load := func(ctx context.Context) (gate.Ownable, error) {
		var c models.Country
		if err := h.db.WithContext(ctx).Select("code").Take(&c, "code = ?", code).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}

	visit, err := policy.Guard(r.Context(), h.gate, policy.ResourceVisited, gate.ActionCreate, load,
		func(ctx context.Context, actor gate.Actor) (*models.VisitedCountry, error) {
			v := &models.VisitedCountry{UserID: actor.UserID, CountryCode: code}
			if req.VisitedAt != "" {
				t, _ := time.Parse(time.DateOnly, req.VisitedAt)
				v.VisitedAt = &t
			}
			return v, h.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, visit)
}

// UnmarkVisited removes the caller's visit. A country that was never
// marked is a 404.
func (h *CountryHandler) UnmarkVisited(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(pathParam(r, "code"))
	uid := callerID(r.Context())

	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceVisited, gate.ActionDelete,
		ownerOf(h.db, &models.VisitedCountry{}, "user_id", "user_id = ? AND country_code = ?", uid, code),
		func(ctx context.Context, actor gate.Actor) (struct{}, error) {
			return struct{}{}, h.db.WithContext(ctx).
				Where("user_id = ? AND country_code = ?", actor.UserID, code).
				Delete(&models.VisitedCountry{}).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ok)
}
