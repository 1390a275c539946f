package handlers

import (
	"context"
	"net/http"

	"github.com/destinote/destinote/internal/gate"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/models"
	"github.com/destinote/destinote/internal/policy"
	"github.com/destinote/destinote/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowHandler struct {
	db   *gorm.DB
	gate *policy.AuthGate
}

func NewFollowHandler(db *gorm.DB, ag *policy.AuthGate) *FollowHandler {
	return &FollowHandler{db: db, gate: ag}
}

type followEntry struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	IsFollowedByMe bool   `json:"isFollowedByMe"`
}

// Followers lists the users following {id}.
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "follows.follower_id", "follows.following_id")
}

// Following lists the users {id} follows.
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "follows.following_id", "follows.follower_id")
}

// list joins profiles on joinCol where matchCol is the path user, then
// marks the entries the caller follows.
func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, joinCol, matchCol string) {
	ctx := r.Context()
	userID := pathParam(r, "id")
	if err := h.requireProfile(ctx, userID); err != nil {
		httpx.Error(w, r, err)
		return
	}

	var profiles []models.Profile
	if err := h.db.WithContext(ctx).
		Joins("JOIN follows ON profiles.id = "+joinCol).
		Where(matchCol+" = ?", userID).
		Order("follows.created_at DESC").
		Find(&profiles).Error; err != nil {
		httpx.Error(w, r, err)
		return
	}

	followed := map[string]bool{}
	if me := callerID(ctx); me != "" && len(profiles) > 0 {
		ids := make([]string, len(profiles))
		for i, p := range profiles {
			ids[i] = p.ID
		}
		var mine []string
		if err := h.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ? AND following_id IN ?", me, ids).
			Pluck("following_id", &mine).Error; err != nil {
			httpx.Error(w, r, err)
			return
		}
		for _, id := range mine {
			followed[id] = true
		}
	}

	out := make([]followEntry, len(profiles))
	for i, p := range profiles {
		out[i] = followEntry{
			ID:             p.ID,
			Username:       p.Username,
			FullName:       p.FullName,
			AvatarURL:      p.AvatarURL,
			IsFollowedByMe: followed[p.ID],
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": out})
}

// Follow makes the caller follow {id}. Following twice is a no-op.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	target := pathParam(r, "id")
	load := func(ctx context.Context) (gate.Ownable, error) {
		if err := h.requireProfile(ctx, target); err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceFollow, gate.ActionCreate, load,
		func(ctx context.Context, actor gate.Actor) (struct{}, error) {
			if actor.UserID == target {
				return struct{}{}, httpx.BadRequest("cannot follow yourself")
			}
			edge := models.Follow{FollowerID: actor.UserID, FollowingID: target}
			return struct{}{}, h.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"following": true})
}

// Unfollow removes the caller's edge to {id}. The edge is owned by its
// follower, so only the caller's own edge is ever touched.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	target := pathParam(r, "id")
	load := func(ctx context.Context) (gate.Ownable, error) {
		if err := h.requireProfile(ctx, target); err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, err := policy.Guard(r.Context(), h.gate, policy.ResourceFollow, gate.ActionDelete, load,
		func(ctx context.Context, actor gate.Actor) (struct{}, error) {
			return struct{}{}, h.db.WithContext(ctx).
				Where("follower_id = ? AND following_id = ?", actor.UserID, target).
				Delete(&models.Follow{}).Error
		})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"following": false})
}

func (h *FollowHandler) requireProfile(ctx context.Context, id string) error {
	var n int64
	if err := h.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
