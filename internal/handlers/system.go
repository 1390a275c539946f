package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/destinote/destinote/internal/config"
	"github.com/destinote/destinote/internal/db"
	"github.com/destinote/destinote/internal/httpx"
	"gorm.io/gorm"
)

type SystemHandler struct {
	db *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// Env reports which required variables are set. Values are never echoed.
func (h *SystemHandler) Env(w http.ResponseWriter, r *http.Request) {
	present := make(map[string]bool)
	var missing []string
	for _, name := range config.RequiredEnv() {
		v, set := os.LookupEnv(name)
		present[name] = set && strings.TrimSpace(v) != ""
		if !present[name] {
			missing = append(missing, name)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"env":     present,
		"missing": missing,
		"ok":      len(missing) == 0,
	})
}

// Health pings the database.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(h.db); err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
