package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/validation"
)

// FlightHandler builds deep links into third-party flight search sites.
// Nothing is fetched; the browser follows the links.
type FlightHandler struct{}

func NewFlightHandler() *FlightHandler { return &FlightHandler{} }

type flightQuery struct {
	From string `json:"from" validate:"required,iata"`
	To   string `json:"to" validate:"required,iata,nefield=From"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type FlightLink struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

func (h *FlightHandler) Links(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fq := flightQuery{
		From: strings.ToUpper(strings.TrimSpace(q.Get("from"))),
		To:   strings.ToUpper(strings.TrimSpace(q.Get("to"))),
		Date: strings.TrimSpace(q.Get("date")),
	}
	if err := validation.Struct(&fq); err != nil {
		httpx.Error(w, r, err)
		return
	}

	var date time.Time
	if fq.Date != "" {
		date, _ = time.Parse(time.DateOnly, fq.Date)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"from":  fq.From,
		"to":    fq.To,
		"date":  fq.Date,
		"links": FlightLinks(fq.From, fq.To, date),
	})
}

// FlightLinks returns search links for a one-way trip. A zero date leaves
// the date open.
func FlightLinks(from, to string, date time.Time) []FlightLink {
	google := fmt.Sprintf("Flights from %s to %s", from, to)
	sky := fmt.Sprintf("https://www.skyscanner.net/transport/flights/%s/%s/", strings.ToLower(from), strings.ToLower(to))
	kayak := fmt.Sprintf("https://www.kayak.com/flights/%s-%s", from, to)
	if !date.IsZero() {
		google += " on " + date.Format(time.DateOnly)
		sky += date.Format("060102") + "/"
		kayak += "/" + date.Format(time.DateOnly)
	}
	return []FlightLink{
		{Provider: "google", URL: "https://www.google.com/travel/flights?q=" + url.QueryEscape(google)},
		{Provider: "skyscanner", URL: sky},
		{Provider: "kayak", URL: kayak},
	}
}
