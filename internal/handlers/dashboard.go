package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mailwatch/internal/analytics"
	"mailwatch/internal/maillog"
	"mailwatch/internal/store"
)

// Dashboard serves the log listing, stats and analytics endpoints off the
// cached transaction set.
type Dashboard struct {
	Store *store.Store
	Now   func() time.Time
}

func NewDashboard(s *store.Store) *Dashboard {
	return &Dashboard{Store: s, Now: time.Now}
}

// Logs lists transactions, newest first. Supports startDate/endDate,
// status, and limit/page query parameters.
func (h *Dashboard) Logs(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}

	txs = analytics.FilterByStatus(txs, r.URL.Query().Get("status"))
	txs = analytics.Paginate(txs, intQuery(r, "page", 0), intQuery(r, "limit", 0))

	writeJSON(w, http.StatusOK, txs)
}

// Stats returns the headline delivery counters for the date range.
func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.ComputeStats(txs))
}

// VolumeTrends returns per-day delivery counts for the date range.
func (h *Dashboard) VolumeTrends(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analytics.VolumeTrends(txs))
}

// RecentActivity returns notable events from the last 24 hours.
func (h *Dashboard) RecentActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analytics.RecentActivity(h.Store.Get(), h.Now()))
}

// TopSenders ranks senders by message count for the date range.
func (h *Dashboard) TopSenders(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	total, data := analytics.TopSenders(txs, intQuery(r, "limit", 50))
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "data": data})
}

// TopRecipients ranks recipients by message count for the date range.
func (h *Dashboard) TopRecipients(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	total, data := analytics.TopRecipients(txs, intQuery(r, "limit", 50))
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "data": data})
}

// ConnectedIPs ranks connecting client IPs for the date range.
func (h *Dashboard) ConnectedIPs(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}
	total, data := analytics.ConnectedIPs(txs, intQuery(r, "limit", 50))
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "data": data})
}

type summaryResponse struct {
	analytics.Summary
	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"dateRange"`
}

// Summary returns distinct sender/recipient/IP/domain counts, echoing
// the requested date range ("all" when unbounded).
func (h *Dashboard) Summary(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.filtered(w, r)
	if !ok {
		return
	}

	resp := summaryResponse{Summary: analytics.Summarize(txs)}
	resp.DateRange.Start = queryOr(r, "startDate", "all")
	resp.DateRange.End = queryOr(r, "endDate", "all")
	writeJSON(w, http.StatusOK, resp)
}

// filtered loads the transaction set and applies the date range query.
// Writes a 400 and returns ok=false on an unparseable date.
func (h *Dashboard) filtered(w http.ResponseWriter, r *http.Request) ([]*maillog.Transaction, bool) {
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format.")
		return nil, false
	}
	return analytics.FilterByDate(h.Store.Get(), start, end), true
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func queryOr(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
