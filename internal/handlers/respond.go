package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// dateRange parses the optional startDate/endDate query parameters.
// Dates are inclusive; a date-only endDate covers its whole day.
func dateRange(r *http.Request) (start, end *time.Time, err error) {
	if v := r.URL.Query().Get("startDate"); v != "" {
		t, perr := parseDateParam(v)
		if perr != nil {
			return nil, nil, perr
		}
		start = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, perr := parseDateParam(v)
		if perr != nil {
			return nil, nil, perr
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		end = &t
	}
	return start, end, nil
}

func parseDateParam(v string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
