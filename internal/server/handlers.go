package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/spans"
	"github.com/gigscope/gigscope/pkg/storage"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.LoadStatistics(r.Context(), s.tourParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stats == nil {
		http.Error(w, "no statistics for tour", http.StatusNotFound)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleShows(w http.ResponseWriter, r *http.Request) {
	shows, err := s.DB.ListShows(r.Context(), s.tourParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, shows)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "missing date parameter", http.StatusBadRequest)
		return
	}
	if _, err := model.ParseDate(date); err != nil {
		http.Error(w, "date must be yyyy-mm-dd", http.StatusBadRequest)
		return
	}

	show, err := s.DB.LoadShow(r.Context(), date)
	if errors.Is(err, storage.ErrCorruptRecord) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if show == nil {
		http.Error(w, "no show on that date", http.StatusNotFound)
		return
	}
	writeJSON(w, show)
}

// handleSpans returns venue-run spans for the tour, optionally filtered to a
// month (?month=2025-07). Span detection itself ignores tour grouping;
// filtering here is the caller-side windowing the detector expects.
func (s *Server) handleSpans(w http.ResponseWriter, r *http.Request) {
	shows, err := s.DB.ListShows(r.Context(), s.tourParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var days []spans.Day
	for _, show := range shows {
		days = append(days, spans.Day{
			Date:    show.Show.Date,
			HasShow: true,
			Venue:   show.Show.Venue,
			City:    show.Show.City,
			State:   show.Show.State,
		})
	}

	detected := spans.Detect(days)

	if month := r.URL.Query().Get("month"); month != "" {
		var filtered []model.VenueRunSpan
		for _, span := range detected {
			for _, d := range span.Days {
				if len(d.Date) >= 7 && d.Date[:7] == month {
					filtered = append(filtered, span)
					break
				}
			}
		}
		detected = filtered
	}

	writeJSON(w, detected)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	changes, err := s.DB.RecentChanges(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, changes)
}

func (s *Server) tourParam(r *http.Request) string {
	if tour := r.URL.Query().Get("tour"); tour != "" {
		return tour
	}
	return s.Tour
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
