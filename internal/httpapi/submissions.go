package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/starsign-web/starsign/internal/observability"
	"github.com/starsign-web/starsign/internal/submissions"
	"github.com/starsign-web/starsign/internal/zodiac"
)

type submitResponse struct {
	Success    bool        `json:"success"`
	ZodiacSign zodiac.Sign `json:"zodiacSign"`
	Message    string      `json:"message"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

type recentEntry struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	ZodiacSign zodiac.Sign `json:"zodiacSign"`
	Timestamp  time.Time   `json:"timestamp"`
}

type recentResponse struct {
	Success bool          `json:"success"`
	Data    []recentEntry `json:"data"`
}

// toRecentEntry projects a stored record onto the read shape. The birth
// date stays server-side.
func toRecentEntry(sub submissions.Submission) recentEntry {
	return recentEntry{
		ID:         sub.ID,
		Name:       sub.Name,
		ZodiacSign: sub.Sign,
		Timestamp:  sub.CreatedAt,
	}
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in submissions.Input
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, errEmptyBody) {
		s.metrics.SubmissionsRejected.WithLabelValues("payload").Inc()
		respondErrors(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	validateStart := time.Now()
	name, born, msgs := submissions.ValidateInput(in, s.now())
	s.metrics.ObserveStageLatency(observability.StageValidate, time.Since(validateStart))
	if len(msgs) > 0 {
		s.metrics.SubmissionsRejected.WithLabelValues("validation").Inc()
		respondErrors(w, http.StatusBadRequest, msgs...)
		return
	}

	classifyStart := time.Now()
	sign, err := zodiac.SignForDate(born)
	s.metrics.ObserveStageLatency(observability.StageClassify, time.Since(classifyStart))
	if err != nil {
		// A validated date that matches no calendar entry is a broken
		// invariant, not a user error. Never guess a sign.
		s.metrics.InternalErrors.Inc()
		respondErrors(w, http.StatusInternalServerError, "something went wrong; please try again")
		return
	}

	sub := submissions.New(s.newID(), name, born, sign, s.now())
	persistStart := time.Now()
	if err := s.store.Append(r.Context(), sub); err != nil {
		s.metrics.StoreErrors.WithLabelValues("append").Inc()
		respondErrors(w, http.StatusInternalServerError, "could not save your submission; please try again")
		return
	}
	s.metrics.ObserveStageLatency(observability.StagePersist, time.Since(persistStart))

	s.metrics.SubmissionsAccepted.WithLabelValues(string(sub.Sign)).Inc()
	if s.hub != nil {
		publishStart := time.Now()
		if dropped := s.hub.Publish(sub); dropped > 0 {
			s.metrics.FeedDropped.Add(float64(dropped))
		}
		s.metrics.ObserveStageLatency(observability.StagePublish, time.Since(publishStart))
	}
	s.metrics.ObserveSubmitLatency(time.Since(start))

	respondJSON(w, http.StatusCreated, submitResponse{
		Success:    true,
		ZodiacSign: sub.Sign,
		Message:    fmt.Sprintf("Hello %s! Your zodiac sign is %s.", sub.Name, sub.Sign),
	})
}

func (s *Server) handleRecentSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.Recent(r.Context(), s.cfg.RecentLimit)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("recent").Inc()
		respondErrors(w, http.StatusInternalServerError, "could not load recent submissions")
		return
	}

	entries := make([]recentEntry, 0, len(subs))
	for _, sub := range subs {
		entries = append(entries, toRecentEntry(sub))
	}
	respondJSON(w, http.StatusOK, recentResponse{Success: true, Data: entries})
}
