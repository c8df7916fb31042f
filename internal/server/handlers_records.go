package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

type trackRequest struct {
	Name string `json:"name"`
}

type timerRequest struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handlePRs(w http.ResponseWriter, r *http.Request) {
	var (
		records map[string][]prs.Record
		err     error
	)
	if estimated, _ := strconv.ParseBool(r.URL.Query().Get("estimated")); estimated {
		records, err = s.svc.DisplayPRs(r.Context())
	} else {
		records, err = s.svc.PRs(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handlePRTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.svc.PRTargets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

func (s *Server) handleUpsertPRTarget(w http.ResponseWriter, r *http.Request) {
	var target models.PRTarget
	if !decodeJSON(w, r, &target) {
		return
	}
	if err := s.svc.UpsertPRTarget(r.Context(), target); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (s *Server) handleDeletePRTarget(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	reps, err := queryInt(r, "reps", 0)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.svc.DeletePRTarget(r.Context(), exercise, reps); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrackedExercises(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.TrackedExercises(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleAddTrackedExercise(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.svc.AddTrackedExercise(r.Context(), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleRemoveTrackedExercise(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		badRequest(w, "invalid exercise name")
		return
	}
	if err := s.svc.RemoveTrackedExercise(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.TimerStatus(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSetTimer(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := s.svc.SetTimer(r.Context(), req.Seconds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
