package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jbrinkw/coachbyte/internal/models"
)

// defaultHistoryDays is the history window when ?days is omitted.
const defaultHistoryDays = 7

type dateRequest struct {
	Date string `json:"date"`
}

type summaryRequest struct {
	Summary string `json:"summary"`
}

type planRequest struct {
	Items []models.PlannedSetInput `json:"items"`
}

type logSetRequest struct {
	Exercise string  `json:"exercise"`
	RepsDone int     `json:"reps_done"`
	LoadDone float64 `json:"load_done"`
}

func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.ListDays(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleCreateDay(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := s.svc.CreateDay(r.Context(), req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDayID(w, r)
	if !ok {
		return
	}
	view, err := s.svc.GetDay(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDayID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteDay(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseDayID(w, r)
	if !ok {
		return
	}
	var req summaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.svc.UpdateSummary(r.Context(), id, req.Summary); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "summary": req.Summary})
}

func (s *Server) handleAddPlannedSet(w http.ResponseWriter, r *http.Request) {
	dayID, ok := parseDayID(w, r)
	if !ok {
		return
	}
	var in models.PlannedSetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	id, err := s.svc.AddPlannedSet(r.Context(), dayID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdatePlannedSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch models.PlannedSetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	set, err := s.svc.UpdatePlannedSet(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeletePlannedSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeletePlannedSet(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	dayID, ok := parseDayID(w, r)
	if !ok {
		return
	}
	var in models.CompletionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	set, err := s.svc.CompleteSet(r.Context(), dayID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateCompletedSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch models.CompletedSetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	set, err := s.svc.UpdateCompletedSet(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteCompletedSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteCompletedSet(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Today(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTodayPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.svc.TodayPlan(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleAddTodayPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ids, err := s.svc.AddTodayPlan(r.Context(), req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"date": s.svc.LogicalToday(), "ids": ids})
}

func (s *Server) handleLogTodaySet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	set, err := s.svc.LogTodaySet(r.Context(), req.Exercise, req.RepsDone, req.LoadDone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateTodaySummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := s.svc.UpdateTodaySummary(r.Context(), req.Summary)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "summary": req.Summary})
}

// handleCompleteNext accepts an empty body to complete the queue head.
func (s *Server) handleCompleteNext(w http.ResponseWriter, r *http.Request) {
	var in models.CompleteNextInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	res, err := s.svc.CompleteNext(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultHistoryDays)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rows, err := s.svc.RecentHistory(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
