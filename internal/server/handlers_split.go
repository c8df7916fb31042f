package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/models"
)

type splitDayRequest struct {
	Items []models.SplitSetInput `json:"items"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var weekday *int
	if v := r.URL.Query().Get("weekday"); v != "" {
		day, err := calendar.ParseWeekday(v)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		weekday = &day
	}
	sets, err := s.svc.SplitTemplate(r.Context(), weekday)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleAddSplitSet(w http.ResponseWriter, r *http.Request) {
	var in models.SplitSetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	id, err := s.svc.AddSplitSet(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateSplitSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var patch models.SplitSetPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	set, err := s.svc.UpdateSplitSet(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSplitSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteSplitSet(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceSplitDay(w http.ResponseWriter, r *http.Request) {
	weekday, err := calendar.ParseWeekday(chi.URLParam(r, "weekday"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req splitDayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sets, err := s.svc.ReplaceSplitDay(r.Context(), weekday, req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleSplitNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.svc.SplitNotes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleSetSplitNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	notes, err := s.svc.SetSplitNotes(r.Context(), req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
