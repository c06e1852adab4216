package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	noteHandler "notewise/internal/note"
	noteService "notewise/internal/note/service"
	"notewise/internal/summary/model"
	"notewise/internal/summary/service"
	"notewise/middleware"
	"notewise/pkg/logger"
)

type SummaryHandler struct {
	Service *service.SummaryService
}

func NewSummaryHandler(service *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{Service: service}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, noteService.ErrNotFound):
		http.Error(w, "Note not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Summary not found", http.StatusNotFound)
	case errors.Is(err, service.ErrGeneration):
		logger.Sugar.Errorf("Handler: Failed to %s: %v", op, err)
		http.Error(w, "Failed to generate summary", http.StatusBadGateway)
	case errors.Is(err, context.Canceled):
		logger.Sugar.Infof("Handler: %s cancelled by client", op)
	default:
		logger.Sugar.Errorf("Handler: Failed to %s: %v", op, err)
		http.Error(w, "Failed to "+op, http.StatusInternalServerError)
	}
}

func (h *SummaryHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	s, err := h.Service.Generate(r.Context(), userID, req.NoteID)
	if err != nil {
		writeError(w, "save summary", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID := r.URL.Query().Get("noteId")
	if noteID == "" {
		http.Error(w, "Missing noteId parameter", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	s, err := h.Service.Current(r.Context(), userID, noteID)
	if err != nil {
		writeError(w, "get summary", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SummaryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID := r.URL.Query().Get("noteId")
	if noteID == "" {
		http.Error(w, "Missing noteId parameter", http.StatusBadRequest)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	summaries, err := h.Service.History(r.Context(), userID, noteID)
	if err != nil {
		writeError(w, "list summaries", err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *SummaryHandler) GetRecentSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	summaries, err := h.Service.Recent(r.Context(), userID, noteHandler.RecentLimit(r))
	if err != nil {
		writeError(w, "list recent summaries", err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
