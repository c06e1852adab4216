package enhance

import (
	"encoding/json"
	"net/http"

	"notewise/internal/llm"
	"notewise/pkg/logger"
)

// Handler serves the enhancement gateway. Error bodies are plain text.
type Handler struct {
	Generator llm.Generator
}

func NewHandler(generator llm.Generator) *Handler {
	return &Handler{Generator: generator}
}

func (h *Handler) EnhanceNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}
	if req.EnhanceType == "" {
		http.Error(w, "Enhancement type is required", http.StatusBadRequest)
		return
	}

	enhanced, err := h.Generator.Generate(r.Context(), BuildPrompt(req.Content, req.EnhanceType))
	if err != nil {
		logger.Sugar.Errorf("Handler: enhance-note (%s) failed: %v", req.EnhanceType, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EnhanceResponse{EnhancedContent: enhanced})
}
