package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"masterypath/internal/service"
	"masterypath/internal/validation"
)

// DiagnosticHandler serves the chapter diagnostic assessment
type DiagnosticHandler struct {
	diagnosticService *service.DiagnosticService
}

// NewDiagnosticHandler creates a new diagnostic handler
func NewDiagnosticHandler(diagnosticService *service.DiagnosticService) *DiagnosticHandler {
	return &DiagnosticHandler{diagnosticService: diagnosticService}
}

// Start handles POST /api/diagnostics
func (h *DiagnosticHandler) Start(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	var req struct {
		SubjectID string `json:"subjectId"`
		ChapterID string `json:"chapterId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}
	if err := validation.ValidateID("subjectId", req.SubjectID); err != nil {
		respondWithServiceError(w, err, "")
		return
	}
	if err := validation.ValidateID("chapterId", req.ChapterID); err != nil {
		respondWithServiceError(w, err, "")
		return
	}

	attempt, questions, err := h.diagnosticService.StartDiagnostic(r.Context(), student.ID, req.SubjectID, req.ChapterID)
	if err != nil {
		respondWithServiceError(w, err, "Error starting diagnostic")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"attemptId":        attempt.ID,
		"timeLimitMinutes": attempt.TimeLimitMinutes,
		"startedAt":        attempt.StartedAt.Format(time.RFC3339),
		"questions":        questions,
	})
}

// Submit handles POST /api/diagnostics/{attemptId}/submit
func (h *DiagnosticHandler) Submit(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)
	attemptID := r.PathValue("attemptId")

	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	result, err := h.diagnosticService.SubmitDiagnostic(r.Context(), attemptID, student.ID, req.Answers)
	if err != nil {
		respondWithServiceError(w, err, "Error submitting diagnostic")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"scorePercent":     result.ScorePercent,
		"recommendedLevel": result.RecommendedLevel,
		"weakTopics":       result.WeakTopics,
		"timedOut":         result.TimedOut,
	})
}
