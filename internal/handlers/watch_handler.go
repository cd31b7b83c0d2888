package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"masterypath/internal/service"
)

// WatchHandler serves watch sessions and their integrity checks
type WatchHandler struct {
	watchService *service.WatchService
}

// NewWatchHandler creates a new watch handler
func NewWatchHandler(watchService *service.WatchService) *WatchHandler {
	return &WatchHandler{watchService: watchService}
}

func watchSessionID(r *http.Request) string {
	return r.PathValue("sessionId")
}

// Start handles POST /api/watch
func (h *WatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	var req struct {
		VideoID int64 `json:"videoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}
	if req.VideoID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid video ID", "", nil)
		return
	}

	session, err := h.watchService.StartWatch(student.ID, req.VideoID)
	if err != nil {
		respondWithServiceError(w, err, "Error starting watch session")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": session.ID,
		"videoId":   session.VideoID,
		"startedAt": session.StartedAt.Format(time.RFC3339),
	})
}

// UpdateProgress handles POST /api/watch/{sessionId}/progress
func (h *WatchHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	var req struct {
		PositionSeconds int `json:"positionSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	state, err := h.watchService.UpdateProgress(watchSessionID(r), student.ID, req.PositionSeconds)
	if err != nil {
		respondWithServiceError(w, err, "Error updating watch progress")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{
		"challengeDue": state.ChallengeDue,
		"quizDue":      state.QuizDue,
	})
}

// GetChallenge handles GET /api/watch/{sessionId}/challenge
func (h *WatchHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	challenge, err := h.watchService.GetAttentionChallenge(watchSessionID(r), student.ID)
	if err != nil {
		respondWithServiceError(w, err, "Error getting attention challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"challengeId": challenge.ID,
		"word":        challenge.Word,
		"atSeconds":   challenge.AtSeconds,
	})
}

// SubmitChallenge handles POST /api/watch/{sessionId}/challenge
func (h *WatchHandler) SubmitChallenge(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	var req struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	correct, err := h.watchService.SubmitAttentionChallenge(watchSessionID(r), student.ID, req.Word)
	if err != nil {
		respondWithServiceError(w, err, "Error submitting attention challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"correct": correct})
}

// GetQuiz handles GET /api/watch/{sessionId}/quiz
func (h *WatchHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	quiz, questions, err := h.watchService.GetComprehensionQuiz(r.Context(), watchSessionID(r), student.ID)
	if err != nil {
		respondWithServiceError(w, err, "Error getting comprehension quiz")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"triggeredAtSeconds": quiz.TriggeredAtSeconds,
		"dismissed":          quiz.Dismissed,
		"questions":          questions,
	})
}

// DismissQuiz handles POST /api/watch/{sessionId}/quiz/dismiss
func (h *WatchHandler) DismissQuiz(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	if err := h.watchService.DismissQuiz(watchSessionID(r), student.ID); err != nil {
		respondWithServiceError(w, err, "Error dismissing comprehension quiz")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubmitQuizAnswer handles POST /api/watch/{sessionId}/quiz/answers
func (h *WatchHandler) SubmitQuizAnswer(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	var req struct {
		QuestionID string `json:"questionId"`
		Answer     string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	correct, err := h.watchService.SubmitComprehensionAnswer(r.Context(), watchSessionID(r), student.ID, req.QuestionID, req.Answer)
	if err != nil {
		respondWithServiceError(w, err, "Error submitting comprehension answer")
		return
	}

	// correct is nil for free-text questions that are not auto-graded
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"correct": correct})
}

// End handles POST /api/watch/{sessionId}/end
func (h *WatchHandler) End(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	if err := h.watchService.EndWatch(watchSessionID(r), student.ID); err != nil {
		respondWithServiceError(w, err, "Error ending watch session")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
