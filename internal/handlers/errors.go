package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"masterypath/internal/questionbank"
	"masterypath/internal/service"
	"masterypath/internal/validation"
)

// errorResponse is the JSON error body. Detail carries structured state for
// conflict responses (cooldown remaining and the like).
type errorResponse struct {
	Error  string                 `json:"error"`
	Detail map[string]interface{} `json:"detail,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps a service error to its HTTP status.
// Unrecognized errors become a logged 500.
func respondWithServiceError(w http.ResponseWriter, err error, logMsg string) {
	var cooldown *service.CooldownActiveError
	if errors.As(err, &cooldown) {
		respondWithJSON(w, http.StatusConflict, errorResponse{
			Error: "A cooldown is active for this day test",
			Detail: map[string]interface{}{
				"remainingSeconds": cooldown.RemainingSeconds,
			},
		})
		return
	}

	var validationErr validation.ValidationError
	if errors.As(err, &validationErr) {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
		return
	}

	switch {
	case errors.Is(err, questionbank.ErrBankUnavailable):
		respondWithError(w, http.StatusBadGateway, "Question bank is temporarily unavailable", logMsg, err)

	case errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, service.ErrNotYourAttempt),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrNotYourPlan),
		errors.Is(err, service.ErrDayNotFound),
		errors.Is(err, service.ErrVideoNotFound),
		errors.Is(err, service.ErrVideoNotInDay),
		errors.Is(err, service.ErrWatchSessionNotFound),
		errors.Is(err, service.ErrChallengeNotFound):
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrDiagnosticInProgress),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrPlanExists),
		errors.Is(err, service.ErrDayLocked),
		errors.Is(err, service.ErrDayPassed),
		errors.Is(err, service.ErrContentIncomplete),
		errors.Is(err, service.ErrWatchInProgress),
		errors.Is(err, service.ErrWatchSessionClosed),
		errors.Is(err, service.ErrQuizNotTriggered),
		errors.Is(err, service.ErrDiagnosticFirst):
		respondWithJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrNoQuestions),
		errors.Is(err, service.ErrQuestionNotInQuiz):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrEmailTaken):
		respondWithJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})

	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
