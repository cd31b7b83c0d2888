package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"masterypath/internal/service"
)

// TestHandler serves day test attempts
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new test handler
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// Start handles POST /api/days/{dayId}/test. If an unsubmitted attempt
// already exists for the day it is returned instead of opening a new one.
func (h *TestHandler) Start(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	dayID, err := strconv.ParseInt(r.PathValue("dayId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid day ID", "", err)
		return
	}

	attempt, questions, err := h.testService.StartDayTest(r.Context(), dayID, student.ID)
	if err != nil {
		respondWithServiceError(w, err, "Error starting day test")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"attemptId":        attempt.ID,
		"attemptNumber":    attempt.AttemptNumber,
		"passRequirement":  attempt.PassRequirement,
		"timeLimitMinutes": attempt.TimeLimitMinutes,
		"startedAt":        attempt.StartedAt.Format(time.RFC3339),
		"questions":        questions,
	})
}

// Submit handles POST /api/tests/{attemptId}/submit
func (h *TestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	attemptID := r.PathValue("attemptId")
	if attemptID == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid attempt ID", "", nil)
		return
	}

	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	result, err := h.testService.SubmitDayTest(r.Context(), attemptID, student.ID, req.Answers)
	if err != nil {
		respondWithServiceError(w, err, "Error submitting day test")
		return
	}

	payload := map[string]interface{}{
		"passed":          result.Passed,
		"percentage":      result.Percentage,
		"nextDayUnlocked": result.NextDayUnlocked,
	}
	if result.CooldownEndsAt != nil {
		payload["cooldownEndsAt"] = result.CooldownEndsAt.Format(time.RFC3339)
		payload["newPassRequirement"] = result.NewPassRequirement
	}

	respondWithJSON(w, http.StatusOK, payload)
}
