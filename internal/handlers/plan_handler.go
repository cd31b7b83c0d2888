package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"masterypath/internal/models"
	"masterypath/internal/service"
	"masterypath/internal/validation"
)

// PlanHandler serves plan creation and plan state reads
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Create handles POST /api/plans
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	var req struct {
		SubjectID string `json:"subjectId"`
		ChapterID string `json:"chapterId"`
		Level     string `json:"level"`
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

	plan, err := h.planService.CreatePlan(r.Context(), student.ID, req.SubjectID, req.ChapterID, models.StartLevel(req.Level))
	if err != nil {
		respondWithServiceError(w, err, "Error creating plan")
		return
	}

	respondWithJSON(w, http.StatusCreated, planToJSON(plan, time.Now()))
}

// Get handles GET /api/plans/{planId}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	planID, err := strconv.ParseInt(r.PathValue("planId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid plan ID", "", err)
		return
	}

	plan, err := h.planService.GetPlanState(planID, student.ID)
	if err != nil {
		respondWithServiceError(w, err, "Error getting plan")
		return
	}

	respondWithJSON(w, http.StatusOK, planToJSON(plan, time.Now()))
}

// GetForChapter handles GET /api/chapters/{chapterId}/plan
func (h *PlanHandler) GetForChapter(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)
	chapterID := r.PathValue("chapterId")

	plan, err := h.planService.GetPlanForChapter(student.ID, chapterID)
	if err != nil {
		respondWithServiceError(w, err, "Error getting plan")
		return
	}

	respondWithJSON(w, http.StatusOK, planToJSON(plan, time.Now()))
}

// planToJSON serializes a plan with each day's derived status
func planToJSON(plan *models.StudyPlan, now time.Time) map[string]interface{} {
	days := make([]map[string]interface{}, len(plan.Days))
	for i, d := range plan.Days {
		day := map[string]interface{}{
			"dayId":             d.ID,
			"dayNumber":         d.DayNumber,
			"estimatedMinutes":  d.EstimatedMinutes,
			"status":            d.Status(now),
			"videosTotal":       d.VideosTotal,
			"videosWatched":     d.VideosWatched,
			"readingCompleted":  d.ReadingCompleted,
			"practiceCompleted": d.PracticeCompleted,
			"passRequirement":   d.PassRequirement,
		}
		if remaining := d.CooldownRemaining(now); remaining > 0 {
			day["cooldownRemainingSeconds"] = remaining
		}
		days[i] = day
	}

	return map[string]interface{}{
		"planId":     plan.ID,
		"subjectId":  plan.SubjectID,
		"chapterId":  plan.ChapterID,
		"startLevel": plan.StartLevel,
		"currentDay": plan.CurrentDayNumber(),
		"createdAt":  plan.CreatedAt.Format(time.RFC3339),
		"days":       days,
	}
}
