package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"masterypath/internal/service"
)

// ContentHandler serves the three day-content gates
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func parseDayID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("dayId"), 10, 64)
}

// MarkVideoWatched handles POST /api/days/{dayId}/videos/{videoId}/watched
func (h *ContentHandler) MarkVideoWatched(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	dayID, err := parseDayID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid day ID", "", err)
		return
	}
	videoID, err := strconv.ParseInt(r.PathValue("videoId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid video ID", "", err)
		return
	}

	if err := h.contentService.MarkVideoWatched(dayID, videoID, student.ID); err != nil {
		respondWithServiceError(w, err, "Error marking video watched")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetVideos handles GET /api/days/{dayId}/videos
func (h *ContentHandler) GetVideos(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	dayID, err := parseDayID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid day ID", "", err)
		return
	}

	videos, watched, err := h.contentService.GetDayVideos(dayID, student.ID)
	if err != nil {
		respondWithServiceError(w, err, "Error getting day videos")
		return
	}

	payload := make([]map[string]interface{}, len(videos))
	for i, v := range videos {
		payload[i] = map[string]interface{}{
			"videoId":         v.ID,
			"youtubeVideoId":  v.YoutubeVideoID,
			"title":           v.Title,
			"durationSeconds": v.DurationSeconds,
			"watched":         watched[i],
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"videos": payload})
}

// MarkReadingComplete handles POST /api/days/{dayId}/reading
func (h *ContentHandler) MarkReadingComplete(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	dayID, err := parseDayID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid day ID", "", err)
		return
	}

	if err := h.contentService.MarkReadingComplete(dayID, student.ID); err != nil {
		respondWithServiceError(w, err, "Error marking reading complete")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPractice handles GET /api/days/{dayId}/practice
func (h *ContentHandler) GetPractice(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	dayID, err := parseDayID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid day ID", "", err)
		return
	}

	questions, err := h.contentService.GetPracticeSet(r.Context(), dayID, student.ID)
	if err != nil {
		respondWithServiceError(w, err, "Error getting practice set")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// SubmitPractice handles POST /api/days/{dayId}/practice
func (h *ContentHandler) SubmitPractice(w http.ResponseWriter, r *http.Request) {
	student := studentFromContext(r)

	dayID, err := parseDayID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid day ID", "", err)
		return
	}

	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	result, err := h.contentService.SubmitPractice(r.Context(), dayID, student.ID, req.Answers)
	if err != nil {
		respondWithServiceError(w, err, "Error submitting practice")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"allCorrect":        result.AllCorrect,
		"correct":           result.Correct,
		"total":             result.Total,
		"practiceCompleted": result.PracticeCompleted,
	})
}
