package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"masterypath/internal/security"
	"masterypath/internal/service"
	"masterypath/internal/validation"
)

// AuthHandler serves registration, login and logout
type AuthHandler struct {
	authService  *service.AuthService
	emailService *service.EmailService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	student, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		var validationErr validation.ValidationError
		if errors.As(err, &validationErr) {
			respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
			return
		}
		respondWithServiceError(w, err, "Error registering student")
		return
	}

	// Best-effort welcome email
	if err := h.emailService.SendWelcomeEmail(r.Context(), student.Email, student.Name); err != nil {
		log.Printf("welcome email failed for %s: %v", student.Email, err)
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    student.ID,
		"email": student.Email,
		"name":  student.Name,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}

	student, session, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err, "Error logging in")
		return
	}

	token, err := h.authService.IssueAPIToken(student.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing API token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":        student.ID,
		"email":     student.Email,
		"name":      student.Name,
		"token":     token,
		"expiresAt": session.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("failed to delete session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
