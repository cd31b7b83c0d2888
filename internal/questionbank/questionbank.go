// Package questionbank fetches question sets from the school platform's
// question bank service. The engine never authors questions itself; it asks
// the bank for a typed set and grades against the keys the bank provides.
package questionbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"masterypath/internal/models"
)

// ErrBankUnavailable indicates a transient question bank failure. Callers
// surface it as a 502 rather than failing the student's state.
var ErrBankUnavailable = errors.New("question bank unavailable")

// SetKind names the question set being requested
type SetKind string

const (
	SetDiagnostic    SetKind = "diagnostic"
	SetDayTest       SetKind = "day_test"
	SetPractice      SetKind = "practice"
	SetComprehension SetKind = "comprehension"
)

// Bank is the question source consumed by the services. Tests substitute
// a stub.
type Bank interface {
	// FetchSet returns the question set of the given kind for a chapter.
	// dayNumber is 0 for kinds that are not day-scoped.
	FetchSet(ctx context.Context, kind SetKind, subjectID, chapterID string, dayNumber int) ([]models.Question, error)

	// FetchQuestions resolves previously issued question IDs back to full
	// questions with their answer keys.
	FetchQuestions(ctx context.Context, questionIDs []string) ([]models.Question, error)
}

const defaultTimeout = 10 * time.Second

// Client talks to the question bank over HTTP
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a question bank client. A zero timeout falls back to
// the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchSet requests a typed question set for a chapter
func (c *Client) FetchSet(ctx context.Context, kind SetKind, subjectID, chapterID string, dayNumber int) ([]models.Question, error) {
	params := url.Values{}
	params.Set("kind", string(kind))
	params.Set("subjectId", subjectID)
	params.Set("chapterId", chapterID)
	if dayNumber > 0 {
		params.Set("day", strconv.Itoa(dayNumber))
	}

	return c.get(ctx, c.baseURL+"/sets?"+params.Encode())
}

// FetchQuestions resolves question IDs to full questions
func (c *Client) FetchQuestions(ctx context.Context, questionIDs []string) ([]models.Question, error) {
	params := url.Values{}
	for _, id := range questionIDs {
		params.Add("id", id)
	}

	return c.get(ctx, c.baseURL+"/questions?"+params.Encode())
}

func (c *Client) get(ctx context.Context, fullURL string) ([]models.Question, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBankUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrBankUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question bank returned status %d", resp.StatusCode)
	}

	var payload struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrBankUnavailable, err)
	}

	return payload.Questions, nil
}
