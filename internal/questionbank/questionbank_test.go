package questionbank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sets" {
			t.Errorf("path = %s, want /sets", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("kind") != "diagnostic" {
			t.Errorf("kind = %s, want diagnostic", q.Get("kind"))
		}
		if q.Get("chapterId") != "ch-101" {
			t.Errorf("chapterId = %s, want ch-101", q.Get("chapterId"))
		}
		if q.Get("day") != "" {
			t.Errorf("day should be omitted for diagnostic sets, got %s", q.Get("day"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"questions":[{"id":"q1","type":"MCQ","prompt":"Pick one","correctAnswer":"A"},{"id":"q2","type":"TRUE_FALSE","prompt":"True?","correctAnswer":"TRUE"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	questions, err := client.FetchSet(context.Background(), SetDiagnostic, "sub-1", "ch-101", 0)
	if err != nil {
		t.Fatalf("FetchSet() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].ID != "q1" || questions[0].CorrectAnswer != "A" {
		t.Errorf("unexpected first question: %+v", questions[0])
	}
}

func TestFetchSetIncludesDayForDayTests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("day"); got != "3" {
			t.Errorf("day = %s, want 3", got)
		}
		w.Write([]byte(`{"questions":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if _, err := client.FetchSet(context.Background(), SetDayTest, "sub-1", "ch-101", 3); err != nil {
		t.Fatalf("FetchSet() error = %v", err)
	}
}

func TestFetchQuestionsByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/questions" {
			t.Errorf("path = %s, want /questions", r.URL.Path)
		}
		ids := r.URL.Query()["id"]
		if len(ids) != 2 || ids[0] != "q1" || ids[1] != "q2" {
			t.Errorf("ids = %v, want [q1 q2]", ids)
		}
		w.Write([]byte(`{"questions":[{"id":"q1","type":"MCQ","correctAnswer":"A"},{"id":"q2","type":"MCQ","correctAnswer":"B"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	questions, err := client.FetchQuestions(context.Background(), []string{"q1", "q2"})
	if err != nil {
		t.Fatalf("FetchQuestions() error = %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("got %d questions, want 2", len(questions))
	}
}

func TestServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchSet(context.Background(), SetPractice, "sub-1", "ch-101", 1)
	if !errors.Is(err, ErrBankUnavailable) {
		t.Errorf("error = %v, want ErrBankUnavailable", err)
	}
}

func TestConnectionErrorIsTransient(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.FetchQuestions(context.Background(), []string{"q1"})
	if !errors.Is(err, ErrBankUnavailable) {
		t.Errorf("error = %v, want ErrBankUnavailable", err)
	}
}

func TestClientErrorIsNotTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchSet(context.Background(), SetDayTest, "sub-1", "missing", 1)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if errors.Is(err, ErrBankUnavailable) {
		t.Error("a 404 should not be classified as transient")
	}
}
