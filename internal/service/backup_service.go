package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"masterypath/internal/database"
)

// BackupData represents the complete study-data backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Students     []StudentBackup     `json:"students"`
	Diagnostics  []DiagnosticBackup  `json:"diagnostics"`
	Videos       []VideoBackup       `json:"videos"`
	Plans        []PlanBackup        `json:"plans"`
	TestAttempts []TestAttemptBackup `json:"test_attempts"`
}

// StudentBackup represents a student record for backup
type StudentBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DiagnosticBackup represents a submitted diagnostic attempt for backup
type DiagnosticBackup struct {
	ID               string     `json:"id"`
	StudentID        int64      `json:"student_id"`
	SubjectID        string     `json:"subject_id"`
	ChapterID        string     `json:"chapter_id"`
	QuestionIDs      string     `json:"question_ids"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	StartedAt        time.Time  `json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	ScorePercent     *int       `json:"score_percent"`
	RecommendedLevel string     `json:"recommended_start_level"`
	TimedOut         bool       `json:"timed_out"`
}

// VideoBackup represents a catalog video for backup
type VideoBackup struct {
	ID              int64  `json:"id"`
	YoutubeVideoID  string `json:"youtube_video_id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	SubjectID       string `json:"subject_id"`
	ChapterID       string `json:"chapter_id"`
}

// PlanBackup represents a plan record with its days
type PlanBackup struct {
	ID         int64           `json:"id"`
	StudentID  int64           `json:"student_id"`
	SubjectID  string          `json:"subject_id"`
	ChapterID  string          `json:"chapter_id"`
	StartLevel string          `json:"start_level"`
	CreatedAt  time.Time       `json:"created_at"`
	Days       []PlanDayBackup `json:"days"`
}

// PlanDayBackup represents one plan day's gate state
type PlanDayBackup struct {
	ID                int64            `json:"id"`
	DayNumber         int              `json:"day_number"`
	EstimatedMinutes  int              `json:"estimated_minutes"`
	ReadingCompleted  bool             `json:"reading_completed"`
	PracticeCompleted bool             `json:"practice_completed"`
	PassRequirement   int              `json:"pass_requirement"`
	Unlocked          bool             `json:"unlocked"`
	Passed            bool             `json:"passed"`
	Videos            []DayVideoBackup `json:"videos"`
}

// DayVideoBackup represents a day's video gate
type DayVideoBackup struct {
	VideoID   int64      `json:"video_id"`
	Position  int        `json:"position"`
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watched_at"`
}

// TestAttemptBackup represents a day test attempt for backup
type TestAttemptBackup struct {
	ID               string     `json:"id"`
	DayID            int64      `json:"day_id"`
	AttemptNumber    int        `json:"attempt_number"`
	QuestionIDs      string     `json:"question_ids"`
	PassRequirement  int        `json:"pass_requirement"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	StartedAt        time.Time  `json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	Percentage       *int       `json:"percentage"`
	Passed           bool       `json:"passed"`
	CooldownEndsAt   *time.Time `json:"cooldown_ends_at"`
}

// BackupService exports and imports the study tables as JSON
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the study data to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the study data to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportStudents(backup); err != nil {
		return fmt.Errorf("failed to export students: %w", err)
	}
	if err := s.exportDiagnostics(backup); err != nil {
		return fmt.Errorf("failed to export diagnostics: %w", err)
	}
	if err := s.exportVideos(backup); err != nil {
		return fmt.Errorf("failed to export videos: %w", err)
	}
	if err := s.exportPlans(backup); err != nil {
		return fmt.Errorf("failed to export plans: %w", err)
	}
	if err := s.exportTestAttempts(backup); err != nil {
		return fmt.Errorf("failed to export test attempts: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d students, %d diagnostics, %d videos, %d plans, %d test attempts",
		len(backup.Students), len(backup.Diagnostics), len(backup.Videos),
		len(backup.Plans), len(backup.TestAttempts))
	return nil
}

// Import restores study data from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores study data from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importStudents(backup.Students); err != nil {
		return fmt.Errorf("failed to import students: %w", err)
	}
	if err := s.importDiagnostics(backup.Diagnostics); err != nil {
		return fmt.Errorf("failed to import diagnostics: %w", err)
	}
	if err := s.importVideos(backup.Videos); err != nil {
		return fmt.Errorf("failed to import videos: %w", err)
	}
	if err := s.importPlans(backup.Plans); err != nil {
		return fmt.Errorf("failed to import plans: %w", err)
	}
	if err := s.importTestAttempts(backup.TestAttempts); err != nil {
		return fmt.Errorf("failed to import test attempts: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportStudents(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, created_at, updated_at FROM students ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st StudentBackup
		if err := rows.Scan(&st.ID, &st.Email, &st.PasswordHash, &st.Name, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
		backup.Students = append(backup.Students, st)
	}
	return rows.Err()
}

func (s *BackupService) exportDiagnostics(backup *BackupData) error {
	query := `SELECT id, student_id, subject_id, chapter_id, question_ids, time_limit_minutes,
		started_at, submitted_at, score_percent, COALESCE(recommended_start_level, ''), timed_out
		FROM diagnostic_attempts ORDER BY started_at`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d DiagnosticBackup
		var submittedAt sql.NullTime
		var score sql.NullInt64
		if err := rows.Scan(&d.ID, &d.StudentID, &d.SubjectID, &d.ChapterID, &d.QuestionIDs, &d.TimeLimitMinutes,
			&d.StartedAt, &submittedAt, &score, &d.RecommendedLevel, &d.TimedOut); err != nil {
			return err
		}
		if submittedAt.Valid {
			d.SubmittedAt = &submittedAt.Time
		}
		if score.Valid {
			v := int(score.Int64)
			d.ScorePercent = &v
		}
		backup.Diagnostics = append(backup.Diagnostics, d)
	}
	return rows.Err()
}

func (s *BackupService) exportVideos(backup *BackupData) error {
	query := "SELECT id, youtube_video_id, title, duration_seconds, COALESCE(subject_id, ''), COALESCE(chapter_id, '') FROM videos ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VideoBackup
		if err := rows.Scan(&v.ID, &v.YoutubeVideoID, &v.Title, &v.DurationSeconds, &v.SubjectID, &v.ChapterID); err != nil {
			return err
		}
		backup.Videos = append(backup.Videos, v)
	}
	return rows.Err()
}

func (s *BackupService) exportPlans(backup *BackupData) error {
	query := "SELECT id, student_id, subject_id, chapter_id, start_level, created_at FROM study_plans ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	var plans []PlanBackup
	for rows.Next() {
		var p PlanBackup
		if err := rows.Scan(&p.ID, &p.StudentID, &p.SubjectID, &p.ChapterID, &p.StartLevel, &p.CreatedAt); err != nil {
			return err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range plans {
		days, err := s.exportPlanDays(plans[i].ID)
		if err != nil {
			return err
		}
		plans[i].Days = days
	}
	backup.Plans = plans
	return nil
}

func (s *BackupService) exportPlanDays(planID int64) ([]PlanDayBackup, error) {
	query := `SELECT id, day_number, estimated_minutes, reading_completed, practice_completed,
		pass_requirement, unlocked, passed FROM plan_days WHERE plan_id = ? ORDER BY day_number`
	rows, err := s.db.Query(query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []PlanDayBackup
	for rows.Next() {
		var d PlanDayBackup
		if err := rows.Scan(&d.ID, &d.DayNumber, &d.EstimatedMinutes, &d.ReadingCompleted, &d.PracticeCompleted,
			&d.PassRequirement, &d.Unlocked, &d.Passed); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		videos, err := s.exportDayVideos(days[i].ID)
		if err != nil {
			return nil, err
		}
		days[i].Videos = videos
	}
	return days, nil
}

func (s *BackupService) exportDayVideos(dayID int64) ([]DayVideoBackup, error) {
	query := "SELECT video_id, position, watched, watched_at FROM plan_day_videos WHERE day_id = ? ORDER BY position"
	rows, err := s.db.Query(query, dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []DayVideoBackup
	for rows.Next() {
		var v DayVideoBackup
		var watchedAt sql.NullTime
		if err := rows.Scan(&v.VideoID, &v.Position, &v.Watched, &watchedAt); err != nil {
			return nil, err
		}
		if watchedAt.Valid {
			v.WatchedAt = &watchedAt.Time
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (s *BackupService) exportTestAttempts(backup *BackupData) error {
	query := `SELECT id, day_id, attempt_number, question_ids, pass_requirement, time_limit_minutes,
		started_at, submitted_at, percentage, passed, cooldown_ends_at
		FROM day_test_attempts ORDER BY started_at`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TestAttemptBackup
		var submittedAt, cooldownEndsAt sql.NullTime
		var percentage sql.NullInt64
		if err := rows.Scan(&t.ID, &t.DayID, &t.AttemptNumber, &t.QuestionIDs, &t.PassRequirement, &t.TimeLimitMinutes,
			&t.StartedAt, &submittedAt, &percentage, &t.Passed, &cooldownEndsAt); err != nil {
			return err
		}
		if submittedAt.Valid {
			t.SubmittedAt = &submittedAt.Time
		}
		if percentage.Valid {
			v := int(percentage.Int64)
			t.Percentage = &v
		}
		if cooldownEndsAt.Valid {
			t.CooldownEndsAt = &cooldownEndsAt.Time
		}
		backup.TestAttempts = append(backup.TestAttempts, t)
	}
	return rows.Err()
}

func (s *BackupService) importStudents(students []StudentBackup) error {
	log.Printf("Importing %d students...", len(students))
	for _, st := range students {
		query := "INSERT INTO students (id, email, password_hash, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, st.ID, st.Email, st.PasswordHash, st.Name, st.CreatedAt, st.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import student %d: %w", st.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importDiagnostics(diagnostics []DiagnosticBackup) error {
	log.Printf("Importing %d diagnostics...", len(diagnostics))
	for _, d := range diagnostics {
		query := `INSERT INTO diagnostic_attempts (id, student_id, subject_id, chapter_id, question_ids,
			time_limit_minutes, started_at, submitted_at, score_percent, recommended_start_level, timed_out)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, d.ID, d.StudentID, d.SubjectID, d.ChapterID, d.QuestionIDs,
			d.TimeLimitMinutes, d.StartedAt, nullTime(d.SubmittedAt), nullInt(d.ScorePercent),
			nullIfEmpty(d.RecommendedLevel), d.TimedOut)
		if err != nil {
			return fmt.Errorf("failed to import diagnostic %s: %w", d.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importVideos(videos []VideoBackup) error {
	log.Printf("Importing %d videos...", len(videos))
	for _, v := range videos {
		query := "INSERT INTO videos (id, youtube_video_id, title, duration_seconds, subject_id, chapter_id) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, v.ID, v.YoutubeVideoID, v.Title, v.DurationSeconds, nullIfEmpty(v.SubjectID), nullIfEmpty(v.ChapterID)); err != nil {
			return fmt.Errorf("failed to import video %d: %w", v.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importPlans(plans []PlanBackup) error {
	log.Printf("Importing %d plans...", len(plans))
	for _, p := range plans {
		query := "INSERT INTO study_plans (id, student_id, subject_id, chapter_id, start_level, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.ID, p.StudentID, p.SubjectID, p.ChapterID, p.StartLevel, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to import plan %d: %w", p.ID, err)
		}

		for _, d := range p.Days {
			dayQuery := `INSERT INTO plan_days (id, plan_id, day_number, estimated_minutes, reading_completed,
				practice_completed, pass_requirement, unlocked, passed) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
			_, err := s.db.Exec(dayQuery, d.ID, p.ID, d.DayNumber, d.EstimatedMinutes, d.ReadingCompleted,
				d.PracticeCompleted, d.PassRequirement, d.Unlocked, d.Passed)
			if err != nil {
				return fmt.Errorf("failed to import day %d of plan %d: %w", d.DayNumber, p.ID, err)
			}

			for _, v := range d.Videos {
				videoQuery := "INSERT INTO plan_day_videos (day_id, video_id, position, watched, watched_at) VALUES (?, ?, ?, ?, ?)"
				if _, err := s.db.Exec(videoQuery, d.ID, v.VideoID, v.Position, v.Watched, nullTime(v.WatchedAt)); err != nil {
					return fmt.Errorf("failed to import video %d for day %d: %w", v.VideoID, d.ID, err)
				}
			}
		}
	}
	return nil
}

func (s *BackupService) importTestAttempts(attempts []TestAttemptBackup) error {
	log.Printf("Importing %d test attempts...", len(attempts))
	for _, t := range attempts {
		query := `INSERT INTO day_test_attempts (id, day_id, attempt_number, question_ids, pass_requirement,
			time_limit_minutes, started_at, submitted_at, percentage, passed, cooldown_ends_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, t.ID, t.DayID, t.AttemptNumber, t.QuestionIDs, t.PassRequirement,
			t.TimeLimitMinutes, t.StartedAt, nullTime(t.SubmittedAt), nullInt(t.Percentage), t.Passed,
			nullTime(t.CooldownEndsAt))
		if err != nil {
			return fmt.Errorf("failed to import test attempt %s: %w", t.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
