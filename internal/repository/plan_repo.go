package repository

import (
	"database/sql"
	"fmt"
	"time"

	"masterypath/internal/database"
	"masterypath/internal/models"
)

// PlanRepository handles database operations for study plans and their days
type PlanRepository struct {
	db *database.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// CreatePlan inserts a plan with its day rows in one transaction.
// dayVideos maps day number to the videos attached to that day, in order.
func (r *PlanRepository) CreatePlan(plan *models.StudyPlan, dayVideos map[int][]int64) (*models.StudyPlan, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	planID, err := tx.ExecReturningID(`
		INSERT INTO study_plans (student_id, subject_id, chapter_id, start_level)
		VALUES (?, ?, ?, ?)
	`, plan.StudentID, plan.SubjectID, plan.ChapterID, string(plan.StartLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	plan.ID = planID

	for i := range plan.Days {
		day := &plan.Days[i]
		day.PlanID = planID

		dayID, err := tx.ExecReturningID(`
			INSERT INTO plan_days (plan_id, day_number, estimated_minutes, pass_requirement, unlocked)
			VALUES (?, ?, ?, ?, ?)
		`, planID, day.DayNumber, day.EstimatedMinutes, day.PassRequirement, day.Unlocked)
		if err != nil {
			return nil, fmt.Errorf("failed to create plan day %d: %w", day.DayNumber, err)
		}
		day.ID = dayID

		for pos, videoID := range dayVideos[day.DayNumber] {
			_, err := tx.Exec(`
				INSERT INTO plan_day_videos (day_id, video_id, position)
				VALUES (?, ?, ?)
			`, dayID, videoID, pos)
			if err != nil {
				return nil, fmt.Errorf("failed to attach video %d to day %d: %w", videoID, day.DayNumber, err)
			}
			day.VideosTotal++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan: %w", err)
	}
	return plan, nil
}

// GetPlanForChapter retrieves a student's plan for a chapter with all days
// populated, or nil if none exists
func (r *PlanRepository) GetPlanForChapter(studentID int64, chapterID string) (*models.StudyPlan, error) {
	query := `
		SELECT id, student_id, subject_id, chapter_id, start_level, created_at
		FROM study_plans
		WHERE student_id = ? AND chapter_id = ?
	`
	return r.scanPlan(r.db.QueryRow(query, studentID, chapterID))
}

// GetPlanByID retrieves a plan with all days populated
func (r *PlanRepository) GetPlanByID(planID int64) (*models.StudyPlan, error) {
	query := `
		SELECT id, student_id, subject_id, chapter_id, start_level, created_at
		FROM study_plans
		WHERE id = ?
	`
	return r.scanPlan(r.db.QueryRow(query, planID))
}

func (r *PlanRepository) scanPlan(row *sql.Row) (*models.StudyPlan, error) {
	plan := &models.StudyPlan{}
	var level string
	err := row.Scan(&plan.ID, &plan.StudentID, &plan.SubjectID, &plan.ChapterID, &level, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	plan.StartLevel = models.StartLevel(level)

	days, err := r.GetDays(plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Days = days
	return plan, nil
}

// GetDays retrieves all days of a plan in order, with video gate counts
func (r *PlanRepository) GetDays(planID int64) ([]models.PlanDay, error) {
	query := `
		SELECT d.id, d.plan_id, d.day_number, d.estimated_minutes,
		       d.reading_completed, d.practice_completed, d.pass_requirement, d.unlocked, d.passed,
		       (SELECT COUNT(*) FROM plan_day_videos v WHERE v.day_id = d.id),
		       (SELECT COUNT(*) FROM plan_day_videos v WHERE v.day_id = d.id AND v.watched = ?)
		FROM plan_days d
		WHERE d.plan_id = ?
		ORDER BY d.day_number
	`
	rows, err := r.db.Query(query, true, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan days: %w", err)
	}
	defer rows.Close()

	var days []models.PlanDay
	for rows.Next() {
		var d models.PlanDay
		if err := rows.Scan(
			&d.ID, &d.PlanID, &d.DayNumber, &d.EstimatedMinutes,
			&d.ReadingCompleted, &d.PracticeCompleted, &d.PassRequirement, &d.Unlocked, &d.Passed,
			&d.VideosTotal, &d.VideosWatched,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// GetDay retrieves one day by ID, with video gate counts
func (r *PlanRepository) GetDay(dayID int64) (*models.PlanDay, error) {
	query := `
		SELECT d.id, d.plan_id, d.day_number, d.estimated_minutes,
		       d.reading_completed, d.practice_completed, d.pass_requirement, d.unlocked, d.passed,
		       (SELECT COUNT(*) FROM plan_day_videos v WHERE v.day_id = d.id),
		       (SELECT COUNT(*) FROM plan_day_videos v WHERE v.day_id = d.id AND v.watched = ?)
		FROM plan_days d
		WHERE d.id = ?
	`
	d := &models.PlanDay{}
	err := r.db.QueryRow(query, true, dayID).Scan(
		&d.ID, &d.PlanID, &d.DayNumber, &d.EstimatedMinutes,
		&d.ReadingCompleted, &d.PracticeCompleted, &d.PassRequirement, &d.Unlocked, &d.Passed,
		&d.VideosTotal, &d.VideosWatched,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan day: %w", err)
	}
	return d, nil
}

// GetDayByNumber retrieves a plan's day by its day number
func (r *PlanRepository) GetDayByNumber(planID int64, dayNumber int) (*models.PlanDay, error) {
	var dayID int64
	err := r.db.QueryRow("SELECT id FROM plan_days WHERE plan_id = ? AND day_number = ?", planID, dayNumber).Scan(&dayID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan day: %w", err)
	}
	return r.GetDay(dayID)
}

// MarkVideoWatched records a video gate as satisfied. Idempotent.
func (r *PlanRepository) MarkVideoWatched(dayID, videoID int64) error {
	query := `
		UPDATE plan_day_videos
		SET watched = ?, watched_at = ?
		WHERE day_id = ? AND video_id = ? AND watched = ?
	`
	_, err := r.db.Exec(query, true, time.Now(), dayID, videoID, false)
	if err != nil {
		return fmt.Errorf("failed to mark video watched: %w", err)
	}
	return nil
}

// HasVideo reports whether a video is attached to a day
func (r *PlanRepository) HasVideo(dayID, videoID int64) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM plan_day_videos WHERE day_id = ? AND video_id = ?", dayID, videoID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check day video: %w", err)
	}
	return count > 0, nil
}

// MarkReadingComplete records the reading gate as satisfied. Idempotent.
func (r *PlanRepository) MarkReadingComplete(dayID int64) error {
	_, err := r.db.Exec("UPDATE plan_days SET reading_completed = ? WHERE id = ?", true, dayID)
	if err != nil {
		return fmt.Errorf("failed to mark reading complete: %w", err)
	}
	return nil
}

// MarkPracticeComplete records the practice gate as satisfied. Idempotent.
func (r *PlanRepository) MarkPracticeComplete(dayID int64) error {
	_, err := r.db.Exec("UPDATE plan_days SET practice_completed = ? WHERE id = ?", true, dayID)
	if err != nil {
		return fmt.Errorf("failed to mark practice complete: %w", err)
	}
	return nil
}

// SetPassRequirement raises the day's threshold for future attempts
func (r *PlanRepository) SetPassRequirement(dayID int64, percent int) error {
	_, err := r.db.Exec("UPDATE plan_days SET pass_requirement = ? WHERE id = ?", percent, dayID)
	if err != nil {
		return fmt.Errorf("failed to set pass requirement: %w", err)
	}
	return nil
}

// MarkPassed records a day as passed
func (r *PlanRepository) MarkPassed(dayID int64) error {
	_, err := r.db.Exec("UPDATE plan_days SET passed = ? WHERE id = ?", true, dayID)
	if err != nil {
		return fmt.Errorf("failed to mark day passed: %w", err)
	}
	return nil
}

// UnlockDay opens a day for study
func (r *PlanRepository) UnlockDay(dayID int64) error {
	_, err := r.db.Exec("UPDATE plan_days SET unlocked = ? WHERE id = ?", true, dayID)
	if err != nil {
		return fmt.Errorf("failed to unlock day: %w", err)
	}
	return nil
}

// GetDayVideos lists the videos attached to a day in position order, with
// each video's watched flag
func (r *PlanRepository) GetDayVideos(dayID int64) ([]models.Video, []bool, error) {
	query := `
		SELECT v.id, v.youtube_video_id, v.title, v.duration_seconds,
		       COALESCE(v.subject_id, ''), COALESCE(v.chapter_id, ''), dv.watched
		FROM plan_day_videos dv
		JOIN videos v ON v.id = dv.video_id
		WHERE dv.day_id = ?
		ORDER BY dv.position
	`
	rows, err := r.db.Query(query, dayID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get day videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	var watched []bool
	for rows.Next() {
		var v models.Video
		var w bool
		if err := rows.Scan(&v.ID, &v.YoutubeVideoID, &v.Title, &v.DurationSeconds, &v.SubjectID, &v.ChapterID, &w); err != nil {
			return nil, nil, fmt.Errorf("failed to scan day video: %w", err)
		}
		videos = append(videos, v)
		watched = append(watched, w)
	}
	return videos, watched, rows.Err()
}

// GetVideo retrieves a video by ID
func (r *PlanRepository) GetVideo(videoID int64) (*models.Video, error) {
	query := `
		SELECT id, youtube_video_id, title, duration_seconds,
		       COALESCE(subject_id, ''), COALESCE(chapter_id, '')
		FROM videos
		WHERE id = ?
	`
	v := &models.Video{}
	err := r.db.QueryRow(query, videoID).Scan(
		&v.ID, &v.YoutubeVideoID, &v.Title, &v.DurationSeconds, &v.SubjectID, &v.ChapterID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

// GetVideosForChapter lists catalog videos for a chapter
func (r *PlanRepository) GetVideosForChapter(subjectID, chapterID string) ([]models.Video, error) {
	query := `
		SELECT id, youtube_video_id, title, duration_seconds,
		       COALESCE(subject_id, ''), COALESCE(chapter_id, '')
		FROM videos
		WHERE subject_id = ? AND chapter_id = ?
		ORDER BY id
	`
	rows, err := r.db.Query(query, subjectID, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.YoutubeVideoID, &v.Title, &v.DurationSeconds, &v.SubjectID, &v.ChapterID); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
