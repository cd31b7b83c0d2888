package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"masterypath/internal/models"
	"masterypath/internal/questionbank"
)

// opLog records store mutations in call order. Shared between fakes so tests
// can assert ordering across stores.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) record(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

func (l *opLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

func (l *opLog) indexOf(op string) int {
	for i, o := range l.snapshot() {
		if o == op {
			return i
		}
	}
	return -1
}

// fakeBank serves canned questions in place of the HTTP question bank
type fakeBank struct {
	questions []models.Question
	err       error
}

func (b *fakeBank) FetchSet(ctx context.Context, kind questionbank.SetKind, subjectID, chapterID string, dayNumber int) ([]models.Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	return append([]models.Question(nil), b.questions...), nil
}

func (b *fakeBank) FetchQuestions(ctx context.Context, ids []string) ([]models.Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	byID := make(map[string]models.Question, len(b.questions))
	for _, q := range b.questions {
		byID[q.ID] = q
	}
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// fakeDayStore is an in-memory DayStore
type fakeDayStore struct {
	mu        sync.Mutex
	log       *opLog
	days      map[int64]*models.PlanDay
	plans     map[int64]*models.StudyPlan
	videos    map[int64]*models.Video
	dayVideos map[int64][]int64 // dayID -> video IDs attached to the day
	watched   map[int64]map[int64]bool
}

func newFakeDayStore(log *opLog) *fakeDayStore {
	return &fakeDayStore{
		log:       log,
		days:      make(map[int64]*models.PlanDay),
		plans:     make(map[int64]*models.StudyPlan),
		videos:    make(map[int64]*models.Video),
		dayVideos: make(map[int64][]int64),
		watched:   make(map[int64]map[int64]bool),
	}
}

func (s *fakeDayStore) addDay(day models.PlanDay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := day
	s.days[day.ID] = &d
}

func (s *fakeDayStore) addPlan(plan models.StudyPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := plan
	s.plans[plan.ID] = &p
}

func (s *fakeDayStore) addVideo(video models.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := video
	s.videos[video.ID] = &v
}

func (s *fakeDayStore) day(dayID int64) models.PlanDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.days[dayID]
}

func (s *fakeDayStore) GetDay(dayID int64) (*models.PlanDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.days[dayID]
	if !ok {
		return nil, nil
	}
	d := *day
	return &d, nil
}

func (s *fakeDayStore) GetPlanByID(planID int64) (*models.StudyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[planID]
	if !ok {
		return nil, nil
	}
	p := *plan
	return &p, nil
}

func (s *fakeDayStore) GetDayByNumber(planID int64, dayNumber int) (*models.PlanDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, day := range s.days {
		if day.PlanID == planID && day.DayNumber == dayNumber {
			d := *day
			return &d, nil
		}
	}
	return nil, nil
}

func (s *fakeDayStore) HasVideo(dayID, videoID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.dayVideos[dayID] {
		if id == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeDayStore) GetDayVideos(dayID int64) ([]models.Video, []bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var videos []models.Video
	var watched []bool
	for _, id := range s.dayVideos[dayID] {
		videos = append(videos, *s.videos[id])
		watched = append(watched, s.watched[dayID][id])
	}
	return videos, watched, nil
}

func (s *fakeDayStore) GetVideo(videoID int64) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[videoID]
	if !ok {
		return nil, nil
	}
	v := *video
	return &v, nil
}

func (s *fakeDayStore) MarkVideoWatched(dayID, videoID int64) error {
	s.log.record("MarkVideoWatched(%d,%d)", dayID, videoID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watched[dayID] == nil {
		s.watched[dayID] = make(map[int64]bool)
	}
	if !s.watched[dayID][videoID] {
		s.watched[dayID][videoID] = true
		s.days[dayID].VideosWatched++
	}
	return nil
}

func (s *fakeDayStore) MarkReadingComplete(dayID int64) error {
	s.log.record("MarkReadingComplete(%d)", dayID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayID].ReadingCompleted = true
	return nil
}

func (s *fakeDayStore) MarkPracticeComplete(dayID int64) error {
	s.log.record("MarkPracticeComplete(%d)", dayID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayID].PracticeCompleted = true
	return nil
}

func (s *fakeDayStore) MarkPassed(dayID int64) error {
	s.log.record("MarkPassed(%d)", dayID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayID].Passed = true
	return nil
}

func (s *fakeDayStore) UnlockDay(dayID int64) error {
	s.log.record("UnlockDay(%d)", dayID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayID].Unlocked = true
	return nil
}

func (s *fakeDayStore) SetPassRequirement(dayID int64, percent int) error {
	s.log.record("SetPassRequirement(%d,%d)", dayID, percent)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayID].PassRequirement = percent
	return nil
}

// fakeTestStore is an in-memory TestAttemptStore
type fakeTestStore struct {
	mu        sync.Mutex
	log       *opLog
	attempts  map[string]*models.DayTestAttempt
	responses map[string][]models.Response
}

func newFakeTestStore(log *opLog) *fakeTestStore {
	return &fakeTestStore{
		log:       log,
		attempts:  make(map[string]*models.DayTestAttempt),
		responses: make(map[string][]models.Response),
	}
}

func (s *fakeTestStore) addAttempt(attempt models.DayTestAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := attempt
	s.attempts[attempt.ID] = &a
}

func (s *fakeTestStore) CreateAttempt(attempt *models.DayTestAttempt) error {
	s.log.record("CreateAttempt(%s)", attempt.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	a := *attempt
	s.attempts[attempt.ID] = &a
	return nil
}

func (s *fakeTestStore) GetAttempt(attemptID string) (*models.DayTestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return nil, nil
	}
	a := *attempt
	return &a, nil
}

func (s *fakeTestStore) GetOpenAttempt(dayID int64) (*models.DayTestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, attempt := range s.attempts {
		if attempt.DayID == dayID && attempt.SubmittedAt == nil {
			a := *attempt
			return &a, nil
		}
	}
	return nil, nil
}

func (s *fakeTestStore) GetLatestAttempt(dayID int64) (*models.DayTestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.DayTestAttempt
	for _, attempt := range s.attempts {
		if attempt.DayID != dayID {
			continue
		}
		if latest == nil || attempt.AttemptNumber > latest.AttemptNumber {
			latest = attempt
		}
	}
	if latest == nil {
		return nil, nil
	}
	a := *latest
	return &a, nil
}

func (s *fakeTestStore) CountFailures(dayID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, attempt := range s.attempts {
		if attempt.DayID == dayID && attempt.SubmittedAt != nil && !attempt.Passed {
			count++
		}
	}
	return count, nil
}

func (s *fakeTestStore) SubmitAttempt(attemptID string, submittedAt time.Time, percentage int, passed bool, cooldownEndsAt *time.Time, responses []models.Response) error {
	s.log.record("SubmitAttempt(%s)", attemptID)
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.SubmittedAt != nil {
		return fmt.Errorf("test attempt %s already submitted", attemptID)
	}
	at := submittedAt
	attempt.SubmittedAt = &at
	attempt.Percentage = &percentage
	attempt.Passed = passed
	attempt.CooldownEndsAt = cooldownEndsAt
	s.responses[attemptID] = append([]models.Response(nil), responses...)
	return nil
}

func (s *fakeTestStore) savedResponses(attemptID string) []models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses[attemptID]
}

// fakeWatchStore is an in-memory WatchStore
type fakeWatchStore struct {
	mu         sync.Mutex
	log        *opLog
	sessions   map[string]*models.WatchSession
	challenges map[string]*models.AttentionChallenge // keyed by challenge ID
	quizzes    map[string]*models.ComprehensionQuiz  // keyed by session ID
	endCalls   int
}

func newFakeWatchStore(log *opLog) *fakeWatchStore {
	return &fakeWatchStore{
		log:        log,
		sessions:   make(map[string]*models.WatchSession),
		challenges: make(map[string]*models.AttentionChallenge),
		quizzes:    make(map[string]*models.ComprehensionQuiz),
	}
}

func (s *fakeWatchStore) addSession(session models.WatchSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := session
	s.sessions[session.ID] = &sess
}

func (s *fakeWatchStore) addQuiz(quiz models.ComprehensionQuiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := quiz
	s.quizzes[quiz.SessionID] = &q
}

func (s *fakeWatchStore) session(sessionID string) models.WatchSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.sessions[sessionID]
}

func (s *fakeWatchStore) CreateSession(session *models.WatchSession) error {
	s.log.record("CreateSession(%s)", session.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := *session
	s.sessions[session.ID] = &sess
	return nil
}

func (s *fakeWatchStore) GetSession(sessionID string) (*models.WatchSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	sess := *session
	return &sess, nil
}

func (s *fakeWatchStore) GetOpenSession(studentID, videoID int64) (*models.WatchSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.StudentID == studentID && session.VideoID == videoID && session.EndedAt == nil {
			sess := *session
			return &sess, nil
		}
	}
	return nil, nil
}

func (s *fakeWatchStore) UpdateProgress(sessionID string, totalWatchSeconds, lastPositionSeconds int) error {
	s.log.record("UpdateProgress(%s,%d,%d)", sessionID, totalWatchSeconds, lastPositionSeconds)
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[sessionID]
	session.TotalWatchSeconds = totalWatchSeconds
	session.LastPositionSeconds = lastPositionSeconds
	return nil
}

func (s *fakeWatchStore) RecordVerification(sessionID string, atSeconds int) error {
	s.log.record("RecordVerification(%s,%d)", sessionID, atSeconds)
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[sessionID]
	session.LastVerificationSeconds = atSeconds
	session.VerificationsCompleted++
	return nil
}

func (s *fakeWatchStore) MarkQuizTriggered(sessionID string) error {
	s.log.record("MarkQuizTriggered(%s)", sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID].QuizTriggered = true
	return nil
}

func (s *fakeWatchStore) MarkQuizDismissed(sessionID string) error {
	s.log.record("MarkQuizDismissed(%s)", sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if quiz, ok := s.quizzes[sessionID]; ok {
		quiz.Dismissed = true
	}
	return nil
}

func (s *fakeWatchStore) IncrementQuestionsAnswered(sessionID string) error {
	s.log.record("IncrementQuestionsAnswered(%s)", sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID].QuestionsAnswered++
	return nil
}

func (s *fakeWatchStore) EndSession(sessionID string, endedAt time.Time, completed bool) error {
	s.log.record("EndSession(%s)", sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endCalls++
	session := s.sessions[sessionID]
	if session.EndedAt == nil {
		at := endedAt
		session.EndedAt = &at
		session.IsCompleted = completed
	}
	return nil
}

func (s *fakeWatchStore) CreateChallenge(challenge *models.AttentionChallenge) error {
	s.log.record("CreateChallenge(%s)", challenge.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *challenge
	s.challenges[challenge.ID] = &c
	return nil
}

func (s *fakeWatchStore) GetOpenChallenge(sessionID string) (*models.AttentionChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, challenge := range s.challenges {
		if challenge.SessionID == sessionID && !challenge.Consumed {
			c := *challenge
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeWatchStore) ConsumeChallenge(challengeID string) (bool, error) {
	s.log.record("ConsumeChallenge(%s)", challengeID)
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[challengeID]
	if !ok || challenge.Consumed {
		return false, nil
	}
	challenge.Consumed = true
	return true, nil
}

func (s *fakeWatchStore) CreateQuiz(quiz *models.ComprehensionQuiz) error {
	s.log.record("CreateQuiz(%s)", quiz.SessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	q := *quiz
	s.quizzes[quiz.SessionID] = &q
	return nil
}

func (s *fakeWatchStore) GetQuiz(sessionID string) (*models.ComprehensionQuiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[sessionID]
	if !ok {
		return nil, nil
	}
	q := *quiz
	return &q, nil
}

func (s *fakeWatchStore) SaveQuizAnswer(sessionID, questionID, answer string, isCorrect *bool) error {
	s.log.record("SaveQuizAnswer(%s,%s)", sessionID, questionID)
	return nil
}
