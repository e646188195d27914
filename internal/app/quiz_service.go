package app

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"ramadan-quiz-service/internal/domain"
)

// StateStore abstracts how the application document is persisted (flat file,
// Redis, Postgres). Load never fails: any read problem yields the built-in
// default document. Save overwrites the whole document and propagates
// failure; implementations must not retain the passed state.
type StateStore interface {
	Load(ctx context.Context) domain.State
	Save(ctx context.Context, state domain.State) error
}

// Fixed participant-facing messages, kept in the original language.
const (
	msgCorrectAnswer = "إجابة صحيحة! بارك الله فيك"
	msgWrongAnswer   = "إجابة خاطئة، حاول مرة أخرى"
)

// QuizService owns the in-memory working copy of the state and implements
// every use case over it. A single mutex covers the read-mutate-persist
// cycle of each operation; the store only ever sees whole documents. A
// failed save leaves the in-memory mutation applied, so memory and disk can
// diverge until the next successful write.
type QuizService struct {
	store      StateStore
	adminEmail string
	now        func() time.Time

	mu          sync.Mutex
	state       domain.State
	lastID      int64
	subscribers map[chan domain.Stats]struct{}
}

func NewQuizService(ctx context.Context, store StateStore, adminEmail string) *QuizService {
	return NewQuizServiceWithClock(ctx, store, adminEmail, time.Now)
}

// NewQuizServiceWithClock is test-only for deterministic ids and timestamps.
func NewQuizServiceWithClock(ctx context.Context, store StateStore, adminEmail string, now func() time.Time) *QuizService {
	s := &QuizService{
		store:       store,
		adminEmail:  adminEmail,
		now:         now,
		state:       store.Load(ctx),
		subscribers: make(map[chan domain.Stats]struct{}),
	}
	s.lastID = maxID(s.state)
	return s
}

// CurrentQuestion returns the question currently served to participants.
func (s *QuizService) CurrentQuestion() domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneQuestion(s.state.CurrentQuestion)
}

// Login returns the stored user for email, creating it on first sight, plus
// whether the email is the admin identity. Repeated logins with the same
// email return the original record without re-persisting.
func (s *QuizService) Login(ctx context.Context, email string) (domain.User, bool, error) {
	if email == "" {
		return domain.User{}, false, domain.ErrEmailRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	isAdmin := email == s.adminEmail
	for _, user := range s.state.Users {
		if user.Email == email {
			return user, isAdmin, nil
		}
	}

	user := domain.User{
		ID:       s.nextIDLocked(),
		Email:    email,
		JoinedAt: domain.ISOTimestamp(s.now()),
	}
	s.state.Users = append(s.state.Users, user)
	if err := s.store.Save(ctx, s.state); err != nil {
		return domain.User{}, false, err
	}
	s.broadcastLocked()
	return user, isAdmin, nil
}

// SubmitAnswer logs an answer against the current session (the newest
// archive entry, created lazily from the current question when the archive
// is empty) and reports whether it was correct.
//
// The submitted index is compared raw against the question's correct value
// but treated as 1-based when resolving the choice text. The asymmetry is
// long-standing recorded behavior; the persisted logs depend on it.
func (s *QuizService) SubmitAnswer(ctx context.Context, email string, answerIndex *int) (domain.AnswerResult, error) {
	if email == "" || answerIndex == nil {
		return domain.AnswerResult{}, domain.ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Archive) == 0 {
		s.state.Archive = append(s.state.Archive, domain.Session{
			Question: cloneQuestion(s.state.CurrentQuestion),
			Logs:     []domain.AnswerLog{},
		})
	}

	session := &s.state.Archive[len(s.state.Archive)-1]
	idx := *answerIndex
	isCorrect := idx == session.Correct

	entry := domain.AnswerLog{
		User:        email,
		ChoiceIndex: idx,
		IsCorrect:   isCorrect,
		Timestamp:   domain.ISOTimestamp(s.now()),
	}
	if idx >= 1 && idx <= len(session.Answers) {
		entry.ChoiceText = session.Answers[idx-1]
	}
	session.Logs = append(session.Logs, entry)

	if err := s.store.Save(ctx, s.state); err != nil {
		return domain.AnswerResult{}, err
	}
	s.broadcastLocked()

	result := domain.AnswerResult{IsCorrect: isCorrect, Message: msgWrongAnswer}
	if isCorrect {
		result.Message = msgCorrectAnswer
	}
	return result, nil
}

// AddQuestion replaces the current question and opens a fresh empty-log
// session for it. Admin only.
func (s *QuizService) AddQuestion(ctx context.Context, requesterEmail, text string, answers []string, correctRaw string) error {
	if requesterEmail != s.adminEmail {
		return domain.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	question := domain.Question{
		ID:      s.nextIDLocked(),
		Text:    text,
		Answers: append([]string(nil), answers...),
		Correct: parseCorrect(correctRaw),
	}
	s.state.CurrentQuestion = question
	s.state.Archive = append(s.state.Archive, domain.Session{
		Question: cloneQuestion(question),
		Logs:     []domain.AnswerLog{},
	})

	if err := s.store.Save(ctx, s.state); err != nil {
		return err
	}
	s.broadcastLocked()
	return nil
}

// Stats returns the aggregate admin view. Read-only, admin only.
func (s *QuizService) Stats(requesterEmail string) (domain.Stats, error) {
	if requesterEmail != s.adminEmail {
		return domain.Stats{}, domain.ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked(), nil
}

// DeleteSession removes the archived session with the given id. Deleting an
// id that is not archived succeeds as a no-op. Admin only.
func (s *QuizService) DeleteSession(ctx context.Context, requesterEmail string, id int64) error {
	if requesterEmail != s.adminEmail {
		return domain.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.state.Archive[:0]
	for _, session := range s.state.Archive {
		if session.ID != id {
			kept = append(kept, session)
		}
	}
	s.state.Archive = kept

	if err := s.store.Save(ctx, s.state); err != nil {
		return err
	}
	s.broadcastLocked()
	return nil
}

// SubscribeStats returns a channel that receives a stats snapshot
// immediately and after every mutation. Admin only. The caller must invoke
// the returned cancel function to avoid leaks.
func (s *QuizService) SubscribeStats(requesterEmail string) (<-chan domain.Stats, func(), error) {
	if requesterEmail != s.adminEmail {
		return nil, nil, domain.ErrForbidden
	}

	ch := make(chan domain.Stats, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.statsLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *QuizService) broadcastLocked() {
	snapshot := s.statsLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale update so a slow subscriber never blocks a mutation.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *QuizService) statsLocked() domain.Stats {
	snapshot := s.state.Clone()
	return domain.Stats{
		TotalUsers:      len(snapshot.Users),
		TotalQuestions:  len(snapshot.Archive),
		CurrentQuestion: snapshot.CurrentQuestion,
		Archive:         snapshot.Archive,
		Users:           snapshot.Users,
	}
}

// nextIDLocked derives creation-ordered unique ids from the clock,
// nudging forward when two creations land in the same millisecond.
func (s *QuizService) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// parseCorrect maps non-numeric admin input to a sentinel that no submitted
// index can equal, rather than rejecting it.
func parseCorrect(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return -1
	}
	return n
}

func maxID(state domain.State) int64 {
	max := state.CurrentQuestion.ID
	for _, session := range state.Archive {
		if session.ID > max {
			max = session.ID
		}
	}
	for _, user := range state.Users {
		if user.ID > max {
			max = user.ID
		}
	}
	return max
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Answers = append([]string(nil), q.Answers...)
	return q
}
