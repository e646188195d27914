package domain

import "time"

// ISOTimestamp renders t the way the persisted document stores every
// timestamp: UTC, millisecond precision, trailing Z.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Question is the single MCQ served to participants. Correct holds the
// admin-supplied answer index as parsed; non-numeric input is stored as -1
// so it can never match a submitted index.
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
	Correct int      `json:"correct"`
}

// AnswerLog records one submission against a session. ChoiceText is the
// 1-based lookup into the session's answers and is omitted when the index
// falls outside them.
type AnswerLog struct {
	User        string `json:"user"`
	ChoiceIndex int    `json:"choiceIndex"`
	ChoiceText  string `json:"choiceText,omitempty"`
	IsCorrect   bool   `json:"isCorrect"`
	Timestamp   string `json:"timestamp"`
}

// Session is one archived question plus everything answered against it.
// The question fields are inlined in JSON, matching the persisted layout.
type Session struct {
	Question
	Logs []AnswerLog `json:"logs"`
}

// User is a participant identity, created on first login and never updated.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	JoinedAt string `json:"joinedAt"`
}

// State is the whole application document: the question currently served,
// the ordered session archive (oldest first), and every known user.
type State struct {
	CurrentQuestion Question  `json:"currentQuestion"`
	Archive         []Session `json:"archive"`
	Users           []User    `json:"users"`
}

// Stats is the admin-facing aggregate view over the state.
type Stats struct {
	TotalUsers      int       `json:"totalUsers"`
	TotalQuestions  int       `json:"totalQuestions"`
	CurrentQuestion Question  `json:"currentQuestion"`
	Archive         []Session `json:"archive"`
	Users           []User    `json:"users"`
}

// AnswerResult is the outcome returned to a participant after a submission.
type AnswerResult struct {
	IsCorrect bool   `json:"isCorrect"`
	Message   string `json:"message"`
}

// DefaultState is the built-in document used whenever the backing store has
// nothing usable: the seed question with an empty archive and no users.
func DefaultState() State {
	return State{
		CurrentQuestion: Question{
			ID:      1,
			Text:    "ما هي السورة التي فرض فيها الصيام؟",
			Answers: []string{"البقرة", "الماعون", "الأنفال", "المائدة"},
			Correct: 1,
		},
		Archive: []Session{},
		Users:   []User{},
	}
}

// Clone deep-copies the state so snapshots handed to callers stay stable
// while the working copy keeps mutating.
func (s State) Clone() State {
	out := s
	out.CurrentQuestion = s.CurrentQuestion.clone()
	out.Archive = make([]Session, len(s.Archive))
	for i, session := range s.Archive {
		out.Archive[i] = session.clone()
	}
	out.Users = append([]User(nil), s.Users...)
	return out
}

func (q Question) clone() Question {
	out := q
	out.Answers = append([]string(nil), q.Answers...)
	return out
}

func (s Session) clone() Session {
	out := s
	out.Question = s.Question.clone()
	out.Logs = append([]AnswerLog(nil), s.Logs...)
	return out
}
