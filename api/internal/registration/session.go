package registration

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel-bot/api/internal/extract"
)

var ErrNoSession = errors.New("registration: no active session")

// Photo — копия документа в файловом хранилище.
type Photo struct {
	ID        string
	Name      string
	Link      string
	CreatedAt time.Time
}

type Session struct {
	ID       string
	UserID   int64
	State    State
	Operator string

	CheckIn      time.Time
	CheckOut     time.Time
	Duration     Duration
	Price        string
	Payment      string
	Room         string
	Observations string

	Document     extract.Fields
	Quality      extract.Quality
	Photo        *Photo
	EditingField Field
}

func newSession(userID int64, operator string, now time.Time) *Session {
	if operator == "" {
		operator = "Usuario"
	}
	return &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		State:    StateAwaitingPhoto,
		Operator: operator,
		CheckIn:  now,
	}
}

// SessionStore хранит не более одной сессии на оператора.
// Все изменения сессии делаются под Lock(userID).
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Lock сериализует события одного оператора; другие операторы не ждут.
func (s *SessionStore) Lock(userID int64) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Create заменяет прежнюю сессию оператора, если она была.
func (s *SessionStore) Create(sess *Session) (prev *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.sessions[sess.UserID]
	s.sessions[sess.UserID] = sess
	return prev
}

func (s *SessionStore) Delete(userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	delete(s.sessions, userID)
	return sess, nil
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
