package session

import (
	"errors"
	"sync"
)

type Role string

const (
	RoleNone    Role = ""
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var ErrBadCredentials = errors.New("invalid username or password")

// Credentials is the configured username/password pair for one role. The
// board intentionally ships a fixed credential gate rather than real
// authentication; the backend trusts the client.
type Credentials struct {
	Username string
	Password string
	UserID   int
}

// Session is the explicit login state passed into the synchronizer. It
// replaces ambient globals so role checks can live at the data layer.
type Session struct {
	mu       sync.RWMutex
	teacher  Credentials
	student  Credentials
	role     Role
	userID   int
	userName string
}

func New(teacher, student Credentials) *Session {
	return &Session{teacher: teacher, student: student}
}

// Login matches the supplied pair against the configured credentials and
// opens a session for the matching role.
func (s *Session) Login(username, password string) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case username == s.teacher.Username && password == s.teacher.Password:
		s.role = RoleTeacher
		s.userID = s.teacher.UserID
		s.userName = s.teacher.Username
	case username == s.student.Username && password == s.student.Password:
		s.role = RoleStudent
		s.userID = s.student.UserID
		s.userName = s.student.Username
	default:
		return RoleNone, ErrBadCredentials
	}
	return s.role, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = RoleNone
	s.userID = 0
	s.userName = ""
}

func (s *Session) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) Active() bool {
	return s.Role() != RoleNone
}

func (s *Session) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// Only a teacher may create or delete tasks.
func (s *Session) CanCreateTasks() bool { return s.Role() == RoleTeacher }
func (s *Session) CanDeleteTasks() bool { return s.Role() == RoleTeacher }
