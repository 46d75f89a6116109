package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNoSession is returned by a Store that holds nothing.
	ErrNoSession = errors.New("client: no stored session")
	// ErrSessionLoading is returned by Require before Load has finished.
	ErrSessionLoading = errors.New("client: session is still loading")
	// ErrNotLoggedIn is returned by Require when there is no session.
	ErrNotLoggedIn = errors.New("client: not logged in")
)

// SessionData is what survives between runs.
type SessionData struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Store persists a single session.
type Store interface {
	Load() (*SessionData, error)
	Save(*SessionData) error
	Clear() error
}

// FileStore keeps the session as a JSON file readable only by its owner.
type FileStore struct {
	Path string
}

// DefaultSessionPath is eventhub/session.json under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "eventhub", "session.json"), nil
}

func (s FileStore) Load() (*SessionData, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.Path, err)
	}
	if data.Token == "" || data.User.ID == "" {
		return nil, fmt.Errorf("parse session %s: missing user or token", s.Path)
	}
	return &data, nil
}

func (s FileStore) Save(data *SessionData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

func (s FileStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Status is the state of a Session.
type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "loading"
}

// Session is the current user and token. It reads its Store once; an
// unreadable stored session is discarded and treated as logged out.
type Session struct {
	store Store
	log   *zap.Logger

	once   sync.Once
	mu     sync.RWMutex
	loaded bool
	data   *SessionData
}

// NewSession returns an unloaded session backed by store.
func NewSession(store Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: store, log: log}
}

// Load reads the stored session. Only the first call does any work.
func (s *Session) Load() {
	s.once.Do(func() {
		data, err := s.store.Load()
		switch {
		case err == nil:
		case errors.Is(err, ErrNoSession):
			data = nil
		default:
			s.log.Warn("discarding unreadable session", zap.Error(err))
			if err := s.store.Clear(); err != nil {
				s.log.Warn("clear session failed", zap.Error(err))
			}
			data = nil
		}

		s.mu.Lock()
		s.data, s.loaded = data, true
		s.mu.Unlock()
	})
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.loaded:
		return StatusLoading
	case s.data == nil:
		return StatusAnonymous
	}
	return StatusAuthenticated
}

// Require returns the session for views that need a logged-in user.
func (s *Session) Require() (*SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case !s.loaded:
		return nil, ErrSessionLoading
	case s.data == nil:
		return nil, ErrNotLoggedIn
	}
	data := *s.data
	return &data, nil
}

// Token is the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return ""
	}
	return s.data.Token
}

// Login replaces the session and persists it.
func (s *Session) Login(user User, token string) error {
	data := &SessionData{User: user, Token: token}
	s.once.Do(func() {})

	s.mu.Lock()
	s.data, s.loaded = data, true
	s.mu.Unlock()

	return s.store.Save(data)
}

// Logout forgets the session in memory and on disk.
func (s *Session) Logout() error {
	s.once.Do(func() {})

	s.mu.Lock()
	s.data, s.loaded = nil, true
	s.mu.Unlock()

	return s.store.Clear()
}
