// Package session holds the current sign-in state and persists it to a
// single-slot file under the user config dir.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/token"
)

// DefaultDir resolves the config directory, honoring XDG_CONFIG_HOME.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "jeanogram")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "jeanogram")
}

// Store is the single-writer session holder. Exactly one persisted record
// exists at a time; no history, no multi-session support. Readers take a
// point-in-time snapshot per call, so a logout racing an in-flight
// authenticated request may let that request finish with a stale credential.
// The server remains the authority on credential validity.
type Store struct {
	mu   sync.RWMutex
	cur  model.Session
	path string
	log  *zap.Logger

	watchMu  sync.Mutex
	nextID   int
	watchers map[int]func()
}

// New creates a Store persisting to dir/session.json.
func New(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: filepath.Join(dir, "session.json"), log: log}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// OnChange registers fn to run after every Persist or Clear, and returns an
// unregister func. Containers use this to refresh on credential change.
func (s *Store) OnChange(fn func()) (cancel func()) {
	s.watchMu.Lock()
	if s.watchers == nil {
		s.watchers = map[int]func(){}
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()
	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

func (s *Store) notify() {
	s.watchMu.Lock()
	fns := make([]func(), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Current returns a snapshot of the session.
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Credential returns the bearer credential, or "" when signed out.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Credential
}

// User returns the decoded user, or nil when signed out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.User
}

// Rehydrate reads the persisted record once at startup. A missing file leaves
// the session empty; an unreadable or undecodable record is removed and the
// session left empty. It never fails outward.
func (s *Store) Rehydrate() {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var sess model.Session
	if err := json.Unmarshal(b, &sess); err != nil || sess.Credential == "" {
		s.log.Warn("discarding unreadable session record", zap.String("path", s.path))
		_ = os.Remove(s.path)
		return
	}
	if sess.User == nil {
		// Older records stored only the credential; rebuild the user from claims.
		claims, err := token.Decode(sess.Credential)
		if err != nil {
			s.log.Warn("discarding session with undecodable credential", zap.Error(err))
			_ = os.Remove(s.path)
			return
		}
		sess.User = token.UserFrom(claims)
	}
	s.mu.Lock()
	s.cur = sess
	s.mu.Unlock()
}

// Persist replaces the session in memory and on disk. Passing an empty
// credential and nil user clears both. The file write is atomic: a temp file
// is renamed over the slot so no partial record is ever observable.
func (s *Store) Persist(credential string, user *model.User) error {
	sess := model.Session{Credential: credential, User: user}
	if credential != "" {
		sess.ExpiresAt = token.ExpiresAt(credential)
	}

	s.mu.Lock()
	s.cur = sess
	s.mu.Unlock()
	s.notify()

	if credential == "" && user == nil {
		err := os.Remove(s.path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear empties the session and removes the persisted record.
func (s *Store) Clear() error { return s.Persist("", nil) }
