package services

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"salescope/internal/analysis"
	"salescope/internal/infrastructure"
)

// Session is one uploaded spreadsheet held on disk, addressed by a
// server-generated id. Sessions expire after a period of inactivity.
type Session struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	Path       string    `json:"-"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`

	lastAccess time.Time
}

// StoredAnalysis is a finished analysis result kept in memory so later
// requests (pareto reselection, export) can reuse it without re-reading
// the source file.
type StoredAnalysis struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Result    *analysis.Result `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

// SessionStore is an in-memory registry of upload sessions and their
// analysis results. All methods are safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	analyses map[string]*StoredAnalysis

	ttl     time.Duration
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewSessionStore creates a store whose sessions expire ttl after their
// last access. metrics may be nil.
func NewSessionStore(ttl time.Duration, logger *slog.Logger, metrics *infrastructure.Metrics) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		analyses: make(map[string]*StoredAnalysis),
		ttl:      ttl,
		logger:   logger,
		metrics:  metrics,
	}
}

// PutSession registers a new upload session.
func (s *SessionStore) PutSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.lastAccess = time.Now()
	s.sessions[session.ID] = session
	s.updateGaugeLocked()
}

// GetSession returns the session with the given id and refreshes its
// expiry clock. Returns false when the id is unknown or expired.
func (s *SessionStore) GetSession(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	session.lastAccess = time.Now()
	return session, true
}

// PutAnalysis stores a finished analysis under its session.
func (s *SessionStore) PutAnalysis(stored *StoredAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses[stored.ID] = stored
	if session, ok := s.sessions[stored.SessionID]; ok {
		session.lastAccess = time.Now()
	}
}

// GetAnalysis returns a stored analysis and refreshes its parent
// session so an actively used result does not expire underneath the
// caller.
func (s *SessionStore) GetAnalysis(id string) (*StoredAnalysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.analyses[id]
	if !ok {
		return nil, false
	}
	if session, sok := s.sessions[stored.SessionID]; sok {
		session.lastAccess = time.Now()
	}
	return stored, true
}

// DeleteSession removes a session, its analyses, and its file on disk.
func (s *SessionStore) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeSessionLocked(id)
	s.updateGaugeLocked()
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle longer than the TTL, along with their
// analyses and files. Returns the number of sessions removed.
func (s *SessionStore) Sweep(ctx context.Context, now time.Time) int {
	ctx = infrastructure.EnsureTraceID(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.lastAccess) > s.ttl {
			s.removeSessionLocked(id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired sessions swept",
			slog.Int("removed", removed),
			slog.Int("remaining", len(s.sessions)))
	}
	s.updateGaugeLocked()
	return removed
}

// Start runs the background sweep loop until ctx is cancelled. Each
// tick sweeps under its own trace ID so its records stay separable in
// the log stream.
func (s *SessionStore) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(infrastructure.ContextWithTraceID(ctx), now)
		}
	}
}

func (s *SessionStore) removeSessionLocked(id string) {
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)

	for aid, stored := range s.analyses {
		if stored.SessionID == id {
			delete(s.analyses, aid)
		}
	}

	if session.Path != "" {
		if err := os.Remove(session.Path); err != nil && !os.IsNotExist(err) {
			infrastructure.WithError(s.logger, err).Warn("failed to remove session file",
				slog.String("session_id", id),
				slog.String("path", session.Path))
		}
	}
}

func (s *SessionStore) updateGaugeLocked() {
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
}
