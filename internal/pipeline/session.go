package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/deckreport/internal/slides"
)

// SessionStatus represents the state of a deck session.
type SessionStatus string

const (
	StatusExtracting SessionStatus = "extracting"
	StatusExtracted  SessionStatus = "extracted"
	StatusGenerating SessionStatus = "generating"
	StatusReady      SessionStatus = "ready"
	StatusFailed     SessionStatus = "failed"
)

// Session holds one uploaded deck, its slide store and its work directory.
type Session struct {
	mu  sync.Mutex
	gen sync.Mutex // serializes Generate

	ID       string
	DeckName string
	Dir      string

	status      SessionStatus
	phase       string
	lastError   string
	contentHash string
	generations int
	hasReport   bool
	createdAt   time.Time
	updatedAt   time.Time

	store      *slides.Store
	outputName string
}

// SessionSnapshot is a JSON-safe copy of a session's state.
type SessionSnapshot struct {
	ID          string        `json:"session_id"`
	DeckName    string        `json:"deck_name"`
	Status      SessionStatus `json:"status"`
	Phase       string        `json:"phase"`
	Error       string        `json:"error,omitempty"`
	Slides      int           `json:"slides"`
	ContentHash string        `json:"content_hash,omitempty"`
	Generations int           `json:"generations"`
	HasReport   bool          `json:"has_report"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// newSession creates a session with a fresh work directory under root.
func newSession(root, deckName, outputName string) (*Session, error) {
	id := uuid.NewString()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(filepath.Join(dir, imagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	now := time.Now()
	return &Session{
		ID:         id,
		DeckName:   deckName,
		Dir:        dir,
		status:     StatusExtracting,
		phase:      "extracting",
		createdAt:  now,
		updatedAt:  now,
		outputName: outputName,
	}, nil
}

const imagesDir = "images"

// ImageDir is where the session's page images live.
func (s *Session) ImageDir() string { return filepath.Join(s.Dir, imagesDir) }

// ReportPath is where the last generated report is kept.
func (s *Session) ReportPath() string { return filepath.Join(s.Dir, s.outputName) }

// Store returns the slide store, nil until extraction finished.
func (s *Session) Store() *slides.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

func (s *Session) setStore(store *slides.Store, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
	s.contentHash = hash
	s.updatedAt = time.Now()
}

// SetStatus updates the session status atomically.
func (s *Session) SetStatus(status SessionStatus, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.phase = phase
	if status != StatusFailed {
		s.lastError = ""
	}
	s.updatedAt = time.Now()
}

// Fail marks the session failed during phase and records err.
func (s *Session) Fail(phase string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.phase = phase
	s.lastError = err.Error()
	s.updatedAt = time.Now()
}

func (s *Session) reportWritten() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations++
	s.hasReport = true
	s.status = StatusReady
	s.phase = "ready"
	s.lastError = ""
	s.updatedAt = time.Now()
}

// Status returns the current status.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// HasReport reports whether a generation has completed.
func (s *Session) HasReport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasReport
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{
		ID:          s.ID,
		DeckName:    s.DeckName,
		Status:      s.status,
		Phase:       s.phase,
		Error:       s.lastError,
		ContentHash: s.contentHash,
		Generations: s.generations,
		HasReport:   s.hasReport,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
	if s.store != nil {
		snap.Slides = s.store.Len()
	}
	return snap
}

// ContentHashHex returns the hex SHA-256 of everything read from r.
func ContentHashHex(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ContentHashHex(f)
}
