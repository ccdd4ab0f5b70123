package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/chartmotion/pkg/errors"
)

// snapshot is the on-disk form of a session. The animator is not stored;
// a restored session shows its frame settled at its last clock.
type snapshot struct {
	ID        string        `json:"id"`
	Document  string        `json:"document"`
	Format    string        `json:"format,omitempty"`
	Frame     int           `json:"frame"`
	Clock     time.Duration `json:"clock_ns"`
	TTL       time.Duration `json:"ttl_ns"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (s *Session) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		ID:        s.ID,
		Document:  string(s.doc),
		Format:    s.format,
		Frame:     s.animator.Frame(),
		Clock:     s.clock,
		TTL:       s.ttl,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.expiresAt,
	}
}

func restore(snap snapshot) (*Session, error) {
	s, err := New([]byte(snap.Document), snap.Format, snap.TTL)
	if err != nil {
		return nil, err
	}
	s.ID = snap.ID
	s.CreatedAt = snap.CreatedAt
	s.clock = snap.Clock
	s.expiresAt = snap.ExpiresAt
	if snap.Frame >= 0 {
		// start the transition one duration early so it is settled at the clock
		start := s.CreatedAt.Add(s.clock - s.Chart.Duration())
		if err := s.animator.Show(snap.Frame, start); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FileStore is a [MemoryStore] that also writes each session to a JSON file,
// so sessions survive a restart. Call Set again after Show to persist the new
// frame.
type FileStore struct {
	mem     *MemoryStore
	mu      sync.Mutex
	baseDir string
	logger  *log.Logger
}

// NewFileStore creates a file-backed store.
// If baseDir is empty, defaults to the user config dir under
// chartmotion/sessions.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "chartmotion", "sessions")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{mem: NewMemoryStore(), baseDir: baseDir, logger: log.Default()}, nil
}

// SetLogger sets the logger for file errors that do not fail a call.
func (f *FileStore) SetLogger(l *log.Logger) {
	if l != nil {
		f.logger = l
	}
}

// discard removes the file of an expired session. The session is already
// gone for callers, so a failure is only logged.
func (f *FileStore) discard(id string) {
	if err := f.remove(id); err != nil {
		f.logger.Warn("expired session file not removed", "id", id, "error", err)
	}
}

// sessionPath rejects ids that are not UUIDs so they cannot name other files.
func (f *FileStore) sessionPath(id string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return filepath.Join(f.baseDir, id+".json"), true
}

func (f *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	s, err := f.mem.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, errors.ErrCodeSessionExpired) {
		f.discard(id)
		return nil, err
	}

	path, ok := f.sessionPath(id)
	if !ok {
		return nil, notFound(id)
	}
	f.mu.Lock()
	data, err := os.ReadFile(path)
	f.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if f.mem.now().After(snap.ExpiresAt) {
		f.discard(id)
		return nil, expired(id)
	}
	s, err = restore(snap)
	if err != nil {
		return nil, err
	}
	if err := f.mem.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *FileStore) Set(ctx context.Context, s *Session) error {
	path, ok := f.sessionPath(s.ID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid session id %q", s.ID)
	}
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	f.mu.Lock()
	err = os.WriteFile(path, data, 0600)
	f.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return f.mem.Set(ctx, s)
}

func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := f.mem.Delete(ctx, id); err != nil {
		return err
	}
	return f.remove(id)
}

func (f *FileStore) remove(id string) error {
	path, ok := f.sessionPath(id)
	if !ok {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Cleanup(ctx context.Context) (int, error) {
	if _, err := f.mem.Cleanup(ctx); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := os.ReadDir(f.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}

	now := f.mem.now()
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(f.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		if now.After(snap.ExpiresAt) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				f.logger.Warn("expired session file not removed", "path", path, "error", err)
				continue
			}
			n++
		}
	}
	return n, nil
}

// Path returns the base directory for session files.
func (f *FileStore) Path() string {
	return f.baseDir
}

var _ Store = (*FileStore)(nil)
