// Package session keeps live chart animations for interactive clients.
//
// A [Session] owns a parsed chart and its [chart.Animator]. Clients drive it
// with their own clock: every call takes an offset from the session's
// creation, so a browser can pass its animation timestamp and get back the
// scene at that instant.
//
// # Stores
//
// Sessions live in a [Store]:
//   - [MemoryStore]: in-process, for a single server instance
//   - [FileStore]: a memory store that also writes snapshots to disk and
//     restores them after a restart
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess, err := session.New(doc, "toml", session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess.Show(1, 0)
//	scene := sess.Advance(150 * time.Millisecond)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/chartmotion/pkg/chart"
	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/geom"
	"github.com/matzehuels/chartmotion/pkg/render"
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often [Run] evicts expired
	// sessions.
	DefaultCleanupInterval = time.Minute
)

// Session is one client's animated chart. All methods are safe for
// concurrent use; calls are serialized on the session.
type Session struct {
	ID        string
	Chart     *chart.Chart
	CreatedAt time.Time

	mu        sync.Mutex
	doc       []byte
	format    string
	animator  *chart.Animator
	clock     time.Duration
	ttl       time.Duration
	expiresAt time.Time
}

// New parses doc and starts a session showing nothing. Call Show to bring
// in the first frame.
func New(doc []byte, format string, ttl time.Duration) (*Session, error) {
	c, err := chart.Parse(doc, format)
	if err != nil {
		return nil, err
	}
	a, err := chart.NewAnimator(c, nil)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Chart:     c,
		CreatedAt: now,
		doc:       doc,
		format:    format,
		animator:  a,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
	}, nil
}

// at converts a client offset to the animator's clock. Offsets before the
// last one seen are treated as the last one so time never runs backwards.
func (s *Session) at(offset time.Duration) time.Time {
	if offset > s.clock {
		s.clock = offset
	}
	return s.CreatedAt.Add(s.clock)
}

// Show starts the transition to frame at the given offset.
func (s *Session) Show(frame int, offset time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.animator.Show(frame, s.at(offset))
}

// Advance returns the scene at the given offset.
func (s *Session) Advance(offset time.Duration) render.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.animator.Sample(s.at(offset))
}

// Settled reports whether every transition has finished at the last offset
// seen.
func (s *Session) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animator.Settled(s.CreatedAt.Add(s.clock))
}

// Nearest finds the datum closest to a canvas position in the frame being
// shown.
func (s *Session) Nearest(canvas geom.Point) (chart.Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.animator.Nearest(s.Chart.PlotPoint(canvas))
}

// Frame is the frame being shown or animated toward, or -1.
func (s *Session) Frame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animator.Frame()
}

// Clock is the latest offset the session has been driven to.
func (s *Session) Clock() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// ExpiresAt is when the session expires unless it is used again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// IsExpired reports whether the session expired before now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt())
}

func (s *Session) touch() { s.expiresAt = time.Now().Add(s.ttl) }

// Store is the interface for session storage backends.
type Store interface {
	// Get returns the session, SESSION_NOT_FOUND when there is none and
	// SESSION_EXPIRED when it timed out.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many it removed.
	Cleanup(ctx context.Context) (int, error)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}

func expired(id string) error {
	return errors.New(errors.ErrCodeSessionExpired, "session %q expired", id)
}
