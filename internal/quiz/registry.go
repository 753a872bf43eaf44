package quiz

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrNotOwner        = errors.New("attempt belongs to another user")
)

// Meta identifies a live attempt.
type Meta struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	TestID    string    `json:"test_id"`
	CourseID  string    `json:"course_id"`
	StartedAt time.Time `json:"started_at"`
}

// FinishFunc is called exactly once per attempt, when it finishes.
type FinishFunc func(m Meta, answers Answers, rep Report)

type live struct {
	Meta
	mu       sync.Mutex
	s        *Session
	cancel   context.CancelFunc
	reported bool
}

// Registry keeps the in-memory sessions of attempts in progress and drives
// their timers. Attempts are dropped when the student leaves; nothing here is
// persisted.
type Registry struct {
	// Ticker may be replaced before the first Start, mostly in tests.
	Ticker TickerFunc

	mu       sync.RWMutex
	live     map[string]*live
	newID    func() string
	onFinish FinishFunc
}

func NewRegistry(newID func() string, onFinish FinishFunc) *Registry {
	return &Registry{
		Ticker:   SystemTicker,
		live:     map[string]*live{},
		newID:    newID,
		onFinish: onFinish,
	}
}

// Start opens a session for t. m.ID and m.StartedAt are filled in.
func (r *Registry) Start(t Test, m Meta) (Meta, View) {
	m.ID = r.newID()
	m.StartedAt = time.Now().UTC()
	ctx, cancel := context.WithCancel(context.Background())
	l := &live{Meta: m, s: NewSession(t), cancel: cancel}

	r.mu.Lock()
	r.live[m.ID] = l
	r.mu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, timed := l.s.RemainingSeconds(); timed {
		tick, stop := r.Ticker(time.Second)
		go func() {
			defer stop()
			RunTimer(ctx, tick, func() bool {
				l.mu.Lock()
				defer l.mu.Unlock()
				l.s.Tick()
				r.settle(l)
				return l.s.Finished()
			})
		}()
	}
	return l.Meta, l.s.Snapshot()
}

// Do runs fn against the attempt's session under its lock and returns the
// resulting view. An empty owner skips the ownership check. fn may be nil.
func (r *Registry) Do(id, owner string, fn func(*Session)) (Meta, View, error) {
	l, err := r.lookup(id, owner)
	if err != nil {
		return Meta{}, View{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn != nil {
		fn(l.s)
	}
	r.settle(l)
	return l.Meta, l.s.Snapshot(), nil
}

// Drop abandons an attempt and stops its timer.
func (r *Registry) Drop(id, owner string) error {
	l, err := r.lookup(id, owner)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
	l.cancel()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

func (r *Registry) lookup(id, owner string) (*live, error) {
	r.mu.RLock()
	l, ok := r.live[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if owner != "" && l.Owner != owner {
		return nil, ErrNotOwner
	}
	return l, nil
}

// settle stops the timer and reports the result once the session has
// finished. l.mu must be held.
func (r *Registry) settle(l *live) {
	if !l.s.Finished() || l.reported {
		return
	}
	l.reported = true
	l.cancel()
	if r.onFinish != nil {
		rep, _ := l.s.Score()
		r.onFinish(l.Meta, l.s.Answers(), rep)
	}
}
