// Package session keeps expression trees alive between requests so a
// client can build a tree once and then step or graft it repeatedly.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	algebra "github.com/njchilds90/goalgebra"
)

var ErrNotFound = errors.New("session not found")

type session struct {
	mu      sync.Mutex
	tree    *algebra.Tree
	steps   int
	status  algebra.Status
	created time.Time
}

// Snapshot is the externally visible state of one session.
type Snapshot struct {
	ID      uuid.UUID       `json:"id"`
	Expr    json.RawMessage `json:"expr"`
	TeX     string          `json:"latex"`
	Steps   int             `json:"steps"`
	Status  string          `json:"status"`
	Created time.Time       `json:"created"`
}

// Store is a bounded set of live trees keyed by tree ID. The least recently
// used tree is disposed when the store is full.
type Store struct {
	cache  *lru.Cache[uuid.UUID, *session]
	simp   *algebra.Simplifier
	logger *slog.Logger
}

func NewStore(size int, simp *algebra.Simplifier, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("source", "session_store")
	cache, err := lru.NewWithEvict(size, func(id uuid.UUID, s *session) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.tree.Dispose()
		sessionsLive.Dec()
		sessionsEvicted.Inc()
		logger.Debug("session dropped", "id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	if simp == nil {
		simp = algebra.NewSimplifier(algebra.WithLogger(logger))
	}
	return &Store{cache: cache, simp: simp, logger: logger}, nil
}

// Create takes ownership of t and returns its snapshot.
func (st *Store) Create(t *algebra.Tree) (Snapshot, error) {
	s := &session{tree: t, status: algebra.Rewritten, created: time.Now().UTC()}
	st.cache.Add(t.ID(), s)
	sessionsLive.Inc()
	st.logger.Info("session created", "id", t.ID(), "expr", t.String())
	return st.snapshot(s)
}

func (st *Store) Len() int { return st.cache.Len() }

// with runs fn on the locked session for id.
func (st *Store) with(id uuid.UUID, fn func(s *session) error) (Snapshot, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree.Disposed() {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if fn != nil {
		if err := fn(s); err != nil {
			return Snapshot{}, err
		}
	}
	return st.snapshot(s)
}

func (st *Store) Get(id uuid.UUID) (Snapshot, error) {
	return st.with(id, nil)
}

// Step advances the session's tree by one simplifier step.
func (st *Store) Step(id uuid.UUID) (Snapshot, error) {
	return st.with(id, func(s *session) error {
		s.status = st.simp.Step(s.tree)
		s.steps++
		return nil
	})
}

// Run drives the session's tree to its fixpoint.
func (st *Store) Run(id uuid.UUID) (Snapshot, error) {
	return st.with(id, func(s *session) error {
		res, err := st.simp.Run(s.tree)
		s.steps += res.Passes
		s.status = res.Status
		if err != nil && !errors.Is(err, algebra.ErrStepLimit) && !errors.Is(err, algebra.ErrNoFixpoint) {
			return err
		}
		return nil
	})
}

// Graft combines sub into the session's tree. sub remains owned by the
// caller and should be disposed afterwards.
func (st *Store) Graft(id uuid.UUID, sub *algebra.Tree) (Snapshot, error) {
	return st.with(id, func(s *session) error {
		s.tree.Graft(sub)
		s.status = algebra.Rewritten
		return nil
	})
}

// Delete disposes the session's tree. It reports whether the session existed.
func (st *Store) Delete(id uuid.UUID) bool {
	return st.cache.Remove(id)
}

func (st *Store) snapshot(s *session) (Snapshot, error) {
	expr := json.RawMessage("null")
	if root := s.tree.Root(); !root.IsAbsent() {
		raw, err := s.tree.ToJSON(root)
		if err != nil {
			return Snapshot{}, fmt.Errorf("encoding session %s: %w", s.tree.ID(), err)
		}
		expr = json.RawMessage(raw)
	}
	return Snapshot{
		ID:      s.tree.ID(),
		Expr:    expr,
		TeX:     s.tree.String(),
		Steps:   s.steps,
		Status:  s.status.String(),
		Created: s.created,
	}, nil
}
