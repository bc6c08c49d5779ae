package game

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/michalgawin/checkers/internal/board"
	"github.com/michalgawin/checkers/internal/storage"
)

// ErrGameNotFound is returned for an unknown game id.
var ErrGameNotFound = errors.New("game not found")

// Manager keeps the running games. Games share the manager's engine and
// recorder.
type Manager struct {
	mu       sync.RWMutex
	games    map[string]*entry
	ai       Mover
	recorder ResultRecorder
}

type entry struct {
	ctrl      *Controller
	createdAt time.Time
}

// NewManager creates a manager. recorder may be nil.
func NewManager(ai Mover, recorder ResultRecorder) *Manager {
	return &Manager{
		games:    make(map[string]*entry),
		ai:       ai,
		recorder: recorder,
	}
}

// NewGame starts a game from pos (nil = standard start).
func (m *Manager) NewGame(pos *board.Position, players [2]PlayerKind, difficulty storage.Difficulty) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	c := NewController(Options{
		ID:         id,
		Position:   pos,
		Players:    players,
		AI:         m.ai,
		Recorder:   m.recorder,
		Difficulty: difficulty,
	})
	m.games[id] = &entry{ctrl: c, createdAt: time.Now()}
	return c
}

// Get returns the game with the given id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return e.ctrl, nil
}

// Remove drops a game. An unfinished game is recorded as abandoned.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	e, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()

	if !ok {
		return ErrGameNotFound
	}
	if err := e.ctrl.Abandon(); err != nil && !errors.Is(err, ErrGameOver) {
		return err
	}
	return nil
}

// IDs lists the game ids, oldest first.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.games[ids[i]].createdAt, m.games[ids[j]].createdAt
		if a.Equal(b) {
			return ids[i] < ids[j]
		}
		return a.Before(b)
	})
	return ids
}

// Len returns the number of games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
