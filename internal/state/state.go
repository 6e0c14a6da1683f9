package state

import (
	"sync"
	"time"

	"github.com/rook-computer/flowerfield/internal/field"
)

type Phase int

const (
	BOOTING Phase = iota
	IDLE
	RENDERING
	ERROR
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case IDLE:
		return "idle"
	case RENDERING:
		return "rendering"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// FrameInfo describes the most recently completed pass.
type FrameInfo struct {
	ID         string
	Seed       uint64
	Flowers    int
	Trigger    string
	RenderedAt time.Time
	Duration   time.Duration
	Width      int
	Height     int
}

type State struct {
	Phase    Phase
	Config   field.Config
	Revision uint64
	Frame    FrameInfo
	Err      string
}

// Store holds the current configuration snapshot and the last completed
// frame. Configuration is replaced, never edited in place.
type Store struct {
	mu    sync.RWMutex
	state State
	png   []byte
}

func NewStore(cfg field.Config) *Store {
	return &Store{state: State{Phase: BOOTING, Config: cfg.Clone()}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	out := store.state
	out.Config = out.Config.Clone()
	return out
}

func (store *Store) Config() (field.Config, uint64) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state.Config.Clone(), store.state.Revision
}

// UpdateConfig applies controls to the current snapshot and swaps in the
// result. On error the stored snapshot is left untouched.
func (store *Store) UpdateConfig(ctl field.Controls) (field.Config, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	next, err := store.state.Config.Apply(ctl)
	if err != nil {
		return store.state.Config.Clone(), err
	}
	store.state.Config = next
	store.state.Revision++
	return next.Clone(), nil
}

// ReplaceConfig swaps in cfg after validating it.
func (store *Store) ReplaceConfig(cfg field.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	store.mu.Lock()
	store.state.Config = cfg.Clone()
	store.state.Revision++
	store.mu.Unlock()
	return nil
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

// PublishFrame records a completed pass together with its PNG encoding.
func (store *Store) PublishFrame(info FrameInfo, png []byte) {
	store.mu.Lock()
	store.state.Frame = info
	store.state.Phase = IDLE
	store.state.Err = ""
	store.png = png
	store.mu.Unlock()
}

func (store *Store) SetError(err error) {
	store.mu.Lock()
	store.state.Phase = ERROR
	if err != nil {
		store.state.Err = err.Error()
	}
	store.mu.Unlock()
}

// FramePNG returns the last published frame. The slice must not be modified.
func (store *Store) FramePNG() ([]byte, FrameInfo, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.png, store.state.Frame, store.png != nil
}
