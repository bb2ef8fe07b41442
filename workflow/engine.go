package workflow

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Engine is the job/task workflow and scheduling core. It is a synchronous
// library: every operation validates, mutates through the stores, and returns
// the domain events the mutation produced. Mutations on a single job are
// linearized through a per-job mutex; ledger withdrawals are linearized
// through a single ledger mutex. Cross-process exclusivity is the store
// implementation's concern (row-locked transactions in the gorm repository).
type Engine struct {
	jobs      JobStore
	materials MaterialStore
	users     UserStore

	now func() time.Time

	mu     sync.Mutex
	jobMus map[string]*sync.Mutex
	ledger sync.Mutex
}

type Option func(*Engine)

// WithClock overrides the engine's time source. Tests use this to make
// timestamps deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(jobs JobStore, materials MaterialStore, users UserStore, opts ...Option) *Engine {
	e := &Engine{
		jobs:      jobs,
		materials: materials,
		users:     users,
		now:       time.Now,
		jobMus:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lockJob serializes mutations per job id. The returned func releases the
// lock.
func (e *Engine) lockJob(id string) func() {
	e.mu.Lock()
	mu, ok := e.jobMus[id]
	if !ok {
		mu = &sync.Mutex{}
		e.jobMus[id] = mu
	}
	e.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// forgetJob drops a deleted job's mutex so jobMus tracks only live jobs. A
// goroutine still parked on the old mutex proceeds into a not-found error.
func (e *Engine) forgetJob(id string) {
	e.mu.Lock()
	delete(e.jobMus, id)
	e.mu.Unlock()
}

// newJobID generates an opaque job id: UTC time prefix plus a random hex
// suffix. Collision probability is treated as negligible; there is no retry
// loop.
func (e *Engine) newJobID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return e.now().UTC().Format("20060102T150405") + "-" + hex.EncodeToString(buf)
}
