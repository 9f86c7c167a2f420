package battle

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/decred/slog"
)

// Registry holds the live sessions of the process by code. Sessions are
// created by hosts and removed by Sweep once completed for longer than the
// completed grace period, or left empty in Waiting longer than the idle one.
type Registry struct {
	deps           Deps
	completedGrace time.Duration
	idleGrace      time.Duration
	log            slog.Logger
	now            func() time.Time
	entropy        io.Reader

	mu       sync.RWMutex
	sessions map[string]*Session
}

type RegistryConfig struct {
	CompletedGrace time.Duration
	IdleGrace      time.Duration
	Log            slog.Logger // defaults to Deps.Log
}

func NewRegistry(deps Deps, cfg RegistryConfig) *Registry {
	if cfg.CompletedGrace <= 0 {
		cfg.CompletedGrace = 10 * time.Minute
	}
	if cfg.IdleGrace <= 0 {
		cfg.IdleGrace = 30 * time.Minute
	}
	deps = deps.withDefaults()
	if cfg.Log == nil {
		cfg.Log = deps.Log
	}
	return &Registry{
		deps:           deps,
		completedGrace: cfg.CompletedGrace,
		idleGrace:      cfg.IdleGrace,
		log:            cfg.Log,
		now:            time.Now,
		entropy:        rand.Reader,
		sessions:       make(map[string]*Session),
	}
}

// Create validates settings, reserves a fresh code and registers the session.
func (r *Registry) Create(ctx context.Context, hostID uint, settings Settings) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if r.deps.Catalog == nil {
		return nil, ErrCatalog
	}

	r.mu.Lock()
	code, err := r.uniqueCodeLocked()
	if err != nil {
		r.mu.Unlock()
		r.log.Errorf("session code: %v", err)
		return nil, fmt.Errorf("session code: %w", err)
	}
	s := newSession(code, hostID, settings, r.deps)
	s.CreatedAt = r.now()
	r.sessions[code] = s
	r.mu.Unlock()

	if b, ok := r.deps.Catalog.(CatalogBinder); ok {
		if err := b.Bind(ctx, code, settings); err != nil {
			r.mu.Lock()
			delete(r.sessions, code)
			r.mu.Unlock()
			s.cancel()
			return nil, err
		}
	}

	r.deps.Audit.RecordSession(s.record())
	r.log.Infof("session %s created by host %d: %q, %d questions, %d%% elimination",
		code, hostID, settings.Title, settings.TotalQuestions, settings.EliminationRatePercent)
	return s, nil
}

func (r *Registry) Get(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns session summaries, newest first. hostID 0 lists every host.
func (r *Registry) List(hostID uint) []Summary {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if hostID == 0 || s.HostID == hostID {
			sessions = append(sessions, s)
		}
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Remove aborts the session if needed and forgets it.
func (r *Registry) Remove(code string) bool {
	r.mu.Lock()
	s, ok := r.sessions[code]
	delete(r.sessions, code)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.Abort(EndAborted)
	r.release(code)
	return true
}

// Sweep evicts expired sessions and reports how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.RLock()
	var expired []*Session
	for _, s := range r.sessions {
		if r.expired(s, now) {
			expired = append(expired, s)
		}
	}
	r.mu.RUnlock()

	n := 0
	for _, s := range expired {
		// a join may have landed since the expiry check
		if s.State() != StateCompleted && !s.abortIfIdle() {
			continue
		}
		r.mu.Lock()
		delete(r.sessions, s.Code)
		r.mu.Unlock()
		r.release(s.Code)
		r.log.Debugf("session %s evicted", s.Code)
		n++
	}
	return n
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	if at, done := s.completedSince(); done {
		return now.Sub(at) >= r.completedGrace
	}
	return s.State() == StateWaiting &&
		s.registry.Count() == 0 &&
		now.Sub(s.CreatedAt) >= r.idleGrace
}

// Run sweeps every interval until ctx is done, then aborts what is left.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Shutdown()
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Infof("swept %d sessions, %d live", n, r.Len())
			}
		}
	}
}

// Shutdown aborts every live session.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.Abort(EndAborted)
	}
}

func (r *Registry) release(code string) {
	if b, ok := r.deps.Catalog.(CatalogBinder); ok {
		b.Release(code)
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (r *Registry) uniqueCodeLocked() (string, error) {
	for {
		code, err := generateCode(r.entropy, 6)
		if err != nil {
			return "", err
		}
		if _, exists := r.sessions[code]; !exists {
			return code, nil
		}
	}
}

func generateCode(entropy io.Reader, n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, err := rand.Int(entropy, max)
		if err != nil {
			return "", err
		}
		b[i] = codeChars[idx.Int64()]
	}
	return string(b), nil
}
