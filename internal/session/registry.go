// Package session implements the session registry (component C) and
// per-session execution context (component D): a thread-safe map from
// session id to *Session, guarded by a registry mutex, with each Session
// additionally guarded by its own mutex. Lock order is always registry then
// session, never the reverse.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/sandkasten-run/boxd/internal/store"
	"github.com/sandkasten-run/boxd/internal/workspace"
)

// forceKillWait bounds how long Destroy waits for a session's cancelAll to
// actually unwind stragglers after the grace period has already elapsed.
const forceKillWait = 500 * time.Millisecond

// Registry owns every live session and the workspace/bookkeeping stores
// behind it.
type Registry struct {
	workspace *workspace.Store
	store     *store.Store
	logger    *slog.Logger
	idleTTL   time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New constructs a Registry. idleTTL is the default idle-eviction window
// applied to sessions that don't specify their own.
func New(ws *workspace.Store, st *store.Store, idleTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		workspace: ws,
		store:     st,
		logger:    logger,
		idleTTL:   idleTTL,
		sessions:  make(map[string]*Session),
	}
}

// CreateOpts customizes a new session at creation time.
type CreateOpts struct {
	Env     map[string]string
	IdleTTL time.Duration
}

// Create materializes a fresh workspace, registers a new session, and
// returns it.
func (r *Registry) Create(ctx context.Context, opts CreateOpts) (*Session, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("%w: generating session id: %v", ErrInternal, err)
	}

	dir, err := r.workspace.Materialize(id)
	if err != nil {
		return nil, fmt.Errorf("%w: materializing workspace: %v", ErrInternal, err)
	}

	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = r.idleTTL
	}

	sess := newSession(id, dir, ttl)
	if len(opts.Env) > 0 {
		sess.setEnv(opts.Env)
	}

	now := time.Now()
	if r.store != nil {
		if err := r.store.CreateSession(&store.Session{
			ID:           id,
			Status:       "active",
			Cwd:          sess.cwd,
			CreatedAt:    now,
			ExpiresAt:    now.Add(ttl),
			LastActivity: now,
		}); err != nil {
			r.logger.Warn("session bookkeeping insert failed", "session_id", id, "error", err)
		}
	}

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	r.logger.Info("session created", "session_id", id)
	return sess, nil
}

// Get returns the session for id, or ErrSessionNotFound when id is unknown
// or the session is no longer Active (destroying or destroyed).
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	state := sess.state
	sess.mu.Unlock()
	if state != StateActive {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// CreateInfo is Create followed by an Info snapshot, for callers (the HTTP
// and gRPC front doors) that only need the session's externally-visible
// state, not the live mutex-guarded object.
func (r *Registry) CreateInfo(ctx context.Context, opts CreateOpts) (Info, error) {
	sess, err := r.Create(ctx, opts)
	if err != nil {
		return Info{}, err
	}
	return sess.Info(), nil
}

// GetInfo is Get followed by an Info snapshot.
func (r *Registry) GetInfo(id string) (Info, error) {
	sess, err := r.Get(id)
	if err != nil {
		return Info{}, err
	}
	return sess.Info(), nil
}

// List returns a snapshot of every live session's Info.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess.Info())
	}
	return out
}

// Destroy transitions a session Active -> Destroying -> Destroyed, waiting
// up to grace for in-flight commands to finish on their own. Anything still
// running past grace is force-killed via the session's registered cancel
// funcs (cancelAll), independent of ctx, before the session and its
// workspace are removed. Destroy is idempotent: destroying an
// already-destroying or already-gone session is not an error.
func (r *Registry) Destroy(ctx context.Context, id string, grace time.Duration) error {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	if !sess.markDestroying() {
		return nil
	}
	r.logger.Info("session destroying", "session_id", id)

	deadline := time.Now().Add(grace)
drain:
	for sess.activeCount() > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			break drain
		case <-time.After(25 * time.Millisecond):
		}
	}

	if sess.activeCount() > 0 {
		r.logger.Warn("grace period expired with active commands, forcing cancellation", "session_id", id)
		sess.cancelAll()
		killDeadline := time.Now().Add(forceKillWait)
		for sess.activeCount() > 0 && time.Now().Before(killDeadline) {
			time.Sleep(10 * time.Millisecond)
		}
	}

	sess.markDestroyed()

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	if err := r.workspace.Destroy(id); err != nil {
		r.logger.Error("workspace destroy failed", "session_id", id, "error", err)
	}
	if r.store != nil {
		if err := r.store.DeleteSession(id); err != nil {
			r.logger.Warn("session bookkeeping delete failed", "session_id", id, "error", err)
		}
	}

	r.logger.Info("session destroyed", "session_id", id)
	return nil
}

// Sweep evicts sessions that have been idle (zero active commands) beyond
// their idle TTL, then runs reconcile against the on-disk workspace
// directories.
func (r *Registry) Sweep(ctx context.Context, grace time.Duration) {
	r.mu.RLock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		candidates = append(candidates, sess)
	}
	r.mu.RUnlock()

	for _, sess := range candidates {
		if sess.isIdleExpired() {
			r.logger.Info("evicting idle session", "session_id", sess.ID)
			_ = r.Destroy(ctx, sess.ID, grace)
		}
	}

	r.reconcile()
}

// reconcile removes workspace directories that have no corresponding
// registry entry (orphans left behind by a prior crash) and deletes the
// bookkeeping row of each orphan it removes. Registry entries whose
// workspace directory is missing are left as they are.
func (r *Registry) reconcile() {
	entries, err := os.ReadDir(r.workspace.Root)
	if err != nil {
		return
	}

	r.mu.RLock()
	live := make(map[string]bool, len(r.sessions))
	for id := range r.sessions {
		live[id] = true
	}
	r.mu.RUnlock()

	for _, e := range entries {
		if !e.IsDir() || live[e.Name()] {
			continue
		}
		r.logger.Warn("reconcile: orphan workspace directory, removing", "session_id", e.Name())
		if err := r.workspace.Destroy(e.Name()); err != nil {
			r.logger.Error("reconcile: removing orphan workspace failed", "session_id", e.Name(), "error", err)
		}
		if r.store != nil {
			_ = r.store.DeleteSession(e.Name())
		}
	}
}
