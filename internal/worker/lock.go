package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/saga-engine/internal/services"
)

const (
	// defaultLockTTL outlives a planner call at its default timeout.
	defaultLockTTL   = 2 * time.Minute
	lockRetryDelay   = 100 * time.Millisecond
	lockReleaseLimit = 5 * time.Second
)

var (
	// ErrGameBusy is returned when another process holds the game lock for
	// longer than the processor is willing to wait.
	ErrGameBusy = errors.New("game is locked by another request")
	// ErrLockLost is returned when the game lock expired or was taken over
	// before the result could be saved. Nothing is written.
	ErrLockLost = errors.New("game lock lost before save")
)

// Locker is a lock shared by every process that writes games.
// *services.RedisService implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) error
	RefreshLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}

var _ Locker = (*services.RedisService)(nil)

type ProcessorOption func(*Processor)

// WithLocker makes every write take the shared game lock as well as the
// in-process one.
func WithLocker(l Locker) ProcessorOption {
	return func(p *Processor) { p.locker = l }
}

// WithLockTTL sets the shared lock TTL. The lease is refreshed every third
// of it while a request runs.
func WithLockTTL(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.lockTTL = d
		}
	}
}

// WithLockWait sets how long a request waits for a busy game before
// failing with ErrGameBusy. Zero means a single attempt.
func WithLockWait(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.lockWait = d }
}

func lockKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game-lock:%s", gameID.String())
}

// lease is a held game lock.
type lease struct {
	local *sync.Mutex
	lost  atomic.Bool
	stop  func()
}

// check returns ErrLockLost once a refresh found the lock gone.
func (l *lease) check() error {
	if l.lost.Load() {
		return ErrLockLost
	}
	return nil
}

func (l *lease) release() {
	if l.stop != nil {
		l.stop()
	}
	l.local.Unlock()
}

// acquire takes the in-process mutex for the game, then the shared lock
// when a Locker is configured. The shared lock is refreshed until release.
func (p *Processor) acquire(ctx context.Context, id uuid.UUID) (*lease, error) {
	p.locksMu.Lock()
	mu, ok := p.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		p.locks[id] = mu
	}
	p.locksMu.Unlock()

	mu.Lock()
	l := &lease{local: mu}
	if p.locker == nil {
		return l, nil
	}

	key, token := lockKey(id), uuid.NewString()
	if err := p.acquireShared(ctx, key, token); err != nil {
		mu.Unlock()
		return nil, err
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.refresh(ctx, l, key, token, done)
	}()
	l.stop = func() {
		close(done)
		wg.Wait()
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseLimit)
		defer cancel()
		if _, err := p.locker.ReleaseLock(rctx, key, token); err != nil {
			p.logger.Error("Failed to release game lock", "game_id", id.String(), "error", err)
		}
	}
	return l, nil
}

func (p *Processor) acquireShared(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(p.lockWait)
	for {
		err := p.locker.AcquireLock(ctx, key, token, p.lockTTL)
		if err == nil {
			return nil
		}
		if !errors.Is(err, services.ErrLockHeld) {
			return fmt.Errorf("failed to acquire game lock: %w", err)
		}
		if !time.Now().Before(deadline) {
			return ErrGameBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func (p *Processor) refresh(ctx context.Context, l *lease, key, token string, done <-chan struct{}) {
	ticker := time.NewTicker(max(p.lockTTL/3, 10*time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			held, err := p.locker.RefreshLock(context.WithoutCancel(ctx), key, token, p.lockTTL)
			if err != nil {
				p.logger.Warn("Failed to refresh game lock", "key", key, "error", err)
				continue
			}
			if !held {
				p.logger.Error("Game lock lost while processing", "key", key)
				l.lost.Store(true)
				return
			}
		}
	}
}
