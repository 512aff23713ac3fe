package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"hotel-ops/services"
)

// ErrSweepBusy means another process holds the sweep lock.
var ErrSweepBusy = errors.New("status sweep already running")

// Locker is a best-effort mutual exclusion across processes.
type Locker interface {
	// TryLock returns a release func when the lock was taken, nil when it is
	// held elsewhere.
	TryLock(ctx context.Context) (release func(), err error)
}

// LocalLocker only excludes sweeps inside this process.
type LocalLocker struct {
	mu sync.Mutex
}

func (l *LocalLocker) TryLock(ctx context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, nil
	}
	return l.mu.Unlock, nil
}

type Sweeper struct {
	Bookings *services.BookingService
	Lock     Locker
	Interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewSweeper(bookings *services.BookingService, lock Locker, interval time.Duration) *Sweeper {
	if lock == nil {
		lock = &LocalLocker{}
	}
	return &Sweeper{Bookings: bookings, Lock: lock, Interval: interval}
}

// RunOnce sweeps at the service clock's current time while holding the
// lock.
func (s *Sweeper) RunOnce(ctx context.Context) (services.SweepResult, error) {
	release, err := s.Lock.TryLock(ctx)
	if err != nil {
		return services.SweepResult{}, err
	}
	if release == nil {
		return services.SweepResult{}, ErrSweepBusy
	}
	defer release()

	return s.Bookings.RunStatusSweep(ctx, s.Bookings.CurrentTime())
}

// Start runs a sweep immediately and then every Interval until Stop. An
// interval of zero disables the loop.
func (s *Sweeper) Start(ctx context.Context) {
	if s.Interval <= 0 {
		log.Println("⚠️  SWEEP_INTERVAL is 0; the in-process status sweep is disabled")
		return
	}
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.tick(ctx)
		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	log.Printf("🕒 status sweep scheduled every %s", s.Interval)
}

func (s *Sweeper) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrSweepBusy) {
			log.Println("ℹ️ status sweep skipped: another instance holds the lock")
			return
		}
		log.Printf("❌ status sweep failed: %v", err)
	}
}

func (s *Sweeper) Stop() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	s.stopCh = nil
}
