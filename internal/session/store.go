package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultMonitorInterval is how often the liveness monitor re-evaluates the
// session when no interval is configured.
const DefaultMonitorInterval = 60 * time.Second

// Store owns the process-wide staff session.  Any component may read it;
// only Login, Logout and Refresh mutate it, and mutation is atomic: readers
// never observe a half-written session.  Expiry is evaluated lazily on every
// read, and a background liveness monitor additionally logs the session out
// within one interval of it expiring.
type Store struct {
	auth     Authenticator
	storage  Storage
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	current *StaffSession
	stop    chan struct{}
}

// NewStore builds a Store.  interval <= 0 selects DefaultMonitorInterval.
func NewStore(auth Authenticator, storage Storage, interval time.Duration) *Store {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &Store{
		auth:     auth,
		storage:  storage,
		interval: interval,
		now:      time.Now,
	}
}

// Init rehydrates the in-memory session from durable storage.  Called once
// at startup so a restarted station resumes its session without
// re-authenticating.  An expired stored session is loaded but will read as
// absent; the monitor is only started when the loaded session is live.
func (st *Store) Init(ctx context.Context) error {
	s, err := st.storage.Load(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.current = s
	live := s != nil && !s.Expired(st.now())
	if live {
		st.startMonitorLocked()
	}
	st.mu.Unlock()
	return nil
}

// Login exchanges credentials for a new session, persists it durably and
// replaces any prior session.  The liveness monitor is started on the first
// successful login of a session lifetime.
func (st *Store) Login(ctx context.Context, creds Credentials) (*StaffSession, error) {
	s, err := st.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := st.storage.Save(ctx, s); err != nil {
		return nil, err
	}
	st.mu.Lock()
	st.current = s
	st.startMonitorLocked()
	st.mu.Unlock()
	cp := *s
	return &cp, nil
}

// Current returns a copy of the live session, or nil when there is none or
// it has expired.  An expired session reads as absent without being deleted
// here; eviction is the monitor's job.
func (st *Store) Current() *StaffSession {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.current == nil || st.current.Expired(st.now()) {
		return nil
	}
	cp := *st.current
	return &cp
}

// IsAuthenticated reports whether a live session exists.
func (st *Store) IsAuthenticated() bool {
	return st.Current() != nil
}

// Logout deletes the durable session, clears the in-memory copy and stops
// the liveness monitor.  It is idempotent.
func (st *Store) Logout(ctx context.Context) error {
	err := st.storage.Delete(ctx)
	st.mu.Lock()
	st.current = nil
	if st.stop != nil {
		close(st.stop)
		st.stop = nil
	}
	st.mu.Unlock()
	return err
}

// Refresh re-reads durable storage into memory.  Used when the station
// regains focus, to pick up session changes made by another process sharing
// the same storage.
func (st *Store) Refresh(ctx context.Context) error {
	s, err := st.storage.Load(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.current = s
	st.mu.Unlock()
	return nil
}

// SelectedEvent returns the event context of the live session, or empty
// strings when no session is live.  It satisfies the engine's EventContext.
func (st *Store) SelectedEvent() (eventID, eventName string) {
	s := st.Current()
	if s == nil {
		return "", ""
	}
	return s.EventID, s.EventName
}

// startMonitorLocked starts the liveness goroutine unless one is already
// running.  Caller must hold st.mu.  Exactly one monitor is active per
// session lifetime: started on first successful login, stopped on logout.
func (st *Store) startMonitorLocked() {
	if st.stop != nil {
		return
	}
	stop := make(chan struct{})
	st.stop = stop
	go st.monitor(stop)
}

// monitor ticks at the configured interval and issues an explicit Logout as
// soon as the session reads as unauthenticated.  Logout closes the stop
// channel, which also ends this goroutine.
func (st *Store) monitor(stop chan struct{}) {
	t := time.NewTicker(st.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !st.IsAuthenticated() {
				log.Printf("session: expired, logging out")
				if err := st.Logout(context.Background()); err != nil {
					log.Printf("session: logout after expiry failed: %v", err)
				}
				return
			}
		}
	}
}
