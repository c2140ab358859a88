package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAuth struct {
	session *StaffSession
	err     error
	calls   int
}

func (f *fakeAuth) Authenticate(ctx context.Context, creds Credentials) (*StaffSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.session
	return &cp, nil
}

func liveSession(ttl time.Duration) *StaffSession {
	return &StaffSession{
		StaffID:     "staff-1",
		StaffName:   "Ann Operator",
		EventID:     "EVT-1",
		EventName:   "Summer Gala",
		Token:       "tok",
		Permissions: []string{"checkin"},
		ExpiresAt:   time.Now().Add(ttl),
	}
}

func TestStoreLoginCurrent(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{session: liveSession(time.Hour)}
	st := NewStore(auth, NewMemoryStorage(), time.Minute)

	got, err := st.Login(context.Background(), Credentials{Email: "a@b.c", Password: "pw", EventID: "EVT-1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.StaffID != "staff-1" || got.EventID != "EVT-1" {
		t.Errorf("session = %+v", got)
	}
	if !st.IsAuthenticated() {
		t.Error("not authenticated after login")
	}
	if id, name := st.SelectedEvent(); id != "EVT-1" || name != "Summer Gala" {
		t.Errorf("SelectedEvent() = %q, %q", id, name)
	}

	// Mutating a returned copy must not touch the stored session.
	got.StaffName = "tampered"
	if cur := st.Current(); cur.StaffName != "Ann Operator" {
		t.Errorf("StaffName = %q after external mutation", cur.StaffName)
	}
}

func TestStoreLoginAuthFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("bad credentials")
	st := NewStore(&fakeAuth{err: wantErr}, NewMemoryStorage(), time.Minute)
	if _, err := st.Login(context.Background(), Credentials{}); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if st.IsAuthenticated() {
		t.Error("authenticated after failed login")
	}
}

func TestStoreLazyExpiry(t *testing.T) {
	t.Parallel()

	auth := &fakeAuth{session: liveSession(time.Hour)}
	st := NewStore(auth, NewMemoryStorage(), time.Hour)
	if _, err := st.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Step the clock past expiry: the session reads as absent even though
	// nothing evicted it.
	st.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if st.Current() != nil {
		t.Error("expired session still readable")
	}
	if st.IsAuthenticated() {
		t.Error("IsAuthenticated true past expiry")
	}
	if id, _ := st.SelectedEvent(); id != "" {
		t.Errorf("SelectedEvent past expiry = %q", id)
	}
}

func TestStoreInitRehydrates(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	if err := storage.Save(context.Background(), liveSession(time.Hour)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st := NewStore(&fakeAuth{}, storage, time.Hour)
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cur := st.Current()
	if cur == nil || cur.StaffID != "staff-1" {
		t.Fatalf("Current() = %+v after rehydrate", cur)
	}
	if fa := st.auth.(*fakeAuth); fa.calls != 0 {
		t.Errorf("authenticator consulted %d times during rehydrate", fa.calls)
	}
}

func TestStoreInitExpiredSessionReadsAbsent(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	if err := storage.Save(context.Background(), liveSession(-time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st := NewStore(&fakeAuth{}, storage, time.Hour)
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if st.Current() != nil {
		t.Error("expired stored session readable after Init")
	}
	st.mu.RLock()
	running := st.stop != nil
	st.mu.RUnlock()
	if running {
		t.Error("monitor started for an expired session")
	}
}

func TestStoreLogoutIdempotent(t *testing.T) {
	t.Parallel()

	st := NewStore(&fakeAuth{session: liveSession(time.Hour)}, NewMemoryStorage(), time.Hour)
	if _, err := st.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := st.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if st.IsAuthenticated() {
		t.Error("authenticated after logout")
	}
	if err := st.Logout(context.Background()); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestStoreRefreshPicksUpStorageChange(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	st := NewStore(&fakeAuth{session: liveSession(time.Hour)}, storage, time.Hour)
	if _, err := st.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Another process sharing the storage logged the station out.
	if err := storage.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !st.IsAuthenticated() {
		t.Fatal("in-memory copy cleared before Refresh")
	}
	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st.IsAuthenticated() {
		t.Error("authenticated after Refresh against emptied storage")
	}
}

func TestStoreMonitorEvictsExpiredSession(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	st := NewStore(&fakeAuth{session: liveSession(30 * time.Millisecond)}, storage, 10*time.Millisecond)
	if _, err := st.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st.mu.RLock()
		evicted := st.current == nil && st.stop == nil
		st.mu.RUnlock()
		if evicted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("monitor did not evict the expired session")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if s, err := storage.Load(context.Background()); err != nil || s != nil {
		t.Errorf("durable session after eviction: %+v, %v", s, err)
	}
}

func TestStoreMonitorSingleInstance(t *testing.T) {
	t.Parallel()

	st := NewStore(&fakeAuth{session: liveSession(time.Hour)}, NewMemoryStorage(), time.Hour)
	if _, err := st.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	st.mu.RLock()
	first := st.stop
	st.mu.RUnlock()
	if first == nil {
		t.Fatal("monitor not started on login")
	}

	// A second login within the same lifetime reuses the running monitor.
	if _, err := st.Login(context.Background(), Credentials{}); err != nil {
		t.Fatalf("second Login: %v", err)
	}
	st.mu.RLock()
	second := st.stop
	st.mu.RUnlock()
	if second != first {
		t.Error("second login spawned a second monitor")
	}
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	t.Parallel()

	storage := NewMemoryStorage()
	ctx := context.Background()

	if s, err := storage.Load(ctx); err != nil || s != nil {
		t.Fatalf("Load from empty storage = %+v, %v", s, err)
	}

	saved := liveSession(time.Hour)
	if err := storage.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved.StaffName = "tampered"

	got, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.StaffName != "Ann Operator" {
		t.Errorf("StaffName = %q, storage shares memory with caller", got.StaffName)
	}

	if err := storage.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s, _ := storage.Load(ctx); s != nil {
		t.Error("session survives Delete")
	}
}
