package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeStore struct {
	mu    sync.Mutex
	rows  []string
	fail  bool
	gate  chan struct{} // when set, List blocks until the gate closes
	calls int
}

func (s *fakeStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	fail := s.fail
	rows := append([]string(nil), s.rows...)
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if fail {
		return nil, errors.New("boom")
	}
	return rows, nil
}

func waitForCall(t *testing.T, s *fakeStore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		reached := s.calls >= n
		s.mu.Unlock()
		if reached {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("fetch call %d never started", n)
}

func (s *fakeStore) add(row string) {
	s.mu.Lock()
	s.rows = append(s.rows, row)
	s.mu.Unlock()
}

func TestView_RefreshTransitionsToReady(t *testing.T) {
	store := &fakeStore{rows: []string{"ana", "bia"}}
	v := New(store.List, zap.NewNop())

	if _, state, _ := v.Snapshot(); state != StateIdle {
		t.Fatalf("state = %v, want idle before first refresh", state)
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	rows, state, err := v.Snapshot()
	if state != StateReady || err != nil {
		t.Fatalf("state = %v err = %v, want ready", state, err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want 2", rows)
	}
}

func TestView_CreateAppearsExactlyOnce(t *testing.T) {
	store := &fakeStore{rows: []string{"ana"}}
	v := New(store.List, zap.NewNop())
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := v.Mutate(context.Background(), func(ctx context.Context) error {
		store.add("bia")
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	rows, state, _ := v.Snapshot()
	if state != StateReady {
		t.Fatalf("state = %v, want ready after successful mutation", state)
	}
	count := 0
	for _, r := range rows {
		if r == "bia" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("new row appears %d times, want exactly once", count)
	}
}

func TestView_FailedWriteKeepsRowsAndSkipsRefetch(t *testing.T) {
	store := &fakeStore{rows: []string{"ana", "bia"}}
	v := New(store.List, zap.NewNop())
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	fetchesBefore := store.calls

	wantErr := errors.New("delete rejected")
	err := v.Mutate(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Mutate error = %v, want %v", err, wantErr)
	}

	rows, state, verr := v.Snapshot()
	if state != StateErrored {
		t.Fatalf("state = %v, want errored after failed write", state)
	}
	if !errors.Is(verr, wantErr) {
		t.Fatalf("view error = %v, want %v", verr, wantErr)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want previous rows preserved", rows)
	}
	if store.calls != fetchesBefore {
		t.Fatalf("fetch ran %d extra times after a failed write, want none", store.calls-fetchesBefore)
	}
}

func TestView_StaleResponseIsDropped(t *testing.T) {
	store := &fakeStore{rows: []string{"old"}}
	gate := make(chan struct{})
	store.gate = gate
	v := New(store.List, zap.NewNop())

	// First refresh blocks on the gate.
	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()

	// Wait until the slow fetch is in flight before starting the fast one.
	waitForCall(t, store, 1)

	// Second refresh completes first with newer data.
	store.mu.Lock()
	store.gate = nil
	store.rows = []string{"new"}
	store.mu.Unlock()
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Release the slow response; it must not overwrite the new rows.
	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	rows, state, _ := v.Snapshot()
	if state != StateReady {
		t.Fatalf("state = %v, want ready", state)
	}
	if len(rows) != 1 || rows[0] != "new" {
		t.Fatalf("rows = %v, want the later response to win", rows)
	}
}

func TestView_ErroredRefreshKeepsPreviousRows(t *testing.T) {
	store := &fakeStore{rows: []string{"ana"}}
	v := New(store.List, zap.NewNop())
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	store.fail = true
	store.mu.Unlock()
	if err := v.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded, want error")
	}

	rows, state, _ := v.Snapshot()
	if state != StateErrored {
		t.Fatalf("state = %v, want errored", state)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want previous rows kept", rows)
	}
}

func TestView_CloseDropsLateResponse(t *testing.T) {
	store := &fakeStore{rows: []string{"ana"}}
	gate := make(chan struct{})
	store.gate = gate
	v := New(store.List, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()
	waitForCall(t, store, 1)

	v.Close()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("late response after close should be dropped, got %v", err)
	}
	if _, state, _ := v.Snapshot(); state == StateReady {
		t.Fatal("closed view applied a late response")
	}
	if err := v.Refresh(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Refresh on closed view = %v, want ErrClosed", err)
	}
}

func TestView_SetFetcherSwapsFilter(t *testing.T) {
	all := &fakeStore{rows: []string{"ana", "bia"}}
	active := &fakeStore{rows: []string{"ana"}}
	v := New(all.List, zap.NewNop())
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := v.SetFetcher(context.Background(), active.List); err != nil {
		t.Fatal(err)
	}
	rows, _, _ := v.Snapshot()
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want filtered set", rows)
	}
}
