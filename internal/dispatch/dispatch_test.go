package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/azcoov/push/internal/model"
	"github.com/azcoov/push/internal/transport"
)

// fakeTransport records pushes and fails selected tokens.
type fakeTransport struct {
	mu     sync.Mutex
	pushed []string
	fail   map[string]error
	block  time.Duration
}

func (f *fakeTransport) Push(ctx context.Context, token string, alert model.Alert) error {
	if f.block > 0 {
		select {
		case <-time.After(f.block):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	f.pushed = append(f.pushed, token)
	f.mu.Unlock()
	if err, ok := f.fail[token]; ok {
		return err
	}
	return nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushed)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDispatchEmptyTokenSet(t *testing.T) {
	ft := &fakeTransport{}
	d := New(ft, Config{}, nil, testLogger())

	d.Dispatch(context.Background(), 1, model.Alert{Message: "hi"}, nil)

	if ft.count() != 0 {
		t.Errorf("transport calls = %d, want 0", ft.count())
	}
}

func TestDispatchReachesEveryToken(t *testing.T) {
	ft := &fakeTransport{}
	d := New(ft, Config{Workers: 4}, nil, testLogger())

	tokens := []string{"a", "b", "c", "d", "e"}
	d.Dispatch(context.Background(), 1, model.Alert{Message: "hi"}, tokens)

	if ft.count() != len(tokens) {
		t.Errorf("transport calls = %d, want %d", ft.count(), len(tokens))
	}
}

func TestDispatchFailureDoesNotBlockOthers(t *testing.T) {
	ft := &fakeTransport{fail: map[string]error{"b": errors.New("delivery failed")}}
	d := New(ft, Config{Workers: 1}, nil, testLogger())

	d.Dispatch(context.Background(), 1, model.Alert{Message: "hi"}, []string{"a", "b", "c"})

	if ft.count() != 3 {
		t.Errorf("transport calls = %d, want 3", ft.count())
	}
}

func TestDispatchRemovesInvalidTokens(t *testing.T) {
	ft := &fakeTransport{fail: map[string]error{"dead": transport.ErrTokenInvalid}}

	var mu sync.Mutex
	var removed []string
	remove := func(userID int64, token string) error {
		mu.Lock()
		removed = append(removed, token)
		mu.Unlock()
		return nil
	}

	d := New(ft, Config{Workers: 2}, remove, testLogger())
	d.Dispatch(context.Background(), 7, model.Alert{Message: "hi"}, []string{"live", "dead"})

	mu.Lock()
	defer mu.Unlock()
	if len(removed) != 1 || removed[0] != "dead" {
		t.Errorf("removed = %v, want [dead]", removed)
	}
}

func TestDispatchPerTokenTimeout(t *testing.T) {
	ft := &fakeTransport{block: 200 * time.Millisecond}
	d := New(ft, Config{Workers: 2, Timeout: 10 * time.Millisecond}, nil, testLogger())

	start := time.Now()
	d.Dispatch(context.Background(), 1, model.Alert{Message: "hi"}, []string{"a", "b"})

	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("dispatch took %v, timeout not applied", elapsed)
	}
}
