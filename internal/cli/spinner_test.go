package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/godepscan/pkg/deps/golang"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerBasic(t *testing.T) {
	var out syncBuffer
	s := newSpinner(&out, "Testing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Testing...") {
		t.Errorf("spinner output = %q, want message", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, &syncBuffer{}, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(&syncBuffer{}, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	var out syncBuffer
	s := newSpinner(&out, "working")
	s.Start()
	s.StopWithSuccess("Done!")
	if !strings.Contains(out.String(), "Done!") {
		t.Errorf("output = %q, want success message", out.String())
	}

	var failed syncBuffer
	s = newSpinner(&failed, "working")
	s.Start()
	s.StopWithError("Failed!")
	if !strings.Contains(failed.String(), "Failed!") {
		t.Errorf("output = %q, want error message", failed.String())
	}
}

func TestSpinningEnsurer(t *testing.T) {
	var out syncBuffer
	var ranIn string
	inner := golang.EnsureFunc(func(_ context.Context, dir string) error {
		ranIn = dir
		return nil
	})

	if err := spinningEnsurer(&out, inner).Ensure(context.Background(), "/src/app"); err != nil {
		t.Fatal(err)
	}
	if ranIn != "/src/app" {
		t.Errorf("ensure ran in %q", ranIn)
	}
	if !strings.Contains(out.String(), "dep ensure finished") {
		t.Errorf("output = %q", out.String())
	}

	failing := golang.EnsureFunc(func(context.Context, string) error { return errors.New("no dep") })
	if err := spinningEnsurer(&out, failing).Ensure(context.Background(), "/src/app"); err == nil {
		t.Error("Ensure should return the inner error")
	}
}
