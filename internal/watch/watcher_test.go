package watch

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/raido/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_RebuildOnChange(t *testing.T) {
	root := t.TempDir()
	logger := testutil.SilentLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int64
	go Run(ctx, root, nil, logger, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "rebuild not triggered by file change")
}

func TestWatch_BurstCoalesced(t *testing.T) {
	root := t.TempDir()
	logger := testutil.SilentLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int64
	go Run(ctx, root, nil, logger, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)

	// A rapid burst of writes lands inside one debounce window.
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(root, "burst.md"), []byte("x"), 0o644)
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rebuilds.Load() >= 1
	}, "rebuild not triggered")
	// Allow any stragglers to fire, then check the burst coalesced.
	time.Sleep(2 * debounceWindow)
	if n := rebuilds.Load(); n > 2 {
		t.Errorf("rebuilds = %d, want the burst coalesced", n)
	}
}

func TestWatch_SkipRegexIgnored(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "skipme"), 0o755); err != nil {
		t.Fatal(err)
	}
	logger := testutil.SilentLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int64
	go Run(ctx, root, regexp.MustCompile("skipme"), logger, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "skipme", "ignored.md"), []byte("x"), 0o644)

	time.Sleep(2 * debounceWindow)
	if n := rebuilds.Load(); n != 0 {
		t.Errorf("rebuilds = %d, want 0 for skipped path", n)
	}
}
