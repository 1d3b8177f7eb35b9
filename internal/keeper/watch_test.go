package keeper

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func Test_WatchChanges_Coalesces_A_Burst_Into_One_Signal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wake, err := watchChanges(ctx, dir, 250*time.Millisecond, discardLogger())
	require.NoError(t, err, "watcher should start")

	// several saves in quick succession, like an editor writing a note
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("note-%d.md", i))
		require.NoError(t, os.WriteFile(path, []byte("---\n---\nbody\n"), 0o644), "write note")
	}

	select {
	case _, ok := <-wake:
		require.True(t, ok, "expected a wake-up, not a closed channel")
	case <-time.After(5 * time.Second):
		t.Fatal("no wake-up after a burst of changes")
	}

	// the whole burst landed inside one debounce window
	select {
	case _, ok := <-wake:
		if ok {
			t.Fatal("a burst should coalesce into a single wake-up")
		}
	case <-time.After(500 * time.Millisecond):
	}
}

func Test_WatchChanges_Closes_Channel_On_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	wake, err := watchChanges(ctx, t.TempDir(), time.Second, discardLogger())
	require.NoError(t, err, "watcher should start")

	cancel()

	select {
	case _, ok := <-wake:
		assert.False(t, ok, "channel should close once the context is cancelled")
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func Test_WatchChanges_Fails_On_Missing_Dir(t *testing.T) {
	t.Parallel()

	_, err := watchChanges(context.Background(), filepath.Join(t.TempDir(), "gone"), time.Second, discardLogger())
	require.Error(t, err, "watching a missing directory must fail")
}

func Test_Wait_Wakes_Early_On_Change_Signal(t *testing.T) {
	t.Parallel()

	s := &Service{log: discardLogger()}

	ch := make(chan struct{}, 1)
	ch <- struct{}{}

	wake := (<-chan struct{})(ch)

	ok := s.wait(context.Background(), nil, &wake)
	assert.True(t, ok, "a change signal should schedule an early pass")
	assert.NotNil(t, wake, "an open watcher channel stays armed")
}

func Test_Wait_Falls_Back_To_Ticker_When_Watcher_Closes(t *testing.T) {
	t.Parallel()

	s := &Service{log: discardLogger()}

	closed := make(chan struct{})
	close(closed)

	wake := (<-chan struct{})(closed)
	tick := time.After(100 * time.Millisecond)

	ok := s.wait(context.Background(), tick, &wake)
	assert.True(t, ok, "the ticker should still schedule passes")
	assert.Nil(t, wake, "a closed watcher channel should be dropped, not spun on")
}

func Test_Wait_Stops_On_Cancel(t *testing.T) {
	t.Parallel()

	s := &Service{log: discardLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var wake <-chan struct{}

	ok := s.wait(ctx, nil, &wake)
	assert.False(t, ok, "a cancelled context should stop the loop")
}
