package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/mandelmovie/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLedger returns a ledger URL and a client for run "status-run".
func setupLedger(t *testing.T) (string, *ledger.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()

	client, err := ledger.Dial(url, "status-run")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return url, client
}

func TestStatusCommand_Table(t *testing.T) {
	url, client := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, client.RecordRun(ctx, &ledger.RunInfo{Frames: 4, Units: 2, Threads: 4, BaseScale: 4}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 0, Unit: 0, Status: ledger.FrameStatusRendered, Path: "mandel0.jpg"}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 2, Unit: 1, Status: ledger.FrameStatusFailed, Error: "disk full"}))

	out, err := execute(t, "status", "--run", "status-run", "--ledger", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Frames for run 'status-run'")
	assert.Contains(t, out, "mandel0.jpg")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "1 of 4 frames rendered, 1 failed [2], 2 lost [1 3]")
}

func TestStatusCommand_JSONL(t *testing.T) {
	url, client := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 1, Unit: 0, Status: ledger.FrameStatusRendered}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 0, Unit: 0, Status: ledger.FrameStatusRendered}))

	out, err := execute(t, "status", "--run", "status-run", "--ledger", url, "--frames", "2", "--json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"index":0`)
	assert.Contains(t, lines[1], `"index":1`)
}

func TestStatusCommand_UnknownRun(t *testing.T) {
	url, _ := setupLedger(t)
	_, stderr := captureOutput(t)

	_, err := execute(t, "status", "--run", "status-run", "--ledger", url)
	require.Error(t, err)
	assert.Equal(t, "run 'status-run' not found", err.Error())
	assert.Contains(t, stderr.String(), "--frames")
}

func TestStatusCommand_RequiresRun(t *testing.T) {
	_, err := execute(t, "status")
	assert.Error(t, err)
}

func TestStatusCommand_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	captureOutput(t)

	_, err := execute(t, "status", "--run", "r", "--ledger", "redis://"+addr)
	require.Error(t, err)
	assert.Equal(t, "ledger connection failed", err.Error())
}

func TestStatusCommand_Follow(t *testing.T) {
	url, client := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 0, Unit: 0, Status: ledger.FrameStatusRendered, Path: "mandel0.jpg"}))

	cmd := newRootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"status", "--run", "status-run", "--ledger", url, "--frames", "2", "--follow"})

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 1, Unit: 1, Status: ledger.FrameStatusRendered, Path: "mandel1.jpg"}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("status --follow did not stop after every frame was recorded")
	}
	assert.Contains(t, out.String(), "All 2 frames recorded")
}

func TestStatusCommand_Filters(t *testing.T) {
	url, client := setupLedger(t)
	ctx := context.Background()

	require.NoError(t, client.RecordRun(ctx, &ledger.RunInfo{Frames: 4, Units: 2}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 0, Unit: 0, Status: ledger.FrameStatusRendered, Path: "mandel0.jpg"}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 1, Unit: 0, Status: ledger.FrameStatusFailed, Error: "disk full"}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 2, Unit: 1, Status: ledger.FrameStatusRendered, Path: "mandel2.jpg"}))

	t.Run("by status", func(t *testing.T) {
		out, err := execute(t, "status", "--run", "status-run", "--ledger", url, "--status", "failed")
		require.NoError(t, err)
		assert.Contains(t, out, "disk full")
		assert.NotContains(t, out, "mandel0.jpg")
		assert.Contains(t, out, "2 of 4 frames rendered, 1 failed [1], 1 lost [3]")
	})

	t.Run("by unit", func(t *testing.T) {
		out, err := execute(t, "status", "--run", "status-run", "--ledger", url, "--unit", "1", "--json")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], `"index":2`)
	})

	t.Run("unit 0 is a filter", func(t *testing.T) {
		out, err := execute(t, "status", "--run", "status-run", "--ledger", url, "--unit", "0", "--json")
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
	})

	t.Run("nothing recorded since the future", func(t *testing.T) {
		future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
		out, err := execute(t, "status", "--run", "status-run", "--ledger", url, "--since", future)
		require.NoError(t, err)
		assert.Contains(t, out, "No frames match the given filters")
	})

	t.Run("invalid filter", func(t *testing.T) {
		captureOutput(t)
		_, err := execute(t, "status", "--run", "status-run", "--ledger", url, "--status", "done")
		require.Error(t, err)
		assert.Equal(t, "invalid filter", err.Error())

		_, err = execute(t, "status", "--run", "status-run", "--ledger", url, "--since", "1h", "--until", "2h")
		require.Error(t, err)
		assert.Equal(t, "invalid filter", err.Error())
	})
}

func TestStatusCommand_RunIDPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()
	ctx := context.Background()

	for _, id := range []string{"3f2a9c10-0000-4000-8000-000000000001", "3f2a9c22-0000-4000-8000-000000000002"} {
		c, err := ledger.Dial(url, id)
		require.NoError(t, err)
		require.NoError(t, c.RecordRun(ctx, &ledger.RunInfo{Frames: 1, Units: 1}))
		require.NoError(t, c.RecordFrame(ctx, &ledger.FrameRecord{Index: 0, Unit: 0, Status: ledger.FrameStatusRendered, Path: "mandel0.jpg"}))
		c.Close()
	}

	t.Run("unique prefix", func(t *testing.T) {
		out, err := execute(t, "status", "--run", "3f2a9c10", "--ledger", url)
		require.NoError(t, err)
		assert.Contains(t, out, "Frames for run '3f2a9c10-0000-4000-8000-000000000001'")
		assert.Contains(t, out, "1 of 1 frames rendered")
	})

	t.Run("unique prefix with explicit frame count", func(t *testing.T) {
		out, err := execute(t, "status", "--run", "3f2a9c10", "--ledger", url, "--frames", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "Frames for run '3f2a9c10-0000-4000-8000-000000000001'")
		assert.Contains(t, out, "1 of 1 frames rendered")
		assert.NotContains(t, out, "lost")
	})

	t.Run("ambiguous prefix with explicit frame count", func(t *testing.T) {
		captureOutput(t)
		_, err := execute(t, "status", "--run", "3f2a9c", "--ledger", url, "--frames", "1")
		require.Error(t, err)
		assert.Equal(t, "ambiguous run ID '3f2a9c'", err.Error())
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, stderr := captureOutput(t)
		_, err := execute(t, "status", "--run", "3f2a9c", "--ledger", url)
		require.Error(t, err)
		assert.Equal(t, "ambiguous run ID '3f2a9c'", err.Error())
		assert.Contains(t, stderr.String(), "3f2a9c22-0000-4000-8000-000000000002")
	})

	t.Run("prefix too short", func(t *testing.T) {
		captureOutput(t)
		_, err := execute(t, "status", "--run", "3f2a", "--ledger", url)
		require.Error(t, err)
		assert.Equal(t, "invalid run ID", err.Error())
	})
}

func TestStatusCommand_FollowStopsWhenRunCompletes(t *testing.T) {
	url, client := setupLedger(t)
	ctx := context.Background()

	old := followPollInterval
	followPollInterval = 20 * time.Millisecond
	t.Cleanup(func() { followPollInterval = old })

	require.NoError(t, client.RecordRun(ctx, &ledger.RunInfo{Frames: 3, Units: 2}))
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 0, Unit: 0, Status: ledger.FrameStatusRendered, Path: "mandel0.jpg"}))

	cmd := newRootCmd()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"status", "--run", "status-run", "--ledger", url, "--follow"})

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	// Unit 1 records frame 1 and then dies before frame 2.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, client.RecordFrame(ctx, &ledger.FrameRecord{Index: 1, Unit: 1, Status: ledger.FrameStatusRendered, Path: "mandel1.jpg"}))
	require.NoError(t, client.CompleteRun(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("status --follow kept waiting for a frame that will never be recorded")
	}

	got := out.String()
	assert.Contains(t, got, "frame 1 rendered by unit 1: mandel1.jpg")
	assert.Equal(t, 1, strings.Count(got, "frame 1 rendered"), "a frame is printed once")
	assert.Contains(t, got, "Run finished: 2 of 3 frames rendered, 1 lost")
	assert.NotContains(t, got, "All 3 frames recorded")
}

func TestStatusCommand_FollowCompletedRunReturnsAtOnce(t *testing.T) {
	url, client := setupLedger(t)
	ctx := context.Background()

	old := followPollInterval
	followPollInterval = 20 * time.Millisecond
	t.Cleanup(func() { followPollInterval = old })

	require.NoError(t, client.RecordRun(ctx, &ledger.RunInfo{Frames: 2, Units: 1}))
	require.NoError(t, client.CompleteRun(ctx))

	done := make(chan struct{})
	var out string
	var err error
	go func() {
		defer close(done)
		out, err = execute(t, "status", "--run", "status-run", "--ledger", url, "--follow")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("status --follow did not notice the run had finished")
	}
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 2 frames rendered, 2 lost [0 1]")
	assert.Contains(t, out, "Run finished: 0 of 2 frames rendered, 2 lost")
}
