package ledger

import (
	"fmt"
	"strings"
)

// Redis key pattern helpers
//
// Every key and channel is namespaced by run ID so several renders can share
// one Redis server.
//
// Key pattern: mandelmovie:{run_id}:{entity}
// Channel pattern: mandelmovie:{run_id}:{event_type}_events

// RunKey returns the Redis key of the run's metadata hash.
// Pattern: mandelmovie:{run_id}:run
func RunKey(runID string) string {
	return fmt.Sprintf("mandelmovie:%s:run", runID)
}

// FrameKey returns the Redis key of one frame record.
// Pattern: mandelmovie:{run_id}:frame:{index}
func FrameKey(runID string, index int) string {
	return fmt.Sprintf("mandelmovie:%s:frame:%d", runID, index)
}

// FrameIndexKey returns the Redis key of the ZSET listing recorded frames,
// scored by frame index.
// Pattern: mandelmovie:{run_id}:frames
func FrameIndexKey(runID string) string {
	return fmt.Sprintf("mandelmovie:%s:frames", runID)
}

// FrameEventsChannel returns the Pub/Sub channel carrying frame records as
// they are written.
// Pattern: mandelmovie:{run_id}:frame_events
func FrameEventsChannel(runID string) string {
	return fmt.Sprintf("mandelmovie:%s:frame_events", runID)
}

// runIDFromKey extracts the run ID from a RunKey.
func runIDFromKey(key string) (string, bool) {
	const prefix, suffix = "mandelmovie:", ":run"
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) || len(key) <= len(prefix)+len(suffix) {
		return "", false
	}
	return key[len(prefix) : len(key)-len(suffix)], true
}
