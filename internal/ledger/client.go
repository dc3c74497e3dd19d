// Package ledger records the outcome of every frame of a render run in
// Redis, so a separate `mandelmovie status` call can report which frames
// were rendered, which failed and which were lost with their worker unit.
//
// Worker units only write to the ledger; the animation scheduler never reads
// it. A ledger failure is logged by the caller and never fails a frame.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides run-scoped Redis operations for the ledger.
// All keys and channels are namespaced with the run ID.
// The client is safe for concurrent use.
type Client struct {
	rdb   *redis.Client
	runID string
}

// NewClient creates a ledger client for the given run.
// Returns an error if runID is empty.
func NewClient(redisOpts *redis.Options, runID string) (*Client, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}

	return &Client{
		rdb:   redis.NewClient(redisOpts),
		runID: runID,
	}, nil
}

// Dial parses a redis:// URL and creates a ledger client for the run.
func Dial(redisURL, runID string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger URL: %w", err)
	}
	return NewClient(opts, runID)
}

// RunID returns the run this client is scoped to.
func (c *Client) RunID() string { return c.runID }

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// IsNotFound reports whether err means the requested entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}

// RecordRun stores the run metadata.
func (c *Client) RecordRun(ctx context.Context, r *RunInfo) error {
	if r.RunID == "" {
		r.RunID = c.runID
	}
	if r.RunID != c.runID {
		return fmt.Errorf("run %s does not belong to ledger run %s", r.RunID, c.runID)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid run info: %w", err)
	}

	if err := c.rdb.HSet(ctx, RunKey(c.runID), RunToHash(r)).Err(); err != nil {
		return fmt.Errorf("failed to write run info to Redis: %w", err)
	}
	return nil
}

// CompleteRun marks the run finished: no unit will record another frame.
// Frames still without a record are lost.
func (c *Client) CompleteRun(ctx context.Context) error {
	exists, err := c.rdb.Exists(ctx, RunKey(c.runID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read run info from Redis: %w", err)
	}
	if exists == 0 {
		return redis.Nil
	}

	if err := c.rdb.HSet(ctx, RunKey(c.runID), "completed_at_ms", time.Now().UnixMilli()).Err(); err != nil {
		return fmt.Errorf("failed to mark run complete: %w", err)
	}
	return nil
}

// GetRun returns the run metadata, or (nil, redis.Nil) if none was recorded.
func (c *Client) GetRun(ctx context.Context) (*RunInfo, error) {
	hash, err := c.rdb.HGetAll(ctx, RunKey(c.runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run info from Redis: %w", err)
	}
	if len(hash) == 0 {
		return nil, redis.Nil
	}

	run, err := HashToRun(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize run info: %w", err)
	}
	return run, nil
}

// RecordFrame writes a frame record, indexes it and publishes it on the
// run's frame events channel. Writing the same frame twice overwrites the
// earlier record.
func (c *Client) RecordFrame(ctx context.Context, f *FrameRecord) error {
	if f.RunID == "" {
		f.RunID = c.runID
	}
	if f.RecordedAtMs == 0 {
		f.RecordedAtMs = time.Now().UnixMilli()
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid frame record: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, FrameKey(c.runID, f.Index), FrameToHash(f))
	pipe.ZAdd(ctx, FrameIndexKey(c.runID), redis.Z{Score: float64(f.Index), Member: f.Index})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write frame record to Redis: %w", err)
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal frame record for event: %w", err)
	}
	if err := c.rdb.Publish(ctx, FrameEventsChannel(c.runID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish frame event: %w", err)
	}
	return nil
}

// GetFrame returns the record of frame index, or (nil, redis.Nil) if the
// frame was never recorded.
func (c *Client) GetFrame(ctx context.Context, index int) (*FrameRecord, error) {
	hash, err := c.rdb.HGetAll(ctx, FrameKey(c.runID, index)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read frame record from Redis: %w", err)
	}
	if len(hash) == 0 {
		return nil, redis.Nil
	}

	f, err := HashToFrame(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize frame %d: %w", index, err)
	}
	return f, nil
}

// ListFrames returns every recorded frame ordered by index.
func (c *Client) ListFrames(ctx context.Context) ([]*FrameRecord, error) {
	members, err := c.rdb.ZRangeByScore(ctx, FrameIndexKey(c.runID), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(members))
	for _, m := range members {
		index, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("invalid frame index %q in %s: %w", m, FrameIndexKey(c.runID), err)
		}
		cmds = append(cmds, pipe.HGetAll(ctx, FrameKey(c.runID, index)))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to read frame records: %w", err)
		}
	}

	records := make([]*FrameRecord, 0, len(cmds))
	for i, cmd := range cmds {
		hash := cmd.Val()
		if len(hash) == 0 {
			continue
		}
		f, err := HashToFrame(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize frame %s: %w", members[i], err)
		}
		records = append(records, f)
	}
	sortRecords(records)
	return records, nil
}

// ScanRuns returns the IDs of every run with metadata whose ID starts with
// prefix, sorted. It is not scoped to the client's run.
func (c *Client) ScanRuns(ctx context.Context, prefix string) ([]string, error) {
	pattern := RunKey(prefix + "*")
	var ids []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if id, ok := runIDFromKey(iter.Val()); ok {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Summarize classifies every frame index in [0, total).
func (c *Client) Summarize(ctx context.Context, total int) (*Summary, error) {
	records, err := c.ListFrames(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(records, total), nil
}

// Subscription is an active Pub/Sub subscription to frame events.
type Subscription struct {
	events <-chan *FrameRecord
	errors <-chan error
	cancel context.CancelFunc
}

// Events delivers frame records as units write them.
func (s *Subscription) Events() <-chan *FrameRecord {
	return s.events
}

// Errors delivers decoding failures. Bad messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription; both channels are closed afterwards.
func (s *Subscription) Close() error {
	s.cancel()
	return nil
}

// SubscribeFrameEvents subscribes to the run's frame events.
// Caller must call Close when done.
func (c *Client) SubscribeFrameEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, FrameEventsChannel(c.runID))

	// Wait for the subscription to be confirmed so no event published after
	// this call returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to frame events: %w", err)
	}

	eventsChan := make(chan *FrameRecord, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var f FrameRecord
				if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal frame event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &f:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
